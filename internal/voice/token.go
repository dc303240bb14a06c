package voice

import (
	"errors"
	"time"

	"github.com/livekit/protocol/auth"
)

// ErrNotConfigured 语音服务未配置
var ErrNotConfigured = errors.New("voice service not configured")

// TokenIssuer 签发 LiveKit 访问令牌
type TokenIssuer struct {
	url       string
	apiKey    string
	apiSecret string
	ttl       time.Duration
}

// NewTokenIssuer 创建签发器，url 为客户端连接的 LiveKit 地址
func NewTokenIssuer(url, apiKey, apiSecret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		url:       url,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		ttl:       ttl,
	}
}

// URL 客户端连接地址
func (ti *TokenIssuer) URL() string {
	return ti.url
}

// PlayerToken 玩家加入语音房间的令牌，始终可以收听
func (ti *TokenIssuer) PlayerToken(roomCode, identity, name string, canPublish bool) (string, error) {
	if ti.apiKey == "" || ti.apiSecret == "" {
		return "", ErrNotConfigured
	}

	grant := &auth.VideoGrant{
		RoomJoin: true,
		Room:     RoomName(roomCode),
	}
	grant.SetCanPublish(canPublish)
	grant.SetCanSubscribe(true)

	at := auth.NewAccessToken(ti.apiKey, ti.apiSecret).
		SetVideoGrant(grant).
		SetIdentity(identity).
		SetName(name)
	if ti.ttl > 0 {
		at.SetValidFor(ti.ttl)
	}
	return at.ToJWT()
}
