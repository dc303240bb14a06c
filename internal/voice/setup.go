package voice

import (
	"github.com/rs/zerolog/log"

	"github.com/palemoky/cheese-thief/internal/config"
)

// FromConfig 根据配置创建控制器和令牌签发器，未配置 LiveKit 时返回 Noop 和 nil
// 请求超时由 Dispatcher 通过 ctx 控制
func FromConfig(cfg config.VoiceConfig) (Controller, *TokenIssuer) {
	if !cfg.Enabled() {
		log.Info().Msg("🔇 未配置 LiveKit，语音功能关闭")
		return Noop{}, nil
	}

	issuer := NewTokenIssuer(cfg.URL, cfg.APIKey, cfg.APISecret, cfg.TokenTTLDuration())
	client := NewLiveKit(cfg.URL, cfg.APIKey, cfg.APISecret)
	log.Info().Str("url", cfg.URL).Msg("🎙️ 语音服务已启用")
	return client, issuer
}
