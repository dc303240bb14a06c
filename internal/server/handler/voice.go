package handler

import (
	"github.com/rs/zerolog/log"

	"github.com/palemoky/cheese-thief/internal/protocol"
	"github.com/palemoky/cheese-thief/internal/protocol/codec"
	"github.com/palemoky/cheese-thief/internal/types"
	"github.com/palemoky/cheese-thief/internal/voice"
)

// handleVoiceToken 签发语音令牌，发言权限取决于当前阶段
// 未配置语音服务时 token 和 url 都为 null
func (h *Handler) handleVoiceToken(client types.ClientInterface) {
	rm, playerID, ok := h.currentRoom(client)
	if !ok {
		return
	}

	var payload protocol.VoiceTokenPayload
	if h.tokens != nil {
		name, _ := rm.PlayerName(playerID)
		token, err := h.tokens.PlayerToken(rm.Code, playerID, name, voice.CanPublishInPhase(rm.Phase()))
		if err != nil {
			log.Warn().Err(err).Str("room", rm.Code).Msg("签发语音令牌失败")
		} else {
			url := h.tokens.URL()
			payload.Token = &token
			payload.URL = &url
		}
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgVoiceToken, payload))
}
