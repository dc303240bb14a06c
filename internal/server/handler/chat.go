package handler

import (
	"github.com/palemoky/cheese-thief/internal/protocol"
	"github.com/palemoky/cheese-thief/internal/protocol/codec"
	"github.com/palemoky/cheese-thief/internal/types"
)

// handleSendMessage 白天发言，先过限流再交给房间校验
func (h *Handler) handleSendMessage(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.SendMessagePayload](msg)
	if err != nil {
		invalidMessage(client)
		return
	}

	rm, playerID, ok := h.currentRoom(client)
	if !ok {
		return
	}

	if h.chatLimiter != nil && !h.chatLimiter.AllowChat(playerID) {
		client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeRateLimit, "发言太快了，歇一会儿吧"))
		return
	}

	sendError(client, rm.SendMessage(playerID, payload.Content))
}
