package handler

import (
	"time"

	"github.com/palemoky/cheese-thief/internal/protocol"
	"github.com/palemoky/cheese-thief/internal/protocol/codec"
	"github.com/palemoky/cheese-thief/internal/types"
)

// handlePing 处理心跳消息
func (h *Handler) handlePing(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

// OnDisconnect 连接断开时通知所在房间，玩家进入重连等待
func (h *Handler) OnDisconnect(client types.ClientInterface) {
	code := client.GetRoom()
	if code == "" {
		return
	}
	if rm := h.roomManager.GetRoom(code); rm != nil {
		rm.Disconnect(client)
	}
}
