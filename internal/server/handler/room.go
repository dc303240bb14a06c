package handler

import (
	"github.com/rs/zerolog/log"

	"github.com/palemoky/cheese-thief/internal/apperrors"
	"github.com/palemoky/cheese-thief/internal/protocol"
	"github.com/palemoky/cheese-thief/internal/protocol/codec"
	"github.com/palemoky/cheese-thief/internal/types"
)

func (h *Handler) inMaintenance(client types.ClientInterface) bool {
	if h.server == nil || !h.server.IsMaintenanceMode() {
		return false
	}
	sendError(client, apperrors.ErrMaintenance)
	return true
}

// handleCreateRoom 创建房间，创建者成为房主
func (h *Handler) handleCreateRoom(client types.ClientInterface, msg *protocol.Message) {
	if h.inMaintenance(client) {
		return
	}

	payload, err := codec.ParsePayload[protocol.CreateRoomPayload](msg)
	if err != nil {
		invalidMessage(client)
		return
	}

	h.leaveCurrent(client)

	rm, err := h.roomManager.CreateRoom()
	if err != nil {
		sendError(client, err)
		return
	}

	if _, err := rm.AddPlayer(client, payload.Name, payload.AvatarIndex); err != nil {
		// 名字不合法时房间里没有人，直接回收
		h.roomManager.CleanupIfEmpty(rm.Code)
		sendError(client, err)
	}
}

// handleJoinRoom 按房间号加入
func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) {
	if h.inMaintenance(client) {
		return
	}

	payload, err := codec.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil {
		invalidMessage(client)
		return
	}

	rm := h.roomManager.GetRoom(payload.RoomCode)
	if rm == nil {
		sendError(client, apperrors.ErrRoomNotFound)
		return
	}

	h.leaveCurrent(client)

	if _, err := rm.AddPlayer(client, payload.Name, payload.AvatarIndex); err != nil {
		sendError(client, err)
	}
}

// handleLeaveRoom 离开当前房间
func (h *Handler) handleLeaveRoom(client types.ClientInterface) {
	h.leaveCurrent(client)
}

// handleReconnect 凭会话令牌找回房间内的身份
func (h *Handler) handleReconnect(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.ReconnectPayload](msg)
	if err != nil || payload.SessionToken == "" {
		invalidMessage(client)
		return
	}

	rm := h.roomManager.GetRoom(payload.RoomCode)
	if rm == nil {
		sendError(client, apperrors.ErrRoomNotFound)
		return
	}

	if client.GetRoom() != rm.Code {
		h.leaveCurrent(client)
	}

	if _, err := rm.Reconnect(client, payload.SessionToken); err != nil {
		log.Info().Str("room", rm.Code).Str("conn", client.GetID()).Err(err).Msg("重连被拒绝")
		sendError(client, err)
	}
}

// handleUpdateSettings 房主修改设置
func (h *Handler) handleUpdateSettings(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.UpdateSettingsPayload](msg)
	if err != nil {
		invalidMessage(client)
		return
	}

	rm, playerID, ok := h.currentRoom(client)
	if !ok {
		return
	}
	sendError(client, rm.UpdateSettings(playerID, *payload))
}

// handleStartGame 房主开始游戏
func (h *Handler) handleStartGame(client types.ClientInterface) {
	rm, playerID, ok := h.currentRoom(client)
	if !ok {
		return
	}
	sendError(client, rm.StartGame(playerID))
}

// handleBackToLobby 房主在结算后返回大厅
func (h *Handler) handleBackToLobby(client types.ClientInterface) {
	rm, playerID, ok := h.currentRoom(client)
	if !ok {
		return
	}
	sendError(client, rm.BackToLobby(playerID))
}
