package handler

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/cheese-thief/internal/apperrors"
	"github.com/palemoky/cheese-thief/internal/game/room"
	"github.com/palemoky/cheese-thief/internal/logger"
	"github.com/palemoky/cheese-thief/internal/protocol"
	"github.com/palemoky/cheese-thief/internal/protocol/codec"
	"github.com/palemoky/cheese-thief/internal/types"
	"github.com/palemoky/cheese-thief/internal/voice"
)

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	Server      types.ServerInterface
	RoomManager *room.RoomManager
	ChatLimiter types.ChatLimiter
	Tokens      *voice.TokenIssuer // 未配置语音服务时为 nil
}

// Handler 把客户端消息转换为房间操作
type Handler struct {
	server      types.ServerInterface
	roomManager *room.RoomManager
	chatLimiter types.ChatLimiter
	tokens      *voice.TokenIssuer
	handlers    map[protocol.MessageType]handlerFunc
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{
		server:      deps.Server,
		roomManager: deps.RoomManager,
		chatLimiter: deps.ChatLimiter,
		tokens:      deps.Tokens,
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgPing:      h.handlePing,
		protocol.MsgReconnect: h.handleReconnect,

		// 房间操作
		protocol.MsgCreateRoom:     h.handleCreateRoom,
		protocol.MsgJoinRoom:       h.handleJoinRoom,
		protocol.MsgLeaveRoom:      func(c types.ClientInterface, _ *protocol.Message) { h.handleLeaveRoom(c) },
		protocol.MsgUpdateSettings: h.handleUpdateSettings,
		protocol.MsgStartGame:      func(c types.ClientInterface, _ *protocol.Message) { h.handleStartGame(c) },
		protocol.MsgBackToLobby:    func(c types.ClientInterface, _ *protocol.Message) { h.handleBackToLobby(c) },

		// 游戏操作
		protocol.MsgDealingReady:     h.handleDealingReady,
		protocol.MsgNightAction:      h.handleNightAction,
		protocol.MsgNightSteal:       func(c types.ClientInterface, _ *protocol.Message) { h.handleNightSteal(c) },
		protocol.MsgNightReady:       func(c types.ClientInterface, _ *protocol.Message) { h.handleNightReady(c) },
		protocol.MsgAccompliceSelect: h.handleAccompliceSelect,
		protocol.MsgSendMessage:      h.handleSendMessage,
		protocol.MsgCastVote:         h.handleCastVote,

		// 语音
		protocol.MsgRequestVoiceToken: func(c types.ClientInterface, _ *protocol.Message) { h.handleVoiceToken(c) },
	}
}

// Handle 处理一条消息，处理过程中的 panic 只影响当前客户端
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r, map[string]any{
				"conn": client.GetID(),
				"room": client.GetRoom(),
				"type": string(msg.Type),
			})
			client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInternal))
		}
	}()

	if handler, ok := h.handlers[msg.Type]; ok {
		handler(client, msg)
		return
	}

	log.Warn().
		Str("type", string(msg.Type)).
		Str("conn", client.GetID()).
		Int("payload_bytes", len(msg.Payload)).
		Msg("⚠️ 未知消息类型")
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}

// currentRoom 返回客户端所在房间和玩家 ID，不在房间时回复错误
func (h *Handler) currentRoom(client types.ClientInterface) (*room.Room, string, bool) {
	code, playerID := client.GetRoom(), client.GetPlayerID()
	if code == "" || playerID == "" {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return nil, "", false
	}

	rm := h.roomManager.GetRoom(code)
	if rm == nil {
		client.SetRoom("")
		client.SetPlayerID("")
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return nil, "", false
	}
	return rm, playerID, true
}

// leaveCurrent 客户端已在房间中时先离开
func (h *Handler) leaveCurrent(client types.ClientInterface) {
	code, playerID := client.GetRoom(), client.GetPlayerID()
	if code == "" {
		return
	}
	if rm := h.roomManager.GetRoom(code); rm != nil && playerID != "" {
		rm.Leave(playerID)
	}
	if h.chatLimiter != nil && playerID != "" {
		h.chatLimiter.RemovePlayer(playerID)
	}
	client.SetRoom("")
	client.SetPlayerID("")
}

// sendError 把房间返回的错误回复给客户端
func sendError(client types.ClientInterface, err error) {
	if err == nil {
		return
	}
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		client.SendMessage(codec.NewErrorMessage(gameErr.Code))
		return
	}
	log.Error().Err(err).Str("conn", client.GetID()).Msg("处理消息失败")
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInternal))
}

func invalidMessage(client types.ClientInterface) {
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}
