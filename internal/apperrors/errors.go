package apperrors

import (
	"github.com/palemoky/cheese-thief/internal/protocol"
)

// GameError 游戏错误（房间和会话共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

func newError(code int) *GameError {
	return &GameError{Code: code, Message: protocol.ErrorMessages[code]}
}

// 预定义错误
var (
	ErrRoomNotFound     = newError(protocol.ErrCodeRoomNotFound)
	ErrRoomFull         = newError(protocol.ErrCodeRoomFull)
	ErrNotInRoom        = newError(protocol.ErrCodeNotInRoom)
	ErrGameStarted      = newError(protocol.ErrCodeGameStarted)
	ErrSessionExpired   = newError(protocol.ErrCodeSessionExpired)
	ErrInvalidName      = newError(protocol.ErrCodeInvalidName)
	ErrSpaceExhausted   = newError(protocol.ErrCodeSpaceExhausted)
	ErrNotHost          = newError(protocol.ErrCodeNotHost)
	ErrPlayerCount      = newError(protocol.ErrCodePlayerCount)
	ErrWrongPhase       = newError(protocol.ErrCodeWrongPhase)
	ErrInvalidTarget    = newError(protocol.ErrCodeInvalidTarget)
	ErrInvalidVote      = newError(protocol.ErrCodeInvalidVote)
	ErrInvalidSelection = newError(protocol.ErrCodeInvalidSelect)
	ErrInvalidChat      = newError(protocol.ErrCodeInvalidChat)
	ErrInvalidMsg       = newError(protocol.ErrCodeInvalidMsg)
	ErrInternal         = newError(protocol.ErrCodeInternal)
	ErrMaintenance      = newError(protocol.ErrCodeMaintenance)
)
