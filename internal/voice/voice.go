// Package voice 控制 LiveKit 语音频道：按阶段静音、签发加入令牌
package voice

import (
	"context"

	"github.com/palemoky/cheese-thief/internal/protocol"
)

// Controller 语音频道控制
type Controller interface {
	MuteAll(ctx context.Context, roomCode string) error
	UnmuteAll(ctx context.Context, roomCode string) error
	UnmuteSubset(ctx context.Context, roomCode string, allowed []string) error
	DeleteRoom(ctx context.Context, roomCode string) error
}

// 可以发言的阶段
var speakablePhases = map[protocol.Phase]bool{
	protocol.PhaseLobby:  true,
	protocol.PhaseNight:  true,
	protocol.PhaseDay:    true,
	protocol.PhaseResult: true,
}

// CanPublishInPhase 新加入语音的玩家在该阶段是否可以发言
// 夜晚只有醒着的玩家会被单独解除静音，令牌本身允许发言
func CanPublishInPhase(phase protocol.Phase) bool {
	return speakablePhases[phase]
}

// RoomName 游戏房间对应的语音房间名
func RoomName(roomCode string) string {
	return "game-" + roomCode
}

// Noop 未配置语音服务时使用
type Noop struct{}

func (Noop) MuteAll(context.Context, string) error                { return nil }
func (Noop) UnmuteAll(context.Context, string) error              { return nil }
func (Noop) UnmuteSubset(context.Context, string, []string) error { return nil }
func (Noop) DeleteRoom(context.Context, string) error             { return nil }
