package voice

import (
	"context"
	"errors"
	"fmt"

	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/rs/zerolog/log"
	"github.com/twitchtv/twirp"
)

// LiveKit 通过 RoomService 控制 LiveKit 房间内参与者的发布/订阅权限
type LiveKit struct {
	rooms *lksdk.RoomServiceClient
}

// NewLiveKit 创建客户端，url 可以是 ws(s):// 形式
func NewLiveKit(url, apiKey, apiSecret string) *LiveKit {
	return &LiveKit{rooms: lksdk.NewRoomServiceClient(url, apiKey, apiSecret)}
}

// isRoomNotFound 语音房间还没有人加入过
func isRoomNotFound(err error) bool {
	var te twirp.Error
	return errors.As(err, &te) && te.Code() == twirp.NotFound
}

// setPermissions 逐个更新参与者权限，单个失败不影响其他人
func (lk *LiveKit) setPermissions(ctx context.Context, roomCode string, allow func(identity string) bool) error {
	room := RoomName(roomCode)
	res, err := lk.rooms.ListParticipants(ctx, &livekit.ListParticipantsRequest{Room: room})
	if err != nil {
		if isRoomNotFound(err) {
			return nil
		}
		return fmt.Errorf("livekit list participants: %w", err)
	}

	participants := res.GetParticipants()
	var failed int
	for _, p := range participants {
		ok := allow(p.GetIdentity())
		_, err := lk.rooms.UpdateParticipant(ctx, &livekit.UpdateParticipantRequest{
			Room:     room,
			Identity: p.GetIdentity(),
			Permission: &livekit.ParticipantPermission{
				CanPublish:   ok,
				CanSubscribe: ok,
			},
		})
		if err != nil {
			failed++
			log.Warn().Err(err).Str("room", roomCode).Str("identity", p.GetIdentity()).Msg("⚠️ 更新语音权限失败")
		}
	}
	if failed > 0 {
		return fmt.Errorf("livekit: %d of %d participant updates failed", failed, len(participants))
	}
	return nil
}

// MuteAll 所有人禁止发言和收听
func (lk *LiveKit) MuteAll(ctx context.Context, roomCode string) error {
	return lk.setPermissions(ctx, roomCode, func(string) bool { return false })
}

// UnmuteAll 所有人恢复发言和收听
func (lk *LiveKit) UnmuteAll(ctx context.Context, roomCode string) error {
	return lk.setPermissions(ctx, roomCode, func(string) bool { return true })
}

// UnmuteSubset 只有 allowed 中的玩家可以发言和收听
func (lk *LiveKit) UnmuteSubset(ctx context.Context, roomCode string, allowed []string) error {
	set := make(map[string]bool, len(allowed))
	for _, id := range allowed {
		set[id] = true
	}
	return lk.setPermissions(ctx, roomCode, func(identity string) bool { return set[identity] })
}

// DeleteRoom 删除语音房间
func (lk *LiveKit) DeleteRoom(ctx context.Context, roomCode string) error {
	_, err := lk.rooms.DeleteRoom(ctx, &livekit.DeleteRoomRequest{Room: RoomName(roomCode)})
	if err != nil && !isRoomNotFound(err) {
		return fmt.Errorf("livekit delete room: %w", err)
	}
	return nil
}
