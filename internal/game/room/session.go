package room

import (
	"github.com/palemoky/cheese-thief/internal/apperrors"
	"github.com/palemoky/cheese-thief/internal/protocol"
	"github.com/palemoky/cheese-thief/internal/protocol/codec"
	"github.com/palemoky/cheese-thief/internal/types"
)

// Disconnect 连接断开，玩家保留到重连等待超时
// 已被新连接替换的旧连接断开时忽略
func (r *Room) Disconnect(client types.ClientInterface) {
	r.lock()
	defer r.unlock()

	p := r.findPlayer(client.GetPlayerID())
	if p == nil || p.client != client {
		return
	}
	p.client = nil

	timeout := r.timing.ReconnectTimeoutDuration()
	r.log.Info().Str("player", p.Name).Dur("grace", timeout).Msg("📴 玩家掉线")

	r.broadcast(codec.MustNewMessage(protocol.MsgPlayerDisconnected, protocol.PlayerDisconnectedPayload{
		PlayerID: p.ID,
		Name:     p.Name,
		Timeout:  int(timeout.Seconds()),
	}))
	r.broadcastState()

	p.disconnect.arm(r, timeout, func() {
		r.log.Warn().Str("player", p.Name).Msg("⏰ 玩家重连超时，已移出房间")
		r.removePlayer(p)
	})
}

// Reconnect 使用会话令牌恢复身份，身份、角色、骰子和投票保持不变
func (r *Room) Reconnect(client types.ClientInterface, token string) (Membership, error) {
	r.lock()
	defer r.unlock()

	if r.closed {
		return Membership{}, apperrors.ErrRoomNotFound
	}
	p := r.findByToken(token)
	if p == nil {
		return Membership{}, apperrors.ErrSessionExpired
	}

	p.disconnect.cancel()
	if old := p.client; old != nil && old != client {
		old.SetRoom("")
		old.SetPlayerID("")
		old.Close()
	}
	p.client = client
	client.SetRoom(r.Code)
	client.SetPlayerID(p.ID)

	r.log.Info().Str("player", p.Name).Msg("🔌 玩家重连")

	p.send(codec.MustNewMessage(protocol.MsgReconnected, protocol.ReconnectedPayload{
		RoomCode: r.Code,
		PlayerID: p.ID,
	}))
	r.broadcastState()
	return Membership{RoomCode: r.Code, PlayerID: p.ID, SessionToken: p.SessionToken}, nil
}
