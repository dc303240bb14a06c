package room

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/palemoky/cheese-thief/internal/apperrors"
	"github.com/palemoky/cheese-thief/internal/game/rules"
	"github.com/palemoky/cheese-thief/internal/protocol"
	"github.com/palemoky/cheese-thief/internal/protocol/codec"
	"github.com/palemoky/cheese-thief/internal/types"
)

const maxNameLength = 16

// 设置项允许的范围（秒）
var (
	nightActionRange      = [2]int{5, 60}
	accompliceSelectRange = [2]int{5, 120}
	dayDiscussionRange    = [2]int{30, 900}
	votingRange           = [2]int{10, 300}
)

// Membership 加入房间的凭据，客户端用 SessionToken 重连
type Membership struct {
	RoomCode     string
	PlayerID     string
	SessionToken string
}

// AddPlayer 玩家加入房间，第一个加入的玩家成为房主
func (r *Room) AddPlayer(client types.ClientInterface, name string, avatarIndex int) (Membership, error) {
	r.lock()
	defer r.unlock()

	if r.closed {
		return Membership{}, apperrors.ErrRoomNotFound
	}
	if r.stage.phase() != protocol.PhaseLobby {
		return Membership{}, apperrors.ErrGameStarted
	}
	if len(r.players) >= rules.MaxPlayers {
		return Membership{}, apperrors.ErrRoomFull
	}

	name, ok := normalizeName(name)
	if !ok {
		return Membership{}, apperrors.ErrInvalidName
	}

	p := &Player{
		ID:           uuid.NewString(),
		Name:         name,
		AvatarIndex:  min(max(avatarIndex, 0), protocol.AvatarCount-1),
		SessionToken: generateToken(),
		IsHost:       len(r.players) == 0,
		client:       client,
	}
	r.players = append(r.players, p)
	client.SetRoom(r.Code)
	client.SetPlayerID(p.ID)

	r.log.Info().Str("player", p.Name).Int("count", len(r.players)).Msg("👤 玩家加入房间")

	m := Membership{RoomCode: r.Code, PlayerID: p.ID, SessionToken: p.SessionToken}
	p.send(codec.MustNewMessage(protocol.MsgRoomJoined, protocol.RoomJoinedPayload{
		RoomCode:     m.RoomCode,
		PlayerID:     m.PlayerID,
		SessionToken: m.SessionToken,
	}))
	r.broadcastState()
	return m, nil
}

// Leave 玩家主动离开房间
func (r *Room) Leave(playerID string) {
	r.lock()
	defer r.unlock()

	p := r.findPlayer(playerID)
	if p == nil {
		return
	}
	r.log.Info().Str("player", p.Name).Msg("👋 玩家离开房间")
	r.removePlayer(p)
}

// removePlayer 移除玩家，必要时转移房主并推进等待中的阶段
func (r *Room) removePlayer(p *Player) {
	p.disconnect.cancel()
	if p.client != nil {
		p.client.SetRoom("")
		p.client.SetPlayerID("")
		p.client = nil
	}

	for i, x := range r.players {
		if x == p {
			r.players = append(r.players[:i], r.players[i+1:]...)
			break
		}
	}

	if len(r.players) == 0 {
		r.closed = true
		r.cancelTimers()
		code := r.Code
		if r.onEmpty != nil {
			r.deferUnlocked(func() { r.onEmpty(code) })
		}
		r.log.Info().Msg("🏠 房间已空")
		return
	}

	if p.IsHost {
		p.IsHost = false
		r.players[0].IsHost = true
		r.log.Info().Str("host", r.players[0].Name).Msg("👑 房主转移")
	}

	switch st := r.stage.(type) {
	case *dealingStage:
		delete(st.ready, p.ID)
		if r.allDealt(st) {
			r.phaseTimer.cancel()
			r.enterNight()
			return
		}
	case *nightStage:
		delete(st.ready, p.ID)
		delete(st.turns, p.ID)
		st.awake = removeID(st.awake, p.ID)
		if r.nightRoundDone(st) {
			r.phaseTimer.cancel()
			r.advanceNight()
			return
		}
	case *votingStage:
		if r.allVoted() {
			r.voteTimer.cancel()
			r.endVoting()
			return
		}
	}

	r.broadcastState()
}

// UpdateSettings 房主在大厅修改设置，超出范围的值会被截断
func (r *Room) UpdateSettings(playerID string, s protocol.UpdateSettingsPayload) error {
	r.lock()
	defer r.unlock()

	if r.stage.phase() != protocol.PhaseLobby {
		return apperrors.ErrWrongPhase
	}
	if !r.isHost(playerID) {
		return apperrors.ErrNotHost
	}

	if s.UseScapegoat != nil {
		r.settings.UseScapegoat = *s.UseScapegoat
	}
	if s.NightActionSeconds != nil {
		r.settings.NightActionSeconds = clamp(*s.NightActionSeconds, nightActionRange)
	}
	if s.AccompliceSelectSeconds != nil {
		r.settings.AccompliceSelectSeconds = clamp(*s.AccompliceSelectSeconds, accompliceSelectRange)
	}
	if s.DayDiscussionSeconds != nil {
		r.settings.DayDiscussionSeconds = clamp(*s.DayDiscussionSeconds, dayDiscussionRange)
	}
	if s.VotingSeconds != nil {
		r.settings.VotingSeconds = clamp(*s.VotingSeconds, votingRange)
	}

	r.broadcastState()
	return nil
}

// StartGame 房主开始游戏
func (r *Room) StartGame(playerID string) error {
	r.lock()
	defer r.unlock()

	if r.stage.phase() != protocol.PhaseLobby {
		return apperrors.ErrWrongPhase
	}
	if !r.isHost(playerID) {
		return apperrors.ErrNotHost
	}
	if !rules.ValidPlayerCount(len(r.players)) {
		return apperrors.ErrPlayerCount
	}

	return r.deal()
}

// BackToLobby 房主在结算后返回大厅，保留玩家和连接
func (r *Room) BackToLobby(playerID string) error {
	r.lock()
	defer r.unlock()

	if r.stage.phase() != protocol.PhaseResult {
		return apperrors.ErrWrongPhase
	}
	if !r.isHost(playerID) {
		return apperrors.ErrNotHost
	}

	r.resetForNewGame()
	r.broadcastState()
	return nil
}

func (r *Room) resetForNewGame() {
	r.cancelTimers()
	for _, p := range r.players {
		p.resetRound()
	}
	r.round = nil
	r.stage = lobbyStage{}
	r.log.Info().Msg("🔄 返回大厅")
}

func normalizeName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	return name, n >= 1 && n <= maxNameLength
}

func clamp(v int, bounds [2]int) int {
	return min(max(v, bounds[0]), bounds[1])
}

func removeID(ids []string, id string) []string {
	out := ids[:0:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

// generateToken 生成会话令牌
func generateToken() string {
	bytes := make([]byte, 32)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
