package room

import (
	"time"

	"github.com/palemoky/cheese-thief/internal/apperrors"
	"github.com/palemoky/cheese-thief/internal/protocol"
)

// enterAccomplice 大盗在限定时间内选择同伙
func (r *Room) enterAccomplice() {
	count := min(r.round.rules.AccompliceCount, len(r.accompliceCandidates()))
	d := time.Duration(r.settings.AccompliceSelectSeconds) * time.Second

	r.stage = &accompliceStage{
		selecting: true,
		count:     count,
		deadline:  r.now().Add(d),
	}
	r.log.Info().Int("count", count).Msg("🤝 大盗选择同伙")

	r.muteAll()
	r.broadcastState()
	r.phaseTimer.arm(r, d, r.accompliceTimeout)
}

// accompliceCandidates 可以被选为同伙的玩家：非大盗、非背锅鼠
func (r *Room) accompliceCandidates() []*Player {
	var out []*Player
	for _, p := range r.players {
		if p.ID == r.round.thiefID || p.Role == protocol.RoleScapegoat {
			continue
		}
		out = append(out, p)
	}
	return out
}

// AccompliceSelect 大盗提交同伙，必须恰好选择规定人数，提交后不可更改
func (r *Room) AccompliceSelect(playerID string, targetIDs []string) error {
	r.lock()
	defer r.unlock()

	st, ok := r.stage.(*accompliceStage)
	if !ok || !st.selecting || playerID != r.round.thiefID {
		return nil
	}

	if len(targetIDs) != st.count {
		return apperrors.ErrInvalidSelection
	}
	eligible := make(map[string]bool)
	for _, p := range r.accompliceCandidates() {
		eligible[p.ID] = true
	}
	seen := make(map[string]bool, len(targetIDs))
	for _, id := range targetIDs {
		if !eligible[id] || seen[id] {
			return apperrors.ErrInvalidSelection
		}
		seen[id] = true
	}

	r.phaseTimer.cancel()
	r.applyAccomplices(st, targetIDs)
	return nil
}

// accompliceTimeout 大盗未提交时随机选择
func (r *Room) accompliceTimeout() {
	st, ok := r.stage.(*accompliceStage)
	if !ok || !st.selecting {
		return
	}

	candidates := r.accompliceCandidates()
	r.rand.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })

	ids := make([]string, 0, st.count)
	for _, p := range candidates[:min(st.count, len(candidates))] {
		ids = append(ids, p.ID)
	}
	r.log.Info().Strs("accomplices", ids).Msg("⏰ 选择同伙超时，随机选择")
	r.applyAccomplices(st, ids)
}

func (r *Room) applyAccomplices(st *accompliceStage, ids []string) {
	st.selecting = false
	st.revealed = true
	st.deadline = time.Time{}

	for _, id := range ids {
		if p := r.findPlayer(id); p != nil {
			p.IsAccomplice = true
		}
	}
	r.round.accompliceIDs = append([]string(nil), ids...)
	r.round.accomplicesKnown = true

	r.broadcastState()
	r.phaseTimer.arm(r, r.timing.AccompliceRevealDuration(), r.enterDay)
}
