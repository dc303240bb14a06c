package room

import (
	"math"
	"time"

	"github.com/palemoky/cheese-thief/internal/protocol"
)

// buildView 生成某个玩家视角的完整状态，只读，调用方需持有房间锁
func (r *Room) buildView(viewerID string) protocol.ClientGameState {
	viewer := r.findPlayer(viewerID)

	state := protocol.ClientGameState{
		RoomCode: r.Code,
		Phase:    r.stage.phase(),
		Players:  make([]protocol.ClientPlayer, 0, len(r.players)),
		Settings: r.settings,
	}
	for _, p := range r.players {
		state.Players = append(state.Players, p.Redact(r.visibility(viewer, p)))
	}

	switch st := r.stage.(type) {
	case *nightStage:
		state.Night = r.nightView(st, viewer)
	case *accompliceStage:
		state.Accomplice = r.accompliceView(st, viewer)
	case *dayStage:
		state.Day = &protocol.ClientDayState{
			Messages:         append([]protocol.ChatMessage{}, st.messages...),
			RemainingSeconds: r.remaining(st.deadline),
		}
	case *votingStage:
		vs := &protocol.ClientVoteState{
			RemainingSeconds: r.remaining(st.deadline),
			VotedCount:       r.votedCount(),
			TotalCount:       len(r.players),
		}
		if viewer != nil && viewer.VotedFor != "" {
			target := viewer.VotedFor
			vs.YourVote = &target
		}
		state.Vote = vs
	case *resultStage:
		res := st.result
		state.Result = &res
	}
	return state
}

// visibility 观察者能看到目标玩家的哪些字段
func (r *Room) visibility(viewer, target *Player) Visibility {
	if r.stage.phase() == protocol.PhaseResult {
		return Visibility{Role: true, Dice: true, Accomplice: true, Votes: true}
	}
	if viewer == nil {
		return Visibility{}
	}
	if viewer == target {
		return Visibility{Role: true, Dice: true, Accomplice: true, OwnVote: true}
	}

	var v Visibility
	g := r.round
	if g == nil {
		return v
	}

	v.Dice = g.peeked(viewer.ID, target.ID)

	if g.accomplicesKnown {
		switch {
		case viewer.ID == g.thiefID && g.rules.ThiefKnowsAccomplice:
			v.Accomplice = true
		case viewer.IsAccomplice && g.rules.AccomplicesKnowEachOther && target.IsAccomplice:
			v.Accomplice = true
		}
		if viewer.IsAccomplice && g.rules.AccompliceKnowsThief && target.ID == g.thiefID {
			v.Role = true
		}
	}
	return v
}

func (r *Room) nightView(st *nightStage, viewer *Player) *protocol.ClientNightState {
	ns := &protocol.ClientNightState{
		CurrentDice:      st.dice,
		AwakePlayerIDs:   []string{},
		Seats:            []protocol.NightSeat{},
		RemainingSeconds: r.remaining(st.deadline),
	}
	if viewer == nil {
		return ns
	}

	g := r.round
	isThief := viewer.ID == g.thiefID
	if isThief {
		ns.HasStolen = g.cheeseStolen
	}

	// 大盗和目击者知道是谁偷的
	if g.cheeseStolen && (isThief || g.witnesses[viewer.ID]) {
		if thief := r.thief(); thief != nil {
			id, name := thief.ID, thief.Name
			ns.StealerID = &id
			ns.StealerName = &name
			ns.CheeseStealVisible = true
			if !st.stealAt.IsZero() {
				ts := st.stealAt.UnixMilli()
				ns.StealTimestamp = &ts
			}
		}
	}

	turn := st.turns[viewer.ID]
	if turn == nil {
		return ns
	}

	ns.IsYourTurn = true
	ns.AwakePlayerIDs = append(ns.AwakePlayerIDs, st.awake...)
	ns.CanSteal = turn.canSteal
	ns.CanViewDice = turn.canViewDice
	ns.HasActed = st.ready[viewer.ID]
	if turn.viewed != nil {
		v := *turn.viewed
		ns.ViewedDice = &v
	}
	if st.peekEvent != nil && st.peekEvent.ViewerID == viewer.ID {
		e := *st.peekEvent
		ns.ViewDiceAction = &e
	}

	awake := make(map[string]bool, len(st.awake))
	for _, id := range st.awake {
		awake[id] = true
	}
	for i, p := range r.players {
		ns.Seats = append(ns.Seats, protocol.NightSeat{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			SeatIndex:  i,
			IsAwake:    awake[p.ID],
			IsSelf:     p.ID == viewer.ID,
		})
	}
	return ns
}

func (r *Room) accompliceView(st *accompliceStage, viewer *Player) *protocol.ClientAccompliceState {
	as := &protocol.ClientAccompliceState{
		IsThiefSelecting:     st.selecting,
		SelectCount:          st.count,
		Candidates:           []protocol.Candidate{},
		RemainingSeconds:     r.remaining(st.deadline),
		KnownAccompliceIDs:   []string{},
		KnownAccompliceNames: []string{},
	}
	if viewer == nil {
		return as
	}

	g := r.round
	if viewer.ID == g.thiefID && st.selecting {
		for _, p := range r.accompliceCandidates() {
			as.Candidates = append(as.Candidates, protocol.Candidate{ID: p.ID, Name: p.Name})
		}
	}

	if !st.revealed || !viewer.IsAccomplice {
		return as
	}
	as.YouAreAccomplice = true
	if g.rules.AccompliceKnowsThief {
		if thief := r.thief(); thief != nil {
			id, name := thief.ID, thief.Name
			as.KnownThiefID = &id
			as.KnownThiefName = &name
		}
	}
	if g.rules.AccomplicesKnowEachOther {
		for _, id := range g.accompliceIDs {
			if id == viewer.ID {
				continue
			}
			if p := r.findPlayer(id); p != nil {
				as.KnownAccompliceIDs = append(as.KnownAccompliceIDs, p.ID)
				as.KnownAccompliceNames = append(as.KnownAccompliceNames, p.Name)
			}
		}
	}
	return as
}

// remaining 距离截止时间的剩余秒数，向上取整
func (r *Room) remaining(deadline time.Time) int {
	if deadline.IsZero() {
		return 0
	}
	left := deadline.Sub(r.now())
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Seconds()))
}
