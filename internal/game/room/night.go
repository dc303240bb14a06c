package room

import (
	"time"

	"github.com/palemoky/cheese-thief/internal/apperrors"
	"github.com/palemoky/cheese-thief/internal/game/rules"
	"github.com/palemoky/cheese-thief/internal/protocol"
)

// enterNight 入夜，短暂停顿后从点数 1 开始
func (r *Room) enterNight() {
	r.stage = &nightStage{}
	r.log.Info().Msg("🌙 入夜")

	r.muteAll()
	r.broadcastState()
	r.phaseTimer.arm(r, r.timing.NightIntroDuration(), r.advanceNight)
}

// awakeSet 某个点数下醒来的玩家，按座位顺序
func (r *Room) awakeSet(dice int) []string {
	var ids []string
	for _, p := range r.players {
		if r.round != nil && p.ID == r.round.thiefID {
			if p.HasDie(dice) {
				ids = append(ids, p.ID)
			}
			continue
		}
		if p.WakeValue() == dice {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// advanceNight 进入下一个点数，全部点数结束后天亮
func (r *Room) advanceNight() {
	st, ok := r.stage.(*nightStage)
	if !ok {
		return
	}

	st.dice++
	st.active = false
	st.awake = nil
	st.turns = make(map[string]*nightTurn)
	st.ready = make(map[string]bool)
	st.deadline = time.Time{}
	st.stealAt = time.Time{}
	st.peekEvent = nil

	if st.dice > rules.DiceFaces {
		r.endNight()
		return
	}

	awake := r.awakeSet(st.dice)
	if len(awake) == 0 {
		r.log.Debug().Int("dice", st.dice).Msg("😴 无人醒来")
		r.muteAll()
		r.broadcastState()
		r.phaseTimer.arm(r, r.timing.NightEmptyPauseDuration(), r.advanceNight)
		return
	}

	st.awake = awake
	st.active = true
	lone := len(awake) == 1
	for _, id := range awake {
		turn := &nightTurn{}
		if id == r.round.thiefID {
			turn.canSteal = !r.round.cheeseStolen
		} else {
			turn.canViewDice = lone && r.round.rules.SleepyCanViewDice
		}
		st.turns[id] = turn
	}

	d := time.Duration(r.settings.NightActionSeconds) * time.Second
	st.deadline = r.now().Add(d)

	r.log.Debug().Int("dice", st.dice).Strs("awake", awake).Msg("👀 醒来")
	r.unmuteSubset(awake)
	r.broadcastState()
	r.phaseTimer.arm(r, d, r.nightTimeout)
}

// nightTimeout 本轮超时，醒着的大盗若还没偷则强制偷取
func (r *Room) nightTimeout() {
	st, ok := r.stage.(*nightStage)
	if !ok {
		return
	}
	if thief := r.thief(); thief != nil {
		if turn := st.turns[thief.ID]; turn != nil && turn.canSteal {
			r.log.Info().Int("dice", st.dice).Msg("⏰ 夜晚超时，自动偷奶酪")
			r.steal(st, thief)
		}
	}
	r.advanceNight()
}

func (r *Room) nightRoundDone(st *nightStage) bool {
	if !st.active {
		return false
	}
	for _, id := range st.awake {
		if !st.ready[id] {
			return false
		}
	}
	return true
}

// NightSteal 大盗偷奶酪，每局只能成功一次，重复调用无效
func (r *Room) NightSteal(playerID string) {
	r.lock()
	defer r.unlock()

	st, ok := r.stage.(*nightStage)
	if !ok {
		return
	}
	p := r.findPlayer(playerID)
	if p == nil || p.ID != r.round.thiefID {
		return
	}
	turn := st.turns[p.ID]
	if turn == nil || !turn.canSteal {
		return
	}

	r.log.Info().Int("dice", st.dice).Msg("🧀 大盗偷走了奶酪")
	r.steal(st, p)
	r.broadcastState()
}

// steal 记录偷取，本轮其他醒着的玩家成为目击者
func (r *Room) steal(st *nightStage, thief *Player) {
	turn := st.turns[thief.ID]
	if turn == nil || r.round.cheeseStolen {
		return
	}
	turn.canSteal = false
	r.round.cheeseStolen = true
	st.stealAt = r.now()
	r.round.record(NightLogEntry{Dice: st.dice, PlayerID: thief.ID, Action: protocol.NightActionSteal})

	for _, id := range st.awake {
		if id == thief.ID {
			continue
		}
		st.turns[id].witnessed = true
		r.round.witnesses[id] = true
		r.round.record(NightLogEntry{Dice: st.dice, PlayerID: id, Action: protocol.NightActionWitness, TargetID: thief.ID})
	}
}

// NightAction 偷看骰子或跳过，跳过等同于行动完毕
func (r *Room) NightAction(playerID string, action protocol.NightActionKind, targetID string) error {
	r.lock()
	defer r.unlock()

	st, ok := r.stage.(*nightStage)
	if !ok {
		return nil
	}
	p := r.findPlayer(playerID)
	if p == nil {
		return nil
	}
	turn := st.turns[p.ID]
	if turn == nil {
		return nil
	}

	switch action {
	case protocol.NightActionSkip:
		r.round.record(NightLogEntry{Dice: st.dice, PlayerID: p.ID, Action: protocol.NightActionSkip})
		r.markNightReady(st, p)
		return nil

	case protocol.NightActionViewDice:
		if !turn.canViewDice {
			return nil
		}
		target := r.findPlayer(targetID)
		if target == nil || target.ID == p.ID || len(target.DiceValues) == 0 {
			return apperrors.ErrInvalidTarget
		}

		value := target.DiceValues[0]
		turn.canViewDice = false
		turn.viewed = &protocol.ViewedDice{TargetID: target.ID, TargetName: target.Name, Value: value}
		st.peekEvent = &protocol.NightViewDiceAction{
			ViewerID:   p.ID,
			ViewerName: p.Name,
			TargetID:   target.ID,
			TargetName: target.Name,
			Value:      value,
			Timestamp:  r.now().UnixMilli(),
		}
		r.round.addPeek(p.ID, target.ID)
		r.round.record(NightLogEntry{Dice: st.dice, PlayerID: p.ID, Action: protocol.NightActionViewDice, TargetID: target.ID, Value: value})

		r.log.Debug().Str("player", p.Name).Str("target", target.Name).Msg("🔍 偷看骰子")
		r.broadcastState()
		return nil
	}

	return apperrors.ErrInvalidMsg
}

// NightReady 醒着的玩家本轮行动完毕
func (r *Room) NightReady(playerID string) {
	r.lock()
	defer r.unlock()

	st, ok := r.stage.(*nightStage)
	if !ok {
		return
	}
	if p := r.findPlayer(playerID); p != nil {
		r.markNightReady(st, p)
	}
}

func (r *Room) markNightReady(st *nightStage, p *Player) {
	if st.turns[p.ID] == nil || st.ready[p.ID] {
		return
	}
	st.ready[p.ID] = true

	if r.nightRoundDone(st) {
		r.phaseTimer.cancel()
		r.advanceNight()
		return
	}
	r.broadcastState()
}

// endNight 天亮：需要大盗选同伙的人数进入同伙阶段，否则直接进入白天
func (r *Room) endNight() {
	r.phaseTimer.cancel()
	rl := r.round.rules

	if rl.HasAccomplicePhase {
		r.enterAccomplice()
		return
	}
	if rl.AccompliceMethod == rules.AccompliceNatural {
		r.resolveNaturalAccomplice()
	}
	r.enterDay()
}

// resolveNaturalAccomplice 大盗骰子对应轮次的唯一目击者成为同伙，零个或多个目击者时没有同伙
func (r *Room) resolveNaturalAccomplice() {
	thief := r.thief()
	if thief == nil || len(thief.DiceValues) == 0 {
		return
	}
	dice := thief.DiceValues[0]

	var witnesses []string
	for _, e := range r.round.log {
		if e.Action == protocol.NightActionWitness && e.Dice == dice {
			witnesses = append(witnesses, e.PlayerID)
		}
	}
	r.round.accomplicesKnown = true
	if len(witnesses) != 1 {
		r.log.Info().Int("witnesses", len(witnesses)).Msg("🐭 没有自然同伙")
		return
	}

	if p := r.findPlayer(witnesses[0]); p != nil {
		p.IsAccomplice = true
		r.round.accompliceIDs = []string{p.ID}
		r.log.Info().Str("accomplice", p.Name).Msg("🐭 自然同伙产生")
	}
}
