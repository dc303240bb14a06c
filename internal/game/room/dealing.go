package room

import (
	"github.com/palemoky/cheese-thief/internal/game/rules"
	"github.com/palemoky/cheese-thief/internal/protocol"
)

// deal 发身份和骰子，进入发牌阶段
func (r *Room) deal() error {
	rl, err := rules.Get(len(r.players))
	if err != nil {
		return err
	}
	deck, err := rules.BuildRoleDeck(len(r.players), r.settings.UseScapegoat)
	if err != nil {
		return err
	}
	r.rand.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	var thiefID string
	for i, p := range r.players {
		p.resetRound()
		p.Role = deck[i]
		p.DiceValues = make([]int, rl.DicePerPlayer)
		for d := range p.DiceValues {
			p.DiceValues[d] = r.rand.IntN(rules.DiceFaces) + 1
		}
		if p.Role == protocol.RoleThief {
			thiefID = p.ID
		}
	}

	r.round = newGameRound(rl, thiefID)
	r.stage = &dealingStage{ready: make(map[string]bool)}

	r.log.Info().Int("players", len(r.players)).Bool("scapegoat", r.settings.UseScapegoat).Msg("🎲 游戏开始，发牌")

	r.muteAll()
	r.broadcastState()
	r.phaseTimer.arm(r, r.timing.DealingTimeoutDuration(), r.dealingTimeout)
	return nil
}

// DealingReady 玩家确认身份，双骰子的非大盗玩家需要选择醒来的点数
// 非法或缺失的选择默认使用第一颗骰子
func (r *Room) DealingReady(playerID string, chosenWakeDice *int) {
	r.lock()
	defer r.unlock()

	st, ok := r.stage.(*dealingStage)
	if !ok {
		return
	}
	p := r.findPlayer(playerID)
	if p == nil || st.ready[p.ID] {
		return
	}

	r.confirmDealing(st, p, chosenWakeDice)
	r.log.Debug().Str("player", p.Name).Int("ready", len(st.ready)).Int("total", len(r.players)).Msg("✅ 发牌确认")

	if r.allDealt(st) {
		r.phaseTimer.cancel()
		r.enterNight()
		return
	}
	r.broadcastState()
}

func (r *Room) confirmDealing(st *dealingStage, p *Player, choice *int) {
	if len(p.DiceValues) > 1 && p.Role != protocol.RoleThief {
		if choice != nil && p.HasDie(*choice) {
			p.ChosenWakeDice = *choice
		} else {
			p.ChosenWakeDice = p.DiceValues[0]
		}
	}
	st.ready[p.ID] = true
}

func (r *Room) allDealt(st *dealingStage) bool {
	for _, p := range r.players {
		if !st.ready[p.ID] {
			return false
		}
	}
	return true
}

// dealingTimeout 替未确认的玩家确认
func (r *Room) dealingTimeout() {
	st, ok := r.stage.(*dealingStage)
	if !ok {
		return
	}
	for _, p := range r.players {
		if !st.ready[p.ID] {
			r.confirmDealing(st, p, nil)
		}
	}
	r.log.Info().Msg("⏰ 发牌确认超时，自动确认")
	r.enterNight()
}
