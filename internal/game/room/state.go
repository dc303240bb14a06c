package room

import (
	"time"

	"github.com/palemoky/cheese-thief/internal/game/rules"
	"github.com/palemoky/cheese-thief/internal/protocol"
)

// stage 阶段数据，每个阶段只携带自己需要的字段
type stage interface {
	phase() protocol.Phase
}

type lobbyStage struct{}

type dealingStage struct {
	ready map[string]bool
}

// nightStage 夜晚数据，dice 为当前点数，0 表示入夜动画
type nightStage struct {
	dice     int
	active   bool // 本轮有人醒着且在等待行动
	awake    []string
	turns    map[string]*nightTurn // 仅醒着的玩家有记录
	ready    map[string]bool
	deadline time.Time

	stealAt   time.Time
	peekEvent *protocol.NightViewDiceAction
}

// nightTurn 某个醒着的玩家在本轮的状态
type nightTurn struct {
	canSteal    bool
	canViewDice bool
	viewed      *protocol.ViewedDice
	witnessed   bool
}

type accompliceStage struct {
	selecting bool
	count     int
	revealed  bool
	deadline  time.Time
}

type dayStage struct {
	messages []protocol.ChatMessage
	deadline time.Time
}

type votingStage struct {
	deadline time.Time
}

type resultStage struct {
	result protocol.ClientResultState
}

func (lobbyStage) phase() protocol.Phase       { return protocol.PhaseLobby }
func (*dealingStage) phase() protocol.Phase    { return protocol.PhaseDealing }
func (*nightStage) phase() protocol.Phase      { return protocol.PhaseNight }
func (*accompliceStage) phase() protocol.Phase { return protocol.PhaseAccomplice }
func (*dayStage) phase() protocol.Phase        { return protocol.PhaseDay }
func (*votingStage) phase() protocol.Phase     { return protocol.PhaseVoting }
func (*resultStage) phase() protocol.Phase     { return protocol.PhaseResult }

// NightLogEntry 夜晚行动记录
type NightLogEntry struct {
	Dice     int
	PlayerID string
	Action   protocol.NightActionKind
	TargetID string
	Value    int
}

// gameRound 一局游戏的数据，从发牌持续到返回大厅
type gameRound struct {
	rules        rules.Rules
	thiefID      string
	cheeseStolen bool
	log          []NightLogEntry

	witnesses        map[string]bool
	accompliceIDs    []string
	accomplicesKnown bool
	peeks            map[string]map[string]bool // 偷看者 → 被看的玩家
}

func newGameRound(r rules.Rules, thiefID string) *gameRound {
	return &gameRound{
		rules:     r,
		thiefID:   thiefID,
		witnesses: make(map[string]bool),
		peeks:     make(map[string]map[string]bool),
	}
}

func (g *gameRound) record(e NightLogEntry) {
	g.log = append(g.log, e)
}

func (g *gameRound) peeked(viewerID, targetID string) bool {
	return g.peeks[viewerID][targetID]
}

func (g *gameRound) addPeek(viewerID, targetID string) {
	if g.peeks[viewerID] == nil {
		g.peeks[viewerID] = make(map[string]bool)
	}
	g.peeks[viewerID][targetID] = true
}
