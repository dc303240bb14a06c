package room

import (
	"github.com/palemoky/cheese-thief/internal/protocol"
	"github.com/palemoky/cheese-thief/internal/types"
)

// Player 房间中的玩家
// ID 在加入房间时生成且不再变化；client 为当前连接，断线期间为 nil
type Player struct {
	ID           string
	Name         string
	AvatarIndex  int
	SessionToken string
	IsHost       bool

	// 每局重置
	Role           protocol.Role // 发牌前为空
	DiceValues     []int
	ChosenWakeDice int // 0 表示未选择
	IsAccomplice   bool
	HasVoted       bool
	VotedFor       string
	VoteCount      int

	client     types.ClientInterface
	disconnect ownedTimer
}

// IsConnected 是否在线
func (p *Player) IsConnected() bool {
	return p.client != nil
}

// WakeValue 夜晚醒来的点数（非大盗）
func (p *Player) WakeValue() int {
	if len(p.DiceValues) == 0 {
		return 0
	}
	if len(p.DiceValues) > 1 && p.ChosenWakeDice != 0 {
		return p.ChosenWakeDice
	}
	return p.DiceValues[0]
}

// HasDie 是否掷出了某个点数
func (p *Player) HasDie(value int) bool {
	for _, v := range p.DiceValues {
		if v == value {
			return true
		}
	}
	return false
}

func (p *Player) resetRound() {
	p.Role = ""
	p.DiceValues = nil
	p.ChosenWakeDice = 0
	p.IsAccomplice = false
	p.resetVote()
}

func (p *Player) resetVote() {
	p.HasVoted = false
	p.VotedFor = ""
	p.VoteCount = 0
}

func (p *Player) send(msg *protocol.Message) bool {
	if p.client == nil {
		return false
	}
	p.client.SendMessage(msg)
	return true
}

// Visibility 观察者对某个玩家可见的字段
type Visibility struct {
	Role       bool
	Dice       bool
	Accomplice bool
	Votes      bool // 得票数和投票对象（结算时）
	OwnVote    bool
}

// Redact 按可见性生成客户端玩家信息，不可见字段为 null
func (p *Player) Redact(v Visibility) protocol.ClientPlayer {
	cp := protocol.ClientPlayer{
		ID:          p.ID,
		Name:        p.Name,
		AvatarIndex: p.AvatarIndex,
		IsHost:      p.IsHost,
		IsConnected: p.IsConnected(),
		HasVoted:    p.HasVoted,
	}

	if v.Role && p.Role != "" {
		role := p.Role
		cp.Role = &role
	}
	if v.Dice && p.DiceValues != nil {
		cp.DiceValues = append([]int(nil), p.DiceValues...)
	}
	if v.Accomplice {
		acc := p.IsAccomplice
		cp.IsAccomplice = &acc
	}
	if v.Votes {
		count := p.VoteCount
		cp.VoteCount = &count
	}
	if (v.Votes || v.OwnVote) && p.VotedFor != "" {
		target := p.VotedFor
		cp.VotedFor = &target
	}
	return cp
}
