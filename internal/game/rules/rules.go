// Package rules 按玩家人数划分的固定规则表
package rules

import (
	"fmt"

	"github.com/palemoky/cheese-thief/internal/protocol"
)

const (
	MinPlayers = 4
	MaxPlayers = 8
	DiceFaces  = 6 // 骰子点数 1-6
)

// AccompliceMethod 同伙产生方式
type AccompliceMethod string

const (
	AccompliceNone        AccompliceMethod = "none"
	AccompliceNatural     AccompliceMethod = "natural"      // 大盗骰子对应轮次的唯一目击者
	AccompliceThiefSelect AccompliceMethod = "thief_select" // 夜晚结束后大盗指定
)

// Rules 某个人数下的规则
type Rules struct {
	PlayerCount        int
	DicePerPlayer      int
	SleepyCanViewDice  bool // 独自醒来的贪睡鼠能否偷看他人骰子
	HasAccomplicePhase bool
	AccompliceCount    int
	AccompliceMethod   AccompliceMethod

	ThiefKnowsAccomplice     bool
	AccompliceKnowsThief     bool
	AccomplicesKnowEachOther bool

	CanUseScapegoat bool
}

var table = map[int]Rules{
	4: {
		PlayerCount:      4,
		DicePerPlayer:    2,
		AccompliceMethod: AccompliceNone,
	},
	5: {
		PlayerCount:          5,
		DicePerPlayer:        1,
		SleepyCanViewDice:    true,
		AccompliceMethod:     AccompliceNatural,
		ThiefKnowsAccomplice: true,
		AccompliceKnowsThief: true,
	},
	6: {
		PlayerCount:          6,
		DicePerPlayer:        1,
		SleepyCanViewDice:    true,
		HasAccomplicePhase:   true,
		AccompliceCount:      1,
		AccompliceMethod:     AccompliceThiefSelect,
		ThiefKnowsAccomplice: true,
		AccompliceKnowsThief: true,
		CanUseScapegoat:      true,
	},
	7: {
		PlayerCount:              7,
		DicePerPlayer:            1,
		SleepyCanViewDice:        true,
		HasAccomplicePhase:       true,
		AccompliceCount:          2,
		AccompliceMethod:         AccompliceThiefSelect,
		ThiefKnowsAccomplice:     true,
		AccomplicesKnowEachOther: true,
		CanUseScapegoat:          true,
	},
	8: {
		PlayerCount:              8,
		DicePerPlayer:            1,
		SleepyCanViewDice:        true,
		HasAccomplicePhase:       true,
		AccompliceCount:          2,
		AccompliceMethod:         AccompliceThiefSelect,
		ThiefKnowsAccomplice:     true,
		AccompliceKnowsThief:     true,
		AccomplicesKnowEachOther: true,
		CanUseScapegoat:          true,
	},
}

// ErrPlayerCount 人数超出规则表范围
type ErrPlayerCount int

func (e ErrPlayerCount) Error() string {
	return fmt.Sprintf("player count must be between %d and %d, got %d", MinPlayers, MaxPlayers, int(e))
}

// Get 返回指定人数的规则
func Get(playerCount int) (Rules, error) {
	r, ok := table[playerCount]
	if !ok {
		return Rules{}, ErrPlayerCount(playerCount)
	}
	return r, nil
}

// ValidPlayerCount 人数是否可以开局
func ValidPlayerCount(n int) bool {
	return n >= MinPlayers && n <= MaxPlayers
}

// BuildRoleDeck 生成未洗牌的身份牌组：一个大盗，可选一个背锅鼠，其余为贪睡鼠
func BuildRoleDeck(playerCount int, useScapegoat bool) ([]protocol.Role, error) {
	r, err := Get(playerCount)
	if err != nil {
		return nil, err
	}

	deck := make([]protocol.Role, 0, playerCount)
	deck = append(deck, protocol.RoleThief)
	if useScapegoat && r.CanUseScapegoat {
		deck = append(deck, protocol.RoleScapegoat)
	}
	for len(deck) < playerCount {
		deck = append(deck, protocol.RoleSleepy)
	}
	return deck, nil
}
