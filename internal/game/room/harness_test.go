package room

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/palemoky/cheese-thief/internal/config"
	"github.com/palemoky/cheese-thief/internal/protocol"
	"github.com/palemoky/cheese-thief/internal/server/storage"
	"github.com/palemoky/cheese-thief/internal/testutil"
)

var epoch = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

// 默认时长，与 config 默认值一致
const (
	introDelay    = 1500 * time.Millisecond
	emptyPause    = 2 * time.Second
	nightTurnWait = 15 * time.Second
	dealingWait   = 30 * time.Second
	selectWait    = 20 * time.Second
	revealDelay   = 5 * time.Second
	dayLength     = 180 * time.Second
	votingLength  = 30 * time.Second
	reconnectWait = 60 * time.Second
)

type harness struct {
	t       *testing.T
	clock   *testutil.FakeClock
	voice   *testutil.RecordingVoice
	room    *Room
	clients []*testutil.SimpleClient
	ids     []string
	tokens  []string
	emptied []string
}

func newHarness(t *testing.T, n int) *harness {
	t.Helper()
	return newHarnessWith(t, n, nil)
}

func newHarnessWith(t *testing.T, n int, recorder ResultRecorder) *harness {
	t.Helper()

	if recorder == nil {
		recorder = storage.NoopStore{}
	}

	h := &harness{
		t:     t,
		clock: testutil.NewFakeClock(epoch),
		voice: &testutil.RecordingVoice{},
	}
	h.room = New("TEST", Options{
		Timing:   testTiming(),
		Clock:    h.clock,
		NewRand:  func() *rand.Rand { return rand.New(rand.NewPCG(7, 11)) },
		Voice:    h.voice,
		Recorder: recorder,
		OnEmpty:  func(code string) { h.emptied = append(h.emptied, code) },
	})

	for range n {
		h.join()
	}
	return h
}

func testTiming() config.GameConfig {
	return config.GameConfig{
		NightActionSeconds:      15,
		NightIntroMillis:        1500,
		NightEmptyPauseMillis:   2000,
		DealingTimeoutSeconds:   30,
		AccompliceSelectSeconds: 20,
		AccompliceRevealSeconds: 5,
		DayDiscussionSeconds:    180,
		VotingSeconds:           30,
		ReconnectTimeoutSeconds: 60,
	}
}

func (h *harness) join() int {
	h.t.Helper()
	i := len(h.clients)
	c := testutil.NewSimpleClient(fmt.Sprintf("conn-%d", i))
	m, err := h.room.AddPlayer(c, fmt.Sprintf("玩家%d", i+1), i)
	require.NoError(h.t, err)
	h.clients = append(h.clients, c)
	h.ids = append(h.ids, m.PlayerID)
	h.tokens = append(h.tokens, m.SessionToken)
	return i
}

// stateOf 玩家 i 最后收到的状态
func (h *harness) stateOf(i int) *protocol.ClientGameState {
	h.t.Helper()
	s := h.clients[i].LastState()
	require.NotNil(h.t, s, "player %d has no state", i)
	return s
}

func (h *harness) player(i int) *Player {
	h.room.lock()
	defer h.room.unlock()
	return h.room.findPlayer(h.ids[i])
}

func (h *harness) start() {
	h.t.Helper()
	require.NoError(h.t, h.room.StartGame(h.ids[0]))
	require.Equal(h.t, protocol.PhaseDealing, h.room.Phase())
}

// rig 在发牌阶段覆盖身份和骰子，使测试可预期
func (h *harness) rig(roles []protocol.Role, dice [][]int) {
	h.t.Helper()
	h.room.lock()
	defer h.room.unlock()

	require.Len(h.t, roles, len(h.room.players))
	for i, p := range h.room.players {
		p.Role = roles[i]
		p.DiceValues = append([]int(nil), dice[i]...)
		if roles[i] == protocol.RoleThief {
			h.room.round.thiefID = p.ID
		}
	}
}

// confirmAll 所有玩家确认发牌，choices 为双骰子玩家的选择
func (h *harness) confirmAll(choices map[int]int) {
	h.t.Helper()
	for i := range h.ids {
		if c, ok := choices[i]; ok {
			h.room.DealingReady(h.ids[i], &c)
		} else {
			h.room.DealingReady(h.ids[i], nil)
		}
	}
	require.Equal(h.t, protocol.PhaseNight, h.room.Phase())
}

// toNight 开局并进入点数 1
func (h *harness) toNight(roles []protocol.Role, dice [][]int, choices map[int]int) {
	h.t.Helper()
	h.start()
	h.rig(roles, dice)
	h.confirmAll(choices)
	h.clock.Advance(introDelay)
}

func (h *harness) nightDice() int {
	h.room.lock()
	defer h.room.unlock()
	st, ok := h.room.stage.(*nightStage)
	if !ok {
		return -1
	}
	return st.dice
}

// skipNight 所有醒着的玩家依次准备直到天亮
func (h *harness) skipNight() {
	h.t.Helper()
	for range 20 {
		if h.room.Phase() != protocol.PhaseNight {
			return
		}
		h.room.lock()
		st := h.room.stage.(*nightStage)
		awake := append([]string(nil), st.awake...)
		h.room.unlock()

		if len(awake) == 0 {
			h.clock.Advance(emptyPause)
			continue
		}
		for _, id := range awake {
			h.room.NightReady(id)
		}
	}
	h.t.Fatal("night did not finish")
}

// toDay 4 人局快速到白天：大盗 [1,2]，其余玩家都在 3 醒来
func (h *harness) toDay() {
	h.t.Helper()
	roles := []protocol.Role{protocol.RoleThief, protocol.RoleSleepy, protocol.RoleSleepy, protocol.RoleSleepy}
	dice := [][]int{{1, 2}, {3, 4}, {3, 5}, {3, 6}}
	h.toNight(roles, dice, map[int]int{1: 3, 2: 3, 3: 3})
	h.room.NightSteal(h.ids[0])
	h.skipNight()
	require.Equal(h.t, protocol.PhaseDay, h.room.Phase())
}

func (h *harness) toVoting() {
	h.t.Helper()
	h.toDay()
	h.clock.Advance(dayLength)
	require.Equal(h.t, protocol.PhaseVoting, h.room.Phase())
}
