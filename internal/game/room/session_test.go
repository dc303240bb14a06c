package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/cheese-thief/internal/apperrors"
	"github.com/palemoky/cheese-thief/internal/protocol"
	"github.com/palemoky/cheese-thief/internal/protocol/codec"
	"github.com/palemoky/cheese-thief/internal/testutil"
)

func TestRoom_Disconnect_NotifiesOthers(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 3)

	// Execute
	h.room.Disconnect(h.clients[1])

	// Verify
	msg := h.clients[0].Last(protocol.MsgPlayerDisconnected)
	require.NotNil(t, msg)
	payload, err := codec.ParsePayload[protocol.PlayerDisconnectedPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.PlayerDisconnectedPayload{PlayerID: h.ids[1], Name: "玩家2", Timeout: 60}, *payload)

	assert.False(t, h.stateOf(0).Players[1].IsConnected)
	assert.Equal(t, 3, h.room.PlayerCount())
}

func TestRoom_Reconnect_WithinGrace(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 4)
	h.start()
	before := *h.player(2)
	h.room.Disconnect(h.clients[2])
	h.clock.Advance(20 * time.Second)

	// Execute
	fresh := testutil.NewSimpleClient("conn-new")
	m, err := h.room.Reconnect(fresh, h.tokens[2])

	// Verify identity and round data are preserved
	require.NoError(t, err)
	assert.Equal(t, Membership{RoomCode: "TEST", PlayerID: h.ids[2], SessionToken: h.tokens[2]}, m)
	assert.Equal(t, h.ids[2], fresh.GetPlayerID())
	assert.Equal(t, "TEST", fresh.GetRoom())

	ack := fresh.Last(protocol.MsgReconnected)
	require.NotNil(t, ack)
	payload, err := codec.ParsePayload[protocol.ReconnectedPayload](ack)
	require.NoError(t, err)
	assert.Equal(t, h.ids[2], payload.PlayerID)

	state := fresh.LastState()
	require.NotNil(t, state)
	assert.Equal(t, protocol.PhaseDealing, state.Phase)
	require.NotNil(t, state.Players[2].Role)
	assert.Equal(t, before.Role, *state.Players[2].Role)
	assert.Equal(t, before.DiceValues, state.Players[2].DiceValues)
	assert.True(t, h.stateOf(0).Players[2].IsConnected)

	// Grace timer was cancelled
	h.clock.Advance(time.Minute)
	assert.Equal(t, 4, h.room.PlayerCount())
}

func TestRoom_Reconnect_AfterGrace(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 3)
	h.room.Disconnect(h.clients[0])

	// Execute
	h.clock.Advance(reconnectWait)

	// Verify player removed and host transferred
	assert.Equal(t, 2, h.room.PlayerCount())
	assert.True(t, h.player(1).IsHost)

	_, err := h.room.Reconnect(testutil.NewSimpleClient("late"), h.tokens[0])
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired)
}

func TestRoom_Reconnect_ReplacesLiveConnection(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 2)
	old := h.clients[1]

	// Execute: second tab takes over before the first one drops
	fresh := testutil.NewSimpleClient("conn-tab2")
	_, err := h.room.Reconnect(fresh, h.tokens[1])
	require.NoError(t, err)

	// Verify old connection is detached and closed
	assert.True(t, old.Closed)
	assert.Empty(t, old.GetPlayerID())

	// Late close of the old socket does not mark the player offline
	old.SetPlayerID(h.ids[1])
	h.room.Disconnect(old)
	assert.True(t, h.stateOf(0).Players[1].IsConnected)
	h.clock.Advance(reconnectWait)
	assert.Equal(t, 2, h.room.PlayerCount())
}

func TestRoom_Reconnect_Errors(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 1)

	_, err := h.room.Reconnect(testutil.NewSimpleClient("c"), "")
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired)
	_, err = h.room.Reconnect(testutil.NewSimpleClient("c"), "deadbeef")
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired)

	h.room.Leave(h.ids[0])
	_, err = h.room.Reconnect(testutil.NewSimpleClient("c"), h.tokens[0])
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)
}

func TestRoom_RemovalDuringVoting_EndsVote(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 4)
	require.NoError(t, h.room.UpdateSettings(h.ids[0], protocol.UpdateSettingsPayload{VotingSeconds: intPtr(300)}))
	h.toVoting()
	for i := range 3 {
		require.NoError(t, h.room.CastVote(h.ids[i], h.ids[3]))
	}
	h.room.Disconnect(h.clients[3])

	// Execute
	h.clock.Advance(reconnectWait)

	// Verify
	assert.Equal(t, protocol.PhaseResult, h.room.Phase())
	assert.Equal(t, 3, h.room.PlayerCount())
}

func TestRoom_RemovalDuringNight_AdvancesRound(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 4)
	h.toNight(roles4, [][]int{{5, 6}, {1, 2}, {1, 3}, {4, 4}}, map[int]int{1: 1, 2: 1})
	h.room.NightReady(h.ids[1])
	require.Equal(t, 1, h.nightDice())

	// Execute: the remaining awake player leaves
	h.room.Leave(h.ids[2])

	// Verify
	assert.Equal(t, 2, h.nightDice())
	assert.Equal(t, 3, h.room.PlayerCount())
}

func TestRoom_RemovalDuringDealing_StartsNight(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 4)
	h.start()
	for i := range 3 {
		h.room.DealingReady(h.ids[i], nil)
	}

	h.room.Leave(h.ids[3])

	assert.Equal(t, protocol.PhaseNight, h.room.Phase())
}
