package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/cheese-thief/internal/apperrors"
	"github.com/palemoky/cheese-thief/internal/protocol"
	"github.com/palemoky/cheese-thief/internal/protocol/codec"
	"github.com/palemoky/cheese-thief/internal/server/storage"
	"github.com/palemoky/cheese-thief/internal/testutil"
)

func TestRoom_CastVote_Validation(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 4)
	h.toDay()

	// Wrong phase
	assert.ErrorIs(t, h.room.CastVote(h.ids[0], h.ids[1]), apperrors.ErrWrongPhase)

	h.clock.Advance(dayLength)

	assert.ErrorIs(t, h.room.CastVote(h.ids[0], h.ids[0]), apperrors.ErrInvalidVote)
	assert.ErrorIs(t, h.room.CastVote(h.ids[0], "ghost"), apperrors.ErrInvalidVote)
	assert.ErrorIs(t, h.room.CastVote("ghost", h.ids[0]), apperrors.ErrNotInRoom)

	require.NoError(t, h.room.CastVote(h.ids[0], h.ids[1]))
	assert.ErrorIs(t, h.room.CastVote(h.ids[0], h.ids[2]), apperrors.ErrInvalidVote)
	assert.Equal(t, h.ids[1], h.player(0).VotedFor)
}

func TestRoom_CastVote_Progress(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 4)
	h.toVoting()

	// Execute
	require.NoError(t, h.room.CastVote(h.ids[2], h.ids[0]))

	// Verify broadcast counters
	update := h.clients[3].Last(protocol.MsgVoteUpdate)
	require.NotNil(t, update)
	payload, err := codec.ParsePayload[protocol.VoteUpdatePayload](update)
	require.NoError(t, err)
	assert.Equal(t, protocol.VoteUpdatePayload{VotedCount: 1, TotalCount: 4}, *payload)

	// Voter sees own choice, others see only that a vote happened
	own := h.stateOf(2)
	require.NotNil(t, own.Vote.YourVote)
	assert.Equal(t, h.ids[0], *own.Vote.YourVote)
	require.NotNil(t, own.Players[2].VotedFor)

	other := h.stateOf(3)
	assert.Nil(t, other.Vote.YourVote)
	assert.True(t, other.Players[2].HasVoted)
	assert.Nil(t, other.Players[2].VotedFor)
	assert.Nil(t, other.Players[0].VoteCount)
}

func TestRoom_CastVote_AllVotedEndsImmediately(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 4)
	h.toVoting()

	// Execute: everyone votes the thief
	require.NoError(t, h.room.CastVote(h.ids[0], h.ids[1]))
	for i := 1; i < 4; i++ {
		require.NoError(t, h.room.CastVote(h.ids[i], h.ids[0]))
	}

	// Verify
	assert.Equal(t, protocol.PhaseResult, h.room.Phase())
	res := h.stateOf(1).Result
	require.NotNil(t, res)
	assert.Equal(t, protocol.TeamGood, res.WinnerTeam)
	assert.Equal(t, "贪睡鼠胜利", res.WinnerLabel)
	require.Len(t, res.RevealedPlayers, 1)
	assert.Equal(t, protocol.RevealedPlayer{ID: h.ids[0], Name: "玩家1", Role: protocol.RoleThief, VoteCount: 3}, res.RevealedPlayers[0])
	assert.Equal(t, "unmute:TEST", h.voice.Last())

	// Vote timer was cancelled
	h.clock.Advance(votingLength)
	assert.Equal(t, protocol.PhaseResult, h.room.Phase())
}

func TestRoom_Vote_DepartedVoterNotCounted(t *testing.T) {
	t.Parallel()

	// Setup: 玩家2 投给大盗后离开
	h := newHarness(t, 4)
	h.toVoting()
	require.NoError(t, h.room.CastVote(h.ids[1], h.ids[0]))
	h.room.Leave(h.ids[1])

	// Execute
	require.NoError(t, h.room.CastVote(h.ids[2], h.ids[3]))
	require.NoError(t, h.room.CastVote(h.ids[0], h.ids[3]))
	require.NoError(t, h.room.CastVote(h.ids[3], h.ids[0]))

	// Verify: 剩余票数 玩家4=2 大盗=1，大盗一方获胜
	require.Equal(t, protocol.PhaseResult, h.room.Phase())
	res := h.stateOf(0).Result
	require.NotNil(t, res)
	assert.Equal(t, protocol.TeamEvil, res.WinnerTeam)
	require.Len(t, res.RevealedPlayers, 1)
	assert.Equal(t, h.ids[3], res.RevealedPlayers[0].ID)
	assert.Equal(t, 2, res.RevealedPlayers[0].VoteCount)
	assert.Equal(t, 1, h.player(0).VoteCount)
}

func TestRoom_VoteTimeout_Abstains(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 4)
	h.toVoting()
	require.NoError(t, h.room.CastVote(h.ids[0], h.ids[2]))

	// Execute
	h.clock.Advance(votingLength)

	// Verify abstainers are marked and the lone vote decides
	assert.Equal(t, protocol.PhaseResult, h.room.Phase())
	for i := range h.ids {
		assert.True(t, h.player(i).HasVoted, "player %d", i)
	}
	res := h.stateOf(0).Result
	assert.Equal(t, protocol.TeamEvil, res.WinnerTeam)
	require.Len(t, res.AllPlayers, 4)
	assert.Nil(t, res.AllPlayers[1].VotedFor)
	require.NotNil(t, res.AllPlayers[0].VotedFor)
	assert.Equal(t, h.ids[2], *res.AllPlayers[0].VotedFor)
}

func TestRoom_VoteTimeout_NoVotes(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 4)
	h.toVoting()

	h.clock.Advance(votingLength)

	res := h.stateOf(0).Result
	require.NotNil(t, res)
	assert.Equal(t, protocol.TeamEvil, res.WinnerTeam)
	assert.Empty(t, res.RevealedPlayers)
}

func TestRoom_Result_Recorded(t *testing.T) {
	t.Parallel()

	// Setup
	recorder := new(testutil.MockRecorder)
	recorded := make(chan *storage.GameRecord, 1)
	recorder.On("RecordGame", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { recorded <- args.Get(1).(*storage.GameRecord) }).
		Return(nil)

	h := newHarnessWith(t, 4, recorder)
	h.toVoting()

	// Execute
	for i := range h.ids {
		require.NoError(t, h.room.CastVote(h.ids[i], h.ids[(i+1)%4]))
	}

	// Verify
	var rec *storage.GameRecord
	select {
	case rec = <-recorded:
	case <-time.After(2 * time.Second):
		t.Fatal("result was not recorded")
	}
	assert.Equal(t, "TEST", rec.RoomCode)
	assert.Equal(t, 4, rec.PlayerCount)
	assert.Equal(t, protocol.TeamGood, rec.WinnerTeam)
	assert.Equal(t, "玩家1", rec.ThiefName)
	assert.Empty(t, rec.Accomplices)
}
