package room

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/cheese-thief/internal/apperrors"
	"github.com/palemoky/cheese-thief/internal/testutil"
)

func newTestManager() (*RoomManager, *testutil.FakeClock, *testutil.RecordingVoice) {
	clk := testutil.NewFakeClock(epoch)
	voice := &testutil.RecordingVoice{}
	rm := NewRoomManager(Options{Timing: testTiming(), Clock: clk, Voice: voice})
	return rm, clk, voice
}

func TestRoomManager_CreateRoom(t *testing.T) {
	t.Parallel()

	rm, _, _ := newTestManager()

	room, err := rm.CreateRoom()
	require.NoError(t, err)

	assert.Len(t, room.Code, roomCodeLength)
	for _, c := range room.Code {
		assert.True(t, strings.ContainsRune(roomCodeChars, c), "unexpected char %q", c)
	}
	assert.Same(t, room, rm.GetRoom(room.Code))
	assert.Same(t, room, rm.GetRoom(" "+strings.ToLower(room.Code)+" "))
	assert.Nil(t, rm.GetRoom("ZZZZZ"))
	assert.Equal(t, 1, rm.Count())
}

func TestRoomManager_CreateRoom_Collisions(t *testing.T) {
	t.Parallel()

	rm, _, _ := newTestManager()
	codes := []string{"AAAA", "AAAA", "AAAA", "BBBB"}
	rm.genCode = func() string {
		c := codes[0]
		if len(codes) > 1 {
			codes = codes[1:]
		}
		return c
	}

	first, err := rm.CreateRoom()
	require.NoError(t, err)
	assert.Equal(t, "AAAA", first.Code)

	// Retries past taken codes
	second, err := rm.CreateRoom()
	require.NoError(t, err)
	assert.Equal(t, "BBBB", second.Code)

	// Exhausted space
	_, err = rm.CreateRoom()
	assert.ErrorIs(t, err, apperrors.ErrSpaceExhausted)
	assert.Equal(t, 2, rm.Count())
}

func TestRoomManager_RemovesEmptiedRoom(t *testing.T) {
	t.Parallel()

	rm, _, voice := newTestManager()
	room, err := rm.CreateRoom()
	require.NoError(t, err)

	c := testutil.NewSimpleClient("c1")
	m, err := room.AddPlayer(c, "房主", 0)
	require.NoError(t, err)
	assert.False(t, rm.CleanupIfEmpty(room.Code))

	// Execute
	room.Leave(m.PlayerID)

	// Verify
	assert.Nil(t, rm.GetRoom(room.Code))
	assert.Zero(t, rm.Count())
	assert.Equal(t, "delete:"+room.Code, voice.Last())
}

func TestRoomManager_Sweep(t *testing.T) {
	t.Parallel()

	rm, clk, _ := newTestManager()
	idle, err := rm.CreateRoom()
	require.NoError(t, err)
	busy, err := rm.CreateRoom()
	require.NoError(t, err)
	_, err = busy.AddPlayer(testutil.NewSimpleClient("c1"), "玩家", 0)
	require.NoError(t, err)

	// Fresh rooms survive
	rm.sweep()
	assert.Equal(t, 2, rm.Count())

	// Execute
	clk.Advance(2 * time.Minute)
	rm.sweep()

	// Verify
	assert.Nil(t, rm.GetRoom(idle.Code))
	assert.NotNil(t, rm.GetRoom(busy.Code))
}

func TestRoomManager_GetActiveGamesCount(t *testing.T) {
	t.Parallel()

	rm, _, _ := newTestManager()
	room, err := rm.CreateRoom()
	require.NoError(t, err)
	_, err = rm.CreateRoom()
	require.NoError(t, err)

	var host string
	for i := range 4 {
		m, err := room.AddPlayer(testutil.NewSimpleClient("c"), "玩家", i)
		require.NoError(t, err)
		if i == 0 {
			host = m.PlayerID
		}
	}
	assert.Zero(t, rm.GetActiveGamesCount())

	require.NoError(t, room.StartGame(host))
	assert.Equal(t, 1, rm.GetActiveGamesCount())
}

func TestRoomManager_StartJanitor_StopsWithContext(t *testing.T) {
	t.Parallel()

	rm, _, _ := newTestManager()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rm.StartJanitor(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
