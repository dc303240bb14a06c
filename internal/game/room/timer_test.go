package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOwnedTimer_RearmReplaces(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 1)
	var fired []string

	h.room.lock()
	h.room.dayTimer.arm(h.room, time.Second, func() { fired = append(fired, "first") })
	h.room.dayTimer.arm(h.room, 2*time.Second, func() { fired = append(fired, "second") })
	h.room.unlock()

	h.clock.Advance(3 * time.Second)
	assert.Equal(t, []string{"second"}, fired)
	assert.False(t, h.room.dayTimer.armed())
}

func TestOwnedTimer_Cancel(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 1)
	fired := false

	h.room.lock()
	h.room.voteTimer.arm(h.room, time.Second, func() { fired = true })
	assert.True(t, h.room.voteTimer.armed())
	h.room.voteTimer.cancel()
	h.room.unlock()

	h.clock.Advance(time.Minute)
	assert.False(t, fired)
	assert.Zero(t, h.clock.Pending())
}

func TestOwnedTimer_ClosedRoom(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 1)
	fired := false

	h.room.lock()
	h.room.phaseTimer.arm(h.room, time.Second, func() { fired = true })
	h.room.closed = true
	h.room.unlock()

	h.clock.Advance(time.Second)
	assert.False(t, fired)
}
