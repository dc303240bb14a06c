package voice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/palemoky/cheese-thief/internal/testutil"
)

func TestDispatcher_ExecutesInOrder(t *testing.T) {
	t.Parallel()

	// Setup
	ctrl := new(testutil.MockVoiceController)
	var order []string
	ctrl.On("MuteAll", mock.Anything, "ABCD").Run(func(mock.Arguments) { order = append(order, "mute") }).Return(nil)
	ctrl.On("UnmuteSubset", mock.Anything, "ABCD", []string{"p1"}).Run(func(mock.Arguments) { order = append(order, "subset") }).Return(nil)
	ctrl.On("UnmuteAll", mock.Anything, "ABCD").Run(func(mock.Arguments) { order = append(order, "unmute") }).Return(errors.New("livekit down"))
	ctrl.On("DeleteRoom", mock.Anything, "ABCD").Run(func(mock.Arguments) { order = append(order, "delete") }).Return(nil)

	d := NewDispatcher(ctrl, 8, time.Second)

	// Execute
	d.MuteAll("ABCD")
	d.UnmuteSubset("ABCD", []string{"p1"})
	d.UnmuteAll("ABCD")
	d.DeleteRoom("ABCD")
	d.Close()

	// Verify failures do not stop the queue
	assert.Equal(t, []string{"mute", "subset", "unmute", "delete"}, order)
	ctrl.AssertExpectations(t)
}

func TestDispatcher_AppliesTimeout(t *testing.T) {
	t.Parallel()

	ctrl := new(testutil.MockVoiceController)
	var deadline time.Time
	ctrl.On("MuteAll", mock.Anything, "ABCD").Run(func(args mock.Arguments) {
		deadline, _ = args.Get(0).(context.Context).Deadline()
	}).Return(nil)

	start := time.Now()
	d := NewDispatcher(ctrl, 1, 3*time.Second)
	d.MuteAll("ABCD")
	d.Close()

	assert.WithinDuration(t, start.Add(3*time.Second), deadline, time.Second)
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	t.Parallel()

	// Setup: the worker blocks on the first job
	ctrl := new(testutil.MockVoiceController)
	release := make(chan struct{})
	started := make(chan struct{})
	ctrl.On("MuteAll", mock.Anything, "A").Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(nil).Once()
	ctrl.On("MuteAll", mock.Anything, "B").Return(nil).Once()

	d := NewDispatcher(ctrl, 1, time.Second)
	d.MuteAll("A")
	<-started

	// Execute: queue holds one job, the third is dropped
	d.MuteAll("B")
	d.MuteAll("C")
	close(release)
	d.Close()

	// Verify
	ctrl.AssertExpectations(t)
	ctrl.AssertNotCalled(t, "MuteAll", mock.Anything, "C")
}

func TestDispatcher_IgnoresAfterClose(t *testing.T) {
	t.Parallel()

	ctrl := new(testutil.MockVoiceController)
	d := NewDispatcher(ctrl, 1, time.Second)
	d.Close()

	assert.NotPanics(t, func() { d.MuteAll("ABCD") })
	d.Close()
	ctrl.AssertNotCalled(t, "MuteAll", mock.Anything, mock.Anything)
}
