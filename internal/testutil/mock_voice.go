//go:build !production

package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"
)

// RecordingVoice 记录语音频道调用顺序，格式如 "mute:ABCD"、"subset:ABCD:p1,p2"
type RecordingVoice struct {
	mu    sync.Mutex
	calls []string
}

func (v *RecordingVoice) record(format string, args ...any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls = append(v.calls, fmt.Sprintf(format, args...))
}

func (v *RecordingVoice) MuteAll(room string)    { v.record("mute:%s", room) }
func (v *RecordingVoice) UnmuteAll(room string)  { v.record("unmute:%s", room) }
func (v *RecordingVoice) DeleteRoom(room string) { v.record("delete:%s", room) }

func (v *RecordingVoice) UnmuteSubset(room string, allowed []string) {
	v.record("subset:%s:%s", room, strings.Join(allowed, ","))
}

// Calls 返回所有调用
func (v *RecordingVoice) Calls() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.calls...)
}

// Last 返回最后一次调用
func (v *RecordingVoice) Last() string {
	calls := v.Calls()
	if len(calls) == 0 {
		return ""
	}
	return calls[len(calls)-1]
}

// MockVoiceController 语音服务 mock
type MockVoiceController struct {
	mock.Mock
}

func (m *MockVoiceController) MuteAll(ctx context.Context, room string) error {
	return m.Called(ctx, room).Error(0)
}

func (m *MockVoiceController) UnmuteAll(ctx context.Context, room string) error {
	return m.Called(ctx, room).Error(0)
}

func (m *MockVoiceController) UnmuteSubset(ctx context.Context, room string, allowed []string) error {
	return m.Called(ctx, room, allowed).Error(0)
}

func (m *MockVoiceController) DeleteRoom(ctx context.Context, room string) error {
	return m.Called(ctx, room).Error(0)
}
