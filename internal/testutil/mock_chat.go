//go:build !production

package testutil

import "github.com/stretchr/testify/mock"

// MockChatLimiter 聊天限制器 mock
type MockChatLimiter struct {
	mock.Mock
}

func (m *MockChatLimiter) AllowChat(playerID string) bool {
	args := m.Called(playerID)
	return args.Bool(0)
}

func (m *MockChatLimiter) RemovePlayer(playerID string) {
	m.Called(playerID)
}
