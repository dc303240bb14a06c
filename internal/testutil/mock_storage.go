//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/cheese-thief/internal/server/storage"
)

// MockRecorder 对局结果存储 mock
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordGame(ctx context.Context, rec *storage.GameRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRecorder) GetStats(ctx context.Context, recent int) (*storage.Stats, error) {
	args := m.Called(ctx, recent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Stats), args.Error(1)
}
