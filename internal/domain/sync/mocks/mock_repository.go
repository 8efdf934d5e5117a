package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sahayak/sahayak-sync/internal/domain/sync"
)

// MockQueueRepository is a mock implementation of sync.QueueRepository
type MockQueueRepository struct {
	mock.Mock
}

func (m *MockQueueRepository) Enqueue(ctx context.Context, item *sync.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockQueueRepository) ListDeliverable(ctx context.Context, limit int) ([]*sync.Item, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sync.Item), args.Error(1)
}

func (m *MockQueueRepository) MarkInFlight(ctx context.Context, localIDs []string) error {
	args := m.Called(ctx, localIDs)
	return args.Error(0)
}

func (m *MockQueueRepository) MarkSynced(ctx context.Context, localID string) error {
	args := m.Called(ctx, localID)
	return args.Error(0)
}

func (m *MockQueueRepository) MarkFailed(ctx context.Context, localID, lastError string, attempts int, status sync.DeliveryStatus) error {
	args := m.Called(ctx, localID, lastError, attempts, status)
	return args.Error(0)
}

func (m *MockQueueRepository) Counts(ctx context.Context) (sync.QueueCounts, error) {
	args := m.Called(ctx)
	return args.Get(0).(sync.QueueCounts), args.Error(1)
}

func (m *MockQueueRepository) ResetTerminal(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockSettingsRepository is a mock implementation of sync.SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockSettingsRepository) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// MockClient is a mock implementation of sync.Client
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Submit(ctx context.Context, req *sync.BatchRequest) (*sync.BatchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.BatchResponse), args.Error(1)
}
