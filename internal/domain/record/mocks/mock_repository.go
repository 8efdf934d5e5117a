package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sahayak/sahayak-sync/internal/domain/record"
)

// MockRepository is a mock implementation of record.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, rec *record.WorkflowRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRepository) GetByLocalID(ctx context.Context, localID string) (*record.WorkflowRecord, error) {
	args := m.Called(ctx, localID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*record.WorkflowRecord), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, limit int) ([]*record.WorkflowRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*record.WorkflowRecord), args.Error(1)
}

func (m *MockRepository) SetReference(ctx context.Context, localID, referenceNumber string, status record.Status) error {
	args := m.Called(ctx, localID, referenceNumber, status)
	return args.Error(0)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, localID string, status record.Status) error {
	args := m.Called(ctx, localID, status)
	return args.Error(0)
}
