package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sahayak/sahayak-sync/internal/domain/submission"
)

// MockRepository is a mock implementation of submission.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Insert(ctx context.Context, rec *submission.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRepository) GetByLocalID(ctx context.Context, localID string) (*submission.Record, error) {
	args := m.Called(ctx, localID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*submission.Record), args.Error(1)
}

func (m *MockRepository) GetByReference(ctx context.Context, referenceNumber string) (*submission.Record, error) {
	args := m.Called(ctx, referenceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*submission.Record), args.Error(1)
}

func (m *MockRepository) RecordFailure(ctx context.Context, f *submission.Failure) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockRepository) ListFailures(ctx context.Context, deviceID string, limit int) ([]*submission.Failure, error) {
	args := m.Called(ctx, deviceID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*submission.Failure), args.Error(1)
}
