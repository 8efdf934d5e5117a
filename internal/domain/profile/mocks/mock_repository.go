package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sahayak/sahayak-sync/internal/domain/profile"
)

// MockUserRepository is a mock implementation of profile.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Get(ctx context.Context, userID string) (*profile.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Profile), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, p *profile.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePartial(ctx context.Context, userID string, u profile.Update) error {
	args := m.Called(ctx, userID, u)
	return args.Error(0)
}
