// Package service provides hand-written testify mocks for the domain
// service interfaces.
package service

import (
	"context"
	"time"

	"gatehouse/internal/domain/service"

	"github.com/stretchr/testify/mock"
)

// MockTokenService mocks service.TokenService.
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) IssueAccessToken(userID, username string, roles []string) (string, error) {
	args := m.Called(userID, username, roles)

	return args.String(0), args.Error(1)
}

func (m *MockTokenService) VerifyAccessToken(tokenString string) (*service.AccessClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*service.AccessClaims), args.Error(1)
}

func (m *MockTokenService) NewRefreshToken() (string, error) {
	args := m.Called()

	return args.String(0), args.Error(1)
}

func (m *MockTokenService) HashToken(token string) string {
	return m.Called(token).String(0)
}

func (m *MockTokenService) AccessTokenTTL() time.Duration {
	return m.Called().Get(0).(time.Duration)
}

func (m *MockTokenService) RefreshTokenTTL() time.Duration {
	return m.Called().Get(0).(time.Duration)
}

// MockPasswordHasher mocks service.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)

	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Check(password, hash string) bool {
	return m.Called(password, hash).Bool(0)
}

// MockEventPublisher mocks service.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishUserRegistered(ctx context.Context, event *service.UserRegisteredEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventPublisher) PublishUserDeleted(ctx context.Context, event *service.UserDeletedEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventPublisher) PublishUserRoleChanged(ctx context.Context, event *service.UserRoleChangedEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventPublisher) Close() error {
	return m.Called().Error(0)
}
