package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"gatehouse/config"
	"gatehouse/internal/domain/entity"
	domainerrors "gatehouse/internal/domain/errors"
	"gatehouse/internal/domain/repository"
	"gatehouse/internal/domain/service"
	mockRepo "gatehouse/internal/mocks/repository"
	mockSvc "gatehouse/internal/mocks/service"
	"gatehouse/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type userFixture struct {
	service   usecase.UserUsecase
	users     *mockRepo.MockUserRepository
	roles     *mockRepo.MockRoleRepository
	refresh   *mockRepo.MockRefreshTokenRepository
	publisher *mockSvc.MockEventPublisher
}

func newUserFixture() *userFixture {
	users := &mockRepo.MockUserRepository{}
	roles := &mockRepo.MockRoleRepository{}
	refresh := &mockRepo.MockRefreshTokenRepository{}
	publisher := &mockSvc.MockEventPublisher{}

	txManager := &mockRepo.StubTransactionManager{
		Factory: &mockRepo.StubRepositoryFactory{
			Users:         users,
			Roles:         roles,
			RefreshTokens: refresh,
		},
	}

	cfg := &config.Config{Auth: &config.AuthConfig{}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &userFixture{
		service:   NewUserService(txManager, publisher, cfg, logger),
		users:     users,
		roles:     roles,
		refresh:   refresh,
		publisher: publisher,
	}
}

func TestUserService_GetUser(t *testing.T) {
	f := newUserFixture()
	user := activeUser("alice", "hashed")

	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	out, err := f.service.GetUser(context.Background(), user.ID.String())

	require.NoError(t, err)
	assert.Equal(t, "alice", out.Username)
	assert.Equal(t, entity.RoleGuest, out.Role)
}

func TestUserService_GetUser_SoftDeletedReadsAsNotFound(t *testing.T) {
	f := newUserFixture()
	user := activeUser("alice", "hashed")
	user.Deleted = true

	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	_, err := f.service.GetUser(context.Background(), user.ID.String())

	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestUserService_GetUser_InvalidID(t *testing.T) {
	f := newUserFixture()

	_, err := f.service.GetUser(context.Background(), "not-a-uuid")

	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestUserService_DeleteUser_RevokesSessionsAndPublishes(t *testing.T) {
	f := newUserFixture()
	user := activeUser("alice", "hashed")

	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.users.On("SoftDelete", mock.Anything, user.ID).Return(nil)
	f.refresh.On("DeleteByUserID", mock.Anything, user.ID).Return(nil)
	f.publisher.On("PublishUserDeleted", mock.Anything, mock.MatchedBy(func(e *service.UserDeletedEvent) bool {
		return e.UserID == user.ID.String() && e.DeletedBy == "admin-1"
	})).Return(nil)

	err := f.service.DeleteUser(context.Background(), user.ID.String(), "admin-1")

	require.NoError(t, err)
	f.refresh.AssertCalled(t, "DeleteByUserID", mock.Anything, user.ID)
	f.publisher.AssertExpectations(t)
}

func TestUserService_DeleteUser_NotFound(t *testing.T) {
	f := newUserFixture()
	id := uuid.New()

	f.users.On("FindByID", mock.Anything, id).Return(nil, repository.ErrUserNotFound)

	err := f.service.DeleteUser(context.Background(), id.String(), "admin-1")

	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestUserService_AssignRole_Publishes(t *testing.T) {
	f := newUserFixture()
	user := activeUser("alice", "hashed")
	adminRole := &entity.Role{ID: uuid.New(), Name: entity.RoleAdmin, SystemDefined: true}

	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.roles.On("FindByName", mock.Anything, entity.RoleAdmin).Return(adminRole, nil)
	f.users.On("Update", mock.Anything, mock.AnythingOfType("*entity.User")).Return(nil)
	f.publisher.On("PublishUserRoleChanged", mock.Anything, mock.MatchedBy(func(e *service.UserRoleChangedEvent) bool {
		return e.RoleName == entity.RoleAdmin && e.Action == service.RoleActionAssigned
	})).Return(nil)

	out, err := f.service.AssignRole(context.Background(), user.ID.String(), "admin", "admin-1")

	require.NoError(t, err)
	assert.Contains(t, out.Roles, entity.RoleAdmin)
	f.publisher.AssertExpectations(t)
}

func TestUserService_AssignRole_AlreadyHeldIsNoop(t *testing.T) {
	f := newUserFixture()
	user := activeUser("alice", "hashed")
	guestRole := &entity.Role{ID: user.Roles[0].ID, Name: entity.RoleGuest, SystemDefined: true}

	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.roles.On("FindByName", mock.Anything, entity.RoleGuest).Return(guestRole, nil)

	out, err := f.service.AssignRole(context.Background(), user.ID.String(), "guest", "admin-1")

	require.NoError(t, err)
	assert.Equal(t, []string{entity.RoleGuest}, out.Roles)
	f.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "PublishUserRoleChanged", mock.Anything, mock.Anything)
}

func TestUserService_RemoveRole_Publishes(t *testing.T) {
	f := newUserFixture()
	user := activeUser("alice", "hashed")
	guestRole := &entity.Role{ID: user.Roles[0].ID, Name: entity.RoleGuest, SystemDefined: true}

	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.roles.On("FindByName", mock.Anything, entity.RoleGuest).Return(guestRole, nil)
	f.users.On("Update", mock.Anything, mock.AnythingOfType("*entity.User")).Return(nil)
	f.publisher.On("PublishUserRoleChanged", mock.Anything, mock.MatchedBy(func(e *service.UserRoleChangedEvent) bool {
		return e.Action == service.RoleActionRemoved
	})).Return(nil)

	out, err := f.service.RemoveRole(context.Background(), user.ID.String(), "guest", "admin-1")

	require.NoError(t, err)
	assert.Empty(t, out.Roles)
}

func TestUserService_AssignRole_UnknownRole(t *testing.T) {
	f := newUserFixture()
	user := activeUser("alice", "hashed")

	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.roles.On("FindByName", mock.Anything, "NOPE").Return(nil, repository.ErrRoleNotFound)

	_, err := f.service.AssignRole(context.Background(), user.ID.String(), "nope", "admin-1")

	assert.ErrorIs(t, err, domainerrors.ErrRoleNotFound)
}
