package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"gatehouse/internal/domain/entity"
	domainerrors "gatehouse/internal/domain/errors"
	"gatehouse/internal/domain/repository"
	mockRepo "gatehouse/internal/mocks/repository"
	"gatehouse/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRoleFixture() (usecase.RoleUsecase, *mockRepo.MockRoleRepository) {
	roles := &mockRepo.MockRoleRepository{}
	txManager := &mockRepo.StubTransactionManager{
		Factory: &mockRepo.StubRepositoryFactory{Roles: roles},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewRoleService(txManager, logger), roles
}

func TestRoleService_CreateRole_NormalizesName(t *testing.T) {
	service, roles := newRoleFixture()

	roles.On("Create", mock.Anything, mock.MatchedBy(func(r *entity.Role) bool {
		return r.Name == "AUDITOR"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Role).ID = uuid.New()
	}).Return(nil)

	out, err := service.CreateRole(context.Background(), "  auditor ")

	require.NoError(t, err)
	assert.Equal(t, "AUDITOR", out.Name)
	assert.False(t, out.SystemDefined)
}

func TestRoleService_CreateRole_EmptyName(t *testing.T) {
	service, _ := newRoleFixture()

	_, err := service.CreateRole(context.Background(), "   ")

	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestRoleService_CreateRole_Duplicate(t *testing.T) {
	service, roles := newRoleFixture()

	roles.On("Create", mock.Anything, mock.Anything).Return(repository.ErrRoleExists)

	_, err := service.CreateRole(context.Background(), "ADMIN")

	assert.ErrorIs(t, err, domainerrors.ErrRoleAlreadyExists)
}

func TestRoleService_DeleteRole_SystemRoleRefused(t *testing.T) {
	service, roles := newRoleFixture()
	role := &entity.Role{ID: uuid.New(), Name: entity.RoleAdmin, SystemDefined: true}

	roles.On("FindByID", mock.Anything, role.ID).Return(role, nil)

	err := service.DeleteRole(context.Background(), role.ID.String())

	assert.ErrorIs(t, err, domainerrors.ErrSystemRoleImmutable)
	roles.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything)
}

func TestRoleService_DeleteRole_CustomRole(t *testing.T) {
	service, roles := newRoleFixture()
	role := &entity.Role{ID: uuid.New(), Name: "AUDITOR"}

	roles.On("FindByID", mock.Anything, role.ID).Return(role, nil)
	roles.On("SoftDelete", mock.Anything, role.ID).Return(nil)

	require.NoError(t, service.DeleteRole(context.Background(), role.ID.String()))
}

func TestRoleService_DeleteRole_NotFound(t *testing.T) {
	service, roles := newRoleFixture()
	id := uuid.New()

	roles.On("FindByID", mock.Anything, id).Return(nil, repository.ErrRoleNotFound)

	err := service.DeleteRole(context.Background(), id.String())

	assert.ErrorIs(t, err, domainerrors.ErrRoleNotFound)
}

func TestRoleService_ListRoles(t *testing.T) {
	service, roles := newRoleFixture()

	roles.On("List", mock.Anything).Return([]*entity.Role{
		{ID: uuid.New(), Name: entity.RoleAdmin, SystemDefined: true},
		{ID: uuid.New(), Name: entity.RoleGuest, SystemDefined: true},
	}, nil)

	out, err := service.ListRoles(context.Background())

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, entity.RoleAdmin, out[0].Name)
}

func TestRoleService_SeedSystemRoles_CreatesMissing(t *testing.T) {
	service, roles := newRoleFixture()

	// GUEST already present, ADMIN needs creating.
	roles.On("FindByName", mock.Anything, entity.RoleGuest).
		Return(&entity.Role{ID: uuid.New(), Name: entity.RoleGuest, SystemDefined: true}, nil)
	roles.On("FindByName", mock.Anything, entity.RoleAdmin).Return(nil, repository.ErrRoleNotFound)
	roles.On("Create", mock.Anything, mock.MatchedBy(func(r *entity.Role) bool {
		return r.Name == entity.RoleAdmin && r.SystemDefined
	})).Return(nil)

	require.NoError(t, service.SeedSystemRoles(context.Background()))
	roles.AssertExpectations(t)
}

func TestRoleService_SeedSystemRoles_RaceLosesGracefully(t *testing.T) {
	service, roles := newRoleFixture()

	roles.On("FindByName", mock.Anything, mock.Anything).Return(nil, repository.ErrRoleNotFound)
	// Another instance created the role between lookup and insert.
	roles.On("Create", mock.Anything, mock.Anything).Return(repository.ErrRoleExists)

	require.NoError(t, service.SeedSystemRoles(context.Background()))
}
