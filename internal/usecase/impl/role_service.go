package impl

import (
	"context"
	"log/slog"

	deliverycontext "gatehouse/internal/delivery/context"
	"gatehouse/internal/domain/entity"
	domainerrors "gatehouse/internal/domain/errors"
	"gatehouse/internal/domain/repository"
	"gatehouse/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// roleService implements the RoleUsecase interface.
type roleService struct {
	txManager repository.TransactionManager
	logger    *slog.Logger
}

// NewRoleService is the constructor for roleService.
func NewRoleService(
	txManager repository.TransactionManager,
	logger *slog.Logger,
) usecase.RoleUsecase {
	return &roleService{
		txManager: txManager,
		logger:    logger,
	}
}

func (srv *roleService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateRole creates a role with a normalized (uppercase) name.
func (srv *roleService) CreateRole(ctx context.Context, name string) (*usecase.RoleOutput, error) {
	normalized := entity.NormalizeRoleName(name)
	if normalized == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("role name must not be empty")
	}

	role := &entity.Role{Name: normalized}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.RoleRepo().Create(ctx, role); err != nil {
			if errors.Is(err, repository.ErrRoleExists) {
				return domainerrors.ErrRoleAlreadyExists
			}

			return errors.Wrap(err, "failed to create role")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Role created", slog.String("role", normalized))

	return roleOutput(role), nil
}

// DeleteRole soft-deletes a role. System-defined roles refuse deletion.
func (srv *roleService) DeleteRole(ctx context.Context, roleID string) error {
	id, err := uuid.Parse(roleID)
	if err != nil {
		return domainerrors.ErrValidationFailed.WrapMessage("invalid role id")
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		roleRepo := repoFactory.RoleRepo()

		role, err := roleRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrRoleNotFound) {
				return domainerrors.ErrRoleNotFound
			}

			return errors.Wrap(err, "failed to find role")
		}

		if role.SystemDefined {
			return domainerrors.ErrSystemRoleImmutable
		}

		if err := roleRepo.SoftDelete(ctx, id); err != nil {
			return errors.Wrap(err, "failed to delete role")
		}

		return nil
	})
	if err != nil {
		return err
	}

	srv.log(ctx).Info("Role deleted", slog.String("role_id", roleID))

	return nil
}

// ListRoles returns all active roles ordered by name.
func (srv *roleService) ListRoles(ctx context.Context) ([]*usecase.RoleOutput, error) {
	var roles []*entity.Role

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.RoleRepo().List(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to list roles")
		}

		roles = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	outputs := make([]*usecase.RoleOutput, 0, len(roles))
	for _, role := range roles {
		outputs = append(outputs, roleOutput(role))
	}

	return outputs, nil
}

// SeedSystemRoles ensures the built-in roles exist. Runs at startup and
// is idempotent, so concurrent instances racing on the unique name
// constraint is harmless.
func (srv *roleService) SeedSystemRoles(ctx context.Context) error {
	for _, name := range []string{entity.RoleGuest, entity.RoleAdmin} {
		err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
			roleRepo := repoFactory.RoleRepo()

			_, err := roleRepo.FindByName(ctx, name)
			if err == nil {
				return nil
			}
			if !errors.Is(err, repository.ErrRoleNotFound) {
				return errors.Wrap(err, "failed to look up system role")
			}

			createErr := roleRepo.Create(ctx, &entity.Role{Name: name, SystemDefined: true})
			if createErr != nil && !errors.Is(createErr, repository.ErrRoleExists) {
				return errors.Wrap(createErr, "failed to seed system role")
			}

			return nil
		})
		if err != nil {
			return err
		}

		srv.logger.Info("System role ensured", slog.String("role", name))
	}

	return nil
}

func roleOutput(role *entity.Role) *usecase.RoleOutput {
	return &usecase.RoleOutput{
		RoleID:        role.ID.String(),
		Name:          role.Name,
		SystemDefined: role.SystemDefined,
		CreatedAt:     role.CreatedAt,
	}
}
