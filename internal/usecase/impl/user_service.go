package impl

import (
	"context"
	"log/slog"
	"time"

	"gatehouse/config"
	deliverycontext "gatehouse/internal/delivery/context"
	"gatehouse/internal/domain/entity"
	domainerrors "gatehouse/internal/domain/errors"
	"gatehouse/internal/domain/repository"
	"gatehouse/internal/domain/service"
	"gatehouse/internal/infra/metrics"
	"gatehouse/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// userService implements the UserUsecase interface.
type userService struct {
	txManager repository.TransactionManager
	publisher service.EventPublisher
	cfg       *config.Config
	logger    *slog.Logger
}

// NewUserService is the constructor for userService.
func NewUserService(
	txManager repository.TransactionManager,
	publisher service.EventPublisher,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.UserUsecase {
	return &userService{
		txManager: txManager,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetUser returns a user by ID. Soft-deleted users read as not found.
func (srv *userService) GetUser(ctx context.Context, userID string) (*usecase.UserOutput, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("invalid user id")
	}

	var user *entity.User

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.UserRepo().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user")
		}
		if found.Deleted {
			return domainerrors.ErrUserNotFound
		}

		user = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return srv.userOutput(user), nil
}

// DeleteUser soft-deletes a user, revokes their sessions and emits a
// user.deleted event.
func (srv *userService) DeleteUser(ctx context.Context, userID, deletedBy string) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return domainerrors.ErrValidationFailed.WrapMessage("invalid user id")
	}

	var user *entity.User

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.UserRepo().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user")
		}
		if found.Deleted {
			return domainerrors.ErrUserNotFound
		}

		if err := repoFactory.UserRepo().SoftDelete(ctx, id); err != nil {
			return errors.Wrap(err, "failed to delete user")
		}

		// A deleted user must not keep an active session.
		if err := repoFactory.RefreshTokenRepo().DeleteByUserID(ctx, id); err != nil {
			return errors.Wrap(err, "failed to revoke sessions")
		}

		user = found

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to delete user", slog.Any("error", err), slog.String("user_id", userID))

		return err
	}

	srv.log(ctx).Info("User deleted", slog.String("user_id", userID), slog.String("deleted_by", deletedBy))
	srv.publishDeleted(ctx, user, deletedBy)

	return nil
}

// AssignRole adds a role to a user. Assigning an already-held role is a no-op.
func (srv *userService) AssignRole(ctx context.Context, userID, roleName, changedBy string) (*usecase.UserOutput, error) {
	return srv.changeRole(ctx, userID, roleName, changedBy, service.RoleActionAssigned)
}

// RemoveRole removes a role from a user. Removing an unheld role is a no-op.
func (srv *userService) RemoveRole(ctx context.Context, userID, roleName, changedBy string) (*usecase.UserOutput, error) {
	return srv.changeRole(ctx, userID, roleName, changedBy, service.RoleActionRemoved)
}

func (srv *userService) changeRole(ctx context.Context, userID, roleName, changedBy, action string) (*usecase.UserOutput, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("invalid user id")
	}
	roleName = entity.NormalizeRoleName(roleName)

	var user *entity.User
	var changed bool

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.UserRepo().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user")
		}
		if found.Deleted {
			return domainerrors.ErrUserNotFound
		}

		role, err := repoFactory.RoleRepo().FindByName(ctx, roleName)
		if err != nil {
			if errors.Is(err, repository.ErrRoleNotFound) {
				return domainerrors.ErrRoleNotFound
			}

			return errors.Wrap(err, "failed to find role")
		}

		switch action {
		case service.RoleActionAssigned:
			if found.Roles.Contains(roleName) {
				user = found

				return nil
			}
			found.Roles = append(found.Roles, *role)
		case service.RoleActionRemoved:
			if !found.Roles.Contains(roleName) {
				user = found

				return nil
			}
			remaining := make(entity.Roles, 0, len(found.Roles)-1)
			for _, r := range found.Roles {
				if r.Name != roleName {
					remaining = append(remaining, r)
				}
			}
			found.Roles = remaining
		}

		if err := repoFactory.UserRepo().Update(ctx, found); err != nil {
			return errors.Wrap(err, "failed to update user roles")
		}

		user = found
		changed = true

		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		srv.log(ctx).Info("User role changed",
			slog.String("user_id", userID),
			slog.String("role", roleName),
			slog.String("action", action),
		)
		srv.publishRoleChanged(ctx, user, roleName, action, changedBy)
	}

	return srv.userOutput(user), nil
}

func (srv *userService) userOutput(user *entity.User) *usecase.UserOutput {
	return &usecase.UserOutput{
		UserID:       user.ID.String(),
		Username:     user.Username,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		CountryCode:  user.CountryCode,
		ContactNo:    user.ContactNo,
		Organization: user.Organization,
		Active:       user.Active,
		Role:         user.Roles.Primary(srv.cfg.Auth.DefaultRoleName()),
		Roles:        user.RoleNames(),
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func (srv *userService) publishDeleted(ctx context.Context, user *entity.User, deletedBy string) {
	event := &service.UserDeletedEvent{
		EventID:   service.NewEventID(),
		EventType: service.TopicUserDeleted,
		Timestamp: service.EventTimestamp(time.Now()),
		UserID:    user.ID.String(),
		Username:  user.Username,
		DeletedBy: deletedBy,
	}

	if err := srv.publisher.PublishUserDeleted(context.WithoutCancel(ctx), event); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(service.TopicUserDeleted, "error").Inc()
		srv.log(ctx).Error("Failed to publish user.deleted event",
			slog.Any("error", err),
			slog.String("user_id", event.UserID),
		)

		return
	}

	metrics.EventsPublishedTotal.WithLabelValues(service.TopicUserDeleted, "ok").Inc()
}

func (srv *userService) publishRoleChanged(ctx context.Context, user *entity.User, roleName, action, changedBy string) {
	event := &service.UserRoleChangedEvent{
		EventID:   service.NewEventID(),
		EventType: service.TopicUserRoleChanged,
		Timestamp: service.EventTimestamp(time.Now()),
		UserID:    user.ID.String(),
		Username:  user.Username,
		RoleName:  roleName,
		Action:    action,
		ChangedBy: changedBy,
	}

	if err := srv.publisher.PublishUserRoleChanged(context.WithoutCancel(ctx), event); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(service.TopicUserRoleChanged, "error").Inc()
		srv.log(ctx).Error("Failed to publish user.role.changed event",
			slog.Any("error", err),
			slog.String("user_id", event.UserID),
		)

		return
	}

	metrics.EventsPublishedTotal.WithLabelValues(service.TopicUserRoleChanged, "ok").Inc()
}
