// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"gatehouse/internal/domain/entity"
	domainerrors "gatehouse/internal/domain/errors"
	"gatehouse/internal/domain/repository"
	"gatehouse/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// userRepository implements the domain.UserRepository interface.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByID retrieves a user together with their roles. Soft-deleted
// users are still returned; callers decide whether deletion matters.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Preload("Roles", "deleted = ?", false).
		First(&userM, "id = ?", id).Error
	if err != nil {
		return nil, mapUserLookupError(err)
	}

	return toUserDomain(&userM), nil
}

// FindByUsername retrieves a user by their unique username.
func (repo *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Preload("Roles", "deleted = ?", false).
		First(&userM, "username = ?", username).Error
	if err != nil {
		return nil, mapUserLookupError(err)
	}

	return toUserDomain(&userM), nil
}

// FindByEmail retrieves a user by their unique email.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Preload("Roles", "deleted = ?", false).
		First(&userM, "email = ?", email).Error
	if err != nil {
		return nil, mapUserLookupError(err)
	}

	return toUserDomain(&userM), nil
}

// Create persists a new user and their role associations.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("username or email already taken")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required user information")
		}
		if isStoreUnavailable(err) {
			return domainerrors.ErrStoreUnavailable.WrapMessage("create user")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// Update saves user fields and replaces the role associations to match
// the entity's current role set.
func (repo *userRepository) Update(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Omit("Roles").Save(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("username or email already taken")
		}
		if isStoreUnavailable(err) {
			return domainerrors.ErrStoreUnavailable.WrapMessage("update user")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to update user")
	}

	if err := repo.db.WithContext(ctx).Model(userM).Association("Roles").Replace(userM.Roles); err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to update user roles")
	}

	return nil
}

// SoftDelete flags a user as deleted without removing the row.
func (repo *userRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"deleted": true, "active": false})
	if result.Error != nil {
		if isStoreUnavailable(result.Error) {
			return domainerrors.ErrStoreUnavailable.WrapMessage("delete user")
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete user")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// HardDelete removes the user row permanently.
func (repo *userRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	userM := &model.UserModel{ID: id}

	if err := repo.db.WithContext(ctx).Model(userM).Association("Roles").Clear(); err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to clear user roles")
	}

	result := repo.db.WithContext(ctx).Delete(userM)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete user")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

func mapUserLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrUserNotFound
	}
	if isStoreUnavailable(err) {
		return domainerrors.ErrStoreUnavailable.WrapMessage("find user")
	}

	return errors.WithStack(err)
}

func toUserDomain(m *model.UserModel) *entity.User {
	roles := make(entity.Roles, 0, len(m.Roles))
	for _, roleM := range m.Roles {
		roles = append(roles, *toRoleDomain(&roleM))
	}

	return &entity.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		CountryCode:  m.CountryCode,
		ContactNo:    m.ContactNo,
		Organization: m.Organization,
		Active:       m.Active,
		Deleted:      m.Deleted,
		Roles:        roles,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func fromUserDomain(u *entity.User) *model.UserModel {
	roles := make([]model.RoleModel, 0, len(u.Roles))
	for _, role := range u.Roles {
		roles = append(roles, *fromRoleDomain(&role))
	}

	return &model.UserModel{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		CountryCode:  u.CountryCode,
		ContactNo:    u.ContactNo,
		Organization: u.Organization,
		Active:       u.Active,
		Deleted:      u.Deleted,
		Roles:        roles,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
