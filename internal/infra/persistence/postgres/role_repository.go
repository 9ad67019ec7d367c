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

// roleRepository implements the domain.RoleRepository interface.
type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository is the constructor for roleRepository.
func NewRoleRepository(db *gorm.DB) repository.RoleRepository {
	return &roleRepository{db: db}
}

// Create persists a new role. The name is expected to be normalized
// already; the unique constraint backs it up.
func (repo *roleRepository) Create(ctx context.Context, role *entity.Role) error {
	roleM := fromRoleDomain(role)

	if err := repo.db.WithContext(ctx).Create(roleM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrRoleExists
		}
		if isStoreUnavailable(err) {
			return domainerrors.ErrStoreUnavailable.WrapMessage("create role")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create role")
	}

	role.ID = roleM.ID
	role.CreatedAt = roleM.CreatedAt

	return nil
}

// FindByID retrieves a role by its unique ID.
func (repo *roleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Role, error) {
	var roleM model.RoleModel
	err := repo.db.WithContext(ctx).First(&roleM, "id = ? AND deleted = ?", id, false).Error
	if err != nil {
		return nil, mapRoleLookupError(err)
	}

	return toRoleDomain(&roleM), nil
}

// FindByName retrieves a role by its normalized name.
func (repo *roleRepository) FindByName(ctx context.Context, name string) (*entity.Role, error) {
	var roleM model.RoleModel
	err := repo.db.WithContext(ctx).
		First(&roleM, "name = ? AND deleted = ?", entity.NormalizeRoleName(name), false).Error
	if err != nil {
		return nil, mapRoleLookupError(err)
	}

	return toRoleDomain(&roleM), nil
}

// List returns every non-deleted role ordered by name.
func (repo *roleRepository) List(ctx context.Context) ([]*entity.Role, error) {
	var roleModels []model.RoleModel
	err := repo.db.WithContext(ctx).
		Where("deleted = ?", false).
		Order("name asc").
		Find(&roleModels).Error
	if err != nil {
		if isStoreUnavailable(err) {
			return nil, domainerrors.ErrStoreUnavailable.WrapMessage("list roles")
		}

		return nil, errors.WithStack(err)
	}

	roles := make([]*entity.Role, 0, len(roleModels))
	for i := range roleModels {
		roles = append(roles, toRoleDomain(&roleModels[i]))
	}

	return roles, nil
}

// SoftDelete flags a role as deleted without removing the row.
func (repo *roleRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.RoleModel{}).
		Where("id = ?", id).
		Update("deleted", true)
	if result.Error != nil {
		if isStoreUnavailable(result.Error) {
			return domainerrors.ErrStoreUnavailable.WrapMessage("delete role")
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete role")
	}
	if result.RowsAffected == 0 {
		return repository.ErrRoleNotFound
	}

	return nil
}

// HardDelete removes the role row permanently.
func (repo *roleRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Delete(&model.RoleModel{ID: id})
	if result.Error != nil {
		if isForeignKeyConstraintViolation(result.Error) {
			return domainerrors.ErrConflict.WrapMessage("role is still assigned to users")
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete role")
	}
	if result.RowsAffected == 0 {
		return repository.ErrRoleNotFound
	}

	return nil
}

func mapRoleLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrRoleNotFound
	}
	if isStoreUnavailable(err) {
		return domainerrors.ErrStoreUnavailable.WrapMessage("find role")
	}

	return errors.WithStack(err)
}

func toRoleDomain(m *model.RoleModel) *entity.Role {
	return &entity.Role{
		ID:            m.ID,
		Name:          m.Name,
		SystemDefined: m.SystemDefined,
		Deleted:       m.Deleted,
		CreatedAt:     m.CreatedAt,
	}
}

func fromRoleDomain(r *entity.Role) *model.RoleModel {
	return &model.RoleModel{
		ID:            r.ID,
		Name:          entity.NormalizeRoleName(r.Name),
		SystemDefined: r.SystemDefined,
		Deleted:       r.Deleted,
		CreatedAt:     r.CreatedAt,
	}
}
