package model

import (
	"time"

	"github.com/google/uuid"
)

// RoleModel mirrors the 'roles' table. Names are stored uppercase.
type RoleModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name          string    `gorm:"type:varchar(100);unique;not null"`
	SystemDefined bool      `gorm:"not null;default:false"`
	Deleted       bool      `gorm:"not null;default:false;index"`
	CreatedAt     time.Time
}

// TableName explicitly sets the table name for GORM.
func (RoleModel) TableName() string {
	return "roles"
}
