package model

import (
	"time"

	"backend/internal/authz"

	"github.com/google/uuid"
)

// Role is a named bundle of module/action grants scoped to one company.
// Grants is a sparse JSONB map evaluated fail-closed by authz.GrantMap.
// System roles are seeded at company setup; the IsSystem flag is immutable
// after creation and system roles may never be deleted.
type Role struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_roles_company_name" json:"company_id"`
	Name        string         `gorm:"type:varchar(50);not null;uniqueIndex:idx_roles_company_name" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	IsSystem    bool           `gorm:"default:false" json:"is_system"`
	Grants      authz.GrantMap `gorm:"type:jsonb;not null;default:'{}'" json:"grants"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
