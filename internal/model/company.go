package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is the tenant root. Every business record is scoped to exactly
// one company; users join companies through Membership rows.
type Company struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	LegalName string         `gorm:"type:varchar(255)" json:"legal_name"`
	TaxCode   string         `gorm:"type:varchar(50)" json:"tax_code"`
	Address   string         `gorm:"type:text" json:"address"`
	Currency  string         `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Membership links a user to a company with a single role. One row per
// (user, company); a user may belong to several companies, each with an
// independent role.
type Membership struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_user_company" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_user_company;index" json:"company_id"`
	Company   *Company  `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"company,omitempty"`
	RoleID    uuid.UUID `gorm:"type:uuid;not null;index" json:"role_id"`
	Role      *Role     `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
