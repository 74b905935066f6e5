package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateCompany   = "CREATE_COMPANY"
	ActionSetupCompany    = "SETUP_COMPANY"
	ActionCreateRole      = "CREATE_ROLE"
	ActionUpdateRole      = "UPDATE_ROLE"
	ActionDeleteRole      = "DELETE_ROLE"
	ActionUpdateGrants    = "UPDATE_ROLE_GRANTS"
	ActionAssignRole      = "ASSIGN_MEMBERSHIP_ROLE"
	ActionCreateCategory  = "CREATE_CATEGORY"
	ActionUpdateCategory  = "UPDATE_CATEGORY"
	ActionSpawnProject    = "SPAWN_RECURRING_PROJECT"
	ActionCreateProject   = "CREATE_PROJECT"
	ActionCreateCustomer  = "CREATE_CUSTOMER"
	ActionCreateAccount   = "CREATE_LEDGER_ACCOUNT"
	ActionPostJournal     = "POST_JOURNAL_ENTRY"
	ActionCreateMilestone = "CREATE_MILESTONE"
	ActionUpdateMilestone = "UPDATE_MILESTONE"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID  *uuid.UUID `gorm:"type:uuid;index" json:"company_id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated task
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
