package model

import (
	"time"

	"backend/internal/recurrence"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectCategory groups projects and optionally describes a recurrence
// rule that spawns a new project each period. Recurrence parameters are
// validated by internal/recurrence before any save; DueDay/DueMonth are
// meaningless unless IsRecurring is true and Frequency is set.
type ProjectCategory struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`

	IsRecurring bool                 `gorm:"default:false" json:"is_recurring"`
	Frequency   recurrence.Frequency `gorm:"type:varchar(20)" json:"frequency"` // daily, weekly, monthly, quarterly, yearly
	DueDay      int                  `gorm:"default:0" json:"due_day"`          // weekday 1..7 (weekly) or day of month 1..31
	DueMonth    int                  `gorm:"default:0" json:"due_month"`        // 1..12, yearly only

	RecurrenceDueDate       *time.Time `gorm:"type:date;index" json:"recurrence_due_date"`
	LastRecurrenceCreatedAt *time.Time `json:"last_recurrence_created_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Rule returns the category's recurrence parameters as an evaluator rule.
func (c *ProjectCategory) Rule() recurrence.Rule {
	return recurrence.Rule{
		Frequency: c.Frequency,
		DueDay:    c.DueDay,
		DueMonth:  c.DueMonth,
	}
}
