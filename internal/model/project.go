package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectStatus enum constants
const (
	ProjectStatusOpen      = "OPEN"
	ProjectStatusActive    = "ACTIVE"
	ProjectStatusCompleted = "COMPLETED"
	ProjectStatusCancelled = "CANCELLED"
)

// MilestoneStatus enum constants
const (
	MilestonePlanned   = "planned"
	MilestoneAchieved  = "achieved"
	MilestoneDelayed   = "delayed"
	MilestoneCancelled = "cancelled"
)

// Project is a unit of client work, optionally spawned from a recurring
// category.
type Project struct {
	ID         uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"company_id"`
	CategoryID *uuid.UUID       `gorm:"type:uuid;index" json:"category_id"`
	Category   *ProjectCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CustomerID *uuid.UUID       `gorm:"type:uuid;index" json:"customer_id"`
	Customer   *Customer        `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Name       string           `gorm:"type:varchar(255);not null" json:"name"`
	Status     string           `gorm:"type:varchar(20);not null;default:'OPEN';index" json:"status"`
	DueDate    *time.Time       `gorm:"type:date;index" json:"due_date"`
	Notes      string           `gorm:"type:text" json:"notes"`
	Milestones []Milestone      `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"milestones,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	DeletedAt  gorm.DeletedAt   `gorm:"index" json:"-"`
}

// Milestone tracks a checkpoint within a project. Status transitions are
// always explicit user actions; an achieved milestone must carry a
// CompletedDate and CompletedDate may never be in the future.
type Milestone struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"project_id"`
	Name          string     `gorm:"type:varchar(255);not null" json:"name"`
	DueDate       *time.Time `gorm:"type:date" json:"due_date"`
	Status        string     `gorm:"type:varchar(20);not null;default:'planned'" json:"status"`
	CompletedDate *time.Time `gorm:"type:date" json:"completed_date"`
	Notes         string     `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
