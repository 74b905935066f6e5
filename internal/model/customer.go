package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AddressType enum constants
const (
	AddressTypeBilling  = "BILLING"
	AddressTypeShipping = "SHIPPING"
)

// Customer represents a CRM master record scoped to a company
type Customer struct {
	ID            uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"company_id"`
	Name          string            `gorm:"type:varchar(255);not null" json:"name"`
	TaxCode       string            `gorm:"type:varchar(50)" json:"tax_code"`
	ContactPerson string            `gorm:"type:varchar(255)" json:"contact_person"`
	Phone         string            `gorm:"type:varchar(50)" json:"phone"`
	Email         string            `gorm:"type:varchar(255)" json:"email"`
	IsActive      bool              `gorm:"default:true" json:"is_active"`
	Addresses     []CustomerAddress `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"addresses"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	DeletedAt     gorm.DeletedAt    `gorm:"index" json:"-"`
}

// CustomerAddress represents a customer's address (Billing, Shipping)
type CustomerAddress struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerID  uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_id"`
	AddressType string    `gorm:"type:varchar(20);not null" json:"address_type"` // BILLING, SHIPPING
	FullAddress string    `gorm:"type:text;not null" json:"full_address"`
	IsDefault   bool      `gorm:"default:false" json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
