package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType enum constants
const (
	AccountTypeAsset     = "asset"
	AccountTypeLiability = "liability"
	AccountTypeEquity    = "equity"
	AccountTypeIncome    = "income"
	AccountTypeExpense   = "expense"
)

// BalanceType enum constants
const (
	BalanceTypeDebit  = "debit"
	BalanceTypeCredit = "credit"
)

// ValidAccountType reports whether t is one of the five account types.
func ValidAccountType(t string) bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// LedgerAccount is a chart-of-accounts node. Accounts form a tree via
// ParentID; group nodes (IsGroup=true) are organizational containers and
// must never receive postings, leaves are the posting targets.
type LedgerAccount struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_accounts_company_code" json:"company_id"`
	Code           string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_accounts_company_code" json:"code"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	Type           string          `gorm:"type:varchar(20);not null;index" json:"type"` // asset, liability, equity, income, expense
	ParentID       *uuid.UUID      `gorm:"type:uuid;index" json:"parent_id"`
	Parent         *LedgerAccount  `gorm:"foreignKey:ParentID" json:"-"`
	IsGroup        bool            `gorm:"default:false" json:"is_group"`
	BalanceType    string          `gorm:"type:varchar(10);not null" json:"balance_type"` // debit or credit
	OpeningBalance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"opening_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
