package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JournalEntry is a balanced financial event composed of two or more lines.
// Sum of debits must equal sum of credits across the entry's lines.
type JournalEntry struct {
	ID        uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID uuid.UUID     `gorm:"type:uuid;not null;index" json:"company_id"`
	EntryNo   string        `gorm:"type:varchar(30);not null;uniqueIndex" json:"entry_no"`
	EntryDate time.Time     `gorm:"type:date;not null;index" json:"entry_date"`
	Narration string        `gorm:"type:text" json:"narration"`
	CreatedBy *uuid.UUID    `gorm:"type:uuid" json:"created_by"`
	Lines     []JournalLine `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// JournalLine is a single debit/credit posting against a leaf account.
// Exactly one of Debit/Credit is non-zero per line. Seq is assigned at
// posting time and orders lines posted on the same date deterministically.
type JournalLine struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EntryID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"entry_id"`
	AccountID uuid.UUID       `gorm:"type:uuid;not null;index" json:"account_id"`
	Account   *LedgerAccount  `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Seq       int64           `gorm:"autoIncrement;uniqueIndex" json:"seq"`
	Debit     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"debit"`
	Credit    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"credit"`
	Memo      string          `gorm:"type:text" json:"memo"`
	CreatedAt time.Time       `json:"created_at"`
}
