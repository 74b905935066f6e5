package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JournalRepository interface {
	CreateEntry(ctx context.Context, entry *model.JournalEntry) error
	FindEntryByID(ctx context.Context, id uuid.UUID) (*model.JournalEntry, error)
	ListEntries(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]model.JournalEntry, int64, error)
	CountEntries(ctx context.Context, companyID uuid.UUID) (int64, error)
	// ListMovements returns the posting lines for one account in a date
	// range with no guaranteed order; callers sort before accumulating.
	ListMovements(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]model.JournalLine, error)
	SumByAccountType(ctx context.Context, companyID uuid.UUID, accountType string, from, to time.Time) (debit, credit string, err error)
}

type journalRepository struct {
	db *gorm.DB
}

func NewJournalRepository(db *gorm.DB) JournalRepository {
	return &journalRepository{db: db}
}

func (r *journalRepository) CreateEntry(ctx context.Context, entry *model.JournalEntry) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *journalRepository) FindEntryByID(ctx context.Context, id uuid.UUID) (*model.JournalEntry, error) {
	var entry model.JournalEntry
	if err := GetDB(ctx, r.db).
		Preload("Lines").
		Preload("Lines.Account").
		First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *journalRepository) ListEntries(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]model.JournalEntry, int64, error) {
	var entries []model.JournalEntry
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.JournalEntry{}).Where("company_id = ?", companyID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("Lines").
		Where("company_id = ?", companyID).
		Order("entry_date desc, entry_no desc").
		Offset(offset).Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *journalRepository) CountEntries(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.JournalEntry{}).
		Where("company_id = ?", companyID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *journalRepository) ListMovements(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]model.JournalLine, error) {
	var lines []model.JournalLine
	if err := GetDB(ctx, r.db).
		Joins("JOIN journal_entries ON journal_entries.id = journal_lines.entry_id").
		Where("journal_lines.account_id = ? AND journal_entries.entry_date >= ? AND journal_entries.entry_date <= ?",
			accountID, from, to).
		Preload("Account").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *journalRepository) SumByAccountType(ctx context.Context, companyID uuid.UUID, accountType string, from, to time.Time) (string, string, error) {
	var totals struct {
		Debit  string
		Credit string
	}
	err := GetDB(ctx, r.db).Table("journal_lines").
		Select("COALESCE(SUM(journal_lines.debit), 0)::text as debit, COALESCE(SUM(journal_lines.credit), 0)::text as credit").
		Joins("JOIN journal_entries ON journal_entries.id = journal_lines.entry_id").
		Joins("JOIN ledger_accounts ON ledger_accounts.id = journal_lines.account_id").
		Where("journal_entries.company_id = ? AND ledger_accounts.type = ? AND journal_entries.entry_date >= ? AND journal_entries.entry_date <= ?",
			companyID, accountType, from, to).
		Scan(&totals).Error
	if err != nil {
		return "0", "0", err
	}
	if totals.Debit == "" {
		totals.Debit = "0"
	}
	if totals.Credit == "" {
		totals.Credit = "0"
	}
	return totals.Debit, totals.Credit, nil
}
