package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountRepository interface {
	Create(ctx context.Context, account *model.LedgerAccount) error
	Update(ctx context.Context, account *model.LedgerAccount) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.LedgerAccount, error)
	FindByCode(ctx context.Context, companyID uuid.UUID, code string) (*model.LedgerAccount, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]model.LedgerAccount, error)
	HasChildren(ctx context.Context, id uuid.UUID) (bool, error)
	HasPostings(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *model.LedgerAccount) error {
	return GetDB(ctx, r.db).Create(account).Error
}

func (r *accountRepository) Update(ctx context.Context, account *model.LedgerAccount) error {
	return GetDB(ctx, r.db).Save(account).Error
}

func (r *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.LedgerAccount, error) {
	var account model.LedgerAccount
	if err := GetDB(ctx, r.db).First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindByCode(ctx context.Context, companyID uuid.UUID, code string) (*model.LedgerAccount, error) {
	var account model.LedgerAccount
	if err := GetDB(ctx, r.db).
		Where("company_id = ? AND code = ?", companyID, code).
		First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]model.LedgerAccount, error) {
	var accounts []model.LedgerAccount
	if err := GetDB(ctx, r.db).
		Where("company_id = ?", companyID).
		Order("code asc").
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *accountRepository) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.LedgerAccount{}).
		Where("parent_id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *accountRepository) HasPostings(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.JournalLine{}).
		Where("account_id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.LedgerAccount{}).Error
}
