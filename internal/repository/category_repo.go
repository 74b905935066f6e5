package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *model.ProjectCategory) error
	Update(ctx context.Context, category *model.ProjectCategory) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProjectCategory, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]model.ProjectCategory, error)
	ListDueRecurring(ctx context.Context, companyID uuid.UUID, asOf time.Time) ([]model.ProjectCategory, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *model.ProjectCategory) error {
	return GetDB(ctx, r.db).Create(category).Error
}

func (r *categoryRepository) Update(ctx context.Context, category *model.ProjectCategory) error {
	return GetDB(ctx, r.db).Save(category).Error
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.ProjectCategory{}).Error
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ProjectCategory, error) {
	var category model.ProjectCategory
	if err := GetDB(ctx, r.db).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]model.ProjectCategory, error) {
	var categories []model.ProjectCategory
	if err := GetDB(ctx, r.db).
		Where("company_id = ?", companyID).
		Order("name asc").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) ListDueRecurring(ctx context.Context, companyID uuid.UUID, asOf time.Time) ([]model.ProjectCategory, error) {
	var categories []model.ProjectCategory
	if err := GetDB(ctx, r.db).
		Where("company_id = ? AND is_recurring = ? AND recurrence_due_date IS NOT NULL AND recurrence_due_date <= ?",
			companyID, true, asOf).
		Order("recurrence_due_date asc").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
