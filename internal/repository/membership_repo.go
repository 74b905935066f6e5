package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MembershipRepository interface {
	Create(ctx context.Context, m *model.Membership) error
	Update(ctx context.Context, m *model.Membership) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Membership, error)
	FindByUserAndCompany(ctx context.Context, userID, companyID uuid.UUID) (*model.Membership, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]model.Membership, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Membership, error)
	CountByRole(ctx context.Context, roleID uuid.UUID) (int64, error)
}

type membershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Create(ctx context.Context, m *model.Membership) error {
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *membershipRepository) Update(ctx context.Context, m *model.Membership) error {
	return GetDB(ctx, r.db).Save(m).Error
}

func (r *membershipRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Membership{}).Error
}

func (r *membershipRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Membership, error) {
	var m model.Membership
	if err := GetDB(ctx, r.db).Preload("Role").First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *membershipRepository) FindByUserAndCompany(ctx context.Context, userID, companyID uuid.UUID) (*model.Membership, error) {
	var m model.Membership
	if err := GetDB(ctx, r.db).Preload("Role").
		Where("user_id = ? AND company_id = ?", userID, companyID).
		First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *membershipRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]model.Membership, error) {
	var memberships []model.Membership
	if err := GetDB(ctx, r.db).Preload("User").Preload("Role").
		Where("company_id = ?", companyID).
		Order("created_at asc").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *membershipRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Membership, error) {
	var memberships []model.Membership
	if err := GetDB(ctx, r.db).Preload("Company").Preload("Role").
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *membershipRepository) CountByRole(ctx context.Context, roleID uuid.UUID) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Membership{}).
		Where("role_id = ?", roleID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
