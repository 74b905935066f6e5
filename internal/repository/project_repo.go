package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]model.Project, int64, error)
	CountByStatus(ctx context.Context, companyID uuid.UUID, status string) (int64, error)

	CreateMilestone(ctx context.Context, milestone *model.Milestone) error
	UpdateMilestone(ctx context.Context, milestone *model.Milestone) error
	DeleteMilestone(ctx context.Context, id uuid.UUID) error
	FindMilestoneByID(ctx context.Context, id uuid.UUID) (*model.Milestone, error)
	ListMilestones(ctx context.Context, projectID uuid.UUID) ([]model.Milestone, error)
	CountOverdueMilestones(ctx context.Context, companyID uuid.UUID, asOf time.Time) (int64, error)
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	return GetDB(ctx, r.db).Create(project).Error
}

func (r *projectRepository) Update(ctx context.Context, project *model.Project) error {
	return GetDB(ctx, r.db).Save(project).Error
}

func (r *projectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Project{}).Error
}

func (r *projectRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := GetDB(ctx, r.db).
		Preload("Category").
		Preload("Customer").
		Preload("Milestones").
		First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]model.Project, int64, error) {
	var projects []model.Project
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Project{}).Where("company_id = ?", companyID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("Category").Preload("Customer").
		Where("company_id = ?", companyID).
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (r *projectRepository) CountByStatus(ctx context.Context, companyID uuid.UUID, status string) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Project{}).
		Where("company_id = ? AND status = ?", companyID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *projectRepository) CreateMilestone(ctx context.Context, milestone *model.Milestone) error {
	return GetDB(ctx, r.db).Create(milestone).Error
}

func (r *projectRepository) UpdateMilestone(ctx context.Context, milestone *model.Milestone) error {
	return GetDB(ctx, r.db).Save(milestone).Error
}

func (r *projectRepository) DeleteMilestone(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Milestone{}).Error
}

func (r *projectRepository) FindMilestoneByID(ctx context.Context, id uuid.UUID) (*model.Milestone, error) {
	var milestone model.Milestone
	if err := GetDB(ctx, r.db).First(&milestone, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &milestone, nil
}

func (r *projectRepository) ListMilestones(ctx context.Context, projectID uuid.UUID) ([]model.Milestone, error) {
	var milestones []model.Milestone
	if err := GetDB(ctx, r.db).
		Where("project_id = ?", projectID).
		Order("due_date asc NULLS LAST, created_at asc").
		Find(&milestones).Error; err != nil {
		return nil, err
	}
	return milestones, nil
}

func (r *projectRepository) CountOverdueMilestones(ctx context.Context, companyID uuid.UUID, asOf time.Time) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Milestone{}).
		Joins("JOIN projects ON projects.id = milestones.project_id").
		Where("projects.company_id = ? AND milestones.status = ? AND milestones.due_date < ?",
			companyID, model.MilestonePlanned, asOf).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
