package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/recurrence"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"github.com/google/uuid"
)

// --- DTOs ---

type SaveCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsRecurring bool   `json:"is_recurring"`
	Frequency   string `json:"frequency"` // daily, weekly, monthly, quarterly, yearly
	DueDay      int    `json:"due_day"`
	DueMonth    int    `json:"due_month"`
}

type CategoryResponse struct {
	ID                      string     `json:"id"`
	CompanyID               string     `json:"company_id"`
	Name                    string     `json:"name"`
	Description             string     `json:"description"`
	IsRecurring             bool       `json:"is_recurring"`
	Frequency               string     `json:"frequency"`
	DueDay                  int        `json:"due_day"`
	DueMonth                int        `json:"due_month"`
	RecurrenceDueDate       *time.Time `json:"recurrence_due_date"`
	LastRecurrenceCreatedAt *time.Time `json:"last_recurrence_created_at"`
	CreatedAt               string     `json:"created_at"`
}

type SpawnResult struct {
	CategoryID  string     `json:"category_id"`
	ProjectID   string     `json:"project_id"`
	ProjectName string     `json:"project_name"`
	NextDueDate *time.Time `json:"next_due_date"`
}

// --- Interface ---

type CategoryService interface {
	ListCategories(ctx context.Context, companyID uuid.UUID) ([]CategoryResponse, error)
	GetCategory(ctx context.Context, id string) (*CategoryResponse, error)
	CreateCategory(ctx context.Context, companyID uuid.UUID, actorID *uuid.UUID, req SaveCategoryRequest) (*CategoryResponse, error)
	UpdateCategory(ctx context.Context, id string, actorID *uuid.UUID, req SaveCategoryRequest) (*CategoryResponse, error)
	DeleteCategory(ctx context.Context, id string) error
	// SpawnDueProjects creates one project for every recurring category
	// whose due date has arrived, then advances the category's due date
	// with the recurrence evaluator. The source app tracked this manually
	// per screen; here it is a single idempotent operation.
	SpawnDueProjects(ctx context.Context, companyID uuid.UUID, actorID *uuid.UUID, now time.Time) ([]SpawnResult, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	projectRepo  repository.ProjectRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	projectRepo repository.ProjectRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		projectRepo:  projectRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

// --- Implementation ---

func (s *categoryService) ListCategories(ctx context.Context, companyID uuid.UUID) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	res := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		res = append(res, toCategoryResponse(&categories[i]))
	}
	return res, nil
}

func (s *categoryService) GetCategory(ctx context.Context, id string) (*CategoryResponse, error) {
	categoryID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid category id: %w", err)
	}
	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, errors.New("category not found")
	}
	resp := toCategoryResponse(category)
	return &resp, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, companyID uuid.UUID, actorID *uuid.UUID, req SaveCategoryRequest) (*CategoryResponse, error) {
	category := &model.ProjectCategory{
		CompanyID:   companyID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := applyRecurrence(category, req); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.audit(ctx, &companyID, actorID, model.ActionCreateCategory, category.ID.String(), category.Name)

	resp := toCategoryResponse(category)
	return &resp, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id string, actorID *uuid.UUID, req SaveCategoryRequest) (*CategoryResponse, error) {
	categoryID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid category id: %w", err)
	}

	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, errors.New("category not found")
	}

	category.Name = req.Name
	category.Description = req.Description
	if err := applyRecurrence(category, req); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.audit(ctx, &category.CompanyID, actorID, model.ActionUpdateCategory, category.ID.String(), category.Name)

	resp := toCategoryResponse(category)
	return &resp, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id string) error {
	categoryID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid category id: %w", err)
	}
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		return errors.New("category not found")
	}
	return s.categoryRepo.Delete(ctx, categoryID)
}

func (s *categoryService) SpawnDueProjects(ctx context.Context, companyID uuid.UUID, actorID *uuid.UUID, now time.Time) ([]SpawnResult, error) {
	due, err := s.categoryRepo.ListDueRecurring(ctx, companyID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due categories: %w", err)
	}

	results := make([]SpawnResult, 0, len(due))
	for i := range due {
		category := &due[i]

		var result SpawnResult
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			dueDate := *category.RecurrenceDueDate
			project := &model.Project{
				CompanyID:  companyID,
				CategoryID: &category.ID,
				Name:       fmt.Sprintf("%s — %s", category.Name, dueDate.Format("2006-01-02")),
				Status:     model.ProjectStatusOpen,
				DueDate:    &dueDate,
			}
			if err := s.projectRepo.Create(txCtx, project); err != nil {
				return fmt.Errorf("failed to create project for category '%s': %w", category.Name, err)
			}

			next := category.Rule().NextDueDate(dueDate)
			category.RecurrenceDueDate = &next
			category.LastRecurrenceCreatedAt = &now
			if err := s.categoryRepo.Update(txCtx, category); err != nil {
				return fmt.Errorf("failed to advance category '%s': %w", category.Name, err)
			}

			details, _ := json.Marshal(map[string]interface{}{
				"category_id": category.ID.String(),
				"project_id":  project.ID.String(),
				"due_date":    dueDate.Format("2006-01-02"),
				"next_due":    next.Format("2006-01-02"),
			})
			_ = s.auditRepo.Create(txCtx, &model.AuditLog{
				CompanyID:  &companyID,
				UserID:     actorID,
				Action:     model.ActionSpawnProject,
				EntityID:   project.ID.String(),
				EntityName: project.Name,
				Details:    string(details),
			})

			result = SpawnResult{
				CategoryID:  category.ID.String(),
				ProjectID:   project.ID.String(),
				ProjectName: project.Name,
				NextDueDate: &next,
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		results = append(results, result)
		if s.hub != nil {
			s.hub.Notify("project.spawned", result)
		}
	}

	return results, nil
}

// --- Helpers ---

// applyRecurrence validates and copies the recurrence fields onto the
// category. A rule is only meaningful with IsRecurring set and a frequency
// chosen; turning recurrence off clears the schedule.
func applyRecurrence(category *model.ProjectCategory, req SaveCategoryRequest) error {
	if !req.IsRecurring {
		category.IsRecurring = false
		category.Frequency = ""
		category.DueDay = 0
		category.DueMonth = 0
		category.RecurrenceDueDate = nil
		return nil
	}

	rule := recurrence.Rule{
		Frequency: recurrence.Frequency(req.Frequency),
		DueDay:    req.DueDay,
		DueMonth:  req.DueMonth,
	}
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("invalid recurrence rule: %w", err)
	}

	category.IsRecurring = true
	category.Frequency = rule.Frequency
	category.DueDay = rule.DueDay
	category.DueMonth = rule.DueMonth

	// First due date is computed once at save time, as the source did at
	// category creation.
	if category.RecurrenceDueDate == nil {
		next := rule.NextDueDate(time.Now())
		category.RecurrenceDueDate = &next
	}
	return nil
}

func (s *categoryService) audit(ctx context.Context, companyID, actorID *uuid.UUID, action, entityID, entityName string) {
	_ = s.auditRepo.Create(ctx, &model.AuditLog{
		CompanyID:  companyID,
		UserID:     actorID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
	})
}

func toCategoryResponse(c *model.ProjectCategory) CategoryResponse {
	return CategoryResponse{
		ID:                      c.ID.String(),
		CompanyID:               c.CompanyID.String(),
		Name:                    c.Name,
		Description:             c.Description,
		IsRecurring:             c.IsRecurring,
		Frequency:               string(c.Frequency),
		DueDay:                  c.DueDay,
		DueMonth:                c.DueMonth,
		RecurrenceDueDate:       c.RecurrenceDueDate,
		LastRecurrenceCreatedAt: c.LastRecurrenceCreatedAt,
		CreatedAt:               c.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
