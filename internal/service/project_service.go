package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type SaveProjectRequest struct {
	Name       string `json:"name" binding:"required"`
	CategoryID string `json:"category_id"`
	CustomerID string `json:"customer_id"`
	Status     string `json:"status" binding:"omitempty,oneof=OPEN ACTIVE COMPLETED CANCELLED"`
	DueDate    string `json:"due_date"` // YYYY-MM-DD
	Notes      string `json:"notes"`
}

type SaveMilestoneRequest struct {
	Name          string `json:"name" binding:"required"`
	DueDate       string `json:"due_date"`       // YYYY-MM-DD
	Status        string `json:"status" binding:"omitempty,oneof=planned achieved delayed cancelled"`
	CompletedDate string `json:"completed_date"` // YYYY-MM-DD
	Notes         string `json:"notes"`
}

type ProjectResponse struct {
	ID           string              `json:"id"`
	CompanyID    string              `json:"company_id"`
	CategoryID   *string             `json:"category_id"`
	CategoryName string              `json:"category_name,omitempty"`
	CustomerID   *string             `json:"customer_id"`
	CustomerName string              `json:"customer_name,omitempty"`
	Name         string              `json:"name"`
	Status       string              `json:"status"`
	DueDate      *time.Time          `json:"due_date"`
	Notes        string              `json:"notes"`
	Milestones   []MilestoneResponse `json:"milestones,omitempty"`
	CreatedAt    string              `json:"created_at"`
}

type MilestoneResponse struct {
	ID            string     `json:"id"`
	ProjectID     string     `json:"project_id"`
	Name          string     `json:"name"`
	DueDate       *time.Time `json:"due_date"`
	Status        string     `json:"status"`
	CompletedDate *time.Time `json:"completed_date"`
	Notes         string     `json:"notes"`
}

// --- Interface ---

type ProjectService interface {
	ListProjects(ctx context.Context, companyID uuid.UUID, page, limit int) ([]ProjectResponse, int64, error)
	GetProject(ctx context.Context, id string) (*ProjectResponse, error)
	CreateProject(ctx context.Context, companyID uuid.UUID, actorID *uuid.UUID, req SaveProjectRequest) (*ProjectResponse, error)
	UpdateProject(ctx context.Context, id string, req SaveProjectRequest) (*ProjectResponse, error)
	DeleteProject(ctx context.Context, id string) error

	CreateMilestone(ctx context.Context, projectID string, actorID *uuid.UUID, req SaveMilestoneRequest) (*MilestoneResponse, error)
	UpdateMilestone(ctx context.Context, milestoneID string, actorID *uuid.UUID, req SaveMilestoneRequest) (*MilestoneResponse, error)
	DeleteMilestone(ctx context.Context, milestoneID string) error
}

type projectService struct {
	projectRepo repository.ProjectRepository
	auditRepo   repository.AuditRepository
	now         func() time.Time
}

func NewProjectService(projectRepo repository.ProjectRepository, auditRepo repository.AuditRepository) ProjectService {
	return &projectService{projectRepo: projectRepo, auditRepo: auditRepo, now: time.Now}
}

// --- Implementation ---

func (s *projectService) ListProjects(ctx context.Context, companyID uuid.UUID, page, limit int) ([]ProjectResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	projects, total, err := s.projectRepo.ListByCompany(ctx, companyID, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		res = append(res, toProjectResponse(&projects[i]))
	}
	return res, total, nil
}

func (s *projectService) GetProject(ctx context.Context, id string) (*ProjectResponse, error) {
	projectID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid project id: %w", err)
	}
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, errors.New("project not found")
	}
	resp := toProjectResponse(project)
	return &resp, nil
}

func (s *projectService) CreateProject(ctx context.Context, companyID uuid.UUID, actorID *uuid.UUID, req SaveProjectRequest) (*ProjectResponse, error) {
	project := &model.Project{
		CompanyID: companyID,
		Name:      req.Name,
		Status:    model.ProjectStatusOpen,
		Notes:     req.Notes,
	}
	if err := applyProjectFields(project, req); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	_ = s.auditRepo.Create(ctx, &model.AuditLog{
		CompanyID:  &companyID,
		UserID:     actorID,
		Action:     model.ActionCreateProject,
		EntityID:   project.ID.String(),
		EntityName: project.Name,
	})

	resp := toProjectResponse(project)
	return &resp, nil
}

func (s *projectService) UpdateProject(ctx context.Context, id string, req SaveProjectRequest) (*ProjectResponse, error) {
	projectID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid project id: %w", err)
	}
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, errors.New("project not found")
	}

	project.Name = req.Name
	project.Notes = req.Notes
	if err := applyProjectFields(project, req); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	resp := toProjectResponse(project)
	return &resp, nil
}

func (s *projectService) DeleteProject(ctx context.Context, id string) error {
	projectID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid project id: %w", err)
	}
	if _, err := s.projectRepo.FindByID(ctx, projectID); err != nil {
		return errors.New("project not found")
	}
	return s.projectRepo.Delete(ctx, projectID)
}

func (s *projectService) CreateMilestone(ctx context.Context, projectID string, actorID *uuid.UUID, req SaveMilestoneRequest) (*MilestoneResponse, error) {
	pid, err := uuid.Parse(projectID)
	if err != nil {
		return nil, fmt.Errorf("invalid project id: %w", err)
	}
	project, err := s.projectRepo.FindByID(ctx, pid)
	if err != nil {
		return nil, errors.New("project not found")
	}

	milestone := &model.Milestone{
		ProjectID: pid,
		Name:      req.Name,
		Status:    model.MilestonePlanned,
		Notes:     req.Notes,
	}
	if err := s.applyMilestoneFields(milestone, req); err != nil {
		return nil, err
	}

	if err := s.projectRepo.CreateMilestone(ctx, milestone); err != nil {
		return nil, fmt.Errorf("failed to create milestone: %w", err)
	}

	_ = s.auditRepo.Create(ctx, &model.AuditLog{
		CompanyID:  &project.CompanyID,
		UserID:     actorID,
		Action:     model.ActionCreateMilestone,
		EntityID:   milestone.ID.String(),
		EntityName: milestone.Name,
	})

	resp := toMilestoneResponse(milestone)
	return &resp, nil
}

func (s *projectService) UpdateMilestone(ctx context.Context, milestoneID string, actorID *uuid.UUID, req SaveMilestoneRequest) (*MilestoneResponse, error) {
	mid, err := uuid.Parse(milestoneID)
	if err != nil {
		return nil, fmt.Errorf("invalid milestone id: %w", err)
	}
	milestone, err := s.projectRepo.FindMilestoneByID(ctx, mid)
	if err != nil {
		return nil, errors.New("milestone not found")
	}

	milestone.Name = req.Name
	milestone.Notes = req.Notes
	if err := s.applyMilestoneFields(milestone, req); err != nil {
		return nil, err
	}

	if err := s.projectRepo.UpdateMilestone(ctx, milestone); err != nil {
		return nil, fmt.Errorf("failed to update milestone: %w", err)
	}

	project, err := s.projectRepo.FindByID(ctx, milestone.ProjectID)
	if err == nil {
		_ = s.auditRepo.Create(ctx, &model.AuditLog{
			CompanyID:  &project.CompanyID,
			UserID:     actorID,
			Action:     model.ActionUpdateMilestone,
			EntityID:   milestone.ID.String(),
			EntityName: milestone.Name,
		})
	}

	resp := toMilestoneResponse(milestone)
	return &resp, nil
}

func (s *projectService) DeleteMilestone(ctx context.Context, milestoneID string) error {
	mid, err := uuid.Parse(milestoneID)
	if err != nil {
		return fmt.Errorf("invalid milestone id: %w", err)
	}
	if _, err := s.projectRepo.FindMilestoneByID(ctx, mid); err != nil {
		return errors.New("milestone not found")
	}
	return s.projectRepo.DeleteMilestone(ctx, mid)
}

// --- Helpers ---

func applyProjectFields(project *model.Project, req SaveProjectRequest) error {
	if req.Status != "" {
		project.Status = req.Status
	}
	if req.CategoryID != "" {
		categoryID, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return fmt.Errorf("invalid category id: %w", err)
		}
		project.CategoryID = &categoryID
	}
	if req.CustomerID != "" {
		customerID, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return fmt.Errorf("invalid customer id: %w", err)
		}
		project.CustomerID = &customerID
	}
	if req.DueDate != "" {
		dueDate, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			return fmt.Errorf("invalid due_date, expected YYYY-MM-DD: %w", err)
		}
		project.DueDate = &dueDate
	}
	return nil
}

// applyMilestoneFields enforces the milestone invariants: an achieved
// milestone must carry a completed date and a completed date may never lie
// in the future.
func (s *projectService) applyMilestoneFields(milestone *model.Milestone, req SaveMilestoneRequest) error {
	if req.Status != "" {
		milestone.Status = req.Status
	}

	if req.DueDate != "" {
		dueDate, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			return fmt.Errorf("invalid due_date, expected YYYY-MM-DD: %w", err)
		}
		milestone.DueDate = &dueDate
	}

	if req.CompletedDate != "" {
		completed, err := time.Parse("2006-01-02", req.CompletedDate)
		if err != nil {
			return fmt.Errorf("invalid completed_date, expected YYYY-MM-DD: %w", err)
		}
		milestone.CompletedDate = &completed
	} else if milestone.Status != model.MilestoneAchieved {
		milestone.CompletedDate = nil
	}

	if milestone.Status == model.MilestoneAchieved && milestone.CompletedDate == nil {
		return errors.New("an achieved milestone requires a completed_date")
	}
	if milestone.CompletedDate != nil && milestone.CompletedDate.After(s.now()) {
		return errors.New("completed_date cannot be in the future")
	}
	return nil
}

func toProjectResponse(p *model.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:        p.ID.String(),
		CompanyID: p.CompanyID.String(),
		Name:      p.Name,
		Status:    p.Status,
		DueDate:   p.DueDate,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if p.CategoryID != nil {
		id := p.CategoryID.String()
		resp.CategoryID = &id
	}
	if p.Category != nil {
		resp.CategoryName = p.Category.Name
	}
	if p.CustomerID != nil {
		id := p.CustomerID.String()
		resp.CustomerID = &id
	}
	if p.Customer != nil {
		resp.CustomerName = p.Customer.Name
	}
	for i := range p.Milestones {
		resp.Milestones = append(resp.Milestones, toMilestoneResponse(&p.Milestones[i]))
	}
	return resp
}

func toMilestoneResponse(m *model.Milestone) MilestoneResponse {
	return MilestoneResponse{
		ID:            m.ID.String(),
		ProjectID:     m.ProjectID.String(),
		Name:          m.Name,
		DueDate:       m.DueDate,
		Status:        m.Status,
		CompletedDate: m.CompletedDate,
		Notes:         m.Notes,
	}
}
