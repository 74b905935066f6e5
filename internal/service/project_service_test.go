package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
)

func newProjectFixture() (*projectService, *memProjectRepo, *memAuditRepo) {
	projectRepo := newMemProjectRepo()
	auditRepo := &memAuditRepo{}
	svc := &projectService{
		projectRepo: projectRepo,
		auditRepo:   auditRepo,
		now: func() time.Time {
			return time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
		},
	}
	return svc, projectRepo, auditRepo
}

func seedProject(t *testing.T, repo *memProjectRepo, companyID uuid.UUID) *model.Project {
	t.Helper()
	project := &model.Project{
		CompanyID: companyID,
		Name:      "Website relaunch",
		Status:    model.ProjectStatusOpen,
	}
	if err := repo.Create(context.Background(), project); err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return project
}

func TestCreateMilestoneAchievedRequiresCompletedDate(t *testing.T) {
	svc, projectRepo, _ := newProjectFixture()
	project := seedProject(t, projectRepo, uuid.New())

	_, err := svc.CreateMilestone(context.Background(), project.ID.String(), nil, SaveMilestoneRequest{
		Name:   "Go-live",
		Status: model.MilestoneAchieved,
	})
	if err == nil {
		t.Fatalf("achieved milestone without completed_date must be rejected")
	}
	if len(projectRepo.milestones) != 0 {
		t.Fatalf("rejected milestone must not be persisted")
	}
}

func TestCreateMilestoneRejectsFutureCompletedDate(t *testing.T) {
	svc, projectRepo, _ := newProjectFixture()
	project := seedProject(t, projectRepo, uuid.New())

	_, err := svc.CreateMilestone(context.Background(), project.ID.String(), nil, SaveMilestoneRequest{
		Name:          "Go-live",
		Status:        model.MilestoneAchieved,
		CompletedDate: "2026-09-01",
	})
	if err == nil {
		t.Fatalf("completed_date after today must be rejected")
	}
}

func TestUpdateMilestoneToAchieved(t *testing.T) {
	svc, projectRepo, auditRepo := newProjectFixture()
	project := seedProject(t, projectRepo, uuid.New())

	created, err := svc.CreateMilestone(context.Background(), project.ID.String(), nil, SaveMilestoneRequest{
		Name:    "Content migrated",
		DueDate: "2026-08-10",
	})
	if err != nil {
		t.Fatalf("create milestone: %v", err)
	}
	if created.Status != model.MilestonePlanned {
		t.Fatalf("new milestone should default to planned, got %s", created.Status)
	}

	updated, err := svc.UpdateMilestone(context.Background(), created.ID, nil, SaveMilestoneRequest{
		Name:          "Content migrated",
		Status:        model.MilestoneAchieved,
		CompletedDate: "2026-08-18",
	})
	if err != nil {
		t.Fatalf("update milestone: %v", err)
	}
	if updated.Status != model.MilestoneAchieved {
		t.Fatalf("expected achieved, got %s", updated.Status)
	}
	if updated.CompletedDate == nil || updated.CompletedDate.Day() != 18 {
		t.Fatalf("expected completed date kept, got %v", updated.CompletedDate)
	}

	found := false
	for _, action := range auditRepo.actions() {
		if action == model.ActionUpdateMilestone {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an update audit entry")
	}
}

func TestUpdateMilestoneLeavingAchievedClearsCompletedDate(t *testing.T) {
	svc, projectRepo, _ := newProjectFixture()
	project := seedProject(t, projectRepo, uuid.New())

	created, err := svc.CreateMilestone(context.Background(), project.ID.String(), nil, SaveMilestoneRequest{
		Name:          "Design signed off",
		Status:        model.MilestoneAchieved,
		CompletedDate: "2026-08-01",
	})
	if err != nil {
		t.Fatalf("create milestone: %v", err)
	}

	updated, err := svc.UpdateMilestone(context.Background(), created.ID, nil, SaveMilestoneRequest{
		Name:   "Design signed off",
		Status: model.MilestoneDelayed,
	})
	if err != nil {
		t.Fatalf("update milestone: %v", err)
	}
	if updated.CompletedDate != nil {
		t.Fatalf("leaving achieved should clear the completed date, got %v", updated.CompletedDate)
	}
}

func TestCreateProjectDefaultsToOpen(t *testing.T) {
	svc, _, auditRepo := newProjectFixture()
	companyID := uuid.New()

	project, err := svc.CreateProject(context.Background(), companyID, nil, SaveProjectRequest{
		Name:    "Audit 2026",
		DueDate: "2026-10-31",
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if project.Status != model.ProjectStatusOpen {
		t.Fatalf("expected OPEN, got %s", project.Status)
	}
	if project.DueDate == nil {
		t.Fatalf("expected due date parsed")
	}
	if len(auditRepo.actions()) != 1 || auditRepo.actions()[0] != model.ActionCreateProject {
		t.Fatalf("expected a create audit entry, got %v", auditRepo.actions())
	}
}
