package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DashboardService interface {
	GetDashboard(ctx context.Context, companyID uuid.UUID, from, to time.Time) (*model.DashboardResponse, error)
}

type dashboardService struct {
	journalRepo  repository.JournalRepository
	projectRepo  repository.ProjectRepository
	categoryRepo repository.CategoryRepository
	now          func() time.Time
}

func NewDashboardService(
	journalRepo repository.JournalRepository,
	projectRepo repository.ProjectRepository,
	categoryRepo repository.CategoryRepository,
) DashboardService {
	return &dashboardService{
		journalRepo:  journalRepo,
		projectRepo:  projectRepo,
		categoryRepo: categoryRepo,
		now:          time.Now,
	}
}

// GetDashboard aggregates income/expense totals, project status counts,
// and overdue recurring work for a company over a date range.
func (s *dashboardService) GetDashboard(ctx context.Context, companyID uuid.UUID, from, to time.Time) (*model.DashboardResponse, error) {
	income, err := s.typeBalance(ctx, companyID, model.AccountTypeIncome, from, to)
	if err != nil {
		return nil, err
	}
	expense, err := s.typeBalance(ctx, companyID, model.AccountTypeExpense, from, to)
	if err != nil {
		return nil, err
	}

	counts := model.ProjectStatusCounts{}
	for _, pair := range []struct {
		status string
		dest   *int64
	}{
		{model.ProjectStatusOpen, &counts.Open},
		{model.ProjectStatusActive, &counts.Active},
		{model.ProjectStatusCompleted, &counts.Completed},
		{model.ProjectStatusCancelled, &counts.Cancelled},
	} {
		n, err := s.projectRepo.CountByStatus(ctx, companyID, pair.status)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s projects: %w", pair.status, err)
		}
		*pair.dest = n
	}

	asOf := s.now()
	overdueMilestones, err := s.projectRepo.CountOverdueMilestones(ctx, companyID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to count overdue milestones: %w", err)
	}

	dueCategories, err := s.categoryRepo.ListDueRecurring(ctx, companyID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to list due categories: %w", err)
	}
	overdueCategories := make([]model.CategoryDueSummary, 0, len(dueCategories))
	for i := range dueCategories {
		overdueCategories = append(overdueCategories, model.CategoryDueSummary{
			CategoryID:   dueCategories[i].ID.String(),
			CategoryName: dueCategories[i].Name,
			DueDate:      dueCategories[i].RecurrenceDueDate,
		})
	}

	return &model.DashboardResponse{
		TotalIncome:        income.String(),
		TotalExpense:       expense.String(),
		NetResult:          income.Sub(expense).String(),
		ProjectCounts:      counts,
		OverdueMilestones:  overdueMilestones,
		OverdueCategories:  overdueCategories,
		TimeRangeStartDate: from,
		TimeRangeEndDate:   to,
	}, nil
}

// typeBalance nets the debits and credits posted to all accounts of one
// type. Income accounts carry credit balances, expense accounts debit.
func (s *dashboardService) typeBalance(ctx context.Context, companyID uuid.UUID, accountType string, from, to time.Time) (decimal.Decimal, error) {
	debitStr, creditStr, err := s.journalRepo.SumByAccountType(ctx, companyID, accountType, from, to)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum %s postings: %w", accountType, err)
	}
	debit, err := decimal.NewFromString(debitStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bad debit total %q: %w", debitStr, err)
	}
	credit, err := decimal.NewFromString(creditStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bad credit total %q: %w", creditStr, err)
	}

	if accountType == model.AccountTypeIncome {
		return credit.Sub(debit), nil
	}
	return debit.Sub(credit), nil
}
