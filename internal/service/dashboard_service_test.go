package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/recurrence"

	"github.com/google/uuid"
)

func TestGetDashboardAggregates(t *testing.T) {
	accountRepo := newMemAccountRepo()
	journalRepo := newMemJournalRepo(accountRepo)
	projectRepo := newMemProjectRepo()
	categoryRepo := newMemCategoryRepo()
	companyID := uuid.New()

	ledgerSvc := NewLedgerService(accountRepo, journalRepo, &memAuditRepo{}, memTxManager{}, nil)
	cash := seedAccount(t, accountRepo, companyID, "1000", model.AccountTypeAsset, model.BalanceTypeDebit, false, "0")
	revenue := seedAccount(t, accountRepo, companyID, "4000", model.AccountTypeIncome, model.BalanceTypeCredit, false, "0")
	rent := seedAccount(t, accountRepo, companyID, "5000", model.AccountTypeExpense, model.BalanceTypeDebit, false, "0")

	post := func(date, debitAccount, creditAccount, amount string) {
		t.Helper()
		_, err := ledgerSvc.PostJournalEntry(context.Background(), companyID, nil, PostJournalRequest{
			EntryDate: date,
			Lines: []JournalLineRequest{
				{AccountID: debitAccount, Debit: amount},
				{AccountID: creditAccount, Credit: amount},
			},
		})
		if err != nil {
			t.Fatalf("post failed: %v", err)
		}
	}
	post("2026-08-05", cash.ID.String(), revenue.ID.String(), "1200")
	post("2026-08-15", rent.ID.String(), cash.ID.String(), "300")

	for _, status := range []string{model.ProjectStatusOpen, model.ProjectStatusOpen, model.ProjectStatusActive} {
		_ = projectRepo.Create(context.Background(), &model.Project{CompanyID: companyID, Name: "p", Status: status})
	}

	due := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	_ = categoryRepo.Create(context.Background(), &model.ProjectCategory{
		CompanyID:         companyID,
		Name:              "Bookkeeping",
		IsRecurring:       true,
		Frequency:         recurrence.Monthly,
		DueDay:            10,
		RecurrenceDueDate: &due,
	})

	svc := &dashboardService{
		journalRepo:  journalRepo,
		projectRepo:  projectRepo,
		categoryRepo: categoryRepo,
		now: func() time.Time {
			return time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
		},
	}

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	dash, err := svc.GetDashboard(context.Background(), companyID, from, to)
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}

	if dash.TotalIncome != "1200" || dash.TotalExpense != "300" || dash.NetResult != "900" {
		t.Fatalf("unexpected totals: income=%s expense=%s net=%s",
			dash.TotalIncome, dash.TotalExpense, dash.NetResult)
	}
	if dash.ProjectCounts.Open != 2 || dash.ProjectCounts.Active != 1 || dash.ProjectCounts.Completed != 0 {
		t.Fatalf("unexpected project counts: %+v", dash.ProjectCounts)
	}
	if len(dash.OverdueCategories) != 1 || dash.OverdueCategories[0].CategoryName != "Bookkeeping" {
		t.Fatalf("expected the overdue category listed, got %+v", dash.OverdueCategories)
	}
}
