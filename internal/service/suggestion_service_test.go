package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/recurrence"

	"github.com/google/uuid"
)

func TestSuggestFlagsDueCategoriesAndContraBalances(t *testing.T) {
	accountRepo := newMemAccountRepo()
	journalRepo := newMemJournalRepo(accountRepo)
	projectRepo := newMemProjectRepo()
	categoryRepo := newMemCategoryRepo()
	companyID := uuid.New()

	ledgerSvc := NewLedgerService(accountRepo, journalRepo, &memAuditRepo{}, memTxManager{}, nil)
	cash := seedAccount(t, accountRepo, companyID, "1000", model.AccountTypeAsset, model.BalanceTypeDebit, false, "100")
	revenue := seedAccount(t, accountRepo, companyID, "4000", model.AccountTypeIncome, model.BalanceTypeCredit, false, "0")

	// Spend more than the cash account holds so it closes negative.
	_, err := ledgerSvc.PostJournalEntry(context.Background(), companyID, nil, PostJournalRequest{
		EntryDate: "2026-08-10",
		Lines: []JournalLineRequest{
			{AccountID: revenue.ID.String(), Debit: "400"},
			{AccountID: cash.ID.String(), Credit: "400"},
		},
	})
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}

	due := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	_ = categoryRepo.Create(context.Background(), &model.ProjectCategory{
		CompanyID:         companyID,
		Name:              "VAT filing",
		IsRecurring:       true,
		Frequency:         recurrence.Monthly,
		DueDay:            1,
		RecurrenceDueDate: &due,
	})

	svc := &suggestionService{
		categoryRepo: categoryRepo,
		projectRepo:  projectRepo,
		accountRepo:  accountRepo,
		journalRepo:  journalRepo,
		now: func() time.Time {
			return time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
		},
	}

	suggestions, err := svc.Suggest(context.Background(), companyID)
	if err != nil {
		t.Fatalf("suggest failed: %v", err)
	}

	kinds := map[string]int{}
	for _, s := range suggestions {
		kinds[s.Kind]++
	}
	if kinds["recurring_category_due"] != 1 {
		t.Fatalf("expected one due-category warning, got %+v", kinds)
	}
	// Cash went to -300 and revenue carries a 400 debit balance, so both
	// sit against their normal side.
	if kinds["contra_balance"] != 2 {
		t.Fatalf("expected two contra-balance findings, got %+v", kinds)
	}
	if kinds["milestones_overdue"] != 0 {
		t.Fatalf("no milestones exist, got %+v", kinds)
	}
}

func TestSuggestQuietWhenHealthy(t *testing.T) {
	accountRepo := newMemAccountRepo()
	journalRepo := newMemJournalRepo(accountRepo)
	companyID := uuid.New()

	seedAccount(t, accountRepo, companyID, "1000", model.AccountTypeAsset, model.BalanceTypeDebit, false, "500")

	svc := &suggestionService{
		categoryRepo: newMemCategoryRepo(),
		projectRepo:  newMemProjectRepo(),
		accountRepo:  accountRepo,
		journalRepo:  journalRepo,
		now:          time.Now,
	}

	suggestions, err := svc.Suggest(context.Background(), companyID)
	if err != nil {
		t.Fatalf("suggest failed: %v", err)
	}
	if len(suggestions) != 0 {
		t.Fatalf("expected no findings, got %+v", suggestions)
	}
}
