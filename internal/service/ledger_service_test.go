package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newLedgerFixture() (LedgerService, *memAccountRepo, *memJournalRepo, *memAuditRepo) {
	accountRepo := newMemAccountRepo()
	journalRepo := newMemJournalRepo(accountRepo)
	auditRepo := &memAuditRepo{}
	svc := NewLedgerService(accountRepo, journalRepo, auditRepo, memTxManager{}, nil)
	return svc, accountRepo, journalRepo, auditRepo
}

func seedAccount(t *testing.T, repo *memAccountRepo, companyID uuid.UUID, code, accountType, balanceType string, isGroup bool, opening string) *model.LedgerAccount {
	t.Helper()
	account := &model.LedgerAccount{
		CompanyID:      companyID,
		Code:           code,
		Name:           "Account " + code,
		Type:           accountType,
		IsGroup:        isGroup,
		BalanceType:    balanceType,
		OpeningBalance: decimal.RequireFromString(opening),
	}
	if err := repo.Create(context.Background(), account); err != nil {
		t.Fatalf("seed account %s: %v", code, err)
	}
	return account
}

func TestPostJournalEntryBalanced(t *testing.T) {
	svc, accountRepo, _, auditRepo := newLedgerFixture()
	companyID := uuid.New()
	cash := seedAccount(t, accountRepo, companyID, "1000", model.AccountTypeAsset, model.BalanceTypeDebit, false, "0")
	revenue := seedAccount(t, accountRepo, companyID, "4000", model.AccountTypeIncome, model.BalanceTypeCredit, false, "0")

	entry, err := svc.PostJournalEntry(context.Background(), companyID, nil, PostJournalRequest{
		EntryDate: "2026-08-10",
		Narration: "Consulting fee",
		Lines: []JournalLineRequest{
			{AccountID: cash.ID.String(), Debit: "500"},
			{AccountID: revenue.ID.String(), Credit: "500"},
		},
	})
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}
	if entry.EntryNo != "JE-000001" {
		t.Fatalf("expected JE-000001, got %s", entry.EntryNo)
	}
	if len(entry.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(entry.Lines))
	}
	if entry.Lines[0].Seq >= entry.Lines[1].Seq {
		t.Fatalf("line sequence must increase, got %d then %d", entry.Lines[0].Seq, entry.Lines[1].Seq)
	}

	second, err := svc.PostJournalEntry(context.Background(), companyID, nil, PostJournalRequest{
		EntryDate: "2026-08-11",
		Lines: []JournalLineRequest{
			{AccountID: cash.ID.String(), Debit: "50"},
			{AccountID: revenue.ID.String(), Credit: "50"},
		},
	})
	if err != nil {
		t.Fatalf("second post failed: %v", err)
	}
	if second.EntryNo != "JE-000002" {
		t.Fatalf("expected JE-000002, got %s", second.EntryNo)
	}

	found := false
	for _, action := range auditRepo.actions() {
		if action == model.ActionPostJournal {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a posting audit entry")
	}
}

func TestPostJournalEntryUnbalanced(t *testing.T) {
	svc, accountRepo, journalRepo, _ := newLedgerFixture()
	companyID := uuid.New()
	cash := seedAccount(t, accountRepo, companyID, "1000", model.AccountTypeAsset, model.BalanceTypeDebit, false, "0")
	revenue := seedAccount(t, accountRepo, companyID, "4000", model.AccountTypeIncome, model.BalanceTypeCredit, false, "0")

	_, err := svc.PostJournalEntry(context.Background(), companyID, nil, PostJournalRequest{
		EntryDate: "2026-08-10",
		Lines: []JournalLineRequest{
			{AccountID: cash.ID.String(), Debit: "500"},
			{AccountID: revenue.ID.String(), Credit: "400"},
		},
	})
	if !errors.Is(err, ErrUnbalancedEntry) {
		t.Fatalf("expected ErrUnbalancedEntry, got %v", err)
	}
	if len(journalRepo.entries) != 0 {
		t.Fatalf("unbalanced entry must not be persisted")
	}
}

func TestPostJournalEntryRejectsTwoSidedLine(t *testing.T) {
	svc, accountRepo, _, _ := newLedgerFixture()
	companyID := uuid.New()
	cash := seedAccount(t, accountRepo, companyID, "1000", model.AccountTypeAsset, model.BalanceTypeDebit, false, "0")
	revenue := seedAccount(t, accountRepo, companyID, "4000", model.AccountTypeIncome, model.BalanceTypeCredit, false, "0")

	_, err := svc.PostJournalEntry(context.Background(), companyID, nil, PostJournalRequest{
		EntryDate: "2026-08-10",
		Lines: []JournalLineRequest{
			{AccountID: cash.ID.String(), Debit: "250", Credit: "250"},
			{AccountID: revenue.ID.String(), Credit: "0"},
		},
	})
	if err == nil {
		t.Fatalf("a line with both sides set must be rejected")
	}
}

func TestPostJournalEntryRejectsGroupAccount(t *testing.T) {
	svc, accountRepo, journalRepo, _ := newLedgerFixture()
	companyID := uuid.New()
	assets := seedAccount(t, accountRepo, companyID, "1", model.AccountTypeAsset, model.BalanceTypeDebit, true, "0")
	revenue := seedAccount(t, accountRepo, companyID, "4000", model.AccountTypeIncome, model.BalanceTypeCredit, false, "0")

	_, err := svc.PostJournalEntry(context.Background(), companyID, nil, PostJournalRequest{
		EntryDate: "2026-08-10",
		Lines: []JournalLineRequest{
			{AccountID: assets.ID.String(), Debit: "500"},
			{AccountID: revenue.ID.String(), Credit: "500"},
		},
	})
	if !errors.Is(err, ErrPostingToGroup) {
		t.Fatalf("expected ErrPostingToGroup, got %v", err)
	}
	if len(journalRepo.entries) != 0 {
		t.Fatalf("rejected entry must not be persisted")
	}
}

func TestDeleteAccountWithPostings(t *testing.T) {
	svc, accountRepo, _, _ := newLedgerFixture()
	companyID := uuid.New()
	cash := seedAccount(t, accountRepo, companyID, "1000", model.AccountTypeAsset, model.BalanceTypeDebit, false, "0")
	revenue := seedAccount(t, accountRepo, companyID, "4000", model.AccountTypeIncome, model.BalanceTypeCredit, false, "0")

	_, err := svc.PostJournalEntry(context.Background(), companyID, nil, PostJournalRequest{
		EntryDate: "2026-08-10",
		Lines: []JournalLineRequest{
			{AccountID: cash.ID.String(), Debit: "100"},
			{AccountID: revenue.ID.String(), Credit: "100"},
		},
	})
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}

	if err := svc.DeleteAccount(context.Background(), cash.ID.String()); !errors.Is(err, ErrAccountInUse) {
		t.Fatalf("expected ErrAccountInUse, got %v", err)
	}
}

func TestCreateAccountRejectsDuplicateCodeAndLeafParent(t *testing.T) {
	svc, accountRepo, _, _ := newLedgerFixture()
	companyID := uuid.New()
	leaf := seedAccount(t, accountRepo, companyID, "1000", model.AccountTypeAsset, model.BalanceTypeDebit, false, "0")

	_, err := svc.CreateAccount(context.Background(), companyID, nil, SaveAccountRequest{
		Code: "1000", Name: "Duplicate", Type: model.AccountTypeAsset, BalanceType: model.BalanceTypeDebit,
	})
	if err == nil {
		t.Fatalf("duplicate code must be rejected")
	}

	_, err = svc.CreateAccount(context.Background(), companyID, nil, SaveAccountRequest{
		Code: "1010", Name: "Child", Type: model.AccountTypeAsset, BalanceType: model.BalanceTypeDebit,
		ParentID: leaf.ID.String(),
	})
	if err == nil {
		t.Fatalf("a leaf account must not accept children")
	}
}

func TestAccountReportRunningBalance(t *testing.T) {
	svc, accountRepo, _, _ := newLedgerFixture()
	companyID := uuid.New()
	cash := seedAccount(t, accountRepo, companyID, "1000", model.AccountTypeAsset, model.BalanceTypeDebit, false, "1000")
	revenue := seedAccount(t, accountRepo, companyID, "4000", model.AccountTypeIncome, model.BalanceTypeCredit, false, "0")
	expense := seedAccount(t, accountRepo, companyID, "5000", model.AccountTypeExpense, model.BalanceTypeDebit, false, "0")

	// Posted out of date order on purpose; the report must still come
	// back chronological.
	post := func(date, debitAccount, creditAccount, amount string) {
		t.Helper()
		_, err := svc.PostJournalEntry(context.Background(), companyID, nil, PostJournalRequest{
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
	post("2026-08-12", expense.ID.String(), cash.ID.String(), "200")
	post("2026-08-10", cash.ID.String(), revenue.ID.String(), "500")

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	report, err := svc.AccountReport(context.Background(), cash.ID.String(), from, to)
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}

	if report.OpeningBalance != "1000" || report.TotalDebit != "500" || report.TotalCredit != "200" {
		t.Fatalf("unexpected totals: opening=%s debit=%s credit=%s",
			report.OpeningBalance, report.TotalDebit, report.TotalCredit)
	}
	if report.ClosingBalance != "1300" {
		t.Fatalf("expected closing 1300, got %s", report.ClosingBalance)
	}
	if len(report.Entries) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(report.Entries))
	}
	if report.Entries[0].Date != "2026-08-10" || report.Entries[0].BalanceAfter != "1500" {
		t.Fatalf("first movement wrong: %+v", report.Entries[0])
	}
	if report.Entries[1].Date != "2026-08-12" || report.Entries[1].BalanceAfter != "1300" {
		t.Fatalf("second movement wrong: %+v", report.Entries[1])
	}
}

func TestAccountReportRejectsGroup(t *testing.T) {
	svc, accountRepo, _, _ := newLedgerFixture()
	companyID := uuid.New()
	assets := seedAccount(t, accountRepo, companyID, "1", model.AccountTypeAsset, model.BalanceTypeDebit, true, "0")

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.AccountReport(context.Background(), assets.ID.String(), from, from.AddDate(0, 1, 0))
	if !errors.Is(err, ErrPostingToGroup) {
		t.Fatalf("expected ErrPostingToGroup, got %v", err)
	}
}
