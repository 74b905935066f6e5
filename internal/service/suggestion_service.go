package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/ledger"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// Suggestion severity levels
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
)

type Suggestion struct {
	Kind       string `json:"kind"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	EntityType string `json:"entity_type,omitempty"`
	EntityID   string `json:"entity_id,omitempty"`
}

type SuggestionService interface {
	// Suggest scans the company's current state and returns actionable
	// findings: overdue recurring categories, overdue milestones, and
	// ledger accounts whose balance runs against their normal side.
	Suggest(ctx context.Context, companyID uuid.UUID) ([]Suggestion, error)
}

type suggestionService struct {
	categoryRepo repository.CategoryRepository
	projectRepo  repository.ProjectRepository
	accountRepo  repository.AccountRepository
	journalRepo  repository.JournalRepository
	now          func() time.Time
}

func NewSuggestionService(
	categoryRepo repository.CategoryRepository,
	projectRepo repository.ProjectRepository,
	accountRepo repository.AccountRepository,
	journalRepo repository.JournalRepository,
) SuggestionService {
	return &suggestionService{
		categoryRepo: categoryRepo,
		projectRepo:  projectRepo,
		accountRepo:  accountRepo,
		journalRepo:  journalRepo,
		now:          time.Now,
	}
}

func (s *suggestionService) Suggest(ctx context.Context, companyID uuid.UUID) ([]Suggestion, error) {
	asOf := s.now()
	suggestions := make([]Suggestion, 0)

	dueCategories, err := s.categoryRepo.ListDueRecurring(ctx, companyID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to list due categories: %w", err)
	}
	for i := range dueCategories {
		c := &dueCategories[i]
		suggestions = append(suggestions, Suggestion{
			Kind:       "recurring_category_due",
			Severity:   SeverityWarning,
			Message:    fmt.Sprintf("Category '%s' has a recurring project due on %s that has not been created yet", c.Name, c.RecurrenceDueDate.Format("2006-01-02")),
			EntityType: "category",
			EntityID:   c.ID.String(),
		})
	}

	overdue, err := s.projectRepo.CountOverdueMilestones(ctx, companyID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to count overdue milestones: %w", err)
	}
	if overdue > 0 {
		suggestions = append(suggestions, Suggestion{
			Kind:     "milestones_overdue",
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("%d planned milestone(s) are past their due date", overdue),
		})
	}

	contra, err := s.contraBalanceAccounts(ctx, companyID, asOf)
	if err != nil {
		return nil, err
	}
	suggestions = append(suggestions, contra...)

	return suggestions, nil
}

// contraBalanceAccounts flags leaf accounts whose closing balance has the
// opposite sign of their normal side, e.g. an asset account driven negative.
func (s *suggestionService) contraBalanceAccounts(ctx context.Context, companyID uuid.UUID, asOf time.Time) ([]Suggestion, error) {
	accounts, err := s.accountRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	var suggestions []Suggestion
	for i := range accounts {
		account := &accounts[i]
		if account.IsGroup {
			continue
		}

		lines, err := s.journalRepo.ListMovements(ctx, account.ID, time.Time{}, asOf)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch movements for %s: %w", account.Code, err)
		}
		if len(lines) == 0 && account.OpeningBalance.IsZero() {
			continue
		}

		movements := make([]ledger.Movement, 0, len(lines))
		for j := range lines {
			movements = append(movements, ledger.Movement{
				ID:     lines[j].ID,
				Date:   lines[j].CreatedAt,
				Debit:  lines[j].Debit,
				Credit: lines[j].Credit,
				Seq:    lines[j].Seq,
			})
		}
		report, err := ledger.ComputeReport(account.OpeningBalance, movements)
		if err != nil {
			return nil, fmt.Errorf("failed to compute balance for %s: %w", account.Code, err)
		}

		// Running balances accumulate on the debit side; a credit-normal
		// account is healthy when its debit-side closing is negative or zero.
		closing := report.Closing
		against := (account.BalanceType == model.BalanceTypeDebit && closing.IsNegative()) ||
			(account.BalanceType == model.BalanceTypeCredit && closing.IsPositive())
		if against {
			suggestions = append(suggestions, Suggestion{
				Kind:       "contra_balance",
				Severity:   SeverityInfo,
				Message:    fmt.Sprintf("Account %s '%s' carries a balance against its normal %s side", account.Code, account.Name, account.BalanceType),
				EntityType: "account",
				EntityID:   account.ID.String(),
			})
		}
	}
	return suggestions, nil
}
