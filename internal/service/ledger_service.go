package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/ledger"
	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type SaveAccountRequest struct {
	Code           string `json:"code" binding:"required"`
	Name           string `json:"name" binding:"required"`
	Type           string `json:"type" binding:"required,oneof=asset liability equity income expense"`
	ParentID       string `json:"parent_id"`
	IsGroup        bool   `json:"is_group"`
	BalanceType    string `json:"balance_type" binding:"required,oneof=debit credit"`
	OpeningBalance string `json:"opening_balance"` // Decimal string
}

type AccountResponse struct {
	ID             string  `json:"id"`
	CompanyID      string  `json:"company_id"`
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	ParentID       *string `json:"parent_id"`
	IsGroup        bool    `json:"is_group"`
	BalanceType    string  `json:"balance_type"`
	OpeningBalance string  `json:"opening_balance"`
}

type JournalLineRequest struct {
	AccountID string `json:"account_id" binding:"required"`
	Debit     string `json:"debit"`  // Decimal string, empty means 0
	Credit    string `json:"credit"` // Decimal string, empty means 0
	Memo      string `json:"memo"`
}

type PostJournalRequest struct {
	EntryDate string               `json:"entry_date" binding:"required"` // YYYY-MM-DD
	Narration string               `json:"narration"`
	Lines     []JournalLineRequest `json:"lines" binding:"required,min=2"`
}

type JournalEntryResponse struct {
	ID        string                `json:"id"`
	EntryNo   string                `json:"entry_no"`
	EntryDate string                `json:"entry_date"`
	Narration string                `json:"narration"`
	Lines     []JournalLineResponse `json:"lines"`
	CreatedAt string                `json:"created_at"`
}

type JournalLineResponse struct {
	ID          string `json:"id"`
	AccountID   string `json:"account_id"`
	AccountCode string `json:"account_code,omitempty"`
	AccountName string `json:"account_name,omitempty"`
	Seq         int64  `json:"seq"`
	Debit       string `json:"debit"`
	Credit      string `json:"credit"`
	Memo        string `json:"memo"`
}

type LedgerReportResponse struct {
	AccountID      string              `json:"account_id"`
	AccountCode    string              `json:"account_code"`
	AccountName    string              `json:"account_name"`
	BalanceType    string              `json:"balance_type"`
	OpeningBalance string              `json:"opening_balance"`
	TotalDebit     string              `json:"total_debit"`
	TotalCredit    string              `json:"total_credit"`
	ClosingBalance string              `json:"closing_balance"`
	Entries        []LedgerEntryDetail `json:"entries"`
}

type LedgerEntryDetail struct {
	MovementID   string `json:"movement_id"`
	EntryNo      string `json:"entry_no"`
	Date         string `json:"date"`
	Debit        string `json:"debit"`
	Credit       string `json:"credit"`
	Memo         string `json:"memo"`
	BalanceAfter string `json:"balance_after"`
}

// --- Interface ---

type LedgerService interface {
	ListAccounts(ctx context.Context, companyID uuid.UUID) ([]AccountResponse, error)
	GetAccount(ctx context.Context, id string) (*AccountResponse, error)
	CreateAccount(ctx context.Context, companyID uuid.UUID, actorID *uuid.UUID, req SaveAccountRequest) (*AccountResponse, error)
	UpdateAccount(ctx context.Context, id string, req SaveAccountRequest) (*AccountResponse, error)
	DeleteAccount(ctx context.Context, id string) error

	PostJournalEntry(ctx context.Context, companyID uuid.UUID, actorID *uuid.UUID, req PostJournalRequest) (*JournalEntryResponse, error)
	GetJournalEntry(ctx context.Context, id string) (*JournalEntryResponse, error)
	ListJournalEntries(ctx context.Context, companyID uuid.UUID, page, limit int) ([]JournalEntryResponse, int64, error)

	// AccountReport fetches the account's movements in a date range
	// (unordered from the store) and accumulates them into a running
	// balance report.
	AccountReport(ctx context.Context, accountID string, from, to time.Time) (*LedgerReportResponse, error)
}

type ledgerService struct {
	accountRepo repository.AccountRepository
	journalRepo repository.JournalRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	hub         *ws.Hub
}

func NewLedgerService(
	accountRepo repository.AccountRepository,
	journalRepo repository.JournalRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) LedgerService {
	return &ledgerService{
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		hub:         hub,
	}
}

// --- Accounts ---

func (s *ledgerService) ListAccounts(ctx context.Context, companyID uuid.UUID) ([]AccountResponse, error) {
	accounts, err := s.accountRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	res := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		res = append(res, toAccountResponse(&accounts[i]))
	}
	return res, nil
}

func (s *ledgerService) GetAccount(ctx context.Context, id string) (*AccountResponse, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid account id: %w", err)
	}
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, errors.New("account not found")
	}
	resp := toAccountResponse(account)
	return &resp, nil
}

func (s *ledgerService) CreateAccount(ctx context.Context, companyID uuid.UUID, actorID *uuid.UUID, req SaveAccountRequest) (*AccountResponse, error) {
	if _, err := s.accountRepo.FindByCode(ctx, companyID, req.Code); err == nil {
		return nil, fmt.Errorf("account code '%s' already exists", req.Code)
	}

	account := &model.LedgerAccount{
		CompanyID:      companyID,
		Code:           req.Code,
		Name:           req.Name,
		Type:           req.Type,
		IsGroup:        req.IsGroup,
		BalanceType:    req.BalanceType,
		OpeningBalance: decimal.Zero,
	}

	if req.OpeningBalance != "" {
		opening, err := decimal.NewFromString(req.OpeningBalance)
		if err != nil {
			return nil, fmt.Errorf("invalid opening_balance: %w", err)
		}
		account.OpeningBalance = opening
	}

	if req.ParentID != "" {
		parentID, err := uuid.Parse(req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("invalid parent id: %w", err)
		}
		parent, err := s.accountRepo.FindByID(ctx, parentID)
		if err != nil {
			return nil, errors.New("parent account not found")
		}
		if !parent.IsGroup {
			return nil, errors.New("parent account must be a group")
		}
		if parent.CompanyID != companyID {
			return nil, errors.New("parent account belongs to a different company")
		}
		account.ParentID = &parentID
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	_ = s.auditRepo.Create(ctx, &model.AuditLog{
		CompanyID:  &companyID,
		UserID:     actorID,
		Action:     model.ActionCreateAccount,
		EntityID:   account.ID.String(),
		EntityName: account.Code + " " + account.Name,
	})

	resp := toAccountResponse(account)
	return &resp, nil
}

func (s *ledgerService) UpdateAccount(ctx context.Context, id string, req SaveAccountRequest) (*AccountResponse, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid account id: %w", err)
	}
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, errors.New("account not found")
	}

	// Group flag and type are fixed once postings exist.
	if account.IsGroup != req.IsGroup || account.Type != req.Type {
		posted, err := s.accountRepo.HasPostings(ctx, accountID)
		if err != nil {
			return nil, err
		}
		if posted {
			return nil, errors.New("cannot change type or group flag of an account with postings")
		}
	}

	account.Code = req.Code
	account.Name = req.Name
	account.Type = req.Type
	account.IsGroup = req.IsGroup
	account.BalanceType = req.BalanceType
	if req.OpeningBalance != "" {
		opening, err := decimal.NewFromString(req.OpeningBalance)
		if err != nil {
			return nil, fmt.Errorf("invalid opening_balance: %w", err)
		}
		account.OpeningBalance = opening
	}

	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	resp := toAccountResponse(account)
	return &resp, nil
}

func (s *ledgerService) DeleteAccount(ctx context.Context, id string) error {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid account id: %w", err)
	}
	if _, err := s.accountRepo.FindByID(ctx, accountID); err != nil {
		return errors.New("account not found")
	}

	children, err := s.accountRepo.HasChildren(ctx, accountID)
	if err != nil {
		return err
	}
	posted, err := s.accountRepo.HasPostings(ctx, accountID)
	if err != nil {
		return err
	}
	if children || posted {
		return ErrAccountInUse
	}

	return s.accountRepo.Delete(ctx, accountID)
}

// --- Journal ---

// PostJournalEntry validates every line (leaf account, exactly one side
// non-zero, non-negative) and the entry as a whole (debits equal credits)
// inside a single transaction.
func (s *ledgerService) PostJournalEntry(ctx context.Context, companyID uuid.UUID, actorID *uuid.UUID, req PostJournalRequest) (*JournalEntryResponse, error) {
	entryDate, err := time.Parse("2006-01-02", req.EntryDate)
	if err != nil {
		return nil, fmt.Errorf("invalid entry_date, expected YYYY-MM-DD: %w", err)
	}

	lines := make([]model.JournalLine, 0, len(req.Lines))
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero

	for i, lineReq := range req.Lines {
		accountID, err := uuid.Parse(lineReq.AccountID)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid account id: %w", i+1, err)
		}

		debit, err := parseAmount(lineReq.Debit)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid debit: %w", i+1, err)
		}
		credit, err := parseAmount(lineReq.Credit)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid credit: %w", i+1, err)
		}

		if debit.IsNegative() || credit.IsNegative() {
			return nil, fmt.Errorf("line %d: amounts must not be negative", i+1)
		}
		oneSided := (debit.IsZero() && !credit.IsZero()) || (!debit.IsZero() && credit.IsZero())
		if !oneSided {
			return nil, fmt.Errorf("line %d: exactly one of debit or credit must be non-zero", i+1)
		}

		totalDebit = totalDebit.Add(debit)
		totalCredit = totalCredit.Add(credit)

		lines = append(lines, model.JournalLine{
			AccountID: accountID,
			Debit:     debit,
			Credit:    credit,
			Memo:      lineReq.Memo,
		})
	}

	if !totalDebit.Equal(totalCredit) {
		return nil, fmt.Errorf("debits %s != credits %s: %w", totalDebit, totalCredit, ErrUnbalancedEntry)
	}

	var entry *model.JournalEntry
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for i := range lines {
			account, err := s.accountRepo.FindByID(txCtx, lines[i].AccountID)
			if err != nil {
				return fmt.Errorf("line %d: account not found", i+1)
			}
			if account.CompanyID != companyID {
				return fmt.Errorf("line %d: account belongs to a different company", i+1)
			}
			if account.IsGroup {
				return fmt.Errorf("line %d: account '%s': %w", i+1, account.Code, ErrPostingToGroup)
			}
		}

		count, err := s.journalRepo.CountEntries(txCtx, companyID)
		if err != nil {
			return fmt.Errorf("failed to number entry: %w", err)
		}

		entry = &model.JournalEntry{
			CompanyID: companyID,
			EntryNo:   fmt.Sprintf("JE-%06d", count+1),
			EntryDate: entryDate,
			Narration: req.Narration,
			CreatedBy: actorID,
			Lines:     lines,
		}
		if err := s.journalRepo.CreateEntry(txCtx, entry); err != nil {
			return fmt.Errorf("failed to post journal entry: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"entry_no":    entry.EntryNo,
			"entry_date":  req.EntryDate,
			"total_debit": totalDebit.String(),
			"line_count":  len(lines),
		})
		_ = s.auditRepo.Create(txCtx, &model.AuditLog{
			CompanyID:  &companyID,
			UserID:     actorID,
			Action:     model.ActionPostJournal,
			EntityID:   entry.ID.String(),
			EntityName: entry.EntryNo,
			Details:    string(details),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Notify("journal.posted", map[string]string{
			"entry_id": entry.ID.String(),
			"entry_no": entry.EntryNo,
		})
	}

	return s.GetJournalEntry(ctx, entry.ID.String())
}

func (s *ledgerService) GetJournalEntry(ctx context.Context, id string) (*JournalEntryResponse, error) {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid entry id: %w", err)
	}
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, errors.New("journal entry not found")
	}
	resp := toJournalEntryResponse(entry)
	return &resp, nil
}

func (s *ledgerService) ListJournalEntries(ctx context.Context, companyID uuid.UUID, page, limit int) ([]JournalEntryResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	entries, total, err := s.journalRepo.ListEntries(ctx, companyID, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]JournalEntryResponse, 0, len(entries))
	for i := range entries {
		res = append(res, toJournalEntryResponse(&entries[i]))
	}
	return res, total, nil
}

func (s *ledgerService) AccountReport(ctx context.Context, accountID string, from, to time.Time) (*LedgerReportResponse, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return nil, fmt.Errorf("invalid account id: %w", err)
	}

	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("account not found")
	}
	if account.IsGroup {
		return nil, fmt.Errorf("account '%s': %w", account.Code, ErrPostingToGroup)
	}

	lines, err := s.journalRepo.ListMovements(ctx, id, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch movements: %w", err)
	}

	entryDates, entryNos, err := s.entryLookups(ctx, lines)
	if err != nil {
		return nil, err
	}

	movements := make([]ledger.Movement, 0, len(lines))
	for i := range lines {
		movements = append(movements, ledger.Movement{
			ID:      lines[i].ID,
			EntryNo: entryNos[lines[i].EntryID],
			Date:    entryDates[lines[i].EntryID],
			Debit:   lines[i].Debit,
			Credit:  lines[i].Credit,
			Seq:     lines[i].Seq,
			Memo:    lines[i].Memo,
		})
	}

	report, err := ledger.ComputeReport(account.OpeningBalance, movements)
	if err != nil {
		return nil, fmt.Errorf("failed to compute ledger report: %w", err)
	}

	resp := &LedgerReportResponse{
		AccountID:      account.ID.String(),
		AccountCode:    account.Code,
		AccountName:    account.Name,
		BalanceType:    account.BalanceType,
		OpeningBalance: report.Opening.String(),
		TotalDebit:     report.TotalDebit.String(),
		TotalCredit:    report.TotalCredit.String(),
		ClosingBalance: report.Closing.String(),
		Entries:        make([]LedgerEntryDetail, 0, len(report.Entries)),
	}
	for _, e := range report.Entries {
		resp.Entries = append(resp.Entries, LedgerEntryDetail{
			MovementID:   e.ID.String(),
			EntryNo:      e.EntryNo,
			Date:         e.Date.Format("2006-01-02"),
			Debit:        e.Debit.String(),
			Credit:       e.Credit.String(),
			Memo:         e.Memo,
			BalanceAfter: e.BalanceAfter.String(),
		})
	}
	return resp, nil
}

// entryLookups resolves the posting dates and numbers of the entries
// referenced by a set of lines.
func (s *ledgerService) entryLookups(ctx context.Context, lines []model.JournalLine) (map[uuid.UUID]time.Time, map[uuid.UUID]string, error) {
	dates := make(map[uuid.UUID]time.Time)
	nos := make(map[uuid.UUID]string)
	for i := range lines {
		if _, ok := dates[lines[i].EntryID]; ok {
			continue
		}
		entry, err := s.journalRepo.FindEntryByID(ctx, lines[i].EntryID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve entry %s: %w", lines[i].EntryID, err)
		}
		dates[entry.ID] = entry.EntryDate
		nos[entry.ID] = entry.EntryNo
	}
	return dates, nos, nil
}

// --- Helpers ---

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func toAccountResponse(a *model.LedgerAccount) AccountResponse {
	resp := AccountResponse{
		ID:             a.ID.String(),
		CompanyID:      a.CompanyID.String(),
		Code:           a.Code,
		Name:           a.Name,
		Type:           a.Type,
		IsGroup:        a.IsGroup,
		BalanceType:    a.BalanceType,
		OpeningBalance: a.OpeningBalance.String(),
	}
	if a.ParentID != nil {
		id := a.ParentID.String()
		resp.ParentID = &id
	}
	return resp
}

func toJournalEntryResponse(e *model.JournalEntry) JournalEntryResponse {
	resp := JournalEntryResponse{
		ID:        e.ID.String(),
		EntryNo:   e.EntryNo,
		EntryDate: e.EntryDate.Format("2006-01-02"),
		Narration: e.Narration,
		CreatedAt: e.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	for i := range e.Lines {
		line := JournalLineResponse{
			ID:        e.Lines[i].ID.String(),
			AccountID: e.Lines[i].AccountID.String(),
			Seq:       e.Lines[i].Seq,
			Debit:     e.Lines[i].Debit.String(),
			Credit:    e.Lines[i].Credit.String(),
			Memo:      e.Lines[i].Memo,
		}
		if e.Lines[i].Account != nil {
			line.AccountCode = e.Lines[i].Account.Code
			line.AccountName = e.Lines[i].Account.Name
		}
		resp.Lines = append(resp.Lines, line)
	}
	return resp
}
