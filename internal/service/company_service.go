package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/authz"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateCompanyRequest struct {
	Name      string `json:"name" binding:"required"`
	LegalName string `json:"legal_name"`
	TaxCode   string `json:"tax_code"`
	Address   string `json:"address"`
	Currency  string `json:"currency"`
}

type CompanyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	LegalName string `json:"legal_name"`
	TaxCode   string `json:"tax_code"`
	Address   string `json:"address"`
	Currency  string `json:"currency"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

type AssignMembershipRequest struct {
	UserID string `json:"user_id" binding:"required"`
	RoleID string `json:"role_id" binding:"required"`
}

type MembershipResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	CompanyID string `json:"company_id"`
	RoleID    string `json:"role_id"`
	RoleName  string `json:"role_name"`
	IsActive  bool   `json:"is_active"`
}

// --- Interface ---

type CompanyService interface {
	CreateCompany(ctx context.Context, actorID *uuid.UUID, req CreateCompanyRequest) (*CompanyResponse, error)
	GetCompany(ctx context.Context, id string) (*CompanyResponse, error)
	ListCompanies(ctx context.Context, page, limit int) ([]CompanyResponse, int64, error)
	// SetupCompany seeds the three system roles and the default chart of
	// accounts for a freshly created company. Idempotent: existing roles
	// and account codes are left untouched.
	SetupCompany(ctx context.Context, companyID string, actorID *uuid.UUID) error
	AssignMembership(ctx context.Context, companyID string, actorID *uuid.UUID, req AssignMembershipRequest) (*MembershipResponse, error)
	ListMemberships(ctx context.Context, companyID string) ([]MembershipResponse, error)
	DeactivateMembership(ctx context.Context, membershipID string) error
}

type companyService struct {
	companyRepo     repository.CompanyRepository
	roleRepo        repository.RoleRepository
	membershipRepo  repository.MembershipRepository
	accountRepo     repository.AccountRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
	invalidateCache GrantCacheInvalidator
}

func NewCompanyService(
	companyRepo repository.CompanyRepository,
	roleRepo repository.RoleRepository,
	membershipRepo repository.MembershipRepository,
	accountRepo repository.AccountRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	invalidateCache GrantCacheInvalidator,
) CompanyService {
	if invalidateCache == nil {
		invalidateCache = func(string) {}
	}
	return &companyService{
		companyRepo:     companyRepo,
		roleRepo:        roleRepo,
		membershipRepo:  membershipRepo,
		accountRepo:     accountRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
		invalidateCache: invalidateCache,
	}
}

// --- Implementation ---

func (s *companyService) CreateCompany(ctx context.Context, actorID *uuid.UUID, req CreateCompanyRequest) (*CompanyResponse, error) {
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	company := &model.Company{
		Name:      req.Name,
		LegalName: req.LegalName,
		TaxCode:   req.TaxCode,
		Address:   req.Address,
		Currency:  currency,
		IsActive:  true,
	}

	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	s.audit(ctx, &company.ID, actorID, model.ActionCreateCompany, company.ID.String(), company.Name)

	resp := toCompanyResponse(company)
	return &resp, nil
}

func (s *companyService) GetCompany(ctx context.Context, id string) (*CompanyResponse, error) {
	companyID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid company id: %w", err)
	}
	company, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		return nil, errors.New("company not found")
	}
	resp := toCompanyResponse(company)
	return &resp, nil
}

func (s *companyService) ListCompanies(ctx context.Context, page, limit int) ([]CompanyResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	companies, total, err := s.companyRepo.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]CompanyResponse, 0, len(companies))
	for i := range companies {
		res = append(res, toCompanyResponse(&companies[i]))
	}
	return res, total, nil
}

func (s *companyService) SetupCompany(ctx context.Context, companyID string, actorID *uuid.UUID) error {
	id, err := uuid.Parse(companyID)
	if err != nil {
		return fmt.Errorf("invalid company id: %w", err)
	}

	if _, err := s.companyRepo.FindByID(ctx, id); err != nil {
		return errors.New("company not found")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.seedSystemRoles(txCtx, id); err != nil {
			return err
		}
		return s.seedChartOfAccounts(txCtx, id)
	})
	if err != nil {
		return err
	}

	s.audit(ctx, &id, actorID, model.ActionSetupCompany, id.String(), "")
	return nil
}

func (s *companyService) AssignMembership(ctx context.Context, companyID string, actorID *uuid.UUID, req AssignMembershipRequest) (*MembershipResponse, error) {
	cid, err := uuid.Parse(companyID)
	if err != nil {
		return nil, fmt.Errorf("invalid company id: %w", err)
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	roleID, err := uuid.Parse(req.RoleID)
	if err != nil {
		return nil, fmt.Errorf("invalid role id: %w", err)
	}

	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return nil, errors.New("role not found")
	}
	if role.CompanyID != cid {
		return nil, errors.New("role belongs to a different company")
	}

	// One membership per (user, company): re-assigning updates the role.
	membership, err := s.membershipRepo.FindByUserAndCompany(ctx, userID, cid)
	if err == nil {
		membership.RoleID = roleID
		membership.IsActive = true
		if err := s.membershipRepo.Update(ctx, membership); err != nil {
			return nil, fmt.Errorf("failed to update membership: %w", err)
		}
	} else {
		membership = &model.Membership{
			UserID:    userID,
			CompanyID: cid,
			RoleID:    roleID,
			IsActive:  true,
		}
		if err := s.membershipRepo.Create(ctx, membership); err != nil {
			return nil, fmt.Errorf("failed to create membership: %w", err)
		}
	}

	s.invalidateCache(roleID.String())
	s.audit(ctx, &cid, actorID, model.ActionAssignRole, membership.ID.String(), role.Name)

	reloaded, err := s.membershipRepo.FindByID(ctx, membership.ID)
	if err != nil {
		return nil, err
	}
	resp := toMembershipResponse(reloaded)
	return &resp, nil
}

func (s *companyService) ListMemberships(ctx context.Context, companyID string) ([]MembershipResponse, error) {
	cid, err := uuid.Parse(companyID)
	if err != nil {
		return nil, fmt.Errorf("invalid company id: %w", err)
	}
	memberships, err := s.membershipRepo.ListByCompany(ctx, cid)
	if err != nil {
		return nil, err
	}

	res := make([]MembershipResponse, 0, len(memberships))
	for i := range memberships {
		res = append(res, toMembershipResponse(&memberships[i]))
	}
	return res, nil
}

func (s *companyService) DeactivateMembership(ctx context.Context, membershipID string) error {
	id, err := uuid.Parse(membershipID)
	if err != nil {
		return fmt.Errorf("invalid membership id: %w", err)
	}
	membership, err := s.membershipRepo.FindByID(ctx, id)
	if err != nil {
		return errors.New("membership not found")
	}
	membership.IsActive = false
	return s.membershipRepo.Update(ctx, membership)
}

// --- Seeding ---

func (s *companyService) seedSystemRoles(ctx context.Context, companyID uuid.UUID) error {
	roleDefinitions := []struct {
		Name        string
		Description string
		Grants      authz.GrantMap
	}{
		{
			Name:        "admin",
			Description: "Administrator with full access",
			Grants:      authz.FullGrants(),
		},
		{
			Name:        "manager",
			Description: "Manages projects, customers, and the ledger",
			Grants: authz.GrantsFor(
				"dashboard.view",
				"crm.read", "crm.write",
				"projects.read", "projects.write",
				"categories.read", "categories.write",
				"ledger.read", "ledger.write",
				"journal.read", "journal.post",
				"users.read",
				"audit.read",
				"suggestions.read",
			),
		},
		{
			Name:        "staff",
			Description: "Day-to-day read access with project editing",
			Grants: authz.GrantsFor(
				"dashboard.view",
				"crm.read",
				"projects.read", "projects.write",
				"categories.read",
				"ledger.read",
				"journal.read",
				"suggestions.read",
			),
		},
	}

	for _, def := range roleDefinitions {
		if _, err := s.roleRepo.FindByName(ctx, companyID, def.Name); err == nil {
			continue // already seeded
		}
		role := &model.Role{
			CompanyID:   companyID,
			Name:        def.Name,
			Description: def.Description,
			IsSystem:    true,
			Grants:      def.Grants,
		}
		if err := s.roleRepo.Create(ctx, role); err != nil {
			return fmt.Errorf("failed to seed role '%s': %w", def.Name, err)
		}
	}
	return nil
}

// coaSeed describes one chart-of-accounts node. Children reference their
// parent by code, so groups must appear before their members.
type coaSeed struct {
	Code        string
	Name        string
	Type        string
	BalanceType string
	ParentCode  string
	IsGroup     bool
}

var defaultChartOfAccounts = []coaSeed{
	{Code: "1000", Name: "Assets", Type: model.AccountTypeAsset, BalanceType: model.BalanceTypeDebit, IsGroup: true},
	{Code: "1100", Name: "Current Assets", Type: model.AccountTypeAsset, BalanceType: model.BalanceTypeDebit, ParentCode: "1000", IsGroup: true},
	{Code: "1110", Name: "Cash", Type: model.AccountTypeAsset, BalanceType: model.BalanceTypeDebit, ParentCode: "1100"},
	{Code: "1120", Name: "Bank", Type: model.AccountTypeAsset, BalanceType: model.BalanceTypeDebit, ParentCode: "1100"},
	{Code: "1130", Name: "Accounts Receivable", Type: model.AccountTypeAsset, BalanceType: model.BalanceTypeDebit, ParentCode: "1100"},
	{Code: "1200", Name: "Fixed Assets", Type: model.AccountTypeAsset, BalanceType: model.BalanceTypeDebit, ParentCode: "1000", IsGroup: true},
	{Code: "1210", Name: "Equipment", Type: model.AccountTypeAsset, BalanceType: model.BalanceTypeDebit, ParentCode: "1200"},
	{Code: "2000", Name: "Liabilities", Type: model.AccountTypeLiability, BalanceType: model.BalanceTypeCredit, IsGroup: true},
	{Code: "2100", Name: "Accounts Payable", Type: model.AccountTypeLiability, BalanceType: model.BalanceTypeCredit, ParentCode: "2000"},
	{Code: "2200", Name: "Taxes Payable", Type: model.AccountTypeLiability, BalanceType: model.BalanceTypeCredit, ParentCode: "2000"},
	{Code: "3000", Name: "Equity", Type: model.AccountTypeEquity, BalanceType: model.BalanceTypeCredit, IsGroup: true},
	{Code: "3100", Name: "Owner's Capital", Type: model.AccountTypeEquity, BalanceType: model.BalanceTypeCredit, ParentCode: "3000"},
	{Code: "3200", Name: "Retained Earnings", Type: model.AccountTypeEquity, BalanceType: model.BalanceTypeCredit, ParentCode: "3000"},
	{Code: "4000", Name: "Income", Type: model.AccountTypeIncome, BalanceType: model.BalanceTypeCredit, IsGroup: true},
	{Code: "4100", Name: "Service Revenue", Type: model.AccountTypeIncome, BalanceType: model.BalanceTypeCredit, ParentCode: "4000"},
	{Code: "4200", Name: "Other Income", Type: model.AccountTypeIncome, BalanceType: model.BalanceTypeCredit, ParentCode: "4000"},
	{Code: "5000", Name: "Expenses", Type: model.AccountTypeExpense, BalanceType: model.BalanceTypeDebit, IsGroup: true},
	{Code: "5100", Name: "Salaries", Type: model.AccountTypeExpense, BalanceType: model.BalanceTypeDebit, ParentCode: "5000"},
	{Code: "5200", Name: "Rent", Type: model.AccountTypeExpense, BalanceType: model.BalanceTypeDebit, ParentCode: "5000"},
	{Code: "5300", Name: "Utilities", Type: model.AccountTypeExpense, BalanceType: model.BalanceTypeDebit, ParentCode: "5000"},
	{Code: "5400", Name: "Office Supplies", Type: model.AccountTypeExpense, BalanceType: model.BalanceTypeDebit, ParentCode: "5000"},
}

func (s *companyService) seedChartOfAccounts(ctx context.Context, companyID uuid.UUID) error {
	created := make(map[string]uuid.UUID)

	for _, seed := range defaultChartOfAccounts {
		if existing, err := s.accountRepo.FindByCode(ctx, companyID, seed.Code); err == nil {
			created[seed.Code] = existing.ID
			continue
		}

		account := &model.LedgerAccount{
			CompanyID:      companyID,
			Code:           seed.Code,
			Name:           seed.Name,
			Type:           seed.Type,
			IsGroup:        seed.IsGroup,
			BalanceType:    seed.BalanceType,
			OpeningBalance: decimal.Zero,
		}
		if seed.ParentCode != "" {
			parentID, ok := created[seed.ParentCode]
			if !ok {
				return fmt.Errorf("chart of accounts seed: parent code '%s' not created before '%s'", seed.ParentCode, seed.Code)
			}
			account.ParentID = &parentID
		}

		if err := s.accountRepo.Create(ctx, account); err != nil {
			return fmt.Errorf("failed to seed account '%s': %w", seed.Code, err)
		}
		created[seed.Code] = account.ID
	}
	return nil
}

// --- Helpers ---

func (s *companyService) audit(ctx context.Context, companyID, actorID *uuid.UUID, action, entityID, entityName string) {
	_ = s.auditRepo.Create(ctx, &model.AuditLog{
		CompanyID:  companyID,
		UserID:     actorID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
	})
}

func toCompanyResponse(c *model.Company) CompanyResponse {
	return CompanyResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		LegalName: c.LegalName,
		TaxCode:   c.TaxCode,
		Address:   c.Address,
		Currency:  c.Currency,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func toMembershipResponse(m *model.Membership) MembershipResponse {
	resp := MembershipResponse{
		ID:        m.ID.String(),
		UserID:    m.UserID.String(),
		CompanyID: m.CompanyID.String(),
		RoleID:    m.RoleID.String(),
		IsActive:  m.IsActive,
	}
	if m.User != nil {
		resp.Username = m.User.Username
	}
	if m.Role != nil {
		resp.RoleName = m.Role.Name
	}
	return resp
}
