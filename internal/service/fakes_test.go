package service

import (
	"context"
	"errors"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// In-memory stores backing the service tests. Each implements just enough
// of its repository interface for the scenarios under test.

type memTxManager struct{}

func (memTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// --- roles ---

type memRoleRepo struct {
	roles map[uuid.UUID]*model.Role
}

func newMemRoleRepo() *memRoleRepo {
	return &memRoleRepo{roles: map[uuid.UUID]*model.Role{}}
}

func (m *memRoleRepo) Create(_ context.Context, role *model.Role) error {
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	role.CreatedAt = time.Now()
	m.roles[role.ID] = role
	return nil
}

func (m *memRoleRepo) Update(_ context.Context, role *model.Role) error {
	m.roles[role.ID] = role
	return nil
}

func (m *memRoleRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.roles, id)
	return nil
}

func (m *memRoleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Role, error) {
	if r, ok := m.roles[id]; ok {
		return r, nil
	}
	return nil, errors.New("not found")
}

func (m *memRoleRepo) FindByName(_ context.Context, companyID uuid.UUID, name string) (*model.Role, error) {
	for _, r := range m.roles {
		if r.CompanyID == companyID && r.Name == name {
			return r, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *memRoleRepo) ListByCompany(_ context.Context, companyID uuid.UUID) ([]model.Role, error) {
	out := []model.Role{}
	for _, r := range m.roles {
		if r.CompanyID == companyID {
			out = append(out, *r)
		}
	}
	return out, nil
}

// --- memberships ---

type memMembershipRepo struct {
	memberships map[uuid.UUID]*model.Membership
}

func newMemMembershipRepo() *memMembershipRepo {
	return &memMembershipRepo{memberships: map[uuid.UUID]*model.Membership{}}
}

func (m *memMembershipRepo) Create(_ context.Context, mem *model.Membership) error {
	if mem.ID == uuid.Nil {
		mem.ID = uuid.New()
	}
	m.memberships[mem.ID] = mem
	return nil
}

func (m *memMembershipRepo) Update(_ context.Context, mem *model.Membership) error {
	m.memberships[mem.ID] = mem
	return nil
}

func (m *memMembershipRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.memberships, id)
	return nil
}

func (m *memMembershipRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Membership, error) {
	if mem, ok := m.memberships[id]; ok {
		return mem, nil
	}
	return nil, errors.New("not found")
}

func (m *memMembershipRepo) FindByUserAndCompany(_ context.Context, userID, companyID uuid.UUID) (*model.Membership, error) {
	for _, mem := range m.memberships {
		if mem.UserID == userID && mem.CompanyID == companyID {
			return mem, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *memMembershipRepo) ListByCompany(_ context.Context, companyID uuid.UUID) ([]model.Membership, error) {
	out := []model.Membership{}
	for _, mem := range m.memberships {
		if mem.CompanyID == companyID {
			out = append(out, *mem)
		}
	}
	return out, nil
}

func (m *memMembershipRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Membership, error) {
	out := []model.Membership{}
	for _, mem := range m.memberships {
		if mem.UserID == userID {
			out = append(out, *mem)
		}
	}
	return out, nil
}

func (m *memMembershipRepo) CountByRole(_ context.Context, roleID uuid.UUID) (int64, error) {
	var n int64
	for _, mem := range m.memberships {
		if mem.RoleID == roleID {
			n++
		}
	}
	return n, nil
}

// --- audit ---

type memAuditRepo struct {
	entries []model.AuditLog
}

func (m *memAuditRepo) Create(_ context.Context, entry *model.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memAuditRepo) ListByCompany(_ context.Context, companyID uuid.UUID, offset, limit int) ([]model.AuditLog, int64, error) {
	out := []model.AuditLog{}
	for _, e := range m.entries {
		if e.CompanyID != nil && *e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memAuditRepo) actions() []string {
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

// --- categories ---

type memCategoryRepo struct {
	categories map[uuid.UUID]*model.ProjectCategory
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{categories: map[uuid.UUID]*model.ProjectCategory{}}
}

func (m *memCategoryRepo) Create(_ context.Context, c *model.ProjectCategory) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	m.categories[c.ID] = c
	return nil
}

func (m *memCategoryRepo) Update(_ context.Context, c *model.ProjectCategory) error {
	m.categories[c.ID] = c
	return nil
}

func (m *memCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.categories, id)
	return nil
}

func (m *memCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ProjectCategory, error) {
	if c, ok := m.categories[id]; ok {
		return c, nil
	}
	return nil, errors.New("not found")
}

func (m *memCategoryRepo) ListByCompany(_ context.Context, companyID uuid.UUID) ([]model.ProjectCategory, error) {
	out := []model.ProjectCategory{}
	for _, c := range m.categories {
		if c.CompanyID == companyID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memCategoryRepo) ListDueRecurring(_ context.Context, companyID uuid.UUID, asOf time.Time) ([]model.ProjectCategory, error) {
	out := []model.ProjectCategory{}
	for _, c := range m.categories {
		if c.CompanyID == companyID && c.IsRecurring && c.RecurrenceDueDate != nil && !c.RecurrenceDueDate.After(asOf) {
			out = append(out, *c)
		}
	}
	return out, nil
}

// --- projects ---

type memProjectRepo struct {
	projects   map[uuid.UUID]*model.Project
	milestones map[uuid.UUID]*model.Milestone
}

func newMemProjectRepo() *memProjectRepo {
	return &memProjectRepo{
		projects:   map[uuid.UUID]*model.Project{},
		milestones: map[uuid.UUID]*model.Milestone{},
	}
}

func (m *memProjectRepo) Create(_ context.Context, p *model.Project) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	m.projects[p.ID] = p
	return nil
}

func (m *memProjectRepo) Update(_ context.Context, p *model.Project) error {
	m.projects[p.ID] = p
	return nil
}

func (m *memProjectRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.projects, id)
	return nil
}

func (m *memProjectRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Project, error) {
	if p, ok := m.projects[id]; ok {
		return p, nil
	}
	return nil, errors.New("not found")
}

func (m *memProjectRepo) ListByCompany(_ context.Context, companyID uuid.UUID, offset, limit int) ([]model.Project, int64, error) {
	out := []model.Project{}
	for _, p := range m.projects {
		if p.CompanyID == companyID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memProjectRepo) CountByStatus(_ context.Context, companyID uuid.UUID, status string) (int64, error) {
	var n int64
	for _, p := range m.projects {
		if p.CompanyID == companyID && p.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *memProjectRepo) CreateMilestone(_ context.Context, ms *model.Milestone) error {
	if ms.ID == uuid.Nil {
		ms.ID = uuid.New()
	}
	m.milestones[ms.ID] = ms
	return nil
}

func (m *memProjectRepo) UpdateMilestone(_ context.Context, ms *model.Milestone) error {
	m.milestones[ms.ID] = ms
	return nil
}

func (m *memProjectRepo) DeleteMilestone(_ context.Context, id uuid.UUID) error {
	delete(m.milestones, id)
	return nil
}

func (m *memProjectRepo) FindMilestoneByID(_ context.Context, id uuid.UUID) (*model.Milestone, error) {
	if ms, ok := m.milestones[id]; ok {
		return ms, nil
	}
	return nil, errors.New("not found")
}

func (m *memProjectRepo) ListMilestones(_ context.Context, projectID uuid.UUID) ([]model.Milestone, error) {
	out := []model.Milestone{}
	for _, ms := range m.milestones {
		if ms.ProjectID == projectID {
			out = append(out, *ms)
		}
	}
	return out, nil
}

func (m *memProjectRepo) CountOverdueMilestones(_ context.Context, companyID uuid.UUID, asOf time.Time) (int64, error) {
	var n int64
	for _, ms := range m.milestones {
		p, ok := m.projects[ms.ProjectID]
		if !ok || p.CompanyID != companyID {
			continue
		}
		if ms.Status == model.MilestonePlanned && ms.DueDate != nil && ms.DueDate.Before(asOf) {
			n++
		}
	}
	return n, nil
}

// --- accounts ---

type memAccountRepo struct {
	accounts map[uuid.UUID]*model.LedgerAccount
	journal  *memJournalRepo
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: map[uuid.UUID]*model.LedgerAccount{}}
}

func (m *memAccountRepo) Create(_ context.Context, a *model.LedgerAccount) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	m.accounts[a.ID] = a
	return nil
}

func (m *memAccountRepo) Update(_ context.Context, a *model.LedgerAccount) error {
	m.accounts[a.ID] = a
	return nil
}

func (m *memAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*model.LedgerAccount, error) {
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return nil, errors.New("not found")
}

func (m *memAccountRepo) FindByCode(_ context.Context, companyID uuid.UUID, code string) (*model.LedgerAccount, error) {
	for _, a := range m.accounts {
		if a.CompanyID == companyID && a.Code == code {
			return a, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *memAccountRepo) ListByCompany(_ context.Context, companyID uuid.UUID) ([]model.LedgerAccount, error) {
	out := []model.LedgerAccount{}
	for _, a := range m.accounts {
		if a.CompanyID == companyID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memAccountRepo) HasChildren(_ context.Context, id uuid.UUID) (bool, error) {
	for _, a := range m.accounts {
		if a.ParentID != nil && *a.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAccountRepo) HasPostings(_ context.Context, id uuid.UUID) (bool, error) {
	if m.journal == nil {
		return false, nil
	}
	for _, e := range m.journal.entries {
		for _, line := range e.Lines {
			if line.AccountID == id {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *memAccountRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.accounts, id)
	return nil
}

// --- journal ---

type memJournalRepo struct {
	entries  map[uuid.UUID]*model.JournalEntry
	accounts *memAccountRepo
	nextSeq  int64
}

func newMemJournalRepo(accounts *memAccountRepo) *memJournalRepo {
	j := &memJournalRepo{entries: map[uuid.UUID]*model.JournalEntry{}, accounts: accounts}
	if accounts != nil {
		accounts.journal = j
	}
	return j
}

func (m *memJournalRepo) CreateEntry(_ context.Context, entry *model.JournalEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	for i := range entry.Lines {
		if entry.Lines[i].ID == uuid.Nil {
			entry.Lines[i].ID = uuid.New()
		}
		entry.Lines[i].EntryID = entry.ID
		entry.Lines[i].CreatedAt = entry.CreatedAt
		m.nextSeq++
		entry.Lines[i].Seq = m.nextSeq
	}
	m.entries[entry.ID] = entry
	return nil
}

func (m *memJournalRepo) FindEntryByID(_ context.Context, id uuid.UUID) (*model.JournalEntry, error) {
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return nil, errors.New("not found")
}

func (m *memJournalRepo) ListEntries(_ context.Context, companyID uuid.UUID, offset, limit int) ([]model.JournalEntry, int64, error) {
	out := []model.JournalEntry{}
	for _, e := range m.entries {
		if e.CompanyID == companyID {
			out = append(out, *e)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memJournalRepo) CountEntries(_ context.Context, companyID uuid.UUID) (int64, error) {
	var n int64
	for _, e := range m.entries {
		if e.CompanyID == companyID {
			n++
		}
	}
	return n, nil
}

func (m *memJournalRepo) ListMovements(_ context.Context, accountID uuid.UUID, from, to time.Time) ([]model.JournalLine, error) {
	out := []model.JournalLine{}
	for _, e := range m.entries {
		if e.EntryDate.Before(from) || e.EntryDate.After(to) {
			continue
		}
		for _, line := range e.Lines {
			if line.AccountID == accountID {
				out = append(out, line)
			}
		}
	}
	return out, nil
}

func (m *memJournalRepo) SumByAccountType(_ context.Context, companyID uuid.UUID, accountType string, from, to time.Time) (string, string, error) {
	debit := decimal.Zero
	credit := decimal.Zero
	for _, e := range m.entries {
		if e.CompanyID != companyID || e.EntryDate.Before(from) || e.EntryDate.After(to) {
			continue
		}
		for _, line := range e.Lines {
			account, ok := m.accounts.accounts[line.AccountID]
			if !ok || account.Type != accountType {
				continue
			}
			debit = debit.Add(line.Debit)
			credit = credit.Add(line.Credit)
		}
	}
	return debit.String(), credit.String(), nil
}

// --- users ---

type memUserRepo struct {
	users  map[uuid.UUID]*model.User
	tokens map[string]*model.RefreshToken
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		users:  map[uuid.UUID]*model.User{},
		tokens: map[string]*model.RefreshToken{},
	}
}

func (m *memUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	m.users[u.ID] = u
	return nil
}

func (m *memUserRepo) Update(_ context.Context, u *model.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.users, id)
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *memUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	out := []model.User{}
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (m *memUserRepo) SaveRefreshToken(_ context.Context, token *model.RefreshToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	m.tokens[token.Token] = token
	return nil
}

func (m *memUserRepo) GetRefreshToken(_ context.Context, token string) (*model.RefreshToken, error) {
	if t, ok := m.tokens[token]; ok {
		return t, nil
	}
	return nil, errors.New("not found")
}

func (m *memUserRepo) DeleteRefreshToken(_ context.Context, token string) error {
	delete(m.tokens, token)
	return nil
}

func (m *memUserRepo) DeleteExpiredRefreshTokens(_ context.Context, now time.Time) error {
	for key, t := range m.tokens {
		if t.ExpiresAt.Before(now) {
			delete(m.tokens, key)
		}
	}
	return nil
}
