package service

import (
	"context"
	"fmt"

	"backend/internal/authz"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateRoleRequest struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Grants      authz.GrantMap `json:"grants"`
}

type UpdateRoleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateRoleGrantsRequest struct {
	Grants authz.GrantMap `json:"grants" binding:"required"`
}

type RoleResponse struct {
	ID          string         `json:"id"`
	CompanyID   string         `json:"company_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	IsSystem    bool           `json:"is_system"`
	Grants      authz.GrantMap `json:"grants"`
	CreatedAt   string         `json:"created_at"`
}

// --- Interface ---

type RoleService interface {
	ListRoles(ctx context.Context, companyID uuid.UUID) ([]RoleResponse, error)
	GetRole(ctx context.Context, id string) (*RoleResponse, error)
	CreateRole(ctx context.Context, companyID uuid.UUID, actorID *uuid.UUID, req CreateRoleRequest) (*RoleResponse, error)
	UpdateRole(ctx context.Context, id string, actorID *uuid.UUID, req UpdateRoleRequest) (*RoleResponse, error)
	UpdateRoleGrants(ctx context.Context, id string, actorID *uuid.UUID, req UpdateRoleGrantsRequest) (*RoleResponse, error)
	DeleteRole(ctx context.Context, id string, actorID *uuid.UUID) error
	ListCatalog(ctx context.Context) []authz.Permission
}

// GrantCacheInvalidator lets the service drop cached grants after mutations.
// The auth middleware provides the concrete implementation.
type GrantCacheInvalidator func(roleID string)

type roleService struct {
	roleRepo        repository.RoleRepository
	membershipRepo  repository.MembershipRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
	invalidateCache GrantCacheInvalidator
}

func NewRoleService(
	roleRepo repository.RoleRepository,
	membershipRepo repository.MembershipRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	invalidateCache GrantCacheInvalidator,
) RoleService {
	if invalidateCache == nil {
		invalidateCache = func(string) {}
	}
	return &roleService{
		roleRepo:        roleRepo,
		membershipRepo:  membershipRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
		invalidateCache: invalidateCache,
	}
}

// --- Implementation ---

func (s *roleService) ListRoles(ctx context.Context, companyID uuid.UUID) ([]RoleResponse, error) {
	roles, err := s.roleRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %w", err)
	}

	res := make([]RoleResponse, 0, len(roles))
	for i := range roles {
		res = append(res, toRoleResponse(&roles[i]))
	}
	return res, nil
}

func (s *roleService) GetRole(ctx context.Context, id string) (*RoleResponse, error) {
	roleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid role id: %w", err)
	}

	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("role not found: %w", err)
	}

	resp := toRoleResponse(role)
	return &resp, nil
}

func (s *roleService) CreateRole(ctx context.Context, companyID uuid.UUID, actorID *uuid.UUID, req CreateRoleRequest) (*RoleResponse, error) {
	grants := sanitizeGrants(req.Grants)

	role := &model.Role{
		CompanyID:   companyID,
		Name:        req.Name,
		Description: req.Description,
		IsSystem:    false,
		Grants:      grants,
	}

	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	s.audit(ctx, &companyID, actorID, model.ActionCreateRole, role.ID.String(), role.Name)

	resp := toRoleResponse(role)
	return &resp, nil
}

func (s *roleService) UpdateRole(ctx context.Context, id string, actorID *uuid.UUID, req UpdateRoleRequest) (*RoleResponse, error) {
	roleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid role id: %w", err)
	}

	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("role not found: %w", err)
	}

	if role.IsSystem && role.Name != req.Name {
		return nil, fmt.Errorf("cannot rename system role '%s': %w", role.Name, ErrSystemRole)
	}

	role.Name = req.Name
	role.Description = req.Description

	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	s.audit(ctx, &role.CompanyID, actorID, model.ActionUpdateRole, role.ID.String(), role.Name)

	resp := toRoleResponse(role)
	return &resp, nil
}

func (s *roleService) UpdateRoleGrants(ctx context.Context, id string, actorID *uuid.UUID, req UpdateRoleGrantsRequest) (*RoleResponse, error) {
	roleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid role id: %w", err)
	}

	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("role not found: %w", err)
	}

	role.Grants = sanitizeGrants(req.Grants)

	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to update grants: %w", err)
	}

	// Drop cached grants so enforcement picks up the change immediately.
	s.invalidateCache(role.ID.String())

	s.audit(ctx, &role.CompanyID, actorID, model.ActionUpdateGrants, role.ID.String(), role.Name)

	resp := toRoleResponse(role)
	return &resp, nil
}

// DeleteRole removes a non-system role. The membership count check and the
// delete run inside one transaction so a membership assigned between the
// two cannot slip through.
func (s *roleService) DeleteRole(ctx context.Context, id string, actorID *uuid.UUID) error {
	roleID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid role id: %w", err)
	}

	var deleted *model.Role
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		role, err := s.roleRepo.FindByID(txCtx, roleID)
		if err != nil {
			return fmt.Errorf("role not found: %w", err)
		}

		if role.IsSystem {
			return fmt.Errorf("cannot delete system role '%s': %w", role.Name, ErrSystemRole)
		}

		count, err := s.membershipRepo.CountByRole(txCtx, roleID)
		if err != nil {
			return fmt.Errorf("failed to count memberships: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("role '%s' has %d memberships: %w", role.Name, count, ErrRoleInUse)
		}

		if err := s.roleRepo.Delete(txCtx, roleID); err != nil {
			return fmt.Errorf("failed to delete role: %w", err)
		}

		deleted = role
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateCache(roleID.String())
	s.audit(ctx, &deleted.CompanyID, actorID, model.ActionDeleteRole, roleID.String(), deleted.Name)
	return nil
}

func (s *roleService) ListCatalog(ctx context.Context) []authz.Permission {
	return authz.Catalog()
}

// --- Helpers ---

// sanitizeGrants drops unknown catalog entries and re-applies grant/revoke
// through GrantMap so stored maps stay sparse and pruned.
func sanitizeGrants(in authz.GrantMap) authz.GrantMap {
	out := authz.GrantMap{}
	for module, actions := range in {
		for action, allowed := range actions {
			if !allowed || !authz.InCatalog(module, action) {
				continue
			}
			out.Grant(module, action)
		}
	}
	return out
}

func (s *roleService) audit(ctx context.Context, companyID, actorID *uuid.UUID, action, entityID, entityName string) {
	// Audit writes are best-effort; they never fail the business operation.
	_ = s.auditRepo.Create(ctx, &model.AuditLog{
		CompanyID:  companyID,
		UserID:     actorID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
	})
}

func toRoleResponse(r *model.Role) RoleResponse {
	return RoleResponse{
		ID:          r.ID.String(),
		CompanyID:   r.CompanyID.String(),
		Name:        r.Name,
		Description: r.Description,
		IsSystem:    r.IsSystem,
		Grants:      r.Grants,
		CreatedAt:   r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
