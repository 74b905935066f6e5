package service

import (
	"context"
	"errors"
	"testing"

	"backend/internal/authz"
	"backend/internal/model"

	"github.com/google/uuid"
)

func newRoleFixture() (RoleService, *memRoleRepo, *memMembershipRepo, *memAuditRepo, *[]string) {
	roleRepo := newMemRoleRepo()
	membershipRepo := newMemMembershipRepo()
	auditRepo := &memAuditRepo{}
	invalidated := []string{}
	svc := NewRoleService(roleRepo, membershipRepo, auditRepo, memTxManager{}, func(roleID string) {
		invalidated = append(invalidated, roleID)
	})
	return svc, roleRepo, membershipRepo, auditRepo, &invalidated
}

func TestCreateRoleDropsUnknownGrants(t *testing.T) {
	svc, _, _, _, _ := newRoleFixture()
	companyID := uuid.New()

	role, err := svc.CreateRole(context.Background(), companyID, nil, CreateRoleRequest{
		Name: "accountant",
		Grants: authz.GrantMap{
			"ledger":  {"read": true, "write": true},
			"nosuch":  {"read": true},
			"journal": {"post": false},
		},
	})
	if err != nil {
		t.Fatalf("create role failed: %v", err)
	}

	if !role.Grants.Has("ledger", "read") || !role.Grants.Has("ledger", "write") {
		t.Fatalf("expected ledger grants to survive, got %v", role.Grants)
	}
	if _, ok := role.Grants["nosuch"]; ok {
		t.Fatalf("expected unknown module to be dropped")
	}
	if _, ok := role.Grants["journal"]; ok {
		t.Fatalf("expected false-only module to be pruned, got %v", role.Grants)
	}
}

func TestDeleteRoleBlockedWhileAssigned(t *testing.T) {
	svc, roleRepo, membershipRepo, _, _ := newRoleFixture()
	companyID := uuid.New()

	role := &model.Role{CompanyID: companyID, Name: "temp", Grants: authz.GrantMap{}}
	if err := roleRepo.Create(context.Background(), role); err != nil {
		t.Fatalf("seed role: %v", err)
	}
	_ = membershipRepo.Create(context.Background(), &model.Membership{
		UserID:    uuid.New(),
		CompanyID: companyID,
		RoleID:    role.ID,
		IsActive:  true,
	})

	err := svc.DeleteRole(context.Background(), role.ID.String(), nil)
	if !errors.Is(err, ErrRoleInUse) {
		t.Fatalf("expected ErrRoleInUse, got %v", err)
	}
	if _, err := roleRepo.FindByID(context.Background(), role.ID); err != nil {
		t.Fatalf("role must survive a blocked delete")
	}
}

func TestDeleteRoleRefusesSystemRole(t *testing.T) {
	svc, roleRepo, _, _, _ := newRoleFixture()

	role := &model.Role{CompanyID: uuid.New(), Name: "admin", IsSystem: true, Grants: authz.FullGrants()}
	_ = roleRepo.Create(context.Background(), role)

	err := svc.DeleteRole(context.Background(), role.ID.String(), nil)
	if !errors.Is(err, ErrSystemRole) {
		t.Fatalf("expected ErrSystemRole, got %v", err)
	}
}

func TestDeleteRoleSucceedsAndInvalidatesCache(t *testing.T) {
	svc, roleRepo, _, auditRepo, invalidated := newRoleFixture()
	companyID := uuid.New()

	role := &model.Role{CompanyID: companyID, Name: "unused", Grants: authz.GrantMap{}}
	_ = roleRepo.Create(context.Background(), role)

	if err := svc.DeleteRole(context.Background(), role.ID.String(), nil); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := roleRepo.FindByID(context.Background(), role.ID); err == nil {
		t.Fatalf("expected role to be gone")
	}
	if len(*invalidated) != 1 || (*invalidated)[0] != role.ID.String() {
		t.Fatalf("expected cache invalidation for %s, got %v", role.ID, *invalidated)
	}

	found := false
	for _, action := range auditRepo.actions() {
		if action == model.ActionDeleteRole {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a delete audit entry, got %v", auditRepo.actions())
	}
}

func TestUpdateRoleGrantsInvalidatesCache(t *testing.T) {
	svc, roleRepo, _, _, invalidated := newRoleFixture()

	role := &model.Role{CompanyID: uuid.New(), Name: "staff", Grants: authz.GrantsFor("crm.read")}
	_ = roleRepo.Create(context.Background(), role)

	updated, err := svc.UpdateRoleGrants(context.Background(), role.ID.String(), nil, UpdateRoleGrantsRequest{
		Grants: authz.GrantMap{"crm": {"read": true, "write": true}},
	})
	if err != nil {
		t.Fatalf("update grants failed: %v", err)
	}
	if !updated.Grants.Has("crm", "write") {
		t.Fatalf("expected crm.write after update")
	}
	if len(*invalidated) == 0 {
		t.Fatalf("expected grant cache invalidation")
	}
}

func TestUpdateRoleRefusesRenamingSystemRole(t *testing.T) {
	svc, roleRepo, _, _, _ := newRoleFixture()

	role := &model.Role{CompanyID: uuid.New(), Name: "admin", IsSystem: true, Grants: authz.FullGrants()}
	_ = roleRepo.Create(context.Background(), role)

	_, err := svc.UpdateRole(context.Background(), role.ID.String(), nil, UpdateRoleRequest{Name: "superuser"})
	if !errors.Is(err, ErrSystemRole) {
		t.Fatalf("expected ErrSystemRole on rename, got %v", err)
	}
}
