package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
)

func newUserFixture(t *testing.T) (UserService, *memUserRepo, *memMembershipRepo, *model.User) {
	t.Helper()
	userRepo := newMemUserRepo()
	membershipRepo := newMemMembershipRepo()
	svc := NewUserService(userRepo, membershipRepo)

	created, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "harper",
		Email:    "harper@example.com",
		Password: "s3cretpw",
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return svc, userRepo, membershipRepo, userRepo.users[created.ID]
}

func addMembership(t *testing.T, repo *memMembershipRepo, userID uuid.UUID) (companyID, roleID uuid.UUID) {
	t.Helper()
	companyID = uuid.New()
	roleID = uuid.New()
	err := repo.Create(context.Background(), &model.Membership{
		UserID:    userID,
		CompanyID: companyID,
		RoleID:    roleID,
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("seed membership: %v", err)
	}
	return companyID, roleID
}

func TestLoginScopesToRequestedCompany(t *testing.T) {
	svc, _, membershipRepo, user := newUserFixture(t)
	addMembership(t, membershipRepo, user.ID)
	companyB, roleB := addMembership(t, membershipRepo, user.ID)

	pair, err := svc.Login(context.Background(), LoginUserRequest{
		Email:     "harper@example.com",
		Password:  "s3cretpw",
		CompanyID: companyB.String(),
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if pair.CompanyID != companyB.String() || pair.RoleID != roleB.String() {
		t.Fatalf("expected session scoped to the requested company, got company=%s role=%s", pair.CompanyID, pair.RoleID)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _, membershipRepo, user := newUserFixture(t)
	addMembership(t, membershipRepo, user.ID)

	if _, err := svc.Login(context.Background(), LoginUserRequest{
		Email:    "harper@example.com",
		Password: "wrong",
	}); err == nil {
		t.Fatalf("wrong password must be rejected")
	}
}

func TestLoginRejectsForeignCompany(t *testing.T) {
	svc, _, membershipRepo, user := newUserFixture(t)
	addMembership(t, membershipRepo, user.ID)

	if _, err := svc.Login(context.Background(), LoginUserRequest{
		Email:     "harper@example.com",
		Password:  "s3cretpw",
		CompanyID: uuid.New().String(),
	}); err == nil {
		t.Fatalf("login into a company without membership must fail")
	}
}

func TestRefreshKeepsCompanyScope(t *testing.T) {
	svc, _, membershipRepo, user := newUserFixture(t)
	addMembership(t, membershipRepo, user.ID)
	companyB, roleB := addMembership(t, membershipRepo, user.ID)

	pair, err := svc.Login(context.Background(), LoginUserRequest{
		Email:     "harper@example.com",
		Password:  "s3cretpw",
		CompanyID: companyB.String(),
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if refreshed.CompanyID != companyB.String() || refreshed.RoleID != roleB.String() {
		t.Fatalf("refresh must keep the session's company, got company=%s role=%s", refreshed.CompanyID, refreshed.RoleID)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, userRepo, membershipRepo, user := newUserFixture(t)
	addMembership(t, membershipRepo, user.ID)

	pair, err := svc.Login(context.Background(), LoginUserRequest{
		Email:    "harper@example.com",
		Password: "s3cretpw",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if refreshed.RefreshToken == pair.RefreshToken {
		t.Fatalf("refresh must issue a new token")
	}
	if _, ok := userRepo.tokens[pair.RefreshToken]; ok {
		t.Fatalf("the spent refresh token must be deleted")
	}
	if _, err := svc.Refresh(context.Background(), pair.RefreshToken); err == nil {
		t.Fatalf("a spent refresh token must not be reusable")
	}
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	svc, userRepo, membershipRepo, user := newUserFixture(t)
	companyID, _ := addMembership(t, membershipRepo, user.ID)

	_ = userRepo.SaveRefreshToken(context.Background(), &model.RefreshToken{
		UserID:    user.ID,
		CompanyID: companyID,
		Token:     "stale",
		ExpiresAt: time.Now().Add(-time.Hour),
	})

	if _, err := svc.Refresh(context.Background(), "stale"); err == nil {
		t.Fatalf("expired refresh token must be rejected")
	}
	if _, ok := userRepo.tokens["stale"]; ok {
		t.Fatalf("expired token must be deleted on use")
	}
}

func TestLoginPurgesExpiredTokens(t *testing.T) {
	svc, userRepo, membershipRepo, user := newUserFixture(t)
	companyID, _ := addMembership(t, membershipRepo, user.ID)

	_ = userRepo.SaveRefreshToken(context.Background(), &model.RefreshToken{
		UserID:    user.ID,
		CompanyID: companyID,
		Token:     "long-gone",
		ExpiresAt: time.Now().Add(-24 * time.Hour),
	})

	if _, err := svc.Login(context.Background(), LoginUserRequest{
		Email:    "harper@example.com",
		Password: "s3cretpw",
	}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, ok := userRepo.tokens["long-gone"]; ok {
		t.Fatalf("expired tokens should be purged at login")
	}
}

func TestLogoutDeletesToken(t *testing.T) {
	svc, userRepo, membershipRepo, user := newUserFixture(t)
	addMembership(t, membershipRepo, user.ID)

	pair, err := svc.Login(context.Background(), LoginUserRequest{
		Email:    "harper@example.com",
		Password: "s3cretpw",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, ok := userRepo.tokens[pair.RefreshToken]; ok {
		t.Fatalf("logout must delete the refresh token")
	}
}
