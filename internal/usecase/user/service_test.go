package user

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/dealer-crm/internal/audit"
	"github.com/BruksfildServices01/dealer-crm/internal/auth"
	"github.com/BruksfildServices01/dealer-crm/internal/httperr"
	"github.com/BruksfildServices01/dealer-crm/internal/infra/repository"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
	"github.com/BruksfildServices01/dealer-crm/internal/testutil"
)

type auditSpy struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *auditSpy) Dispatch(ev audit.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *auditSpy) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Action)
	}
	return out
}

type fixture struct {
	svc   *Service
	repo  *repository.UserGormRepository
	audit *auditSpy
	admin *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	repo := repository.NewUserGormRepository(db)
	spy := &auditSpy{}

	svc, err := NewService(ServiceConfig{
		Repository:   repo,
		IDs:          &testutil.SeqIDs{},
		Clock:        testutil.Clock,
		PrimaryAdmin: "admin",
		BcryptCost:   bcrypt.MinCost,
		Audit:        spy,
	})
	require.NoError(t, err)

	admin := testutil.CreateUser(t, db, "admin", "Admin", "CRM")
	return &fixture{svc: svc, repo: repo, audit: spy, admin: admin}
}

func (f *fixture) create(t *testing.T, username, role string) *models.User {
	t.Helper()
	u, err := f.svc.Create(context.Background(), f.admin, CreateInput{
		Username: username,
		Password: "secret",
		Name:     username,
		Role:     role,
	})
	require.NoError(t, err)
	return u
}

var cre = &models.User{UserID: "user_cre", Role: "CRE"}

func TestCreateHashesPasswordAndDefaultsActive(t *testing.T) {
	f := newFixture(t)

	u := f.create(t, "asha", "CRE")
	assert.Equal(t, "user_1", u.UserID)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsLocked)
	assert.Equal(t, []string{}, u.ModuleAccess)
	assert.True(t, auth.CheckPassword(u.PasswordHash, "secret"))

	stored, err := f.repo.GetByUsername(context.Background(), "asha")
	require.NoError(t, err)
	assert.Equal(t, u.PasswordHash, stored.PasswordHash)
	assert.Equal(t, []string{audit.ActionUserCreate}, f.audit.actions())
}

func TestCreateRejectsDuplicateUsername(t *testing.T) {
	f := newFixture(t)
	f.create(t, "asha", "CRE")

	_, err := f.svc.Create(context.Background(), f.admin, CreateInput{
		Username: "asha", Password: "x", Name: "Other", Role: "CRE",
	})
	assert.True(t, httperr.IsKind(err, httperr.KindConflict))
}

func TestCreateValidatesRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.admin, CreateInput{
		Username: "x", Password: "x", Name: "X", Role: "Manager",
	})
	assert.True(t, httperr.IsKind(err, httperr.KindValidation))
}

func TestMutationsRequireCRM(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	target := f.create(t, "asha", "CRE")

	_, err := f.svc.List(ctx, cre)
	assert.True(t, httperr.IsKind(err, httperr.KindPermissionDenied))

	_, err = f.svc.Create(ctx, cre, CreateInput{Username: "y", Password: "y", Name: "Y", Role: "CRE"})
	assert.True(t, httperr.IsKind(err, httperr.KindPermissionDenied))

	_, err = f.svc.ToggleLock(ctx, cre, target.UserID)
	assert.True(t, httperr.IsKind(err, httperr.KindPermissionDenied))

	dp := &models.User{UserID: "user_dp", Role: "DP"}
	users, err := f.svc.List(ctx, dp)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUpdateAppliesOnlyPresentFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	target := f.create(t, "asha", "CRE")

	name := "Asha K"
	inactive := false
	password := "changed"
	access := []string{"appointments"}
	updated, err := f.svc.Update(ctx, f.admin, target.UserID, UpdateInput{
		Name:         &name,
		IsActive:     &inactive,
		Password:     &password,
		ModuleAccess: &access,
	})
	require.NoError(t, err)

	assert.Equal(t, "Asha K", updated.Name)
	assert.Equal(t, "CRE", updated.Role)
	assert.False(t, updated.IsActive)

	stored, err := f.repo.GetByID(ctx, target.UserID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "changed"))
	assert.Equal(t, []string{"appointments"}, stored.ModuleAccess)
	assert.True(t, stored.CreatedAt.Equal(testutil.Now), "created_at %s", stored.CreatedAt)
	assert.True(t, stored.UpdatedAt.Equal(testutil.Now), "updated_at %s", stored.UpdatedAt)
}

func TestPrimaryAdminGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inactive := false
	_, err := f.svc.Update(ctx, f.admin, f.admin.UserID, UpdateInput{IsActive: &inactive})
	assert.True(t, httperr.IsKind(err, httperr.KindPermissionDenied))

	locked := true
	_, err = f.svc.Update(ctx, f.admin, f.admin.UserID, UpdateInput{IsLocked: &locked})
	assert.True(t, httperr.IsKind(err, httperr.KindPermissionDenied))

	role := "CRE"
	_, err = f.svc.Update(ctx, f.admin, f.admin.UserID, UpdateInput{Role: &role})
	assert.True(t, httperr.IsKind(err, httperr.KindPermissionDenied))

	_, err = f.svc.ToggleLock(ctx, f.admin, f.admin.UserID)
	assert.True(t, httperr.IsKind(err, httperr.KindPermissionDenied))

	err = f.svc.Delete(ctx, f.admin, f.admin.UserID)
	assert.True(t, httperr.IsKind(err, httperr.KindPermissionDenied))
}

func TestToggleLockFlipsState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	target := f.create(t, "asha", "CRE")

	u, err := f.svc.ToggleLock(ctx, f.admin, target.UserID)
	require.NoError(t, err)
	assert.True(t, u.IsLocked)

	u, err = f.svc.ToggleLock(ctx, f.admin, target.UserID)
	require.NoError(t, err)
	assert.False(t, u.IsLocked)
}

func TestResetPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	target := f.create(t, "asha", "CRE")

	err := f.svc.ResetPassword(ctx, f.admin, target.UserID, "")
	assert.True(t, httperr.IsKind(err, httperr.KindValidation))

	err = f.svc.ResetPassword(ctx, f.admin, "user_missing", "new")
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))

	require.NoError(t, f.svc.ResetPassword(ctx, f.admin, target.UserID, "new"))
	stored, err := f.repo.GetByID(ctx, target.UserID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "new"))
}

func TestDeleteOnlyInactiveUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	target := f.create(t, "asha", "CRE")

	err := f.svc.Delete(ctx, f.admin, target.UserID)
	assert.True(t, httperr.IsBusiness(err, "user_active"))

	inactive := false
	_, err = f.svc.Update(ctx, f.admin, target.UserID, UpdateInput{IsActive: &inactive})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, f.admin, target.UserID))
	err = f.svc.Delete(ctx, f.admin, target.UserID)
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))
}

func TestListCREsReturnsActiveCREs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "asha", "CRE")
	gone := f.create(t, "ravi", "CRE")
	f.create(t, "front", "Receptionist")

	inactive := false
	_, err := f.svc.Update(ctx, f.admin, gone.UserID, UpdateInput{IsActive: &inactive})
	require.NoError(t, err)

	cres, err := f.svc.ListCREs(ctx)
	require.NoError(t, err)
	require.Len(t, cres, 1)
	assert.Equal(t, "asha", cres[0].Username)
}

func TestBootstrapIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, created, err := f.svc.Bootstrap(ctx, "root", "pw", "Root")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "CRM", u.Role)

	again, created, err := f.svc.Bootstrap(ctx, "root", "other", "Root")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, u.UserID, again.UserID)
}
