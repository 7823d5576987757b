package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

func TestCreateWorker(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hostel := f.category(t, "Hostel", nil)

	worker, err := f.employees.CreateWorker(ctx, superAdmin, WorkerInput{
		DisplayName:  " Ravi ",
		Username:     "ravi",
		Password:     "correct-horse",
		ContactPhone: "555-0101",
		CategoryIDs:  []string{hostel.ID, hostel.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ravi", worker.DisplayName)
	assert.Equal(t, []string{hostel.ID}, worker.CategoryIDs)
	assert.NotEqual(t, "correct-horse", worker.PasswordHash)
	assert.NoError(t, auth.ComparePassword(worker.PasswordHash, "correct-horse"))
	assert.Equal(t, domain.EmployeeKindWorker, worker.Kind())
}

func TestCreateWorkerValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hostel := f.category(t, "Hostel", nil)
	water := f.category(t, "Water Supply", &hostel.ID)

	tests := []struct {
		name  string
		input WorkerInput
		kind  apperrors.ErrorKind
		code  string
	}{
		{"missing username", WorkerInput{DisplayName: "A", Password: "correct-horse"}, apperrors.KindValidation, "USERNAME_REQUIRED"},
		{"missing name", WorkerInput{Username: "a", Password: "correct-horse"}, apperrors.KindValidation, "EMPTY_NAME"},
		{"short password", WorkerInput{DisplayName: "A", Username: "a", Password: "short"}, apperrors.KindValidation, "WEAK_PASSWORD"},
		{
			"oversized password",
			WorkerInput{DisplayName: "A", Username: "a", Password: strings.Repeat("x", 73)},
			apperrors.KindValidation, "PASSWORD_TOO_LONG",
		},
		{
			"sub-category in category scope",
			WorkerInput{DisplayName: "A", Username: "a", Password: "correct-horse", CategoryIDs: []string{water.ID}},
			apperrors.KindValidation, "INVALID_CATEGORY",
		},
		{
			"root in sub-category scope",
			WorkerInput{DisplayName: "A", Username: "a", Password: "correct-horse", SubCategoryIDs: []string{hostel.ID}},
			apperrors.KindValidation, "INVALID_CATEGORY",
		},
		{
			"unknown role",
			WorkerInput{DisplayName: "A", Username: "a", Password: "correct-horse", CustomRoleID: strPtr("missing")},
			apperrors.KindNotFound, "ROLE_NOT_FOUND",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.employees.CreateWorker(ctx, superAdmin, tt.input)
			assertCode(t, err, tt.kind, tt.code)
		})
	}

	_, err := f.employees.CreateWorker(ctx, manager, WorkerInput{DisplayName: "A", Username: "a", Password: "correct-horse"})
	assertCode(t, err, apperrors.KindAccessDenied, "ACCESS_DENIED")
}

func TestUsernameTakenAcrossIdentities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.AddIdentity(domain.Identity{ID: "id-asha", Username: "asha", DisplayName: "Asha", Role: domain.RoleStaff, IsActive: true})

	_, err := f.employees.CreateWorker(ctx, superAdmin, WorkerInput{DisplayName: "Asha W", Username: "asha", Password: "correct-horse"})
	assertCode(t, err, apperrors.KindConflict, "USERNAME_TAKEN")

	existing := f.worker(t, "bala")
	_, err = f.employees.CreateWorker(ctx, superAdmin, WorkerInput{DisplayName: "Bala 2", Username: "bala", Password: "correct-horse"})
	assertCode(t, err, apperrors.KindConflict, "USERNAME_TAKEN")

	require.NoError(t, f.employees.Deactivate(ctx, superAdmin, existing.ID))
	_, err = f.employees.CreateWorker(ctx, superAdmin, WorkerInput{DisplayName: "Bala 2", Username: "bala", Password: "correct-horse"})
	require.NoError(t, err, "usernames of deactivated workers can be reused")
}

func TestCreateManager(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.AddIdentity(domain.Identity{ID: "id-lee", Username: "lee", DisplayName: "Lee", Role: domain.RoleStaff, IsActive: true})
	f.store.AddIdentity(domain.Identity{ID: "id-kim", Username: "kim", DisplayName: "Kim", Role: domain.RoleStaff, IsActive: true})
	f.store.AddIdentity(domain.Identity{ID: "id-stu", Username: "stu", DisplayName: "Stu", Role: domain.RoleStudent, IsActive: true})

	_, err := f.employees.CreateManager(ctx, superAdmin, ManagerInput{})
	assertCode(t, err, apperrors.KindValidation, "IDENTITY_REQUIRED")

	_, err = f.employees.CreateManager(ctx, superAdmin, ManagerInput{IdentityRef: "id-ghost"})
	assertCode(t, err, apperrors.KindNotFound, "IDENTITY_NOT_FOUND")

	lee, err := f.employees.CreateManager(ctx, superAdmin, ManagerInput{IdentityRef: "id-lee"})
	require.NoError(t, err)
	assert.Equal(t, "Lee", lee.DisplayName)
	assert.Equal(t, "lee", lee.Username)
	assert.Equal(t, domain.EmployeeKindManager, lee.Kind())

	_, err = f.employees.CreateManager(ctx, superAdmin, ManagerInput{IdentityRef: "id-lee"})
	assertCode(t, err, apperrors.KindConflict, "ALREADY_ASSIGNED")

	available, err := f.employees.AvailableUsers(ctx, superAdmin)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "id-kim", available[0].ID)
}

func TestUpdateAndListEmployees(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hostel := f.category(t, "Hostel", nil)
	library := f.category(t, "Library", nil)
	worker := f.worker(t, "ravi", hostel.ID)
	f.worker(t, "meena", library.ID)

	updated, err := f.employees.Update(ctx, superAdmin, worker.ID, domain.EmployeePatch{
		DisplayName: strPtr("Ravi K"),
		CategoryIDs: &[]string{library.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ravi K", updated.Name())
	assert.Equal(t, []string{library.ID}, updated.Profile().CategoryIDs)

	_, err = f.employees.Update(ctx, superAdmin, worker.ID, domain.EmployeePatch{DisplayName: strPtr(" ")})
	assertCode(t, err, apperrors.KindValidation, "EMPTY_NAME")

	_, err = f.employees.Update(ctx, superAdmin, "missing", domain.EmployeePatch{DisplayName: strPtr("x")})
	assertCode(t, err, apperrors.KindNotFound, "EMPLOYEE_NOT_FOUND")

	inLibrary, err := f.employees.List(ctx, manager, repository.EmployeeFilter{CategoryID: &library.ID})
	require.NoError(t, err)
	assert.Len(t, inLibrary, 2)

	got, err := f.employees.Get(ctx, manager, worker.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ravi K", got.Name())

	_, err = f.employees.Get(ctx, staff, worker.ID)
	assertCode(t, err, apperrors.KindAccessDenied, "ACCESS_DENIED")

	require.NoError(t, f.employees.Deactivate(ctx, superAdmin, worker.ID))
	require.NoError(t, f.employees.Deactivate(ctx, superAdmin, worker.ID), "deactivation is idempotent")
	got, err = f.employees.Get(ctx, manager, worker.ID)
	require.NoError(t, err)
	assert.False(t, got.Active())
}

func TestReactivateWorkerChecksUsername(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reactivate := domain.EmployeePatch{IsActive: boolPtr(true)}

	asha := f.worker(t, "asha")
	require.NoError(t, f.employees.Deactivate(ctx, superAdmin, asha.ID))
	f.store.AddIdentity(domain.Identity{ID: "id-asha", Username: "asha", DisplayName: "Asha", Role: domain.RoleStaff, IsActive: true})
	_, err := f.employees.Update(ctx, superAdmin, asha.ID, reactivate)
	assertCode(t, err, apperrors.KindConflict, "USERNAME_TAKEN")

	bala := f.worker(t, "bala")
	require.NoError(t, f.employees.Deactivate(ctx, superAdmin, bala.ID))
	f.worker(t, "bala")
	_, err = f.employees.Update(ctx, superAdmin, bala.ID, reactivate)
	assertCode(t, err, apperrors.KindConflict, "USERNAME_TAKEN")

	ravi := f.worker(t, "ravi")
	require.NoError(t, f.employees.Deactivate(ctx, superAdmin, ravi.ID))
	back, err := f.employees.Update(ctx, superAdmin, ravi.ID, reactivate)
	require.NoError(t, err)
	assert.True(t, back.Active())

	_, err = f.employees.Update(ctx, superAdmin, ravi.ID, domain.EmployeePatch{DisplayName: strPtr("Ravi K"), IsActive: boolPtr(true)})
	require.NoError(t, err, "already active workers skip the check")
}
