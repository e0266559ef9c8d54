package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DiogoBrazil/medimage-api/internal/auth"
	"github.com/DiogoBrazil/medimage-api/internal/domain"
	"github.com/DiogoBrazil/medimage-api/internal/repository"
)

type fakeHealthUnitRepo struct {
	units  map[string]*domain.HealthUnit
	nextID int
}

func newFakeHealthUnitRepo() *fakeHealthUnitRepo {
	return &fakeHealthUnitRepo{units: map[string]*domain.HealthUnit{}}
}

func (r *fakeHealthUnitRepo) Create(_ context.Context, unit *domain.HealthUnit) error {
	r.nextID++
	unit.ID = fmt.Sprintf("hu-%d", r.nextID)
	unit.CreatedAt = time.Now()
	unit.UpdatedAt = unit.CreatedAt
	clone := *unit
	r.units[unit.ID] = &clone
	return nil
}

func (r *fakeHealthUnitRepo) Update(_ context.Context, unit *domain.HealthUnit) error {
	if _, ok := r.units[unit.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *unit
	r.units[unit.ID] = &clone
	return nil
}

func (r *fakeHealthUnitRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.units[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.units, id)
	return nil
}

func (r *fakeHealthUnitRepo) GetByID(_ context.Context, id string) (*domain.HealthUnit, error) {
	unit, ok := r.units[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *unit
	return &clone, nil
}

func (r *fakeHealthUnitRepo) ListByAdmin(_ context.Context, adminID string, _, _ int) ([]domain.HealthUnit, error) {
	var result []domain.HealthUnit
	for _, unit := range r.units {
		if unit.AdminID == adminID {
			result = append(result, *unit)
		}
	}
	return result, nil
}

func (r *fakeHealthUnitRepo) ListAll(_ context.Context, _, _ int) ([]domain.HealthUnit, error) {
	var result []domain.HealthUnit
	for _, unit := range r.units {
		result = append(result, *unit)
	}
	return result, nil
}

type fakeAttendanceRepo struct {
	attendances map[string]*domain.Attendance
	accuracy    []repository.ModelAccuracy
	nextID      int
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{attendances: map[string]*domain.Attendance{}}
}

func (r *fakeAttendanceRepo) Create(_ context.Context, attendance *domain.Attendance) error {
	r.nextID++
	attendance.ID = fmt.Sprintf("att-%d", r.nextID)
	attendance.AttendanceDate = time.Now()
	attendance.UpdatedAt = attendance.AttendanceDate
	clone := *attendance
	r.attendances[attendance.ID] = &clone
	return nil
}

func (r *fakeAttendanceRepo) Update(_ context.Context, attendance *domain.Attendance) error {
	if _, ok := r.attendances[attendance.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *attendance
	r.attendances[attendance.ID] = &clone
	return nil
}

func (r *fakeAttendanceRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.attendances[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.attendances, id)
	return nil
}

func (r *fakeAttendanceRepo) GetByID(_ context.Context, id string) (*domain.Attendance, error) {
	attendance, ok := r.attendances[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *attendance
	return &clone, nil
}

func (r *fakeAttendanceRepo) matches(attendance *domain.Attendance, filter repository.AttendanceFilter) bool {
	if filter.AdminID != nil && attendance.AdminID != *filter.AdminID {
		return false
	}
	if filter.ProfessionalID != nil && attendance.ProfessionalID != *filter.ProfessionalID {
		return false
	}
	if filter.HealthUnitID != nil && attendance.HealthUnitID != *filter.HealthUnitID {
		return false
	}
	if filter.ModelUsed != nil && attendance.ModelUsed != *filter.ModelUsed {
		return false
	}
	return true
}

func (r *fakeAttendanceRepo) ListWithFilter(_ context.Context, filter repository.AttendanceFilter) ([]domain.Attendance, error) {
	var result []domain.Attendance
	for _, attendance := range r.attendances {
		if r.matches(attendance, filter) {
			result = append(result, *attendance)
		}
	}
	return result, nil
}

func (r *fakeAttendanceRepo) CountWithFilter(_ context.Context, filter repository.AttendanceFilter) (int, error) {
	count := 0
	for _, attendance := range r.attendances {
		if r.matches(attendance, filter) {
			count++
		}
	}
	return count, nil
}

func (r *fakeAttendanceRepo) AccuracyByModel(_ context.Context, _ repository.AttendanceFilter) ([]repository.ModelAccuracy, error) {
	return r.accuracy, nil
}

func seedUnit(t *testing.T, repo *fakeHealthUnitRepo, adminID string) *domain.HealthUnit {
	t.Helper()
	unit := &domain.HealthUnit{AdminID: adminID, Name: "Clinic", CNPJ: "12345678000199", Status: domain.UnitStatusActive}
	require.NoError(t, repo.Create(context.Background(), unit))
	return unit
}

func TestAttendanceCreateChecksUnitTenant(t *testing.T) {
	unitRepo := newFakeHealthUnitRepo()
	foreignUnit := seedUnit(t, unitRepo, "adm-2")
	svc := NewAttendanceService(newFakeAttendanceRepo(), unitRepo, nil)

	professional := auth.Principal{ID: "pro-1", Role: domain.RoleProfessional, TenantAdminID: "adm-1"}
	_, err := svc.Create(context.Background(), professional, CreateAttendanceInput{
		HealthUnitID: foreignUnit.ID,
		ModelUsed:    domain.ModelRespiratory,
		ModelResult:  "Normal",
		ImageBase64:  "aW1hZ2U=",
	})
	domainErr := domainStatus(t, err)
	assert.Equal(t, 403, domainErr.HTTPStatus)
	assert.Equal(t, "Health unit belongs to a different administrator", domainErr.Message)
}

func TestAttendanceCreateDenormalizesOwnership(t *testing.T) {
	unitRepo := newFakeHealthUnitRepo()
	unit := seedUnit(t, unitRepo, "adm-1")
	svc := NewAttendanceService(newFakeAttendanceRepo(), unitRepo, nil)

	professional := auth.Principal{ID: "pro-1", Role: domain.RoleProfessional, TenantAdminID: "adm-1"}
	attendance, err := svc.Create(context.Background(), professional, CreateAttendanceInput{
		HealthUnitID: unit.ID,
		ModelUsed:    domain.ModelRespiratory,
		ModelResult:  "Normal",
		ImageBase64:  "aW1hZ2U=",
	})
	require.NoError(t, err)
	assert.Equal(t, "pro-1", attendance.ProfessionalID)
	assert.Equal(t, "adm-1", attendance.AdminID)
}

func TestAttendanceCreateRejectsBoxesForNonBreastModels(t *testing.T) {
	unitRepo := newFakeHealthUnitRepo()
	unit := seedUnit(t, unitRepo, "adm-1")
	svc := NewAttendanceService(newFakeAttendanceRepo(), unitRepo, nil)

	professional := auth.Principal{ID: "pro-1", Role: domain.RoleProfessional, TenantAdminID: "adm-1"}
	_, err := svc.Create(context.Background(), professional, CreateAttendanceInput{
		HealthUnitID:  unit.ID,
		ModelUsed:     domain.ModelRespiratory,
		ModelResult:   "Normal",
		ImageBase64:   "aW1hZ2U=",
		BoundingBoxes: []domain.BoundingBox{{X: 1, Y: 2, Width: 3, Height: 4}},
	})
	domainErr := domainStatus(t, err)
	assert.Equal(t, 400, domainErr.HTTPStatus)
}

func TestAttendanceListTruncatesImages(t *testing.T) {
	unitRepo := newFakeHealthUnitRepo()
	unit := seedUnit(t, unitRepo, "adm-1")
	attendanceRepo := newFakeAttendanceRepo()
	svc := NewAttendanceService(attendanceRepo, unitRepo, nil)

	professional := auth.Principal{ID: "pro-1", Role: domain.RoleProfessional, TenantAdminID: "adm-1"}
	longImage := strings.Repeat("a", 150)
	_, err := svc.Create(context.Background(), professional, CreateAttendanceInput{
		HealthUnitID: unit.ID,
		ModelUsed:    domain.ModelTuberculosis,
		ModelResult:  "negative",
		ImageBase64:  longImage,
	})
	require.NoError(t, err)

	page, err := svc.List(context.Background(), auth.TenantScope{Kind: auth.ScopeAdmin, AdminID: "adm-1"}, ListAttendancesInput{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Len(t, page.Items[0].ImageBase64, 103)
	assert.True(t, strings.HasSuffix(page.Items[0].ImageBase64, "..."))
	assert.Equal(t, 1, page.Total)
}

func TestAttendanceListScopeFilter(t *testing.T) {
	unitRepo := newFakeHealthUnitRepo()
	unitA := seedUnit(t, unitRepo, "adm-1")
	unitB := seedUnit(t, unitRepo, "adm-2")
	attendanceRepo := newFakeAttendanceRepo()
	svc := NewAttendanceService(attendanceRepo, unitRepo, nil)

	proA := auth.Principal{ID: "pro-1", Role: domain.RoleProfessional, TenantAdminID: "adm-1"}
	proB := auth.Principal{ID: "pro-2", Role: domain.RoleProfessional, TenantAdminID: "adm-2"}
	for _, tc := range []struct {
		p    auth.Principal
		unit *domain.HealthUnit
	}{{proA, unitA}, {proB, unitB}} {
		_, err := svc.Create(context.Background(), tc.p, CreateAttendanceInput{
			HealthUnitID: tc.unit.ID,
			ModelUsed:    domain.ModelOsteoporosis,
			ModelResult:  "Normal",
			ImageBase64:  "aW1hZ2U=",
		})
		require.NoError(t, err)
	}

	page, err := svc.List(context.Background(), auth.TenantScope{Kind: auth.ScopeAdmin, AdminID: "adm-1"}, ListAttendancesInput{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "adm-1", page.Items[0].AdminID)

	page, err = svc.List(context.Background(), auth.TenantScope{Kind: auth.ScopeUnrestricted}, ListAttendancesInput{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}

func TestAttendanceMutationRules(t *testing.T) {
	unitRepo := newFakeHealthUnitRepo()
	unit := seedUnit(t, unitRepo, "adm-1")
	attendanceRepo := newFakeAttendanceRepo()
	svc := NewAttendanceService(attendanceRepo, unitRepo, nil)

	owner := auth.Principal{ID: "pro-1", Role: domain.RoleProfessional, TenantAdminID: "adm-1"}
	attendance, err := svc.Create(context.Background(), owner, CreateAttendanceInput{
		HealthUnitID: unit.ID,
		ModelUsed:    domain.ModelBreast,
		ModelResult:  "nódulo encontrado",
		ImageBase64:  "aW1hZ2U=",
	})
	require.NoError(t, err)

	other := auth.Principal{ID: "pro-2", Role: domain.RoleProfessional, TenantAdminID: "adm-1"}
	err = svc.Delete(context.Background(), other, attendance.ID)
	var authzErr *auth.AuthzError
	require.ErrorAs(t, err, &authzErr)
	assert.Equal(t, "You do not have permission to delete this attendance", authzErr.Message)

	// any administrator may delete, scope notwithstanding
	admin := auth.Principal{ID: "adm-9", Role: domain.RoleAdministrator}
	require.NoError(t, svc.Delete(context.Background(), admin, attendance.ID))
}

func TestAttendanceStatisticsAccuracy(t *testing.T) {
	attendanceRepo := newFakeAttendanceRepo()
	attendanceRepo.accuracy = []repository.ModelAccuracy{
		{Model: domain.ModelRespiratory, Total: 8, Correct: 6},
		{Model: domain.ModelBreast, Total: 2, Correct: 2},
	}
	svc := NewAttendanceService(attendanceRepo, newFakeHealthUnitRepo(), nil)

	summary, err := svc.Statistics(context.Background(), auth.TenantScope{Kind: auth.ScopeAdmin, AdminID: "adm-1"}, "", "")
	require.NoError(t, err)
	assert.Equal(t, 10, summary.Total)
	require.Len(t, summary.Models, 2)
	assert.InDelta(t, 75.0, summary.Models[0].AccuracyPercent, 0.001)
	assert.InDelta(t, 100.0, summary.Models[1].AccuracyPercent, 0.001)
}

func TestAttendanceStatisticsRejectsBadDates(t *testing.T) {
	svc := NewAttendanceService(newFakeAttendanceRepo(), newFakeHealthUnitRepo(), nil)

	_, err := svc.Statistics(context.Background(), auth.TenantScope{Kind: auth.ScopeUnrestricted}, "31-12-2025", "")
	domainErr := domainStatus(t, err)
	assert.Equal(t, 400, domainErr.HTTPStatus)
}
