package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DiogoBrazil/medimage-api/internal/auth"
	"github.com/DiogoBrazil/medimage-api/internal/domain"
)

func TestHealthUnitCreateUsesCallerAdmin(t *testing.T) {
	svc := NewHealthUnitService(newFakeHealthUnitRepo(), nil)
	admin := auth.Principal{ID: "adm-1", Role: domain.RoleAdministrator}

	unit, err := svc.Create(context.Background(), admin, HealthUnitInput{
		Name: "Central Clinic",
		CNPJ: "12.345.678/0001-99",
	})
	require.NoError(t, err)
	assert.Equal(t, "adm-1", unit.AdminID)
	assert.Equal(t, domain.UnitStatusActive, unit.Status)
}

func TestHealthUnitCreateByGeneralAdminNeedsAdminID(t *testing.T) {
	svc := NewHealthUnitService(newFakeHealthUnitRepo(), nil)
	generalAdmin := auth.Principal{ID: "ga-1", Role: domain.RoleGeneralAdministrator}

	_, err := svc.Create(context.Background(), generalAdmin, HealthUnitInput{
		Name: "Central Clinic",
		CNPJ: "12345678000199",
	})
	domainErr := domainStatus(t, err)
	assert.Equal(t, 400, domainErr.HTTPStatus)

	unit, err := svc.Create(context.Background(), generalAdmin, HealthUnitInput{
		AdminID: "adm-7",
		Name:    "Central Clinic",
		CNPJ:    "12345678000199",
	})
	require.NoError(t, err)
	assert.Equal(t, "adm-7", unit.AdminID)
}

func TestHealthUnitCreateRejectsBadCNPJ(t *testing.T) {
	svc := NewHealthUnitService(newFakeHealthUnitRepo(), nil)
	admin := auth.Principal{ID: "adm-1", Role: domain.RoleAdministrator}

	for _, cnpj := range []string{"", "123", "12345678000199x", "123456780001999"} {
		_, err := svc.Create(context.Background(), admin, HealthUnitInput{Name: "Clinic", CNPJ: cnpj})
		domainErr := domainStatus(t, err)
		assert.Equal(t, 400, domainErr.HTTPStatus, "cnpj %q", cnpj)
	}
}

func TestHealthUnitGetDeniesForeignScope(t *testing.T) {
	repo := newFakeHealthUnitRepo()
	unit := seedUnit(t, repo, "adm-1")
	svc := NewHealthUnitService(repo, nil)

	_, err := svc.Get(context.Background(), auth.TenantScope{Kind: auth.ScopeAdmin, AdminID: "adm-2"}, unit.ID)
	var authzErr *auth.AuthzError
	require.ErrorAs(t, err, &authzErr)
	assert.Equal(t, "Health unit belongs to a different administrator", authzErr.Message)

	got, err := svc.Get(context.Background(), auth.TenantScope{Kind: auth.ScopeUnrestricted}, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, unit.ID, got.ID)
}

func TestHealthUnitListScoped(t *testing.T) {
	repo := newFakeHealthUnitRepo()
	seedUnit(t, repo, "adm-1")
	seedUnit(t, repo, "adm-2")
	svc := NewHealthUnitService(repo, nil)

	units, err := svc.List(context.Background(), auth.TenantScope{Kind: auth.ScopeAdmin, AdminID: "adm-1"}, 20, 0)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "adm-1", units[0].AdminID)

	units, err = svc.List(context.Background(), auth.TenantScope{Kind: auth.ScopeUnrestricted}, 20, 0)
	require.NoError(t, err)
	assert.Len(t, units, 2)
}

func TestHealthUnitDeleteChecksOwnership(t *testing.T) {
	repo := newFakeHealthUnitRepo()
	unit := seedUnit(t, repo, "adm-1")
	svc := NewHealthUnitService(repo, nil)

	foreign := auth.Principal{ID: "adm-2", Role: domain.RoleAdministrator}
	err := svc.Delete(context.Background(), foreign, auth.TenantScope{Kind: auth.ScopeAdmin, AdminID: "adm-2"}, unit.ID)
	var authzErr *auth.AuthzError
	require.ErrorAs(t, err, &authzErr)

	owner := auth.Principal{ID: "adm-1", Role: domain.RoleAdministrator}
	require.NoError(t, svc.Delete(context.Background(), owner, auth.TenantScope{Kind: auth.ScopeAdmin, AdminID: "adm-1"}, unit.ID))

	_, err = svc.Get(context.Background(), auth.TenantScope{Kind: auth.ScopeUnrestricted}, unit.ID)
	domainErr := domainStatus(t, err)
	assert.Equal(t, 404, domainErr.HTTPStatus)
}
