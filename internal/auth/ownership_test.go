package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DiogoBrazil/medimage-api/internal/domain"
)

func TestVerifyHealthUnitAccess(t *testing.T) {
	unit := &domain.HealthUnit{ID: "hu-1", AdminID: "adm-1"}

	assert.Nil(t, VerifyHealthUnitAccess(TenantScope{Kind: ScopeUnrestricted}, unit))
	assert.Nil(t, VerifyHealthUnitAccess(TenantScope{Kind: ScopeAdmin, AdminID: "adm-1"}, unit))

	denied := VerifyHealthUnitAccess(TenantScope{Kind: ScopeAdmin, AdminID: "adm-2"}, unit)
	require.NotNil(t, denied)
	assert.Equal(t, "Health unit belongs to a different administrator", denied.Message)
	assert.Equal(t, NotOwner, denied.Kind)
}

func TestVerifyAttendanceMutation(t *testing.T) {
	attendance := &domain.Attendance{ID: "att-1", ProfessionalID: "pro-1", AdminID: "adm-1"}

	generalAdmin := Principal{ID: "ga-1", Role: domain.RoleGeneralAdministrator}
	admin := Principal{ID: "adm-2", Role: domain.RoleAdministrator}
	owner := Principal{ID: "pro-1", Role: domain.RoleProfessional, TenantAdminID: "adm-1"}
	other := Principal{ID: "pro-2", Role: domain.RoleProfessional, TenantAdminID: "adm-1"}

	// administrators may mutate any record, even outside their subtree
	assert.Nil(t, VerifyAttendanceMutation(generalAdmin, attendance, OpUpdate))
	assert.Nil(t, VerifyAttendanceMutation(admin, attendance, OpDelete))

	assert.Nil(t, VerifyAttendanceMutation(owner, attendance, OpUpdate))

	update := VerifyAttendanceMutation(other, attendance, OpUpdate)
	require.NotNil(t, update)
	assert.Equal(t, "You do not have permission to update this attendance", update.Message)

	del := VerifyAttendanceMutation(other, attendance, OpDelete)
	require.NotNil(t, del)
	assert.Equal(t, "You do not have permission to delete this attendance", del.Message)
}

func TestVerifyUserMutationSelfDelete(t *testing.T) {
	// rule one beats everything, general administrators included
	for _, role := range []domain.Role{domain.RoleGeneralAdministrator, domain.RoleAdministrator, domain.RoleProfessional} {
		p := Principal{ID: "u-1", Role: role}
		target := &domain.User{ID: "u-1", Profile: role}

		denied := VerifyUserMutation(p, target, OpDelete)
		require.NotNil(t, denied, "role %s", role)
		assert.Equal(t, "User cannot delete itself", denied.Message)
		assert.Equal(t, SelfActionForbidden, denied.Kind)

		assert.Nil(t, VerifyUserMutation(p, target, OpUpdate), "self update for %s", role)
	}
}

func TestVerifyUserMutationHierarchy(t *testing.T) {
	generalAdmin := Principal{ID: "ga-1", Role: domain.RoleGeneralAdministrator}
	admin := Principal{ID: "adm-1", Role: domain.RoleAdministrator}

	ownProfessional := &domain.User{ID: "pro-1", Profile: domain.RoleProfessional, AdminID: "adm-1"}
	foreignProfessional := &domain.User{ID: "pro-2", Profile: domain.RoleProfessional, AdminID: "adm-2"}
	otherAdmin := &domain.User{ID: "adm-2", Profile: domain.RoleAdministrator}

	assert.Nil(t, VerifyUserMutation(generalAdmin, otherAdmin, OpDelete))
	assert.Nil(t, VerifyUserMutation(generalAdmin, foreignProfessional, OpUpdate))

	assert.Nil(t, VerifyUserMutation(admin, ownProfessional, OpDelete))

	denied := VerifyUserMutation(admin, foreignProfessional, OpDelete)
	require.NotNil(t, denied)
	assert.Equal(t, "Professional is not associated with this administrator", denied.Message)

	denied = VerifyUserMutation(admin, otherAdmin, OpUpdate)
	require.NotNil(t, denied)
	assert.Equal(t, "Professional is not associated with this administrator", denied.Message)
}
