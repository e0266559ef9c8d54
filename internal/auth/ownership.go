package auth

import "github.com/DiogoBrazil/medimage-api/internal/domain"

// MutationOp names the operation being verified so denial messages can cite it.
type MutationOp string

const (
	OpUpdate MutationOp = "update"
	OpDelete MutationOp = "delete"
)

// VerifyHealthUnitAccess checks a fetched health unit against the caller's
// resolved scope. Used for reads and mutations of a single unit, where no
// list filter was applied.
func VerifyHealthUnitAccess(scope TenantScope, unit *domain.HealthUnit) *AuthzError {
	if scope.Allows(unit.AdminID) {
		return nil
	}
	return forbidden(NotOwner, "Health unit belongs to a different administrator")
}

// VerifyAttendanceMutation checks update/delete of an attendance. The rule is
// role-based, not scope-based: administrators at either level may act on any
// attendance, while a professional may only act on records they created. Do
// not fold this into the health-unit rule; it is intentionally broader.
func VerifyAttendanceMutation(p Principal, attendance *domain.Attendance, op MutationOp) *AuthzError {
	if p.Role.IsAdministrative() {
		return nil
	}
	if attendance.ProfessionalID == p.ID {
		return nil
	}
	return forbidden(NotOwner, "You do not have permission to "+string(op)+" this attendance")
}

// VerifyUserMutation checks update/delete of a user record. Rules are
// evaluated in order; the first match decides:
//
//  1. self-delete is rejected for every role, general administrators included;
//  2. a caller may act on their own record;
//  3. a general administrator may act on anyone;
//  4. otherwise only on a professional attached to the caller.
func VerifyUserMutation(p Principal, target *domain.User, op MutationOp) *AuthzError {
	if op == OpDelete && target.ID == p.ID {
		return forbidden(SelfActionForbidden, "User cannot delete itself")
	}
	if target.ID == p.ID {
		return nil
	}
	if p.Role == domain.RoleGeneralAdministrator {
		return nil
	}
	if target.Profile == domain.RoleProfessional && target.AdminID == p.ID {
		return nil
	}
	return forbidden(NotOwner, "Professional is not associated with this administrator")
}
