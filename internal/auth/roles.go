package auth

import "github.com/DiogoBrazil/medimage-api/internal/domain"

// Handler-level role guards for endpoints whose restriction is finer than the
// route table. Each returns the endpoint's fixed denial reason.

// RequireAdministrative denies callers that are neither administrator nor
// general administrator.
func RequireAdministrative(p Principal, message string) *AuthzError {
	if p.Role.IsAdministrative() {
		return nil
	}
	return forbidden(WrongRole, message)
}

// RequireGeneralAdministrator denies everyone but general administrators.
func RequireGeneralAdministrator(p Principal, message string) *AuthzError {
	if p.Role == domain.RoleGeneralAdministrator {
		return nil
	}
	return forbidden(WrongRole, message)
}

// RequireProfessional denies callers without the professional profile.
func RequireProfessional(p Principal, message string) *AuthzError {
	if p.Role == domain.RoleProfessional {
		return nil
	}
	return forbidden(WrongRole, message)
}
