package auth

import "github.com/DiogoBrazil/medimage-api/internal/domain"

// ScopeKind tags the visibility boundary resolved for a request.
type ScopeKind int

const (
	// ScopeUnrestricted sees every administrator's subtree.
	ScopeUnrestricted ScopeKind = iota
	// ScopeAdmin is confined to one administrator's subtree.
	ScopeAdmin
	// ScopeAdminProfessional is confined to one administrator's subtree and
	// additionally identifies the acting professional.
	ScopeAdminProfessional
)

// TenantScope is the resolved "what this caller may see" value. It is derived
// per request and never persisted.
type TenantScope struct {
	Kind           ScopeKind
	AdminID        string
	ProfessionalID string
}

// Unrestricted reports whether the scope spans all tenants.
func (s TenantScope) Unrestricted() bool {
	return s.Kind == ScopeUnrestricted
}

// AdminFilter returns the admin id to filter list queries by, or "" when the
// scope is unrestricted.
func (s TenantScope) AdminFilter() string {
	if s.Kind == ScopeUnrestricted {
		return ""
	}
	return s.AdminID
}

// Allows reports whether a resource owned by adminID is visible in this scope.
func (s TenantScope) Allows(adminID string) bool {
	return s.Kind == ScopeUnrestricted || s.AdminID == adminID
}

// Fixed denial reasons. These strings are contractual: clients branch on the
// exact text.
const (
	msgAdminsOnly         = "Unauthorized. This request can only be made by administrators."
	msgProfessionalsOnly  = "Unauthorized. This request can only be made by healthcare professionals."
	msgGeneralAdminsOnly  = "Only general administrators can access subscriptions"
	msgOrphanProfessional = "Professional is not associated with an administrator"
)

// Resolve maps a principal and route class to the caller's tenant scope, or
// denies per the role table. It is a pure function: no I/O, no state, same
// output for the same inputs.
//
//	role                  Public  AdminOnly            ProfessionalOnly        GeneralAdminOnly  Unclassified
//	GeneralAdministrator  allow   allow, unrestricted  deny                    allow             allow
//	Administrator         allow   allow, own subtree   deny                    deny              allow
//	Professional          allow   deny                 allow, admin's subtree  deny              allow
func Resolve(p Principal, route RouteClass) (TenantScope, *AuthzError) {
	if route == RoutePublic {
		return TenantScope{Kind: ScopeUnrestricted}, nil
	}

	switch p.Role {
	case domain.RoleGeneralAdministrator:
		if route == RouteProfessionalOnly {
			return TenantScope{}, forbidden(WrongRole, msgProfessionalsOnly)
		}
		return TenantScope{Kind: ScopeUnrestricted}, nil

	case domain.RoleAdministrator:
		switch route {
		case RouteProfessionalOnly:
			return TenantScope{}, forbidden(WrongRole, msgProfessionalsOnly)
		case RouteGeneralAdminOnly:
			return TenantScope{}, forbidden(WrongRole, msgGeneralAdminsOnly)
		}
		return TenantScope{Kind: ScopeAdmin, AdminID: p.ID}, nil

	case domain.RoleProfessional:
		switch route {
		case RouteAdminOnly:
			return TenantScope{}, forbidden(WrongRole, msgAdminsOnly)
		case RouteGeneralAdminOnly:
			return TenantScope{}, forbidden(WrongRole, msgGeneralAdminsOnly)
		}
		// Absence of the tenant link is a deny, never a wildcard.
		if p.TenantAdminID == "" {
			return TenantScope{}, forbidden(WrongScope, msgOrphanProfessional)
		}
		if route == RouteProfessionalOnly {
			return TenantScope{Kind: ScopeAdmin, AdminID: p.TenantAdminID}, nil
		}
		return TenantScope{Kind: ScopeAdminProfessional, AdminID: p.TenantAdminID, ProfessionalID: p.ID}, nil

	default:
		return TenantScope{}, forbidden(WrongRole, "Unknown profile")
	}
}
