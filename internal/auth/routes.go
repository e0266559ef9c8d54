package auth

import "strings"

// RouteClass buckets a request path for the role table. Classification is
// plain prefix matching; anything unknown falls through with authentication
// only.
type RouteClass int

const (
	RoutePublic RouteClass = iota
	RouteGeneralAdminOnly
	RouteAdminOnly
	RouteProfessionalOnly
	RouteUnclassified
)

func (rc RouteClass) String() string {
	switch rc {
	case RoutePublic:
		return "public"
	case RouteGeneralAdminOnly:
		return "general_admin_only"
	case RouteAdminOnly:
		return "admin_only"
	case RouteProfessionalOnly:
		return "professional_only"
	default:
		return "unclassified"
	}
}

var publicPrefixes = []string{
	"/api/users/login",
	"/api/status",
	"/api/ensure-root",
	"/api/docs",
	"/api/openapi.json",
	"/metrics",
}

var adminPrefixes = []string{
	"/api/admin/",
	"/api/health-units/add",
	"/api/users/administrators",
	"/api/attendances/statistics",
}

var professionalPrefixes = []string{
	"/api/attendances/add",
	"/api/predictions",
}

// ClassifyRoute maps a request path to its route class. The subscription
// paths are an explicit override checked before the admin prefixes:
// subscriptions are a general-administrator-exclusive resource even though
// they live under a path that would otherwise classify as admin territory.
func ClassifyRoute(path string) RouteClass {
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return RoutePublic
		}
	}
	if path == "/api/users/subscriptions" || strings.HasPrefix(path, "/api/users/subscriptions/") {
		return RouteGeneralAdminOnly
	}
	for _, prefix := range adminPrefixes {
		if strings.HasPrefix(path, prefix) {
			return RouteAdminOnly
		}
	}
	for _, prefix := range professionalPrefixes {
		if strings.HasPrefix(path, prefix) {
			return RouteProfessionalOnly
		}
	}
	return RouteUnclassified
}
