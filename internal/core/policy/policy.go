// Package policy is the single source of truth for access decisions.
//
// The privilege ordering admin > professional > consumer is defined here
// and nowhere else; handlers and middleware must not re-derive role-set
// membership inline.
package policy

import "github.com/allerview/portal-gateway/internal/core/domain"

// Area names one of the application shells a session may enter.
type Area string

const (
	AreaPublic       Area = "public"
	AreaLogin        Area = "login"
	AreaConsumer     Area = "consumer"
	AreaProfessional Area = "professional"
	AreaAdmin        Area = "admin"
	// AreaSuperAdmin is the stricter variant of AreaAdmin for
	// super-admin-only subareas.
	AreaSuperAdmin Area = "super_admin"
)

// DefaultLandingArea maps an identity to the shell it lands in by default.
// Total over its inputs: always exactly one of login, admin, professional,
// consumer. An admin-capable identity never lands in a lesser area.
func DefaultLandingArea(identity *domain.Identity) Area {
	switch {
	case identity == nil:
		return AreaLogin
	case identity.Role.IsAdmin():
		return AreaAdmin
	case identity.Role.IsProfessional():
		return AreaProfessional
	default:
		return AreaConsumer
	}
}

// LandingPath maps a landing area to the URL prefix its shell is mounted
// under.
func LandingPath(area Area) string {
	switch area {
	case AreaAdmin, AreaSuperAdmin:
		return "/admin"
	case AreaProfessional:
		return "/pro"
	case AreaConsumer:
		return "/app"
	case AreaLogin:
		return "/login"
	default:
		return "/"
	}
}

// CanEnter reports whether the identity may enter the given area.
// Never errors; unknown areas are denied.
func CanEnter(area Area, identity *domain.Identity) bool {
	if area == AreaPublic {
		return true
	}
	if identity == nil {
		return false
	}

	switch area {
	case AreaLogin:
		// Signed-in users may still reach the login shell, e.g. to
		// sign in as somebody else.
		return true
	case AreaConsumer:
		return true
	case AreaProfessional:
		return identity.Role.IsProfessional()
	case AreaAdmin:
		return identity.Role.IsAdmin()
	case AreaSuperAdmin:
		return identity.Role.IsSuperAdmin()
	default:
		return false
	}
}
