package policy

import (
	"testing"

	"github.com/allerview/portal-gateway/internal/core/domain"
)

func identityWithRole(role domain.Role) *domain.Identity {
	return &domain.Identity{ID: "u-1", Name: "tester", Role: role}
}

func TestDefaultLandingArea_AdminRoles(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin} {
		if got := DefaultLandingArea(identityWithRole(role)); got != AreaAdmin {
			t.Fatalf("role %s: expected admin landing, got %s", role, got)
		}
	}
}

func TestDefaultLandingArea_ProfessionalRoles(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleDoctor, domain.RoleNurse, domain.RoleLabTech, domain.RoleHospitalAdmin} {
		if got := DefaultLandingArea(identityWithRole(role)); got != AreaProfessional {
			t.Fatalf("role %s: expected professional landing, got %s", role, got)
		}
	}
}

func TestDefaultLandingArea_ConsumerRoles(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleUser, domain.RolePatient, domain.Role("")} {
		if got := DefaultLandingArea(identityWithRole(role)); got != AreaConsumer {
			t.Fatalf("role %q: expected consumer landing, got %s", role, got)
		}
	}
}

func TestDefaultLandingArea_AbsentIdentity(t *testing.T) {
	if got := DefaultLandingArea(nil); got != AreaLogin {
		t.Fatalf("expected login landing for absent identity, got %s", got)
	}
}

func TestCanEnter_AbsentIdentity(t *testing.T) {
	for _, area := range []Area{AreaLogin, AreaConsumer, AreaProfessional, AreaAdmin, AreaSuperAdmin} {
		if CanEnter(area, nil) {
			t.Fatalf("absent identity must not enter %s", area)
		}
	}
	if !CanEnter(AreaPublic, nil) {
		t.Fatalf("public area must admit absent identity")
	}
}

func TestCanEnter_DoctorEscalationGuard(t *testing.T) {
	doctor := identityWithRole(domain.RoleDoctor)

	if CanEnter(AreaAdmin, doctor) {
		t.Fatalf("doctor must not enter admin area")
	}
	if !CanEnter(AreaProfessional, doctor) {
		t.Fatalf("doctor must enter professional area")
	}
}

func TestCanEnter_SuperAdminOnlySubarea(t *testing.T) {
	admin := identityWithRole(domain.RoleAdmin)
	superAdmin := identityWithRole(domain.RoleSuperAdmin)

	if CanEnter(AreaSuperAdmin, admin) {
		t.Fatalf("plain admin must not enter super-admin subarea")
	}
	if !CanEnter(AreaSuperAdmin, superAdmin) {
		t.Fatalf("super admin must enter super-admin subarea")
	}
	if !CanEnter(AreaAdmin, superAdmin) {
		t.Fatalf("super admin must enter admin area")
	}
}

func TestCanEnter_PrivilegedRolesKeepLesserAreas(t *testing.T) {
	admin := identityWithRole(domain.RoleAdmin)

	if !CanEnter(AreaProfessional, admin) {
		t.Fatalf("admin qualifies for the professional area")
	}
	if !CanEnter(AreaConsumer, admin) {
		t.Fatalf("any present identity qualifies for the consumer area")
	}
	// But never lands there by default.
	if got := DefaultLandingArea(admin); got != AreaAdmin {
		t.Fatalf("admin must land in admin area, got %s", got)
	}
}

func TestCanEnter_UnknownAreaDenied(t *testing.T) {
	if CanEnter(Area("warehouse"), identityWithRole(domain.RoleSuperAdmin)) {
		t.Fatalf("unknown areas must be denied")
	}
}

func TestLandingPath(t *testing.T) {
	cases := map[Area]string{
		AreaAdmin:        "/admin",
		AreaSuperAdmin:   "/admin",
		AreaProfessional: "/pro",
		AreaConsumer:     "/app",
		AreaLogin:        "/login",
		AreaPublic:       "/",
	}
	for area, want := range cases {
		if got := LandingPath(area); got != want {
			t.Fatalf("area %s: expected path %s, got %s", area, want, got)
		}
	}
}
