package domain

import "testing"

func TestRoleClassification(t *testing.T) {
	cases := []struct {
		role         Role
		professional bool
		admin        bool
		superAdmin   bool
	}{
		{RoleUser, false, false, false},
		{RolePatient, false, false, false},
		{RoleDoctor, true, false, false},
		{RoleNurse, true, false, false},
		{RoleLabTech, true, false, false},
		{RoleHospitalAdmin, true, false, false},
		{RoleAdmin, true, true, false},
		{RoleSuperAdmin, true, true, true},
	}

	for _, tc := range cases {
		if got := tc.role.IsProfessional(); got != tc.professional {
			t.Fatalf("%s: IsProfessional = %v, want %v", tc.role, got, tc.professional)
		}
		if got := tc.role.IsAdmin(); got != tc.admin {
			t.Fatalf("%s: IsAdmin = %v, want %v", tc.role, got, tc.admin)
		}
		if got := tc.role.IsSuperAdmin(); got != tc.superAdmin {
			t.Fatalf("%s: IsSuperAdmin = %v, want %v", tc.role, got, tc.superAdmin)
		}
	}
}

func TestIsConsumer(t *testing.T) {
	if !(&Identity{Role: RoleUser}).IsConsumer() {
		t.Fatalf("user role is a consumer")
	}
	if (&Identity{Role: RoleDoctor}).IsConsumer() {
		t.Fatalf("doctor is not a consumer")
	}
	var absent *Identity
	if absent.IsConsumer() {
		t.Fatalf("absent identity is not a consumer")
	}
}

func TestSessionStateTransitions(t *testing.T) {
	allowed := []struct{ from, to SessionState }{
		{StateUninitialized, StateLoading},
		{StateLoading, StateAuthenticated},
		{StateLoading, StateAnonymous},
		{StateAuthenticated, StateLoading},
		{StateAuthenticated, StateAnonymous},
		{StateAnonymous, StateLoading},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Fatalf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	forbidden := []struct{ from, to SessionState }{
		{StateUninitialized, StateAuthenticated},
		{StateUninitialized, StateAnonymous},
		{StateAnonymous, StateAuthenticated},
		{StateLoading, StateLoading},
	}
	for _, tc := range forbidden {
		if tc.from.CanTransitionTo(tc.to) {
			t.Fatalf("expected %s -> %s to be forbidden", tc.from, tc.to)
		}
	}
}

func TestSessionStateResolved(t *testing.T) {
	if StateUninitialized.Resolved() || StateLoading.Resolved() {
		t.Fatalf("unresolved states reported as resolved")
	}
	if !StateAuthenticated.Resolved() || !StateAnonymous.Resolved() {
		t.Fatalf("terminal states must report resolved")
	}
}
