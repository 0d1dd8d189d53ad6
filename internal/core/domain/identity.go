package domain

// Role is the closed set of account roles issued by the portal API.
type Role string

const (
	RoleUser          Role = "user"
	RolePatient       Role = "patient"
	RoleDoctor        Role = "doctor"
	RoleNurse         Role = "nurse"
	RoleLabTech       Role = "lab_tech"
	RoleHospitalAdmin Role = "hospital_admin"
	RoleAdmin         Role = "admin"
	RoleSuperAdmin    Role = "super_admin"
)

// professionalRoles is the superset of all staff roles; adminRoles and
// superAdminRoles narrow it. The orderings in the policy package rely on
// these sets being nested: superAdminRoles ⊆ adminRoles ⊆ professionalRoles.
var professionalRoles = map[Role]struct{}{
	RoleDoctor:        {},
	RoleNurse:         {},
	RoleLabTech:       {},
	RoleHospitalAdmin: {},
	RoleAdmin:         {},
	RoleSuperAdmin:    {},
}

var adminRoles = map[Role]struct{}{
	RoleAdmin:      {},
	RoleSuperAdmin: {},
}

// IsProfessional reports whether the role belongs to medical or platform staff.
func (r Role) IsProfessional() bool {
	_, ok := professionalRoles[r]
	return ok
}

// IsAdmin reports whether the role carries platform administration rights.
func (r Role) IsAdmin() bool {
	_, ok := adminRoles[r]
	return ok
}

// IsSuperAdmin reports whether the role is the highest privilege tier.
func (r Role) IsSuperAdmin() bool {
	return r == RoleSuperAdmin
}

// Identity models the authenticated principal as returned by the portal API.
// Contact fields are informational only and never feed access decisions.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// IsConsumer reports whether the identity is a plain portal consumer
// (present but holding no staff role).
func (i *Identity) IsConsumer() bool {
	return i != nil && !i.Role.IsProfessional()
}
