package types

// Role indicates a user's authorization level within the system.
type Role string

const (
	RoleStudent      Role = "student"
	RoleTeacher      Role = "teacher"
	RoleAdmin        Role = "admin"
	RoleReceptionist Role = "receptionist"
)

// DefaultRole is assigned when registration does not name a role.
const DefaultRole = RoleStudent

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin, RoleReceptionist:
		return true
	}
	return false
}
