package models

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleStudent   UserRole = "student"
	RoleProfessor UserRole = "professor"
)

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleStudent, RoleProfessor:
		return true
	}
	return false
}

// User is a portal account. Department and semester scope course visibility.
type User struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Role       UserRole `json:"role"`
	Department string   `json:"department,omitempty"`
	Semester   int      `json:"semester,omitempty"`
}

// AssociatedWith reports whether a student belongs to the course cohort.
func (u User) AssociatedWith(course Course) bool {
	return u.Role == RoleStudent &&
		u.Department == course.Department &&
		u.Semester == course.Semester
}
