package domain

// Role values. The users.role column is constrained to exactly these three;
// the same set drives both route guards and post-login redirection.
const (
	RoleAdmin   = "Admin"
	RoleDoctor  = "Doctor"
	RolePatient = "Patient"
)

// KnownRole reports whether s is one of the three recognized roles.
func KnownRole(s string) bool {
	return s == RoleAdmin || s == RoleDoctor || s == RolePatient
}

type User struct {
	ID       string `db:"id"`
	Email    string `db:"email"`
	FullName string `db:"full_name"`
	Hash     string `db:"password_hash"`
	Role     string `db:"role"`
	Active   bool   `db:"active"`
}
