package access

import "strings"

// Global roles see every project and may act on workers without a project.
const (
	RoleAdmin       = "admin"
	RoleHSEDirector = "hse_director"
)

// User is the acting identity as extracted from the bearer token.
type User struct {
	ID   string
	Role string
}

// GlobalScope reports whether the role sees every project.
func (u User) GlobalScope() bool {
	switch strings.ToLower(strings.TrimSpace(u.Role)) {
	case RoleAdmin, RoleHSEDirector:
		return true
	}
	return false
}
