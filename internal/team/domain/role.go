package domain

import "fmt"

// Role is the ordered membership role hierarchy. OWNER sits above normal team
// administration and is excluded from admin-required counting.
type Role string

const (
	RoleGuest   Role = "GUEST"
	RoleMember  Role = "MEMBER"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
	RoleOwner   Role = "OWNER"
)

var roleRanks = map[Role]int{
	RoleGuest:   0,
	RoleMember:  1,
	RoleManager: 2,
	RoleAdmin:   3,
	RoleOwner:   4,
}

// Rank returns the role's position in the privilege order.
func (r Role) Rank() int {
	return roleRanks[r]
}

// AtLeast reports whether r ranks at or above other.
func (r Role) AtLeast(other Role) bool {
	return r.Rank() >= other.Rank()
}

func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

func ParseRole(raw string) (Role, error) {
	role := Role(raw)
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", raw)
	}
	return role, nil
}
