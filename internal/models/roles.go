package models

import (
	"fmt"
	"strings"
)

// Role is a user's permission level within a club, or globally for SUPER_ADMIN.
type Role string

const (
	RoleVisitor    Role = "VISITOR"
	RoleMember     Role = "MEMBER"
	RoleCoach      Role = "COACH"
	RoleClubAdmin  Role = "CLUB_ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Membership statuses stored in user_club_roles.status.
const (
	MembershipActive  = "active"
	MembershipPending = "pending"
)

var roleRank = map[Role]int{
	RoleVisitor:    0,
	RoleMember:     1,
	RoleCoach:      2,
	RoleClubAdmin:  3,
	RoleSuperAdmin: 4,
}

// DefaultWindowDays is used when a club has no booking_windows row for a role.
var DefaultWindowDays = map[Role]int{
	RoleVisitor: 2,
	RoleMember:  7,
	RoleCoach:   14,
}

// WindowRoles lists the roles that have a booking window, in display order.
var WindowRoles = []Role{RoleVisitor, RoleMember, RoleCoach}

func ParseRole(value string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(value)))
	if _, ok := roleRank[role]; !ok {
		return "", fmt.Errorf("unknown role %q", value)
	}
	return role, nil
}

// ParseClubRole accepts only roles that can be stored in user_club_roles.
func ParseClubRole(value string) (Role, error) {
	role, err := ParseRole(value)
	if err != nil {
		return "", err
	}
	if role == RoleSuperAdmin {
		return "", fmt.Errorf("role %s cannot be assigned within a club", role)
	}
	return role, nil
}

func (r Role) String() string {
	return string(r)
}

func (r Role) IsAdmin() bool {
	return r == RoleClubAdmin || r == RoleSuperAdmin
}

func (r Role) HasWindow() bool {
	_, ok := DefaultWindowDays[r]
	return ok
}

// AtLeast reports whether r ranks the same as or above other.
func (r Role) AtLeast(other Role) bool {
	return roleRank[r] >= roleRank[other]
}
