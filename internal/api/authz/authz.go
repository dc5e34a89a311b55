package authz

import (
	"context"
	"errors"
	"strconv"

	"github.com/codr1/Courtside/internal/models"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// Session types record how a user signed in.
const (
	SessionTypePassword = "password"
	SessionTypeOTP      = "otp"
	SessionTypeClerk    = "clerk"
)

type AuthUser struct {
	ID           int64
	Email        string
	IsSuperAdmin bool
	SessionType  string
}

// Membership is a user's standing in one club.
type Membership struct {
	Role          models.Role
	Status        string
	RequestedRole models.Role
}

type userContextKey struct{}
type clubContextKey struct{}

// Club represents the current club from subdomain routing.
type Club struct {
	ID       int64
	Name     string
	Slug     string
	Timezone string
}

func ContextWithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

func ContextWithClub(ctx context.Context, club *Club) context.Context {
	return context.WithValue(ctx, clubContextKey{}, club)
}

func ClubFromContext(ctx context.Context) *Club {
	if ctx == nil {
		return nil
	}
	club, ok := ctx.Value(clubContextKey{}).(*Club)
	if !ok {
		return nil
	}
	return club
}

// ClubIDString returns the club ID as a string, or empty if no club in context.
func ClubIDString(ctx context.Context) string {
	if club := ClubFromContext(ctx); club != nil {
		return strconv.FormatInt(club.ID, 10)
	}
	return ""
}

// UserFromContext retrieves the AuthUser stored in ctx.
// It returns nil if ctx is nil, if no user is stored, or if the stored value has a different type.
func UserFromContext(ctx context.Context) *AuthUser {
	if ctx == nil {
		return nil
	}

	user, ok := ctx.Value(userContextKey{}).(*AuthUser)
	if !ok {
		return nil
	}

	return user
}

func IsSuperAdmin(user *AuthUser) bool {
	return user != nil && user.IsSuperAdmin
}

// EffectiveRole resolves the role a user acts with inside a club. Users
// without a membership act as visitors. A pending request keeps the
// current role until it is approved.
func EffectiveRole(user *AuthUser, membership *Membership) models.Role {
	if IsSuperAdmin(user) {
		return models.RoleSuperAdmin
	}
	if membership == nil || membership.Role == "" {
		return models.RoleVisitor
	}
	return membership.Role
}

func RequireAuthenticated(ctx context.Context) error {
	if UserFromContext(ctx) == nil {
		return ErrUnauthenticated
	}
	return nil
}

func RequireSuperAdmin(ctx context.Context) error {
	user := UserFromContext(ctx)
	if user == nil {
		return ErrUnauthenticated
	}
	if !user.IsSuperAdmin {
		return ErrForbidden
	}
	return nil
}

// RequireClubRole checks that the user in ctx acts with at least min in a
// club where their effective role is role.
func RequireClubRole(ctx context.Context, role models.Role, min models.Role) error {
	if UserFromContext(ctx) == nil {
		return ErrUnauthenticated
	}
	if !role.AtLeast(min) {
		return ErrForbidden
	}
	return nil
}

// CanManageBooking reports whether user may change a booking owned by ownerID.
func CanManageBooking(user *AuthUser, role models.Role, ownerID int64) bool {
	if user == nil {
		return false
	}
	return user.ID == ownerID || role.IsAdmin()
}
