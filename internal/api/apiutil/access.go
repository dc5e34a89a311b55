package apiutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/api/authz"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/models"
)

type MembershipQueries interface {
	GetUserClubRole(ctx context.Context, arg dbgen.GetUserClubRoleParams) (dbgen.UserClubRole, error)
}

// LoadMembership returns nil when the user has no row for the club.
func LoadMembership(ctx context.Context, q MembershipQueries, userID, clubID int64) (*authz.Membership, error) {
	row, err := q.GetUserClubRole(ctx, dbgen.GetUserClubRoleParams{UserID: userID, ClubID: clubID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load club role: %w", err)
	}
	return MembershipFromDB(row), nil
}

func MembershipFromDB(row dbgen.UserClubRole) *authz.Membership {
	membership := &authz.Membership{
		Role:   models.Role(row.Role),
		Status: row.Status,
	}
	if row.RequestedRole.Valid {
		membership.RequestedRole = models.Role(row.RequestedRole.String)
	}
	return membership
}

// ClubRole resolves the effective role of the request's user in clubID.
// Anonymous requests resolve to VISITOR.
func ClubRole(ctx context.Context, q MembershipQueries, clubID int64) (models.Role, *authz.Membership, error) {
	user := authz.UserFromContext(ctx)
	if user == nil {
		return models.RoleVisitor, nil, nil
	}
	if user.IsSuperAdmin {
		return models.RoleSuperAdmin, nil, nil
	}
	membership, err := LoadMembership(ctx, q, user.ID, clubID)
	if err != nil {
		return "", nil, err
	}
	return authz.EffectiveRole(user, membership), membership, nil
}

// RequireClubRole writes a 401, 403 or 500 and returns false unless the
// request's user acts with at least min in clubID.
func RequireClubRole(w http.ResponseWriter, r *http.Request, q MembershipQueries, clubID int64, min models.Role) (models.Role, bool) {
	user := authz.UserFromContext(r.Context())

	role, _, err := ClubRole(r.Context(), q, clubID)
	if err == nil {
		err = authz.RequireClubRole(r.Context(), role, min)
	}
	if err != nil {
		writeAccessError(w, r, err, clubID, user)
		return "", false
	}
	return role, true
}

// RequireAuthenticated writes a 401 and returns nil when no user is signed in.
func RequireAuthenticated(w http.ResponseWriter, r *http.Request) *authz.AuthUser {
	user := authz.UserFromContext(r.Context())
	if user == nil {
		log.Ctx(r.Context()).Warn().Str("path", r.URL.Path).Msg("Access denied: unauthenticated")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil
	}
	return user
}

func RequireSuperAdmin(w http.ResponseWriter, r *http.Request) bool {
	if err := authz.RequireSuperAdmin(r.Context()); err != nil {
		writeAccessError(w, r, err, 0, authz.UserFromContext(r.Context()))
		return false
	}
	return true
}

func writeAccessError(w http.ResponseWriter, r *http.Request, err error, clubID int64, user *authz.AuthUser) {
	logger := log.Ctx(r.Context())
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		logEvent := logger.Warn().Int64("club_id", clubID)
		logEvent.Msg("Club access denied: unauthenticated")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, authz.ErrForbidden):
		logEvent := logger.Warn().Int64("club_id", clubID)
		if user != nil {
			logEvent = logEvent.Int64("user_id", user.ID)
		}
		logEvent.Msg("Club access denied: forbidden")
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		logEvent := logger.Error().Int64("club_id", clubID).Err(err)
		if user != nil {
			logEvent = logEvent.Int64("user_id", user.ID)
		}
		logEvent.Msg("Club access denied: error")
		http.Error(w, "Failed to authorize request", http.StatusInternalServerError)
	}
}
