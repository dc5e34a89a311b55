package auth

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/jwt"
	"github.com/clerk/clerk-sdk-go/v2/user"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/api/authz"
	"github.com/codr1/Courtside/internal/cognito"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
)

const clerkSessionCookie = "__session"

var clerkInitialized bool

// InitClerk sets the Clerk API key. An empty key leaves Clerk disabled.
func InitClerk(secretKey string) {
	if secretKey == "" {
		log.Warn().Msg("Clerk secret key not configured")
		return
	}
	clerk.SetKey(secretKey)
	clerkInitialized = true
	log.Info().Msg("Clerk SDK initialized")
}

// GET /auth/clerk/callback
// Exchanges a verified Clerk session for a local session. Clerk users must
// already have a local account with a matching email or phone.
func HandleClerkCallback(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if !clerkInitialized {
		logger.Error().Msg("Clerk not configured")
		http.Error(w, "Authentication service not available", http.StatusServiceUnavailable)
		return
	}

	claims, ok := clerk.SessionClaimsFromContext(r.Context())
	if !ok {
		logger.Warn().Msg("No Clerk session claims in context")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	clerkUser, err := user.Get(r.Context(), claims.Subject)
	if err != nil {
		logger.Error().Err(err).Str("clerk_user_id", claims.Subject).Msg("Failed to get Clerk user")
		http.Error(w, "Failed to verify user", http.StatusInternalServerError)
		return
	}

	localUser, err := findLocalUserFromClerk(r.Context(), clerkUser)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Warn().Str("clerk_user_id", claims.Subject).Msg("Clerk user has no matching local account")
			http.Error(w, "Account not found. Register first.", http.StatusForbidden)
			return
		}
		logger.Error().Err(err).Msg("Failed to look up local user")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if localUser.Status != userStatusActive {
		http.Error(w, "Account is disabled", http.StatusForbidden)
		return
	}

	if err := IssueSession(w, authUserFromDB(localUser, authz.SessionTypeClerk)); err != nil {
		logger.Error().Err(err).Int64("user_id", localUser.ID).Msg("Failed to issue session")
		http.Error(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}

	logger.Info().Int64("user_id", localUser.ID).Msg("User signed in with Clerk")
	http.Redirect(w, r, "/", http.StatusFound)
}

// findLocalUserFromClerk tries the primary email, the primary phone, then
// every other email and phone on the Clerk account.
func findLocalUserFromClerk(ctx context.Context, clerkUser *clerk.User) (dbgen.User, error) {
	if queries == nil {
		return dbgen.User{}, errors.New("database not initialized")
	}
	if clerkUser == nil {
		return dbgen.User{}, sql.ErrNoRows
	}

	if clerkUser.PrimaryEmailAddressID != nil {
		for _, email := range clerkUser.EmailAddresses {
			if email == nil || email.ID != *clerkUser.PrimaryEmailAddressID {
				continue
			}
			if found, err := lookupByEmail(ctx, email.EmailAddress); !errors.Is(err, sql.ErrNoRows) {
				return found, err
			}
			break
		}
	}

	if clerkUser.PrimaryPhoneNumberID != nil {
		for _, phone := range clerkUser.PhoneNumbers {
			if phone == nil || phone.ID != *clerkUser.PrimaryPhoneNumberID {
				continue
			}
			if found, err := lookupByPhone(ctx, phone.PhoneNumber); !errors.Is(err, sql.ErrNoRows) {
				return found, err
			}
			break
		}
	}

	for _, email := range clerkUser.EmailAddresses {
		if email == nil {
			continue
		}
		if found, err := lookupByEmail(ctx, email.EmailAddress); !errors.Is(err, sql.ErrNoRows) {
			return found, err
		}
	}

	for _, phone := range clerkUser.PhoneNumbers {
		if phone == nil {
			continue
		}
		if found, err := lookupByPhone(ctx, phone.PhoneNumber); !errors.Is(err, sql.ErrNoRows) {
			return found, err
		}
	}

	return dbgen.User{}, sql.ErrNoRows
}

func lookupByEmail(ctx context.Context, email string) (dbgen.User, error) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return dbgen.User{}, sql.ErrNoRows
	}
	return queries.GetUserByEmail(ctx, normalized)
}

func lookupByPhone(ctx context.Context, phone string) (dbgen.User, error) {
	normalized := cognito.NormalizePhone(phone)
	if normalized == "" {
		return dbgen.User{}, sql.ErrNoRows
	}
	return queries.GetUserByPhone(ctx, sql.NullString{String: normalized, Valid: true})
}

// WithClerkSession verifies the Clerk session cookie when present and adds
// its claims to the request context.
func WithClerkSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !clerkInitialized {
			next.ServeHTTP(w, r)
			return
		}

		sessionToken, err := r.Cookie(clerkSessionCookie)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := jwt.Verify(r.Context(), &jwt.VerifyParams{
			Token: sessionToken.Value,
		})
		if err != nil {
			log.Ctx(r.Context()).Debug().Err(err).Msg("Invalid Clerk session token")
			next.ServeHTTP(w, r)
			return
		}

		ctx := clerk.ContextWithSessionClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
