package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/codr1/Courtside/internal/api/authz"
)

const (
	sessionCookieName = "courtside_session"
	sessionIssuer     = "courtside"
	defaultSessionTTL = 8 * time.Hour
	userStatusActive  = "active"
)

var (
	errAuthConfigMissing = errors.New("auth configuration missing")
	errInvalidSession    = errors.New("invalid session token")
)

// now is replaced in tests.
var now = time.Now

type sessionClaims struct {
	jwt.RegisteredClaims
	Email        string `json:"email"`
	IsSuperAdmin bool   `json:"super_admin,omitempty"`
	SessionType  string `json:"session_type"`
}

func sessionTTL() time.Duration {
	if appConfig == nil || appConfig.Auth.SessionTTL <= 0 {
		return defaultSessionTTL
	}
	return appConfig.Auth.SessionTTL
}

func isSecureCookie() bool {
	if appConfig == nil {
		return true
	}
	return appConfig.Auth.CookieSecure || !appConfig.IsDevelopment()
}

func signingKey() ([]byte, error) {
	if appConfig == nil || appConfig.App.SecretKey == "" {
		return nil, errAuthConfigMissing
	}
	return []byte(appConfig.App.SecretKey), nil
}

func signSession(user *authz.AuthUser, issuedAt time.Time) (string, time.Time, error) {
	key, err := signingKey()
	if err != nil {
		return "", time.Time{}, err
	}

	expiresAt := issuedAt.Add(sessionTTL())
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email:        user.Email,
		IsSuperAdmin: user.IsSuperAdmin,
		SessionType:  normalizeSessionType(user.SessionType),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return token, expiresAt, nil
}

func parseSession(token string, at time.Time) (*sessionClaims, error) {
	key, err := signingKey()
	if err != nil {
		return nil, err
	}

	var claims sessionClaims
	_, err = jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return at }),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidSession, err)
	}
	if _, err := strconv.ParseInt(claims.Subject, 10, 64); err != nil {
		return nil, fmt.Errorf("%w: bad subject", errInvalidSession)
	}
	claims.SessionType = normalizeSessionType(claims.SessionType)
	return &claims, nil
}

func normalizeSessionType(sessionType string) string {
	switch sessionType {
	case authz.SessionTypeOTP, authz.SessionTypeClerk:
		return sessionType
	default:
		return authz.SessionTypePassword
	}
}

// IssueSession sets a signed session cookie for user.
func IssueSession(w http.ResponseWriter, user *authz.AuthUser) error {
	if w == nil || user == nil {
		return errors.New("session requires response writer and user")
	}

	token, expiresAt, err := signSession(user, now())
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureCookie(),
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
		MaxAge:   int(sessionTTL().Seconds()),
	})
	return nil
}

func ClearSession(w http.ResponseWriter) {
	if w == nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureCookie(),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// UserFromRequest returns the signed-in user, or nil for anonymous requests.
// Invalid or stale cookies are cleared. When queries are available the
// user row is re-read so disabled accounts and revoked super admin rights
// take effect before the token expires.
func UserFromRequest(w http.ResponseWriter, r *http.Request) (*authz.AuthUser, error) {
	if r == nil {
		return nil, nil
	}

	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, err
	}

	claims, err := parseSession(cookie.Value, now())
	if err != nil {
		ClearSession(w)
		return nil, err
	}

	userID, _ := strconv.ParseInt(claims.Subject, 10, 64)
	user := &authz.AuthUser{
		ID:           userID,
		Email:        claims.Email,
		IsSuperAdmin: claims.IsSuperAdmin,
		SessionType:  claims.SessionType,
	}

	if queries == nil {
		return user, nil
	}

	row, err := queries.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			ClearSession(w)
			return nil, nil
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}
	if row.Status != userStatusActive {
		ClearSession(w)
		return nil, nil
	}

	user.Email = row.Email
	user.IsSuperAdmin = row.IsSuperAdmin
	return user, nil
}
