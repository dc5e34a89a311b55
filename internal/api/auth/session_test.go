package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/codr1/Courtside/internal/api/authz"
)

func TestSignAndParseSession(t *testing.T) {
	setupAuthTest(t, "production")

	issued := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	token, expiresAt, err := signSession(&authz.AuthUser{
		ID:          42,
		Email:       "player@example.com",
		SessionType: authz.SessionTypeOTP,
	}, issued)
	if err != nil {
		t.Fatalf("sign session: %v", err)
	}
	if !expiresAt.Equal(issued.Add(8 * time.Hour)) {
		t.Fatalf("expected 8h expiry, got %v", expiresAt)
	}

	claims, err := parseSession(token, issued.Add(7*time.Hour))
	if err != nil {
		t.Fatalf("parse session: %v", err)
	}
	if claims.Subject != "42" || claims.Email != "player@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.SessionType != authz.SessionTypeOTP {
		t.Fatalf("expected otp session type, got %q", claims.SessionType)
	}

	if _, err := parseSession(token, issued.Add(9*time.Hour)); !errors.Is(err, errInvalidSession) {
		t.Fatalf("expected expired session to be rejected, got %v", err)
	}
}

func TestParseSessionRejectsTampering(t *testing.T) {
	setupAuthTest(t, "production")

	issued := time.Now()
	token, _, err := signSession(&authz.AuthUser{ID: 1}, issued)
	if err != nil {
		t.Fatalf("sign session: %v", err)
	}

	t.Run("wrong key", func(t *testing.T) {
		appConfig.App.SecretKey = "another-secret-key-with-32-characters"
		defer func() { appConfig.App.SecretKey = testSecretKey }()
		if _, err := parseSession(token, issued); err == nil {
			t.Fatal("expected signature mismatch")
		}
	})

	t.Run("modified payload", func(t *testing.T) {
		parts := strings.Split(token, ".")
		parts[1] = base64.RawURLEncoding.EncodeToString(
			[]byte(`{"iss":"courtside","sub":"1","exp":4102444800,"super_admin":true}`))
		if _, err := parseSession(strings.Join(parts, "."), issued); err == nil {
			t.Fatal("expected modified token to be rejected")
		}
	})

	t.Run("unsigned token", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, sessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    sessionIssuer,
				Subject:   "1",
				ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour)),
			},
			IsSuperAdmin: true,
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("build unsigned token: %v", err)
		}
		if _, err := parseSession(unsigned, issued); err == nil {
			t.Fatal("expected alg none to be rejected")
		}
	})

	t.Run("missing expiry", func(t *testing.T) {
		noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{Issuer: sessionIssuer, Subject: "1"},
		}).SignedString([]byte(testSecretKey))
		if err != nil {
			t.Fatalf("build token: %v", err)
		}
		if _, err := parseSession(noExp, issued); err == nil {
			t.Fatal("expected token without exp to be rejected")
		}
	})
}

func TestSignSessionRequiresSecret(t *testing.T) {
	setupAuthTest(t, "production")
	appConfig.App.SecretKey = ""

	if _, _, err := signSession(&authz.AuthUser{ID: 1}, time.Now()); !errors.Is(err, errAuthConfigMissing) {
		t.Fatalf("expected errAuthConfigMissing, got %v", err)
	}
}

func requestWithSession(t *testing.T, user *authz.AuthUser) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := IssueSession(rec, user); err != nil {
		t.Fatalf("issue session: %v", err)
	}
	cookie := sessionCookie(t, rec)
	if cookie == nil {
		t.Fatal("expected session cookie")
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	return req
}

func TestUserFromRequestRefreshesFromDatabase(t *testing.T) {
	tc := setupAuthTest(t, "production")

	req := requestWithSession(t, &authz.AuthUser{ID: tc.userID, Email: "member@test.com"})
	if _, err := tc.db.ExecContext(context.Background(),
		"UPDATE users SET is_super_admin = 1 WHERE id = ?", tc.userID); err != nil {
		t.Fatalf("promote user: %v", err)
	}

	user, err := UserFromRequest(httptest.NewRecorder(), req)
	if err != nil {
		t.Fatalf("user from request: %v", err)
	}
	if user == nil || user.ID != tc.userID {
		t.Fatalf("expected user %d, got %+v", tc.userID, user)
	}
	if !user.IsSuperAdmin {
		t.Fatal("expected super admin flag from database")
	}
	if user.SessionType != authz.SessionTypePassword {
		t.Fatalf("expected password session type, got %q", user.SessionType)
	}
}

func TestUserFromRequestDropsDisabledUser(t *testing.T) {
	tc := setupAuthTest(t, "production")

	req := requestWithSession(t, &authz.AuthUser{ID: tc.userID})
	if _, err := tc.db.ExecContext(context.Background(),
		"UPDATE users SET status = 'disabled' WHERE id = ?", tc.userID); err != nil {
		t.Fatalf("disable user: %v", err)
	}

	rec := httptest.NewRecorder()
	user, err := UserFromRequest(rec, req)
	if err != nil {
		t.Fatalf("user from request: %v", err)
	}
	if user != nil {
		t.Fatalf("expected disabled user to be signed out, got %+v", user)
	}
	if cookie := sessionCookie(t, rec); cookie == nil || cookie.MaxAge >= 0 {
		t.Fatal("expected session cookie to be cleared")
	}
}

func TestUserFromRequestWithoutCookie(t *testing.T) {
	setupAuthTest(t, "production")

	user, err := UserFromRequest(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil || user != nil {
		t.Fatalf("expected anonymous request, got user=%+v err=%v", user, err)
	}
}

func TestUserFromRequestInvalidCookie(t *testing.T) {
	setupAuthTest(t, "production")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "garbage"})
	rec := httptest.NewRecorder()

	user, err := UserFromRequest(rec, req)
	if !errors.Is(err, errInvalidSession) {
		t.Fatalf("expected errInvalidSession, got %v", err)
	}
	if user != nil {
		t.Fatal("expected no user for invalid cookie")
	}
	if sessionCookie(t, rec) == nil {
		t.Fatal("expected invalid cookie to be cleared")
	}
}

func TestSessionCookieNotSecureInDevelopment(t *testing.T) {
	setupAuthTest(t, devEnvironment)

	rec := httptest.NewRecorder()
	if err := IssueSession(rec, &authz.AuthUser{ID: 1}); err != nil {
		t.Fatalf("issue session: %v", err)
	}
	cookie := sessionCookie(t, rec)
	if cookie == nil || cookie.Secure {
		t.Fatalf("expected non-secure cookie in development, got %+v", cookie)
	}

	appConfig.Auth.CookieSecure = true
	rec = httptest.NewRecorder()
	if err := IssueSession(rec, &authz.AuthUser{ID: 1}); err != nil {
		t.Fatalf("issue session: %v", err)
	}
	if cookie := sessionCookie(t, rec); cookie == nil || !cookie.Secure {
		t.Fatal("expected cookie_secure to force Secure")
	}
}
