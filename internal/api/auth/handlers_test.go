package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/codr1/Courtside/internal/api/authz"
	"github.com/codr1/Courtside/internal/config"
	"github.com/codr1/Courtside/internal/db"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/ratelimit"
	"github.com/codr1/Courtside/internal/testutil"
)

// NOTE: Tests cannot use t.Parallel() due to shared package state.

const (
	testPassword  = "correct-horse"
	testSecretKey = "test-secret-key-with-at-least-32-chars"
)

type authTestContext struct {
	db     *db.DB
	userID int64
}

func setupAuthTest(t *testing.T, env string) authTestContext {
	t.Helper()

	database := testutil.NewTestDB(t)

	prevConfig := appConfig
	prevQueries := queries
	prevLimiter := limiter
	prevOTP := otpProvider
	prevNow := now
	prevCost := passwordCost
	t.Cleanup(func() {
		appConfig = prevConfig
		queries = prevQueries
		limiter = prevLimiter
		otpProvider = prevOTP
		now = prevNow
		passwordCost = prevCost
	})

	cfg := &config.Config{}
	cfg.App.Environment = env
	cfg.App.SecretKey = testSecretKey
	cfg.Auth.SessionTTL = 8 * time.Hour

	passwordCost = bcrypt.MinCost
	InitHandlers(dbgen.New(database.DB), cfg, nil, nil)

	hash, err := HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	result, err := database.ExecContext(context.Background(),
		`INSERT INTO users (email, phone, first_name, last_name, password_hash)
		 VALUES (?, ?, ?, ?, ?)`,
		"member@test.com", "+12125551234", "Test", "Member", hash,
	)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	userID, _ := result.LastInsertId()

	return authTestContext{db: database, userID: userID}
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	return nil
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestRegisterCreatesUserAndSession(t *testing.T) {
	setupAuthTest(t, "production")

	req := jsonRequest(http.MethodPost, "/api/v1/auth/register",
		`{"email":" New.Player@Example.com ","password":"long-enough","first_name":"New","last_name":"Player","phone":"(212) 555-9999"}`)
	rec := httptest.NewRecorder()

	HandleRegister(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp userResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Email != "new.player@example.com" {
		t.Fatalf("expected normalized email, got %q", resp.Email)
	}
	if resp.Phone != "+12125559999" {
		t.Fatalf("expected E.164 phone, got %q", resp.Phone)
	}

	cookie := sessionCookie(t, rec)
	if cookie == nil {
		t.Fatal("expected session cookie")
	}
	if !cookie.HttpOnly || !cookie.Secure {
		t.Fatalf("expected HttpOnly secure cookie, got %+v", cookie)
	}

	stored, err := queries.GetUserByEmail(context.Background(), "new.player@example.com")
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if !stored.PasswordHash.Valid || stored.PasswordHash.String == "long-enough" {
		t.Fatal("expected password to be stored hashed")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	setupAuthTest(t, "production")

	req := jsonRequest(http.MethodPost, "/api/v1/auth/register",
		`{"email":"MEMBER@test.com","password":"long-enough","first_name":"Dup","last_name":"User"}`)
	rec := httptest.NewRecorder()

	HandleRegister(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterValidation(t *testing.T) {
	setupAuthTest(t, "production")

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"short password", `{"email":"a@b.com","password":"short","first_name":"A","last_name":"B"}`, "password must be at least 8 characters"},
		{"bad email", `{"email":"not-an-email","password":"long-enough","first_name":"A","last_name":"B"}`, "email must be a valid email address"},
		{"missing name", `{"email":"a@b.com","password":"long-enough","first_name":" ","last_name":"B"}`, "first_name is required"},
		{"bad phone", `{"email":"a@b.com","password":"long-enough","first_name":"A","last_name":"B","phone":"12"}`, "phone must be a valid phone number"},
		{"unknown field", `{"email":"a@b.com","password":"long-enough","first_name":"A","last_name":"B","role":"CLUB_ADMIN"}`, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleRegister(rec, jsonRequest(http.MethodPost, "/api/v1/auth/register", tt.body))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.message) {
				t.Fatalf("expected %q in body, got %q", tt.message, rec.Body.String())
			}
		})
	}
}

func TestLoginWithFormSetsSessionAndRedirects(t *testing.T) {
	setupAuthTest(t, "production")

	form := url.Values{}
	form.Set("email", "Member@Test.com")
	form.Set("password", testPassword)
	rec := httptest.NewRecorder()

	HandleLogin(rec, formRequest(http.MethodPost, "/api/v1/auth/login", form))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/" {
		t.Fatalf("expected HX-Redirect to /, got %q", got)
	}
	if sessionCookie(t, rec) == nil {
		t.Fatal("expected session cookie")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	setupAuthTest(t, "production")

	rec := httptest.NewRecorder()
	HandleLogin(rec, jsonRequest(http.MethodPost, "/api/v1/auth/login",
		`{"email":"member@test.com","password":"wrong-password"}`))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
	if sessionCookie(t, rec) != nil {
		t.Fatal("expected no session cookie on failed login")
	}
}

func TestLoginRejectsDisabledUser(t *testing.T) {
	tc := setupAuthTest(t, "production")

	if _, err := tc.db.ExecContext(context.Background(),
		"UPDATE users SET status = 'disabled' WHERE id = ?", tc.userID); err != nil {
		t.Fatalf("disable user: %v", err)
	}

	rec := httptest.NewRecorder()
	HandleLogin(rec, jsonRequest(http.MethodPost, "/api/v1/auth/login",
		`{"email":"member@test.com","password":"correct-horse"}`))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestLoginLockout(t *testing.T) {
	setupAuthTest(t, "production")

	limiter = ratelimit.New(&ratelimit.Config{
		LoginMaxAttempts:  2,
		LoginLockout:      time.Minute,
		LoginMaxIPPerHour: 100,
	})
	t.Cleanup(limiter.Close)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		HandleLogin(rec, jsonRequest(http.MethodPost, "/api/v1/auth/login",
			`{"email":"member@test.com","password":"wrong-password"}`))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected status 401, got %d", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	HandleLogin(rec, jsonRequest(http.MethodPost, "/api/v1/auth/login",
		`{"email":"member@test.com","password":"correct-horse"}`))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429 during lockout, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	setupAuthTest(t, "production")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	HandleLogout(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	cookie := sessionCookie(t, rec)
	if cookie == nil || cookie.MaxAge >= 0 {
		t.Fatalf("expected expired session cookie, got %+v", cookie)
	}
}

func TestMeRequiresAuthentication(t *testing.T) {
	setupAuthTest(t, "production")

	rec := httptest.NewRecorder()
	HandleMe(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestMeListsClubMemberships(t *testing.T) {
	tc := setupAuthTest(t, "production")
	ctx := context.Background()

	club, err := queries.CreateClub(ctx, dbgen.CreateClubParams{Name: "Riverside Tennis", Slug: "riverside", Timezone: "UTC"})
	if err != nil {
		t.Fatalf("create club: %v", err)
	}
	if _, err := tc.db.ExecContext(ctx,
		"INSERT INTO user_club_roles (user_id, club_id, role, status) VALUES (?, ?, 'MEMBER', 'active')",
		tc.userID, club.ID); err != nil {
		t.Fatalf("insert role: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req = req.WithContext(authz.ContextWithUser(req.Context(), &authz.AuthUser{ID: tc.userID}))
	rec := httptest.NewRecorder()

	HandleMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp meResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.User.Email != "member@test.com" {
		t.Fatalf("unexpected user %+v", resp.User)
	}
	if len(resp.Clubs) != 1 || resp.Clubs[0].Slug != "riverside" || resp.Clubs[0].Role != "MEMBER" {
		t.Fatalf("unexpected clubs %+v", resp.Clubs)
	}
}

func TestUpdateProfile(t *testing.T) {
	tc := setupAuthTest(t, "production")

	req := jsonRequest(http.MethodPut, "/api/v1/auth/me", `{"first_name":"Renamed","last_name":"Player","phone":""}`)
	req = req.WithContext(authz.ContextWithUser(req.Context(), &authz.AuthUser{ID: tc.userID}))
	rec := httptest.NewRecorder()

	HandleUpdateProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	user, err := queries.GetUserByID(context.Background(), tc.userID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.FirstName != "Renamed" {
		t.Fatalf("expected first name to change, got %q", user.FirstName)
	}
	if user.Phone.Valid {
		t.Fatalf("expected phone to be cleared, got %q", user.Phone.String)
	}
}

func TestUpdateProfileKeepsPhoneWhenOmitted(t *testing.T) {
	tc := setupAuthTest(t, "production")

	req := jsonRequest(http.MethodPut, "/api/v1/auth/me", `{"first_name":"Test","last_name":"Renamed"}`)
	req = req.WithContext(authz.ContextWithUser(req.Context(), &authz.AuthUser{ID: tc.userID}))
	rec := httptest.NewRecorder()

	HandleUpdateProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	user, err := queries.GetUserByID(context.Background(), tc.userID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Phone.String != "+12125551234" {
		t.Fatalf("expected phone to be kept, got %q", user.Phone.String)
	}
}
