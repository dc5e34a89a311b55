package auth

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clerk/clerk-sdk-go/v2"
)

func setupClerkTest(t *testing.T) {
	t.Helper()

	tc := setupAuthTest(t, "production")

	prevClerkInit := clerkInitialized
	t.Cleanup(func() {
		clerkInitialized = prevClerkInit
	})

	ctx := context.Background()
	if _, err := tc.db.ExecContext(ctx,
		`INSERT INTO users (email, first_name, last_name) VALUES (?, ?, ?)`,
		"emailonly@test.com", "Email", "Only",
	); err != nil {
		t.Fatalf("insert email-only user: %v", err)
	}
	if _, err := tc.db.ExecContext(ctx,
		`INSERT INTO users (email, phone, first_name, last_name) VALUES (?, ?, ?, ?)`,
		"phone@test.com", "+13105559876", "Phone", "Holder",
	); err != nil {
		t.Fatalf("insert phone user: %v", err)
	}
}

func TestInitClerk(t *testing.T) {
	prevClerkInit := clerkInitialized
	t.Cleanup(func() {
		clerkInitialized = prevClerkInit
	})

	clerkInitialized = false
	InitClerk("")
	if clerkInitialized {
		t.Fatal("expected clerkInitialized to be false with empty key")
	}

	InitClerk("sk_test_xxx")
	if !clerkInitialized {
		t.Fatal("expected clerkInitialized to be true with a key")
	}
}

func TestFindLocalUserFromClerk(t *testing.T) {
	setupClerkTest(t)
	ctx := context.Background()

	primaryEmail := "email_1"
	primaryPhone := "phone_1"

	tests := []struct {
		name      string
		user      *clerk.User
		wantEmail string
	}{
		{
			name: "primary email is case insensitive",
			user: &clerk.User{
				PrimaryEmailAddressID: &primaryEmail,
				EmailAddresses:        []*clerk.EmailAddress{{ID: primaryEmail, EmailAddress: "Member@Test.com"}},
			},
			wantEmail: "member@test.com",
		},
		{
			name: "primary phone is normalized",
			user: &clerk.User{
				PrimaryPhoneNumberID: &primaryPhone,
				PhoneNumbers:         []*clerk.PhoneNumber{{ID: primaryPhone, PhoneNumber: "(212) 555-1234"}},
			},
			wantEmail: "member@test.com",
		},
		{
			name: "secondary email after primary misses",
			user: &clerk.User{
				PrimaryEmailAddressID: &primaryEmail,
				EmailAddresses: []*clerk.EmailAddress{
					{ID: primaryEmail, EmailAddress: "notfound@test.com"},
					{ID: "email_2", EmailAddress: "emailonly@test.com"},
				},
			},
			wantEmail: "emailonly@test.com",
		},
		{
			name: "secondary phone after primary misses",
			user: &clerk.User{
				PrimaryPhoneNumberID: &primaryPhone,
				PhoneNumbers: []*clerk.PhoneNumber{
					{ID: primaryPhone, PhoneNumber: "+14155550000"},
					{ID: "phone_2", PhoneNumber: "(310) 555-9876"},
				},
			},
			wantEmail: "phone@test.com",
		},
		{
			name: "invalid phone falls through to email",
			user: &clerk.User{
				PrimaryPhoneNumberID:  &primaryPhone,
				PhoneNumbers:          []*clerk.PhoneNumber{{ID: primaryPhone, PhoneNumber: "invalid-phone"}},
				PrimaryEmailAddressID: &primaryEmail,
				EmailAddresses:        []*clerk.EmailAddress{{ID: primaryEmail, EmailAddress: "member@test.com"}},
			},
			wantEmail: "member@test.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := findLocalUserFromClerk(ctx, tt.user)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.Email != tt.wantEmail {
				t.Fatalf("expected %s, got %s", tt.wantEmail, user.Email)
			}
		})
	}

	t.Run("no match returns ErrNoRows", func(t *testing.T) {
		_, err := findLocalUserFromClerk(ctx, &clerk.User{
			EmailAddresses: []*clerk.EmailAddress{{ID: "email_9", EmailAddress: "doesnotexist@test.com"}},
		})
		if !errors.Is(err, sql.ErrNoRows) {
			t.Fatalf("expected sql.ErrNoRows, got %v", err)
		}
	})

	t.Run("empty user returns ErrNoRows", func(t *testing.T) {
		if _, err := findLocalUserFromClerk(ctx, &clerk.User{}); !errors.Is(err, sql.ErrNoRows) {
			t.Fatalf("expected sql.ErrNoRows, got %v", err)
		}
	})
}

func TestClerkCallbackWithoutClerk(t *testing.T) {
	setupClerkTest(t)
	clerkInitialized = false

	rec := httptest.NewRecorder()
	HandleClerkCallback(rec, httptest.NewRequest(http.MethodGet, "/auth/clerk/callback", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}

func TestClerkCallbackWithoutClaimsRedirects(t *testing.T) {
	setupClerkTest(t)
	clerkInitialized = true

	rec := httptest.NewRecorder()
	HandleClerkCallback(rec, httptest.NewRequest(http.MethodGet, "/auth/clerk/callback", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", rec.Code)
	}
	if sessionCookie(t, rec) != nil {
		t.Fatal("expected no session without Clerk claims")
	}
}

func TestWithClerkSessionPassesThroughWhenDisabled(t *testing.T) {
	prevClerkInit := clerkInitialized
	t.Cleanup(func() { clerkInitialized = prevClerkInit })
	clerkInitialized = false

	called := false
	handler := WithClerkSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := clerk.SessionClaimsFromContext(r.Context()); ok {
			t.Fatal("expected no claims")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: clerkSessionCookie, Value: "token"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Fatal("expected next handler to run")
	}
}
