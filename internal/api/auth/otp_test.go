package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/codr1/Courtside/internal/cognito"
	"github.com/codr1/Courtside/internal/config"
)

type fakeOTPProvider struct {
	session   string
	code      string
	initiated []string
}

func (f *fakeOTPProvider) InitiateEmailOTP(_ context.Context, email string) (string, error) {
	f.initiated = append(f.initiated, email)
	return f.session, nil
}

func (f *fakeOTPProvider) VerifyEmailOTP(_ context.Context, session, _, code string) error {
	if session != f.session || code != f.code {
		return cognito.ErrCognitoCodeMismatch
	}
	return nil
}

type provisioningOTPProvider struct {
	fakeOTPProvider
	created []string
	err     error
}

func (p *provisioningOTPProvider) CreateUser(_ context.Context, email string) error {
	p.created = append(p.created, email)
	return p.err
}

func codeForm(email, session, code string) url.Values {
	form := url.Values{}
	form.Set("email", email)
	if session != "" {
		form.Set("session", session)
	}
	if code != "" {
		form.Set("code", code)
	}
	return form
}

func TestDevBypassSendCode(t *testing.T) {
	setupAuthTest(t, devEnvironment)

	rec := httptest.NewRecorder()
	HandleSendCode(rec, formRequest(http.MethodPost, "/api/v1/auth/send-code", codeForm("member@test.com", "", "")))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), devBypassSession) {
		t.Fatalf("expected body to contain dev session %q, got: %s", devBypassSession, rec.Body.String())
	}
}

func TestDevBypassVerifyCode(t *testing.T) {
	setupAuthTest(t, devEnvironment)

	rec := httptest.NewRecorder()
	HandleVerifyCode(rec, formRequest(http.MethodPost, "/api/v1/auth/verify-code",
		codeForm("member@test.com", devBypassSession, devBypassCode)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/" {
		t.Fatalf("expected HX-Redirect to /, got %q", got)
	}
	if sessionCookie(t, rec) == nil {
		t.Fatal("expected session cookie to be set")
	}
}

func TestDevBypassWrongCodeFails(t *testing.T) {
	setupAuthTest(t, devEnvironment)

	rec := httptest.NewRecorder()
	HandleVerifyCode(rec, formRequest(http.MethodPost, "/api/v1/auth/verify-code",
		codeForm("member@test.com", devBypassSession, "999999")))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
	if sessionCookie(t, rec) != nil {
		t.Fatal("wrong code must not sign in")
	}
}

func TestDevBypassDisabledInProduction(t *testing.T) {
	setupAuthTest(t, "production")

	rec := httptest.NewRecorder()
	HandleVerifyCode(rec, formRequest(http.MethodPost, "/api/v1/auth/verify-code",
		codeForm("member@test.com", devBypassSession, devBypassCode)))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 without a provider, got %d", rec.Code)
	}
	if sessionCookie(t, rec) != nil {
		t.Fatal("dev bypass must not work in production")
	}
}

func TestSendAndVerifyCodeWithProvider(t *testing.T) {
	setupAuthTest(t, "production")
	provider := &fakeOTPProvider{session: "provider-session", code: "654321"}
	otpProvider = provider

	req := formRequest(http.MethodPost, "/api/v1/auth/send-code", codeForm("Member@Test.com", "", ""))
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	HandleSendCode(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp sendCodeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Session != "provider-session" {
		t.Fatalf("expected provider session, got %q", resp.Session)
	}
	if len(provider.initiated) != 1 || provider.initiated[0] != "member@test.com" {
		t.Fatalf("expected one code for normalized email, got %v", provider.initiated)
	}

	rec = httptest.NewRecorder()
	HandleVerifyCode(rec, formRequest(http.MethodPost, "/api/v1/auth/verify-code",
		codeForm("member@test.com", resp.Session, "654321")))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if sessionCookie(t, rec) == nil {
		t.Fatal("expected session cookie")
	}
}

func TestSendCodeUnknownEmailDoesNotSend(t *testing.T) {
	setupAuthTest(t, "production")
	provider := &fakeOTPProvider{session: "provider-session", code: "654321"}
	otpProvider = provider

	req := formRequest(http.MethodPost, "/api/v1/auth/send-code", codeForm("stranger@test.com", "", ""))
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	HandleSendCode(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp sendCodeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Session != "" {
		t.Fatalf("expected no session for unknown email, got %q", resp.Session)
	}
	if len(provider.initiated) != 0 {
		t.Fatalf("expected no code to be sent, got %v", provider.initiated)
	}
}

func TestVerifyCodeRequiresFields(t *testing.T) {
	setupAuthTest(t, devEnvironment)

	rec := httptest.NewRecorder()
	HandleVerifyCode(rec, formRequest(http.MethodPost, "/api/v1/auth/verify-code",
		codeForm("member@test.com", "", devBypassCode)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestIsDevMode(t *testing.T) {
	prevConfig := appConfig
	t.Cleanup(func() { appConfig = prevConfig })

	tests := []struct {
		name     string
		env      string
		expected bool
	}{
		{"development", devEnvironment, true},
		{"production", "production", false},
		{"staging", "staging", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appConfig = &config.Config{}
			appConfig.App.Environment = tt.env

			if got := isDevMode(); got != tt.expected {
				t.Fatalf("isDevMode() with env=%q: got %v, want %v", tt.env, got, tt.expected)
			}
		})
	}

	t.Run("nil config", func(t *testing.T) {
		appConfig = nil
		if isDevMode() {
			t.Fatal("isDevMode() with nil config should return false")
		}
	})
}

func TestRegisterProvisionsOTPAccount(t *testing.T) {
	setupAuthTest(t, "production")
	provider := &provisioningOTPProvider{err: cognito.ErrCognitoUserExists}
	otpProvider = provider

	rec := httptest.NewRecorder()
	HandleRegister(rec, jsonRequest(http.MethodPost, "/api/v1/auth/register",
		`{"email":"Coded@Test.com","password":"long-enough","first_name":"Cody","last_name":"Coder"}`))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 even when the account exists upstream, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(provider.created) != 1 || provider.created[0] != "coded@test.com" {
		t.Fatalf("expected one provisioned account for the normalized email, got %v", provider.created)
	}
}
