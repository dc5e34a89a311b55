package auth

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/api/apiutil"
	"github.com/codr1/Courtside/internal/api/authz"
	"github.com/codr1/Courtside/internal/cognito"
	"github.com/codr1/Courtside/internal/ratelimit"
	authtempl "github.com/codr1/Courtside/internal/templates/components/auth"
)

const (
	devBypassSession = "dev-session"
	devBypassCode    = "123456"
	otpTimeout       = 10 * time.Second
)

// OTPProvider sends and checks one-time email codes.
type OTPProvider interface {
	InitiateEmailOTP(ctx context.Context, email string) (string, error)
	VerifyEmailOTP(ctx context.Context, session, email, code string) error
}

// accountProvisioner is implemented by providers that only send codes to
// accounts they already know about.
type accountProvisioner interface {
	CreateUser(ctx context.Context, email string) error
}

// provisionOTPAccount registers email with the OTP provider. Failures are
// logged; the local account still works with its password.
func provisionOTPAccount(ctx context.Context, email string) {
	provisioner, ok := otpProvider.(accountProvisioner)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, otpTimeout)
	defer cancel()
	if err := provisioner.CreateUser(ctx, email); err != nil && !errors.Is(err, cognito.ErrCognitoUserExists) {
		log.Ctx(ctx).Warn().Err(err).Msg("Failed to create sign-in code account")
	}
}

type sendCodeResponse struct {
	Email   string `json:"email"`
	Session string `json:"session,omitempty"`
}

func otpEmail(r *http.Request) string {
	return normalizeEmail(apiutil.FirstNonEmpty(r.FormValue("email"), r.FormValue("identifier")))
}

// POST /api/v1/auth/send-code
// Unknown addresses get the same response as known ones, without a session.
func HandleSendCode(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if queries == nil {
		logger.Error().Msg("Auth queries not initialized")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	email := otpEmail(r)
	if email == "" {
		http.Error(w, "Email is required", http.StatusBadRequest)
		return
	}

	ip := ratelimit.GetClientIP(r, trustProxy())
	if limiter != nil {
		if result := limiter.CheckOTPSend(email, ip); !result.Allowed {
			ratelimit.LogRateLimitExceeded("otp_send", email, ip, result.Reason)
			writeRateLimited(w, result, "Too many code requests. Try again later.")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), otpTimeout)
	defer cancel()

	user, err := queries.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logger.Error().Err(err).Msg("Failed to look up user for code")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	known := err == nil && user.Status == userStatusActive

	var session string
	switch {
	case !known:
		logger.Info().Str("identifier", ratelimit.SanitizeIdentifier(email)).Msg("Code requested for unknown account")
	case isDevMode():
		session = devBypassSession
		logger.Warn().Int64("user_id", user.ID).Msg("Development sign-in code issued")
	case otpProvider == nil:
		http.Error(w, "Passwordless sign-in is not available", http.StatusServiceUnavailable)
		return
	default:
		session, err = otpProvider.InitiateEmailOTP(ctx, email)
		if err != nil {
			if errors.Is(err, cognito.ErrCognitoThrottled) {
				http.Error(w, "Too many code requests. Try again later.", http.StatusTooManyRequests)
				return
			}
			logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to send sign-in code")
			http.Error(w, "Failed to send code", http.StatusBadGateway)
			return
		}
	}

	if limiter != nil {
		limiter.RecordOTPSend(email, ip)
	}

	if apiutil.IsJSONRequest(r) {
		if err := apiutil.WriteJSON(w, http.StatusOK, sendCodeResponse{Email: email, Session: session}); err != nil {
			logger.Error().Err(err).Msg("Failed to write code response")
		}
		return
	}
	apiutil.RenderHTMLComponent(r.Context(), w, authtempl.CodeSent(email, session), nil,
		"Failed to render code form", "Failed to render page")
}

// POST /api/v1/auth/verify-code
func HandleVerifyCode(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if queries == nil {
		logger.Error().Msg("Auth queries not initialized")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	email := otpEmail(r)
	session := r.FormValue("session")
	code := r.FormValue("code")
	if email == "" || session == "" || code == "" {
		http.Error(w, "Email, session and code are required", http.StatusBadRequest)
		return
	}

	ip := ratelimit.GetClientIP(r, trustProxy())
	if limiter != nil {
		if result := limiter.CheckOTPVerify(email, ip); !result.Allowed {
			ratelimit.LogRateLimitExceeded("otp_verify", email, ip, result.Reason)
			writeRateLimited(w, result, "Too many attempts. Try again later.")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), otpTimeout)
	defer cancel()

	verifyErr := verifyCode(ctx, session, email, code)
	if verifyErr != nil {
		if limiter != nil && limiter.RecordOTPVerify(email, ip) {
			ratelimit.LogRateLimitExceeded("otp_verify", email, ip, "lockout_started")
		}
		switch {
		case errors.Is(verifyErr, cognito.ErrCognitoExpiredCode):
			http.Error(w, "Code expired. Request a new one.", http.StatusUnauthorized)
		case errors.Is(verifyErr, errOTPUnavailable):
			http.Error(w, "Passwordless sign-in is not available", http.StatusServiceUnavailable)
		default:
			logger.Info().Err(verifyErr).Str("identifier", ratelimit.SanitizeIdentifier(email)).Msg("Code verification failed")
			http.Error(w, "Invalid code", http.StatusUnauthorized)
		}
		return
	}

	user, err := queries.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Invalid code", http.StatusUnauthorized)
			return
		}
		logger.Error().Err(err).Msg("Failed to look up user after code")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if user.Status != userStatusActive {
		http.Error(w, "Account is disabled", http.StatusForbidden)
		return
	}

	if limiter != nil {
		limiter.ResetVerifyAttempts(email)
	}

	if err := IssueSession(w, authUserFromDB(user, authz.SessionTypeOTP)); err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to issue session")
		http.Error(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}

	logger.Info().Int64("user_id", user.ID).Msg("User signed in with code")
	writeSignedIn(w, r, http.StatusOK, user)
}

var errOTPUnavailable = errors.New("otp provider unavailable")

func verifyCode(ctx context.Context, session, email, code string) error {
	if isDevMode() && session == devBypassSession {
		if code != devBypassCode {
			return cognito.ErrCognitoCodeMismatch
		}
		return nil
	}
	if otpProvider == nil {
		return errOTPUnavailable
	}
	return otpProvider.VerifyEmailOTP(ctx, session, email, code)
}
