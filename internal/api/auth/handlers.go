package auth

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/api/apiutil"
	"github.com/codr1/Courtside/internal/api/authz"
	"github.com/codr1/Courtside/internal/cognito"
	"github.com/codr1/Courtside/internal/config"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/ratelimit"
)

const (
	authQueryTimeout = 5 * time.Second
	devEnvironment   = "development"
)

var (
	queries     *dbgen.Queries
	appConfig   *config.Config
	limiter     *ratelimit.Limiter
	otpProvider OTPProvider
)

// InitHandlers wires the auth handlers. limiter and otp may be nil.
func InitHandlers(q *dbgen.Queries, cfg *config.Config, rl *ratelimit.Limiter, otp OTPProvider) {
	queries = q
	appConfig = cfg
	limiter = rl
	otpProvider = otp
}

func isDevMode() bool {
	return appConfig != nil && appConfig.App.Environment == devEnvironment
}

func trustProxy() bool {
	return appConfig != nil && appConfig.App.TrustProxy
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name" validate:"required,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=32"`
}

type userResponse struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSuperAdmin bool   `json:"is_super_admin"`
}

type clubMembershipResponse struct {
	ClubID int64  `json:"club_id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

type meResponse struct {
	User  userResponse             `json:"user"`
	Clubs []clubMembershipResponse `json:"clubs"`
}

func newUserResponse(user dbgen.User) userResponse {
	resp := userResponse{
		ID:           user.ID,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSuperAdmin: user.IsSuperAdmin,
	}
	if user.Phone.Valid {
		resp.Phone = user.Phone.String
	}
	return resp
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeOptionalPhone returns a null string for blank input and an error
// when a non-blank value is not a dialable number.
func normalizeOptionalPhone(raw string) (sql.NullString, error) {
	if strings.TrimSpace(raw) == "" {
		return sql.NullString{}, nil
	}
	normalized := cognito.NormalizePhone(raw)
	if normalized == "" {
		return sql.NullString{}, apiutil.FieldError{Field: "phone", Reason: "must be a valid phone number"}
	}
	return sql.NullString{String: normalized, Valid: true}, nil
}

func authUserFromDB(user dbgen.User, sessionType string) *authz.AuthUser {
	return &authz.AuthUser{
		ID:           user.ID,
		Email:        user.Email,
		IsSuperAdmin: user.IsSuperAdmin,
		SessionType:  sessionType,
	}
}

// writeSignedIn responds after a session cookie was issued.
func writeSignedIn(w http.ResponseWriter, r *http.Request, status int, user dbgen.User) {
	if apiutil.IsJSONRequest(r) {
		if err := apiutil.WriteJSON(w, status, newUserResponse(user)); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write auth response")
		}
		return
	}
	w.Header().Set("HX-Redirect", "/")
	apiutil.WriteHTMLFeedback(w, http.StatusOK, "Signed in")
}

func writeRateLimited(w http.ResponseWriter, result ratelimit.LimitResult, message string) {
	seconds := int(math.Ceil(result.RetryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	http.Error(w, message, http.StatusTooManyRequests)
}

// POST /api/v1/auth/register
func HandleRegister(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if queries == nil {
		logger.Error().Msg("Auth queries not initialized")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	req, err := decodeRegisterRequest(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.Email = normalizeEmail(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := apiutil.ValidateStruct(r.Context(), req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	phone, err := normalizeOptionalPhone(req.Phone)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to hash password")
		http.Error(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), authQueryTimeout)
	defer cancel()

	user, err := queries.CreateUser(ctx, dbgen.CreateUserParams{
		Email:        req.Email,
		Phone:        phone,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: sql.NullString{String: hash, Valid: true},
	})
	if err != nil {
		if apiutil.IsSQLiteUniqueViolation(err) {
			http.Error(w, "An account with this email already exists", http.StatusConflict)
			return
		}
		logger.Error().Err(err).Msg("Failed to create user")
		http.Error(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	if err := IssueSession(w, authUserFromDB(user, authz.SessionTypePassword)); err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to issue session")
		http.Error(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}

	provisionOTPAccount(r.Context(), user.Email)

	logger.Info().Int64("user_id", user.ID).Msg("User registered")
	writeSignedIn(w, r, http.StatusCreated, user)
}

// POST /api/v1/auth/login
func HandleLogin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if queries == nil {
		logger.Error().Msg("Auth queries not initialized")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	req, err := decodeLoginRequest(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	ip := ratelimit.GetClientIP(r, trustProxy())
	if limiter != nil {
		if result := limiter.CheckLogin(email, ip); !result.Allowed {
			ratelimit.LogRateLimitExceeded("login", email, ip, result.Reason)
			writeRateLimited(w, result, "Too many sign-in attempts. Try again later.")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), authQueryTimeout)
	defer cancel()

	user, err := queries.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logger.Error().Err(err).Msg("Failed to look up user")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	valid := err == nil &&
		user.Status == userStatusActive &&
		user.PasswordHash.Valid &&
		VerifyPassword(user.PasswordHash.String, req.Password)
	if !valid {
		if limiter != nil && limiter.RecordLoginFailure(email, ip) {
			ratelimit.LogRateLimitExceeded("login", email, ip, "lockout_started")
		}
		logger.Info().Str("identifier", ratelimit.SanitizeIdentifier(email)).Msg("Failed sign-in attempt")
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	if limiter != nil {
		limiter.ResetLogin(email)
	}

	if err := IssueSession(w, authUserFromDB(user, authz.SessionTypePassword)); err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to issue session")
		http.Error(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}

	logger.Info().Int64("user_id", user.ID).Msg("User signed in")
	writeSignedIn(w, r, http.StatusOK, user)
}

// POST /api/v1/auth/logout
func HandleLogout(w http.ResponseWriter, r *http.Request) {
	ClearSession(w)
	if apiutil.IsJSONRequest(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("HX-Redirect", "/")
	apiutil.WriteHTMLFeedback(w, http.StatusOK, "Signed out")
}

// GET /api/v1/auth/me
func HandleMe(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	authUser := apiutil.RequireAuthenticated(w, r)
	if authUser == nil {
		return
	}
	if queries == nil {
		logger.Error().Msg("Auth queries not initialized")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), authQueryTimeout)
	defer cancel()

	user, err := queries.GetUserByID(ctx, authUser.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("user_id", authUser.ID).Msg("Failed to load user")
		http.Error(w, "Failed to load user", http.StatusInternalServerError)
		return
	}

	clubs, err := queries.ListUserClubs(ctx, authUser.ID)
	if err != nil {
		logger.Error().Err(err).Int64("user_id", authUser.ID).Msg("Failed to list user clubs")
		http.Error(w, "Failed to load user", http.StatusInternalServerError)
		return
	}

	resp := meResponse{
		User:  newUserResponse(user),
		Clubs: make([]clubMembershipResponse, 0, len(clubs)),
	}
	for _, club := range clubs {
		resp.Clubs = append(resp.Clubs, clubMembershipResponse{
			ClubID: club.ClubID,
			Name:   club.Name,
			Slug:   club.Slug,
			Role:   club.Role,
			Status: club.Status,
		})
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Msg("Failed to write user response")
	}
}

// PUT /api/v1/auth/me
func HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	authUser := apiutil.RequireAuthenticated(w, r)
	if authUser == nil {
		return
	}
	if queries == nil {
		logger.Error().Msg("Auth queries not initialized")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	req, err := decodeProfileRequest(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := apiutil.ValidateStruct(r.Context(), req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), authQueryTimeout)
	defer cancel()

	current, err := queries.GetUserByID(ctx, authUser.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("user_id", authUser.ID).Msg("Failed to load user")
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	phone := current.Phone
	if req.Phone != nil {
		phone, err = normalizeOptionalPhone(*req.Phone)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	updated, err := queries.UpdateUserProfile(ctx, dbgen.UpdateUserProfileParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     phone,
		ID:        authUser.ID,
	})
	if err != nil {
		logger.Error().Err(err).Int64("user_id", authUser.ID).Msg("Failed to update profile")
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	if !apiutil.IsJSONRequest(r) {
		apiutil.WriteHTMLFeedback(w, http.StatusOK, "Profile updated")
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, newUserResponse(updated)); err != nil {
		logger.Error().Err(err).Msg("Failed to write profile response")
	}
}

func decodeRegisterRequest(r *http.Request) (registerRequest, error) {
	var req registerRequest
	if apiutil.IsJSONRequest(r) {
		err := apiutil.DecodeJSON(r, &req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Email = r.FormValue("email")
	req.Password = r.FormValue("password")
	req.FirstName = apiutil.FirstNonEmpty(r.FormValue("first_name"), r.FormValue("firstName"))
	req.LastName = apiutil.FirstNonEmpty(r.FormValue("last_name"), r.FormValue("lastName"))
	req.Phone = r.FormValue("phone")
	return req, nil
}

func decodeLoginRequest(r *http.Request) (loginRequest, error) {
	var req loginRequest
	if apiutil.IsJSONRequest(r) {
		err := apiutil.DecodeJSON(r, &req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Email = apiutil.FirstNonEmpty(r.FormValue("email"), r.FormValue("identifier"))
	req.Password = r.FormValue("password")
	return req, nil
}

func decodeProfileRequest(r *http.Request) (profileRequest, error) {
	var req profileRequest
	if apiutil.IsJSONRequest(r) {
		err := apiutil.DecodeJSON(r, &req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.FirstName = apiutil.FirstNonEmpty(r.FormValue("first_name"), r.FormValue("firstName"))
	req.LastName = apiutil.FirstNonEmpty(r.FormValue("last_name"), r.FormValue("lastName"))
	if _, ok := r.Form["phone"]; ok {
		phone := r.FormValue("phone")
		req.Phone = &phone
	}
	return req, nil
}
