// internal/api/clubs/handlers.go
package clubs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/api/apiutil"
	appdb "github.com/codr1/Courtside/internal/db"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/models"
)

const clubsQueryTimeout = 5 * time.Second

var (
	queries     *dbgen.Queries
	store       *appdb.DB
	queriesOnce sync.Once

	now = time.Now
)

type createClubRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"required,max=50,slug"`
	Timezone    string `json:"timezone" validate:"omitempty,timezone"`
	AdminUserID int64  `json:"admin_user_id" validate:"gte=0"`
}

// settingsRequest fields left out keep their current value.
type settingsRequest struct {
	Name                 *string `json:"name" validate:"omitempty,min=1,max=100"`
	Timezone             *string `json:"timezone" validate:"omitempty,timezone"`
	SlotMinutes          *int64  `json:"slot_minutes" validate:"omitempty,oneof=15 30 60"`
	MinBookingMinutes    *int64  `json:"min_booking_minutes" validate:"omitempty,gte=15,lte=1440"`
	MaxBookingMinutes    *int64  `json:"max_booking_minutes" validate:"omitempty,gte=15,lte=1440"`
	MaxActiveBookings    *int64  `json:"max_active_bookings" validate:"omitempty,gte=1,lte=100"`
	AllowVisitorBookings *bool   `json:"allow_visitor_bookings"`
	EmailFromAddress     *string `json:"email_from_address" validate:"omitempty,max=254"`
	ReminderHoursBefore  *int64  `json:"reminder_hours_before" validate:"omitempty,gte=0,lte=168"`
}

type clubResponse struct {
	ID                   int64  `json:"id"`
	Name                 string `json:"name"`
	Slug                 string `json:"slug"`
	Timezone             string `json:"timezone"`
	SlotMinutes          int64  `json:"slot_minutes"`
	MinBookingMinutes    int64  `json:"min_booking_minutes"`
	MaxBookingMinutes    int64  `json:"max_booking_minutes"`
	MaxActiveBookings    int64  `json:"max_active_bookings"`
	AllowVisitorBookings bool   `json:"allow_visitor_bookings"`
	EmailFromAddress     string `json:"email_from_address,omitempty"`
	ReminderHoursBefore  int64  `json:"reminder_hours_before"`
	Status               string `json:"status"`
}

type clubDetailResponse struct {
	clubResponse
	Branding models.Branding `json:"branding"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB) {
	if database == nil {
		log.Warn().Msg("clubs.InitHandlers called with nil database; handlers will be unavailable")
		return
	}
	queriesOnce.Do(func() {
		queries = database.Queries
		store = database
	})
}

// POST /api/v1/clubs
func HandleCreateClub(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil || store == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !apiutil.RequireSuperAdmin(w, r) {
		return
	}

	var req createClubRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	req.Timezone = strings.TrimSpace(req.Timezone)

	ctx, cancel := context.WithTimeout(r.Context(), clubsQueryTimeout)
	defer cancel()

	if err := apiutil.ValidateStruct(ctx, req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}

	var club dbgen.Club
	err := store.RunInTx(ctx, func(txdb *appdb.DB) error {
		var err error
		club, err = txdb.Queries.CreateClub(ctx, dbgen.CreateClubParams{
			Name:     req.Name,
			Slug:     req.Slug,
			Timezone: req.Timezone,
		})
		if err != nil {
			if apiutil.IsSQLiteUniqueViolation(err) {
				return apiutil.HandlerError{Status: http.StatusConflict, Message: "A club with that slug already exists", Err: err}
			}
			return fmt.Errorf("create club: %w", err)
		}
		if req.AdminUserID == 0 {
			return nil
		}
		if _, err := txdb.Queries.UpsertUserClubRole(ctx, dbgen.UpsertUserClubRoleParams{
			UserID: req.AdminUserID,
			ClubID: club.ID,
			Role:   models.RoleClubAdmin.String(),
			Status: models.MembershipActive,
		}); err != nil {
			if apiutil.IsSQLiteForeignKeyViolation(err) {
				return apiutil.HandlerError{Status: http.StatusBadRequest, Message: "admin_user_id does not exist", Err: err}
			}
			return fmt.Errorf("assign club admin: %w", err)
		}
		return nil
	})
	if err != nil {
		var handlerErr apiutil.HandlerError
		if errors.As(err, &handlerErr) {
			http.Error(w, handlerErr.Message, handlerErr.Status)
			return
		}
		logger.Error().Err(err).Str("slug", req.Slug).Msg("Failed to create club")
		http.Error(w, "Failed to create club", http.StatusInternalServerError)
		return
	}

	logger.Info().Int64("club_id", club.ID).Str("slug", club.Slug).Msg("Club created")
	if err := apiutil.WriteJSON(w, http.StatusCreated, newClubResponse(club)); err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to write club response")
	}
}

// GET /api/v1/clubs
func HandleListClubs(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), clubsQueryTimeout)
	defer cancel()

	rows, err := q.ListActiveClubs(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list clubs")
		http.Error(w, "Failed to list clubs", http.StatusInternalServerError)
		return
	}
	clubs := make([]clubResponse, 0, len(rows))
	for _, row := range rows {
		clubs = append(clubs, newClubResponse(row))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"clubs": clubs}); err != nil {
		logger.Error().Err(err).Msg("Failed to write clubs response")
	}
}

// GET /api/v1/clubs/{club_id}
func HandleGetClub(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), clubsQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}
	writeClubDetail(ctx, w, r, q, club)
}

// GET /api/v1/club-slugs/{slug}
func HandleGetClubBySlug(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), clubsQueryTimeout)
	defer cancel()

	club, ok := clubBySlug(ctx, w, r, q, r.PathValue("slug"))
	if !ok {
		return
	}
	writeClubDetail(ctx, w, r, q, club)
}

// PUT /api/v1/clubs/{club_id}/settings
func HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req settingsRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), clubsQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}
	if _, ok := apiutil.RequireClubRole(w, r, q, club.ID, models.RoleClubAdmin); !ok {
		return
	}
	if err := apiutil.ValidateStruct(ctx, req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params, err := mergeSettings(club, req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := q.UpdateClubSettings(ctx, params)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to update club settings")
		http.Error(w, "Failed to update club settings", http.StatusInternalServerError)
		return
	}

	logger.Info().Int64("club_id", club.ID).Msg("Club settings updated")
	if err := apiutil.WriteJSON(w, http.StatusOK, newClubResponse(updated)); err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to write club response")
	}
}

// POST /api/v1/clubs/{club_id}/archive
// Archived clubs disappear from listings and stop taking bookings. Their
// data is kept.
func HandleArchiveClub(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !apiutil.RequireSuperAdmin(w, r) {
		return
	}

	clubID, err := apiutil.PathID(r, "club_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), clubsQueryTimeout)
	defer cancel()

	club, err := q.GetClubByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Club not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("club_id", clubID).Msg("Failed to load club")
		http.Error(w, "Failed to archive club", http.StatusInternalServerError)
		return
	}
	if club.Status == models.ClubStatusArchived {
		http.Error(w, "Club is already archived", http.StatusConflict)
		return
	}

	if _, err := q.SetClubStatus(ctx, dbgen.SetClubStatusParams{Status: models.ClubStatusArchived, ID: club.ID}); err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to archive club")
		http.Error(w, "Failed to archive club", http.StatusInternalServerError)
		return
	}
	club.Status = models.ClubStatusArchived

	logger.Info().Int64("club_id", club.ID).Str("slug", club.Slug).Msg("Club archived")
	if err := apiutil.WriteJSON(w, http.StatusOK, newClubResponse(club)); err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to write club response")
	}
}

// mergeSettings applies req over club's current settings and checks that
// the result is consistent.
func mergeSettings(club dbgen.Club, req settingsRequest) (dbgen.UpdateClubSettingsParams, error) {
	params := dbgen.UpdateClubSettingsParams{
		Name:                 club.Name,
		Timezone:             club.Timezone,
		SlotMinutes:          club.SlotMinutes,
		MinBookingMinutes:    club.MinBookingMinutes,
		MaxBookingMinutes:    club.MaxBookingMinutes,
		MaxActiveBookings:    club.MaxActiveBookings,
		AllowVisitorBookings: club.AllowVisitorBookings,
		EmailFromAddress:     club.EmailFromAddress,
		ReminderHoursBefore:  club.ReminderHoursBefore,
		ID:                   club.ID,
	}
	if req.Name != nil {
		params.Name = strings.TrimSpace(*req.Name)
		if params.Name == "" {
			return params, apiutil.FieldError{Field: "name", Reason: "is required"}
		}
	}
	if req.Timezone != nil {
		params.Timezone = strings.TrimSpace(*req.Timezone)
	}
	if req.SlotMinutes != nil {
		params.SlotMinutes = *req.SlotMinutes
	}
	if req.MinBookingMinutes != nil {
		params.MinBookingMinutes = *req.MinBookingMinutes
	}
	if req.MaxBookingMinutes != nil {
		params.MaxBookingMinutes = *req.MaxBookingMinutes
	}
	if req.MaxActiveBookings != nil {
		params.MaxActiveBookings = *req.MaxActiveBookings
	}
	if req.AllowVisitorBookings != nil {
		params.AllowVisitorBookings = *req.AllowVisitorBookings
	}
	if req.EmailFromAddress != nil {
		address := strings.TrimSpace(*req.EmailFromAddress)
		if address != "" && !strings.Contains(address, "@") {
			return params, apiutil.FieldError{Field: "email_from_address", Reason: "must be a valid email address"}
		}
		params.EmailFromAddress = apiutil.ToNullString(address)
	}
	if req.ReminderHoursBefore != nil {
		params.ReminderHoursBefore = *req.ReminderHoursBefore
	}

	if params.MaxBookingMinutes < params.MinBookingMinutes {
		return params, apiutil.FieldError{Field: "max_booking_minutes", Reason: "must be at least min_booking_minutes"}
	}
	if params.MinBookingMinutes%params.SlotMinutes != 0 {
		return params, apiutil.FieldError{Field: "min_booking_minutes", Reason: fmt.Sprintf("must be a multiple of %d", params.SlotMinutes)}
	}
	if params.MaxBookingMinutes%params.SlotMinutes != 0 {
		return params, apiutil.FieldError{Field: "max_booking_minutes", Reason: fmt.Sprintf("must be a multiple of %d", params.SlotMinutes)}
	}
	return params, nil
}

func clubBySlug(ctx context.Context, w http.ResponseWriter, r *http.Request, q *dbgen.Queries, slug string) (dbgen.Club, bool) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		http.Error(w, "Club not found", http.StatusNotFound)
		return dbgen.Club{}, false
	}
	club, err := q.GetClubBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Club not found", http.StatusNotFound)
			return dbgen.Club{}, false
		}
		log.Ctx(r.Context()).Error().Err(err).Str("slug", slug).Msg("Failed to load club")
		http.Error(w, "Failed to load club", http.StatusInternalServerError)
		return dbgen.Club{}, false
	}
	if club.Status != models.ClubStatusActive {
		http.Error(w, "Club not found", http.StatusNotFound)
		return dbgen.Club{}, false
	}
	return club, true
}

func writeClubDetail(ctx context.Context, w http.ResponseWriter, r *http.Request, q *dbgen.Queries, club dbgen.Club) {
	logger := log.Ctx(r.Context())

	branding, err := models.GetClubBranding(ctx, q, club.ID)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to load club branding")
		http.Error(w, "Failed to load club", http.StatusInternalServerError)
		return
	}
	resp := clubDetailResponse{clubResponse: newClubResponse(club), Branding: branding}
	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to write club response")
	}
}

func newClubResponse(club dbgen.Club) clubResponse {
	return clubResponse{
		ID:                   club.ID,
		Name:                 club.Name,
		Slug:                 club.Slug,
		Timezone:             club.Timezone,
		SlotMinutes:          club.SlotMinutes,
		MinBookingMinutes:    club.MinBookingMinutes,
		MaxBookingMinutes:    club.MaxBookingMinutes,
		MaxActiveBookings:    club.MaxActiveBookings,
		AllowVisitorBookings: club.AllowVisitorBookings,
		EmailFromAddress:     club.EmailFromAddress.String,
		ReminderHoursBefore:  club.ReminderHoursBefore,
		Status:               club.Status,
	}
}

func loadQueries() *dbgen.Queries {
	return queries
}
