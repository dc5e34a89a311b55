// internal/api/bookingwindows/handlers.go
package bookingwindows

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/api/apiutil"
	appdb "github.com/codr1/Courtside/internal/db"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/models"
)

const (
	bookingWindowsQueryTimeout = 5 * time.Second
	maxAdvanceDaysLimit        = int64(364)
	rolePathKey                = "role"
)

var (
	queries     *dbgen.Queries
	store       *appdb.DB
	queriesOnce sync.Once
)

type windowSummary struct {
	Role           models.Role `json:"role"`
	MaxAdvanceDays int64       `json:"max_advance_days"`
	IsDefault      bool        `json:"is_default"`
}

type bookingWindowsResponse struct {
	ClubID  int64           `json:"club_id"`
	Windows []windowSummary `json:"windows"`
}

type windowRequest struct {
	MaxAdvanceDays *int64 `json:"max_advance_days"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB) {
	if database == nil {
		log.Warn().Msg("bookingwindows.InitHandlers called with nil database; handlers will be unavailable")
		return
	}
	queriesOnce.Do(func() {
		queries = database.Queries
		store = database
	})
}

// GET /api/v1/clubs/{club_id}/booking-windows
// Roles without a stored window report their default. Admins have no window.
func HandleGetBookingWindows(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingWindowsQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}

	windows, err := q.ListBookingWindows(ctx, club.ID)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to list booking windows")
		http.Error(w, "Failed to load booking windows", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, buildBookingWindowsResponse(club.ID, windows)); err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to write booking windows response")
	}
}

// PUT /api/v1/clubs/{club_id}/booking-windows/{role}
func HandleSetBookingWindow(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	role, err := roleFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req, err := decodeWindowRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.MaxAdvanceDays == nil {
		http.Error(w, "max_advance_days is required", http.StatusBadRequest)
		return
	}
	if err := validateMaxAdvanceDays(*req.MaxAdvanceDays, "max_advance_days"); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingWindowsQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}
	if _, ok := apiutil.RequireClubRole(w, r, q, club.ID, models.RoleClubAdmin); !ok {
		return
	}

	window, err := q.UpsertBookingWindow(ctx, dbgen.UpsertBookingWindowParams{
		ClubID:         club.ID,
		Role:           role.String(),
		MaxAdvanceDays: *req.MaxAdvanceDays,
	})
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Str("role", role.String()).Msg("Failed to upsert booking window")
		http.Error(w, "Failed to update booking window", http.StatusInternalServerError)
		return
	}

	logger.Info().Int64("club_id", club.ID).Str("role", role.String()).Int64("max_advance_days", window.MaxAdvanceDays).Msg("Booking window saved")
	if apiutil.IsJSONRequest(r) {
		response := windowSummary{Role: role, MaxAdvanceDays: window.MaxAdvanceDays}
		if err := apiutil.WriteJSON(w, http.StatusOK, response); err != nil {
			logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to write booking window response")
		}
		return
	}
	apiutil.WriteHTMLFeedback(w, http.StatusOK, "Booking window saved.")
}

// DELETE /api/v1/clubs/{club_id}/booking-windows/{role}
// Deleting a window restores the role's default.
func HandleDeleteBookingWindow(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	role, err := roleFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingWindowsQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}
	if _, ok := apiutil.RequireClubRole(w, r, q, club.ID, models.RoleClubAdmin); !ok {
		return
	}

	deleted, err := q.DeleteBookingWindow(ctx, dbgen.DeleteBookingWindowParams{
		ClubID: club.ID,
		Role:   role.String(),
	})
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Str("role", role.String()).Msg("Failed to delete booking window")
		http.Error(w, "Failed to delete booking window", http.StatusInternalServerError)
		return
	}
	if deleted == 0 {
		http.Error(w, "Booking window not found", http.StatusNotFound)
		return
	}

	response := windowSummary{Role: role, MaxAdvanceDays: int64(models.DefaultWindowDays[role]), IsDefault: true}
	if err := apiutil.WriteJSON(w, http.StatusOK, response); err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to write booking window delete response")
	}
}

// POST /api/v1/clubs/{club_id}/booking-windows
// Saves every role's window from one form in a single transaction. Form
// fields are the lowercase role names, e.g. member=7.
func HandleSaveBookingWindows(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil || store == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	values := make(map[models.Role]int64, len(models.WindowRoles))
	for _, role := range models.WindowRoles {
		field := strings.ToLower(role.String())
		days, err := parseMaxAdvanceDays(r.FormValue(field), field)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		values[role] = days
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingWindowsQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}
	if _, ok := apiutil.RequireClubRole(w, r, q, club.ID, models.RoleClubAdmin); !ok {
		return
	}

	err := store.RunInTx(ctx, func(txdb *appdb.DB) error {
		for _, role := range models.WindowRoles {
			if _, err := txdb.Queries.UpsertBookingWindow(ctx, dbgen.UpsertBookingWindowParams{
				ClubID:         club.ID,
				Role:           role.String(),
				MaxAdvanceDays: values[role],
			}); err != nil {
				return fmt.Errorf("upsert %s window: %w", role, err)
			}
		}
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to save booking windows")
		http.Error(w, "Failed to save booking windows", http.StatusInternalServerError)
		return
	}

	apiutil.WriteHTMLFeedback(w, http.StatusOK, "Booking windows saved.")
}

func buildBookingWindowsResponse(clubID int64, windows []dbgen.BookingWindow) bookingWindowsResponse {
	stored := make(map[models.Role]int64, len(windows))
	for _, window := range windows {
		stored[models.Role(window.Role)] = window.MaxAdvanceDays
	}

	resp := bookingWindowsResponse{ClubID: clubID, Windows: make([]windowSummary, 0, len(models.WindowRoles))}
	for _, role := range models.WindowRoles {
		days, ok := stored[role]
		if !ok {
			days = int64(models.DefaultWindowDays[role])
		}
		resp.Windows = append(resp.Windows, windowSummary{Role: role, MaxAdvanceDays: days, IsDefault: !ok})
	}
	return resp
}

func loadQueries() *dbgen.Queries {
	return queries
}

func parseMaxAdvanceDays(value string, field string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer", field)
	}
	if err := validateMaxAdvanceDays(parsed, field); err != nil {
		return 0, err
	}
	return parsed, nil
}

func validateMaxAdvanceDays(value int64, field string) error {
	if value < 0 {
		return fmt.Errorf("%s must be 0 or greater", field)
	}
	if value > maxAdvanceDaysLimit {
		return fmt.Errorf("%s must be %d or less", field, maxAdvanceDaysLimit)
	}
	return nil
}

func roleFromRequest(r *http.Request) (models.Role, error) {
	role, err := models.ParseRole(r.PathValue(rolePathKey))
	if err != nil || !role.HasWindow() {
		return "", fmt.Errorf("role must be one of VISITOR, MEMBER, COACH")
	}
	return role, nil
}

func decodeWindowRequest(r *http.Request) (windowRequest, error) {
	if apiutil.IsJSONRequest(r) {
		var req windowRequest
		return req, apiutil.DecodeJSON(r, &req)
	}

	if err := r.ParseForm(); err != nil {
		return windowRequest{}, err
	}

	maxAdvanceDays, err := parseMaxAdvanceDays(r.FormValue("max_advance_days"), "max_advance_days")
	if err != nil {
		return windowRequest{}, err
	}
	return windowRequest{MaxAdvanceDays: &maxAdvanceDays}, nil
}
