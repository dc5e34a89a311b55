// internal/api/courts/handlers.go
package courts

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/api/apiutil"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/models"
)

var (
	queries     *dbgen.Queries
	queriesOnce sync.Once
	now         = time.Now
)

const courtsQueryTimeout = 5 * time.Second

type courtRequest struct {
	Name        string `json:"name" validate:"max=100"`
	CourtNumber int64  `json:"court_number" validate:"required,gte=1,lte=999"`
	Surface     string `json:"surface" validate:"max=50"`
	IsIndoor    bool   `json:"is_indoor"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *dbgen.Queries) {
	if q == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = q
	})
}

// GET /api/v1/clubs/{club_id}/courts
// Inactive courts are only listed for club admins.
func HandleListCourts(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}

	role, _, err := apiutil.ClubRole(ctx, q, club.ID)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to resolve club role")
		http.Error(w, "Failed to load courts", http.StatusInternalServerError)
		return
	}

	rows, err := q.ListCourts(ctx, club.ID)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to list courts")
		http.Error(w, "Failed to load courts", http.StatusInternalServerError)
		return
	}

	courts := make([]dbgen.Court, 0, len(rows))
	for _, court := range rows {
		if court.IsActive || role.IsAdmin() {
			courts = append(courts, court)
		}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"courts": courts}); err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to write courts response")
	}
}

// POST /api/v1/clubs/{club_id}/courts
func HandleCreateCourt(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}
	if _, ok := apiutil.RequireClubRole(w, r, q, club.ID, models.RoleClubAdmin); !ok {
		return
	}

	req, err := decodeCourtRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := apiutil.ValidateStruct(ctx, req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	court, err := q.CreateCourt(ctx, dbgen.CreateCourtParams{
		ClubID:      club.ID,
		Name:        strings.TrimSpace(req.Name),
		CourtNumber: req.CourtNumber,
		Surface:     strings.TrimSpace(req.Surface),
		IsIndoor:    req.IsIndoor,
	})
	if err != nil {
		if apiutil.IsSQLiteUniqueViolation(err) {
			http.Error(w, "A court with that number already exists", http.StatusConflict)
			return
		}
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to create court")
		http.Error(w, "Failed to create court", http.StatusInternalServerError)
		return
	}

	logger.Info().Int64("club_id", club.ID).Int64("court_id", court.ID).Msg("Court created")
	writeCourt(w, r, http.StatusCreated, court, "Court created.")
}

// PUT /api/v1/clubs/{club_id}/courts/{court_id}
// An omitted is_active keeps the court's current state.
func HandleUpdateCourt(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}
	if _, ok := apiutil.RequireClubRole(w, r, q, club.ID, models.RoleClubAdmin); !ok {
		return
	}

	existing, ok := loadCourt(ctx, w, r, q, club.ID)
	if !ok {
		return
	}

	req, err := decodeCourtRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := apiutil.ValidateStruct(ctx, req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	isActive := existing.IsActive
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	court, err := q.UpdateCourt(ctx, dbgen.UpdateCourtParams{
		Name:        strings.TrimSpace(req.Name),
		CourtNumber: req.CourtNumber,
		Surface:     strings.TrimSpace(req.Surface),
		IsIndoor:    req.IsIndoor,
		IsActive:    isActive,
		ID:          existing.ID,
		ClubID:      club.ID,
	})
	if err != nil {
		if apiutil.IsSQLiteUniqueViolation(err) {
			http.Error(w, "A court with that number already exists", http.StatusConflict)
			return
		}
		logger.Error().Err(err).Int64("court_id", existing.ID).Msg("Failed to update court")
		http.Error(w, "Failed to update court", http.StatusInternalServerError)
		return
	}

	writeCourt(w, r, http.StatusOK, court, "Court saved.")
}

// POST /api/v1/clubs/{club_id}/courts/{court_id}/deactivate
func HandleDeactivateCourt(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}
	if _, ok := apiutil.RequireClubRole(w, r, q, club.ID, models.RoleClubAdmin); !ok {
		return
	}

	existing, ok := loadCourt(ctx, w, r, q, club.ID)
	if !ok {
		return
	}

	court, err := q.UpdateCourt(ctx, dbgen.UpdateCourtParams{
		Name:        existing.Name,
		CourtNumber: existing.CourtNumber,
		Surface:     existing.Surface,
		IsIndoor:    existing.IsIndoor,
		IsActive:    false,
		ID:          existing.ID,
		ClubID:      club.ID,
	})
	if err != nil {
		logger.Error().Err(err).Int64("court_id", existing.ID).Msg("Failed to deactivate court")
		http.Error(w, "Failed to deactivate court", http.StatusInternalServerError)
		return
	}

	logger.Info().Int64("club_id", club.ID).Int64("court_id", court.ID).Msg("Court deactivated")
	writeCourt(w, r, http.StatusOK, court, "Court deactivated.")
}

// DELETE /api/v1/clubs/{club_id}/courts/{court_id}
// Courts with upcoming bookings or booking history can only be deactivated.
func HandleDeleteCourt(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}
	if _, ok := apiutil.RequireClubRole(w, r, q, club.ID, models.RoleClubAdmin); !ok {
		return
	}

	court, ok := loadCourt(ctx, w, r, q, club.ID)
	if !ok {
		return
	}

	upcoming, err := q.CountFutureBookingsForCourt(ctx, dbgen.CountFutureBookingsForCourtParams{
		CourtID: court.ID,
		Now:     now().UTC(),
	})
	if err != nil {
		logger.Error().Err(err).Int64("court_id", court.ID).Msg("Failed to count court bookings")
		http.Error(w, "Failed to delete court", http.StatusInternalServerError)
		return
	}
	if upcoming > 0 {
		http.Error(w, "Court has upcoming bookings. Deactivate it instead.", http.StatusConflict)
		return
	}

	deleted, err := q.DeleteCourt(ctx, dbgen.DeleteCourtParams{ID: court.ID, ClubID: club.ID})
	if err != nil {
		if apiutil.IsSQLiteForeignKeyViolation(err) {
			http.Error(w, "Court has booking history. Deactivate it instead.", http.StatusConflict)
			return
		}
		logger.Error().Err(err).Int64("court_id", court.ID).Msg("Failed to delete court")
		http.Error(w, "Failed to delete court", http.StatusInternalServerError)
		return
	}
	if deleted == 0 {
		http.Error(w, "Court not found", http.StatusNotFound)
		return
	}

	logger.Info().Int64("club_id", club.ID).Int64("court_id", court.ID).Msg("Court deleted")
	if apiutil.IsJSONRequest(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	apiutil.WriteHTMLFeedback(w, http.StatusOK, "Court deleted.")
}

func loadCourt(ctx context.Context, w http.ResponseWriter, r *http.Request, q *dbgen.Queries, clubID int64) (dbgen.Court, bool) {
	courtID, err := apiutil.PathID(r, "court_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return dbgen.Court{}, false
	}
	court, err := q.GetCourt(ctx, dbgen.GetCourtParams{ID: courtID, ClubID: clubID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Court not found", http.StatusNotFound)
			return dbgen.Court{}, false
		}
		log.Ctx(r.Context()).Error().Err(err).Int64("court_id", courtID).Msg("Failed to load court")
		http.Error(w, "Failed to load court", http.StatusInternalServerError)
		return dbgen.Court{}, false
	}
	return court, true
}

func writeCourt(w http.ResponseWriter, r *http.Request, status int, court dbgen.Court, message string) {
	if apiutil.IsJSONRequest(r) {
		if err := apiutil.WriteJSON(w, status, court); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Int64("court_id", court.ID).Msg("Failed to write court response")
		}
		return
	}
	w.Header().Set("HX-Trigger", "refreshCourts")
	apiutil.WriteHTMLFeedback(w, status, message)
}

func decodeCourtRequest(r *http.Request) (courtRequest, error) {
	if apiutil.IsJSONRequest(r) {
		var req courtRequest
		return req, apiutil.DecodeJSON(r, &req)
	}

	if err := r.ParseForm(); err != nil {
		return courtRequest{}, err
	}

	number, err := apiutil.ParsePositiveInt64Field(r.FormValue("court_number"), "court_number")
	if err != nil {
		return courtRequest{}, err
	}
	isIndoor, err := apiutil.ParseOptionalBool(r.FormValue("is_indoor"), "is_indoor")
	if err != nil {
		return courtRequest{}, err
	}

	req := courtRequest{
		Name:        r.FormValue("name"),
		CourtNumber: number,
		Surface:     r.FormValue("surface"),
		IsIndoor:    isIndoor,
	}
	if raw := strings.TrimSpace(r.FormValue("is_active")); raw != "" {
		isActive, err := apiutil.ParseOptionalBool(raw, "is_active")
		if err != nil {
			return courtRequest{}, err
		}
		req.IsActive = &isActive
	}
	return req, nil
}

func loadQueries() *dbgen.Queries {
	return queries
}
