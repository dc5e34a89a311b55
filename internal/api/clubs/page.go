// internal/api/clubs/page.go
package clubs

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/api/apiutil"
	"github.com/codr1/Courtside/internal/api/authz"
	"github.com/codr1/Courtside/internal/api/htmx"
	"github.com/codr1/Courtside/internal/availability"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/models"
	clubtempl "github.com/codr1/Courtside/internal/templates/components/clubs"
	"github.com/codr1/Courtside/internal/templates/components/courtgrid"
	"github.com/codr1/Courtside/internal/templates/layouts"
)

type availabilityResponse struct {
	Role models.Role `json:"role"`
	availability.DayGrid
}

// GET /api/v1/clubs/{club_id}/availability?date=YYYY-MM-DD
// Slots are classified for the caller's role. Anonymous callers see the
// visitor view.
func HandleAvailability(w http.ResponseWriter, r *http.Request) {
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
	grid, role, ok := loadGrid(ctx, w, r, q, club)
	if !ok {
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, availabilityResponse{Role: role, DayGrid: grid}); err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to write availability response")
	}
}

// GET /
// A club subdomain shows that club's page; the bare domain lists clubs.
func HandleHome(w http.ResponseWriter, r *http.Request) {
	if authz.ClubFromContext(r.Context()) != nil {
		HandleClubPage(w, r)
		return
	}

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
	entries := make([]clubtempl.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, clubtempl.Entry{Name: row.Name, Slug: row.Slug})
	}

	page := layouts.Page{Title: "Courtside", Branding: models.DefaultBranding()}
	apiutil.RenderHTMLComponent(r.Context(), w, layouts.Base(page, clubtempl.Directory(entries)), nil, "Failed to render club directory", "Failed to render page")
}

// GET /clubs/{slug}
// GET / on a club subdomain
// htmx requests receive only the grid fragment.
func HandleClubPage(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slug := r.PathValue("slug")
	if slug == "" {
		if current := authz.ClubFromContext(r.Context()); current != nil {
			slug = current.Slug
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), clubsQueryTimeout)
	defer cancel()

	club, ok := clubBySlug(ctx, w, r, q, slug)
	if !ok {
		return
	}
	grid, role, ok := loadGrid(ctx, w, r, q, club)
	if !ok {
		return
	}
	loc, err := apiutil.ClubLocation(club)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Invalid club timezone")
		http.Error(w, "Failed to load availability", http.StatusInternalServerError)
		return
	}

	signedIn := authz.UserFromContext(r.Context()) != nil
	data := courtgrid.NewGridData(club.ID, club.Slug, grid, loc, signedIn, role.String())

	if htmx.IsRequest(r) {
		apiutil.RenderHTMLComponent(r.Context(), w, courtgrid.Grid(data), nil, "Failed to render court grid", "Failed to render court grid")
		return
	}

	branding, err := models.GetClubBranding(ctx, q, club.ID)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to load club branding")
		http.Error(w, "Failed to load club", http.StatusInternalServerError)
		return
	}
	page := layouts.Page{
		Title:    "Book a court",
		ClubName: club.Name,
		ClubSlug: club.Slug,
		Branding: branding,
	}
	apiutil.RenderHTMLComponent(r.Context(), w, layouts.Base(page, courtgrid.Page(data)), nil, "Failed to render club page", "Failed to render club page")
}

// loadGrid resolves the caller's role and builds the grid for the date in
// the query string, defaulting to the club's today.
func loadGrid(ctx context.Context, w http.ResponseWriter, r *http.Request, q *dbgen.Queries, club dbgen.Club) (availability.DayGrid, models.Role, bool) {
	logger := log.Ctx(r.Context())

	role, _, err := apiutil.ClubRole(ctx, q, club.ID)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to resolve club role")
		http.Error(w, "Failed to load availability", http.StatusInternalServerError)
		return availability.DayGrid{}, "", false
	}

	loc, err := apiutil.ClubLocation(club)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Invalid club timezone")
		http.Error(w, "Failed to load availability", http.StatusInternalServerError)
		return availability.DayGrid{}, "", false
	}
	current := now()
	day := availability.DateOf(current.In(loc))
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		day, err = availability.ParseDate(raw)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return availability.DayGrid{}, "", false
		}
	}

	schedule, err := apiutil.LoadSchedule(ctx, q, club, day, day)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Str("date", day.String()).Msg("Failed to load schedule")
		http.Error(w, "Failed to load availability", http.StatusInternalServerError)
		return availability.DayGrid{}, "", false
	}
	return schedule.Grid(day, role, current), role, true
}
