// internal/api/themes/handlers.go
package themes

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
	"github.com/codr1/Courtside/internal/api/htmx"
	appdb "github.com/codr1/Courtside/internal/db"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/models"
	themetempl "github.com/codr1/Courtside/internal/templates/components/themes"
	"github.com/codr1/Courtside/internal/templates/layouts"
)

const brandingQueryTimeout = 5 * time.Second

var (
	queries     brandingQueries
	queriesOnce sync.Once
)

type brandingQueries interface {
	apiutil.ClubQueries
	apiutil.MembershipQueries
	models.BrandingQueries
	GetClubBySlug(ctx context.Context, slug string) (dbgen.Club, error)
	UpsertClubBranding(ctx context.Context, arg dbgen.UpsertClubBrandingParams) (dbgen.ClubBranding, error)
}

type brandingRequest struct {
	LogoURL        string `json:"logo_url"`
	Tagline        string `json:"tagline"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
	AccentColor    string `json:"accent_color"`
}

type presetRequest struct {
	Name string `json:"name"`
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

// GET /api/v1/clubs/{club_id}/branding
func HandleGetBranding(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), brandingQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}

	branding, err := models.GetClubBranding(ctx, q, club.ID)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to load branding")
		http.Error(w, "Failed to load branding", http.StatusInternalServerError)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, branding); err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to write branding response")
	}
}

// GET /api/v1/branding/presets
func HandleListPresets(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	presets, err := appdb.ParseBrandingPresets()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load branding presets")
		http.Error(w, "Failed to load branding presets", http.StatusInternalServerError)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"presets": presets}); err != nil {
		logger.Error().Err(err).Msg("Failed to write presets response")
	}
}

// PUT /api/v1/clubs/{club_id}/branding
func HandleUpdateBranding(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	req, err := decodeBrandingRequest(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), brandingQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}
	if _, ok := apiutil.RequireClubRole(w, r, q, club.ID, models.RoleClubAdmin); !ok {
		return
	}

	branding := models.Branding{
		ClubID:         club.ID,
		LogoURL:        strings.TrimSpace(req.LogoURL),
		Tagline:        strings.TrimSpace(req.Tagline),
		PrimaryColor:   strings.TrimSpace(req.PrimaryColor),
		SecondaryColor: strings.TrimSpace(req.SecondaryColor),
		AccentColor:    strings.TrimSpace(req.AccentColor),
	}
	if err := branding.Validate(); err != nil {
		writeFeedback(w, r, http.StatusBadRequest, err.Error())
		return
	}

	saved, ok := saveBranding(ctx, w, r, q, branding)
	if !ok {
		return
	}
	writeBranding(w, r, saved, "Branding saved.")
}

// POST /api/v1/clubs/{club_id}/branding/preset
// Applies a preset's colors and keeps the club's logo and tagline.
func HandleApplyPreset(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	req, err := decodePresetRequest(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeFeedback(w, r, http.StatusBadRequest, "name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), brandingQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}
	if _, ok := apiutil.RequireClubRole(w, r, q, club.ID, models.RoleClubAdmin); !ok {
		return
	}

	preset, found, err := appdb.FindBrandingPreset(req.Name)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load branding presets")
		http.Error(w, "Failed to load branding presets", http.StatusInternalServerError)
		return
	}
	if !found {
		writeFeedback(w, r, http.StatusNotFound, "Preset not found")
		return
	}

	current, err := models.GetClubBranding(ctx, q, club.ID)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to load branding")
		http.Error(w, "Failed to load branding", http.StatusInternalServerError)
		return
	}

	saved, ok := saveBranding(ctx, w, r, q, preset.Apply(current))
	if !ok {
		return
	}
	logger.Info().Int64("club_id", club.ID).Str("preset", preset.Name).Msg("Branding preset applied")
	writeBranding(w, r, saved, "Preset "+preset.Name+" applied.")
}

// GET /clubs/{slug}/admin/branding
func HandleBrandingPage(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), brandingQueryTimeout)
	defer cancel()

	club, err := q.GetClubBySlug(ctx, strings.ToLower(strings.TrimSpace(r.PathValue("slug"))))
	if err != nil || club.Status != models.ClubStatusActive {
		if err == nil || errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Club not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Msg("Failed to load club")
		http.Error(w, "Failed to load club", http.StatusInternalServerError)
		return
	}
	if _, ok := apiutil.RequireClubRole(w, r, q, club.ID, models.RoleClubAdmin); !ok {
		return
	}

	branding, err := models.GetClubBranding(ctx, q, club.ID)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to load branding")
		http.Error(w, "Failed to load branding", http.StatusInternalServerError)
		return
	}
	presets, err := appdb.ParseBrandingPresets()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load branding presets")
		presets = nil
	}

	editor := themetempl.Editor(themetempl.EditorData{
		ClubID:   club.ID,
		Branding: branding,
		Presets:  themetempl.NewPresets(presets, branding),
	})
	if htmx.IsRequest(r) {
		apiutil.RenderHTMLComponent(r.Context(), w, editor, nil, "Failed to render branding editor", "Failed to render page")
		return
	}
	page := layouts.Page{Title: "Branding", ClubName: club.Name, ClubSlug: club.Slug, Branding: branding}
	apiutil.RenderHTMLComponent(r.Context(), w, layouts.Base(page, editor), nil, "Failed to render branding page", "Failed to render page")
}

func saveBranding(ctx context.Context, w http.ResponseWriter, r *http.Request, q brandingQueries, branding models.Branding) (models.Branding, bool) {
	row, err := q.UpsertClubBranding(ctx, dbgen.UpsertClubBrandingParams{
		ClubID:         branding.ClubID,
		LogoUrl:        branding.LogoURL,
		Tagline:        branding.Tagline,
		PrimaryColor:   branding.PrimaryColor,
		SecondaryColor: branding.SecondaryColor,
		AccentColor:    branding.AccentColor,
	})
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Int64("club_id", branding.ClubID).Msg("Failed to save branding")
		http.Error(w, "Failed to save branding", http.StatusInternalServerError)
		return models.Branding{}, false
	}
	return models.BrandingFromDB(row), true
}

func writeBranding(w http.ResponseWriter, r *http.Request, branding models.Branding, message string) {
	if htmx.IsRequest(r) {
		w.Header().Set("HX-Refresh", "true")
		apiutil.WriteHTMLFeedback(w, http.StatusOK, message)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, branding); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Int64("club_id", branding.ClubID).Msg("Failed to write branding response")
	}
}

func writeFeedback(w http.ResponseWriter, r *http.Request, status int, message string) {
	if htmx.IsRequest(r) {
		apiutil.WriteHTMLFeedback(w, status, message)
		return
	}
	http.Error(w, message, status)
}

func decodeBrandingRequest(r *http.Request) (brandingRequest, error) {
	if apiutil.IsJSONRequest(r) {
		var req brandingRequest
		return req, apiutil.DecodeJSON(r, &req)
	}

	if err := r.ParseForm(); err != nil {
		return brandingRequest{}, err
	}
	return brandingRequest{
		LogoURL:        apiutil.FirstNonEmpty(r.FormValue("logo_url"), r.FormValue("logoUrl")),
		Tagline:        r.FormValue("tagline"),
		PrimaryColor:   apiutil.FirstNonEmpty(r.FormValue("primary_color"), r.FormValue("primaryColor")),
		SecondaryColor: apiutil.FirstNonEmpty(r.FormValue("secondary_color"), r.FormValue("secondaryColor")),
		AccentColor:    apiutil.FirstNonEmpty(r.FormValue("accent_color"), r.FormValue("accentColor")),
	}, nil
}

func decodePresetRequest(r *http.Request) (presetRequest, error) {
	if apiutil.IsJSONRequest(r) {
		var req presetRequest
		return req, apiutil.DecodeJSON(r, &req)
	}

	if err := r.ParseForm(); err != nil {
		return presetRequest{}, err
	}
	return presetRequest{Name: r.FormValue("name")}, nil
}

func loadQueries() brandingQueries {
	return queries
}
