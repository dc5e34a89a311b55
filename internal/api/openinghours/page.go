// internal/api/openinghours/page.go
package openinghours

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/api/apiutil"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/models"
	"github.com/codr1/Courtside/internal/templates/components/operatinghours"
	"github.com/codr1/Courtside/internal/templates/layouts"
)

// GET /clubs/{slug}/admin/hours
func HandleHoursPage(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), openingHoursQueryTimeout)
	defer cancel()

	slug := strings.ToLower(strings.TrimSpace(r.PathValue("slug")))
	club, err := q.GetClubBySlug(ctx, slug)
	if err != nil || club.Status != models.ClubStatusActive {
		if err == nil || errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Club not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Str("slug", slug).Msg("Failed to load club")
		http.Error(w, "Failed to load club", http.StatusInternalServerError)
		return
	}
	if _, ok := apiutil.RequireClubRole(w, r, q, club.ID, models.RoleClubAdmin); !ok {
		return
	}

	hours, err := q.GetOpeningHours(ctx, club.ID)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to fetch opening hours")
		http.Error(w, "Failed to load opening hours", http.StatusInternalServerError)
		return
	}
	windows, err := q.ListBookingWindows(ctx, club.ID)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to list booking windows")
		http.Error(w, "Failed to load booking windows", http.StatusInternalServerError)
		return
	}

	data := operatinghours.PageData{
		ClubID:    club.ID,
		ClubSlug:  club.Slug,
		IsDefault: len(hours) == 0,
		Windows:   windowSettings(windows),
	}
	if data.IsDefault {
		hours = defaultOpeningHours(club.ID)
	}
	for _, day := range weekDays(hours) {
		data.Days = append(data.Days, operatinghours.DayHours{
			DayOfWeek: day.DayOfWeek,
			OpensAt:   day.OpensAt,
			ClosesAt:  day.ClosesAt,
			IsClosed:  day.IsClosed,
		})
	}

	branding, err := models.GetClubBranding(ctx, q, club.ID)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to load club branding")
		branding = models.DefaultBranding()
	}
	page := layouts.Page{Title: "Opening hours", ClubName: club.Name, ClubSlug: club.Slug, Branding: branding}
	apiutil.RenderHTMLComponent(r.Context(), w, layouts.Base(page, operatinghours.Page(data)), nil, "Failed to render hours page", "Failed to render page")
}

func windowSettings(rows []dbgen.BookingWindow) []operatinghours.WindowSetting {
	stored := make(map[models.Role]int64, len(rows))
	for _, row := range rows {
		stored[models.Role(row.Role)] = row.MaxAdvanceDays
	}

	settings := make([]operatinghours.WindowSetting, 0, len(models.WindowRoles))
	for _, role := range models.WindowRoles {
		days, ok := stored[role]
		if !ok {
			days = int64(models.DefaultWindowDays[role])
		}
		label := strings.ToUpper(role.String()[:1]) + strings.ToLower(role.String()[1:])
		settings = append(settings, operatinghours.WindowSetting{
			Role:      role.String(),
			Label:     label,
			Days:      days,
			IsDefault: !ok,
		})
	}
	return settings
}
