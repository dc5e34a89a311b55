// internal/api/openinghours/handlers.go
package openinghours

import (
	"context"
	"database/sql"
	"errors"
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
	openingHoursQueryTimeout = 5 * time.Second
	dayOfWeekParam           = "day_of_week"
	defaultOpensAt           = "08:00"
	defaultClosesAt          = "21:00"
)

var (
	queries     *dbgen.Queries
	store       *appdb.DB
	queriesOnce sync.Once
)

type openingHoursRequest struct {
	OpensAt  string `json:"opens_at"`
	ClosesAt string `json:"closes_at"`
	IsClosed bool   `json:"is_closed"`
}

type dayHours struct {
	DayOfWeek int64  `json:"day_of_week"`
	Day       string `json:"day"`
	IsClosed  bool   `json:"is_closed"`
	OpensAt   string `json:"opens_at,omitempty"`
	ClosesAt  string `json:"closes_at,omitempty"`
}

type weekResponse struct {
	ClubID    int64      `json:"club_id"`
	IsDefault bool       `json:"is_default"`
	Days      []dayHours `json:"days"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB) {
	if database == nil {
		log.Warn().Msg("openinghours.InitHandlers called with nil database; handlers will be unavailable")
		return
	}
	queriesOnce.Do(func() {
		queries = database.Queries
		store = database
	})
}

// GET /api/v1/clubs/{club_id}/opening-hours
func HandleGetOpeningHours(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), openingHoursQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}

	hours, err := q.GetOpeningHours(ctx, club.ID)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to fetch opening hours")
		http.Error(w, "Failed to load opening hours", http.StatusInternalServerError)
		return
	}

	resp := weekResponse{ClubID: club.ID, IsDefault: len(hours) == 0}
	if resp.IsDefault {
		hours = defaultOpeningHours(club.ID)
	}
	resp.Days = weekDays(hours)

	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to write opening hours response")
	}
}

// PUT /api/v1/clubs/{club_id}/opening-hours/{day_of_week}
// A club without stored hours gets the seven default days first, so changing
// one day leaves the others as they were. Closing a day keeps its times;
// blank times on an open request reopen the day with them.
func HandleSetOpeningHours(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil || store == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	dayOfWeek, err := dayOfWeekFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req, err := decodeOpeningHoursRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	opensAt := strings.TrimSpace(req.OpensAt)
	closesAt := strings.TrimSpace(req.ClosesAt)
	keepTimes := req.IsClosed || (opensAt == "" && closesAt == "")
	if !keepTimes {
		var opensTime, closesTime time.Time
		opensAt, opensTime, err = parseOpeningTime(opensAt, "opens_at")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		closesAt, closesTime, err = parseOpeningTime(closesAt, "closes_at")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if !opensTime.Before(closesTime) {
			http.Error(w, "opens_at must be before closes_at", http.StatusBadRequest)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), openingHoursQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}
	if _, ok := apiutil.RequireClubRole(w, r, q, club.ID, models.RoleClubAdmin); !ok {
		return
	}

	var saved dbgen.OpeningHour
	err = store.RunInTx(ctx, func(txdb *appdb.DB) error {
		if err := seedDefaultHours(ctx, txdb.Queries, club.ID); err != nil {
			return err
		}

		params := dbgen.UpsertOpeningHoursParams{
			ClubID:    club.ID,
			DayOfWeek: dayOfWeek,
			OpensAt:   opensAt,
			ClosesAt:  closesAt,
			IsClosed:  req.IsClosed,
		}
		if keepTimes {
			current, err := txdb.Queries.GetOpeningHoursForDay(ctx, dbgen.GetOpeningHoursForDayParams{
				ClubID:    club.ID,
				DayOfWeek: dayOfWeek,
			})
			switch {
			case err == nil:
				params.OpensAt, params.ClosesAt = current.OpensAt, current.ClosesAt
			case errors.Is(err, sql.ErrNoRows):
				params.OpensAt, params.ClosesAt = defaultOpensAt, defaultClosesAt
			default:
				return fmt.Errorf("load opening hours: %w", err)
			}
		}

		var err error
		saved, err = txdb.Queries.UpsertOpeningHours(ctx, params)
		if err != nil {
			return fmt.Errorf("save opening hours: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Int64("day_of_week", dayOfWeek).Msg("Failed to update opening hours")
		http.Error(w, "Failed to update opening hours", http.StatusInternalServerError)
		return
	}

	logger.Info().
		Int64("club_id", club.ID).
		Int64("day_of_week", dayOfWeek).
		Str("opens_at", saved.OpensAt).
		Str("closes_at", saved.ClosesAt).
		Bool("is_closed", saved.IsClosed).
		Msg("Opening hours saved")
	if apiutil.IsJSONRequest(r) {
		if err := apiutil.WriteJSON(w, http.StatusOK, dayHoursFromDB(saved)); err != nil {
			logger.Error().Err(err).Msg("Failed to write opening hours response")
		}
		return
	}
	if saved.IsClosed {
		apiutil.WriteHTMLFeedback(w, http.StatusOK, "Closed on "+time.Weekday(dayOfWeek).String()+".")
		return
	}
	apiutil.WriteHTMLFeedback(w, http.StatusOK, "Opening hours saved.")
}

// seedDefaultHours stores the default week for a club that has no rows yet.
func seedDefaultHours(ctx context.Context, q *dbgen.Queries, clubID int64) error {
	count, err := q.CountOpeningHours(ctx, clubID)
	if err != nil {
		return fmt.Errorf("count opening hours: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, hour := range defaultOpeningHours(clubID) {
		if _, err := q.UpsertOpeningHours(ctx, dbgen.UpsertOpeningHoursParams{
			ClubID:    hour.ClubID,
			DayOfWeek: hour.DayOfWeek,
			OpensAt:   hour.OpensAt,
			ClosesAt:  hour.ClosesAt,
		}); err != nil {
			return fmt.Errorf("seed opening hours: %w", err)
		}
	}
	return nil
}

// weekDays lists Sunday through Saturday. Days without a row or marked
// closed are closed.
func weekDays(hours []dbgen.OpeningHour) []dayHours {
	byDay := make(map[int64]dbgen.OpeningHour, len(hours))
	for _, hour := range hours {
		byDay[hour.DayOfWeek] = hour
	}

	days := make([]dayHours, 0, 7)
	for day := int64(0); day < 7; day++ {
		hour, ok := byDay[day]
		if !ok {
			days = append(days, dayHours{DayOfWeek: day, Day: time.Weekday(day).String(), IsClosed: true})
			continue
		}
		days = append(days, dayHoursFromDB(hour))
	}
	return days
}

func dayHoursFromDB(hour dbgen.OpeningHour) dayHours {
	if hour.IsClosed {
		return dayHours{DayOfWeek: hour.DayOfWeek, Day: time.Weekday(hour.DayOfWeek).String(), IsClosed: true}
	}
	return dayHours{
		DayOfWeek: hour.DayOfWeek,
		Day:       time.Weekday(hour.DayOfWeek).String(),
		OpensAt:   hour.OpensAt,
		ClosesAt:  hour.ClosesAt,
	}
}

func defaultOpeningHours(clubID int64) []dbgen.OpeningHour {
	hours := make([]dbgen.OpeningHour, 0, 7)
	for day := int64(0); day < 7; day++ {
		hours = append(hours, dbgen.OpeningHour{
			ClubID:    clubID,
			DayOfWeek: day,
			OpensAt:   defaultOpensAt,
			ClosesAt:  defaultClosesAt,
		})
	}
	return hours
}

func parseOpeningTime(raw string, field string) (string, time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", time.Time{}, fmt.Errorf("%s is required", field)
	}
	parsed, err := time.Parse("15:04", raw)
	if err != nil {
		parsed, err = time.Parse("3:04 PM", strings.ToUpper(raw))
		if err != nil {
			return "", time.Time{}, fmt.Errorf("%s must be in HH:MM or H:MM AM/PM format", field)
		}
	}
	return parsed.Format("15:04"), parsed, nil
}

func dayOfWeekFromRequest(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(dayOfWeekParam))
	if raw == "" {
		return 0, fmt.Errorf("invalid day_of_week")
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 || value > 6 {
		return 0, fmt.Errorf("day_of_week must be between 0 and 6")
	}
	return value, nil
}

func decodeOpeningHoursRequest(r *http.Request) (openingHoursRequest, error) {
	if apiutil.IsJSONRequest(r) {
		var req openingHoursRequest
		return req, apiutil.DecodeJSON(r, &req)
	}

	if err := r.ParseForm(); err != nil {
		return openingHoursRequest{}, err
	}

	isClosed, err := apiutil.ParseOptionalBool(apiutil.FirstNonEmpty(r.FormValue("is_closed"), r.FormValue("isClosed")), "is_closed")
	if err != nil {
		return openingHoursRequest{}, err
	}

	return openingHoursRequest{
		OpensAt:  apiutil.FirstNonEmpty(r.FormValue("opens_at"), r.FormValue("opensAt")),
		ClosesAt: apiutil.FirstNonEmpty(r.FormValue("closes_at"), r.FormValue("closesAt")),
		IsClosed: isClosed,
	}, nil
}

func loadQueries() *dbgen.Queries {
	return queries
}
