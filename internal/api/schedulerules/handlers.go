// internal/api/schedulerules/handlers.go
package schedulerules

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/api/apiutil"
	"github.com/codr1/Courtside/internal/api/authz"
	"github.com/codr1/Courtside/internal/availability"
	appdb "github.com/codr1/Courtside/internal/db"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/models"
)

const scheduleRulesQueryTimeout = 5 * time.Second

var (
	queries     *dbgen.Queries
	store       *appdb.DB
	queriesOnce sync.Once
)

type ruleRequest struct {
	Kind       string  `json:"kind" validate:"required"`
	Recurrence string  `json:"recurrence" validate:"required"`
	StartDate  string  `json:"start_date" validate:"required"`
	EndDate    string  `json:"end_date"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	Weekdays   []int   `json:"weekdays" validate:"dive,gte=0,lte=6"`
	CourtIDs   []int64 `json:"court_ids" validate:"dive,gt=0"`
	Reason     string  `json:"reason" validate:"max=200"`
}

type ruleResponse struct {
	ID            int64    `json:"id"`
	Kind          string   `json:"kind"`
	Recurrence    string   `json:"recurrence"`
	StartDate     string   `json:"start_date"`
	EndDate       *string  `json:"end_date"`
	StartTime     string   `json:"start_time,omitempty"`
	EndTime       string   `json:"end_time,omitempty"`
	WholeDay      bool     `json:"whole_day"`
	Weekdays      []int    `json:"weekdays,omitempty"`
	CourtIDs      []int64  `json:"court_ids"`
	DisabledDates []string `json:"disabled_dates"`
	Reason        string   `json:"reason,omitempty"`
	CreatedBy     *int64   `json:"created_by,omitempty"`
}

type disabledDateRequest struct {
	Date string `json:"date"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB) {
	if database == nil {
		log.Warn().Msg("schedulerules.InitHandlers called with nil database; handlers will be unavailable")
		return
	}
	queriesOnce.Do(func() {
		queries = database.Queries
		store = database
	})
}

// GET /api/v1/clubs/{club_id}/schedule-rules?date=YYYY-MM-DD
// With a date, only rules in effect on that date are listed.
func HandleListRules(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var onDate *availability.Date
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		parsed, err := availability.ParseDate(raw)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		onDate = &parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), scheduleRulesQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}
	if _, ok := apiutil.RequireClubRole(w, r, q, club.ID, models.RoleClubAdmin); !ok {
		return
	}

	rows, err := q.ListScheduleRules(ctx, club.ID)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to list schedule rules")
		http.Error(w, "Failed to load schedule rules", http.StatusInternalServerError)
		return
	}
	ruleCourts, ruleDates, err := apiutil.RuleChildren(ctx, q, club.ID)
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to load schedule rule details")
		http.Error(w, "Failed to load schedule rules", http.StatusInternalServerError)
		return
	}

	rules := make([]ruleResponse, 0, len(rows))
	for _, row := range rows {
		if onDate != nil {
			rule, err := apiutil.RuleFromDB(row, ruleCourts[row.ID], ruleDates[row.ID])
			if err != nil {
				logger.Warn().Err(err).Int64("rule_id", row.ID).Msg("Skipping invalid stored schedule rule")
				continue
			}
			if !rule.OccursOn(*onDate) {
				continue
			}
		}
		rules = append(rules, newRuleResponse(row, ruleCourts[row.ID], ruleDates[row.ID]))
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"rules": rules}); err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to write schedule rules response")
	}
}

// POST /api/v1/clubs/{club_id}/schedule-rules
func HandleCreateRule(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil || store == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	req, err := decodeRuleRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), scheduleRulesQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}
	if _, ok := apiutil.RequireClubRole(w, r, q, club.ID, models.RoleClubAdmin); !ok {
		return
	}

	rule, err := validateRule(ctx, q, club.ID, req)
	if err != nil {
		writeRuleError(w, r, err, club.ID)
		return
	}

	fields := storedFields(rule)
	var created dbgen.ScheduleRule
	err = store.RunInTx(ctx, func(txdb *appdb.DB) error {
		var err error
		created, err = txdb.Queries.CreateScheduleRule(ctx, dbgen.CreateScheduleRuleParams{
			ClubID:     club.ID,
			Kind:       string(rule.Kind),
			Recurrence: string(rule.Recurrence),
			StartDate:  fields.startDate,
			EndDate:    fields.endDate,
			StartTime:  fields.startTime,
			EndTime:    fields.endTime,
			Weekdays:   fields.weekdays,
			Reason:     rule.Reason,
			CreatedBy:  createdBy(r.Context()),
		})
		if err != nil {
			return fmt.Errorf("create schedule rule: %w", err)
		}
		return addRuleCourts(ctx, txdb.Queries, created.ID, rule.CourtIDs)
	})
	if err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to create schedule rule")
		http.Error(w, "Failed to create schedule rule", http.StatusInternalServerError)
		return
	}

	logger.Info().
		Int64("club_id", club.ID).
		Int64("rule_id", created.ID).
		Str("kind", created.Kind).
		Str("recurrence", created.Recurrence).
		Msg("Schedule rule created")
	writeRule(w, r, http.StatusCreated, newRuleResponse(created, rule.CourtIDs, nil), "Schedule rule created.")
}

// PUT /api/v1/clubs/{club_id}/schedule-rules/{rule_id}
// Replaces the rule and its courts. Disabled dates are kept.
func HandleUpdateRule(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil || store == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	req, err := decodeRuleRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), scheduleRulesQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}
	if _, ok := apiutil.RequireClubRole(w, r, q, club.ID, models.RoleClubAdmin); !ok {
		return
	}

	existing, ok := loadRule(ctx, w, r, q, club.ID)
	if !ok {
		return
	}

	rule, err := validateRule(ctx, q, club.ID, req)
	if err != nil {
		writeRuleError(w, r, err, club.ID)
		return
	}

	_, ruleDates, err := apiutil.RuleChildren(ctx, q, club.ID)
	if err != nil {
		logger.Error().Err(err).Int64("rule_id", existing.ID).Msg("Failed to load disabled dates")
		http.Error(w, "Failed to update schedule rule", http.StatusInternalServerError)
		return
	}

	fields := storedFields(rule)
	var updated dbgen.ScheduleRule
	err = store.RunInTx(ctx, func(txdb *appdb.DB) error {
		var err error
		updated, err = txdb.Queries.UpdateScheduleRule(ctx, dbgen.UpdateScheduleRuleParams{
			Kind:       string(rule.Kind),
			Recurrence: string(rule.Recurrence),
			StartDate:  fields.startDate,
			EndDate:    fields.endDate,
			StartTime:  fields.startTime,
			EndTime:    fields.endTime,
			Weekdays:   fields.weekdays,
			Reason:     rule.Reason,
			ID:         existing.ID,
			ClubID:     club.ID,
		})
		if err != nil {
			return fmt.Errorf("update schedule rule: %w", err)
		}
		if err := txdb.Queries.DeleteScheduleRuleCourts(ctx, existing.ID); err != nil {
			return fmt.Errorf("clear schedule rule courts: %w", err)
		}
		return addRuleCourts(ctx, txdb.Queries, existing.ID, rule.CourtIDs)
	})
	if err != nil {
		logger.Error().Err(err).Int64("rule_id", existing.ID).Msg("Failed to update schedule rule")
		http.Error(w, "Failed to update schedule rule", http.StatusInternalServerError)
		return
	}

	logger.Info().Int64("club_id", club.ID).Int64("rule_id", updated.ID).Msg("Schedule rule updated")
	writeRule(w, r, http.StatusOK, newRuleResponse(updated, rule.CourtIDs, ruleDates[existing.ID]), "Schedule rule saved.")
}

// DELETE /api/v1/clubs/{club_id}/schedule-rules/{rule_id}
func HandleDeleteRule(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ruleID, err := apiutil.PathID(r, "rule_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), scheduleRulesQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}
	if _, ok := apiutil.RequireClubRole(w, r, q, club.ID, models.RoleClubAdmin); !ok {
		return
	}

	deleted, err := q.DeleteScheduleRule(ctx, dbgen.DeleteScheduleRuleParams{ID: ruleID, ClubID: club.ID})
	if err != nil {
		logger.Error().Err(err).Int64("rule_id", ruleID).Msg("Failed to delete schedule rule")
		http.Error(w, "Failed to delete schedule rule", http.StatusInternalServerError)
		return
	}
	if deleted == 0 {
		http.Error(w, "Schedule rule not found", http.StatusNotFound)
		return
	}

	logger.Info().Int64("club_id", club.ID).Int64("rule_id", ruleID).Msg("Schedule rule deleted")
	if apiutil.IsJSONRequest(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("HX-Trigger", "refreshAvailability")
	apiutil.WriteHTMLFeedback(w, http.StatusOK, "Schedule rule deleted.")
}

// POST /api/v1/clubs/{club_id}/schedule-rules/{rule_id}/disabled-dates
// Skips one occurrence of the rule. The date must be one the rule occurs on.
func HandleAddDisabledDate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req disabledDateRequest
	if apiutil.IsJSONRequest(r) {
		if err := apiutil.DecodeJSON(r, &req); err != nil {
			http.Error(w, "Invalid JSON body", http.StatusBadRequest)
			return
		}
	} else {
		req.Date = r.FormValue("date")
	}
	date, err := availability.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), scheduleRulesQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}
	if _, ok := apiutil.RequireClubRole(w, r, q, club.ID, models.RoleClubAdmin); !ok {
		return
	}

	row, ok := loadRule(ctx, w, r, q, club.ID)
	if !ok {
		return
	}
	ruleCourts, ruleDates, err := apiutil.RuleChildren(ctx, q, club.ID)
	if err != nil {
		logger.Error().Err(err).Int64("rule_id", row.ID).Msg("Failed to load schedule rule details")
		http.Error(w, "Failed to update schedule rule", http.StatusInternalServerError)
		return
	}
	rule, err := apiutil.RuleFromDB(row, ruleCourts[row.ID], ruleDates[row.ID])
	if err != nil {
		logger.Error().Err(err).Int64("rule_id", row.ID).Msg("Stored schedule rule is invalid")
		http.Error(w, "Failed to update schedule rule", http.StatusInternalServerError)
		return
	}
	if !rule.OccursOn(date) && !slices.Contains(ruleDates[row.ID], date.String()) {
		http.Error(w, fmt.Sprintf("Rule does not occur on %s", date), http.StatusBadRequest)
		return
	}

	if err := q.AddScheduleRuleDisabledDate(ctx, dbgen.AddScheduleRuleDisabledDateParams{
		RuleID:       row.ID,
		DisabledDate: date.String(),
	}); err != nil {
		logger.Error().Err(err).Int64("rule_id", row.ID).Msg("Failed to add disabled date")
		http.Error(w, "Failed to update schedule rule", http.StatusInternalServerError)
		return
	}

	dates := ruleDates[row.ID]
	if !slices.Contains(dates, date.String()) {
		dates = append(dates, date.String())
		slices.Sort(dates)
	}
	writeRule(w, r, http.StatusOK, newRuleResponse(row, ruleCourts[row.ID], dates), "Date skipped.")
}

// DELETE /api/v1/clubs/{club_id}/schedule-rules/{rule_id}/disabled-dates/{date}
func HandleRemoveDisabledDate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	date, err := availability.ParseDate(strings.TrimSpace(r.PathValue("date")))
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), scheduleRulesQueryTimeout)
	defer cancel()

	club, ok := apiutil.ClubFromPath(ctx, w, r, q)
	if !ok {
		return
	}
	if _, ok := apiutil.RequireClubRole(w, r, q, club.ID, models.RoleClubAdmin); !ok {
		return
	}

	row, ok := loadRule(ctx, w, r, q, club.ID)
	if !ok {
		return
	}

	removed, err := q.RemoveScheduleRuleDisabledDate(ctx, dbgen.RemoveScheduleRuleDisabledDateParams{
		RuleID:       row.ID,
		DisabledDate: date.String(),
	})
	if err != nil {
		logger.Error().Err(err).Int64("rule_id", row.ID).Msg("Failed to remove disabled date")
		http.Error(w, "Failed to update schedule rule", http.StatusInternalServerError)
		return
	}
	if removed == 0 {
		http.Error(w, "Disabled date not found", http.StatusNotFound)
		return
	}

	if apiutil.IsJSONRequest(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("HX-Trigger", "refreshAvailability")
	apiutil.WriteHTMLFeedback(w, http.StatusOK, "Date restored.")
}

// validateRule checks the request shape, the rule semantics and that every
// court belongs to the club.
func validateRule(ctx context.Context, q *dbgen.Queries, clubID int64, req ruleRequest) (availability.Rule, error) {
	req.Kind = strings.ToUpper(strings.TrimSpace(req.Kind))
	req.Recurrence = strings.ToUpper(strings.TrimSpace(req.Recurrence))
	if err := apiutil.ValidateStruct(ctx, req); err != nil {
		return availability.Rule{}, err
	}

	weekdays := make([]string, 0, len(req.Weekdays))
	for _, day := range req.Weekdays {
		weekdays = append(weekdays, strconv.Itoa(day))
	}

	rule, err := availability.NewRule(availability.RuleInput{
		Kind:       req.Kind,
		Recurrence: req.Recurrence,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Weekdays:   strings.Join(weekdays, ","),
		CourtIDs:   dedupeIDs(req.CourtIDs),
		Reason:     req.Reason,
	})
	if err != nil {
		return availability.Rule{}, err
	}

	if len(rule.CourtIDs) > 0 {
		courts, err := q.ListCourts(ctx, clubID)
		if err != nil {
			return availability.Rule{}, fmt.Errorf("list courts: %w", err)
		}
		known := make(map[int64]bool, len(courts))
		for _, court := range courts {
			known[court.ID] = true
		}
		for _, courtID := range rule.CourtIDs {
			if !known[courtID] {
				return availability.Rule{}, apiutil.FieldError{
					Field:  "court_ids",
					Reason: fmt.Sprintf("court %d does not belong to this club", courtID),
				}
			}
		}
	}
	return rule, nil
}

func writeRuleError(w http.ResponseWriter, r *http.Request, err error, clubID int64) {
	var fieldErr apiutil.FieldError
	var ruleErr *availability.RuleError
	switch {
	case errors.As(err, &fieldErr), errors.As(err, &ruleErr):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Ctx(r.Context()).Error().Err(err).Int64("club_id", clubID).Msg("Failed to validate schedule rule")
		http.Error(w, "Failed to validate schedule rule", http.StatusInternalServerError)
	}
}

type ruleFields struct {
	startDate string
	endDate   sql.NullString
	startTime string
	endTime   string
	weekdays  string
}

// storedFields normalizes a validated rule for storage. Whole-day rules
// store empty times.
func storedFields(rule availability.Rule) ruleFields {
	fields := ruleFields{
		startDate: rule.StartDate.String(),
		weekdays:  availability.FormatWeekdays(rule.Weekdays),
	}
	if rule.EndDate != nil {
		fields.endDate = sql.NullString{String: rule.EndDate.String(), Valid: true}
	}
	if !rule.WholeDay() {
		fields.startTime = availability.FormatClock(rule.StartMinute)
		fields.endTime = availability.FormatClock(rule.EndMinute)
	}
	return fields
}

func addRuleCourts(ctx context.Context, q *dbgen.Queries, ruleID int64, courtIDs []int64) error {
	for _, courtID := range courtIDs {
		if err := q.AddScheduleRuleCourt(ctx, dbgen.AddScheduleRuleCourtParams{RuleID: ruleID, CourtID: courtID}); err != nil {
			return fmt.Errorf("add court %d to rule: %w", courtID, err)
		}
	}
	return nil
}

func createdBy(ctx context.Context) sql.NullInt64 {
	if user := authz.UserFromContext(ctx); user != nil {
		return sql.NullInt64{Int64: user.ID, Valid: true}
	}
	return sql.NullInt64{}
}

func loadRule(ctx context.Context, w http.ResponseWriter, r *http.Request, q *dbgen.Queries, clubID int64) (dbgen.ScheduleRule, bool) {
	ruleID, err := apiutil.PathID(r, "rule_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return dbgen.ScheduleRule{}, false
	}
	row, err := q.GetScheduleRule(ctx, dbgen.GetScheduleRuleParams{ID: ruleID, ClubID: clubID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Schedule rule not found", http.StatusNotFound)
			return dbgen.ScheduleRule{}, false
		}
		log.Ctx(r.Context()).Error().Err(err).Int64("rule_id", ruleID).Msg("Failed to load schedule rule")
		http.Error(w, "Failed to load schedule rule", http.StatusInternalServerError)
		return dbgen.ScheduleRule{}, false
	}
	return row, true
}

func writeRule(w http.ResponseWriter, r *http.Request, status int, rule ruleResponse, message string) {
	if apiutil.IsJSONRequest(r) {
		if err := apiutil.WriteJSON(w, status, rule); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Int64("rule_id", rule.ID).Msg("Failed to write schedule rule response")
		}
		return
	}
	w.Header().Set("HX-Trigger", "refreshAvailability")
	apiutil.WriteHTMLFeedback(w, status, message)
}

func newRuleResponse(row dbgen.ScheduleRule, courtIDs []int64, disabledDates []string) ruleResponse {
	resp := ruleResponse{
		ID:            row.ID,
		Kind:          row.Kind,
		Recurrence:    row.Recurrence,
		StartDate:     row.StartDate,
		StartTime:     row.StartTime,
		EndTime:       row.EndTime,
		WholeDay:      row.StartTime == "" && row.EndTime == "",
		CourtIDs:      courtIDs,
		DisabledDates: disabledDates,
		Reason:        row.Reason,
	}
	if resp.CourtIDs == nil {
		resp.CourtIDs = []int64{}
	}
	if resp.DisabledDates == nil {
		resp.DisabledDates = []string{}
	}
	if row.EndDate.Valid {
		end := row.EndDate.String
		resp.EndDate = &end
	}
	if row.CreatedBy.Valid {
		createdBy := row.CreatedBy.Int64
		resp.CreatedBy = &createdBy
	}
	if days, err := availability.ParseWeekdays(row.Weekdays); err == nil {
		for _, day := range days {
			resp.Weekdays = append(resp.Weekdays, int(day))
		}
	}
	return resp
}

func dedupeIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func decodeRuleRequest(r *http.Request) (ruleRequest, error) {
	if apiutil.IsJSONRequest(r) {
		var req ruleRequest
		if err := apiutil.DecodeJSON(r, &req); err != nil {
			return req, fmt.Errorf("invalid JSON body: %w", err)
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return ruleRequest{}, err
	}

	req := ruleRequest{
		Kind:       r.FormValue("kind"),
		Recurrence: r.FormValue("recurrence"),
		StartDate:  r.FormValue("start_date"),
		EndDate:    r.FormValue("end_date"),
		StartTime:  r.FormValue("start_time"),
		EndTime:    r.FormValue("end_time"),
		Reason:     r.FormValue("reason"),
	}
	for _, raw := range r.Form["weekdays"] {
		day, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return ruleRequest{}, fmt.Errorf("weekdays must be numbers 0-6")
		}
		req.Weekdays = append(req.Weekdays, day)
	}
	for _, raw := range r.Form["court_ids"] {
		courtID, err := apiutil.ParsePositiveInt64Field(raw, "court_ids")
		if err != nil {
			return ruleRequest{}, err
		}
		req.CourtIDs = append(req.CourtIDs, courtID)
	}
	return req, nil
}

func loadQueries() *dbgen.Queries {
	return queries
}
