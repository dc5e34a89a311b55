package apiutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/codr1/Courtside/internal/availability"
	dbgen "github.com/codr1/Courtside/internal/db/generated"
	"github.com/codr1/Courtside/internal/models"
)

// ScheduleQueries is what LoadSchedule reads. Both *dbgen.Queries and a
// transaction-bound copy satisfy it.
type ScheduleQueries interface {
	ListCourts(ctx context.Context, clubID int64) ([]dbgen.Court, error)
	GetOpeningHours(ctx context.Context, clubID int64) ([]dbgen.OpeningHour, error)
	ListBookingWindows(ctx context.Context, clubID int64) ([]dbgen.BookingWindow, error)
	ListScheduleRulesInRange(ctx context.Context, arg dbgen.ListScheduleRulesInRangeParams) ([]dbgen.ScheduleRule, error)
	ListScheduleRuleCourts(ctx context.Context, clubID int64) ([]dbgen.ScheduleRuleCourt, error)
	ListScheduleRuleDisabledDates(ctx context.Context, clubID int64) ([]dbgen.ScheduleRuleDisabledDate, error)
	ListBookingsForRange(ctx context.Context, arg dbgen.ListBookingsForRangeParams) ([]dbgen.Booking, error)
}

func ClubLocation(club dbgen.Club) (*time.Location, error) {
	if club.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(club.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load club timezone %q: %w", club.Timezone, err)
	}
	return loc, nil
}

func ClubPolicy(club dbgen.Club, windows []dbgen.BookingWindow) (availability.Policy, error) {
	loc, err := ClubLocation(club)
	if err != nil {
		return availability.Policy{}, err
	}
	policy := availability.Policy{
		Location:          loc,
		SlotMinutes:       int(club.SlotMinutes),
		MinBookingMinutes: int(club.MinBookingMinutes),
		MaxBookingMinutes: int(club.MaxBookingMinutes),
		Windows:           make(map[models.Role]int, len(windows)),
	}
	for _, window := range windows {
		policy.Windows[models.Role(window.Role)] = int(window.MaxAdvanceDays)
	}
	return policy, nil
}

// ClubHours converts opening_hours rows. A club with no rows is open
// 08:00-21:00 every day; otherwise days that are missing or marked closed
// are closed.
func ClubHours(rows []dbgen.OpeningHour) (availability.Hours, error) {
	if len(rows) == 0 {
		return availability.DefaultHours(), nil
	}
	hours := make(availability.Hours, len(rows))
	for _, row := range rows {
		if row.IsClosed {
			continue
		}
		day, err := availability.ParseDayHours(row.OpensAt, row.ClosesAt)
		if err != nil {
			return nil, fmt.Errorf("opening hours for day %d: %w", row.DayOfWeek, err)
		}
		hours[time.Weekday(row.DayOfWeek)] = day
	}
	return hours, nil
}

// RuleFromDB builds an evaluable rule from its stored row and child rows.
func RuleFromDB(row dbgen.ScheduleRule, courtIDs []int64, disabledDates []string) (availability.Rule, error) {
	return availability.NewRule(availability.RuleInput{
		ID:            row.ID,
		Kind:          row.Kind,
		Recurrence:    row.Recurrence,
		StartDate:     row.StartDate,
		EndDate:       row.EndDate.String,
		StartTime:     row.StartTime,
		EndTime:       row.EndTime,
		Weekdays:      row.Weekdays,
		CourtIDs:      courtIDs,
		DisabledDates: disabledDates,
		Reason:        row.Reason,
	})
}

// RuleChildren groups a club's rule courts and disabled dates by rule id.
func RuleChildren(ctx context.Context, q ScheduleQueries, clubID int64) (map[int64][]int64, map[int64][]string, error) {
	courtRows, err := q.ListScheduleRuleCourts(ctx, clubID)
	if err != nil {
		return nil, nil, fmt.Errorf("list schedule rule courts: %w", err)
	}
	dateRows, err := q.ListScheduleRuleDisabledDates(ctx, clubID)
	if err != nil {
		return nil, nil, fmt.Errorf("list schedule rule disabled dates: %w", err)
	}

	courts := make(map[int64][]int64)
	for _, row := range courtRows {
		courts[row.RuleID] = append(courts[row.RuleID], row.CourtID)
	}
	dates := make(map[int64][]string)
	for _, row := range dateRows {
		dates[row.RuleID] = append(dates[row.RuleID], row.DisabledDate)
	}
	return courts, dates, nil
}

func CourtFromDB(court dbgen.Court) availability.Court {
	return availability.Court{
		ID:     court.ID,
		Number: court.CourtNumber,
		Name:   court.Name,
		Active: court.IsActive,
	}
}

// LoadSchedule reads everything needed to evaluate club between the local
// dates from and to, inclusive.
func LoadSchedule(ctx context.Context, q ScheduleQueries, club dbgen.Club, from, to availability.Date) (availability.Schedule, error) {
	windows, err := q.ListBookingWindows(ctx, club.ID)
	if err != nil {
		return availability.Schedule{}, fmt.Errorf("list booking windows: %w", err)
	}
	policy, err := ClubPolicy(club, windows)
	if err != nil {
		return availability.Schedule{}, err
	}

	courtRows, err := q.ListCourts(ctx, club.ID)
	if err != nil {
		return availability.Schedule{}, fmt.Errorf("list courts: %w", err)
	}
	courts := make([]availability.Court, 0, len(courtRows))
	for _, row := range courtRows {
		courts = append(courts, CourtFromDB(row))
	}

	hourRows, err := q.GetOpeningHours(ctx, club.ID)
	if err != nil {
		return availability.Schedule{}, fmt.Errorf("get opening hours: %w", err)
	}
	hours, err := ClubHours(hourRows)
	if err != nil {
		return availability.Schedule{}, err
	}

	ruleRows, err := q.ListScheduleRulesInRange(ctx, dbgen.ListScheduleRulesInRangeParams{
		ClubID:   club.ID,
		FromDate: from.String(),
		ToDate:   to.String(),
	})
	if err != nil {
		return availability.Schedule{}, fmt.Errorf("list schedule rules: %w", err)
	}
	ruleCourts, ruleDates, err := RuleChildren(ctx, q, club.ID)
	if err != nil {
		return availability.Schedule{}, err
	}
	rules := make([]availability.Rule, 0, len(ruleRows))
	for _, row := range ruleRows {
		rule, err := RuleFromDB(row, ruleCourts[row.ID], ruleDates[row.ID])
		if err != nil {
			return availability.Schedule{}, fmt.Errorf("schedule rule %d: %w", row.ID, err)
		}
		rules = append(rules, rule)
	}

	bookingRows, err := q.ListBookingsForRange(ctx, dbgen.ListBookingsForRangeParams{
		ClubID:    club.ID,
		StartTime: from.At(0, policy.Location).UTC(),
		EndTime:   to.AddDays(1).At(0, policy.Location).UTC(),
	})
	if err != nil {
		return availability.Schedule{}, fmt.Errorf("list bookings: %w", err)
	}
	bookings := make([]availability.Booking, 0, len(bookingRows))
	for _, row := range bookingRows {
		bookings = append(bookings, availability.Booking{
			ID:      row.ID,
			CourtID: row.CourtID,
			Start:   row.StartTime,
			End:     row.EndTime,
			Status:  row.Status,
		})
	}

	return availability.Schedule{
		Courts:   courts,
		Hours:    hours,
		Rules:    rules,
		Bookings: bookings,
		Policy:   policy,
	}, nil
}

// ViolationStatus maps a booking rule violation to an HTTP status.
func ViolationStatus(err error) int {
	var violation *availability.Violation
	if !errors.As(err, &violation) {
		return http.StatusInternalServerError
	}
	switch violation.Code {
	case availability.ViolationConflict:
		return http.StatusConflict
	case availability.ViolationRestricted, availability.ViolationOutsideWindow:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}
