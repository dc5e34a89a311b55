package availability

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/codr1/Courtside/internal/models"
)

type Kind string

const (
	KindBlocked     Kind = "BLOCKED"
	KindMembersOnly Kind = "MEMBERS_ONLY"
	KindCoachesOnly Kind = "COACHES_ONLY"
)

type Recurrence string

const (
	RecurrenceOnce   Recurrence = "ONCE"
	RecurrenceDaily  Recurrence = "DAILY"
	RecurrenceWeekly Recurrence = "WEEKLY"
)

// Rule is an admin-defined constraint on one or more courts.
//
// StartMinute and EndMinute are minutes after local midnight. When both are
// zero the rule covers whole days. A ONCE rule covers the single interval
// from StartDate+StartMinute to EndDate+EndMinute; DAILY and WEEKLY rules
// cover [StartMinute, EndMinute) on every date they occur.
type Rule struct {
	ID            int64
	Kind          Kind
	Recurrence    Recurrence
	CourtIDs      []int64
	StartDate     Date
	EndDate       *Date
	StartMinute   int
	EndMinute     int
	Weekdays      []time.Weekday
	DisabledDates []Date
	Reason        string
}

// RuleInput is the textual form of a rule as stored or submitted.
type RuleInput struct {
	ID            int64
	Kind          string
	Recurrence    string
	StartDate     string
	EndDate       string
	StartTime     string
	EndTime       string
	Weekdays      string
	CourtIDs      []int64
	DisabledDates []string
	Reason        string
}

// RuleError reports which field of a RuleInput is invalid.
type RuleError struct {
	Field  string
	Reason string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewRule parses and validates in.
func NewRule(in RuleInput) (Rule, error) {
	rule := Rule{
		ID:       in.ID,
		Kind:     Kind(strings.ToUpper(strings.TrimSpace(in.Kind))),
		CourtIDs: slices.Clone(in.CourtIDs),
		Reason:   strings.TrimSpace(in.Reason),
	}
	switch rule.Kind {
	case KindBlocked, KindMembersOnly, KindCoachesOnly:
	default:
		return Rule{}, &RuleError{Field: "kind", Reason: "must be BLOCKED, MEMBERS_ONLY, or COACHES_ONLY"}
	}

	rule.Recurrence = Recurrence(strings.ToUpper(strings.TrimSpace(in.Recurrence)))
	switch rule.Recurrence {
	case RecurrenceOnce, RecurrenceDaily, RecurrenceWeekly:
	default:
		return Rule{}, &RuleError{Field: "recurrence", Reason: "must be ONCE, DAILY, or WEEKLY"}
	}

	if strings.TrimSpace(in.StartDate) == "" {
		return Rule{}, &RuleError{Field: "start_date", Reason: "is required"}
	}
	start, err := ParseDate(strings.TrimSpace(in.StartDate))
	if err != nil {
		return Rule{}, &RuleError{Field: "start_date", Reason: err.Error()}
	}
	rule.StartDate = start

	if trimmed := strings.TrimSpace(in.EndDate); trimmed != "" {
		end, err := ParseDate(trimmed)
		if err != nil {
			return Rule{}, &RuleError{Field: "end_date", Reason: err.Error()}
		}
		if end.Before(start) {
			return Rule{}, &RuleError{Field: "end_date", Reason: "must be on or after start_date"}
		}
		rule.EndDate = &end
	}

	startTime := strings.TrimSpace(in.StartTime)
	endTime := strings.TrimSpace(in.EndTime)
	switch {
	case startTime == "" && endTime == "":
	case startTime == "" || endTime == "":
		return Rule{}, &RuleError{Field: "end_time", Reason: "start_time and end_time must both be set or both be empty"}
	default:
		if rule.StartMinute, err = ParseClock(startTime); err != nil {
			return Rule{}, &RuleError{Field: "start_time", Reason: err.Error()}
		}
		if rule.EndMinute, err = ParseClock(endTime); err != nil {
			return Rule{}, &RuleError{Field: "end_time", Reason: err.Error()}
		}
		if rule.StartMinute == MinutesPerDay {
			return Rule{}, &RuleError{Field: "start_time", Reason: "must be before 24:00"}
		}
	}
	if !rule.WholeDay() && !rule.spansDays() && rule.StartMinute >= rule.EndMinute {
		return Rule{}, &RuleError{Field: "end_time", Reason: "must be after start_time"}
	}

	weekdays := strings.TrimSpace(in.Weekdays)
	if rule.Recurrence == RecurrenceWeekly {
		if weekdays == "" {
			return Rule{}, &RuleError{Field: "weekdays", Reason: "is required for WEEKLY rules"}
		}
		if rule.Weekdays, err = ParseWeekdays(weekdays); err != nil {
			return Rule{}, &RuleError{Field: "weekdays", Reason: err.Error()}
		}
	} else if weekdays != "" {
		return Rule{}, &RuleError{Field: "weekdays", Reason: "only allowed for WEEKLY rules"}
	}

	for _, raw := range in.DisabledDates {
		disabled, err := ParseDate(strings.TrimSpace(raw))
		if err != nil {
			return Rule{}, &RuleError{Field: "disabled_dates", Reason: err.Error()}
		}
		rule.DisabledDates = append(rule.DisabledDates, disabled)
	}

	return rule, nil
}

// WholeDay reports whether the rule has no time-of-day restriction.
func (r Rule) WholeDay() bool {
	return r.StartMinute == 0 && (r.EndMinute == 0 || r.EndMinute == MinutesPerDay)
}

// spansDays reports whether a ONCE rule ends on a later date than it starts,
// in which case its start time may be later than its end time.
func (r Rule) spansDays() bool {
	return r.Recurrence == RecurrenceOnce && r.EndDate != nil && r.EndDate.After(r.StartDate)
}

func (r Rule) lastDate() Date {
	if r.EndDate != nil {
		return *r.EndDate
	}
	return r.StartDate
}

func (r Rule) isDisabled(d Date) bool {
	return slices.Contains(r.DisabledDates, d)
}

// OccursOn reports whether the rule is in effect on d.
func (r Rule) OccursOn(d Date) bool {
	if d.Before(r.StartDate) || r.isDisabled(d) {
		return false
	}
	switch r.Recurrence {
	case RecurrenceOnce:
		return !d.After(r.lastDate())
	case RecurrenceDaily:
		return r.EndDate == nil || !d.After(*r.EndDate)
	case RecurrenceWeekly:
		if r.EndDate != nil && d.After(*r.EndDate) {
			return false
		}
		return slices.Contains(r.Weekdays, d.Weekday())
	default:
		return false
	}
}

// AppliesToCourt reports whether the rule names courtID, or names no courts at all.
func (r Rule) AppliesToCourt(courtID int64) bool {
	return len(r.CourtIDs) == 0 || slices.Contains(r.CourtIDs, courtID)
}

// Covers reports whether the rule applies to courtID and any part of
// [start, end) falls inside the rule's interval, evaluated in loc.
func (r Rule) Covers(courtID int64, start, end time.Time, loc *time.Location) bool {
	if !r.AppliesToCourt(courtID) || !start.Before(end) {
		return false
	}

	first := DateOf(start.In(loc))
	last := DateOf(end.Add(-time.Nanosecond).In(loc))
	for d := first; !d.After(last); d = d.AddDays(1) {
		if !r.OccursOn(d) {
			continue
		}
		ruleStart, ruleEnd := r.intervalOn(d, loc)
		if overlaps(start, end, ruleStart, ruleEnd) {
			return true
		}
	}
	return false
}

// intervalOn returns the covered part of date d, which must be an occurring date.
func (r Rule) intervalOn(d Date, loc *time.Location) (time.Time, time.Time) {
	dayStart := d.At(0, loc)
	dayEnd := d.AddDays(1).At(0, loc)
	if r.WholeDay() {
		return dayStart, dayEnd
	}

	if r.Recurrence != RecurrenceOnce {
		return d.At(r.StartMinute, loc), d.At(r.EndMinute, loc)
	}

	from, to := dayStart, dayEnd
	if d == r.StartDate {
		from = d.At(r.StartMinute, loc)
	}
	if d == r.lastDate() {
		to = d.At(r.EndMinute, loc)
	}
	return from, to
}

// Restricts reports whether the rule prevents role from booking covered slots.
func (r Rule) Restricts(role models.Role) bool {
	switch r.Kind {
	case KindBlocked:
		return true
	case KindMembersOnly:
		return role == models.RoleVisitor
	case KindCoachesOnly:
		return role == models.RoleVisitor || role == models.RoleMember
	default:
		return false
	}
}

// ParseWeekdays parses a comma-separated list of weekday numbers (0=Sunday).
func ParseWeekdays(value string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || !isDigits(part) || n < 0 || n > 6 {
			return nil, fmt.Errorf("invalid weekday %q: expected 0 (Sunday) to 6 (Saturday)", part)
		}
		day := time.Weekday(n)
		if !slices.Contains(days, day) {
			days = append(days, day)
		}
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("at least one weekday is required")
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days, nil
}

func FormatWeekdays(days []time.Weekday) string {
	parts := make([]string, 0, len(days))
	for _, day := range days {
		parts = append(parts, strconv.Itoa(int(day)))
	}
	return strings.Join(parts, ",")
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
