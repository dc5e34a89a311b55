package availability

import (
	"fmt"
	"time"

	"github.com/codr1/Courtside/internal/models"
)

type ViolationCode string

const (
	ViolationCourtInactive ViolationCode = "court_inactive"
	ViolationClosed        ViolationCode = "closed"
	ViolationOutsideHours  ViolationCode = "outside_hours"
	ViolationPast          ViolationCode = "past"
	ViolationOutsideWindow ViolationCode = "outside_window"
	ViolationTooShort      ViolationCode = "too_short"
	ViolationTooLong       ViolationCode = "too_long"
	ViolationMisaligned    ViolationCode = "misaligned"
	ViolationBlocked       ViolationCode = "blocked"
	ViolationRestricted    ViolationCode = "restricted"
	ViolationConflict      ViolationCode = "conflict"
)

// Violation is the first booking rule a request breaks.
type Violation struct {
	Code      ViolationCode `json:"code"`
	Message   string        `json:"message"`
	RuleID    int64         `json:"rule_id,omitempty"`
	BookingID int64         `json:"booking_id,omitempty"`
}

func (v *Violation) Error() string {
	return v.Message
}

// BookingRequest describes a proposed booking. BookingID is set when an
// existing booking is being moved so it does not conflict with itself.
type BookingRequest struct {
	BookingID int64
	CourtID   int64
	Start     time.Time
	End       time.Time
}

// CheckBooking returns a *Violation for the first rule req breaks, or nil.
func (s Schedule) CheckBooking(req BookingRequest, role models.Role, now time.Time) error {
	loc := s.Policy.location()

	court, ok := s.court(req.CourtID)
	if !ok || !court.Active {
		return &Violation{Code: ViolationCourtInactive, Message: "court is not available for booking"}
	}

	if !req.Start.Before(req.End) {
		return &Violation{Code: ViolationTooShort, Message: "end time must be after start time"}
	}

	localStart := req.Start.In(loc)
	day := DateOf(localStart)
	hours, open := s.Hours.On(day)
	if !open {
		return &Violation{Code: ViolationClosed, Message: fmt.Sprintf("club is closed on %s", localStart.Weekday())}
	}
	opens := day.At(hours.Opens, loc)
	closes := day.At(hours.Closes, loc)
	if req.Start.Before(opens) || req.End.After(closes) {
		return &Violation{
			Code:    ViolationOutsideHours,
			Message: fmt.Sprintf("bookings on %s must be between %s and %s", day, FormatClock(hours.Opens), FormatClock(hours.Closes)),
		}
	}

	if req.Start.Before(now) {
		return &Violation{Code: ViolationPast, Message: "booking start time is in the past"}
	}

	if windowEnd, bounded := s.Policy.WindowEnd(role, now); bounded && day.After(windowEnd) {
		days, _ := s.Policy.WindowDays(role)
		return &Violation{
			Code:    ViolationOutsideWindow,
			Message: fmt.Sprintf("%s bookings can be made at most %d days in advance", role, days),
		}
	}

	duration := int(req.End.Sub(req.Start) / time.Minute)
	if s.Policy.MinBookingMinutes > 0 && duration < s.Policy.MinBookingMinutes {
		return &Violation{Code: ViolationTooShort, Message: fmt.Sprintf("bookings must be at least %d minutes", s.Policy.MinBookingMinutes)}
	}
	if s.Policy.MaxBookingMinutes > 0 && duration > s.Policy.MaxBookingMinutes {
		return &Violation{Code: ViolationTooLong, Message: fmt.Sprintf("bookings must be at most %d minutes", s.Policy.MaxBookingMinutes)}
	}

	slotMinutes := s.Policy.slotMinutes()
	offset := int(req.Start.Sub(opens) / time.Minute)
	if req.Start.Sub(opens)%time.Minute != 0 || req.End.Sub(req.Start)%time.Minute != 0 ||
		offset%slotMinutes != 0 || duration%slotMinutes != 0 {
		return &Violation{Code: ViolationMisaligned, Message: fmt.Sprintf("bookings must align to %d-minute slots", slotMinutes)}
	}

	for _, rule := range s.Rules {
		if rule.Kind == KindBlocked && rule.Covers(req.CourtID, req.Start, req.End, loc) {
			return &Violation{Code: ViolationBlocked, Message: blockedMessage(rule), RuleID: rule.ID}
		}
	}
	for _, rule := range s.Rules {
		if rule.Kind != KindBlocked && rule.Restricts(role) && rule.Covers(req.CourtID, req.Start, req.End, loc) {
			return &Violation{Code: ViolationRestricted, Message: restrictedMessage(rule), RuleID: rule.ID}
		}
	}

	if booking, ok := s.conflictingBooking(req.CourtID, req.Start, req.End, req.BookingID); ok {
		return &Violation{Code: ViolationConflict, Message: "court is already booked for part of that time", BookingID: booking.ID}
	}

	return nil
}

func blockedMessage(rule Rule) string {
	if rule.Reason != "" {
		return "court is blocked: " + rule.Reason
	}
	return "court is blocked for that time"
}

func restrictedMessage(rule Rule) string {
	audience := "members"
	if rule.Kind == KindCoachesOnly {
		audience = "coaches"
	}
	if rule.Reason != "" {
		return fmt.Sprintf("reserved for %s: %s", audience, rule.Reason)
	}
	return fmt.Sprintf("that time is reserved for %s", audience)
}
