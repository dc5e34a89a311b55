// Package availability evaluates court availability for a club from its
// courts, opening hours, schedule rules, booking windows and bookings.
// Everything here is pure: callers load the data and pass a fixed now.
package availability

import (
	"time"

	"github.com/codr1/Courtside/internal/models"
)

const BookingStatusConfirmed = "confirmed"

type Court struct {
	ID     int64  `json:"id"`
	Number int64  `json:"court_number"`
	Name   string `json:"name"`
	Active bool   `json:"is_active"`
}

type Booking struct {
	ID      int64
	CourtID int64
	Start   time.Time
	End     time.Time
	Status  string
}

func (b Booking) blocks() bool {
	return b.Status == "" || b.Status == BookingStatusConfirmed
}

type SlotStatus string

const (
	SlotAvailable     SlotStatus = "available"
	SlotBooked        SlotStatus = "booked"
	SlotBlocked       SlotStatus = "blocked"
	SlotRestricted    SlotStatus = "restricted"
	SlotPast          SlotStatus = "past"
	SlotOutsideWindow SlotStatus = "outside_window"
)

type Slot struct {
	CourtID   int64      `json:"court_id"`
	Start     time.Time  `json:"start"`
	End       time.Time  `json:"end"`
	Label     string     `json:"label"`
	Status    SlotStatus `json:"status"`
	BookingID int64      `json:"booking_id,omitempty"`
	RuleID    int64      `json:"rule_id,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

type CourtSlots struct {
	Court Court  `json:"court"`
	Slots []Slot `json:"slots"`
}

type DayGrid struct {
	Date        Date         `json:"date"`
	Closed      bool         `json:"closed"`
	Opens       string       `json:"opens,omitempty"`
	Closes      string       `json:"closes,omitempty"`
	SlotMinutes int          `json:"slot_minutes"`
	Courts      []CourtSlots `json:"courts"`
}

// Schedule is everything needed to evaluate one club over a date range.
// Bookings and Rules may include entries outside the evaluated day.
type Schedule struct {
	Courts   []Court
	Hours    Hours
	Rules    []Rule
	Bookings []Booking
	Policy   Policy
}

// Grid lays out the active courts' slots for day as seen by role at now.
//
// A slot's status is the first that applies of: booked, blocked, past,
// outside_window, restricted, available.
func (s Schedule) Grid(day Date, role models.Role, now time.Time) DayGrid {
	loc := s.Policy.location()
	slotMinutes := s.Policy.slotMinutes()
	grid := DayGrid{Date: day, SlotMinutes: slotMinutes}

	hours, open := s.Hours.On(day)
	if !open {
		grid.Closed = true
		for _, court := range s.Courts {
			if court.Active {
				grid.Courts = append(grid.Courts, CourtSlots{Court: court, Slots: []Slot{}})
			}
		}
		return grid
	}
	grid.Opens = FormatClock(hours.Opens)
	grid.Closes = FormatClock(hours.Closes)

	windowEnd, bounded := s.Policy.WindowEnd(role, now)
	outsideWindow := bounded && day.After(windowEnd)

	for _, court := range s.Courts {
		if !court.Active {
			continue
		}
		row := CourtSlots{Court: court, Slots: []Slot{}}
		for minute := hours.Opens; minute+slotMinutes <= hours.Closes; minute += slotMinutes {
			start := day.At(minute, loc)
			end := day.At(minute+slotMinutes, loc)
			if !start.Before(end) {
				continue
			}
			slot := Slot{
				CourtID: court.ID,
				Start:   start,
				End:     end,
				Label:   FormatClock(minute),
				Status:  SlotAvailable,
			}
			s.classify(&slot, role, now, outsideWindow)
			row.Slots = append(row.Slots, slot)
		}
		grid.Courts = append(grid.Courts, row)
	}
	return grid
}

func (s Schedule) classify(slot *Slot, role models.Role, now time.Time, outsideWindow bool) {
	loc := s.Policy.location()
	if booking, ok := s.conflictingBooking(slot.CourtID, slot.Start, slot.End, 0); ok {
		slot.Status = SlotBooked
		slot.BookingID = booking.ID
		return
	}
	if rule, ok := s.coveringRule(slot.CourtID, slot.Start, slot.End, loc, func(r Rule) bool {
		return r.Kind == KindBlocked
	}); ok {
		slot.Status = SlotBlocked
		slot.RuleID = rule.ID
		slot.Reason = rule.Reason
		return
	}
	if slot.Start.Before(now) {
		slot.Status = SlotPast
		return
	}
	if outsideWindow {
		slot.Status = SlotOutsideWindow
		return
	}
	if rule, ok := s.coveringRule(slot.CourtID, slot.Start, slot.End, loc, func(r Rule) bool {
		return r.Kind != KindBlocked && r.Restricts(role)
	}); ok {
		slot.Status = SlotRestricted
		slot.RuleID = rule.ID
		slot.Reason = rule.Reason
	}
}

func (s Schedule) conflictingBooking(courtID int64, start, end time.Time, excludeID int64) (Booking, bool) {
	for _, booking := range s.Bookings {
		if booking.CourtID != courtID || !booking.blocks() {
			continue
		}
		if excludeID != 0 && booking.ID == excludeID {
			continue
		}
		if overlaps(start, end, booking.Start, booking.End) {
			return booking, true
		}
	}
	return Booking{}, false
}

func (s Schedule) coveringRule(courtID int64, start, end time.Time, loc *time.Location, match func(Rule) bool) (Rule, bool) {
	for _, rule := range s.Rules {
		if match(rule) && rule.Covers(courtID, start, end, loc) {
			return rule, true
		}
	}
	return Rule{}, false
}

func (s Schedule) court(courtID int64) (Court, bool) {
	for _, court := range s.Courts {
		if court.ID == courtID {
			return court, true
		}
	}
	return Court{}, false
}
