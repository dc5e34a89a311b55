package availability

import (
	"fmt"
	"time"

	"github.com/codr1/Courtside/internal/models"
)

// DayHours is the open interval of one weekday in minutes after midnight.
type DayHours struct {
	Opens  int
	Closes int
}

// Hours maps each open weekday to its hours. A missing weekday is closed.
type Hours map[time.Weekday]DayHours

const (
	defaultOpens  = 8 * 60
	defaultCloses = 21 * 60
)

// DefaultHours is used for clubs that never configured opening hours.
func DefaultHours() Hours {
	hours := make(Hours, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		hours[day] = DayHours{Opens: defaultOpens, Closes: defaultCloses}
	}
	return hours
}

func DefaultDayHours() DayHours {
	return DayHours{Opens: defaultOpens, Closes: defaultCloses}
}

// ParseDayHours parses and validates an opening interval.
func ParseDayHours(opens, closes string) (DayHours, error) {
	open, err := ParseClock(opens)
	if err != nil {
		return DayHours{}, fmt.Errorf("opens_at: %w", err)
	}
	closing, err := ParseClock(closes)
	if err != nil {
		return DayHours{}, fmt.Errorf("closes_at: %w", err)
	}
	if open >= closing {
		return DayHours{}, fmt.Errorf("opens_at must be before closes_at")
	}
	return DayHours{Opens: open, Closes: closing}, nil
}

func (h Hours) On(d Date) (DayHours, bool) {
	day, ok := h[d.Weekday()]
	return day, ok
}

// Policy holds the club settings that shape availability.
type Policy struct {
	Location          *time.Location
	SlotMinutes       int
	MinBookingMinutes int
	MaxBookingMinutes int
	// Windows overrides models.DefaultWindowDays per role.
	Windows map[models.Role]int
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

func (p Policy) slotMinutes() int {
	if p.SlotMinutes <= 0 {
		return 60
	}
	return p.SlotMinutes
}

// WindowDays returns how many days past today role may book. ok is false
// for roles without a window, which may book any future date.
func (p Policy) WindowDays(role models.Role) (days int, ok bool) {
	if role.IsAdmin() {
		return 0, false
	}
	if days, found := p.Windows[role]; found {
		return days, true
	}
	if days, found := models.DefaultWindowDays[role]; found {
		return days, true
	}
	return models.DefaultWindowDays[models.RoleVisitor], true
}

// WindowEnd returns the last date role may book, counted from today in the
// club's timezone. ok is false when the role is unbounded.
func (p Policy) WindowEnd(role models.Role, now time.Time) (Date, bool) {
	days, ok := p.WindowDays(role)
	if !ok {
		return Date{}, false
	}
	return DateOf(now.In(p.location())).AddDays(days), true
}

// Today returns the current date in the club's timezone.
func (p Policy) Today(now time.Time) Date {
	return DateOf(now.In(p.location()))
}
