package operatinghours

import (
	"strings"
	"time"
)

type DayHours struct {
	DayOfWeek int64
	OpensAt   string
	ClosesAt  string
	IsClosed  bool
}

func (d DayHours) Day() string {
	return time.Weekday(d.DayOfWeek).String()
}

// WindowSetting is how far ahead one role may book.
type WindowSetting struct {
	Role      string
	Label     string
	Days      int64
	IsDefault bool
}

type PageData struct {
	ClubID    int64
	ClubSlug  string
	IsDefault bool
	Days      []DayHours
	Windows   []WindowSetting
}

// shownOpensAt is empty for a closed day so the form starts blank.
func (d DayHours) shownOpensAt() string {
	if d.IsClosed {
		return ""
	}
	return d.OpensAt
}

func (d DayHours) shownClosesAt() string {
	if d.IsClosed {
		return ""
	}
	return d.ClosesAt
}

func (w WindowSetting) Field() string {
	return strings.ToLower(w.Role)
}
