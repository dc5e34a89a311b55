// Package courtgrid renders a club's daily court availability.
package courtgrid

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/codr1/Courtside/internal/availability"
)

const localTimeLayout = "2006-01-02T15:04"

type GridData struct {
	ClubID   int64
	ClubSlug string
	Date     string
	PrevDate string
	NextDate string
	Closed   bool
	Opens    string
	Closes   string
	SignedIn bool
	Role     string
	Courts   []CourtRow
}

type CourtRow struct {
	ID    int64
	Label string
	Slots []SlotCell
}

type SlotCell struct {
	Label    string
	Status   string
	Reason   string
	Start    string
	End      string
	Bookable bool
}

// NewGridData converts a day grid to view data with times in loc. Available
// slots are bookable only for signed-in users.
func NewGridData(clubID int64, slug string, grid availability.DayGrid, loc *time.Location, signedIn bool, role string) GridData {
	if loc == nil {
		loc = time.UTC
	}
	data := GridData{
		ClubID:   clubID,
		ClubSlug: slug,
		Date:     grid.Date.String(),
		PrevDate: grid.Date.AddDays(-1).String(),
		NextDate: grid.Date.AddDays(1).String(),
		Closed:   grid.Closed,
		Opens:    grid.Opens,
		Closes:   grid.Closes,
		SignedIn: signedIn,
		Role:     role,
	}
	for _, row := range grid.Courts {
		court := CourtRow{ID: row.Court.ID, Label: courtLabel(row.Court)}
		for _, slot := range row.Slots {
			court.Slots = append(court.Slots, SlotCell{
				Label:    slot.Label,
				Status:   string(slot.Status),
				Reason:   slot.Reason,
				Start:    slot.Start.In(loc).Format(localTimeLayout),
				End:      slot.End.In(loc).Format(localTimeLayout),
				Bookable: signedIn && slot.Status == availability.SlotAvailable,
			})
		}
		data.Courts = append(data.Courts, court)
	}
	return data
}

func courtLabel(court availability.Court) string {
	if name := strings.TrimSpace(court.Name); name != "" {
		return fmt.Sprintf("Court %d (%s)", court.Number, name)
	}
	return fmt.Sprintf("Court %d", court.Number)
}

func (d GridData) dayURL(date string) templ.SafeURL {
	return templ.URL("/clubs/" + d.ClubSlug + "?date=" + url.QueryEscape(date))
}

func (d GridData) gridURL() string {
	return "/clubs/" + d.ClubSlug + "?date=" + url.QueryEscape(d.Date)
}

func (d GridData) roleLabel() string {
	return strings.ToLower(strings.ReplaceAll(d.Role, "_", " "))
}

func (s SlotCell) className() string {
	return "slot slot-" + strings.ReplaceAll(strings.ToLower(s.Status), "_", "-") + " rounded bg-gray-200 px-2 py-1 text-gray-600"
}

// Title is the hover text of a slot that cannot be booked.
func (s SlotCell) Title() string {
	title := statusLabel(s.Status)
	if s.Reason != "" {
		title += ": " + s.Reason
	}
	return title
}

func statusLabel(status string) string {
	switch availability.SlotStatus(status) {
	case availability.SlotAvailable:
		return "Available"
	case availability.SlotBooked:
		return "Booked"
	case availability.SlotBlocked:
		return "Blocked"
	case availability.SlotRestricted:
		return "Restricted"
	case availability.SlotPast:
		return "Past"
	case availability.SlotOutsideWindow:
		return "Not yet bookable"
	default:
		return status
	}
}
