package email

import (
	"fmt"
	"strings"
	"time"
)

// Message is a rendered plain-text email.
type Message struct {
	Subject string
	Body    string
}

// BookingDetails describes a booking for email bodies. Start and End should
// already be in the club's timezone.
type BookingDetails struct {
	ClubName string
	Court    string
	Start    time.Time
	End      time.Time
	Players  []string
	Notes    string
}

func FormatDateTimeRange(start, end time.Time) (string, string) {
	date := start.Format("Monday, Jan 2, 2006")
	timeRange := fmt.Sprintf("%s - %s %s", start.Format("3:04 PM"), end.Format("3:04 PM"), start.Format("MST"))
	return date, timeRange
}

func BuildConfirmationEmail(details BookingDetails) Message {
	club := clubName(details)
	lines := append([]string{"Your court booking is confirmed.", ""}, detailLines(details)...)
	if notes := strings.TrimSpace(details.Notes); notes != "" {
		lines = append(lines, "Notes: "+notes)
	}
	lines = append(lines, "", "You can cancel from your bookings page any time before the booking starts.")

	return Message{
		Subject: "Court Booking Confirmed - " + club,
		Body:    strings.Join(lines, "\n"),
	}
}

func BuildCancellationEmail(details BookingDetails, reason string) Message {
	club := clubName(details)
	lines := append([]string{"Your court booking has been cancelled.", ""}, detailLines(details)...)
	if reason = strings.TrimSpace(reason); reason != "" {
		lines = append(lines, "Reason: "+reason)
	}

	return Message{
		Subject: "Court Booking Cancelled - " + club,
		Body:    strings.Join(lines, "\n"),
	}
}

func BuildReminderEmail(details BookingDetails) Message {
	club := clubName(details)
	lines := append([]string{"Reminder: your court booking is coming up.", ""}, detailLines(details)...)

	return Message{
		Subject: "Upcoming Court Booking - " + club,
		Body:    strings.Join(lines, "\n"),
	}
}

func clubName(details BookingDetails) string {
	if name := strings.TrimSpace(details.ClubName); name != "" {
		return name
	}
	return "your club"
}

func detailLines(details BookingDetails) []string {
	date, timeRange := "TBD", "TBD"
	if !details.Start.IsZero() && !details.End.IsZero() {
		date, timeRange = FormatDateTimeRange(details.Start, details.End)
	}
	court := strings.TrimSpace(details.Court)
	if court == "" {
		court = "TBD"
	}

	lines := []string{
		"Club: " + clubName(details),
		"Court: " + court,
		"Date: " + date,
		"Time: " + timeRange,
	}
	if len(details.Players) > 0 {
		lines = append(lines, "Players: "+strings.Join(details.Players, ", "))
	}
	return lines
}
