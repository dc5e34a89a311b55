package availability

import (
	"fmt"
	"strconv"
	"strings"
)

const MinutesPerDay = 24 * 60

// ParseClock parses a time of day as "HH:MM" (24h) or "H:MM AM/PM" and
// returns minutes after midnight. "24:00" is accepted as end of day.
func ParseClock(value string) (int, error) {
	raw := strings.ToUpper(strings.TrimSpace(value))
	if raw == "" {
		return 0, fmt.Errorf("time is required")
	}

	meridiem := ""
	for _, suffix := range []string{"AM", "PM"} {
		if strings.HasSuffix(raw, suffix) {
			meridiem = suffix
			raw = strings.TrimSpace(strings.TrimSuffix(raw, suffix))
			break
		}
	}

	hourPart, minutePart, ok := strings.Cut(raw, ":")
	if !ok || len(minutePart) != 2 || hourPart == "" || len(hourPart) > 2 || !isDigits(hourPart) || !isDigits(minutePart) {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM or H:MM AM/PM", value)
	}
	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM or H:MM AM/PM", value)
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time %q: minutes must be 00-59", value)
	}

	switch meridiem {
	case "":
		if hour == 24 && minute == 0 {
			return MinutesPerDay, nil
		}
		if hour < 0 || hour > 23 {
			return 0, fmt.Errorf("invalid time %q: hour must be 00-23", value)
		}
	default:
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("invalid time %q: hour must be 1-12 with AM/PM", value)
		}
		if hour == 12 {
			hour = 0
		}
		if meridiem == "PM" {
			hour += 12
		}
	}

	return hour*60 + minute, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatClock renders minutes after midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
