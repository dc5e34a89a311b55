package operatinghours

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestPageRendersDaysAndWindows(t *testing.T) {
	data := PageData{
		ClubID:   4,
		ClubSlug: "riverside",
		Days: []DayHours{
			{DayOfWeek: 0, OpensAt: "09:00", ClosesAt: "17:00", IsClosed: true},
			{DayOfWeek: 1, OpensAt: "07:00", ClosesAt: "22:00"},
		},
		Windows: []WindowSetting{{Role: "MEMBER", Label: "Member", Days: 7}},
	}

	var buf bytes.Buffer
	if err := Page(data).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`hx-put="/api/v1/clubs/4/opening-hours/0"`,
		`hx-put="/api/v1/clubs/4/opening-hours/1"`,
		`name="opens_at" value="07:00"`,
		`name="opens_at" value=""`,
		`hx-post="/api/v1/clubs/4/booking-windows"`,
		`name="member" value="7"`,
		"Member (days ahead)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if got := strings.Count(out, `value="true" checked`); got != 1 {
		t.Fatalf("expected one closed day, got %d", got)
	}
	if strings.Contains(out, "Using the default hours") {
		t.Fatal("expected no default hours note")
	}
}
