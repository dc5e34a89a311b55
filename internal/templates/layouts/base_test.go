package layouts

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/codr1/Courtside/internal/models"
)

func TestBaseRendersBrandingAndEscapes(t *testing.T) {
	page := Page{
		Title:    "Book a court",
		ClubName: "Riverside <Tennis>",
		ClubSlug: "riverside",
		Branding: models.Branding{
			PrimaryColor:   "#14532d",
			SecondaryColor: "not-a-color",
			AccentColor:    "#ffd400",
			Tagline:        "Play & stay",
		},
	}
	body := templ.Raw(`<p id="body">grid</p>`)

	var buf bytes.Buffer
	if err := Base(page, body).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<title>Book a court | Riverside &lt;Tennis&gt;</title>",
		"--brand-primary:#14532d;--brand-on-primary:#FFFFFF",
		"--brand-secondary:#e5e7eb",
		"--brand-accent:#ffd400;--brand-on-accent:#000000",
		"Play &amp; stay",
		`<p id="body">grid</p>`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestBaseWithoutClubOmitsHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := Base(Page{}, nil).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(buf.String(), "<header") {
		t.Fatal("expected no club header")
	}
	if !strings.Contains(buf.String(), "<title>Courtside</title>") {
		t.Fatal("expected default title")
	}
}
