package layouts

import (
	"fmt"
	"strings"

	"github.com/codr1/Courtside/internal/models"
)

// brandingCSSVars renders the club colors as CSS custom properties, with a
// readable text color for each background.
func brandingCSSVars(branding models.Branding) string {
	defaults := models.DefaultBranding()
	primary := colorOrDefault(branding.PrimaryColor, defaults.PrimaryColor)
	secondary := colorOrDefault(branding.SecondaryColor, defaults.SecondaryColor)
	accent := colorOrDefault(branding.AccentColor, defaults.AccentColor)

	return fmt.Sprintf(
		":root{--brand-primary:%s;--brand-on-primary:%s;--brand-secondary:%s;--brand-on-secondary:%s;--brand-accent:%s;--brand-on-accent:%s;}",
		primary, models.TextColorFor(primary),
		secondary, models.TextColorFor(secondary),
		accent, models.TextColorFor(accent),
	)
}

func colorOrDefault(value string, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || !models.IsHexColor(trimmed) {
		return fallback
	}
	return trimmed
}
