// internal/models/branding.go
package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	dbgen "github.com/codr1/Courtside/internal/db/generated"
)

// Brand colors back buttons and headers, not body text, so we use the AA large-text threshold.
const wcagAAMinContrastRatio = 3.0
const wcagAAContrastNote = "WCAG AA for large text/UI components"
const maxPresetNameLength = 60
const maxTaglineLength = 140
const darkTextColor = "#000000"
const lightTextColor = "#FFFFFF"
const defaultBrandPrimary = "#14532d"
const defaultBrandSecondary = "#e5e7eb"
const defaultBrandAccent = "#2563eb"

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
var presetNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 ()-]*$`)

func IsHexColor(value string) bool {
	return hexColorRegex.MatchString(strings.TrimSpace(value))
}

// Branding is the look of a club's public pages.
type Branding struct {
	ClubID         int64     `json:"club_id"`
	LogoURL        string    `json:"logo_url"`
	Tagline        string    `json:"tagline"`
	PrimaryColor   string    `json:"primary_color"`
	SecondaryColor string    `json:"secondary_color"`
	AccentColor    string    `json:"accent_color"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// BrandingPreset is a named color set shipped with the application.
type BrandingPreset struct {
	Name           string `json:"name"`
	IsDefault      bool   `json:"is_default"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
	AccentColor    string `json:"accent_color"`
}

type BrandingQueries interface {
	GetClubBranding(ctx context.Context, clubID int64) (dbgen.ClubBranding, error)
}

func DefaultBranding() Branding {
	return Branding{
		PrimaryColor:   defaultBrandPrimary,
		SecondaryColor: defaultBrandSecondary,
		AccentColor:    defaultBrandAccent,
	}
}

func (b Branding) Validate() error {
	if len(b.Tagline) > maxTaglineLength {
		return fmt.Errorf("tagline must be %d characters or fewer", maxTaglineLength)
	}
	if b.LogoURL != "" {
		parsed, err := url.Parse(b.LogoURL)
		if err != nil || (parsed.Scheme != "https" && parsed.Scheme != "http") || parsed.Host == "" {
			return fmt.Errorf("logo_url must be an absolute http(s) URL")
		}
	}
	return validateColors(map[string]string{
		"primary_color":   b.PrimaryColor,
		"secondary_color": b.SecondaryColor,
		"accent_color":    b.AccentColor,
	})
}

func (p BrandingPreset) Validate() error {
	trimmedName := strings.TrimSpace(p.Name)
	if trimmedName == "" {
		return fmt.Errorf("name is required")
	}
	if trimmedName != p.Name {
		return fmt.Errorf("name must not have leading or trailing whitespace")
	}
	if len(trimmedName) > maxPresetNameLength {
		return fmt.Errorf("name must be %d characters or fewer", maxPresetNameLength)
	}
	if !presetNameRegex.MatchString(trimmedName) {
		return fmt.Errorf("name may only contain letters, numbers, spaces, hyphens, and parentheses")
	}
	return validateColors(map[string]string{
		"primary_color":   p.PrimaryColor,
		"secondary_color": p.SecondaryColor,
		"accent_color":    p.AccentColor,
	})
}

// Apply copies the preset colors onto b, leaving logo and tagline alone.
func (p BrandingPreset) Apply(b Branding) Branding {
	b.PrimaryColor = p.PrimaryColor
	b.SecondaryColor = p.SecondaryColor
	b.AccentColor = p.AccentColor
	return b
}

// GetClubBranding returns the stored branding for a club, or the default
// colors when the club never customized it.
func GetClubBranding(ctx context.Context, queries BrandingQueries, clubID int64) (Branding, error) {
	row, err := queries.GetClubBranding(ctx, clubID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			branding := DefaultBranding()
			branding.ClubID = clubID
			return branding, nil
		}
		return Branding{}, err
	}
	return BrandingFromDB(row), nil
}

func BrandingFromDB(row dbgen.ClubBranding) Branding {
	return Branding{
		ClubID:         row.ClubID,
		LogoURL:        row.LogoUrl,
		Tagline:        row.Tagline,
		PrimaryColor:   row.PrimaryColor,
		SecondaryColor: row.SecondaryColor,
		AccentColor:    row.AccentColor,
		UpdatedAt:      row.UpdatedAt,
	}
}

// TextColorFor picks black or white text, whichever reads better on background.
func TextColorFor(background string) string {
	dark, err := contrastRatio(darkTextColor, background)
	if err != nil {
		return darkTextColor
	}
	light, err := contrastRatio(lightTextColor, background)
	if err != nil {
		return darkTextColor
	}
	if light > dark {
		return lightTextColor
	}
	return darkTextColor
}

func validateColors(colorFields map[string]string) error {
	for _, name := range []string{"primary_color", "secondary_color", "accent_color"} {
		value := colorFields[name]
		if !hexColorRegex.MatchString(value) {
			return fmt.Errorf("%s must be a 6-digit hex color like #AABBCC", name)
		}
		if err := validateTextContrast(name, value); err != nil {
			return err
		}
	}
	return nil
}

func validateTextContrast(colorName, backgroundColor string) error {
	textColors := []string{darkTextColor, lightTextColor}
	bestRatio := 0.0
	bestText := ""
	for _, textColor := range textColors {
		ratio, err := contrastRatio(textColor, backgroundColor)
		if err != nil {
			return err
		}
		if ratio > bestRatio {
			bestRatio = ratio
			bestText = textColor
		}
	}
	if bestRatio < wcagAAMinContrastRatio {
		return fmt.Errorf(
			"%s must have contrast ratio >= %.1f with #000000 or #FFFFFF text (%s); best is %s at %.2f",
			colorName,
			wcagAAMinContrastRatio,
			wcagAAContrastNote,
			bestText,
			bestRatio,
		)
	}
	return nil
}

func contrastRatio(textColor, backgroundColor string) (float64, error) {
	textL, err := relativeLuminance(textColor)
	if err != nil {
		return 0, err
	}
	backgroundL, err := relativeLuminance(backgroundColor)
	if err != nil {
		return 0, err
	}
	lightest := math.Max(textL, backgroundL)
	darkest := math.Min(textL, backgroundL)
	return (lightest + 0.05) / (darkest + 0.05), nil
}

func relativeLuminance(hexColor string) (float64, error) {
	if !hexColorRegex.MatchString(hexColor) {
		return 0, fmt.Errorf("invalid hex color: %s", hexColor)
	}
	c, err := colorful.Hex(hexColor)
	if err != nil {
		return 0, fmt.Errorf("invalid hex color: %s", hexColor)
	}
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b, nil
}
