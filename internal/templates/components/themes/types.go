package themes

import (
	"strings"

	"github.com/a-h/templ"

	"github.com/codr1/Courtside/internal/models"
)

type Preset struct {
	models.BrandingPreset
	IsActive bool
}

type EditorData struct {
	ClubID   int64
	Branding models.Branding
	Presets  []Preset
}

// NewPresets marks the preset whose colors match branding as active.
func NewPresets(rows []models.BrandingPreset, branding models.Branding) []Preset {
	presets := make([]Preset, len(rows))
	for i, row := range rows {
		presets[i] = Preset{
			BrandingPreset: row,
			IsActive: strings.EqualFold(row.PrimaryColor, branding.PrimaryColor) &&
				strings.EqualFold(row.SecondaryColor, branding.SecondaryColor) &&
				strings.EqualFold(row.AccentColor, branding.AccentColor),
		}
	}
	return presets
}

func (p Preset) Colors() []string {
	return []string{p.PrimaryColor, p.SecondaryColor, p.AccentColor}
}

// swatchStyle only ever receives preset colors, which are fixed hex values.
func swatchStyle(color string) templ.SafeCSS {
	return templ.SafeCSS("background:" + color)
}
