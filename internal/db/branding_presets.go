package db

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/codr1/Courtside/assets"
	"github.com/codr1/Courtside/internal/models"
)

const defaultPresetSuffix = " DEFAULT"
const linesPerPreset = 4

// ParseBrandingPresets reads assets/branding and returns the presets in file order.
// Each preset is a name line followed by primary, secondary and accent colors.
func ParseBrandingPresets() ([]models.BrandingPreset, error) {
	file, err := assets.BrandingFS.Open(assets.BrandingPath)
	if err != nil {
		return nil, fmt.Errorf("open embedded branding file: %w", err)
	}
	defer file.Close()

	return parseBrandingPresets(file)
}

func parseBrandingPresets(r io.Reader) ([]models.BrandingPreset, error) {
	lines, err := readNonEmptyLines(r)
	if err != nil {
		return nil, err
	}
	if len(lines)%linesPerPreset != 0 {
		return nil, fmt.Errorf("branding file has %d non-empty lines, expected multiples of %d", len(lines), linesPerPreset)
	}

	presets := make([]models.BrandingPreset, 0, len(lines)/linesPerPreset)
	defaultName := ""
	for i := 0; i < len(lines); i += linesPerPreset {
		name := lines[i]
		isDefault := false
		if strings.HasSuffix(name, defaultPresetSuffix) {
			name = strings.TrimSpace(strings.TrimSuffix(name, defaultPresetSuffix))
			if name == "" {
				return nil, fmt.Errorf("preset name missing before DEFAULT at line %d", i+1)
			}
			if defaultName != "" {
				return nil, fmt.Errorf("multiple DEFAULT presets: %q and %q", defaultName, name)
			}
			defaultName = name
			isDefault = true
		}

		preset := models.BrandingPreset{
			Name:           name,
			IsDefault:      isDefault,
			PrimaryColor:   lines[i+1],
			SecondaryColor: lines[i+2],
			AccentColor:    lines[i+3],
		}
		if err := preset.Validate(); err != nil {
			return nil, fmt.Errorf("invalid preset %q: %w", name, err)
		}
		presets = append(presets, preset)
	}

	return presets, nil
}

// FindBrandingPreset returns the preset with the given name, case-insensitively.
func FindBrandingPreset(name string) (models.BrandingPreset, bool, error) {
	presets, err := ParseBrandingPresets()
	if err != nil {
		return models.BrandingPreset{}, false, err
	}
	for _, preset := range presets {
		if strings.EqualFold(preset.Name, strings.TrimSpace(name)) {
			return preset, true, nil
		}
	}
	return models.BrandingPreset{}, false, nil
}

func readNonEmptyLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	lines := []string{}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read branding file: %w", err)
	}
	return lines, nil
}
