// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package visualization

import (
	"fmt"
	"slices"

	"github.com/teradata-labs/chartkit/pkg/palette"
)

// DefaultColors is the series palette used when neither the parameters nor
// the theme supply one.
var DefaultColors = []string{
	"#5470c6",
	"#91cc75",
	"#fac858",
	"#ee6666",
	"#73c0de",
	"#3ba272",
	"#fc8452",
	"#9a60b4",
}

// GaugeBand is one colored segment of the gauge axis line, ending at a
// fraction of the range.
type GaugeBand struct {
	Until float64 `json:"until"`
	Color string  `json:"color"`
}

// StyleConfig holds the theme tokens applied to every derived chart.
type StyleConfig struct {
	Name            string   `json:"name,omitempty"`
	ColorPalette    []string `json:"color_palette,omitempty"`
	ColorBackground string   `json:"color_background,omitempty"` // empty leaves the renderer default
	ColorText       string   `json:"color_text,omitempty"`
	FontFamily      string   `json:"font_family,omitempty"`

	// ItemColorRange colors individual items for presentation variants
	// when the parameters carry no range of their own.
	ItemColorRange palette.Range `json:"item_color_range"`

	PieBorderColor string      `json:"pie_border_color,omitempty"`
	GaugeBands     []GaugeBand `json:"gauge_bands,omitempty"`
	GaugeLineWidth int         `json:"gauge_line_width,omitempty"`
}

// DefaultStyleConfig returns the default theme.
func DefaultStyleConfig() *StyleConfig {
	return &StyleConfig{
		Name:         "default",
		ColorPalette: slices.Clone(DefaultColors),
		ItemColorRange: palette.Range{
			Start: palette.RGB{R: 225, G: 183, B: 255},
			End:   palette.RGB{R: 102, G: 88, B: 196},
		},
		PieBorderColor: "#fff",
		GaugeBands: []GaugeBand{
			{Until: 0.3, Color: "#67e0e3"},
			{Until: 0.7, Color: "#37a2da"},
			{Until: 1, Color: "#fd666d"},
		},
		GaugeLineWidth: 30,
	}
}

// ThemeNames lists the built-in theme variants.
func ThemeNames() []string {
	return []string{"default", "dark", "light", "minimal"}
}

// GetThemeVariant returns a style config for a theme variant. Unknown names
// fall back to the default theme.
func GetThemeVariant(variant string) *StyleConfig {
	style := DefaultStyleConfig()

	switch variant {
	case "dark":
		style.Name = "dark"
		style.ColorBackground = "#100c2a"
		style.ColorText = "#f5f5f5"
		style.PieBorderColor = "#100c2a"
		return style

	case "light":
		style.Name = "light"
		style.ColorBackground = "#ffffff"
		style.ColorText = "#374151"
		return style

	case "minimal":
		style.Name = "minimal"
		style.ColorPalette = []string{
			"#1f2937",
			"#374151",
			"#4b5563",
			"#6b7280",
			"#9ca3af",
		}
		style.ItemColorRange = palette.Range{
			Start: palette.RGB{R: 31, G: 41, B: 55},
			End:   palette.RGB{R: 209, G: 213, B: 219},
		}
		return style

	default:
		return style
	}
}

// ValidateStyle checks that every color token parses.
func ValidateStyle(style *StyleConfig) error {
	if style == nil {
		return fmt.Errorf("style config is nil")
	}
	if len(style.ColorPalette) == 0 {
		return fmt.Errorf("color_palette is required")
	}
	for _, c := range style.ColorPalette {
		if _, err := palette.Parse(c); err != nil {
			return fmt.Errorf("color_palette: %w", err)
		}
	}
	for i, band := range style.GaugeBands {
		if band.Until <= 0 || band.Until > 1 {
			return fmt.Errorf("gauge band %d: until must be in (0, 1]", i)
		}
		if i > 0 && band.Until <= style.GaugeBands[i-1].Until {
			return fmt.Errorf("gauge band %d: bands must be increasing", i)
		}
	}
	if style.GaugeLineWidth <= 0 {
		return fmt.Errorf("gauge_line_width must be positive")
	}
	return nil
}

// MergeStyles overlays the non-zero fields of custom onto defaults.
func MergeStyles(custom, defaults *StyleConfig) *StyleConfig {
	if defaults == nil {
		defaults = DefaultStyleConfig()
	}
	if custom == nil {
		return defaults
	}

	merged := *defaults

	if custom.Name != "" {
		merged.Name = custom.Name
	}
	if len(custom.ColorPalette) > 0 {
		merged.ColorPalette = custom.ColorPalette
	}
	if custom.ColorBackground != "" {
		merged.ColorBackground = custom.ColorBackground
	}
	if custom.ColorText != "" {
		merged.ColorText = custom.ColorText
	}
	if custom.FontFamily != "" {
		merged.FontFamily = custom.FontFamily
	}
	if custom.ItemColorRange != (palette.Range{}) {
		merged.ItemColorRange = custom.ItemColorRange
	}
	if custom.PieBorderColor != "" {
		merged.PieBorderColor = custom.PieBorderColor
	}
	if len(custom.GaugeBands) > 0 {
		merged.GaugeBands = custom.GaugeBands
	}
	if custom.GaugeLineWidth > 0 {
		merged.GaugeLineWidth = custom.GaugeLineWidth
	}

	return &merged
}
