// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package palette generates deterministic color ranges for categorical
// chart coloring.
package palette

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/teradata-labs/chartkit/internal/mathutil"
)

// RGB is an 8-bit-per-channel color. Channels outside 0-255 are clamped
// when the color is used.
type RGB struct {
	R int `json:"r" yaml:"r"`
	G int `json:"g" yaml:"g"`
	B int `json:"b" yaml:"b"`
}

// String renders the color as rgb(r,g,b).
func (c RGB) String() string {
	c = c.clamped()
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// Hex renders the color as #rrggbb.
func (c RGB) Hex() string {
	c = c.clamped()
	return c.toColorful().Hex()
}

func (c RGB) clamped() RGB {
	return RGB{
		R: mathutil.Clamp(c.R, 0, 255),
		G: mathutil.Clamp(c.G, 0, 255),
		B: mathutil.Clamp(c.B, 0, 255),
	}
}

func (c RGB) toColorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Parse reads a color as #rgb, #rrggbb or rgb(r,g,b).
func Parse(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")") {
		var c RGB
		body := strings.ReplaceAll(s[4:len(s)-1], " ", "")
		if _, err := fmt.Sscanf(body, "%d,%d,%d", &c.R, &c.G, &c.B); err != nil {
			return RGB{}, fmt.Errorf("invalid rgb color %q: %w", s, err)
		}
		return c.clamped(), nil
	}

	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	col, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := col.RGB255()
	return RGB{R: int(r), G: int(g), B: int(b)}, nil
}

// MustParse is Parse for package-level constants; it panics on bad input.
func MustParse(s string) RGB {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Generate returns steps colors linearly interpolated from start to end,
// formatted as rgb(r,g,b). Step i uses t = i/(steps-1) and rounds each
// channel to the nearest integer, halves rounding up. One step yields only
// the start color; zero or negative steps yield an empty slice.
func Generate(start, end RGB, steps int) []string {
	if steps <= 0 {
		return []string{}
	}
	start, end = start.clamped(), end.clamped()
	if steps == 1 {
		return []string{start.String()}
	}

	colors := make([]string, steps)
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		colors[i] = RGB{
			R: lerp(start.R, end.R, t),
			G: lerp(start.G, end.G, t),
			B: lerp(start.B, end.B, t),
		}.String()
	}
	return colors
}

func lerp(a, b int, t float64) int {
	return int(math.Floor(float64(a) + float64(b-a)*t + 0.5))
}

// Blend modes for GenerateBlend.
const (
	BlendRGB = "rgb"
	BlendLab = "lab"
	BlendHCL = "hcl"
)

// GenerateBlend is like Generate but interpolates in a perceptual color
// space and returns hex strings. BlendRGB produces the same channels as
// Generate.
func GenerateBlend(start, end RGB, steps int, mode string) ([]string, error) {
	if steps <= 0 {
		return []string{}, nil
	}
	a, b := start.clamped().toColorful(), end.clamped().toColorful()

	var blend func(t float64) colorful.Color
	switch strings.ToLower(mode) {
	case "", BlendRGB:
		colors := make([]string, 0, steps)
		for _, s := range Generate(start, end, steps) {
			c, err := Parse(s)
			if err != nil {
				return nil, err
			}
			colors = append(colors, c.Hex())
		}
		return colors, nil
	case BlendLab:
		blend = func(t float64) colorful.Color { return a.BlendLab(b, t).Clamped() }
	case BlendHCL:
		blend = func(t float64) colorful.Color { return a.BlendHcl(b, t).Clamped() }
	default:
		return nil, fmt.Errorf("unknown blend mode %q (must be rgb, lab or hcl)", mode)
	}

	if steps == 1 {
		return []string{a.Hex()}, nil
	}
	colors := make([]string, steps)
	for i := 0; i < steps; i++ {
		colors[i] = blend(float64(i) / float64(steps-1)).Hex()
	}
	return colors, nil
}

// At returns colors[i mod len(colors)], or "" for an empty palette.
func At(colors []string, i int) string {
	if len(colors) == 0 {
		return ""
	}
	i %= len(colors)
	if i < 0 {
		i += len(colors)
	}
	return colors[i]
}

// Range is a start/end pair used to color the items of a chart.
type Range struct {
	Start RGB `json:"start" yaml:"start"`
	End   RGB `json:"end" yaml:"end"`
}

// Colors generates n colors over the range.
func (r Range) Colors(n int) []string {
	return Generate(r.Start, r.End, n)
}
