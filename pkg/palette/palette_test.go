// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package palette

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	black := RGB{0, 0, 0}
	white := RGB{255, 255, 255}

	tests := []struct {
		name       string
		start, end RGB
		steps      int
		want       []string
	}{
		{
			name:  "black to white",
			start: black, end: white, steps: 5,
			want: []string{"rgb(0,0,0)", "rgb(64,64,64)", "rgb(128,128,128)", "rgb(191,191,191)", "rgb(255,255,255)"},
		},
		{
			name:  "single step is the start color",
			start: RGB{84, 112, 198}, end: white, steps: 1,
			want: []string{"rgb(84,112,198)"},
		},
		{
			name:  "zero steps",
			start: black, end: white, steps: 0,
			want: []string{},
		},
		{
			name:  "negative steps",
			start: black, end: white, steps: -3,
			want: []string{},
		},
		{
			name:  "two steps are the endpoints",
			start: RGB{10, 20, 30}, end: RGB{200, 100, 0}, steps: 2,
			want: []string{"rgb(10,20,30)", "rgb(200,100,0)"},
		},
		{
			name:  "descending channels",
			start: RGB{255, 0, 100}, end: RGB{0, 255, 100}, steps: 3,
			want: []string{"rgb(255,0,100)", "rgb(128,128,100)", "rgb(0,255,100)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Generate(tt.start, tt.end, tt.steps))
		})
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(RGB{1, 2, 3}, RGB{250, 128, 7}, 17)
	b := Generate(RGB{1, 2, 3}, RGB{250, 128, 7}, 17)
	assert.Equal(t, a, b)
	assert.Len(t, a, 17)
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    RGB
		wantErr bool
	}{
		{in: "#5470c6", want: RGB{84, 112, 198}},
		{in: "91cc75", want: RGB{145, 204, 117}},
		{in: "#fff", want: RGB{255, 255, 255}},
		{in: "rgb(1, 2, 3)", want: RGB{1, 2, 3}},
		{in: "rgb(300,-4,3)", want: RGB{255, 0, 3}},
		{in: "#zzzzzz", wantErr: true},
		{in: "rgb(a,b,c)", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRGBFormatting(t *testing.T) {
	c := RGB{R: 84, G: 112, B: 198}
	assert.Equal(t, "rgb(84,112,198)", c.String())
	assert.Equal(t, "#5470c6", c.Hex())
	assert.Equal(t, "rgb(255,0,0)", RGB{R: 999, G: -1}.String())
}

func TestGenerateBlend(t *testing.T) {
	start, end := MustParse("#000000"), MustParse("#ffffff")

	rgb, err := GenerateBlend(start, end, 3, BlendRGB)
	require.NoError(t, err)
	assert.Equal(t, []string{"#000000", "#808080", "#ffffff"}, rgb)

	lab, err := GenerateBlend(start, end, 4, BlendLab)
	require.NoError(t, err)
	require.Len(t, lab, 4)
	assert.Equal(t, "#000000", lab[0])
	assert.Equal(t, "#ffffff", lab[3])

	one, err := GenerateBlend(start, end, 1, BlendHCL)
	require.NoError(t, err)
	assert.Equal(t, []string{"#000000"}, one)

	_, err = GenerateBlend(start, end, 3, "cmyk")
	assert.Error(t, err)
}

func TestAt(t *testing.T) {
	colors := []string{"a", "b", "c"}
	assert.Equal(t, "a", At(colors, 0))
	assert.Equal(t, "b", At(colors, 4))
	assert.Equal(t, "c", At(colors, -1))
	assert.Equal(t, "", At(nil, 3))
}

func TestRangeColors(t *testing.T) {
	r := Range{Start: RGB{0, 0, 0}, End: RGB{255, 255, 255}}
	assert.Equal(t, Generate(r.Start, r.End, 3), r.Colors(3))
}
