// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package visualization

import (
	"errors"
	"slices"

	"github.com/teradata-labs/chartkit/internal/log"
	"go.uber.org/zap"
)

// ErrUnknownChartType is returned when a chart kind or variant name is not
// recognised.
var ErrUnknownChartType = errors.New("unknown chart type")

// EChartsGenerator derives ECharts option documents. It holds only the
// immutable theme, so one generator can serve concurrent callers.
type EChartsGenerator struct {
	style  *StyleConfig
	logger *zap.Logger
}

// NewEChartsGenerator creates a generator for a theme. A nil style uses the
// default theme.
func NewEChartsGenerator(style *StyleConfig) *EChartsGenerator {
	if style == nil {
		style = DefaultStyleConfig()
	}
	return &EChartsGenerator{style: style}
}

// WithLogger sets the logger used for advisory warnings.
func (eg *EChartsGenerator) WithLogger(logger *zap.Logger) *EChartsGenerator {
	eg.logger = logger
	return eg
}

// Style returns the generator's theme.
func (eg *EChartsGenerator) Style() *StyleConfig {
	return eg.style
}

func (eg *EChartsGenerator) log() *zap.Logger {
	if eg.logger != nil {
		return eg.logger
	}
	return log.Logger()
}

// Derive builds the specification for a chart kind. Unknown kinds fall back
// to a bar chart. Missing fields or empty data yield a specification with
// an empty series list; Derive never fails.
func (eg *EChartsGenerator) Derive(kind ChartType, p Params) *ChartSpec {
	return eg.derive(kind, p, nil)
}

// Generate derives a specification and returns it as JSON.
func (eg *EChartsGenerator) Generate(kind ChartType, p Params) (string, error) {
	return eg.Derive(kind, p).JSON()
}

func (eg *EChartsGenerator) derive(kind ChartType, p Params, v *variant) *ChartSpec {
	fn, ok := derivers[kind]
	if !ok {
		eg.log().Warn("unknown chart type, falling back to bar", zap.String("chart_type", string(kind)))
		kind, fn = ChartTypeBar, derivers[ChartTypeBar]
	}
	b := &builder{kind: kind, p: p, style: eg.style, variant: v}
	return fn(b)
}

var defaultGenerator = NewEChartsGenerator(nil)

// Derive builds a specification with the default theme.
func Derive(kind ChartType, p Params) *ChartSpec {
	return defaultGenerator.Derive(kind, p)
}

// Generate derives a specification with the default theme and returns it as
// JSON.
func Generate(kind ChartType, p Params) (string, error) {
	return defaultGenerator.Generate(kind, p)
}

type deriveFunc func(b *builder) *ChartSpec

// derivers is the dispatch table; every ChartTypes() entry has a routine.
var derivers map[ChartType]deriveFunc

func init() {
	derivers = map[ChartType]deriveFunc{
		ChartTypeBar:       deriveCartesian,
		ChartTypeLine:      deriveCartesian,
		ChartTypePie:       derivePie,
		ChartTypeScatter:   deriveScatter,
		ChartTypeHeatmap:   deriveHeatmap,
		ChartTypeRadar:     deriveRadar,
		ChartTypeFunnel:    deriveFunnel,
		ChartTypeTreemap:   deriveTreemap,
		ChartTypeSankey:    deriveSankey,
		ChartTypeSunburst:  deriveSunburst,
		ChartTypeGauge:     deriveGauge,
		ChartTypeScatter3D: deriveScatter3D,
	}
}

// builder carries the inputs of one derivation call.
type builder struct {
	kind    ChartType
	p       Params
	style   *StyleConfig
	variant *variant
}

// base builds the blocks shared by every kind: palette, title, axis
// tooltip, legend, toolbox, optional data zoom and grid.
func (b *builder) base() *ChartSpec {
	p := b.p
	spec := &ChartSpec{
		Color:   slices.Clone(p.ColorPalette),
		Tooltip: &Tooltip{Trigger: "axis", AxisPointer: &AxisPointer{Type: "shadow"}},
		Grid:    &Grid{Left: "3%", Right: "4%", Bottom: "15%", ContainLabel: true},
		Series:  []Series{},
	}
	if len(spec.Color) == 0 {
		spec.Color = slices.Clone(b.style.ColorPalette)
	}
	if len(spec.Color) == 0 {
		spec.Color = slices.Clone(DefaultColors)
	}
	if b.style.ColorBackground != "" {
		spec.BackgroundColor = b.style.ColorBackground
	}
	if b.style.ColorText != "" || b.style.FontFamily != "" {
		spec.TextStyle = &TextStyle{Color: b.style.ColorText, FontFamily: b.style.FontFamily}
	}
	if p.Title != "" {
		spec.Title = &Title{Text: p.Title, Subtext: p.Subtitle, Left: "center"}
	}
	if boolOr(p.ShowLegend, true) {
		spec.Legend = &Legend{Orient: "horizontal", Left: "center", Bottom: "0"}
	}
	if boolOr(p.ShowToolbox, true) {
		spec.Toolbox = &Toolbox{
			Show: true,
			Feature: map[string]ToolboxFeature{
				"dataZoom":    {Show: true},
				"saveAsImage": {Show: true},
				"dataView":    {Show: true},
				"restore":     {Show: true},
			},
		}
	}
	if boolOr(p.ShowDataZoom, false) {
		spec.DataZoom = []DataZoom{
			{Type: "slider", Show: true, Start: 0, End: 100},
			{Type: "inside", Start: 0, End: 100},
		}
	}
	return spec
}

// series creates a series entry of the builder's kind with variant
// overrides applied.
func (b *builder) series(name string, data interface{}, style map[string]interface{}) Series {
	s := Series{
		Name:  name,
		Type:  b.kind.seriesType(),
		Data:  data,
		Label: b.p.Labels,
		Style: style,
	}
	if b.variant != nil {
		if len(b.variant.seriesStyle) > 0 {
			merged := make(map[string]interface{}, len(style)+len(b.variant.seriesStyle))
			for k, v := range style {
				merged[k] = v
			}
			for k, v := range b.variant.seriesStyle {
				merged[k] = v
			}
			s.Style = merged
		}
		if b.variant.label != nil {
			s.Label = b.variant.label
		}
	}
	return s
}

// itemColors returns per-item colors for n items, or nil when neither the
// parameters nor the active variant ask for item coloring.
func (b *builder) itemColors(n int) []string {
	switch {
	case b.p.ColorRange != nil:
		return b.p.ColorRange.Colors(n)
	case b.variant != nil && b.variant.itemColors:
		return b.style.ItemColorRange.Colors(n)
	default:
		return nil
	}
}

func emphasisSeries() map[string]interface{} {
	return map[string]interface{}{"focus": "series"}
}

func (b *builder) valueAxis(name string) *Axis {
	return &Axis{Type: "value", Name: name}
}

func (b *builder) categoryAxis(categories []string) *Axis {
	if categories == nil {
		categories = []string{}
	}
	return &Axis{Type: "category", Data: categories}
}
