// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package visualization

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/teradata-labs/chartkit/pkg/dataprep"
	"github.com/teradata-labs/chartkit/pkg/palette"
)

// ChartType identifies a chart kind the engine can derive.
type ChartType string

const (
	ChartTypeBar       ChartType = "bar"
	ChartTypeLine      ChartType = "line"
	ChartTypePie       ChartType = "pie"
	ChartTypeScatter   ChartType = "scatter"
	ChartTypeHeatmap   ChartType = "heatmap"
	ChartTypeRadar     ChartType = "radar"
	ChartTypeFunnel    ChartType = "funnel"
	ChartTypeTreemap   ChartType = "treemap"
	ChartTypeSankey    ChartType = "sankey"
	ChartTypeSunburst  ChartType = "sunburst"
	ChartTypeGauge     ChartType = "gauge"
	ChartTypeScatter3D ChartType = "scatter3d"
)

// ChartTypes returns every derivable chart kind in a stable order.
func ChartTypes() []ChartType {
	return []ChartType{
		ChartTypeBar, ChartTypeLine, ChartTypePie, ChartTypeScatter,
		ChartTypeHeatmap, ChartTypeRadar, ChartTypeFunnel, ChartTypeTreemap,
		ChartTypeSankey, ChartTypeSunburst, ChartTypeGauge, ChartTypeScatter3D,
	}
}

// ParseChartType resolves a case-insensitive chart kind name.
func ParseChartType(s string) (ChartType, error) {
	kind := ChartType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := derivers[kind]; ok {
		return kind, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChartType, s)
}

// seriesType is the ECharts series tag for the kind.
func (k ChartType) seriesType() string {
	if k == ChartTypeScatter3D {
		return "scatter3D"
	}
	return string(k)
}

// Aggregation selects how grouped values are reduced.
type Aggregation string

const (
	AggregateSum     Aggregation = "sum"
	AggregateAverage Aggregation = "average"
	AggregateMax     Aggregation = "max"
	AggregateMin     Aggregation = "min"
)

// ParseAggregation resolves an aggregation name; empty means sum.
func ParseAggregation(s string) (Aggregation, error) {
	switch a := Aggregation(strings.ToLower(strings.TrimSpace(s))); a {
	case "":
		return AggregateSum, nil
	case AggregateSum, AggregateAverage, AggregateMax, AggregateMin:
		return a, nil
	default:
		return "", fmt.Errorf("unknown aggregation %q (must be sum, average, max or min)", s)
	}
}

// LabelOptions is the series label block.
type LabelOptions struct {
	Show      bool   `json:"show" yaml:"show"`
	Formatter string `json:"formatter,omitempty" yaml:"formatter,omitempty"`
	Position  string `json:"position,omitempty" yaml:"position,omitempty"`
	Color     string `json:"color,omitempty" yaml:"color,omitempty"`
	Rotate    string `json:"rotate,omitempty" yaml:"rotate,omitempty"`
}

// Params are the declarative inputs to a derivation. Field names left empty
// produce an empty-series specification.
type Params struct {
	Data        []dataprep.Record `json:"data" yaml:"data"`
	XField      string            `json:"x_field,omitempty" yaml:"x_field,omitempty"`
	YField      string            `json:"y_field,omitempty" yaml:"y_field,omitempty"`
	ZField      string            `json:"z_field,omitempty" yaml:"z_field,omitempty"`
	SeriesField string            `json:"series_field,omitempty" yaml:"series_field,omitempty"`
	Aggregation Aggregation       `json:"aggregation,omitempty" yaml:"aggregation,omitempty"`

	// SortData unset means the kind's default (false, except funnel).
	SortData *bool `json:"sort_data,omitempty" yaml:"sort_data,omitempty"`
	// Limit <= 0 means no limit.
	Limit int `json:"limit,omitempty" yaml:"limit,omitempty"`

	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`

	ShowLegend   *bool `json:"show_legend,omitempty" yaml:"show_legend,omitempty"`
	ShowToolbox  *bool `json:"show_toolbox,omitempty" yaml:"show_toolbox,omitempty"`
	ShowDataZoom *bool `json:"show_data_zoom,omitempty" yaml:"show_data_zoom,omitempty"`

	ColorPalette []string       `json:"color_palette,omitempty" yaml:"color_palette,omitempty"`
	ColorRange   *palette.Range `json:"color_range,omitempty" yaml:"color_range,omitempty"`
	Labels       *LabelOptions  `json:"labels,omitempty" yaml:"labels,omitempty"`

	// LegacyExtremes reproduces zero-seeded max/min accumulators: max never
	// drops below 0 and min treats an accumulator of exactly 0 as unseen.
	LegacyExtremes bool `json:"legacy_extremes,omitempty" yaml:"legacy_extremes,omitempty"`
}

// Bool returns a pointer to v, for the optional flags on Params.
func Bool(v bool) *bool {
	return &v
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// ChartSpec is a declarative ECharts option document.
type ChartSpec struct {
	Color           []string    `json:"color,omitempty"`
	BackgroundColor string      `json:"backgroundColor,omitempty"`
	TextStyle       *TextStyle  `json:"textStyle,omitempty"`
	Title           *Title      `json:"title,omitempty"`
	Tooltip         *Tooltip    `json:"tooltip,omitempty"`
	Legend          *Legend     `json:"legend,omitempty"`
	Toolbox         *Toolbox    `json:"toolbox,omitempty"`
	DataZoom        []DataZoom  `json:"dataZoom,omitempty"`
	Grid            *Grid       `json:"grid,omitempty"`
	XAxis           *Axis       `json:"xAxis,omitempty"`
	YAxis           *Axis       `json:"yAxis,omitempty"`
	Radar           *RadarCoord `json:"radar,omitempty"`
	VisualMap       *VisualMap  `json:"visualMap,omitempty"`
	Grid3D          *Grid3D     `json:"grid3D,omitempty"`
	XAxis3D         *Axis       `json:"xAxis3D,omitempty"`
	YAxis3D         *Axis       `json:"yAxis3D,omitempty"`
	ZAxis3D         *Axis       `json:"zAxis3D,omitempty"`
	Series          []Series    `json:"series"`
}

// JSON marshals the specification.
func (s *ChartSpec) JSON() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chart specification: %w", err)
	}
	return string(b), nil
}

// Empty reports whether the specification has no series.
func (s *ChartSpec) Empty() bool {
	return len(s.Series) == 0
}

type TextStyle struct {
	Color      string `json:"color,omitempty"`
	FontFamily string `json:"fontFamily,omitempty"`
}

type Title struct {
	Text    string `json:"text"`
	Subtext string `json:"subtext,omitempty"`
	Left    string `json:"left,omitempty"`
}

type AxisPointer struct {
	Type string `json:"type"`
}

type Tooltip struct {
	Trigger     string       `json:"trigger,omitempty"`
	AxisPointer *AxisPointer `json:"axisPointer,omitempty"`
	Formatter   string       `json:"formatter,omitempty"`
	Position    string       `json:"position,omitempty"`
}

type Legend struct {
	Orient string `json:"orient,omitempty"`
	Left   string `json:"left,omitempty"`
	Bottom string `json:"bottom,omitempty"`
}

type ToolboxFeature struct {
	Show bool `json:"show"`
}

type Toolbox struct {
	Show    bool                      `json:"show"`
	Feature map[string]ToolboxFeature `json:"feature"`
}

type DataZoom struct {
	Type  string  `json:"type"`
	Show  bool    `json:"show,omitempty"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type Grid struct {
	Left         string `json:"left,omitempty"`
	Right        string `json:"right,omitempty"`
	Top          string `json:"top,omitempty"`
	Bottom       string `json:"bottom,omitempty"`
	Height       string `json:"height,omitempty"`
	ContainLabel bool   `json:"containLabel,omitempty"`
}

type SplitArea struct {
	Show bool `json:"show"`
}

// Axis is a cartesian or 3D axis. Category axes always carry Data, even
// when it is empty.
type Axis struct {
	Type      string     `json:"type,omitempty"`
	Name      string     `json:"name,omitempty"`
	Data      []string   `json:"data,omitempty"`
	SplitArea *SplitArea `json:"splitArea,omitempty"`
}

// MarshalJSON emits "data": [] for category axes with no categories.
func (a Axis) MarshalJSON() ([]byte, error) {
	type plain Axis
	if a.Type != "category" {
		return json.Marshal(plain(a))
	}
	data := a.Data
	if data == nil {
		data = []string{}
	}
	return json.Marshal(struct {
		plain
		Data []string `json:"data"`
	}{plain: plain(a), Data: data})
}

type RadarIndicator struct {
	Name string  `json:"name"`
	Max  float64 `json:"max"`
}

type RadarCoord struct {
	Indicator []RadarIndicator `json:"indicator"`
}

type VisualMap struct {
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Calculable bool    `json:"calculable"`
	Orient     string  `json:"orient,omitempty"`
	Left       string  `json:"left,omitempty"`
	Bottom     string  `json:"bottom,omitempty"`
}

// Grid3D is serialised as an empty object; its presence enables 3D axes.
type Grid3D struct{}

// ItemStyle colors a single data item.
type ItemStyle struct {
	Color string `json:"color,omitempty"`
}

// NamedValue is a {name, value} data item (pie, funnel, gauge, leaves).
type NamedValue struct {
	Name      string     `json:"name"`
	Value     float64    `json:"value"`
	ItemStyle *ItemStyle `json:"itemStyle,omitempty"`
}

// TreeNode is a treemap or sunburst node. Parents carry the sum of their
// children's values.
type TreeNode struct {
	Name      string     `json:"name"`
	Value     float64    `json:"value"`
	ItemStyle *ItemStyle `json:"itemStyle,omitempty"`
	Children  []TreeNode `json:"children,omitempty"`
}

type SankeyNode struct {
	Name string `json:"name"`
}

type SankeyLink struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
}

// RadarValue is one polygon of a radar series, aligned to the indicators.
type RadarValue struct {
	Name  string    `json:"name"`
	Value []float64 `json:"value"`
}

// Point is an [x, y] scatter coordinate.
type Point [2]float64

// Point3D is an [x, y, z] coordinate.
type Point3D [3]float64

// HeatCell is an [xIndex, yIndex, value] heatmap triple.
type HeatCell [3]float64

// Series is one series entry. Data holds the kind-specific payload:
// []float64 or []NamedValue (bar, line), []NamedValue (pie, funnel, gauge),
// []Point (scatter), []Point3D (scatter3d), []HeatCell (heatmap),
// []RadarValue (radar), []TreeNode (treemap, sunburst) or []SankeyNode
// with Links (sankey). Style carries presentation keys merged at the top
// level of the serialised series.
type Series struct {
	Name  string
	Type  string
	Data  interface{}
	Links []SankeyLink
	Label *LabelOptions
	Style map[string]interface{}
}

// MarshalJSON flattens Style into the series object.
func (s Series) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(s.Style)+5)
	for k, v := range s.Style {
		out[k] = v
	}
	out["type"] = s.Type
	if s.Name != "" {
		out["name"] = s.Name
	}
	if s.Data == nil {
		out["data"] = []interface{}{}
	} else {
		out["data"] = s.Data
	}
	if s.Links != nil {
		out["links"] = s.Links
	}
	if s.Label != nil {
		out["label"] = s.Label
	}
	return json.Marshal(out)
}

// Visualization is a derived chart ready to embed in a report.
type Visualization struct {
	Type          ChartType              `json:"type"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	EChartsConfig string                 `json:"echarts_config"`
	DataPoints    int                    `json:"data_points"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// Report groups visualizations for HTML export.
type Report struct {
	Title          string          `json:"title"`
	Summary        string          `json:"summary"`
	Visualizations []Visualization `json:"visualizations"`
	GeneratedAt    string          `json:"generated_at"`
	Metadata       ReportMetadata  `json:"metadata"`
}

// ReportMetadata summarises where the report data came from.
type ReportMetadata struct {
	DataSource   string                 `json:"data_source"`
	RowsLoaded   int                    `json:"rows_loaded"`
	RowsRendered int                    `json:"rows_rendered"`
	Extra        map[string]interface{} `json:"extra,omitempty"`
}
