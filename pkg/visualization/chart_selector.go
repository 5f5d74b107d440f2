// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package visualization

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/teradata-labs/chartkit/internal/ordered"
	"github.com/teradata-labs/chartkit/pkg/dataprep"
)

// DataPattern summarises the shape of a record set.
type DataPattern struct {
	DataPoints   int
	NumericCols  []string
	CategoryCols []string
	TimeCols     []string
	// Cardinality is the number of distinct values per column.
	Cardinality map[string]int
}

// ChartRecommendation is one derivable kind for a field selection.
type ChartRecommendation struct {
	ChartType  ChartType `json:"chart_type"`
	Title      string    `json:"title"`
	Rationale  string    `json:"rationale"`
	Confidence float64   `json:"confidence"`
}

// Selection names the fields a chart would be derived from.
type Selection struct {
	XField      string `json:"x_field,omitempty"`
	YField      string `json:"y_field,omitempty"`
	SeriesField string `json:"series_field,omitempty"`
}

// ChartSelector analyzes records and recommends chart kinds.
type ChartSelector struct {
	styleConfig *StyleConfig
}

// NewChartSelector creates a new chart selector
func NewChartSelector(styleConfig *StyleConfig) *ChartSelector {
	if styleConfig == nil {
		styleConfig = DefaultStyleConfig()
	}
	return &ChartSelector{styleConfig: styleConfig}
}

// AnalyzeRecords classifies columns, sorted by name. A column is numeric
// when every non-nil value parses as a number, temporal when every value is
// an RFC 3339 or ISO date string, and categorical otherwise.
func (cs *ChartSelector) AnalyzeRecords(records []dataprep.Record) *DataPattern {
	pattern := &DataPattern{
		DataPoints:   len(records),
		NumericCols:  []string{},
		CategoryCols: []string{},
		TimeCols:     []string{},
		Cardinality:  map[string]int{},
	}

	type column struct {
		numeric, temporal bool
		distinct          map[string]struct{}
	}
	columns := ordered.New[string, *column]()
	for _, rec := range records {
		for key, val := range rec {
			col := columns.GetOrInit(key, func() *column {
				return &column{numeric: true, temporal: true, distinct: map[string]struct{}{}}
			})
			if val == nil {
				continue
			}
			col.distinct[keyOf(val)] = struct{}{}
			if _, ok := dataprep.ParseFloat(val); !ok {
				col.numeric = false
			}
			if s, ok := val.(string); !ok || !isTimestamp(s) {
				col.temporal = false
			}
		}
	}

	// Record maps iterate randomly; fix the column order.
	columns.SortKeys(func(a, b string) bool { return a < b })
	columns.Range(func(name string, col *column) bool {
		pattern.Cardinality[name] = len(col.distinct)
		switch {
		case col.temporal && len(col.distinct) > 0:
			pattern.TimeCols = append(pattern.TimeCols, name)
		case col.numeric:
			pattern.NumericCols = append(pattern.NumericCols, name)
		default:
			pattern.CategoryCols = append(pattern.CategoryCols, name)
		}
		return true
	})
	return pattern
}

// SuggestSelection picks x and y fields when the caller has none: the first
// temporal or categorical column as x and the best value column as y.
func (cs *ChartSelector) SuggestSelection(records []dataprep.Record) Selection {
	pattern := cs.AnalyzeRecords(records)
	var sel Selection
	switch {
	case len(pattern.TimeCols) > 0:
		sel.XField = pattern.TimeCols[0]
	case len(pattern.CategoryCols) > 0:
		sel.XField = pattern.CategoryCols[0]
	}
	sel.YField = inferValueColumn(pattern.NumericCols)
	return sel
}

// Recommend returns the kinds that can be derived for sel, best first.
func (cs *ChartSelector) Recommend(records []dataprep.Record, sel Selection) []ChartRecommendation {
	if sel.XField == "" || sel.YField == "" {
		return []ChartRecommendation{{
			ChartType:  ChartTypeBar,
			Rationale:  "No field selection, defaulting to bar chart",
			Confidence: 0.5,
		}}
	}

	pattern := cs.AnalyzeRecords(records)
	categories := pattern.Cardinality[sel.XField]
	xNumeric := slices.Contains(pattern.NumericCols, sel.XField)
	xTemporal := slices.Contains(pattern.TimeCols, sel.XField)
	title := fmt.Sprintf("%s by %s", TitleCase(sel.YField), TitleCase(sel.XField))

	var recs []ChartRecommendation
	add := func(kind ChartType, confidence float64, rationale string) {
		recs = append(recs, ChartRecommendation{ChartType: kind, Title: title, Rationale: rationale, Confidence: confidence})
	}

	if len(records) == 1 {
		add(ChartTypeGauge, 0.9, "Single record, shown as a gauge")
	}
	if xTemporal {
		add(ChartTypeLine, 0.9, "Temporal x axis, best visualized as a trend")
	}
	if xNumeric {
		add(ChartTypeScatter, 0.85, "Numeric x and y, shows correlation")
	}
	if sel.SeriesField != "" {
		add(ChartTypeHeatmap, 0.7, "Two categorical dimensions with a measure")
		add(ChartTypeSankey, 0.6, "Source and target fields with a flow value")
	}
	if categories >= 2 && categories <= 7 {
		add(ChartTypePie, 0.85, fmt.Sprintf("Small number of categories (%d), shows proportions well", categories))
		add(ChartTypeFunnel, 0.65, "Few ordered stages")
	}
	if categories >= 3 && categories <= 10 {
		add(ChartTypeRadar, 0.6, fmt.Sprintf("%d dimensions, comparable on a radar", categories))
	}
	add(ChartTypeBar, 0.8, fmt.Sprintf("Multiple categories (%d items) for comparison", categories))
	if !xTemporal {
		add(ChartTypeLine, 0.7, "Ordered categories shown as a line")
	}
	add(ChartTypeTreemap, 0.55, "Part-to-whole by area")
	add(ChartTypeSunburst, 0.5, "Part-to-whole by angle")

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Confidence > recs[j].Confidence })
	return dedupeKinds(recs)
}

func dedupeKinds(recs []ChartRecommendation) []ChartRecommendation {
	seen := make(map[ChartType]bool, len(recs))
	out := recs[:0]
	for _, r := range recs {
		if seen[r.ChartType] {
			continue
		}
		seen[r.ChartType] = true
		out = append(out, r)
	}
	return out
}

// inferValueColumn tries to find the main value column among numeric columns.
func inferValueColumn(numeric []string) string {
	candidates := []string{"value", "amount", "total", "count", "sum", "score", "frequency"}
	for _, candidate := range candidates {
		for _, key := range numeric {
			if strings.Contains(strings.ToLower(key), candidate) {
				return key
			}
		}
	}
	if len(numeric) > 0 {
		return numeric[0]
	}
	return ""
}

func isTimestamp(s string) bool {
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return true
	}
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}
