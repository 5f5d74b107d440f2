// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package visualization

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_Grouped(t *testing.T) {
	data := records(
		map[string]interface{}{"x": "A", "s": "p", "y": "3"},
		map[string]interface{}{"x": "A", "s": "p", "y": "4"},
	)

	tests := []struct {
		agg  Aggregation
		want float64
	}{
		{AggregateSum, 7},
		{"", 7},
		{AggregateAverage, 3.5},
		{AggregateMax, 4},
		{AggregateMin, 3},
		{"median", 7},
	}

	for _, tt := range tests {
		t.Run(string(tt.agg), func(t *testing.T) {
			res := Aggregate(Params{Data: data, XField: "x", YField: "y", SeriesField: "s", Aggregation: tt.agg})
			require.True(t, res.IsGrouped())
			assert.Equal(t, tt.want, res.Value("A", "p"))
			assert.Equal(t, []string{"A"}, res.Categories)
			assert.Equal(t, []string{"p"}, res.SeriesNames)
		})
	}
}

func TestAggregate_Extremes(t *testing.T) {
	negatives := records(
		map[string]interface{}{"x": "A", "s": "p", "y": -3},
		map[string]interface{}{"x": "A", "s": "p", "y": -5},
	)
	withZero := records(
		map[string]interface{}{"x": "A", "s": "p", "y": 3},
		map[string]interface{}{"x": "A", "s": "p", "y": 0},
		map[string]interface{}{"x": "A", "s": "p", "y": 5},
	)

	tests := []struct {
		name   string
		params Params
		want   float64
	}{
		{"max all negative", Params{Data: negatives, Aggregation: AggregateMax}, -3},
		{"legacy max floors at zero", Params{Data: negatives, Aggregation: AggregateMax, LegacyExtremes: true}, 0},
		{"min sees zero", Params{Data: withZero, Aggregation: AggregateMin}, 0},
		{"legacy min treats zero as unseen", Params{Data: withZero, Aggregation: AggregateMin, LegacyExtremes: true}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.params.XField, tt.params.YField, tt.params.SeriesField = "x", "y", "s"
			assert.Equal(t, tt.want, Aggregate(tt.params).Value("A", "p"))
		})
	}
}

func TestAggregate_GroupedOrderingAndLimit(t *testing.T) {
	data := records(
		map[string]interface{}{"x": "c", "s": "q", "y": 1},
		map[string]interface{}{"x": "a", "s": "p", "y": 2},
		map[string]interface{}{"x": "b", "s": "q", "y": 3},
		map[string]interface{}{"s": "p", "y": 4},
	)

	res := Aggregate(Params{Data: data, XField: "x", YField: "y", SeriesField: "s"})
	assert.Equal(t, []string{"c", "a", "b", "undefined"}, res.Categories)
	assert.Equal(t, []string{"q", "p"}, res.SeriesNames)
	assert.Equal(t, 4.0, res.Value("undefined", "p"))

	sorted := Aggregate(Params{Data: data, XField: "x", YField: "y", SeriesField: "s", SortData: Bool(true), Limit: 2})
	assert.Equal(t, []string{"a", "b"}, sorted.Categories)
	// Series names come from the unsorted, unlimited data.
	assert.Equal(t, []string{"q", "p"}, sorted.SeriesNames)
}

func TestAggregate_Simple(t *testing.T) {
	data := records(
		map[string]interface{}{"x": "b", "y": "2"},
		map[string]interface{}{"x": "a", "y": "oops"},
		map[string]interface{}{"x": nil, "y": 5},
		map[string]interface{}{"x": "c"},
		map[string]interface{}{"x": 10, "y": 1.5},
	)

	res := Aggregate(Params{Data: data, XField: "x", YField: "y"})
	require.False(t, res.IsGrouped())
	assert.Equal(t, []string{"b", "a", "10"}, res.Categories)
	assert.Equal(t, []float64{2, 0, 1.5}, res.Values)
	assert.Len(t, res.Records, 3)

	sorted := Aggregate(Params{Data: data, XField: "x", YField: "y", SortData: Bool(true), Limit: 2})
	assert.Equal(t, []string{"10", "a"}, sorted.Categories)
	assert.Equal(t, []float64{1.5, 0}, sorted.Values)
}

func TestAggregate_SortIsByteOrder(t *testing.T) {
	data := records(
		map[string]interface{}{"x": "apple", "y": 1},
		map[string]interface{}{"x": "banana", "y": 2},
		map[string]interface{}{"x": "Apple", "y": 3},
		map[string]interface{}{"x": "Zebra", "y": 4},
	)

	res := Aggregate(Params{Data: data, XField: "x", YField: "y", SortData: Bool(true)})
	assert.Equal(t, []string{"Apple", "Zebra", "apple", "banana"}, res.Categories)
}

func TestAggregate_NoFields(t *testing.T) {
	res := Aggregate(Params{Data: records(map[string]interface{}{"x": 1})})
	assert.Empty(t, res.Categories)
	assert.False(t, res.IsGrouped())
}

func TestAggregate_SumsSaturate(t *testing.T) {
	data := records(
		map[string]interface{}{"x": "A", "s": "p", "y": 1e308},
		map[string]interface{}{"x": "A", "s": "p", "y": 1e308},
		map[string]interface{}{"x": "B", "s": "p", "y": -1e308},
		map[string]interface{}{"x": "B", "s": "p", "y": -1e308},
	)

	sum := Aggregate(Params{Data: data, XField: "x", YField: "y", SeriesField: "s"})
	assert.Equal(t, math.MaxFloat64, sum.Value("A", "p"))
	assert.Equal(t, -math.MaxFloat64, sum.Value("B", "p"))

	avg := Aggregate(Params{Data: data, XField: "x", YField: "y", SeriesField: "s", Aggregation: AggregateAverage})
	assert.False(t, math.IsInf(avg.Value("A", "p"), 0))
	assert.InDelta(t, math.MaxFloat64/2, avg.Value("A", "p"), 1e300)
}

func TestKeyOf(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, "undefined"},
		{1.5, "1.5"},
		{3.0, "3"},
		{7, "7"},
		{true, "true"},
		{"s", "s"},
		{-0.0, "0"},
		{123456789012345680000.0, "123456789012345680000"},
		{1e21, "1e+21"},
		{-2.5e25, "-2.5e+25"},
		{0.000001, "0.000001"},
		{1.5e-7, "1.5e-7"},
		{float32(0.5), "0.5"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, keyOf(tt.in), "%v", tt.in)
	}
}
