// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package dataprep

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teradata-labs/chartkit/internal/log"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	prev := log.Logger()
	core, logs := observer.New(zap.WarnLevel)
	log.SetLogger(zap.New(core))
	t.Cleanup(func() { log.SetLogger(prev) })
	return logs
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		data     interface{}
		required []string
		want     []Record
		warnings int
	}{
		{
			name:     "non-list input",
			data:     "not a list",
			want:     []Record{},
			warnings: 1,
		},
		{
			name:     "nil input",
			data:     nil,
			want:     []Record{},
			warnings: 1,
		},
		{
			name:     "drops non-records and nils",
			data:     []interface{}{Record{"a": 1}, nil, 42, "x", map[string]interface{}{"a": 2}, Record(nil)},
			want:     []Record{{"a": 1}, {"a": 2}},
			warnings: 1,
		},
		{
			name:     "membership not truthiness",
			data:     []Record{{"x": false, "y": 0}, {"x": nil, "y": ""}, {"x": "A"}},
			required: []string{"x", "y"},
			want:     []Record{{"x": false, "y": 0}, {"x": nil, "y": ""}},
			warnings: 1,
		},
		{
			name: "no required fields keeps everything in order",
			data: []map[string]interface{}{{"n": 3}, {"n": 1}, {"n": 2}},
			want: []Record{{"n": 3}, {"n": 1}, {"n": 2}},
		},
		{
			name: "empty list",
			data: []Record{},
			want: []Record{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := observeLogs(t)
			got := Validate(tt.data, tt.required)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.warnings, logs.Len())
		})
	}
}

func TestValidateReportsDroppedCount(t *testing.T) {
	logs := observeLogs(t)

	Validate([]Record{{"x": 1}, {"y": 2}, {"y": 3}}, []string{"x"})

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, int64(2), logs.All()[0].ContextMap()["dropped"])
}

func TestValidateDoesNotMutateInput(t *testing.T) {
	in := []Record{{"x": "A"}}
	out := Validate(in, nil)
	out[0]["x"] = "B"

	assert.Equal(t, "A", in[0]["x"])
}

func TestFillMissing(t *testing.T) {
	data := []Record{
		{"region": nil, "sales": 10},
		{"sales": 0, "active": false},
		{"region": "", "sales": nil},
	}
	defaults := map[string]interface{}{"region": "Unknown region", "sales": 0, "active": true}

	got := FillMissing(data, defaults)

	want := []Record{
		{"region": "Unknown region", "sales": 10, "active": true},
		{"region": "Unknown region", "sales": 0, "active": false},
		{"region": "", "sales": 0, "active": true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FillMissing() mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, data[0]["region"], "input must not be mutated")
}

func TestCoerceNumeric(t *testing.T) {
	data := []Record{
		{"v": "12.5", "w": "abc", "label": "keep"},
		{"v": 7, "w": true},
		{"w": "  3e2 apples"},
	}

	got := CoerceNumeric(data, []string{"v", "w"})

	want := []Record{
		{"v": 12.5, "w": 0.0, "label": "keep"},
		{"v": 7.0, "w": 0.0},
		{"v": 0.0, "w": 300.0},
	}
	assert.Equal(t, want, got)
}

func TestPrepareOrdering(t *testing.T) {
	// The default is a string; it must be coerced because filling runs first.
	data := []interface{}{
		Record{"month": "Jan", "sales": nil},
		Record{"month": "Feb", "sales": "20"},
		Record{"sales": 5},
	}
	opts := Options{
		RequiredFields: []string{"month"},
		NumericFields:  []string{"sales"},
		DefaultValues:  map[string]interface{}{"sales": "4.5"},
	}

	got := Prepare(data, opts)

	assert.Equal(t, []Record{
		{"month": "Jan", "sales": 4.5},
		{"month": "Feb", "sales": 20.0},
	}, got)
}

func TestPrepareProperties(t *testing.T) {
	datasets := []interface{}{
		[]interface{}{Record{"x": "A", "y": "NaN"}, Record{"x": "B"}, nil, Record{"y": "1"}},
		[]Record{{"x": 1, "y": "Infinity"}, {"x": 2, "y": "-1e999"}, {"x": 3, "y": "0x1F"}},
		[]map[string]interface{}{{"x": "Q", "y": json.Number("2.5")}},
		42,
	}
	opts := Options{
		RequiredFields: []string{"x"},
		NumericFields:  []string{"y", "z"},
		DefaultValues:  map[string]interface{}{"y": "oops"},
	}

	for _, d := range datasets {
		once := Prepare(d, opts)
		for _, rec := range once {
			for _, f := range opts.RequiredFields {
				assert.Contains(t, rec, f)
			}
			for _, f := range opts.NumericFields {
				v, ok := rec[f].(float64)
				require.True(t, ok, "field %s should be float64, got %T", f, rec[f])
				assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
			}
		}

		twice := Prepare(once, opts)
		assert.Equal(t, once, twice, "Prepare must be idempotent")
	}
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		in     interface{}
		want   float64
		wantOK bool
	}{
		{"10", 10, true},
		{"  -3.25", -3.25, true},
		{"12px", 12, true},
		{".5", 0.5, true},
		{"5.", 5, true},
		{"1e3", 1000, true},
		{"1e", 1, true},
		{"2.5E-1x", 0.25, true},
		{"0x10", 0, true},
		{"+7", 7, true},
		{"", 0, false},
		{"-", 0, false},
		{"abc", 0, false},
		{"Infinity", 0, false},
		{"-Infinity", 0, false},
		{"1e400", 0, false},
		{true, 0, false},
		{nil, 0, false},
		{int64(42), 42, true},
		{float32(1.5), 1.5, true},
		{math.NaN(), 0, false},
		{math.Inf(1), 0, false},
		{json.Number("8.75"), 8.75, true},
		{[]int{1}, 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseFloat(tt.in)
		assert.Equal(t, tt.wantOK, ok, "ParseFloat(%#v) ok", tt.in)
		assert.Equal(t, tt.want, got, "ParseFloat(%#v)", tt.in)
	}
}
