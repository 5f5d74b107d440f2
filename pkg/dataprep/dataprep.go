// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package dataprep cleans tabular records before they reach the chart
// derivation engine. All operations are pure: inputs are never mutated and
// every returned record is a fresh copy.
package dataprep

import (
	"fmt"

	"github.com/teradata-labs/chartkit/internal/log"
	"go.uber.org/zap"
)

// Record is a single row keyed by field name. Values are scalars
// (string, number, bool or nil).
type Record map[string]interface{}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Has reports whether the field is present, regardless of its value.
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// Options controls Prepare.
type Options struct {
	RequiredFields []string               `json:"required_fields,omitempty" yaml:"required_fields,omitempty"`
	NumericFields  []string               `json:"numeric_fields,omitempty" yaml:"numeric_fields,omitempty"`
	DefaultValues  map[string]interface{} `json:"default_values,omitempty" yaml:"default_values,omitempty"`
}

// Validate keeps the elements of data that are non-nil records containing
// every required field. Presence is a membership test, so a field holding
// nil, false or 0 still counts. Accepted inputs are []Record,
// []map[string]interface{} and []interface{}; anything else yields an empty
// result. Dropped elements are reported as a warning.
func Validate(data interface{}, requiredFields []string) []Record {
	items, ok := toItems(data)
	if !ok {
		log.Warn("data is not a list of records, returning empty dataset",
			zap.String("type", fmt.Sprintf("%T", data)))
		return []Record{}
	}

	valid := make([]Record, 0, len(items))
	for _, item := range items {
		rec, ok := asRecord(item)
		if !ok || !hasAll(rec, requiredFields) {
			continue
		}
		valid = append(valid, rec.Clone())
	}

	if dropped := len(items) - len(valid); dropped > 0 {
		log.Warn("removed invalid data entries",
			zap.Int("dropped", dropped),
			zap.Int("kept", len(valid)),
			zap.Strings("required_fields", requiredFields))
	}
	return valid
}

// FillMissing sets each default on records where the field is absent or nil.
// Present non-nil values, including false, 0 and "", are kept.
func FillMissing(data []Record, defaults map[string]interface{}) []Record {
	out := make([]Record, 0, len(data))
	for _, rec := range data {
		filled := rec.Clone()
		for field, def := range defaults {
			if v, ok := filled[field]; !ok || v == nil {
				filled[field] = def
			}
		}
		out = append(out, filled)
	}
	return out
}

// CoerceNumeric replaces every listed field with a finite float64. Values
// that do not parse, and fields that are absent, become 0.
func CoerceNumeric(data []Record, numericFields []string) []Record {
	out := make([]Record, 0, len(data))
	for _, rec := range data {
		coerced := rec.Clone()
		for _, field := range numericFields {
			coerced[field] = ToNumber(coerced[field])
		}
		out = append(out, coerced)
	}
	return out
}

// Prepare runs Validate, FillMissing and CoerceNumeric in that order, so
// defaults are coerced like any other value.
func Prepare(data interface{}, opts Options) []Record {
	valid := Validate(data, opts.RequiredFields)
	filled := FillMissing(valid, opts.DefaultValues)
	return CoerceNumeric(filled, opts.NumericFields)
}

// Records converts generic maps to records without validation.
func Records(rows []map[string]interface{}) []Record {
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, Record(row))
	}
	return out
}

func hasAll(rec Record, fields []string) bool {
	for _, f := range fields {
		if !rec.Has(f) {
			return false
		}
	}
	return true
}

func toItems(data interface{}) ([]interface{}, bool) {
	switch d := data.(type) {
	case []interface{}:
		return d, true
	case []Record:
		items := make([]interface{}, len(d))
		for i, r := range d {
			items[i] = r
		}
		return items, true
	case []map[string]interface{}:
		items := make([]interface{}, len(d))
		for i, r := range d {
			items[i] = r
		}
		return items, true
	default:
		return nil, false
	}
}

func asRecord(item interface{}) (Record, bool) {
	switch v := item.(type) {
	case Record:
		return v, v != nil
	case map[string]interface{}:
		return Record(v), v != nil
	default:
		return nil, false
	}
}
