// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package kpi computes, formats and grades headline indicators over
// prepared records.
package kpi

import (
	"errors"
	"fmt"
	"math"

	"github.com/teradata-labs/chartkit/internal/mathutil"
	"github.com/teradata-labs/chartkit/pkg/dataprep"
)

// Type selects how a value is formatted.
type Type string

const (
	TypeNumber     Type = "number"
	TypePercentage Type = "percentage"
	TypeCurrency   Type = "currency"
	TypeRatio      Type = "ratio"
	TypeText       Type = "text"
)

// Op is a reduction over one field.
type Op string

const (
	OpSum      Op = "sum"
	OpAverage  Op = "average"
	OpCount    Op = "count"
	OpMin      Op = "min"
	OpMax      Op = "max"
	OpFirst    Op = "first"
	OpLast     Op = "last"
	OpDistinct Op = "distinct"
)

// ErrInvalidDefinition is wrapped by Validate failures.
var ErrInvalidDefinition = errors.New("invalid kpi definition")

// Calculation reduces the records that match Filter. Count without a field
// counts records; with a field it counts non-nil values.
type Calculation struct {
	Op     Op                     `json:"op" yaml:"op"`
	Field  string                 `json:"field,omitempty" yaml:"field,omitempty"`
	Filter map[string]interface{} `json:"filter,omitempty" yaml:"filter,omitempty"`
}

// Format controls rendering. Decimals of 0 means the type's default.
type Format struct {
	Prefix         string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Suffix         string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
	Decimals       int    `json:"decimals,omitempty" yaml:"decimals,omitempty"`
	Abbreviate     bool   `json:"abbreviate,omitempty" yaml:"abbreviate,omitempty"`
	CurrencySymbol string `json:"currency_symbol,omitempty" yaml:"currency_symbol,omitempty"`
}

// Thresholds grade a value. HigherIsBetter defaults to true.
type Thresholds struct {
	Good           *float64 `json:"good,omitempty" yaml:"good,omitempty"`
	Warning        *float64 `json:"warning,omitempty" yaml:"warning,omitempty"`
	Danger         *float64 `json:"danger,omitempty" yaml:"danger,omitempty"`
	HigherIsBetter *bool    `json:"higher_is_better,omitempty" yaml:"higher_is_better,omitempty"`
}

func (t *Thresholds) higherIsBetter() bool {
	return t == nil || t.HigherIsBetter == nil || *t.HigherIsBetter
}

// Definition declares one KPI.
type Definition struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Type        Type         `json:"type" yaml:"type"`
	Calculation Calculation  `json:"calculation" yaml:"calculation"`
	Previous    *Calculation `json:"previous,omitempty" yaml:"previous,omitempty"`
	Format      Format       `json:"format,omitempty" yaml:"format,omitempty"`
	Thresholds  *Thresholds  `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`
	Icon        string       `json:"icon,omitempty" yaml:"icon,omitempty"`
	Target      *float64     `json:"target,omitempty" yaml:"target,omitempty"`
}

// Validate checks the definition's type and calculations.
func (d Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidDefinition)
	}
	switch d.Type {
	case TypeNumber, TypePercentage, TypeCurrency, TypeRatio, TypeText:
	case "":
		return fmt.Errorf("%w: %s: type is required", ErrInvalidDefinition, d.ID)
	default:
		return fmt.Errorf("%w: %s: unknown type %q", ErrInvalidDefinition, d.ID, d.Type)
	}
	if err := d.Calculation.validate(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, d.ID, err)
	}
	if d.Previous != nil {
		if err := d.Previous.validate(); err != nil {
			return fmt.Errorf("%w: %s: previous: %v", ErrInvalidDefinition, d.ID, err)
		}
	}
	return nil
}

func (c Calculation) validate() error {
	switch c.Op {
	case OpCount:
		return nil
	case OpSum, OpAverage, OpMin, OpMax, OpFirst, OpLast, OpDistinct:
		if c.Field == "" {
			return fmt.Errorf("%s requires a field", c.Op)
		}
		return nil
	default:
		return fmt.Errorf("unknown calculation %q", c.Op)
	}
}

// Calculate applies c to records. The result is nil when there is nothing
// to reduce (average, min, max, first, last over no values), a float64 for
// numeric reductions, and the raw field value for first and last.
func (c Calculation) Calculate(records []dataprep.Record) (interface{}, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	matched := c.filter(records)

	switch c.Op {
	case OpCount:
		if c.Field == "" {
			return float64(len(matched)), nil
		}
		n := 0
		for _, rec := range matched {
			if rec[c.Field] != nil {
				n++
			}
		}
		return float64(n), nil

	case OpFirst, OpLast:
		if len(matched) == 0 {
			return nil, nil
		}
		rec := matched[0]
		if c.Op == OpLast {
			rec = matched[len(matched)-1]
		}
		return rec[c.Field], nil

	case OpDistinct:
		seen := make(map[string]struct{}, len(matched))
		for _, rec := range matched {
			if v := rec[c.Field]; v != nil {
				seen[fmt.Sprint(v)] = struct{}{}
			}
		}
		return float64(len(seen)), nil
	}

	var (
		sum, lo, hi float64
		n           int
	)
	for _, rec := range matched {
		v, ok := dataprep.ParseFloat(rec[c.Field])
		if !ok {
			continue
		}
		if n == 0 {
			lo, hi = v, v
		}
		sum = mathutil.Saturate(sum + v)
		lo, hi = math.Min(lo, v), math.Max(hi, v)
		n++
	}

	switch c.Op {
	case OpSum:
		return sum, nil
	case OpAverage:
		if n == 0 {
			return nil, nil
		}
		return sum / float64(n), nil
	case OpMin:
		if n == 0 {
			return nil, nil
		}
		return lo, nil
	default: // OpMax
		if n == 0 {
			return nil, nil
		}
		return hi, nil
	}
}

func (c Calculation) filter(records []dataprep.Record) []dataprep.Record {
	if len(c.Filter) == 0 {
		return records
	}
	out := make([]dataprep.Record, 0, len(records))
	for _, rec := range records {
		if matches(rec, c.Filter) {
			out = append(out, rec)
		}
	}
	return out
}

// matches compares stringified values so "1" in a YAML filter matches a
// numeric 1 in the data.
func matches(rec dataprep.Record, filter map[string]interface{}) bool {
	for field, want := range filter {
		got, ok := rec[field]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

// Status grades a value against thresholds.
type Status string

const (
	StatusGood    Status = "good"
	StatusWarning Status = "warning"
	StatusDanger  Status = "danger"
	StatusNeutral Status = "neutral"
)

// StatusOf grades v. Thresholds are checked good, then warning, then danger;
// a value that meets none of them, a nil value and a non-numeric value are
// neutral.
func StatusOf(v interface{}, t *Thresholds) Status {
	if v == nil || t == nil {
		return StatusNeutral
	}
	value, ok := dataprep.ParseFloat(v)
	if !ok {
		return StatusNeutral
	}

	better := func(a, b float64) bool { return a >= b }
	worse := func(a, b float64) bool { return a < b }
	if !t.higherIsBetter() {
		better = func(a, b float64) bool { return a <= b }
		worse = func(a, b float64) bool { return a > b }
	}

	switch {
	case t.Good != nil && better(value, *t.Good):
		return StatusGood
	case t.Warning != nil && better(value, *t.Warning):
		return StatusWarning
	case t.Danger != nil && worse(value, *t.Danger):
		return StatusDanger
	default:
		return StatusNeutral
	}
}

// Change is the percentage change from previous to current, relative to
// the magnitude of previous. A previous value of 0 yields 0.
func Change(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return mathutil.Saturate((current - previous) / math.Abs(previous) * 100)
}

// Trend is the direction of change.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// Result is an evaluated KPI ready for display.
type Result struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Type        Type        `json:"type"`
	Icon        string      `json:"icon,omitempty"`
	Value       interface{} `json:"value"`
	Formatted   string      `json:"formatted"`
	Status      Status      `json:"status"`

	Previous interface{} `json:"previous,omitempty"`
	// Change and Trend are set only when both values are numeric.
	Change *float64 `json:"change,omitempty"`
	Trend  Trend    `json:"trend,omitempty"`
	// Favorable reports whether the trend moves in the better direction.
	Favorable *bool `json:"favorable,omitempty"`

	Target          *float64 `json:"target,omitempty"`
	FormattedTarget string   `json:"formatted_target,omitempty"`
}

// Evaluate computes one KPI over records.
func Evaluate(def Definition, records []dataprep.Record) (*Result, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	value, err := def.Calculation.Calculate(records)
	if err != nil {
		return nil, fmt.Errorf("kpi %s: %w", def.ID, err)
	}

	res := &Result{
		ID:          def.ID,
		Name:        def.Name,
		Description: def.Description,
		Type:        def.Type,
		Icon:        def.Icon,
		Value:       value,
		Formatted:   FormatValue(value, def),
		Status:      StatusOf(value, def.Thresholds),
		Target:      def.Target,
	}
	if def.Target != nil {
		res.FormattedTarget = FormatValue(*def.Target, def)
	}

	if def.Previous != nil {
		prev, err := def.Previous.Calculate(records)
		if err != nil {
			return nil, fmt.Errorf("kpi %s: previous: %w", def.ID, err)
		}
		res.Previous = prev
		cur, curOK := value.(float64)
		p, prevOK := prev.(float64)
		if curOK && prevOK {
			change := Change(cur, p)
			res.Change = &change
			res.Trend = TrendFlat
			if change > 0 {
				res.Trend = TrendUp
			} else if change < 0 {
				res.Trend = TrendDown
			}
			if res.Trend != TrendFlat {
				favorable := (change > 0) == def.Thresholds.higherIsBetter()
				res.Favorable = &favorable
			}
		}
	}
	return res, nil
}

// EvaluateAll evaluates every definition in order, stopping at the first
// invalid one.
func EvaluateAll(defs []Definition, records []dataprep.Record) ([]*Result, error) {
	results := make([]*Result, 0, len(defs))
	for _, def := range defs {
		res, err := Evaluate(def, records)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}
