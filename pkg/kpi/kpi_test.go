// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package kpi

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teradata-labs/chartkit/pkg/dataprep"
)

func ptr[T any](v T) *T { return &v }

func orders() []dataprep.Record {
	return dataprep.Records([]map[string]interface{}{
		{"region": "east", "amount": 100.0, "status": "paid"},
		{"region": "west", "amount": "250", "status": "paid"},
		{"region": "east", "amount": 50, "status": "refunded"},
		{"region": "east", "amount": nil, "status": "open"},
	})
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name string
		calc Calculation
		want interface{}
	}{
		{"sum", Calculation{Op: OpSum, Field: "amount"}, 400.0},
		{"average skips non-numeric", Calculation{Op: OpAverage, Field: "amount"}, 400.0 / 3},
		{"min", Calculation{Op: OpMin, Field: "amount"}, 50.0},
		{"max", Calculation{Op: OpMax, Field: "amount"}, 250.0},
		{"count records", Calculation{Op: OpCount}, 4.0},
		{"count values", Calculation{Op: OpCount, Field: "amount"}, 3.0},
		{"first", Calculation{Op: OpFirst, Field: "region"}, "east"},
		{"last", Calculation{Op: OpLast, Field: "status"}, "open"},
		{"distinct", Calculation{Op: OpDistinct, Field: "region"}, 2.0},
		{"filtered sum", Calculation{Op: OpSum, Field: "amount", Filter: map[string]interface{}{"status": "paid"}}, 350.0},
		{"filter matches nothing", Calculation{Op: OpAverage, Field: "amount", Filter: map[string]interface{}{"region": "north"}}, nil},
		{"sum over nothing", Calculation{Op: OpSum, Field: "missing"}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.calc.Calculate(orders())
			require.NoError(t, err)
			if f, ok := tt.want.(float64); ok {
				assert.InDelta(t, f, got, 1e-9)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Calculation{Op: "median", Field: "amount"}.Calculate(orders())
	assert.Error(t, err)
	_, err = Calculation{Op: OpSum}.Calculate(orders())
	assert.Error(t, err)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		typ   Type
		fmt   Format
		want  string
	}{
		{"nil", nil, TypeNumber, Format{}, "N/A"},
		{"number", 1500.4, TypeNumber, Format{}, "1500"},
		{"abbreviated thousands", 1500, TypeNumber, Format{Abbreviate: true}, "1.5K"},
		{"abbreviated millions", 2500000, TypeNumber, Format{Abbreviate: true}, "2.5M"},
		{"abbreviated billions", 3e9, TypeNumber, Format{Abbreviate: true, Decimals: 2}, "3.00B"},
		{"abbreviated small", 999, TypeNumber, Format{Abbreviate: true}, "999"},
		{"percentage", 12.345, TypePercentage, Format{}, "12.3%"},
		{"currency", 9.5, TypeCurrency, Format{}, "$9.50"},
		{"currency symbol", 9.5, TypeCurrency, Format{CurrencySymbol: "€", Decimals: 1}, "€9.5"},
		{"ratio", 0.5, TypeRatio, Format{}, "0.50"},
		{"text", "hello", TypeText, Format{}, "hello"},
		{"prefix and suffix", 3, TypeNumber, Format{Prefix: "~", Suffix: " users"}, "~3 users"},
		{"numeric string", "42", TypeNumber, Format{}, "42"},
		{"non-numeric", "n/a", TypeNumber, Format{}, "n/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := Definition{ID: "k", Type: tt.typ, Format: tt.fmt}
			assert.Equal(t, tt.want, FormatValue(tt.value, def))
		})
	}
}

func TestStatusOf(t *testing.T) {
	higher := &Thresholds{Good: ptr(90.0), Warning: ptr(70.0), Danger: ptr(50.0)}
	lower := &Thresholds{Good: ptr(1.0), Warning: ptr(5.0), Danger: ptr(10.0), HigherIsBetter: ptr(false)}

	assert.Equal(t, StatusGood, StatusOf(95, higher))
	assert.Equal(t, StatusWarning, StatusOf(75, higher))
	assert.Equal(t, StatusNeutral, StatusOf(60, higher))
	assert.Equal(t, StatusDanger, StatusOf(10, higher))

	assert.Equal(t, StatusGood, StatusOf(0.5, lower))
	assert.Equal(t, StatusWarning, StatusOf(4, lower))
	assert.Equal(t, StatusNeutral, StatusOf(7, lower))
	assert.Equal(t, StatusDanger, StatusOf(12, lower))

	assert.Equal(t, StatusNeutral, StatusOf(nil, higher))
	assert.Equal(t, StatusNeutral, StatusOf(95, nil))
	assert.Equal(t, StatusNeutral, StatusOf("abc", higher))
}

func TestChange(t *testing.T) {
	assert.Equal(t, 0.0, Change(10, 0))
	assert.Equal(t, 50.0, Change(15, 10))
	assert.Equal(t, -50.0, Change(5, 10))
	assert.Equal(t, 50.0, Change(-5, -10))
	assert.Equal(t, math.MaxFloat64, Change(1e308, -1e-10))
}

func TestCalculate_SumSaturates(t *testing.T) {
	recs := dataprep.Records([]map[string]interface{}{{"v": 1e308}, {"v": 1e308}})
	got, err := Calculation{Op: OpSum, Field: "v"}.Calculate(recs)
	require.NoError(t, err)
	assert.Equal(t, math.MaxFloat64, got)
}

func TestEvaluate(t *testing.T) {
	def := Definition{
		ID:          "revenue",
		Name:        "Revenue",
		Type:        TypeCurrency,
		Calculation: Calculation{Op: OpSum, Field: "amount", Filter: map[string]interface{}{"status": "paid"}},
		Previous:    &Calculation{Op: OpSum, Field: "amount"},
		Thresholds:  &Thresholds{Good: ptr(300.0)},
		Target:      ptr(500.0),
	}

	res, err := Evaluate(def, orders())
	require.NoError(t, err)
	assert.Equal(t, 350.0, res.Value)
	assert.Equal(t, "$350.00", res.Formatted)
	assert.Equal(t, StatusGood, res.Status)
	assert.Equal(t, "$500.00", res.FormattedTarget)
	require.NotNil(t, res.Change)
	assert.InDelta(t, -12.5, *res.Change, 1e-9)
	assert.Equal(t, TrendDown, res.Trend)
	require.NotNil(t, res.Favorable)
	assert.False(t, *res.Favorable)

	flat, err := Evaluate(Definition{ID: "n", Type: TypeNumber, Calculation: Calculation{Op: OpCount}, Previous: &Calculation{Op: OpCount}}, orders())
	require.NoError(t, err)
	assert.Equal(t, TrendFlat, flat.Trend)
	assert.Nil(t, flat.Favorable)

	text, err := Evaluate(Definition{ID: "r", Type: TypeText, Calculation: Calculation{Op: OpFirst, Field: "region"}, Previous: &Calculation{Op: OpLast, Field: "region"}}, orders())
	require.NoError(t, err)
	assert.Equal(t, "east", text.Formatted)
	assert.Nil(t, text.Change)
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Definition{}.Validate(), ErrInvalidDefinition)
	assert.ErrorIs(t, Definition{ID: "a", Type: "gauge", Calculation: Calculation{Op: OpCount}}.Validate(), ErrInvalidDefinition)
	assert.ErrorIs(t, Definition{ID: "a", Type: TypeNumber, Calculation: Calculation{Op: OpSum}}.Validate(), ErrInvalidDefinition)
	assert.ErrorIs(t, Definition{ID: "a", Type: TypeNumber, Calculation: Calculation{Op: OpCount}, Previous: &Calculation{Op: "x"}}.Validate(), ErrInvalidDefinition)
	assert.NoError(t, Definition{ID: "a", Type: TypeNumber, Calculation: Calculation{Op: OpCount}}.Validate())

	_, err := EvaluateAll([]Definition{{ID: "ok", Type: TypeNumber, Calculation: Calculation{Op: OpCount}}, {}}, orders())
	assert.Error(t, err)
}
