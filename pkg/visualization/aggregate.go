// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package visualization

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/teradata-labs/chartkit/internal/log"
	"github.com/teradata-labs/chartkit/internal/mathutil"
	"github.com/teradata-labs/chartkit/internal/ordered"
	"github.com/teradata-labs/chartkit/pkg/dataprep"
	"go.uber.org/zap"
)

// undefinedKey is the category used for missing x or series values.
const undefinedKey = "undefined"

// AggregateResult is the grouped or simple view of the data behind a
// cartesian chart. It is built fresh for every derivation.
type AggregateResult struct {
	Categories  []string
	SeriesNames []string

	// Grouped maps category -> series -> aggregated value (grouped path).
	Grouped map[string]map[string]float64

	// Values parallels Categories on the simple path.
	Values []float64
	// Records are the filtered, sorted, limited records of the simple path.
	Records []dataprep.Record
}

// IsGrouped reports whether the result came from the grouped path.
func (a *AggregateResult) IsGrouped() bool {
	return a.Grouped != nil
}

// Value returns the grouped value for a pair, 0 when absent.
func (a *AggregateResult) Value(category, series string) float64 {
	return a.Grouped[category][series]
}

// accumulator reduces one (category, series) cell.
type accumulator struct {
	value float64
	sum   float64
	count int
	seen  bool
}

// add folds y into the cell. Running sums saturate at the largest finite
// float instead of overflowing to infinity.
func (acc *accumulator) add(y float64, agg Aggregation, legacy bool) {
	switch agg {
	case AggregateAverage:
		acc.sum = mathutil.Saturate(acc.sum + y)
		acc.count++
		acc.value = acc.sum / float64(acc.count)
	case AggregateMax:
		if legacy {
			acc.value = max(acc.value, y)
		} else if !acc.seen || y > acc.value {
			acc.value = y
		}
	case AggregateMin:
		if legacy {
			if acc.value == 0 {
				acc.value = y
			} else {
				acc.value = min(acc.value, y)
			}
		} else if !acc.seen || y < acc.value {
			acc.value = y
		}
	default:
		acc.value = mathutil.Saturate(acc.value + y)
	}
	acc.seen = true
}

// Aggregate groups and reduces p.Data for cartesian kinds. With x, y and
// series fields it takes the grouped path; with only x and y the simple
// path; otherwise it returns an empty result.
func Aggregate(p Params) *AggregateResult {
	switch {
	case p.XField != "" && p.YField != "" && p.SeriesField != "":
		return aggregateGrouped(p)
	case p.XField != "" && p.YField != "":
		return aggregateSimple(p)
	default:
		return &AggregateResult{Categories: []string{}, SeriesNames: []string{}, Values: []float64{}}
	}
}

func aggregateGrouped(p Params) *AggregateResult {
	agg := normalizeAggregation(p.Aggregation)

	cells := ordered.New[string, *ordered.Map[string, *accumulator]]()
	for _, rec := range p.Data {
		category := keyOf(rec[p.XField])
		series := keyOf(rec[p.SeriesField])
		y := dataprep.ToNumber(rec[p.YField])

		row := cells.GetOrInit(category, ordered.New[string, *accumulator])
		acc := row.GetOrInit(series, func() *accumulator { return &accumulator{} })
		acc.add(y, agg, p.LegacyExtremes)
	}

	// Series names follow first appearance across categories in data order,
	// before any category sorting.
	seriesNames := ordered.New[string, struct{}]()
	grouped := make(map[string]map[string]float64, cells.Len())
	cells.Range(func(category string, row *ordered.Map[string, *accumulator]) bool {
		values := make(map[string]float64, row.Len())
		row.Range(func(series string, acc *accumulator) bool {
			values[series] = acc.value
			seriesNames.Set(series, struct{}{})
			return true
		})
		grouped[category] = values
		return true
	})

	if boolOr(p.SortData, false) {
		cells.SortKeys(func(a, b string) bool { return a < b })
	}

	return &AggregateResult{
		Categories:  limitStrings(cells.Keys(), p.Limit),
		SeriesNames: seriesNames.Keys(),
		Grouped:     grouped,
	}
}

func aggregateSimple(p Params) *AggregateResult {
	records := make([]dataprep.Record, 0, len(p.Data))
	for _, rec := range p.Data {
		if rec[p.XField] == nil || rec[p.YField] == nil {
			continue
		}
		records = append(records, rec)
	}

	if boolOr(p.SortData, false) {
		sort.SliceStable(records, func(i, j int) bool {
			return keyOf(records[i][p.XField]) < keyOf(records[j][p.XField])
		})
	}
	if p.Limit > 0 && len(records) > p.Limit {
		records = records[:p.Limit]
	}

	categories := make([]string, len(records))
	values := make([]float64, len(records))
	for i, rec := range records {
		categories[i] = keyOf(rec[p.XField])
		values[i] = dataprep.ToNumber(rec[p.YField])
	}

	return &AggregateResult{
		Categories:  categories,
		SeriesNames: []string{},
		Values:      values,
		Records:     records,
	}
}

func normalizeAggregation(a Aggregation) Aggregation {
	switch a {
	case AggregateSum, AggregateAverage, AggregateMax, AggregateMin:
		return a
	case "":
		return AggregateSum
	default:
		log.Warn("unknown aggregation, using sum", zap.String("aggregation", string(a)))
		return AggregateSum
	}
}

func limitStrings(s []string, limit int) []string {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}

// formatNumber renders v the way JavaScript's String(n) does: plain
// decimals for magnitudes in [1e-6, 1e21) and exponent form with an
// unpadded exponent ("1e+21", "1.5e-7") outside that range.
func formatNumber(v float64, bitSize int) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}

	if abs := math.Abs(v); abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(v, 'e', -1, bitSize)
		mantissa, exp, _ := strings.Cut(s, "e")
		digits := strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + exp[:1] + digits
	}
	return strconv.FormatFloat(v, 'f', -1, bitSize)
}

// keyOf stringifies a record value for use as a category, series or node
// name. nil maps to "undefined".
func keyOf(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return undefinedKey
	case string:
		return val
	case float64:
		return formatNumber(val, 64)
	case float32:
		return formatNumber(float64(val), 32)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
