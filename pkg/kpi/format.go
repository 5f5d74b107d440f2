// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package kpi

import (
	"fmt"
	"strconv"

	"github.com/teradata-labs/chartkit/pkg/dataprep"
)

// NotAvailable is rendered for nil values.
const NotAvailable = "N/A"

var defaultDecimals = map[Type]int{
	TypeNumber:     0,
	TypePercentage: 1,
	TypeCurrency:   2,
	TypeRatio:      2,
}

// FormatValue renders v for def: fixed decimals per type, K/M/B
// abbreviation for abbreviated numbers, a currency symbol ("$" by default)
// and the format prefix and suffix. Text values and values that do not
// parse as numbers are rendered as-is.
func FormatValue(v interface{}, def Definition) string {
	if v == nil {
		return NotAvailable
	}
	f := def.Format
	return f.Prefix + formatBody(v, def.Type, f) + f.Suffix
}

func formatBody(v interface{}, typ Type, f Format) string {
	if typ == TypeText {
		return fmt.Sprint(v)
	}
	value, ok := dataprep.ParseFloat(v)
	if !ok {
		return fmt.Sprint(v)
	}

	decimals := f.Decimals
	if decimals == 0 {
		decimals = defaultDecimals[typ]
	}

	switch typ {
	case TypePercentage:
		return fixed(value, decimals) + "%"
	case TypeCurrency:
		symbol := f.CurrencySymbol
		if symbol == "" {
			symbol = "$"
		}
		return symbol + fixed(value, decimals)
	case TypeRatio:
		return fixed(value, decimals)
	default:
		if f.Abbreviate {
			return abbreviate(value, f.Decimals)
		}
		return fixed(value, decimals)
	}
}

// abbreviate scales by thousands. Scaled values default to one decimal,
// unscaled ones to none.
func abbreviate(value float64, decimals int) string {
	scaled := decimals
	if scaled == 0 {
		scaled = 1
	}
	switch {
	case value >= 1e9:
		return fixed(value/1e9, scaled) + "B"
	case value >= 1e6:
		return fixed(value/1e6, scaled) + "M"
	case value >= 1e3:
		return fixed(value/1e3, scaled) + "K"
	default:
		return fixed(value, decimals)
	}
}

func fixed(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
