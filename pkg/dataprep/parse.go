// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package dataprep

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseFloat converts a record value to a float64 the way a lenient
// browser-side parser would: numbers pass through, strings are parsed from
// their longest numeric prefix after leading whitespace ("12px" -> 12,
// " 3.5e2kg" -> 350). Booleans, nil, unparseable strings and non-finite
// results report ok=false.
func ParseFloat(v interface{}) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int8:
		f = float64(val)
	case int16:
		f = float64(val)
	case int32:
		f = float64(val)
	case int64:
		f = float64(val)
	case uint:
		f = float64(val)
	case uint8:
		f = float64(val)
	case uint16:
		f = float64(val)
	case uint32:
		f = float64(val)
	case uint64:
		f = float64(val)
	case json.Number:
		return ParseFloat(string(val))
	case string:
		parsed, ok := parseNumericPrefix(val)
		if !ok {
			return 0, false
		}
		f = parsed
	case []byte:
		return ParseFloat(string(val))
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ToNumber is ParseFloat with failures mapped to 0.
func ToNumber(v interface{}) float64 {
	f, _ := ParseFloat(v)
	return f
}

// parseNumericPrefix scans [sign] digits [. digits] [e [sign] digits] and
// parses what it found. "Infinity" is recognised so it can be rejected as
// non-finite rather than read as garbage.
func parseNumericPrefix(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if s == "" {
		return 0, false
	}

	i := 0
	if s[i] == '+' || s[i] == '-' {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		return 0, false
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}

	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expDigits := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			expDigits++
		}
		if expDigits > 0 {
			end = j
		}
	}

	f, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		// Out-of-range exponents come back as ±Inf with ErrRange.
		return 0, false
	}
	return f, true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
