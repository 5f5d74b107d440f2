// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package visualization

import (
	"sort"
	"strings"
)

// variant adjusts a base kind's series at construction time.
type variant struct {
	base        ChartType
	seriesStyle map[string]interface{}
	label       *LabelOptions
	itemColors  bool
}

var variants = map[string]variant{
	"donut": {
		base:       ChartTypePie,
		itemColors: true,
	},
	"nightingale": {
		base: ChartTypePie,
		seriesStyle: map[string]interface{}{
			"radius":   "60%",
			"roseType": "radius",
		},
		itemColors: true,
	},
	"area": {
		base:        ChartTypeLine,
		seriesStyle: map[string]interface{}{"areaStyle": map[string]interface{}{}},
	},
	"treemap-lite": {
		base: ChartTypeTreemap,
		seriesStyle: map[string]interface{}{
			"roam":      false,
			"leafDepth": 1,
		},
		label:      &LabelOptions{Show: true, Color: "#fff", Formatter: "{b}: {c}"},
		itemColors: true,
	},
}

// VariantNames lists the named presets accepted by DeriveVariant, sorted.
func VariantNames() []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DeriveVariant derives a named preset or, failing that, a plain chart
// kind. Unlike Derive it reports unknown names instead of falling back.
func (eg *EChartsGenerator) DeriveVariant(name string, p Params) (*ChartSpec, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if v, ok := variants[key]; ok {
		return eg.derive(v.base, p, &v), nil
	}
	kind, err := ParseChartType(key)
	if err != nil {
		return nil, err
	}
	return eg.derive(kind, p, nil), nil
}

// DeriveVariant derives a preset with the default theme.
func DeriveVariant(name string, p Params) (*ChartSpec, error) {
	return defaultGenerator.DeriveVariant(name, p)
}
