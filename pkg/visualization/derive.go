// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package visualization

import (
	"sort"

	"github.com/teradata-labs/chartkit/internal/mathutil"
	"github.com/teradata-labs/chartkit/internal/ordered"
	"github.com/teradata-labs/chartkit/pkg/dataprep"
)

// deriveCartesian handles bar and line charts.
func deriveCartesian(b *builder) *ChartSpec {
	spec := b.base()
	p := b.p
	spec.YAxis = b.valueAxis("")

	if p.XField == "" || p.YField == "" {
		spec.XAxis = b.categoryAxis(nil)
		return spec
	}

	agg := Aggregate(p)
	spec.XAxis = b.categoryAxis(agg.Categories)

	if agg.IsGrouped() {
		for _, name := range agg.SeriesNames {
			data := make([]float64, len(agg.Categories))
			for i, category := range agg.Categories {
				data[i] = agg.Value(category, name)
			}
			spec.Series = append(spec.Series, b.series(name, data, b.cartesianStyle()))
		}
		return spec
	}

	if len(agg.Categories) == 0 {
		return spec
	}

	var data interface{} = agg.Values
	if colors := b.itemColors(len(agg.Values)); colors != nil {
		items := make([]NamedValue, len(agg.Values))
		for i, v := range agg.Values {
			items[i] = NamedValue{Name: agg.Categories[i], Value: v, ItemStyle: &ItemStyle{Color: colors[i%len(colors)]}}
		}
		data = items
	}
	spec.Series = append(spec.Series, b.series(p.YField, data, b.cartesianStyle()))
	return spec
}

func (b *builder) cartesianStyle() map[string]interface{} {
	style := map[string]interface{}{"emphasis": emphasisSeries()}
	if b.kind == ChartTypeLine {
		style["smooth"] = true
	}
	return style
}

func derivePie(b *builder) *ChartSpec {
	spec := b.base()
	p := b.p
	if p.XField == "" || p.YField == "" {
		return spec
	}

	spec.Tooltip = &Tooltip{Trigger: "item", Formatter: "{a} <br/>{b}: {c} ({d}%)"}
	if len(p.Data) == 0 {
		return spec
	}

	items := namedValues(p.Data, p.XField, p.YField)
	if boolOr(p.SortData, false) {
		sortDescending(items)
	}
	if p.Limit > 0 && len(items) > p.Limit {
		items = items[:p.Limit]
	}
	b.colorItems(items)

	name := p.Title
	if name == "" {
		name = p.YField
	}
	s := b.series(name, items, map[string]interface{}{
		"radius":            []string{"40%", "70%"},
		"avoidLabelOverlap": true,
		"itemStyle": map[string]interface{}{
			"borderRadius": 10,
			"borderColor":  b.style.PieBorderColor,
			"borderWidth":  2,
		},
		"emphasis": map[string]interface{}{
			"label": map[string]interface{}{
				"show":       true,
				"fontSize":   14,
				"fontWeight": "bold",
			},
		},
	})
	if s.Label == nil {
		s.Label = &LabelOptions{Show: true, Formatter: "{b}: {c} ({d}%)"}
	}
	spec.Series = append(spec.Series, s)
	return spec
}

func deriveScatter(b *builder) *ChartSpec {
	spec := b.base()
	p := b.p
	if p.XField == "" || p.YField == "" {
		return spec
	}

	spec.XAxis = b.valueAxis(p.XField)
	spec.YAxis = b.valueAxis(p.YField)
	if len(p.Data) == 0 {
		return spec
	}

	point := func(rec dataprep.Record) Point {
		return Point{dataprep.ToNumber(rec[p.XField]), dataprep.ToNumber(rec[p.YField])}
	}

	if p.SeriesField == "" {
		points := make([]Point, len(p.Data))
		for i, rec := range p.Data {
			points[i] = point(rec)
		}
		name := p.Title
		if name == "" {
			name = p.XField + " vs " + p.YField
		}
		spec.Series = append(spec.Series, b.series(name, points, map[string]interface{}{"emphasis": emphasisSeries()}))
		return spec
	}

	groups := ordered.New[string, []Point]()
	for _, rec := range p.Data {
		key := keyOf(rec[p.SeriesField])
		groups.Set(key, append(groups.GetOrInit(key, func() []Point { return nil }), point(rec)))
	}
	groups.Range(func(name string, points []Point) bool {
		spec.Series = append(spec.Series, b.series(name, points, map[string]interface{}{"emphasis": emphasisSeries()}))
		return true
	})
	return spec
}

func deriveHeatmap(b *builder) *ChartSpec {
	spec := b.base()
	p := b.p
	if p.XField == "" || p.YField == "" || p.SeriesField == "" || len(p.Data) == 0 {
		return spec
	}

	xIndex := ordered.New[string, int]()
	yIndex := ordered.New[string, int]()
	cells := make([]HeatCell, len(p.Data))
	minV, maxV := 0.0, 0.0
	for i, rec := range p.Data {
		xi := indexOf(xIndex, keyOf(rec[p.XField]))
		yi := indexOf(yIndex, keyOf(rec[p.YField]))
		v := dataprep.ToNumber(rec[p.SeriesField])
		cells[i] = HeatCell{float64(xi), float64(yi), v}
		if i == 0 || v < minV {
			minV = v
		}
		if i == 0 || v > maxV {
			maxV = v
		}
	}

	spec.Tooltip = &Tooltip{Position: "top"}
	spec.Grid = &Grid{Height: "60%", Top: "10%"}
	spec.XAxis = &Axis{Type: "category", Data: xIndex.Keys(), SplitArea: &SplitArea{Show: true}}
	spec.YAxis = &Axis{Type: "category", Data: yIndex.Keys(), SplitArea: &SplitArea{Show: true}}
	spec.VisualMap = &VisualMap{
		Min:        minV,
		Max:        maxV,
		Calculable: true,
		Orient:     "horizontal",
		Left:       "center",
		Bottom:     "0%",
	}

	s := b.series(p.SeriesField, cells, map[string]interface{}{
		"emphasis": map[string]interface{}{
			"itemStyle": map[string]interface{}{
				"shadowBlur":  10,
				"shadowColor": "rgba(0, 0, 0, 0.5)",
			},
		},
	})
	if s.Label == nil {
		s.Label = &LabelOptions{Show: true}
	}
	spec.Series = append(spec.Series, s)
	return spec
}

// indexOf returns the position of key, appending it when first seen.
func indexOf(m *ordered.Map[string, int], key string) int {
	return m.GetOrInit(key, func() int { return m.Len() })
}

func deriveRadar(b *builder) *ChartSpec {
	spec := b.base()
	p := b.p
	if p.XField == "" || p.YField == "" || len(p.Data) == 0 {
		return spec
	}

	// Largest y per indicator, in first-seen order.
	peaks := ordered.New[string, float64]()
	for _, rec := range p.Data {
		key := keyOf(rec[p.XField])
		y := dataprep.ToNumber(rec[p.YField])
		if cur, ok := peaks.Get(key); !ok || y > cur {
			peaks.Set(key, y)
		}
	}
	indicators := make([]RadarIndicator, 0, peaks.Len())
	peaks.Range(func(name string, peak float64) bool {
		indicators = append(indicators, RadarIndicator{Name: name, Max: headroom(peak)})
		return true
	})
	spec.Radar = &RadarCoord{Indicator: indicators}

	// First matching record wins for each (indicator, series) cell.
	valuesFor := func(match func(dataprep.Record) bool) []float64 {
		values := make([]float64, len(indicators))
		for i, ind := range indicators {
			for _, rec := range p.Data {
				if keyOf(rec[p.XField]) == ind.Name && match(rec) {
					values[i] = dataprep.ToNumber(rec[p.YField])
					break
				}
			}
		}
		return values
	}

	var polygons []RadarValue
	if p.SeriesField == "" {
		polygons = []RadarValue{{Name: p.YField, Value: valuesFor(func(dataprep.Record) bool { return true })}}
	} else {
		names := ordered.New[string, struct{}]()
		for _, rec := range p.Data {
			names.Set(keyOf(rec[p.SeriesField]), struct{}{})
		}
		for _, name := range names.Keys() {
			polygons = append(polygons, RadarValue{
				Name: name,
				Value: valuesFor(func(rec dataprep.Record) bool {
					return keyOf(rec[p.SeriesField]) == name
				}),
			})
		}
	}

	spec.Series = append(spec.Series, b.series(p.YField, polygons, nil))
	return spec
}

func deriveFunnel(b *builder) *ChartSpec {
	spec := b.base()
	p := b.p
	if p.XField == "" || p.YField == "" {
		return spec
	}

	spec.Tooltip = &Tooltip{Trigger: "item", Formatter: "{a} <br/>{b} : {c}"}
	if len(p.Data) == 0 {
		return spec
	}

	items := namedValues(p.Data, p.XField, p.YField)
	if boolOr(p.SortData, true) {
		sortDescending(items)
	}
	b.colorItems(items)

	largest := items[0].Value
	for _, it := range items[1:] {
		largest = max(largest, it.Value)
	}

	s := b.series(p.YField, items, map[string]interface{}{
		"left":    "10%",
		"top":     60,
		"bottom":  60,
		"width":   "80%",
		"min":     0,
		"max":     headroom(largest),
		"minSize": "0%",
		"maxSize": "100%",
		"sort":    "descending",
		"gap":     2,
		"emphasis": map[string]interface{}{
			"label": map[string]interface{}{
				"fontSize":   14,
				"fontWeight": "bold",
			},
		},
	})
	if s.Label == nil {
		s.Label = &LabelOptions{Show: true, Position: "inside"}
	}
	spec.Series = append(spec.Series, s)
	return spec
}

func deriveTreemap(b *builder) *ChartSpec {
	spec := b.base()
	p := b.p
	if p.XField == "" || p.YField == "" || len(p.Data) == 0 {
		return spec
	}

	var nodes []TreeNode
	if p.SeriesField == "" {
		nodes = leaves(p.Data, p.XField, p.YField)
	} else {
		parents := ordered.New[string, *TreeNode]()
		for _, rec := range p.Data {
			key := keyOf(rec[p.SeriesField])
			parent := parents.GetOrInit(key, func() *TreeNode { return &TreeNode{Name: key} })
			y := dataprep.ToNumber(rec[p.YField])
			parent.Children = append(parent.Children, TreeNode{Name: keyOf(rec[p.XField]), Value: y})
			parent.Value = mathutil.Saturate(parent.Value + y)
		}
		nodes = derefNodes(parents.Values())
	}
	b.colorNodes(nodes)

	spec.Series = append(spec.Series, b.series("", nodes, nil))
	return spec
}

func deriveSankey(b *builder) *ChartSpec {
	spec := b.base()
	p := b.p
	if p.XField == "" || p.YField == "" || p.SeriesField == "" || len(p.Data) == 0 {
		return spec
	}

	names := ordered.New[string, struct{}]()
	links := make([]SankeyLink, 0, len(p.Data))
	for _, rec := range p.Data {
		source, target := keyOf(rec[p.XField]), keyOf(rec[p.YField])
		names.Set(source, struct{}{})
		names.Set(target, struct{}{})
		links = append(links, SankeyLink{
			Source: source,
			Target: target,
			Value:  dataprep.ToNumber(rec[p.SeriesField]),
		})
	}
	nodes := make([]SankeyNode, 0, names.Len())
	for _, name := range names.Keys() {
		nodes = append(nodes, SankeyNode{Name: name})
	}

	spec.Tooltip = &Tooltip{Trigger: "item", Formatter: "{b}: {c}"}
	s := b.series("", nodes, map[string]interface{}{
		"emphasis":  map[string]interface{}{"focus": "adjacency"},
		"lineStyle": map[string]interface{}{"color": "gradient", "curveness": 0.5},
	})
	s.Links = links
	spec.Series = append(spec.Series, s)
	return spec
}

func deriveSunburst(b *builder) *ChartSpec {
	spec := b.base()
	p := b.p
	if p.XField == "" || p.YField == "" || len(p.Data) == 0 {
		return spec
	}

	var nodes []TreeNode
	if p.SeriesField == "" {
		nodes = leaves(p.Data, p.XField, p.YField)
	} else {
		type parent struct {
			node     TreeNode
			children *ordered.Map[string, *TreeNode]
		}
		parents := ordered.New[string, *parent]()
		for _, rec := range p.Data {
			key := keyOf(rec[p.SeriesField])
			par := parents.GetOrInit(key, func() *parent {
				return &parent{node: TreeNode{Name: key}, children: ordered.New[string, *TreeNode]()}
			})
			childKey := keyOf(rec[p.XField])
			child := par.children.GetOrInit(childKey, func() *TreeNode { return &TreeNode{Name: childKey} })
			y := dataprep.ToNumber(rec[p.YField])
			child.Value = mathutil.Saturate(child.Value + y)
			par.node.Value = mathutil.Saturate(par.node.Value + y)
		}
		for _, par := range parents.Values() {
			par.node.Children = derefNodes(par.children.Values())
			nodes = append(nodes, par.node)
		}
	}
	b.colorNodes(nodes)

	spec.Series = append(spec.Series, b.series("", nodes, map[string]interface{}{
		"radius": []string{"15%", "80%"},
		"label":  map[string]interface{}{"rotate": "radial"},
	}))
	return spec
}

// deriveGauge shows the first record only.
func deriveGauge(b *builder) *ChartSpec {
	spec := b.base()
	p := b.p
	if p.XField == "" || p.YField == "" || len(p.Data) == 0 {
		return spec
	}

	first := p.Data[0]
	bands := make([][]interface{}, len(b.style.GaugeBands))
	for i, band := range b.style.GaugeBands {
		bands[i] = []interface{}{band.Until, band.Color}
	}

	spec.Tooltip = &Tooltip{Formatter: "{a} <br/>{b} : {c}%"}
	spec.Series = append(spec.Series, b.series("Gauge", []NamedValue{{
		Name:  keyOf(first[p.XField]),
		Value: dataprep.ToNumber(first[p.YField]),
	}}, map[string]interface{}{
		"detail": map[string]interface{}{"formatter": "{value}"},
		"axisLine": map[string]interface{}{
			"lineStyle": map[string]interface{}{
				"width": b.style.GaugeLineWidth,
				"color": bands,
			},
		},
	}))
	return spec
}

func deriveScatter3D(b *builder) *ChartSpec {
	spec := b.base()
	p := b.p
	if p.XField == "" || p.YField == "" || p.ZField == "" {
		return spec
	}

	spec.Grid3D = &Grid3D{}
	spec.XAxis3D = &Axis{Name: p.XField}
	spec.YAxis3D = &Axis{Name: p.YField}
	spec.ZAxis3D = &Axis{Name: p.ZField}
	if len(p.Data) == 0 {
		return spec
	}

	point := func(rec dataprep.Record) Point3D {
		return Point3D{
			dataprep.ToNumber(rec[p.XField]),
			dataprep.ToNumber(rec[p.YField]),
			dataprep.ToNumber(rec[p.ZField]),
		}
	}

	if p.SeriesField == "" {
		points := make([]Point3D, len(p.Data))
		for i, rec := range p.Data {
			points[i] = point(rec)
		}
		spec.Series = append(spec.Series, b.series(p.Title, points, nil))
		return spec
	}

	groups := ordered.New[string, []Point3D]()
	for _, rec := range p.Data {
		key := keyOf(rec[p.SeriesField])
		groups.Set(key, append(groups.GetOrInit(key, func() []Point3D { return nil }), point(rec)))
	}
	groups.Range(func(name string, points []Point3D) bool {
		spec.Series = append(spec.Series, b.series(name, points, nil))
		return true
	})
	return spec
}

func namedValues(data []dataprep.Record, xField, yField string) []NamedValue {
	items := make([]NamedValue, len(data))
	for i, rec := range data {
		items[i] = NamedValue{Name: keyOf(rec[xField]), Value: dataprep.ToNumber(rec[yField])}
	}
	return items
}

// headroom is the axis maximum for a peak value: 20% above it, capped at
// the largest finite float.
func headroom(peak float64) float64 {
	return mathutil.Saturate(peak * 1.2)
}

func sortDescending(items []NamedValue) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Value > items[j].Value })
}

func leaves(data []dataprep.Record, xField, yField string) []TreeNode {
	nodes := make([]TreeNode, len(data))
	for i, rec := range data {
		nodes[i] = TreeNode{Name: keyOf(rec[xField]), Value: dataprep.ToNumber(rec[yField])}
	}
	return nodes
}

func derefNodes(ptrs []*TreeNode) []TreeNode {
	nodes := make([]TreeNode, len(ptrs))
	for i, n := range ptrs {
		nodes[i] = *n
	}
	return nodes
}

func (b *builder) colorItems(items []NamedValue) {
	colors := b.itemColors(len(items))
	if colors == nil {
		return
	}
	for i := range items {
		items[i].ItemStyle = &ItemStyle{Color: colors[i%len(colors)]}
	}
}

// colorNodes colors the top level of a tree.
func (b *builder) colorNodes(nodes []TreeNode) {
	colors := b.itemColors(len(nodes))
	if colors == nil {
		return
	}
	for i := range nodes {
		nodes[i].ItemStyle = &ItemStyle{Color: colors[i%len(colors)]}
	}
}
