// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package visualization

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"
)

// EChartsCDN is the script the exported page loads ECharts from.
const EChartsCDN = "https://cdn.jsdelivr.net/npm/echarts@5/dist/echarts.min.js"

// ChartRequest describes one chart of a report. With neither Kind nor
// Variant set, the chart selector picks the kind and, when the parameters
// name no fields, the fields too.
type ChartRequest struct {
	Kind        ChartType
	Variant     string
	Params      Params
	Description string
}

// ReportGenerator assembles complete HTML reports with embedded charts
type ReportGenerator struct {
	chartSelector *ChartSelector
	echartsGen    *EChartsGenerator
	style         *StyleConfig
	now           func() time.Time
}

// NewReportGenerator creates a report generator for a theme; nil uses the
// default theme.
func NewReportGenerator(style *StyleConfig) *ReportGenerator {
	if style == nil {
		style = DefaultStyleConfig()
	}
	return &ReportGenerator{
		chartSelector: NewChartSelector(style),
		echartsGen:    NewEChartsGenerator(style),
		style:         style,
		now:           time.Now,
	}
}

// GenerateReport derives every requested chart and wraps them in a Report.
func (rg *ReportGenerator) GenerateReport(ctx context.Context, title, summary string, requests []ChartRequest) (*Report, error) {
	if len(requests) == 0 {
		return nil, fmt.Errorf("no charts requested")
	}

	visualizations := make([]Visualization, 0, len(requests))
	rowsRendered := 0
	for i, req := range requests {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		viz, err := rg.visualize(req)
		if err != nil {
			return nil, fmt.Errorf("failed to generate chart %d: %w", i, err)
		}
		visualizations = append(visualizations, *viz)
		rowsRendered += viz.DataPoints
	}

	return &Report{
		Title:          title,
		Summary:        summary,
		Visualizations: visualizations,
		GeneratedAt:    rg.now().UTC().Format(time.RFC3339),
		Metadata: ReportMetadata{
			RowsRendered: rowsRendered,
			Extra:        map[string]interface{}{"theme": rg.style.Name},
		},
	}, nil
}

func (rg *ReportGenerator) visualize(req ChartRequest) (*Visualization, error) {
	p := req.Params
	kind := req.Kind
	confidence := 1.0
	rationale := req.Description

	if kind == "" && req.Variant == "" {
		if p.XField == "" && p.YField == "" {
			sel := rg.chartSelector.SuggestSelection(p.Data)
			p.XField, p.YField = sel.XField, sel.YField
		}
		best := rg.chartSelector.Recommend(p.Data, Selection{XField: p.XField, YField: p.YField, SeriesField: p.SeriesField})[0]
		kind, confidence = best.ChartType, best.Confidence
		if rationale == "" {
			rationale = best.Rationale
		}
	}

	var spec *ChartSpec
	if req.Variant != "" {
		var err error
		if spec, err = rg.echartsGen.DeriveVariant(req.Variant, p); err != nil {
			return nil, err
		}
	} else {
		spec = rg.echartsGen.Derive(kind, p)
	}
	config, err := spec.JSON()
	if err != nil {
		return nil, err
	}

	title := p.Title
	if title == "" && p.XField != "" && p.YField != "" {
		title = fmt.Sprintf("%s by %s", TitleCase(p.YField), TitleCase(p.XField))
	}
	if req.Variant != "" {
		kind = ChartType(strings.ToLower(req.Variant))
	}
	return &Visualization{
		Type:          kind,
		Title:         title,
		Description:   rationale,
		EChartsConfig: config,
		DataPoints:    len(p.Data),
		Metadata:      map[string]interface{}{"confidence": confidence},
	}, nil
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Report.Title}}</title>
    <script src="{{.CDN}}"></script>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: {{.FontFamily}};
            background: {{.Background}};
            color: {{.Text}};
            padding: 40px 20px;
            line-height: 1.6;
        }
        .container { max-width: 1200px; margin: 0 auto; }
        h1 { font-size: 32px; margin-bottom: 20px; font-weight: 600; }
        .summary { margin-bottom: 40px; font-size: 14px; line-height: 1.8; }
        .metadata { font-size: 12px; margin-bottom: 40px; opacity: 0.7; }
        .visualization { margin-bottom: 60px; }
        .viz-title { font-size: 20px; margin-bottom: 8px; font-weight: 500; }
        .viz-description { font-size: 13px; margin-bottom: 8px; opacity: 0.8; }
        .chart-container { width: 100%; height: 500px; }
        @media print {
            .chart-container { page-break-inside: avoid; }
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Report.Title}}</h1>
        {{if .Report.Summary}}<div class="summary">{{.Report.Summary}}</div>{{end}}
        <div class="metadata">
            Generated: {{.Report.GeneratedAt}}
            {{- with .Report.Metadata.DataSource}} | Data Source: {{.}}{{end}} |
            Rows Rendered: {{.Report.Metadata.RowsRendered}}
        </div>
{{range $i, $c := .Charts}}
        <div class="visualization">
            <h2 class="viz-title">{{$c.Title}}</h2>
            {{if $c.Description}}<p class="viz-description">{{$c.Description}}</p>{{end}}
            <div id="chart-{{$i}}" class="chart-container"></div>
        </div>
{{end}}
        <script>
{{range $i, $c := .Charts}}
            (function() {
                var chart = echarts.init(document.getElementById("chart-{{$i}}"));
                chart.setOption({{$c.Option}});
                window.addEventListener('resize', function() { chart.resize(); });
            })();
{{end}}
        </script>
    </div>
</body>
</html>
`))

type htmlChart struct {
	Title       string
	Description string
	Option      template.JS
}

// ExportHTML renders a self-contained page that loads ECharts from the CDN.
// Titles and text are HTML-escaped; chart options are embedded as JSON.
func (rg *ReportGenerator) ExportHTML(report *Report) (string, error) {
	if report == nil {
		return "", fmt.Errorf("report is nil")
	}

	charts := make([]htmlChart, len(report.Visualizations))
	for i, viz := range report.Visualizations {
		if !json.Valid([]byte(viz.EChartsConfig)) {
			return "", fmt.Errorf("visualization %d has invalid chart options", i)
		}
		charts[i] = htmlChart{
			Title:       viz.Title,
			Description: viz.Description,
			Option:      template.JS(viz.EChartsConfig),
		}
	}

	background := rg.style.ColorBackground
	if background == "" {
		background = "#ffffff"
	}
	text := rg.style.ColorText
	if text == "" {
		text = "#333333"
	}
	font := rg.style.FontFamily
	if font == "" {
		font = "sans-serif"
	}

	var sb strings.Builder
	err := reportTemplate.Execute(&sb, map[string]interface{}{
		"Report":     report,
		"Charts":     charts,
		"CDN":        EChartsCDN,
		"FontFamily": template.CSS(font),
		"Background": template.CSS(background),
		"Text":       template.CSS(text),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return sb.String(), nil
}

// ExportJSON exports report as JSON
func (rg *ReportGenerator) ExportJSON(report *Report) (string, error) {
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(b), nil
}
