// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teradata-labs/chartkit/internal/log"
	"github.com/teradata-labs/chartkit/pkg/dashboard"
	"github.com/teradata-labs/chartkit/pkg/visualization"
)

var (
	renderAll    bool
	renderFormat string
	renderOutput string
	renderType   string
	renderX      string
	renderY      string
	renderSeries string
)

var renderCmd = &cobra.Command{
	Use:   "render [report-id...]",
	Short: "Render reports to JSON or HTML",
	Long: `Load each report's data, validate it and derive its chart. JSON output
holds the full render results; HTML output is a self-contained page with
one chart per report; report-json is the document behind that page, with
each chart's option embedded as a string.`,
	Example: `  chartkit render sales --type line
  chartkit render --all --format html --output reports.html
  chartkit render --all --format report-json`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().BoolVar(&renderAll, "all", false, "render every report in the catalogue")
	renderCmd.Flags().StringVar(&renderFormat, "format", "json", "output format (json, html, report-json)")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "write to this file instead of stdout")
	renderCmd.Flags().StringVar(&renderType, "type", "", "override the chart type")
	renderCmd.Flags().StringVar(&renderX, "x", "", "override the x field")
	renderCmd.Flags().StringVar(&renderY, "y", "", "override the y field")
	renderCmd.Flags().StringVar(&renderSeries, "series", "", "override the series field")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	if renderAll == (len(args) > 0) {
		return fmt.Errorf("give report ids or --all, not both")
	}
	switch renderFormat {
	case "json", "html", "report-json":
	default:
		return fmt.Errorf("unknown format %q (must be json, html or report-json)", renderFormat)
	}

	dash, cleanup, err := openDashboard(config, log.Logger())
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := commandContext(cmd)
	var results []*dashboard.Result
	if renderAll {
		if results, err = dash.RenderAll(ctx); err != nil {
			return err
		}
	} else {
		sel := dashboard.Selection{ChartType: renderType, XField: renderX, YField: renderY, SeriesField: renderSeries}
		for _, id := range args {
			res, err := dash.Render(ctx, id, sel)
			if err != nil {
				return err
			}
			results = append(results, res)
		}
	}
	for _, res := range results {
		if res.Warning != "" {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", res.ReportID, res.Warning)
		}
	}

	w := cmd.OutOrStdout()
	if renderOutput != "" {
		f, err := os.Create(renderOutput)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if renderFormat == "json" {
		return writeJSON(w, results)
	}
	return writeReport(w, results, renderFormat)
}

// writeReport exports results as one report through the report generator,
// either as an HTML page or as the report document itself.
func writeReport(w io.Writer, results []*dashboard.Result, format string) error {
	report, err := buildReport(results)
	if err != nil {
		return err
	}

	rg := visualization.NewReportGenerator(visualization.GetThemeVariant(config.Theme))
	var out string
	if format == "html" {
		out, err = rg.ExportHTML(report)
	} else {
		out, err = rg.ExportJSON(report)
	}
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func buildReport(results []*dashboard.Result) (*visualization.Report, error) {
	report := &visualization.Report{
		Title:       "chartkit reports",
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if len(results) == 1 {
		report.Title = results[0].Name
		report.Summary = results[0].Description
	}

	sources := make([]string, 0, len(results))
	for _, res := range results {
		option, err := res.Spec.JSON()
		if err != nil {
			return nil, fmt.Errorf("report %s: %w", res.ReportID, err)
		}
		report.Visualizations = append(report.Visualizations, visualization.Visualization{
			Type:          visualization.ChartType(res.ChartType),
			Title:         res.Name,
			Description:   firstNonEmpty(res.Warning, res.Description),
			EChartsConfig: option,
			DataPoints:    res.ValidRows,
		})
		report.Metadata.RowsLoaded += res.TotalRows
		report.Metadata.RowsRendered += res.ValidRows
		sources = append(sources, res.Source)
	}
	report.Metadata.DataSource = strings.Join(sources, ", ")
	return report, nil
}
