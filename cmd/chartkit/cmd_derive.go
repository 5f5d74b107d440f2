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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/teradata-labs/chartkit/internal/log"
	"github.com/teradata-labs/chartkit/pkg/dashboard"
	"github.com/teradata-labs/chartkit/pkg/dataprep"
	"github.com/teradata-labs/chartkit/pkg/datasource"
	"github.com/teradata-labs/chartkit/pkg/visualization"
)

var (
	deriveKind        string
	deriveVariant     string
	deriveX           string
	deriveY           string
	deriveZ           string
	deriveSeries      string
	deriveAggregation string
	deriveLimit       int
	deriveTitle       string
	deriveSubtitle    string
	deriveSort        bool
	deriveFormat      string
	deriveRequired    []string
	deriveNumeric     []string
)

var deriveCmd = &cobra.Command{
	Use:   "derive [file]",
	Short: "Derive an ECharts option object from records",
	Long: heredoc.Doc(`
		Derive a chart from a JSON, CSV or XLSX file, or a JSON array on stdin.

		Without --kind or --variant the chart selector picks the kind, and the
		fields too when neither --x nor --y is given.
	`),
	Example: heredoc.Doc(`
		chartkit derive sales.csv --kind bar --x month --y sales
		chartkit derive sales.json --variant donut --x region --y revenue --format html > chart.html
		cat rows.json | chartkit derive --kind line --x day --y total --aggregation average
	`),
	Args: cobra.MaximumNArgs(1),
	RunE: runDerive,
}

func init() {
	deriveCmd.Flags().StringVar(&deriveKind, "kind", "", "chart kind ("+strings.Join(chartTypeNames(), ", ")+")")
	deriveCmd.Flags().StringVar(&deriveVariant, "variant", "", "named preset ("+strings.Join(visualization.VariantNames(), ", ")+")")
	deriveCmd.Flags().StringVar(&deriveX, "x", "", "category field")
	deriveCmd.Flags().StringVar(&deriveY, "y", "", "value field")
	deriveCmd.Flags().StringVar(&deriveZ, "z", "", "third dimension (scatter3d)")
	deriveCmd.Flags().StringVar(&deriveSeries, "series", "", "series field")
	deriveCmd.Flags().StringVar(&deriveAggregation, "aggregation", "sum", "sum, average, max or min")
	deriveCmd.Flags().IntVar(&deriveLimit, "limit", 0, "keep at most this many categories (0 = all)")
	deriveCmd.Flags().StringVar(&deriveTitle, "title", "", "chart title")
	deriveCmd.Flags().StringVar(&deriveSubtitle, "subtitle", "", "chart subtitle")
	deriveCmd.Flags().BoolVar(&deriveSort, "sort", false, "sort categories by value")
	deriveCmd.Flags().StringVar(&deriveFormat, "format", "json", "output format (json, html)")
	deriveCmd.Flags().StringSliceVar(&deriveRequired, "required", nil, "drop records missing any of these fields")
	deriveCmd.Flags().StringSliceVar(&deriveNumeric, "numeric", nil, "coerce these fields to numbers")

	deriveCmd.MarkFlagsMutuallyExclusive("kind", "variant")
	rootCmd.AddCommand(deriveCmd)
}

func chartTypeNames() []string {
	kinds := visualization.ChartTypes()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}

func runDerive(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	ctx := commandContext(cmd)
	raw, err := loadRecords(ctx, cmd, path)
	if err != nil {
		return err
	}

	data := dataprep.Prepare(raw, dataprep.Options{RequiredFields: deriveRequired, NumericFields: deriveNumeric})
	if dropped := len(raw) - len(data); dropped > 0 {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), dashboard.FilteredWarning(dropped))
	}

	req, err := deriveRequest(data)
	if err != nil {
		return err
	}

	gen := visualization.NewReportGenerator(visualization.GetThemeVariant(config.Theme))
	report, err := gen.GenerateReport(ctx, firstNonEmpty(deriveTitle, "chartkit"), "", []visualization.ChartRequest{req})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch deriveFormat {
	case "json":
		return writeRawJSON(w, []byte(report.Visualizations[0].EChartsConfig))
	case "html":
		page, err := gen.ExportHTML(report)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, page)
		return err
	default:
		return fmt.Errorf("unknown format %q (must be json or html)", deriveFormat)
	}
}

// deriveRequest builds the chart request from the derive flags.
func deriveRequest(data []dataprep.Record) (visualization.ChartRequest, error) {
	agg, err := visualization.ParseAggregation(deriveAggregation)
	if err != nil {
		return visualization.ChartRequest{}, err
	}
	req := visualization.ChartRequest{
		Variant: deriveVariant,
		Params: visualization.Params{
			Data:        data,
			XField:      deriveX,
			YField:      deriveY,
			ZField:      deriveZ,
			SeriesField: deriveSeries,
			Aggregation: agg,
			Limit:       deriveLimit,
			Title:       deriveTitle,
			Subtitle:    deriveSubtitle,
		},
	}
	if deriveSort {
		req.Params.SortData = visualization.Bool(true)
	}
	if deriveKind != "" {
		if req.Kind, err = visualization.ParseChartType(deriveKind); err != nil {
			return visualization.ChartRequest{}, err
		}
	}
	return req, nil
}

// loadRecords reads records from a file, picking the source by extension,
// or from a JSON array on stdin. Non-object entries are kept so that
// validation can report them.
func loadRecords(ctx context.Context, cmd *cobra.Command, path string) ([]interface{}, error) {
	if path == "" || path == "-" {
		var items []interface{}
		if err := json.NewDecoder(cmd.InOrStdin()).Decode(&items); err != nil {
			return nil, fmt.Errorf("stdin must hold a JSON array of records: %w", err)
		}
		return items, nil
	}

	cfg := datasource.Config{Type: sourceTypeFor(path), Path: path}
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		cfg.Delimiter = "\t"
	}
	provider, err := datasource.NewFactory(datasource.WithLogger(log.Logger())).New(cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = provider.Close() }()

	frame, err := provider.Load(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]interface{}, len(frame.Rows))
	for i, row := range frame.Rows {
		items[i] = row
	}
	return items, nil
}

func sourceTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return datasource.TypeCSV
	case ".xlsx":
		return datasource.TypeXLSX
	default:
		return datasource.TypeJSON
	}
}

// writeRawJSON re-indents an encoded document when pretty output is on.
func writeRawJSON(w io.Writer, raw []byte) error {
	if pretty || isTerminal(w) {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return err
		}
		raw = buf.Bytes()
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
