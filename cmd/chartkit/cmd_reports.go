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
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teradata-labs/chartkit/pkg/dashboard"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Inspect the report catalogue",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reports",
	Args:  cobra.NoArgs,
	RunE:  runReportsList,
}

var reportsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy-search reports by name and id",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runReportsSearch,
}

func init() {
	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsSearchCmd)
	rootCmd.AddCommand(reportsCmd)
}

func loadRegistry() (*dashboard.Registry, error) {
	f, err := dashboard.LoadFile(config.Reports.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}
	return dashboard.NewRegistry(f), nil
}

func runReportsList(cmd *cobra.Command, _ []string) error {
	registry, err := loadRegistry()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tCHART\tSOURCE\tREFRESH")
	for _, r := range registry.List() {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Name, r.ChartType(), sourceOf(r), orDash(r.Refresh))
	}
	return tw.Flush()
}

func runReportsSearch(cmd *cobra.Command, args []string) error {
	registry, err := loadRegistry()
	if err != nil {
		return err
	}

	hits := registry.Search(strings.Join(args, " "))
	if len(hits) == 0 {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No matching reports.")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tSCORE")
	for _, hit := range hits {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\n", hit.Report.ID, hit.Report.Name, hit.Score)
	}
	return tw.Flush()
}

func sourceOf(r *dashboard.Report) string {
	switch {
	case r.Source != nil:
		return r.Source.Describe()
	case len(r.Dataset) > 0:
		return "dataset"
	default:
		return "default"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
