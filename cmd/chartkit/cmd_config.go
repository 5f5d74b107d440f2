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
	"os"
	"path/filepath"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	chartconfig "github.com/teradata-labs/chartkit/pkg/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage chartkit configuration",
	Long:  `Generate, inspect and query chartkit configuration files.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate example configuration and reports files",
	Long: `Write an example chartkit.yaml to the data directory ($CHARTKIT_DATA_DIR,
default ~/.chartkit), plus an example reports.yaml when none exists.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration (merged from all sources).`,
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Get a configuration value",
	Long: `Get a value from the merged configuration.

Examples:
  chartkit config get server.port
  chartkit config get reports.path`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing config file")

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	dataDir := chartconfig.GetDataDir()
	if config != nil && config.DataDir != "" {
		dataDir = config.DataDir
	}
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	out := cmd.OutOrStdout()
	configPath := filepath.Join(dataDir, DefaultConfigFileName+".yaml")
	if _, err := os.Stat(configPath); err == nil && !configForce {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", configPath)
	}
	if err := os.WriteFile(configPath, []byte(GenerateExampleConfig()), 0600); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Wrote %s\n", configPath)

	reportsPath := filepath.Join(dataDir, chartconfig.ReportsFileName)
	if _, err := os.Stat(reportsPath); os.IsNotExist(err) {
		if err := os.WriteFile(reportsPath, []byte(exampleReports()), 0600); err != nil {
			return fmt.Errorf("error writing reports file: %w", err)
		}
		_, _ = fmt.Fprintf(out, "Wrote %s\n", reportsPath)
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Next steps:")
	_, _ = fmt.Fprintf(out, "  1. Edit %s to describe your reports\n", reportsPath)
	_, _ = fmt.Fprintln(out, "  2. Run 'chartkit serve'")
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if config == nil {
		return fmt.Errorf("configuration not loaded")
	}
	w := cmd.OutOrStdout()
	p := func(format string, args ...interface{}) { _, _ = fmt.Fprintf(w, format, args...) }

	p("Current Configuration:\n")
	p("======================\n\n")

	p("Server:\n")
	p("  Address: %s\n", config.Addr())
	p("  Gzip: %t\n", config.Server.Gzip)
	p("  CORS: %t\n", config.Server.CORS.Enabled)
	if config.Server.CORS.Enabled {
		p("  CORS Origins: %v\n", config.Server.CORS.AllowedOrigins)
	}
	p("\n")

	p("Reports:\n")
	p("  Path: %s\n", config.Reports.Path)
	p("  Watch: %t (debounce %s)\n", config.Reports.Watch, config.Reports.Debounce)
	p("  Schedule: %t\n", config.Reports.Schedule)
	p("  Concurrency: %d\n", config.Reports.Concurrency)
	p("\n")

	p("Sources:\n")
	p("  Base Dir: %s\n", orDash(config.Sources.BaseDir))
	p("  Cache Entries: %d\n", config.Sources.CacheEntries)
	p("  Cache TTL: %s\n", config.Sources.CacheTTL)
	p("\n")

	p("Theme: %s\n\n", config.Theme)

	p("Logging:\n")
	p("  Level: %s\n", config.Logging.Level)
	p("  Format: %s\n", config.Logging.Format)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !viper.IsSet(key) {
		return fmt.Errorf("key not found: %s", key)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", key, viper.Get(key))
	return err
}

func exampleReports() string {
	return heredoc.Doc(`
		# chartkit report catalogue
		reports:
		  - id: monthly-sales
		    name: Monthly Sales
		    description: Sales by month
		    default_chart_type: bar
		    recommended_charts: [bar, line, area]
		    dataset:
		      - {month: Jan, sales: 120, region: north}
		      - {month: Feb, sales: 95, region: north}
		      - {month: Mar, sales: 143, region: south}
		    default_config:
		      x_field: month
		      y_field: sales
		    required_fields: [month, sales]
		    numeric_fields: [sales]
		    kpis:
		      - id: total-sales
		        name: Total Sales
		        type: number
		        calculation: {op: sum, field: sales}

		  # File sources resolve relative to this file:
		  # - id: orders
		  #   name: Orders
		  #   source: {type: csv, path: orders.csv}
		  #   default_config: {x_field: status, y_field: total}
		  #   refresh: "*/15 * * * *"
	`)
}
