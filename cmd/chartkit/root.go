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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/teradata-labs/chartkit/internal/log"
	"github.com/teradata-labs/chartkit/internal/version"
	chartconfig "github.com/teradata-labs/chartkit/pkg/config"
	"github.com/teradata-labs/chartkit/pkg/dashboard"
	"github.com/teradata-labs/chartkit/pkg/datasource"
	"github.com/teradata-labs/chartkit/pkg/visualization"
)

var (
	cfgFile string
	config  *Config
	pretty  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:     "chartkit",
	Short:   "chartkit - chart configuration engine and report dashboard",
	Long:    `chartkit turns tabular records into ECharts option objects, serves report dashboards over HTTP, and renders reports to JSON or HTML.`,
	Version: version.Current().String(),

	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.SetHelpTemplate(`{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}

{{end}}{{if or .Runnable .HasSubCommands}}{{.UsageString}}{{end}}

Quick Start:
  1. Write a config:    chartkit config init
  2. Define reports in: $CHARTKIT_DATA_DIR/reports.yaml
  3. Start the server:  chartkit serve

Support:
  GitHub: https://github.com/teradata-labs/chartkit/issues
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $CHARTKIT_DATA_DIR/chartkit.yaml)")
	rootCmd.PersistentFlags().String("reports", chartconfig.DefaultReportsPath(), "report catalogue file")
	rootCmd.PersistentFlags().String("theme", "default", "chart theme (default, dark, light, minimal)")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "indent JSON output (default when stdout is a terminal)")

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")

	_ = viper.BindPFlag("reports.path", rootCmd.PersistentFlags().Lookup("reports"))
	_ = viper.BindPFlag("theme", rootCmd.PersistentFlags().Lookup("theme"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if err := loadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	var err error
	config, err = LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if _, err := log.Configure(config.Logging.Level, config.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logging: %v\n", err)
		os.Exit(1)
	}
}

// openDashboard loads the report catalogue and wires the data source
// factory, response cache and theme. The returned func releases them.
func openDashboard(cfg *Config, logger *zap.Logger) (*dashboard.Dashboard, func(), error) {
	f, err := dashboard.LoadFile(cfg.Reports.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load reports: %w", err)
	}

	cache, err := datasource.NewResponseCache(cfg.Sources.CacheEntries, cfg.Sources.CacheTTL)
	if err != nil {
		return nil, nil, err
	}

	baseDir := cfg.Sources.BaseDir
	if baseDir == "" {
		baseDir = filepath.Dir(cfg.Reports.Path)
	}
	factory := datasource.NewFactory(
		datasource.WithBaseDir(baseDir),
		datasource.WithCache(cache),
		datasource.WithLogger(logger),
	)

	dash := dashboard.New(dashboard.NewRegistry(f),
		dashboard.WithProviderFactory(factory),
		dashboard.WithResponseCache(cache),
		dashboard.WithStyle(visualization.GetThemeVariant(cfg.Theme)),
		dashboard.WithConcurrency(cfg.Reports.Concurrency),
		dashboard.WithLogger(logger),
	)
	cleanup := func() {
		dash.Close()
		_ = cache.Close()
	}
	return dash, cleanup, nil
}

// writeJSON encodes v to w, indented when --pretty is set or w is a
// terminal.
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	if pretty || isTerminal(w) {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
