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
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/teradata-labs/chartkit/internal/log"
	"github.com/teradata-labs/chartkit/pkg/dashboard"
	"github.com/teradata-labs/chartkit/pkg/server"
	"github.com/teradata-labs/chartkit/pkg/visualization"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve report dashboards over HTTP",
	Long: `Start the HTTP server: REST endpoints for reports, charts and KPIs plus
server-sent events on /api/events. The report catalogue is reloaded when the
file changes, and reports with a refresh schedule are refreshed by cron.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("host", "0.0.0.0", "HTTP server host")
	serveCmd.Flags().Int("port", 8080, "HTTP server port")
	serveCmd.Flags().Bool("watch", true, "reload the report catalogue when it changes")
	serveCmd.Flags().Bool("schedule", true, "run scheduled report refreshes")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("reports.watch", serveCmd.Flags().Lookup("watch"))
	_ = viper.BindPFlag("reports.schedule", serveCmd.Flags().Lookup("schedule"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger := log.Logger()

	dash, cleanup, err := openDashboard(config, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.Reports.Watch {
		watcher, err := dashboard.NewWatcher(dash, dashboard.WatcherConfig{
			Path:     config.Reports.Path,
			Debounce: config.Reports.Debounce,
			Logger:   logger,
		})
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("failed to watch reports: %w", err)
		}
		defer func() {
			if err := watcher.Stop(); err != nil {
				logger.Warn("Error stopping report watcher", zap.Error(err))
			}
		}()
	}

	var scheduler *dashboard.Scheduler
	if config.Reports.Schedule {
		scheduler = dashboard.NewScheduler(dash, logger)
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	srv := server.NewServer(dash, server.Config{
		Addr:  config.Addr(),
		CORS:  config.CORS(),
		Gzip:  config.Server.Gzip,
		Style: visualization.GetThemeVariant(config.Theme),
	}, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	logger.Info("chartkit ready",
		zap.String("addr", srv.Addr()),
		zap.String("reports", config.Reports.Path),
		zap.Int("report_count", dash.Registry().Len()))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if scheduler != nil {
		if err := scheduler.Stop(shutdownCtx); err != nil {
			logger.Warn("Error stopping scheduler", zap.Error(err))
		}
	}
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Warn("Error stopping HTTP server", zap.Error(err))
	} else {
		logger.Info("HTTP server stopped")
	}
	return <-errCh
}
