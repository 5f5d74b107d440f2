// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package server exposes a dashboard over a REST API with server-sent events.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"github.com/r3labs/sse/v2"
	"go.uber.org/zap"

	"github.com/teradata-labs/chartkit/pkg/dashboard"
	"github.com/teradata-labs/chartkit/pkg/visualization"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// CORSConfig holds CORS configuration
type CORSConfig struct {
	Enabled          bool
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig returns a permissive CORS configuration
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		Enabled:          true,
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader},
		ExposedHeaders:   []string{"Content-Length", "Content-Type", RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           86400, // 24 hours
	}
}

// Validate reports origins gin-contrib/cors would reject at startup.
func (c CORSConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	for _, origin := range c.AllowedOrigins {
		if origin == "*" {
			continue
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("invalid CORS origin %q: must be \"*\" or start with http:// or https://", origin)
		}
	}
	return nil
}

func (c CORSConfig) middleware() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     c.AllowedMethods,
		AllowHeaders:     c.AllowedHeaders,
		ExposeHeaders:    c.ExposedHeaders,
		AllowCredentials: c.AllowCredentials,
		MaxAge:           time.Duration(c.MaxAge) * time.Second,
	}
	for _, origin := range c.AllowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowOrigins = nil
			break
		}
		cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowAllOrigins = true
	}
	return cors.New(cfg)
}

// Config configures a Server.
type Config struct {
	Addr string
	CORS CORSConfig
	// Gzip compresses responses other than the event stream.
	Gzip bool
	// Style themes charts derived through /api/charts/derive.
	Style *visualization.StyleConfig
}

// DefaultConfig returns the configuration used by NewServer callers that
// pass a zero Config.
func DefaultConfig() Config {
	return Config{
		Addr: DefaultAddr,
		CORS: DefaultCORSConfig(),
		Gzip: true,
	}
}

// Server serves a dashboard over HTTP.
type Server struct {
	dash       *dashboard.Dashboard
	engine     *visualization.EChartsGenerator
	router     *gin.Engine
	events     *sse.Server
	httpServer *http.Server
	logger     *zap.Logger
	cfg        Config
}

// NewServer builds the router and the underlying http.Server. The server
// does not listen until Start.
func NewServer(dash *dashboard.Dashboard, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	events := sse.New()
	events.AutoReplay = false
	events.CreateStream(eventsStream)

	s := &Server{
		dash:   dash,
		engine: visualization.NewEChartsGenerator(cfg.Style).WithLogger(logger),
		events: events,
		logger: logger,
		cfg:    cfg,
	}
	s.router = s.routes()
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // No timeout for SSE
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler returns the root handler. Responses are gzip-compressed when
// enabled, except for the event stream which must flush unbuffered.
func (s *Server) Handler() http.Handler {
	if !s.cfg.Gzip {
		return s.router
	}
	gz := gzhttp.GzipHandler(s.router)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == eventsPath {
			s.router.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.cfg.Addr
}

// Start forwards dashboard events to SSE subscribers and serves until Stop
// is called. It returns nil after a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	go s.ForwardEvents(ctx)

	s.logger.Info("HTTP server listening", zap.String("addr", s.cfg.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server and closes event streams.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	s.events.Close()
	return s.httpServer.Shutdown(ctx)
}
