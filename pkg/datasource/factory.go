// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package datasource

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teradata-labs/chartkit/internal/log"
	"github.com/teradata-labs/chartkit/pkg/config"
	"github.com/teradata-labs/chartkit/pkg/dataprep"
)

// Factory builds providers from configs. The response cache, when set, is
// shared by every HTTP provider the factory creates.
type Factory struct {
	baseDir string
	cache   *ResponseCache
	client  *http.Client
	logger  *zap.Logger
}

// Option configures a Factory.
type Option func(*Factory)

// WithBaseDir resolves relative file paths against dir.
func WithBaseDir(dir string) Option {
	return func(f *Factory) { f.baseDir = dir }
}

// WithCache enables response caching for HTTP sources that ask for it.
func WithCache(cache *ResponseCache) Option {
	return func(f *Factory) { f.cache = cache }
}

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Factory) { f.client = client }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Factory) { f.logger = logger }
}

// NewFactory creates a provider factory.
func NewFactory(opts ...Option) *Factory {
	f := &Factory{}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = log.Logger()
	}
	return f
}

// Cache returns the factory's response cache, which may be nil.
func (f *Factory) Cache() *ResponseCache {
	return f.cache
}

// New builds the provider for cfg.
func (f *Factory) New(cfg Config) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch strings.ToLower(cfg.Type) {
	case TypeStatic:
		return &staticProvider{rows: dataprep.Records(cfg.Rows)}, nil
	case TypeJSON:
		return &jsonFileProvider{path: f.resolve(cfg.Path), maxRows: cfg.MaxRows}, nil
	case TypeCSV:
		return newCSVProvider(f.resolve(cfg.Path), cfg), nil
	case TypeXLSX:
		return newXLSXProvider(f.resolve(cfg.Path), cfg), nil
	case TypeSQL:
		return newSQLProvider(cfg, f.logger)
	default: // TypeHTTP
		return newHTTPProvider(cfg, f.httpClient(cfg), f.cache, f.logger), nil
	}
}

func (f *Factory) resolve(path string) string {
	if f.baseDir != "" && !filepath.IsAbs(path) && !strings.HasPrefix(path, "~/") {
		return filepath.Join(f.baseDir, path)
	}
	return config.ExpandPath(path)
}

func (f *Factory) httpClient(cfg Config) *http.Client {
	if f.client != nil {
		return f.client
	}
	timeout := DefaultHTTPTimeoutSeconds
	if cfg.TimeoutSeconds > 0 {
		timeout = cfg.TimeoutSeconds
	}
	return &http.Client{Timeout: time.Duration(timeout) * time.Second}
}
