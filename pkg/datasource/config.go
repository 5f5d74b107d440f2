// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package datasource

import (
	"fmt"
	"strings"
)

const (
	// DefaultMaxRows caps file sources when no limit is configured.
	DefaultMaxRows = 10000
	// DefaultHTTPTimeoutSeconds applies to HTTP sources without a timeout.
	DefaultHTTPTimeoutSeconds = 30
)

// AuthConfig configures HTTP authentication.
type AuthConfig struct {
	Type       string `json:"type" yaml:"type"` // bearer, basic or apikey
	Token      string `json:"token,omitempty" yaml:"token,omitempty"`
	Username   string `json:"username,omitempty" yaml:"username,omitempty"`
	Password   string `json:"password,omitempty" yaml:"password,omitempty"`
	HeaderName string `json:"header_name,omitempty" yaml:"header_name,omitempty"`
}

// Config describes one data source. Which fields apply depends on Type.
type Config struct {
	Type string `json:"type" yaml:"type"`

	// static
	Rows []map[string]interface{} `json:"rows,omitempty" yaml:"rows,omitempty"`

	// json, csv, xlsx
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
	Sheet     string `json:"sheet,omitempty" yaml:"sheet,omitempty"`
	Delimiter string `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
	MaxRows   int    `json:"max_rows,omitempty" yaml:"max_rows,omitempty"`

	// sql
	Driver       string `json:"driver,omitempty" yaml:"driver,omitempty"`
	DSN          string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	Query        string `json:"query,omitempty" yaml:"query,omitempty"`
	MaxOpenConns int    `json:"max_open_conns,omitempty" yaml:"max_open_conns,omitempty"`

	// http
	BaseURL        string            `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Endpoint       string            `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Method         string            `json:"method,omitempty" yaml:"method,omitempty"`
	Params         map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	Headers        map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body           interface{}       `json:"body,omitempty" yaml:"body,omitempty"`
	Auth           *AuthConfig       `json:"auth,omitempty" yaml:"auth,omitempty"`
	TimeoutSeconds int               `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
	// DataKey names the array inside an object response; by default data,
	// result, results and items are tried in that order.
	DataKey string `json:"data_key,omitempty" yaml:"data_key,omitempty"`
	Cache   bool   `json:"cache,omitempty" yaml:"cache,omitempty"`
}

// Validate checks that the fields required by Type are present.
func (c Config) Validate() error {
	switch strings.ToLower(c.Type) {
	case TypeStatic:
		return nil
	case TypeJSON, TypeCSV, TypeXLSX:
		if c.Path == "" {
			return fmt.Errorf("%s source requires path", c.Type)
		}
		if c.Delimiter != "" && len([]rune(c.Delimiter)) != 1 {
			return fmt.Errorf("delimiter must be a single character")
		}
		return nil
	case TypeSQL:
		if c.Driver == "" || c.DSN == "" || c.Query == "" {
			return fmt.Errorf("sql source requires driver, dsn and query")
		}
		if _, err := driverName(c.Driver); err != nil {
			return err
		}
		return nil
	case TypeHTTP:
		if c.BaseURL == "" {
			return fmt.Errorf("http source requires base_url")
		}
		return nil
	default:
		return fmt.Errorf("%w: type %q (supported: %s)", ErrUnsupportedSource, c.Type, strings.Join(SourceTypes(), ", "))
	}
}

// Describe is a short human-readable label for metadata and logs. It never
// includes credentials.
func (c Config) Describe() string {
	switch strings.ToLower(c.Type) {
	case TypeJSON, TypeCSV, TypeXLSX:
		return c.Type + ":" + c.Path
	case TypeSQL:
		return "sql:" + c.Driver
	case TypeHTTP:
		return "http:" + c.BaseURL + c.Endpoint
	default:
		return c.Type
	}
}
