// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package datasource loads report records from inline rows, files, SQL
// databases and HTTP APIs.
package datasource

//go:generate mockgen -destination=mocks/mock_provider.go -package=mocks . Provider

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/teradata-labs/chartkit/pkg/dataprep"
)

// Source types understood by Factory.New.
const (
	TypeStatic = "static"
	TypeJSON   = "json"
	TypeCSV    = "csv"
	TypeXLSX   = "xlsx"
	TypeSQL    = "sql"
	TypeHTTP   = "http"
)

// SourceTypes lists the supported source types.
func SourceTypes() []string {
	return []string{TypeStatic, TypeJSON, TypeCSV, TypeXLSX, TypeSQL, TypeHTTP}
}

// ErrUnsupportedSource is returned for unknown source types and drivers.
var ErrUnsupportedSource = errors.New("unsupported data source")

// SourceError wraps a failure to load from a source.
type SourceError struct {
	Source string
	Op     string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s source: %s: %v", e.Source, e.Op, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

func sourceErr(source, op string, err error) error {
	return &SourceError{Source: source, Op: op, Err: err}
}

// Frame is a loaded table. Columns are in source order when the source has
// one (CSV header, SQL result, spreadsheet header) and in first-seen,
// per-record sorted order otherwise.
type Frame struct {
	Columns []string          `json:"columns"`
	Rows    []dataprep.Record `json:"rows"`
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

// Provider loads a frame from one configured source.
type Provider interface {
	Load(ctx context.Context) (*Frame, error)
	Close() error
}

// frameFromRecords builds a frame, deriving the column list from the rows.
func frameFromRecords(rows []dataprep.Record) *Frame {
	seen := make(map[string]bool)
	var columns []string
	for _, rec := range rows {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			if !seen[k] {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			seen[k] = true
		}
		columns = append(columns, keys...)
	}
	if columns == nil {
		columns = []string{}
	}
	if rows == nil {
		rows = []dataprep.Record{}
	}
	return &Frame{Columns: columns, Rows: rows}
}

// staticProvider serves inline rows.
type staticProvider struct {
	rows []dataprep.Record
}

func (p *staticProvider) Load(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows := make([]dataprep.Record, len(p.rows))
	for i, rec := range p.rows {
		rows[i] = rec.Clone()
	}
	return frameFromRecords(rows), nil
}

func (p *staticProvider) Close() error { return nil }

func capRows[T any](rows []T, maxRows int) []T {
	if maxRows > 0 && len(rows) > maxRows {
		return slices.Clip(rows[:maxRows])
	}
	return rows
}
