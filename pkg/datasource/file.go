// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package datasource

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/teradata-labs/chartkit/pkg/dataprep"
)

// MaxFileSize bounds the files read by file sources (100MB).
const MaxFileSize = 100 * 1024 * 1024

func openBounded(path string) (*os.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), MaxFileSize)
	}
	return os.Open(path) // #nosec G304 -- path comes from report configuration
}

// jsonFileProvider reads a JSON array, or an object wrapping one.
type jsonFileProvider struct {
	path    string
	maxRows int
}

func (p *jsonFileProvider) Load(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := openBounded(p.path)
	if err != nil {
		return nil, sourceErr(TypeJSON, "open", err)
	}
	defer func() { _ = f.Close() }()

	body, err := io.ReadAll(f)
	if err != nil {
		return nil, sourceErr(TypeJSON, "read", err)
	}
	rows, err := decodeRecords(body, "")
	if err != nil {
		return nil, sourceErr(TypeJSON, "decode", err)
	}
	return frameFromRecords(capRows(rows, p.maxRows)), nil
}

func (p *jsonFileProvider) Close() error { return nil }

// decodeRecords accepts a JSON array of objects or an object holding one
// under dataKey (or data, result, results, items). Non-object elements are
// kept so validation can report them.
func decodeRecords(body []byte, dataKey string) ([]dataprep.Record, error) {
	var raw interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	items, ok := raw.([]interface{})
	if !ok {
		obj, isObj := raw.(map[string]interface{})
		if !isObj {
			return nil, fmt.Errorf("expected a JSON array or object, got %T", raw)
		}
		keys := []string{"data", "result", "results", "items"}
		if dataKey != "" {
			keys = []string{dataKey}
		}
		for _, k := range keys {
			if items, ok = obj[k].([]interface{}); ok {
				break
			}
		}
		if !ok {
			return nil, fmt.Errorf("no array found under %s", strings.Join(keys, ", "))
		}
	}
	return dataprep.Validate(items, nil), nil
}

// csvProvider reads a delimited file with a header row. Cells stay strings;
// numeric coercion is left to data preparation.
type csvProvider struct {
	path      string
	delimiter rune
	maxRows   int
}

func newCSVProvider(path string, cfg Config) *csvProvider {
	p := &csvProvider{path: path, delimiter: ',', maxRows: cfg.MaxRows}
	if cfg.Delimiter != "" {
		p.delimiter = []rune(cfg.Delimiter)[0]
	}
	if p.maxRows <= 0 {
		p.maxRows = DefaultMaxRows
	}
	return p
}

func (p *csvProvider) Load(ctx context.Context) (*Frame, error) {
	f, err := openBounded(p.path)
	if err != nil {
		return nil, sourceErr(TypeCSV, "open", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.Comma = p.delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return frameFromRecords(nil), nil
	}
	if err != nil {
		return nil, sourceErr(TypeCSV, "read header", err)
	}
	header = uniqueHeaders(header)

	rows := make([]dataprep.Record, 0)
	for len(rows) < p.maxRows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, sourceErr(TypeCSV, "read", err)
		}
		rows = append(rows, rowRecord(header, line))
	}
	return &Frame{Columns: header, Rows: rows}, nil
}

func (p *csvProvider) Close() error { return nil }

// xlsxProvider reads one sheet with a header row.
type xlsxProvider struct {
	path    string
	sheet   string
	maxRows int
}

func newXLSXProvider(path string, cfg Config) *xlsxProvider {
	p := &xlsxProvider{path: path, sheet: cfg.Sheet, maxRows: cfg.MaxRows}
	if p.maxRows <= 0 {
		p.maxRows = DefaultMaxRows
	}
	return p
}

func (p *xlsxProvider) Load(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := excelize.OpenFile(p.path)
	if err != nil {
		return nil, sourceErr(TypeXLSX, "open", err)
	}
	defer func() { _ = file.Close() }()

	sheet := p.sheet
	if sheet == "" {
		sheets := file.GetSheetList()
		if len(sheets) == 0 {
			return frameFromRecords(nil), nil
		}
		sheet = sheets[0]
	}

	grid, err := file.GetRows(sheet)
	if err != nil {
		return nil, sourceErr(TypeXLSX, "read sheet "+sheet, err)
	}
	if len(grid) == 0 {
		return frameFromRecords(nil), nil
	}

	header := uniqueHeaders(grid[0])
	body := capRows(grid[1:], p.maxRows)
	rows := make([]dataprep.Record, 0, len(body))
	for _, line := range body {
		rows = append(rows, rowRecord(header, line))
	}
	return &Frame{Columns: header, Rows: rows}, nil
}

func (p *xlsxProvider) Close() error { return nil }

// rowRecord maps cells onto header names. Cells beyond the header are
// dropped; missing trailing cells leave the field absent.
func rowRecord(header, cells []string) dataprep.Record {
	rec := make(dataprep.Record, len(header))
	for i, name := range header {
		if i < len(cells) {
			rec[name] = cells[i]
		}
	}
	return rec
}

// uniqueHeaders names blank columns column_N and suffixes duplicates.
func uniqueHeaders(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		if n := seen[h]; n > 0 {
			seen[h] = n + 1
			h = fmt.Sprintf("%s_%d", h, n+1)
		} else {
			seen[h] = 1
		}
		out[i] = h
	}
	return out
}
