// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package datasource

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/teradata-labs/chartkit/internal/sqlitedriver"
	"github.com/teradata-labs/chartkit/pkg/dataprep"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func load(t *testing.T, f *Factory, cfg Config) *Frame {
	t.Helper()
	p, err := f.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	frame, err := p.Load(context.Background())
	require.NoError(t, err)
	return frame
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"static", Config{Type: TypeStatic}, false},
		{"csv without path", Config{Type: TypeCSV}, true},
		{"csv bad delimiter", Config{Type: TypeCSV, Path: "a.csv", Delimiter: ";;"}, true},
		{"sql missing query", Config{Type: TypeSQL, Driver: "sqlite3", DSN: "x"}, true},
		{"sql unknown driver", Config{Type: TypeSQL, Driver: "oracle", DSN: "x", Query: "q"}, true},
		{"http without url", Config{Type: TypeHTTP}, true},
		{"unknown type", Config{Type: "ftp"}, true},
		{"case insensitive", Config{Type: "JSON", Path: "a.json"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	_, err := NewFactory().New(Config{Type: "ftp"})
	assert.ErrorIs(t, err, ErrUnsupportedSource)
	assert.ErrorIs(t, Config{Type: TypeSQL, Driver: "oracle", DSN: "x", Query: "q"}.Validate(), ErrUnsupportedSource)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "csv:data/sales.csv", Config{Type: TypeCSV, Path: "data/sales.csv"}.Describe())
	assert.Equal(t, "sql:postgres", Config{Type: TypeSQL, Driver: "postgres", DSN: "postgres://user:secret@db/x"}.Describe())
	assert.Equal(t, "http:https://api.example.com/v1/sales", Config{Type: TypeHTTP, BaseURL: "https://api.example.com", Endpoint: "/v1/sales"}.Describe())
}

func TestStaticProvider(t *testing.T) {
	rows := []map[string]interface{}{{"b": 1, "a": 2}, {"c": 3, "a": 4}}
	frame := load(t, NewFactory(), Config{Type: TypeStatic, Rows: rows})

	assert.Equal(t, []string{"a", "b", "c"}, frame.Columns)
	require.Equal(t, 2, frame.Len())

	// Loads hand out copies.
	frame.Rows[0]["a"] = 99
	again := load(t, NewFactory(), Config{Type: TypeStatic, Rows: rows})
	assert.Equal(t, 2, again.Rows[0]["a"])
}

func TestJSONFileProvider(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "array.json", `[{"month":"Jan","sales":10},{"month":"Feb","sales":20},3]`)
	writeFile(t, dir, "wrapped.json", `{"result":[{"month":"Mar","sales":30}]}`)
	writeFile(t, dir, "scalar.json", `42`)

	f := NewFactory(WithBaseDir(dir))

	frame := load(t, f, Config{Type: TypeJSON, Path: "array.json"})
	require.Equal(t, 2, frame.Len())
	assert.Equal(t, "Jan", frame.Rows[0]["month"])
	assert.Equal(t, 10.0, frame.Rows[0]["sales"])

	capped := load(t, f, Config{Type: TypeJSON, Path: "array.json", MaxRows: 1})
	assert.Equal(t, 1, capped.Len())

	wrapped := load(t, f, Config{Type: TypeJSON, Path: "wrapped.json"})
	assert.Equal(t, "Mar", wrapped.Rows[0]["month"])

	p, err := f.New(Config{Type: TypeJSON, Path: "scalar.json"})
	require.NoError(t, err)
	_, err = p.Load(context.Background())
	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, TypeJSON, srcErr.Source)
	assert.Equal(t, "decode", srcErr.Op)

	p, err = f.New(Config{Type: TypeJSON, Path: "missing.json"})
	require.NoError(t, err)
	_, err = p.Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCSVProvider(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sales.csv", "\ufeffmonth,sales,,sales\nJan,10,x,1\nFeb,20\n")
	writeFile(t, dir, "semi.csv", "a;b\n1;2\n")
	writeFile(t, dir, "empty.csv", "")

	f := NewFactory(WithBaseDir(dir))

	frame := load(t, f, Config{Type: TypeCSV, Path: "sales.csv"})
	assert.Equal(t, []string{"month", "sales", "column_3", "sales_2"}, frame.Columns)
	require.Equal(t, 2, frame.Len())
	assert.Equal(t, dataprep.Record{"month": "Jan", "sales": "10", "column_3": "x", "sales_2": "1"}, frame.Rows[0])
	assert.Equal(t, dataprep.Record{"month": "Feb", "sales": "20"}, frame.Rows[1])

	capped := load(t, f, Config{Type: TypeCSV, Path: "sales.csv", MaxRows: 1})
	assert.Equal(t, 1, capped.Len())

	semi := load(t, f, Config{Type: TypeCSV, Path: "semi.csv", Delimiter: ";"})
	assert.Equal(t, "2", semi.Rows[0]["b"])

	empty := load(t, f, Config{Type: TypeCSV, Path: "empty.csv"})
	assert.Equal(t, 0, empty.Len())
}

func TestXLSXProvider(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sales.xlsx")

	book := excelize.NewFile()
	require.NoError(t, book.SetSheetRow("Sheet1", "A1", &[]interface{}{"month", "sales"}))
	require.NoError(t, book.SetSheetRow("Sheet1", "A2", &[]interface{}{"Jan", 10}))
	require.NoError(t, book.SetSheetRow("Sheet1", "A3", &[]interface{}{"Feb", 20}))
	_, err := book.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, book.SetSheetRow("Other", "A1", &[]interface{}{"k"}))
	require.NoError(t, book.SetSheetRow("Other", "A2", &[]interface{}{"v"}))
	require.NoError(t, book.SaveAs(path))
	require.NoError(t, book.Close())

	f := NewFactory()
	frame := load(t, f, Config{Type: TypeXLSX, Path: path})
	assert.Equal(t, []string{"month", "sales"}, frame.Columns)
	require.Equal(t, 2, frame.Len())
	assert.Equal(t, dataprep.Record{"month": "Jan", "sales": "10"}, frame.Rows[0])

	other := load(t, f, Config{Type: TypeXLSX, Path: path, Sheet: "Other"})
	assert.Equal(t, "v", other.Rows[0]["k"])

	p, err := f.New(Config{Type: TypeXLSX, Path: path, Sheet: "Nope"})
	require.NoError(t, err)
	_, err = p.Load(context.Background())
	assert.Error(t, err)
}

func TestSQLProvider(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "sales.db")
	db, err := sql.Open(sqlitedriver.DriverName, dsn)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE sales (month TEXT, region TEXT, amount REAL)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO sales VALUES ('Jan','north',10), ('Jan','south',5.5), ('Feb','north',20)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	frame := load(t, NewFactory(), Config{
		Type:   TypeSQL,
		Driver: "sqlite",
		DSN:    dsn,
		Query:  "SELECT month, SUM(amount) AS total FROM sales GROUP BY month ORDER BY month",
	})
	assert.Equal(t, []string{"month", "total"}, frame.Columns)
	require.Equal(t, 2, frame.Len())
	assert.Equal(t, "Feb", frame.Rows[0]["month"])
	assert.Equal(t, 20.0, frame.Rows[0]["total"])
	assert.Equal(t, 15.5, frame.Rows[1]["total"])

	p, err := NewFactory().New(Config{Type: TypeSQL, Driver: "sqlite3", DSN: dsn, Query: "SELECT * FROM nope"})
	require.NoError(t, err)
	defer p.Close()
	_, err = p.Load(context.Background())
	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, "query", srcErr.Op)
}

func TestDriverName(t *testing.T) {
	for in, want := range map[string]string{
		"sqlite": "sqlite3", "SQLite3": "sqlite3", "postgresql": "postgres", "pgx": "pgx", "mysql": "mysql",
	} {
		got, err := driverName(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	for _, name := range []string{"postgres", "pgx", "mysql", "sqlite3"} {
		assert.Contains(t, sql.Drivers(), name)
	}
}

func TestHTTPProvider(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		switch r.URL.Path {
		case "/sales":
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			assert.Equal(t, "2026", r.URL.Query().Get("year"))
			_, _ = w.Write([]byte(`{"data":[{"month":"Jan","sales":10}]}`))
		case "/rows":
			_, _ = w.Write([]byte(`{"rows":[{"a":1}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cache, err := NewResponseCache(8, time.Minute)
	require.NoError(t, err)
	defer cache.Close()
	f := NewFactory(WithCache(cache), WithHTTPClient(srv.Client()))

	cfg := Config{
		Type:     TypeHTTP,
		BaseURL:  srv.URL,
		Endpoint: "/sales",
		Params:   map[string]string{"year": "2026"},
		Auth:     &AuthConfig{Type: "bearer", Token: "tok"},
		Cache:    true,
	}

	frame := load(t, f, cfg)
	require.Equal(t, 1, frame.Len())
	assert.Equal(t, "Jan", frame.Rows[0]["month"])

	load(t, f, cfg)
	assert.Equal(t, int32(1), requests.Load(), "second load should be served from cache")
	assert.Equal(t, uint64(1), cache.Stats().Hits)

	cfg.Cache = false
	load(t, f, cfg)
	assert.Equal(t, int32(2), requests.Load())

	keyed := load(t, f, Config{Type: TypeHTTP, BaseURL: srv.URL, Endpoint: "/rows", DataKey: "rows"})
	assert.Equal(t, 1.0, keyed.Rows[0]["a"])

	for _, bad := range []Config{
		{Type: TypeHTTP, BaseURL: srv.URL, Endpoint: "/sales"},
		{Type: TypeHTTP, BaseURL: srv.URL, Endpoint: "/missing"},
	} {
		p, err := f.New(bad)
		require.NoError(t, err)
		_, err = p.Load(context.Background())
		var srcErr *SourceError
		require.ErrorAs(t, err, &srcErr)
		assert.True(t, strings.HasPrefix(srcErr.Err.Error(), "Error: 4"), srcErr.Err.Error())
	}
}

func TestHTTPProvider_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	p, err := NewFactory(WithHTTPClient(srv.Client())).New(Config{Type: TypeHTTP, BaseURL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Load(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}
