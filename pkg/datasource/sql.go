// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teradata-labs/chartkit/internal/sqlitedriver"
	"github.com/teradata-labs/chartkit/pkg/dataprep"

	// SQL drivers
	_ "github.com/go-sql-driver/mysql" // mysql
	_ "github.com/jackc/pgx/v5/stdlib" // pgx
	_ "github.com/lib/pq"              // postgres
)

// driverName maps a configured driver onto a registered database/sql name.
func driverName(driver string) (string, error) {
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		return sqlitedriver.DriverName, nil
	case "postgres", "postgresql":
		return "postgres", nil
	case "pgx":
		return "pgx", nil
	case "mysql":
		return "mysql", nil
	default:
		return "", fmt.Errorf("%w: driver %q (supported: sqlite3, postgres, pgx, mysql)", ErrUnsupportedSource, driver)
	}
}

// sqlProvider runs one SELECT per load on a pooled connection.
type sqlProvider struct {
	db     *sql.DB
	driver string
	query  string
	logger *zap.Logger
}

func newSQLProvider(cfg Config, logger *zap.Logger) (*sqlProvider, error) {
	driver, err := driverName(cfg.Driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, sourceErr(TypeSQL, "open", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	return &sqlProvider{db: db, driver: driver, query: cfg.Query, logger: logger}, nil
}

func (p *sqlProvider) Load(ctx context.Context) (*Frame, error) {
	start := time.Now()
	rows, err := p.db.QueryContext(ctx, p.query)
	if err != nil {
		return nil, sourceErr(TypeSQL, "query", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, sourceErr(TypeSQL, "columns", err)
	}

	records := make([]dataprep.Record, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range columns {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, sourceErr(TypeSQL, "scan", err)
		}

		rec := make(dataprep.Record, len(columns))
		for i, col := range columns {
			rec[col] = sqlValue(values[i])
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, sourceErr(TypeSQL, "rows", err)
	}

	p.logger.Debug("sql source loaded",
		zap.String("driver", p.driver),
		zap.Int("rows", len(records)),
		zap.Duration("duration", time.Since(start)))
	return &Frame{Columns: columns, Rows: records}, nil
}

// sqlValue converts driver values to record values.
func sqlValue(v interface{}) interface{} {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return val
	}
}

func (p *sqlProvider) Close() error {
	return p.db.Close()
}
