// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package dashboard turns report definitions into chart specifications.
//
// A Dashboard owns a Registry of reports. Rendering a report loads its
// records (inline dataset, then the report's source, then the global data
// function, then the catalogue's default data), prepares them with the
// report's validation options, derives the chart and evaluates its KPIs.
package dashboard

//go:generate mockgen -destination=mocks/mock_provider_factory.go -package=mocks . ProviderFactory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teradata-labs/chartkit/internal/pubsub"
	"github.com/teradata-labs/chartkit/pkg/dataprep"
	"github.com/teradata-labs/chartkit/pkg/datasource"
	"github.com/teradata-labs/chartkit/pkg/kpi"
	"github.com/teradata-labs/chartkit/pkg/visualization"
)

const (
	// WarningNoData is reported when a report has no records.
	WarningNoData = "No data available for this report."

	// DefaultRenderConcurrency bounds RenderAll.
	DefaultRenderConcurrency = 4
)

// Event types published by a Dashboard.
const (
	EventReportLoaded    pubsub.EventType = "report.loaded"
	EventReportReloaded  pubsub.EventType = "report.reloaded"
	EventReportRefreshed pubsub.EventType = "report.refreshed"
)

// Event is the payload of dashboard events.
type Event struct {
	ReportID string    `json:"report_id"`
	Rows     int       `json:"rows,omitempty"`
	Message  string    `json:"message,omitempty"`
	Time     time.Time `json:"time"`
}

// ProviderFactory builds data source providers. *datasource.Factory
// implements it.
type ProviderFactory interface {
	New(cfg datasource.Config) (datasource.Provider, error)
}

// DataFunc loads records for a report that has neither a dataset nor a
// source.
type DataFunc func(ctx context.Context, reportID string) ([]dataprep.Record, error)

// Selection overrides a report's defaults. Empty fields keep the default.
type Selection struct {
	ChartType   string `json:"chart_type,omitempty"`
	XField      string `json:"x_field,omitempty"`
	YField      string `json:"y_field,omitempty"`
	SeriesField string `json:"series_field,omitempty"`
}

// Result is a rendered report.
type Result struct {
	ReportID          string                   `json:"report_id"`
	Name              string                   `json:"name"`
	Description       string                   `json:"description,omitempty"`
	ChartType         string                   `json:"chart_type"`
	XField            string                   `json:"x_field"`
	YField            string                   `json:"y_field"`
	SeriesField       string                   `json:"series_field,omitempty"`
	Spec              *visualization.ChartSpec `json:"spec"`
	Fields            []string                 `json:"fields"`
	Warning           string                   `json:"warning,omitempty"`
	TotalRows         int                      `json:"total_rows"`
	ValidRows         int                      `json:"valid_rows"`
	RecommendedCharts []string                 `json:"recommended_charts"`
	KPIs              []*kpi.Result            `json:"kpis,omitempty"`
	Source            string                   `json:"source"`
	RenderedAt        time.Time                `json:"rendered_at"`
}

// Dashboard renders reports from a Registry.
type Dashboard struct {
	registry    *Registry
	factory     ProviderFactory
	cache       *datasource.ResponseCache
	dataFunc    DataFunc
	style       *visualization.StyleConfig
	engine      *visualization.EChartsGenerator
	selector    *visualization.ChartSelector
	events      *pubsub.Broker[Event]
	concurrency int
	logger      *zap.Logger
	now         func() time.Time
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithProviderFactory sets the factory used for report sources.
func WithProviderFactory(f ProviderFactory) Option {
	return func(d *Dashboard) { d.factory = f }
}

// WithResponseCache sets the cache that Refresh invalidates. It should be
// the cache the provider factory was built with.
func WithResponseCache(c *datasource.ResponseCache) Option {
	return func(d *Dashboard) { d.cache = c }
}

// WithDataFunc sets the global data function.
func WithDataFunc(fn DataFunc) Option {
	return func(d *Dashboard) { d.dataFunc = fn }
}

// WithStyle sets the chart style.
func WithStyle(style *visualization.StyleConfig) Option {
	return func(d *Dashboard) { d.style = style }
}

// WithConcurrency bounds the number of reports RenderAll renders at once.
func WithConcurrency(n int) Option {
	return func(d *Dashboard) { d.concurrency = n }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dashboard) { d.logger = logger }
}

// New creates a dashboard over registry.
func New(registry *Registry, opts ...Option) *Dashboard {
	d := &Dashboard{
		registry:    registry,
		events:      pubsub.NewBroker[Event](),
		concurrency: DefaultRenderConcurrency,
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.engine = visualization.NewEChartsGenerator(d.style).WithLogger(d.logger)
	d.selector = visualization.NewChartSelector(d.style)
	if d.factory == nil {
		d.factory = datasource.NewFactory(datasource.WithCache(d.cache), datasource.WithLogger(d.logger))
	}
	if d.concurrency <= 0 {
		d.concurrency = DefaultRenderConcurrency
	}
	return d
}

// Registry returns the report registry.
func (d *Dashboard) Registry() *Registry {
	return d.registry
}

// Subscribe returns dashboard events until ctx is done.
func (d *Dashboard) Subscribe(ctx context.Context) <-chan pubsub.Event[Event] {
	return d.events.Subscribe(ctx)
}

// Close shuts down the event broker.
func (d *Dashboard) Close() {
	d.events.Shutdown()
}

func (d *Dashboard) publish(t pubsub.EventType, id string, rows int, msg string) {
	d.events.Publish(t, Event{ReportID: id, Rows: rows, Message: msg, Time: d.now()})
}

// Reload installs a new catalogue and announces every affected report.
func (d *Dashboard) Reload(f *File) {
	for _, id := range d.registry.Replace(f) {
		d.publish(EventReportReloaded, id, 0, "")
	}
	d.logger.Info("Reports reloaded", zap.Int("reports", d.registry.Len()))
}

// LoadData returns the raw records for a report and a label naming where
// they came from.
func (d *Dashboard) LoadData(ctx context.Context, r *Report) ([]dataprep.Record, string, error) {
	switch {
	case len(r.Dataset) > 0:
		return dataprep.Records(r.Dataset), "dataset", nil

	case r.Source != nil:
		p, err := d.factory.New(*r.Source)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load data for report %s: %w", r.ID, err)
		}
		defer func() { _ = p.Close() }()
		frame, err := p.Load(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load data for report %s: %w", r.ID, err)
		}
		return frame.Rows, r.Source.Describe(), nil

	case d.dataFunc != nil:
		rows, err := d.dataFunc(ctx, r.ID)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load data for report %s: %w", r.ID, err)
		}
		return rows, "provider", nil

	default:
		return d.registry.DefaultData(), "default", nil
	}
}

// Render loads, prepares and charts one report.
func (d *Dashboard) Render(ctx context.Context, id string, sel Selection) (*Result, error) {
	r, err := d.registry.Get(id)
	if err != nil {
		return nil, err
	}

	raw, source, err := d.LoadData(ctx, r)
	if err != nil {
		return nil, err
	}
	d.publish(EventReportLoaded, r.ID, len(raw), source)

	res := &Result{
		ReportID:    r.ID,
		Name:        r.Name,
		Description: r.Description,
		ChartType:   firstNonEmpty(sel.ChartType, r.ChartType()),
		XField:      firstNonEmpty(sel.XField, r.DefaultConfig.XField),
		YField:      firstNonEmpty(sel.YField, r.DefaultConfig.YField),
		SeriesField: firstNonEmpty(sel.SeriesField, r.DefaultConfig.SeriesField),
		Fields:      []string{},
		TotalRows:   len(raw),
		Source:      source,
		RenderedAt:  d.now(),
	}

	var cleaned []dataprep.Record
	if len(raw) == 0 {
		res.Warning = WarningNoData
		cleaned = []dataprep.Record{}
	} else {
		cleaned = dataprep.Prepare(raw, r.ValidationOptions())
		if dropped := len(raw) - len(cleaned); dropped > 0 {
			res.Warning = FilteredWarning(dropped)
		}
		if len(cleaned) > 0 {
			res.Fields = fieldNames(cleaned[0])
		}
	}
	res.ValidRows = len(cleaned)

	spec, err := d.engine.DeriveVariant(res.ChartType, d.params(r, res, cleaned))
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", r.ID, err)
	}
	res.Spec = spec

	res.RecommendedCharts = r.RecommendedCharts
	if len(res.RecommendedCharts) == 0 {
		res.RecommendedCharts = d.recommend(cleaned, res)
	}

	if len(r.KPIs) > 0 {
		if res.KPIs, err = kpi.EvaluateAll(r.KPIs, cleaned); err != nil {
			return nil, fmt.Errorf("report %s: %w", r.ID, err)
		}
	}

	d.logger.Debug("Rendered report",
		zap.String("report_id", r.ID),
		zap.String("chart_type", res.ChartType),
		zap.Int("rows", res.ValidRows),
		zap.String("source", source))
	return res, nil
}

func (d *Dashboard) params(r *Report, res *Result, data []dataprep.Record) visualization.Params {
	cfg := r.DefaultConfig
	kind := strings.ToLower(res.ChartType)
	return visualization.Params{
		Data:         data,
		XField:       res.XField,
		YField:       res.YField,
		SeriesField:  res.SeriesField,
		Aggregation:  visualization.Aggregation(cfg.AggregationType),
		SortData:     cfg.SortData,
		Limit:        cfg.Limit,
		Title:        firstNonEmpty(cfg.Title, fmt.Sprintf("%s by %s", res.YField, res.XField)),
		Subtitle:     cfg.Subtitle,
		ShowLegend:   visualization.Bool(true),
		ShowToolbox:  visualization.Bool(true),
		ShowDataZoom: visualization.Bool(cfg.ShowDataZoom || kind == "bar" || kind == "line"),
	}
}

func (d *Dashboard) recommend(data []dataprep.Record, res *Result) []string {
	recs := d.selector.Recommend(data, visualization.Selection{
		XField:      res.XField,
		YField:      res.YField,
		SeriesField: res.SeriesField,
	})
	out := make([]string, 0, len(recs))
	for _, rec := range recs {
		out = append(out, string(rec.ChartType))
	}
	return out
}

// RenderAll renders every report with its defaults, in catalogue order.
func (d *Dashboard) RenderAll(ctx context.Context) ([]*Result, error) {
	reports := d.registry.List()
	results := make([]*Result, len(reports))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i, r := range reports {
		g.Go(func() error {
			res, err := d.Render(gctx, r.ID, Selection{})
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// KPIs evaluates only the KPI cards of a report.
func (d *Dashboard) KPIs(ctx context.Context, id string) ([]*kpi.Result, error) {
	r, err := d.registry.Get(id)
	if err != nil {
		return nil, err
	}
	raw, _, err := d.LoadData(ctx, r)
	if err != nil {
		return nil, err
	}
	results, err := kpi.EvaluateAll(r.KPIs, dataprep.Prepare(raw, r.ValidationOptions()))
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", r.ID, err)
	}
	return results, nil
}

// Search fuzzy-matches reports by name and id.
func (d *Dashboard) Search(query string) []SearchResult {
	return d.registry.Search(query)
}

// Refresh drops cached responses for the report's HTTP source and announces
// the refresh. It returns the number of cache entries removed.
func (d *Dashboard) Refresh(_ context.Context, id string) (int, error) {
	r, err := d.registry.Get(id)
	if err != nil {
		return 0, err
	}

	removed := 0
	if d.cache != nil && r.Source != nil && strings.EqualFold(r.Source.Type, datasource.TypeHTTP) {
		removed = d.cache.Invalidate(r.Source.BaseURL + r.Source.Endpoint + "?")
	}
	d.publish(EventReportRefreshed, r.ID, 0, fmt.Sprintf("invalidated %d cached responses", removed))
	d.logger.Info("Refreshed report", zap.String("report_id", r.ID), zap.Int("invalidated", removed))
	return removed, nil
}

// FilteredWarning is the advisory reported when validation drops records.
func FilteredWarning(dropped int) string {
	return fmt.Sprintf("Warning: %d data entries were filtered out due to missing required fields.", dropped)
}

// IsNotFound reports whether err is a missing-report error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrReportNotFound)
}

func fieldNames(rec dataprep.Record) []string {
	names := make([]string, 0, len(rec))
	for k := range rec {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
