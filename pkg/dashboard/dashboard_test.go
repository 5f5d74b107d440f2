// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teradata-labs/chartkit/pkg/dataprep"
	"github.com/teradata-labs/chartkit/pkg/datasource"
	"github.com/teradata-labs/chartkit/pkg/visualization"
)

func newTestDashboard(t *testing.T, opts ...Option) *Dashboard {
	t.Helper()
	d := New(NewRegistry(mustParse(t, testReports)), opts...)
	t.Cleanup(d.Close)
	return d
}

func TestRender_Defaults(t *testing.T) {
	d := newTestDashboard(t)

	res, err := d.Render(context.Background(), "sales", Selection{})
	require.NoError(t, err)

	assert.Equal(t, "bar", res.ChartType)
	assert.Equal(t, "month", res.XField)
	assert.Equal(t, "sales", res.YField)
	assert.Equal(t, 5, res.TotalRows)
	assert.Equal(t, 3, res.ValidRows)
	assert.Equal(t, "Warning: 2 data entries were filtered out due to missing required fields.", res.Warning)
	assert.Equal(t, []string{"month", "region", "sales"}, res.Fields)
	assert.Equal(t, []string{"bar", "line", "pie"}, res.RecommendedCharts)
	assert.Equal(t, "dataset", res.Source)

	spec := res.Spec
	require.Len(t, spec.Series, 1)
	assert.Equal(t, []float64{10, 20, 0}, spec.Series[0].Data)
	assert.Equal(t, []string{"Jan", "Feb", "Apr"}, spec.XAxis.Data)
	assert.Equal(t, "sales by month", spec.Title.Text)
	assert.NotEmpty(t, spec.DataZoom, "bar charts get data zoom")
	assert.NotNil(t, spec.Legend)
	assert.NotNil(t, spec.Toolbox)

	require.Len(t, res.KPIs, 1)
	assert.Equal(t, 30.0, res.KPIs[0].Value)
	assert.Equal(t, "30", res.KPIs[0].Formatted)
}

func TestRender_SelectionOverrides(t *testing.T) {
	d := newTestDashboard(t)

	res, err := d.Render(context.Background(), "sales", Selection{ChartType: "pie", XField: "region"})
	require.NoError(t, err)
	assert.Equal(t, "pie", res.ChartType)
	assert.Equal(t, "region", res.XField)
	assert.Equal(t, "sales by region", res.Spec.Title.Text)
	assert.Empty(t, res.Spec.DataZoom, "pie charts get no data zoom")

	require.Len(t, res.Spec.Series, 1)
	assert.Equal(t, []visualization.NamedValue{
		{Name: "north", Value: 10},
		{Name: "south", Value: 20},
	}, stripStyles(res.Spec.Series[0].Data))

	_, err = d.Render(context.Background(), "sales", Selection{ChartType: "spiral"})
	assert.ErrorIs(t, err, visualization.ErrUnknownChartType)
}

func stripStyles(data interface{}) []visualization.NamedValue {
	values, _ := data.([]visualization.NamedValue)
	out := make([]visualization.NamedValue, len(values))
	for i, v := range values {
		out[i] = visualization.NamedValue{Name: v.Name, Value: v.Value}
	}
	return out
}

func TestRender_VariantAndTitle(t *testing.T) {
	d := newTestDashboard(t)

	res, err := d.Render(context.Background(), "regions", Selection{})
	require.NoError(t, err)
	assert.Equal(t, "donut", res.ChartType)
	assert.Equal(t, "Revenue Split", res.Spec.Title.Text)
	assert.Empty(t, res.Warning)
	require.Len(t, res.Spec.Series, 1)
	assert.Equal(t, "pie", res.Spec.Series[0].Type)
	assert.NotEmpty(t, res.RecommendedCharts, "recommendations are derived when the report lists none")
}

func TestRender_DataPriority(t *testing.T) {
	ctx := context.Background()

	d := newTestDashboard(t)
	res, err := d.Render(ctx, "fallback", Selection{})
	require.NoError(t, err)
	assert.Equal(t, "default", res.Source)
	assert.Equal(t, 2, res.ValidRows)

	var calls atomic.Int32
	withFunc := newTestDashboard(t, WithDataFunc(func(_ context.Context, id string) ([]dataprep.Record, error) {
		calls.Add(1)
		assert.Equal(t, "fallback", id)
		return []dataprep.Record{{"k": "x", "v": 9}}, nil
	}))
	res, err = withFunc.Render(ctx, "fallback", Selection{})
	require.NoError(t, err)
	assert.Equal(t, "provider", res.Source)
	assert.Equal(t, []float64{9}, res.Spec.Series[0].Data)

	// Inline datasets win over the data function.
	_, err = withFunc.Render(ctx, "sales", Selection{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	failing := newTestDashboard(t, WithDataFunc(func(context.Context, string) ([]dataprep.Record, error) {
		return nil, errors.New("backend down")
	}))
	_, err = failing.Render(ctx, "fallback", Selection{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback")
	assert.Contains(t, err.Error(), "backend down")
}

func TestRender_NoData(t *testing.T) {
	f := mustParse(t, `reports: [{id: empty, name: Empty, default_config: {x_field: a, y_field: b}}]`)
	d := New(NewRegistry(f))
	defer d.Close()

	res, err := d.Render(context.Background(), "empty", Selection{})
	require.NoError(t, err)
	assert.Equal(t, WarningNoData, res.Warning)
	assert.Empty(t, res.Spec.Series)
	assert.Equal(t, []string{}, res.Fields)
}

func TestRender_NotFound(t *testing.T) {
	d := newTestDashboard(t)
	_, err := d.Render(context.Background(), "nope", Selection{})
	assert.ErrorIs(t, err, ErrReportNotFound)
	assert.True(t, IsNotFound(err))

	_, err = d.KPIs(context.Background(), "nope")
	assert.True(t, IsNotFound(err))
}

func TestRender_CSVSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sales.csv"), []byte("month,sales\nJan,10\nFeb,20\n"), 0600))

	f := mustParse(t, `
reports:
  - id: csv
    name: CSV Sales
    source: {type: csv, path: sales.csv}
    default_config: {x_field: month, y_field: sales}
    numeric_fields: [sales]
`)
	d := New(NewRegistry(f), WithProviderFactory(datasource.NewFactory(datasource.WithBaseDir(dir))))
	defer d.Close()

	res, err := d.Render(context.Background(), "csv", Selection{})
	require.NoError(t, err)
	assert.Equal(t, "csv:sales.csv", res.Source)
	assert.Equal(t, []float64{10, 20}, res.Spec.Series[0].Data)
}

func TestRenderAll(t *testing.T) {
	d := newTestDashboard(t, WithConcurrency(2))

	results, err := d.RenderAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "sales", results[0].ReportID)
	assert.Equal(t, "regions", results[1].ReportID)
	assert.Equal(t, "fallback", results[2].ReportID)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	failing := newTestDashboard(t, WithDataFunc(func(ctx context.Context, _ string) ([]dataprep.Record, error) {
		return nil, ctx.Err()
	}))
	_, err = failing.RenderAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKPIs(t *testing.T) {
	d := newTestDashboard(t)

	results, err := d.KPIs(context.Background(), "sales")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Total Sales", results[0].Name)
	assert.Equal(t, 30.0, results[0].Value)

	results, err = d.KPIs(context.Background(), "regions")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch(t *testing.T) {
	d := newTestDashboard(t)

	all := d.Search("")
	require.Len(t, all, 3)
	assert.Equal(t, "sales", all[0].Report.ID)

	hits := d.Search("revenue")
	require.NotEmpty(t, hits)
	assert.Equal(t, "regions", hits[0].Report.ID)

	hits = d.Search("msales")
	require.NotEmpty(t, hits)
	assert.Equal(t, "sales", hits[0].Report.ID)

	assert.Empty(t, d.Search("zzzz"))
}

func TestReloadAndEvents(t *testing.T) {
	d := newTestDashboard(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := d.Subscribe(ctx)

	d.Reload(mustParse(t, `reports: [{id: sales, name: Sales v2}, {id: other, name: Other}]`))
	assert.Equal(t, 2, d.Registry().Len())

	got := map[string]bool{}
	for i := 0; i < 4; i++ {
		select {
		case ev := <-events:
			assert.Equal(t, EventReportReloaded, ev.Type)
			got[ev.Payload.ReportID] = true
		case <-time.After(time.Second):
			t.Fatal("missing reload event")
		}
	}
	assert.Equal(t, map[string]bool{"sales": true, "other": true, "regions": true, "fallback": true}, got)

	r, err := d.Registry().Get("sales")
	require.NoError(t, err)
	assert.Equal(t, "Sales v2", r.Name)
}

func TestRefreshInvalidatesCache(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(`[{"month":"Jan","sales":10}]`))
	}))
	defer srv.Close()

	cache, err := datasource.NewResponseCache(16, time.Hour)
	require.NoError(t, err)
	defer cache.Close()

	f := mustParse(t, `
reports:
  - id: api
    name: API Sales
    source:
      type: http
      base_url: "`+srv.URL+`"
      endpoint: /sales
      cache: true
    default_config: {x_field: month, y_field: sales}
`)
	d := New(NewRegistry(f),
		WithResponseCache(cache),
		WithProviderFactory(datasource.NewFactory(datasource.WithCache(cache), datasource.WithHTTPClient(srv.Client()))))
	defer d.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := d.Subscribe(ctx)

	for i := 0; i < 2; i++ {
		_, err := d.Render(ctx, "api", Selection{})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), requests.Load())

	removed, err := d.Refresh(ctx, "api")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = d.Render(ctx, "api", Selection{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), requests.Load())

	var types []string
	for len(types) < 4 {
		select {
		case ev := <-events:
			types = append(types, string(ev.Type))
		case <-time.After(time.Second):
			t.Fatalf("missing events, got %v", types)
		}
	}
	assert.Equal(t, []string{"report.loaded", "report.loaded", "report.refreshed", "report.loaded"}, types)

	_, err = d.Refresh(ctx, "nope")
	assert.ErrorIs(t, err, ErrReportNotFound)
}
