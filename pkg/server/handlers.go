// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/teradata-labs/chartkit/internal/version"
	"github.com/teradata-labs/chartkit/pkg/dashboard"
	"github.com/teradata-labs/chartkit/pkg/dataprep"
	"github.com/teradata-labs/chartkit/pkg/datasource"
	"github.com/teradata-labs/chartkit/pkg/palette"
	"github.com/teradata-labs/chartkit/pkg/visualization"
)

// DefaultPaletteSteps is used when /api/palette is called without steps.
const DefaultPaletteSteps = 5

const maxPaletteSteps = 1024

var errBadRequest = errors.New("bad request")

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(requestID(), accessLog(s.logger), recovery(s.logger))
	if s.cfg.CORS.Enabled {
		r.Use(s.cfg.CORS.middleware())
	}

	r.GET("/health", s.handleHealth)

	api := r.Group("/api")
	api.GET("/reports", s.handleListReports)
	api.GET("/reports/search", s.handleSearchReports)
	api.GET("/reports/:id", s.handleGetReport)
	api.GET("/reports/:id/chart", s.handleChart)
	api.GET("/reports/:id/kpis", s.handleKPIs)
	api.POST("/reports/:id/refresh", s.handleRefresh)
	api.POST("/charts/derive", s.handleDerive)
	api.POST("/data/prepare", s.handlePrepare)
	api.GET("/palette", s.handlePalette)
	api.GET("/chart-types", s.handleChartTypes)
	api.GET("/events", s.handleEvents)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return r
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrReportNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, visualization.ErrUnknownChartType),
		errors.Is(err, dashboard.ErrInvalidReport),
		errors.Is(err, datasource.ErrUnsupportedSource):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": version.Get(),
		"build":   version.Current(),
		"reports": s.dash.Registry().Len(),
	})
}

type reportSummary struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description,omitempty"`
	DefaultChartType  string   `json:"default_chart_type"`
	RecommendedCharts []string `json:"recommended_charts,omitempty"`
	Source            string   `json:"source"`
	KPIs              int      `json:"kpis"`
	Refresh           string   `json:"refresh,omitempty"`
	Score             *int     `json:"score,omitempty"`
}

func summarize(r *dashboard.Report) reportSummary {
	source := "dataset"
	switch {
	case r.Source != nil:
		source = r.Source.Describe()
	case len(r.Dataset) == 0:
		source = "default"
	}
	return reportSummary{
		ID:                r.ID,
		Name:              r.Name,
		Description:       r.Description,
		DefaultChartType:  r.ChartType(),
		RecommendedCharts: r.RecommendedCharts,
		Source:            source,
		KPIs:              len(r.KPIs),
		Refresh:           r.Refresh,
	}
}

func (s *Server) handleListReports(c *gin.Context) {
	reports := s.dash.Registry().List()
	out := make([]reportSummary, 0, len(reports))
	for _, r := range reports {
		out = append(out, summarize(r))
	}
	c.JSON(http.StatusOK, gin.H{"reports": out})
}

func (s *Server) handleSearchReports(c *gin.Context) {
	hits := s.dash.Search(c.Query("q"))
	out := make([]reportSummary, 0, len(hits))
	for _, hit := range hits {
		summary := summarize(hit.Report)
		score := hit.Score
		summary.Score = &score
		out = append(out, summary)
	}
	c.JSON(http.StatusOK, gin.H{"query": c.Query("q"), "reports": out})
}

func (s *Server) handleGetReport(c *gin.Context) {
	r, err := s.dash.Registry().Get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) handleChart(c *gin.Context) {
	res, err := s.dash.Render(c.Request.Context(), c.Param("id"), dashboard.Selection{
		ChartType:   c.Query("type"),
		XField:      c.Query("x"),
		YField:      c.Query("y"),
		SeriesField: c.Query("series"),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, http.StatusOK, res)
}

func (s *Server) handleKPIs(c *gin.Context) {
	id := c.Param("id")
	results, err := s.dash.KPIs(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, http.StatusOK, gin.H{"report_id": id, "kpis": results})
}

func (s *Server) handleRefresh(c *gin.Context) {
	id := c.Param("id")
	removed, err := s.dash.Refresh(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report_id": id, "invalidated": removed})
}

type deriveRequest struct {
	Kind       string               `json:"kind"`
	Variant    string               `json:"variant"`
	Params     visualization.Params `json:"params"`
	Data       []interface{}              `json:"data"`
	Validation *dataprep.Options          `json:"validation"`
	Style      *visualization.StyleConfig `json:"style"`
}

type deriveResponse struct {
	Kind    string                   `json:"kind"`
	Spec    *visualization.ChartSpec `json:"spec"`
	Rows    int                      `json:"rows"`
	Empty   bool                     `json:"empty"`
	Warning string                   `json:"warning,omitempty"`
}

// respond marshals v before writing anything, so an encoding failure
// becomes a 500 instead of a truncated 200.
func (s *Server) respond(c *gin.Context, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		s.fail(c, fmt.Errorf("failed to encode response: %w", err))
		return
	}
	c.Data(status, "application/json; charset=utf-8", body)
}

// engineFor returns the server's generator, or one themed with style
// overlaid on the server theme.
func (s *Server) engineFor(style *visualization.StyleConfig) (*visualization.EChartsGenerator, error) {
	if style == nil {
		return s.engine, nil
	}
	merged := visualization.MergeStyles(style, s.engine.Style())
	if err := visualization.ValidateStyle(merged); err != nil {
		return nil, fmt.Errorf("%w: style: %v", errBadRequest, err)
	}
	return visualization.NewEChartsGenerator(merged).WithLogger(s.logger), nil
}

// handleDerive derives a chart from raw data. Top-level data is cleaned
// with the validation options before it replaces params.data; a style
// object overrides the server theme for this request only.
func (s *Server) handleDerive(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if err := validateBody(deriveSchema, body); err != nil {
		s.fail(c, err)
		return
	}
	var req deriveRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	engine, err := s.engineFor(req.Style)
	if err != nil {
		s.fail(c, err)
		return
	}

	resp := deriveResponse{Kind: req.Kind}
	p := req.Params
	if req.Data != nil {
		var opts dataprep.Options
		if req.Validation != nil {
			opts = *req.Validation
		}
		p.Data = dataprep.Prepare(req.Data, opts)
		if dropped := len(req.Data) - len(p.Data); dropped > 0 {
			resp.Warning = dashboard.FilteredWarning(dropped)
		}
	}
	if p.Data == nil {
		p.Data = []dataprep.Record{}
	}

	if req.Variant != "" {
		resp.Kind = req.Variant
		resp.Spec, err = engine.DeriveVariant(req.Variant, p)
	} else {
		var kind visualization.ChartType
		if kind, err = visualization.ParseChartType(req.Kind); err == nil {
			resp.Kind = string(kind)
			resp.Spec = engine.Derive(kind, p)
		}
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	resp.Rows = len(p.Data)
	resp.Empty = resp.Spec.Empty()
	s.respond(c, http.StatusOK, resp)
}

type prepareRequest struct {
	Data    []interface{}    `json:"data" binding:"required"`
	Options dataprep.Options `json:"options"`
}

func (s *Server) handlePrepare(c *gin.Context) {
	var req prepareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	prepared := dataprep.Prepare(req.Data, req.Options)
	resp := gin.H{
		"data":  prepared,
		"total": len(req.Data),
		"valid": len(prepared),
	}
	if dropped := len(req.Data) - len(prepared); dropped > 0 {
		resp["warning"] = dashboard.FilteredWarning(dropped)
	}
	s.respond(c, http.StatusOK, resp)
}

func (s *Server) handlePalette(c *gin.Context) {
	start, err := palette.Parse(c.Query("start"))
	if err != nil {
		s.fail(c, fmt.Errorf("%w: start: %v", errBadRequest, err))
		return
	}
	end, err := palette.Parse(c.Query("end"))
	if err != nil {
		s.fail(c, fmt.Errorf("%w: end: %v", errBadRequest, err))
		return
	}
	steps := DefaultPaletteSteps
	if raw := c.Query("steps"); raw != "" {
		if steps, err = strconv.Atoi(raw); err != nil || steps < 0 || steps > maxPaletteSteps {
			s.fail(c, fmt.Errorf("%w: steps must be an integer between 0 and %d", errBadRequest, maxPaletteSteps))
			return
		}
	}

	var colors []string
	if blend := c.Query("blend"); blend != "" {
		if colors, err = palette.GenerateBlend(start, end, steps, blend); err != nil {
			s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
	} else {
		colors = palette.Generate(start, end, steps)
	}
	c.JSON(http.StatusOK, gin.H{"colors": colors})
}

func (s *Server) handleChartTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"chart_types": visualization.ChartTypes(),
		"variants":    visualization.VariantNames(),
		"themes":      visualization.ThemeNames(),
		"aggregations": []visualization.Aggregation{
			visualization.AggregateSum,
			visualization.AggregateAverage,
			visualization.AggregateMax,
			visualization.AggregateMin,
		},
	})
}
