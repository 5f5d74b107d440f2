// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package dashboard

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/teradata-labs/chartkit/pkg/dataprep"
	"github.com/teradata-labs/chartkit/pkg/datasource"
	"github.com/teradata-labs/chartkit/pkg/kpi"
	"github.com/teradata-labs/chartkit/pkg/visualization"
)

// ErrInvalidReport is returned for report files that fail validation.
var ErrInvalidReport = errors.New("invalid report definition")

// DefaultConfig is the chart configuration a report starts from.
type DefaultConfig struct {
	XField          string `json:"x_field,omitempty" yaml:"x_field,omitempty"`
	YField          string `json:"y_field,omitempty" yaml:"y_field,omitempty"`
	SeriesField     string `json:"series_field,omitempty" yaml:"series_field,omitempty"`
	Title           string `json:"title,omitempty" yaml:"title,omitempty"`
	Subtitle        string `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	ShowDataZoom    bool   `json:"show_data_zoom,omitempty" yaml:"show_data_zoom,omitempty"`
	SortData        *bool  `json:"sort_data,omitempty" yaml:"sort_data,omitempty"`
	AggregationType string `json:"aggregation_type,omitempty" yaml:"aggregation_type,omitempty"`
	Limit           int    `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// Report is one entry of the report catalogue.
type Report struct {
	ID                string                   `json:"id" yaml:"id"`
	Name              string                   `json:"name" yaml:"name"`
	Description       string                   `json:"description,omitempty" yaml:"description,omitempty"`
	DefaultChartType  string                   `json:"default_chart_type,omitempty" yaml:"default_chart_type,omitempty"`
	RecommendedCharts []string                 `json:"recommended_charts,omitempty" yaml:"recommended_charts,omitempty"`
	Dataset           []map[string]interface{} `json:"dataset,omitempty" yaml:"dataset,omitempty"`
	Source            *datasource.Config       `json:"source,omitempty" yaml:"source,omitempty"`
	DefaultConfig     DefaultConfig            `json:"default_config" yaml:"default_config"`
	RequiredFields    []string                 `json:"required_fields,omitempty" yaml:"required_fields,omitempty"`
	NumericFields     []string                 `json:"numeric_fields,omitempty" yaml:"numeric_fields,omitempty"`
	KPIs              []kpi.Definition         `json:"kpis,omitempty" yaml:"kpis,omitempty"`
	// Refresh is a standard five-field cron spec.
	Refresh string `json:"refresh,omitempty" yaml:"refresh,omitempty"`
}

// ChartType is the report's default kind, bar when unset.
func (r *Report) ChartType() string {
	if r.DefaultChartType == "" {
		return string(visualization.ChartTypeBar)
	}
	return r.DefaultChartType
}

// ValidationOptions derives the data preparation options for the report.
// Required fields default to 0 for the default y field and to
// "Unknown <field>" otherwise.
func (r *Report) ValidationOptions() dataprep.Options {
	opts := dataprep.Options{
		RequiredFields: r.RequiredFields,
		NumericFields:  r.NumericFields,
		DefaultValues:  make(map[string]interface{}, len(r.RequiredFields)),
	}
	for _, field := range r.RequiredFields {
		if field == r.DefaultConfig.YField {
			opts.DefaultValues[field] = 0
		} else {
			opts.DefaultValues[field] = "Unknown " + field
		}
	}
	return opts
}

// Validate checks the parts of a report the schema cannot.
func (r *Report) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("report id is required")
	}
	if r.DefaultChartType != "" && !knownChart(r.DefaultChartType) {
		return fmt.Errorf("report %s: unknown default_chart_type %q", r.ID, r.DefaultChartType)
	}
	for _, name := range r.RecommendedCharts {
		if !knownChart(name) {
			return fmt.Errorf("report %s: unknown recommended chart %q", r.ID, name)
		}
	}
	if agg := r.DefaultConfig.AggregationType; agg != "" {
		if _, err := visualization.ParseAggregation(agg); err != nil {
			return fmt.Errorf("report %s: %w", r.ID, err)
		}
	}
	if r.Source != nil {
		if err := r.Source.Validate(); err != nil {
			return fmt.Errorf("report %s: source: %w", r.ID, err)
		}
	}
	for _, def := range r.KPIs {
		if err := def.Validate(); err != nil {
			return fmt.Errorf("report %s: kpi %s: %w", r.ID, def.ID, err)
		}
	}
	if r.Refresh != "" {
		if _, err := cron.ParseStandard(r.Refresh); err != nil {
			return fmt.Errorf("report %s: invalid refresh schedule: %w", r.ID, err)
		}
	}
	return nil
}

func knownChart(name string) bool {
	if _, err := visualization.ParseChartType(name); err == nil {
		return true
	}
	for _, v := range visualization.VariantNames() {
		if strings.EqualFold(v, name) {
			return true
		}
	}
	return false
}

// File is the on-disk report catalogue.
type File struct {
	Reports []Report `json:"reports" yaml:"reports"`
	// DefaultData is used by reports with no dataset or source when no
	// global data function is configured.
	DefaultData []map[string]interface{} `json:"default_data,omitempty" yaml:"default_data,omitempty"`
}

// LoadFile reads and validates a report catalogue.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is operator configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read reports file: %w", err)
	}
	f, err := ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ParseFile decodes YAML (or JSON) report definitions, validates them
// against the catalogue schema and then semantically.
func ParseFile(data []byte) (*File, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse reports: %w", err)
	}
	if err := validateSchema(doc); err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode reports: %w", err)
	}

	seen := make(map[string]bool, len(f.Reports))
	for i := range f.Reports {
		r := &f.Reports[i]
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: duplicate report id %q", ErrInvalidReport, r.ID)
		}
		seen[r.ID] = true
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidReport, err)
		}
	}
	return &f, nil
}

func validateSchema(doc interface{}) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(reportSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			msgs[i] = e.String()
		}
		return fmt.Errorf("%w: %s", ErrInvalidReport, strings.Join(msgs, "; "))
	}
	return nil
}

// reportSchema describes the report catalogue file.
const reportSchema = `{
  "$schema": "http://json-schema.org/draft-04/schema#",
  "type": "object",
  "required": ["reports"],
  "properties": {
    "reports": {"type": "array", "items": {"$ref": "#/definitions/report"}},
    "default_data": {"type": "array", "items": {"type": "object"}}
  },
  "additionalProperties": false,
  "definitions": {
    "stringList": {"type": "array", "items": {"type": "string"}},
    "report": {
      "type": "object",
      "required": ["id", "name"],
      "properties": {
        "id": {"type": "string", "minLength": 1, "pattern": "^[A-Za-z0-9_.-]+$"},
        "name": {"type": "string", "minLength": 1},
        "description": {"type": "string"},
        "default_chart_type": {"type": "string"},
        "recommended_charts": {"$ref": "#/definitions/stringList"},
        "dataset": {"type": "array", "items": {"type": "object"}},
        "source": {
          "type": "object",
          "required": ["type"],
          "properties": {"type": {"type": "string"}}
        },
        "default_config": {
          "type": "object",
          "properties": {
            "x_field": {"type": "string"},
            "y_field": {"type": "string"},
            "series_field": {"type": "string"},
            "title": {"type": "string"},
            "subtitle": {"type": "string"},
            "show_data_zoom": {"type": "boolean"},
            "sort_data": {"type": "boolean"},
            "aggregation_type": {"enum": ["sum", "average", "max", "min"]},
            "limit": {"type": "integer", "minimum": 0}
          },
          "additionalProperties": false
        },
        "required_fields": {"$ref": "#/definitions/stringList"},
        "numeric_fields": {"$ref": "#/definitions/stringList"},
        "kpis": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["id", "name", "calculation"],
            "properties": {
              "id": {"type": "string"},
              "name": {"type": "string"},
              "calculation": {"type": "object", "required": ["op"]}
            }
          }
        },
        "refresh": {"type": "string"}
      },
      "additionalProperties": false
    }
  }
}`
