// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package server

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// deriveRequestSchema describes the body of POST /api/charts/derive.
// Exactly one of kind and variant must be given.
const deriveRequestSchema = `{
  "$schema": "http://json-schema.org/draft-04/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "kind": {"type": "string", "minLength": 1},
    "variant": {"type": "string", "minLength": 1},
    "params": {
      "type": "object",
      "properties": {
        "data": {"type": "array"},
        "x_field": {"type": "string"},
        "y_field": {"type": "string"},
        "z_field": {"type": "string"},
        "series_field": {"type": "string"},
        "aggregation": {"enum": ["", "sum", "average", "max", "min"]},
        "sort_data": {"type": "boolean"},
        "limit": {"type": "integer", "minimum": 0},
        "title": {"type": "string"},
        "subtitle": {"type": "string"},
        "show_legend": {"type": "boolean"},
        "show_toolbox": {"type": "boolean"},
        "show_data_zoom": {"type": "boolean"},
        "color_palette": {"type": "array", "items": {"type": "string"}},
        "color_range": {
          "type": "object",
          "required": ["start", "end"],
          "properties": {
            "start": {"$ref": "#/definitions/rgb"},
            "end": {"$ref": "#/definitions/rgb"}
          }
        },
        "labels": {"type": "object"},
        "legacy_extremes": {"type": "boolean"}
      }
    },
    "data": {"type": "array"},
    "style": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "name": {"type": "string"},
        "color_palette": {"type": "array", "items": {"type": "string"}},
        "color_background": {"type": "string"},
        "color_text": {"type": "string"},
        "font_family": {"type": "string"},
        "item_color_range": {
          "type": "object",
          "required": ["start", "end"],
          "properties": {
            "start": {"$ref": "#/definitions/rgb"},
            "end": {"$ref": "#/definitions/rgb"}
          }
        },
        "pie_border_color": {"type": "string"},
        "gauge_bands": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["until", "color"],
            "properties": {
              "until": {"type": "number"},
              "color": {"type": "string"}
            }
          }
        },
        "gauge_line_width": {"type": "integer"}
      }
    },
    "validation": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "required_fields": {"type": "array", "items": {"type": "string"}},
        "numeric_fields": {"type": "array", "items": {"type": "string"}},
        "default_values": {"type": "object"}
      }
    }
  },
  "oneOf": [
    {"required": ["kind"], "not": {"required": ["variant"]}},
    {"required": ["variant"], "not": {"required": ["kind"]}}
  ],
  "definitions": {
    "rgb": {
      "type": "object",
      "required": ["r", "g", "b"],
      "properties": {
        "r": {"type": "integer"},
        "g": {"type": "integer"},
        "b": {"type": "integer"}
      }
    }
  }
}`

var deriveSchema = mustSchema(deriveRequestSchema)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("invalid request schema: %v", err))
	}
	return schema
}

// validateBody checks body against schema and joins every violation into
// one bad-request error.
func validateBody(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", errBadRequest, strings.Join(msgs, "; "))
}
