// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package dashboard

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/teradata-labs/chartkit/internal/ordered"
	"github.com/teradata-labs/chartkit/pkg/dataprep"
)

// ErrReportNotFound is returned for unknown report ids.
var ErrReportNotFound = errors.New("report not found")

// Registry holds the report catalogue in file order. Replace swaps the whole
// catalogue atomically, so readers never observe a half-loaded file.
type Registry struct {
	mu          sync.RWMutex
	reports     *ordered.Map[string, *Report]
	defaultData []dataprep.Record
}

// NewRegistry creates a registry from a loaded file, which may be nil.
func NewRegistry(f *File) *Registry {
	r := &Registry{reports: ordered.New[string, *Report]()}
	if f != nil {
		r.Replace(f)
	}
	return r
}

// Replace installs the reports of f. It returns the ids of the new
// catalogue followed by the ids that were removed.
func (r *Registry) Replace(f *File) []string {
	next := ordered.New[string, *Report]()
	for i := range f.Reports {
		rep := f.Reports[i]
		next.Set(rep.ID, &rep)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	touched := next.Keys()
	for _, id := range r.reports.Keys() {
		if _, ok := next.Get(id); !ok {
			touched = append(touched, id)
		}
	}
	r.reports = next
	r.defaultData = dataprep.Records(f.DefaultData)
	return touched
}

// Get returns the report with the given id.
func (r *Registry) Get(id string) (*Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rep, ok := r.reports.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, id)
	}
	return rep, nil
}

// List returns the reports in catalogue order.
func (r *Registry) List() []*Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.reports.Values()
}

// Len returns the number of reports.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.reports.Len()
}

// DefaultData returns the catalogue's fallback records.
func (r *Registry) DefaultData() []dataprep.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultData
}

// SearchResult is one fuzzy match.
type SearchResult struct {
	Report *Report `json:"report"`
	Score  int     `json:"score"`
}

type searchSource []*Report

func (s searchSource) String(i int) string {
	return s[i].Name + " " + s[i].ID
}

func (s searchSource) Len() int { return len(s) }

// Search fuzzy-matches query against report names and ids, best first. An
// empty query returns every report in catalogue order.
func (r *Registry) Search(query string) []SearchResult {
	reports := r.List()
	if query == "" {
		out := make([]SearchResult, len(reports))
		for i, rep := range reports {
			out[i] = SearchResult{Report: rep}
		}
		return out
	}

	matches := fuzzy.FindFrom(query, searchSource(reports))
	out := make([]SearchResult, len(matches))
	for i, m := range matches {
		out[i] = SearchResult{Report: reports[m.Index], Score: m.Score}
	}
	return out
}
