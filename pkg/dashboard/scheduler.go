// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package dashboard

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler refreshes reports that declare a refresh cron spec. It follows
// catalogue reloads, adding, replacing and removing entries as reports
// change.
type Scheduler struct {
	dash   *Dashboard
	logger *zap.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	entries map[string]scheduled

	stopCh  chan struct{}
	wg      sync.WaitGroup
	started bool
}

type scheduled struct {
	spec string
	id   cron.EntryID
}

// NewScheduler creates a scheduler for dash's reports.
func NewScheduler(dash *Dashboard, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		dash:    dash,
		logger:  logger,
		cron:    cron.New(),
		entries: make(map[string]scheduled),
		stopCh:  make(chan struct{}),
	}
}

// Start registers every scheduled report, starts the cron engine and
// follows reload events until ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already started")
	}
	s.started = true
	s.mu.Unlock()

	if err := s.Sync(); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("Report scheduler started", zap.Int("scheduled", len(s.Scheduled())))

	subCtx, cancel := context.WithCancel(ctx)
	events := s.dash.Subscribe(subCtx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				if ev.Type != EventReportReloaded {
					continue
				}
				if err := s.Sync(); err != nil {
					s.logger.Error("Failed to sync report schedules", zap.Error(err))
				}
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Sync reconciles cron entries with the registry. Reports whose schedule
// is unchanged keep their entry.
func (s *Scheduler) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := make(map[string]string)
	for _, r := range s.dash.Registry().List() {
		if r.Refresh != "" {
			want[r.ID] = r.Refresh
		}
	}

	for id, entry := range s.entries {
		if spec, ok := want[id]; !ok || spec != entry.spec {
			s.cron.Remove(entry.id)
			delete(s.entries, id)
		}
	}

	var errs []error
	for id, spec := range want {
		if _, ok := s.entries[id]; ok {
			continue
		}
		reportID := id
		entryID, err := s.cron.AddFunc(spec, func() { s.refresh(reportID) })
		if err != nil {
			errs = append(errs, fmt.Errorf("report %s: failed to add cron job: %w", id, err))
			continue
		}
		s.entries[id] = scheduled{spec: spec, id: entryID}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func (s *Scheduler) refresh(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.dash.Refresh(ctx, id); err != nil {
		s.logger.Error("Scheduled refresh failed", zap.String("report_id", id), zap.Error(err))
	}
}

// Scheduled returns the ids of scheduled reports, sorted.
func (s *Scheduler) Scheduled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Next returns the next refresh time of a report.
func (s *Scheduler) Next(id string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(entry.id).Next, true
}

// Stop stops the cron engine and waits for running refreshes or ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.mu.Unlock()

	close(s.stopCh)
	cronCtx := s.cron.Stop()
	s.wg.Wait()

	select {
	case <-cronCtx.Done():
		s.logger.Info("Report scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Report scheduler shutdown timeout, refreshes may still be running")
		return ctx.Err()
	}
}
