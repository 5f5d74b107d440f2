// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package server

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/r3labs/sse/v2"
	"go.uber.org/zap"
)

const (
	eventsPath   = "/api/events"
	eventsStream = "events"
)

// ForwardEvents relays dashboard events to every SSE subscriber until ctx
// is done or the dashboard is closed.
func (s *Server) ForwardEvents(ctx context.Context) {
	for ev := range s.dash.Subscribe(ctx) {
		data, err := json.Marshal(ev.Payload)
		if err != nil {
			s.logger.Warn("Failed to encode event",
				zap.String("type", string(ev.Type)),
				zap.Error(err))
			continue
		}
		s.events.Publish(eventsStream, &sse.Event{
			Event: []byte(ev.Type),
			Data:  data,
		})
	}
}

// handleEvents streams dashboard events. Clients need not name the stream.
func (s *Server) handleEvents(c *gin.Context) {
	q := c.Request.URL.Query()
	q.Set("stream", eventsStream)
	c.Request.URL.RawQuery = q.Encode()
	s.events.ServeHTTP(c.Writer, c.Request)
}
