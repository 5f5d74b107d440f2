// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// maxResponseSize bounds HTTP response bodies.
const maxResponseSize = 50 * 1024 * 1024

// httpProvider fetches JSON records from an API endpoint.
type httpProvider struct {
	cfg    Config
	method string
	client *http.Client
	cache  *ResponseCache
	logger *zap.Logger
}

func newHTTPProvider(cfg Config, client *http.Client, cache *ResponseCache, logger *zap.Logger) *httpProvider {
	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = http.MethodGet
	}
	if !cfg.Cache {
		cache = nil
	}
	return &httpProvider{cfg: cfg, method: method, client: client, cache: cache, logger: logger}
}

// URL is the request URL: base URL, endpoint and the sorted query string.
func (p *httpProvider) URL() string {
	return requestURL(p.cfg.BaseURL, p.cfg.Endpoint, p.cfg.Params)
}

func (p *httpProvider) Load(ctx context.Context) (*Frame, error) {
	key := CacheKey(p.method, p.cfg.BaseURL, p.cfg.Endpoint, p.cfg.Params)

	var body []byte
	if p.cache != nil {
		if cached, ok := p.cache.Get(key); ok {
			p.logger.Debug("http source cache hit", zap.String("key", key))
			body = cached
		}
	}

	if body == nil {
		var err error
		if body, err = p.fetch(ctx); err != nil {
			return nil, err
		}
		if p.cache != nil {
			p.cache.Put(key, body)
		}
	}

	rows, err := decodeRecords(body, p.cfg.DataKey)
	if err != nil {
		return nil, sourceErr(TypeHTTP, "decode", err)
	}
	return frameFromRecords(rows), nil
}

func (p *httpProvider) fetch(ctx context.Context) ([]byte, error) {
	var reqBody io.Reader
	if p.cfg.Body != nil {
		b, err := json.Marshal(p.cfg.Body)
		if err != nil {
			return nil, sourceErr(TypeHTTP, "encode body", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, p.method, p.URL(), reqBody)
	if err != nil {
		return nil, sourceErr(TypeHTTP, "create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range p.cfg.Headers {
		req.Header.Set(k, v)
	}

	if auth := p.cfg.Auth; auth != nil {
		switch strings.ToLower(auth.Type) {
		case "bearer":
			req.Header.Set("Authorization", "Bearer "+auth.Token)
		case "basic":
			req.SetBasicAuth(auth.Username, auth.Password)
		case "apikey":
			headerName := auth.HeaderName
			if headerName == "" {
				headerName = "X-API-Key"
			}
			req.Header.Set(headerName, auth.Token)
		}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, sourceErr(TypeHTTP, "request", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, sourceErr(TypeHTTP, "request", fmt.Errorf("Error: %d - %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, sourceErr(TypeHTTP, "read response", err)
	}
	if len(body) > maxResponseSize {
		return nil, sourceErr(TypeHTTP, "read response", fmt.Errorf("response exceeds %d bytes", maxResponseSize))
	}
	return body, nil
}

func (p *httpProvider) Close() error { return nil }
