// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package experience refreshes the cached work-experience payload from the
// external experience service and serves the cached copy.
package experience

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"folio/internal/cache"
	"folio/internal/logger"
	"folio/internal/models"
)

// maxPayload bounds the upstream response body.
const maxPayload = 10 << 20

// ErrUpstream wraps every failure talking to the experience service.
var ErrUpstream = errors.New("experience service request failed")

// Client fetches the experience payload over HTTP.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a Client for baseURL. token, when set, is sent as a
// bearer token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch performs GET <baseURL>/experience and returns the JSON body.
func (c *Client) Fetch(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/experience", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayload+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d %s", ErrUpstream, resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	if len(body) > maxPayload {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", ErrUpstream, maxPayload)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: response is not valid JSON", ErrUpstream)
	}
	return json.RawMessage(body), nil
}

// Fetcher abstracts the upstream call for tests.
type Fetcher interface {
	Fetch(ctx context.Context) (json.RawMessage, error)
}

// Store persists the payload.
type Store interface {
	Get(ctx context.Context) (*models.ExperienceCache, error)
	Upsert(ctx context.Context, payload json.RawMessage) (*models.ExperienceCache, error)
}

// Invalidator purges rendered pages after a refresh.
type Invalidator interface {
	Invalidate(ctx context.Context, reason string, paths ...string)
}

// Service ties the fetcher, store and page cache together.
type Service struct {
	fetcher Fetcher
	store   Store
	pages   Invalidator
}

// NewService creates a Service.
func NewService(f Fetcher, s Store, pages Invalidator) *Service {
	return &Service{fetcher: f, store: s, pages: pages}
}

// Refresh fetches a fresh payload, stores it and invalidates the home page.
// On fetch failure the previous cache is left untouched.
func (s *Service) Refresh(ctx context.Context) (*models.ExperienceCache, error) {
	payload, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	stored, err := s.store.Upsert(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("refresh experience: %w", err)
	}

	s.pages.Invalidate(ctx, "experience-refresh", cache.PathHome)

	logger.WithCtx(ctx).Info("experience cache refreshed",
		zap.Int("entries", stored.Count()),
		zap.Int("bytes", len(stored.Payload)),
	)
	return stored, nil
}

// Current returns the cached payload, or an empty JSON array when the cache
// was never filled.
func (s *Service) Current(ctx context.Context) (json.RawMessage, error) {
	e, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if e == nil || len(e.Payload) == 0 {
		return json.RawMessage("[]"), nil
	}
	return e.Payload, nil
}
