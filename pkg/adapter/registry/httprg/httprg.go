// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package httprg implements the driver registry port of the routes
// use case as a client of the cadastro HTTP service.
package httprg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/logistica/roteirizacao/pkg/core/model"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds each driver lookup when WithTimeout is not
// used.
const DefaultTimeout = 5 * time.Second

// maxBody limits the driver document size which is read.
const maxBody = 1 << 20

// Client fetches drivers from GET {baseURL}/motoristas/{id}.
// It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
	limiter *rate.Limiter
}

// Option is a functional option for the registry client.
type Option func(c *Client) error

// WithTimeout bounds each lookup (including waiting for the rate
// limiter) by d.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("non-positive timeout: %v", d)
		}
		c.timeout = d
		return nil
	}
}

// WithRateLimit limits the outgoing lookups to perSecond requests
// per second, allowing bursts of burst requests.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) error {
		if perSecond <= 0 || burst <= 0 {
			return fmt.Errorf(
				"invalid rate limit: %v/s, burst=%d", perSecond, burst,
			)
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		return nil
	}
}

// WithHTTPClient replaces the http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("http client is nil")
		}
		c.http = hc
		return nil
	}
}

// New instantiates a registry Client for the baseURL address.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing registry URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported registry URL: %q", baseURL)
	}
	c := &Client{
		baseURL: u,
		http:    http.DefaultClient,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	return c, nil
}

// URL returns the registry base URL.
func (c *Client) URL() string {
	return c.baseURL.String()
}

// Driver fetches the id driver. A 404 response is reported by an error
// wrapping model.ErrDriverNotFound. Other non-2xx responses, transport
// failures, and malformed documents are returned as other errors.
// The request is not retried.
func (c *Client) Driver(
	ctx context.Context, id int64,
) (*model.Driver, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}
	u := c.baseURL.JoinPath("motoristas", strconv.FormatInt(id, 10))
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, u.String(), nil,
	)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("GET %s: %w", u, model.ErrDriverNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("GET %s: unexpected status %d", u, resp.StatusCode)
	}
	d := &model.Driver{}
	if err = json.Unmarshal(body, d); err != nil {
		return nil, fmt.Errorf("decoding driver: %w", err)
	}
	if d.ID == 0 {
		d.ID = id
	}
	return d, nil
}
