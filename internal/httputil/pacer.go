// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

// DefaultRate is NCBI's request ceiling for clients without an API key.
const DefaultRate = 3.0

// MaxBodyBytes caps how much of a response body ReadBody will read.
const MaxBodyBytes = 10 << 20

// Pacer spaces outgoing requests so one client stays under a remote
// service's request-rate policy. Requests are issued one token at a time
// with a burst of one. Pacer never retries: a failed or throttled response
// goes back to the caller unchanged.
type Pacer struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// NewPacer wraps client with a limiter allowing perSecond requests per
// second. A nil client uses http.DefaultClient; perSecond <= 0 uses DefaultRate.
func NewPacer(client *http.Client, perSecond float64, userAgent string) *Pacer {
	if client == nil {
		client = http.DefaultClient
	}
	if perSecond <= 0 {
		perSecond = DefaultRate
	}
	return &Pacer{
		client:    client,
		limiter:   rate.NewLimiter(rate.Limit(perSecond), 1),
		userAgent: userAgent,
	}
}

// Do waits for a request slot and executes req. If req's context ends
// while waiting, Do returns the context error without sending anything.
func (p *Pacer) Do(req *http.Request) (*http.Response, error) {
	if err := p.limiter.Wait(req.Context()); err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("waiting for request slot: %w", err)
	}
	if p.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", p.userAgent)
	}
	return p.client.Do(req)
}

// Get builds a GET request bound to ctx and sends it through Do.
func (p *Pacer) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return p.Do(req)
}

// ReadBody reads at most MaxBodyBytes of resp's body and closes it.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return data, nil
}
