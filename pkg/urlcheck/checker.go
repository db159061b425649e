// Package urlcheck finds dead plant-care links in the tracht data file.
package urlcheck

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beelot/tooling/pkg/apperr"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout        = 15 * time.Second
	DefaultDelay          = 300 * time.Millisecond
	DefaultMarker         = "Error404"
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultAcceptLanguage = "de-DE,de;q=0.9,en;q=0.8"
)

// Options configures a Checker. Zero fields take the defaults above, except Delay
// where zero disables pacing.
type Options struct {
	Timeout        time.Duration
	Delay          time.Duration
	Marker         string
	UserAgent      string
	AcceptLanguage string
}

// Problem is an entry whose page could not be fetched or is a broken record.
type Problem struct {
	Entry
	Reason string
	// Err is set for fetch and decode failures and wraps apperr.ErrNetwork.
	Err error
}

// Checker fetches entries one at a time.
type Checker struct {
	client *http.Client
	limit  rate.Limit
	opts   Options
	logger *otelzap.Logger
}

// NewChecker creates a Checker with its own HTTP transport.
func NewChecker(opts Options, logger *otelzap.Logger) *Checker {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Marker == "" {
		opts.Marker = DefaultMarker
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.AcceptLanguage == "" {
		opts.AcceptLanguage = DefaultAcceptLanguage
	}

	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}

	return &Checker{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		},
		limit:  limit,
		opts:   opts,
		logger: logger,
	}
}

// Check fetches every entry in order and returns the problems in input order.
// Consecutive requests are separated by a full delay after each response.
// A failed fetch is never retried. The error is only set when ctx ends.
func (c *Checker) Check(ctx context.Context, entries []Entry) ([]Problem, error) {
	defer c.client.CloseIdleConnections()

	var problems []Problem
	for i, e := range entries {
		if i > 0 {
			if err := c.pause(ctx); err != nil {
				return problems, err
			}
		}
		if err := ctx.Err(); err != nil {
			return problems, err
		}

		reason, err := c.checkOne(ctx, e)
		if reason == "" {
			c.logger.Ctx(ctx).Debug("URL ok", zap.Int("line", e.Line), zap.String("url", e.URL))
			continue
		}
		c.logger.Ctx(ctx).Warn("Problematic URL",
			zap.Int("line", e.Line),
			zap.String("plant", e.Plant),
			zap.String("url", e.URL),
			zap.String("reason", reason))
		problems = append(problems, Problem{Entry: e, Reason: reason, Err: err})
	}
	return problems, nil
}

// pause blocks for one delay counted from now. The limiter starts with its only
// token spent so Wait covers the whole interval.
func (c *Checker) pause(ctx context.Context) error {
	l := rate.NewLimiter(c.limit, 1)
	l.Allow()
	return l.Wait(ctx)
}

// checkOne returns an empty reason when the page looks fine.
func (c *Checker) checkOne(ctx context.Context, e Entry) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.URL, nil)
	if err != nil {
		return requestFailed(err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept-Language", c.opts.AcceptLanguage)

	resp, err := c.client.Do(req)
	if err != nil {
		return requestFailed(err)
	}
	defer resp.Body.Close()

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return decodeFailed(err)
	}
	html, err := io.ReadAll(body)
	if err != nil {
		return decodeFailed(err)
	}

	if strings.Contains(string(html), c.opts.Marker) {
		return c.opts.Marker + " marker found in HTML", nil
	}
	return "", nil
}

func requestFailed(err error) (string, error) {
	return "request failed: " + err.Error(), fmt.Errorf("%w: %w", apperr.ErrNetwork, err)
}

func decodeFailed(err error) (string, error) {
	return "decode failed: " + err.Error(), fmt.Errorf("%w: %w", apperr.ErrNetwork, err)
}
