// Package fetch downloads country records over HTTP and decodes them into
// stencil bags.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/zoobzio/stencil"
	"github.com/zoobzio/stencil/json"
	"golang.org/x/time/rate"
)

// maxBodySize bounds a single response body.
const maxBodySize = 1 << 20

// ErrNotFound is returned when the server has no record for a code.
var ErrNotFound = errors.New("country not found")

// StatusError is returned for unexpected HTTP status codes.
type StatusError struct {
	Code   string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.Code, e.Status)
}

// Options configures a Client.
type Options struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64 // zero means unlimited
	HTTPClient    *http.Client
}

// Client fetches country records one code at a time. Requests are paced by a
// token bucket and guarded by a circuit breaker.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]byte]
	codec   stencil.Codec
	log     zerolog.Logger
}

// New creates a Client.
func New(opts Options, log zerolog.Logger) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "countries-api",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})

	return &Client{
		http:    hc,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		limiter: rate.NewLimiter(limit, 1),
		cb:      cb,
		codec:   json.New(),
		log:     log,
	}
}

// Country fetches the record for code.
func (c *Client) Country(ctx context.Context, code string) (*stencil.Bag, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.get(ctx, code)
	})
	if err != nil {
		return nil, err
	}

	v, err := c.codec.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", code, err)
	}

	// v2 of the API answers a list when the code matches more than one record
	if items, ok := v.([]any); ok && len(items) > 0 {
		v = items[0]
	}
	bag, ok := v.(*stencil.Bag)
	if !ok {
		return nil, fmt.Errorf("fetch %s: response is %T, want an object", code, v)
	}
	return bag, nil
}

// Countries fetches every code in order, stopping at the first failure.
func (c *Client) Countries(ctx context.Context, codes []string) ([]*stencil.Bag, error) {
	bags := make([]*stencil.Bag, 0, len(codes))
	for _, code := range codes {
		bag, err := c.Country(ctx, code)
		if err != nil {
			return nil, err
		}
		bags = append(bags, bag)
	}
	return bags, nil
}

func (c *Client) get(ctx context.Context, code string) ([]byte, error) {
	requestID := uuid.NewString()
	endpoint := c.baseURL + "/" + url.PathEscape(code)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", c.codec.ContentType())
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", code, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("request_id", requestID).
		Str("code", code).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("fetched")

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("fetch %s: %w", code, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, &StatusError{Code: code, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: read body: %w", code, err)
	}
	return body, nil
}
