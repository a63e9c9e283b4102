package staysapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"stays/internal/adapters/observability"
	"stays/internal/domain"
)

// Client talks to the hotels catalog API. Calls are single-shot by contract:
// no retries, no caching, no pagination. A client-side rate limiter keeps us
// polite toward the upstream.
type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

func New(base string, rps int, timeout time.Duration) *Client {
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: timeout},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}
}

func (c *Client) FetchProperties(ctx context.Context, location string) ([]domain.Property, error) {
	var out []domain.Property
	url := fmt.Sprintf("%s/hotels/%s", c.base, location)
	if err := c.get(ctx, "properties", url, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchPrices returns quotes covering every property at the location. The
// upstream path carries a fixed property segment ("1") but answers for the
// whole location, so this is one call per (location, currency).
func (c *Client) FetchPrices(ctx context.Context, location string, currency domain.Currency) ([]domain.PropertyPrice, error) {
	var out []domain.PropertyPrice
	url := fmt.Sprintf("%s/hotels/%s/1/%s", c.base, location, currency)
	if err := c.get(ctx, "prices", url, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, endpoint, url string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "stays/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("staysapi", endpoint, 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("staysapi: %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("staysapi", endpoint, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusOK:
		return json.NewDecoder(resp.Body).Decode(out)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("staysapi: %s %d: %w", endpoint, resp.StatusCode, domain.ErrNotFound)
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("staysapi: %s: bad status %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(b)))
	}
}
