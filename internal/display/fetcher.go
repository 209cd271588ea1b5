// Package display runs the refresh loop of a signage client: fetch the
// catalog feed, pick a round, lay it out and hand the frame to a renderer.
package display

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"kiosk-signage/internal/catalog"
)

// Fetcher retrieves the current catalog feed.
type Fetcher interface {
	Fetch(ctx context.Context) (catalog.Feed, error)
}

// StatusError is returned for a non-2xx feed response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch failed: %d", e.Code)
}

// HTTPFetcher reads the feed from a kiosk server's /api/videos endpoint,
// bypassing every cache on the way.
type HTTPFetcher struct {
	base   *url.URL
	client *http.Client
	now    func() time.Time
}

// NewHTTPFetcher returns a fetcher for feedURL. A nil client uses a client
// with a 10s timeout.
func NewHTTPFetcher(feedURL string, client *http.Client) (*HTTPFetcher, error) {
	u, err := url.Parse(feedURL)
	if err != nil {
		return nil, fmt.Errorf("parse feed url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("feed url %q: scheme must be http or https", feedURL)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPFetcher{base: u, client: client, now: time.Now}, nil
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context) (catalog.Feed, error) {
	u := *f.base
	q := u.Query()
	q.Set("ts", strconv.FormatInt(f.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return catalog.Feed{}, err
	}
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return catalog.Feed{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return catalog.Feed{}, &StatusError{Code: resp.StatusCode}
	}

	var feed catalog.Feed
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return catalog.Feed{}, fmt.Errorf("decode feed: %w", err)
	}
	return feed, nil
}
