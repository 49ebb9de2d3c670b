package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"outreach-engine/internal/domain"
)

// Searcher is the ingestion-facing boundary; swap in a fake for tests.
type Searcher interface {
	Search(ctx context.Context, query string, numPages int) ([]domain.Posting, error)
}

// Client talks to a jsearch-style API: GET /search?query=...&page=1&num_pages=N
// authenticated by RapidAPI headers.
type Client struct {
	host   string
	apiKey string
	hc     *http.Client
	lim    *rate.Limiter
}

func NewClient(host, apiKey string) *Client {
	return &Client{
		host:   host,
		apiKey: apiKey,
		hc:     &http.Client{Timeout: 20 * time.Second},
		lim:    rate.NewLimiter(rate.Limit(1), 2), // be polite to the API
	}
}

type searchResponse struct {
	Data []domain.Posting `json:"data"`
}

func (c *Client) Search(ctx context.Context, query string, numPages int) ([]domain.Posting, error) {
	if c.apiKey == "" {
		return nil, errors.New("search api key is not configured")
	}
	if numPages <= 0 {
		numPages = 1
	}

	if err := c.lim.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("https://%s/search?query=%s&page=1&num_pages=%d",
		c.host, url.QueryEscape(query), numPages)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "OutreachEngine/1.0 (+local)")
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("search %q: status %d", query, res.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("search %q: decode: %w", query, err)
	}
	return body.Data, nil
}
