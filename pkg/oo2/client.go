package oo2

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"catalog-assistant-be/internal/pkg/logger"
	"catalog-assistant-be/pkg/catalog"
)

// Client fetches raw catalog records from the OO2 webservice. Formations are
// paginated and fetched in paced page groups: the upstream has an unspecified
// rate limit and bans aggressive crawlers, so the inter-page and inter-group
// delays are a correctness requirement, not tuning.
type Client struct {
	httpClient *http.Client
	baseURL    string
	basicAuth  string

	totalPages int
	chunkSize  int
	pageDelay  time.Duration
	chunkDelay time.Duration

	log logger.ILogger
}

type Config struct {
	BaseURL    string
	BasicAuth  string // pre-encoded Basic token, optional
	TotalPages int
	ChunkSize  int
	PageDelay  time.Duration
	ChunkDelay time.Duration
	Timeout    time.Duration
}

func NewClient(cfg Config, log logger.ILogger) *Client {
	if cfg.TotalPages <= 0 {
		cfg.TotalPages = 16
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 300 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		basicAuth:  cfg.BasicAuth,
		totalPages: cfg.TotalPages,
		chunkSize:  cfg.ChunkSize,
		pageDelay:  cfg.PageDelay,
		chunkDelay: cfg.ChunkDelay,
		log:        log,
	}
}

// FetchFormations walks all formation pages in groups of chunkSize. A failed
// or empty page is logged and skipped; the sync keeps whatever it got.
func (c *Client) FetchFormations(ctx context.Context) ([]catalog.Record, error) {
	c.log.Info("oo2", "starting formations sync", map[string]interface{}{"pages": c.totalPages})

	var all []catalog.Record
	for chunk := 0; chunk < c.totalPages; chunk += c.chunkSize {
		endPage := chunk + c.chunkSize
		if endPage > c.totalPages {
			endPage = c.totalPages
		}

		for page := chunk; page < endPage; page++ {
			url := fmt.Sprintf("%s/formations?page=%d", c.baseURL, page)
			records := c.fetchJSON(ctx, url)
			if len(records) > 0 {
				all = append(all, records...)
				c.log.Info("oo2", "page fetched", map[string]interface{}{"page": page + 1, "count": len(records)})
			} else {
				c.log.Warn("oo2", "page empty or failed", map[string]interface{}{"page": page + 1})
			}

			if err := c.pause(ctx, c.pageDelay); err != nil {
				return all, err
			}
		}

		if err := c.pause(ctx, c.chunkDelay); err != nil {
			return all, err
		}
	}

	c.log.Info("oo2", "formations sync finished", map[string]interface{}{"total": len(all)})
	return all, nil
}

// FetchSessions retrieves the full session list in one request.
func (c *Client) FetchSessions(ctx context.Context) ([]catalog.Record, error) {
	return c.fetchJSON(ctx, c.baseURL+"/sessions/json"), nil
}

// fetchJSON soft-fails to an empty slice: an unreachable upstream or a
// non-JSON body means a partial catalog, never an aborted sync.
func (c *Client) fetchJSON(ctx context.Context, url string) []catalog.Record {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.log.Error("oo2", "build request failed", map[string]interface{}{"url": url, "error": err.Error()})
		return nil
	}
	if c.basicAuth != "" {
		req.Header.Set("Authorization", "Basic "+c.basicAuth)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("oo2", "request failed", map[string]interface{}{"url": url, "error": err.Error()})
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Error("oo2", "read body failed", map[string]interface{}{"url": url, "error": err.Error()})
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("oo2", "non-200 response", map[string]interface{}{"url": url, "status": resp.StatusCode})
		return nil
	}

	var records []catalog.Record
	if err := json.Unmarshal(body, &records); err != nil {
		c.log.Warn("oo2", "response is not a JSON array", map[string]interface{}{"url": url, "error": err.Error()})
		return nil
	}
	return records
}

func (c *Client) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
