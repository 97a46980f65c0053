// crimewatch-mcp: MCP server for a municipal crime-incident dataset
// SPDX-License-Identifier: MIT
//
// Minimal ArcGIS feature-server client for the one-off incident export.

package arcgis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"crimewatch-mcp/internal/fanout"
	"go.uber.org/zap"
)

// Feature is one exported row; attribute keys come from the source layer.
type Feature struct {
	Attributes map[string]any `json:"attributes"`
}

type Client struct {
	http    *http.Client
	baseURL string
	logger  *zap.Logger
}

// New builds a client for a feature-server layer URL
// (e.g. https://host/arcgis/rest/services/Crime/MapServer/0).
func New(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		http:    &http.Client{Timeout: 60 * time.Second},
		baseURL: baseURL,
		logger:  logger,
	}
}

// Count asks the layer for its total feature count.
func (c *Client) Count(ctx context.Context) (int, error) {
	q := url.Values{}
	q.Set("where", "1=1")
	q.Set("returnCountOnly", "true")
	q.Set("f", "json")
	var resp struct {
		Count int `json:"count"`
	}
	if err := c.get(ctx, q, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// FetchPage returns features starting at offset, at most pageSize of them.
func (c *Client) FetchPage(ctx context.Context, offset, pageSize int) ([]Feature, error) {
	q := url.Values{}
	q.Set("where", "1=1")
	q.Set("outFields", "*")
	q.Set("f", "json")
	q.Set("resultOffset", strconv.Itoa(offset))
	q.Set("resultRecordCount", strconv.Itoa(pageSize))
	var resp struct {
		Features []Feature `json:"features"`
		Error    *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := c.get(ctx, q, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("feature server error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	return resp.Features, nil
}

// FetchAll pages through the layer with at most parallelism requests in
// flight and returns features in offset order.
func (c *Client) FetchAll(ctx context.Context, pageSize, parallelism int) ([]Feature, error) {
	if pageSize <= 0 {
		pageSize = 1000
	}
	total, err := c.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count features: %w", err)
	}
	c.logger.Info("exporting features", zap.Int("total", total), zap.Int("page_size", pageSize))

	var offsets []int
	for o := 0; o < total; o += pageSize {
		offsets = append(offsets, o)
	}
	pages, err := fanout.Fanout(ctx, parallelism, offsets, func(ctx context.Context, offset int) ([]Feature, error) {
		return c.FetchPage(ctx, offset, pageSize)
	})
	if err != nil {
		return nil, err
	}
	var all []Feature
	for _, p := range pages {
		all = append(all, p...)
	}
	return all, nil
}

func (c *Client) get(ctx context.Context, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/query?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("feature server returned %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
