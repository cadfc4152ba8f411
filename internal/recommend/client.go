// Package recommend calls the external preference model.
package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/redmonkez12/wasteless-api/internal/category"
)

// ErrUnavailable wraps every failure of the recommendation call.
var ErrUnavailable = errors.New("recommendation service unavailable")

// Recommender maps a category histogram to the preferred category.
type Recommender interface {
	Predict(ctx context.Context, h category.Histogram) (category.Category, error)
}

// Client posts the histogram as JSON and reads the category back. The service
// may answer with a bare JSON string or an object carrying a "category" field.
type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Predict(ctx context.Context, h category.Histogram) (category.Category, error) {
	if c.url == "" {
		return "", fmt.Errorf("%w: RECOMMENDER_URL not configured", ErrUnavailable)
	}

	payload, err := json.Marshal(h)
	if err != nil {
		return "", fmt.Errorf("failed to encode histogram: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build recommendation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	name := extractCategory(body)
	cat, ok := category.Parse(name)
	if !ok {
		return "", fmt.Errorf("%w: unknown category %q", ErrUnavailable, name)
	}

	return cat, nil
}

func extractCategory(body []byte) string {
	if !gjson.ValidBytes(body) {
		return strings.TrimSpace(string(body))
	}
	res := gjson.ParseBytes(body)
	if res.Type == gjson.String {
		return res.String()
	}
	return res.Get("category").String()
}
