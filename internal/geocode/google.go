// Package geocode resolves free-text addresses to a normalized address and coordinates.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
)

// ErrUnavailable is returned when the geocoding service fails or answers with
// something other than a result set.
var ErrUnavailable = errors.New("geocoder unavailable")

const maxResponseBytes = 1 << 20

// Result is one candidate match for an address.
type Result struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geocoder resolves an address. An empty slice with a nil error means the
// address could not be resolved.
type Geocoder interface {
	Resolve(ctx context.Context, address string) ([]Result, error)
}

// GoogleClient talks to the Google Maps Geocoding API.
type GoogleClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewGoogleClient(apiKey, baseURL string, timeout time.Duration) *GoogleClient {
	return &GoogleClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Resolve returns every match in the order the API ranks them.
func (c *GoogleClient) Resolve(ctx context.Context, address string) ([]Result, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid geocoder url: %w", err)
	}
	q := u.Query()
	q.Set("address", address)
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocoder request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: malformed response", ErrUnavailable)
	}

	switch status := gjson.GetBytes(body, "status").String(); status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s %s", ErrUnavailable, status, gjson.GetBytes(body, "error_message").String())
	}

	var results []Result
	gjson.GetBytes(body, "results").ForEach(func(_, r gjson.Result) bool {
		results = append(results, Result{
			Address:   r.Get("formatted_address").String(),
			Latitude:  r.Get("geometry.location.lat").Float(),
			Longitude: r.Get("geometry.location.lng").Float(),
		})
		return true
	})

	return results, nil
}
