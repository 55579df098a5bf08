package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/foodcircle/foodcircle-backend/pkg/errors"
)

const (
	defaultBaseURL             = "https://maps.googleapis.com/maps/api"
	directionsBaseURL          = "https://www.google.com/maps/dir/"
	staticMapSize              = "600x300"
	staticMapZoom              = 15
	requestBodyReadLimit int64 = 1024
)

var errAPIKeyRequired = errors.New("google maps api key is required")

// Client wraps the Google Maps geocoding and static map APIs used for pickup guidance.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured Maps API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the Google Maps client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}

	return client, nil
}

// ReverseGeocode resolves a human-readable address for the provided coordinates.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	if c == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "google maps client not configured")
	}

	endpoint := fmt.Sprintf("%s/geocode/json", strings.TrimRight(c.baseURL, "/"))
	query := url.Values{}
	query.Set("latlng", fmt.Sprintf("%f,%f", lat, lng))
	query.Set("key", c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build geocode request")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute geocode request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "geocode request failed")
	}

	var apiResp struct {
		Status  string `json:"status"`
		Results []struct {
			FormattedAddress string `json:"formatted_address"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode geocode response")
	}

	if apiResp.Status != "OK" || len(apiResp.Results) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("geocode returned status %s", apiResp.Status))
	}

	return apiResp.Results[0].FormattedAddress, nil
}

// StaticMapURL builds a static map image URL centered on the coordinates with a marker.
func (c *Client) StaticMapURL(lat, lng float64) string {
	if c == nil {
		return ""
	}
	coords := fmt.Sprintf("%f,%f", lat, lng)
	query := url.Values{}
	query.Set("center", coords)
	query.Set("zoom", fmt.Sprintf("%d", staticMapZoom))
	query.Set("size", staticMapSize)
	query.Set("markers", coords)
	query.Set("key", c.apiKey)
	return fmt.Sprintf("%s/staticmap?%s", strings.TrimRight(c.baseURL, "/"), query.Encode())
}

// DirectionsURL builds a public Google Maps directions link to the coordinates.
func DirectionsURL(lat, lng float64) string {
	query := url.Values{}
	query.Set("api", "1")
	query.Set("destination", fmt.Sprintf("%f,%f", lat, lng))
	query.Set("travelmode", "driving")
	return directionsBaseURL + "?" + query.Encode()
}
