// Package mapbox is a thin client for the Mapbox geocoding API.
package mapbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const baseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

// UnknownLocation is returned by ReverseGeocode when Mapbox has no
// place name for the coordinates.
const UnknownLocation = "Unknown location"

// ErrNoResults is returned by Geocode when a query matches nothing.
var ErrNoResults = errors.New("no geocoding results")

// Result is a resolved place.
type Result struct {
	PlaceName string  `json:"place_name"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Client calls the Mapbox geocoding API. Requests are single-shot
// with a 10 second timeout; callers decide whether to retry.
type Client struct {
	accessToken string
	httpClient  *http.Client
	baseURL     string
}

// NewClient creates a Mapbox client with the given access token.
func NewClient(accessToken string) *Client {
	return &Client{
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		baseURL:     baseURL,
	}
}

type geocodeResponse struct {
	Features []struct {
		PlaceName string    `json:"place_name"`
		Center    []float64 `json:"center"` // [lng, lat]
	} `json:"features"`
}

// Geocode resolves a free-text query to coordinates. A query with no
// matches returns ErrNoResults.
func (c *Client) Geocode(ctx context.Context, query string) (*Result, error) {
	endpoint := fmt.Sprintf("%s/%s.json", c.baseURL, url.PathEscape(query))
	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	if len(resp.Features) == 0 {
		return nil, ErrNoResults
	}

	f := resp.Features[0]
	if len(f.Center) < 2 {
		return nil, ErrNoResults
	}
	return &Result{
		PlaceName: f.PlaceName,
		Longitude: f.Center[0],
		Latitude:  f.Center[1],
	}, nil
}

// ReverseGeocode resolves coordinates to a place name. Coordinates
// Mapbox cannot name come back as UnknownLocation, not an error.
func (c *Client) ReverseGeocode(ctx context.Context, longitude, latitude float64) (string, error) {
	endpoint := fmt.Sprintf("%s/%f,%f.json", c.baseURL, longitude, latitude)
	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return "", err
	}

	if len(resp.Features) == 0 {
		return UnknownLocation, nil
	}
	return resp.Features[0].PlaceName, nil
}

func (c *Client) get(ctx context.Context, endpoint string) (*geocodeResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	q.Set("access_token", c.accessToken)
	q.Set("limit", "1")
	req.URL.RawQuery = q.Encode()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mapbox request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mapbox returned status %d", res.StatusCode)
	}

	var parsed geocodeResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode mapbox response: %w", err)
	}
	return &parsed, nil
}
