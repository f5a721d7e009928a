package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

const defaultEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"

// Result holds the parts of a geocoding response a store record keeps.
type Result struct {
	Formatted string  `json:"formatted"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Country   string  `json:"country"`
	Zip       string  `json:"zip"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

// Client wraps the Google Maps Geocoding API.
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a geocoding client from the GOOGLE_MAPS_API_KEY env var.
// Returns nil, nil if the key is not set (graceful degradation).
func NewClient() (*Client, error) {
	key := os.Getenv("GOOGLE_MAPS_API_KEY")
	if key == "" {
		return nil, nil
	}
	return New(key, defaultEndpoint), nil
}

func New(apiKey, endpoint string) *Client {
	return &Client{
		apiKey:   apiKey,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type geocodeResponse struct {
	Results []geocodeResult `json:"results"`
	Status  string          `json:"status"`
}

type geocodeResult struct {
	AddressComponents []addressComponent `json:"address_components"`
	FormattedAddress  string             `json:"formatted_address"`
	Geometry          struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

type addressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// Geocode converts a free-form store address into coordinates.
func (c *Client) Geocode(ctx context.Context, address string) (*Result, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding API returned HTTP %d", resp.StatusCode)
	}

	var geoResp geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&geoResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if geoResp.Status != "OK" || len(geoResp.Results) == 0 {
		return nil, fmt.Errorf("geocoding failed: status=%s", geoResp.Status)
	}

	result := geoResp.Results[0]
	out := &Result{
		Formatted: result.FormattedAddress,
		Lat:       result.Geometry.Location.Lat,
		Lng:       result.Geometry.Location.Lng,
	}
	for _, comp := range result.AddressComponents {
		for _, t := range comp.Types {
			switch t {
			case "postal_code":
				out.Zip = comp.ShortName
			case "administrative_area_level_1":
				out.State = comp.ShortName
			case "country":
				out.Country = comp.ShortName
			case "locality":
				out.City = comp.LongName
			}
		}
	}
	return out, nil
}
