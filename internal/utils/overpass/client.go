package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/davidmmovement/agent-finder-api/internal/utils"
)

const DefaultBaseURL = "https://overpass-api.de/api/interpreter"

// Client talks to an Overpass API interpreter endpoint.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 40 * time.Second},
	}
}

// Footprint is one mapped building: its free-form OSM tags plus the
// outline geometry when the element carries one.
type Footprint struct {
	Tags     map[string]string `json:"tags"`
	Geometry []utils.LatLng    `json:"geometry"`
}

type overpassResponse struct {
	Elements []struct {
		Type     string            `json:"type"`
		Tags     map[string]string `json:"tags"`
		Geometry []utils.LatLng    `json:"geometry"`
	} `json:"elements"`
}

/*
BuildingsAround returns the building ways/relations within radiusMeters
of the point. An empty slice is a legitimate result, not an error.
*/
func (c *Client) BuildingsAround(ctx context.Context, lat, lng, radiusMeters float64) ([]Footprint, error) {
	query := fmt.Sprintf(`
        [out:json][timeout:30];
        (
          way["building"](around:%.0f,%f,%f);
          relation["building"](around:%.0f,%f,%f);
        );
        out geom tags;
    `, radiusMeters, lat, lng, radiusMeters, lat, lng)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.BaseURL,
		strings.NewReader("data="+url.QueryEscape(query)),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass query failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass returned status %d", resp.StatusCode)
	}

	var decoded overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to parse overpass response: %w", err)
	}

	out := make([]Footprint, 0, len(decoded.Elements))
	for _, el := range decoded.Elements {
		out = append(out, Footprint{Tags: el.Tags, Geometry: el.Geometry})
	}
	return out, nil
}
