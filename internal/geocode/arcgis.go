package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

const arcgisBaseURL = "https://geocode.arcgis.com/arcgis/rest/services/World/GeocodeServer/findAddressCandidates"

// ArcGISClient geocodes through the public ArcGIS World Geocoding Service.
type ArcGISClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewArcGISClient(timeout time.Duration) *ArcGISClient {
	return &ArcGISClient{
		baseURL: arcgisBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
			},
		},
	}
}

func (c *ArcGISClient) Name() string { return "arcgis" }

type arcgisResponse struct {
	Candidates []struct {
		Address  string `json:"address"`
		Location struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"location"`
	} `json:"candidates"`
}

func (c *ArcGISClient) Geocode(ctx context.Context, query string) (*Location, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid arcgis base url: %w", err)
	}

	q := u.Query()
	q.Set("f", "json")
	q.Set("singleLine", query)
	q.Set("maxLocations", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call arcgis api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arcgis api status %d", resp.StatusCode)
	}

	var body arcgisResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(body.Candidates) == 0 {
		return nil, nil
	}
	best := body.Candidates[0]
	return &Location{
		Address: best.Address,
		Lat:     best.Location.Y,
		Lon:     best.Location.X,
	}, nil
}
