package remote

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// MarketClient fetches the tarkov-market item datasets.
type MarketClient struct {
	baseURL   string
	apiKey    string
	transport *Transport
}

// NewMarketClient creates a tarkov-market client.
func NewMarketClient(cfg Config, transport *Transport) *MarketClient {
	return &MarketClient{
		baseURL:   strings.TrimRight(cfg.MarketBaseURL, "/"),
		apiKey:    cfg.MarketAPIKey,
		transport: transport,
	}
}

// AllItems returns every item of the mode's dataset.
func (c *MarketClient) AllItems(ctx context.Context, mode Mode) ([]MarketItem, error) {
	var path string
	switch mode {
	case ModePvE:
		path = "/api/v1/pve/items/all"
	case ModePvP:
		path = "/api/v1/items/all"
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	dataset := "market-" + string(mode)

	raw, err := c.transport.Fetch(ctx, dataset, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var items []MarketItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%s: malformed payload: %w", dataset, err)
	}
	return items, nil
}
