package remote

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

const (
	itemsQuery = `{ items { id name shortName updated } }`
	typesQuery = `{ items { id updated types } }`
	keysQuery  = `{ items(type: keys) { id updated properties { ... on ItemPropertiesKey { uses } } } }`
	salesQuery = `{ items { id updated sellFor { vendor { name } price currency priceRUB } } }`
)

type graphqlRequest struct {
	Query string `json:"query"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse[T any] struct {
	Data struct {
		Items []*T `json:"items"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

// DevClient queries the tarkov.dev GraphQL API.
type DevClient struct {
	endpoint  string
	transport *Transport
}

// NewDevClient creates a tarkov.dev client.
func NewDevClient(cfg Config, transport *Transport) *DevClient {
	return &DevClient{endpoint: cfg.TarkovDevEndpoint, transport: transport}
}

// Items returns the identity list of every item.
func (c *DevClient) Items(ctx context.Context) ([]DevItem, error) {
	return queryItems[DevItem](ctx, c, "dev-items", itemsQuery)
}

// ItemTypes returns the type labels of every item.
func (c *DevClient) ItemTypes(ctx context.Context) ([]DevTypedItem, error) {
	return queryItems[DevTypedItem](ctx, c, "dev-types", typesQuery)
}

// Keys returns every key item with its uses counter.
func (c *DevClient) Keys(ctx context.Context) ([]DevKey, error) {
	return queryItems[DevKey](ctx, c, "dev-keys", keysQuery)
}

// SellPrices returns the vendor buy-back offers of every item.
func (c *DevClient) SellPrices(ctx context.Context) ([]DevSellItem, error) {
	return queryItems[DevSellItem](ctx, c, "dev-sales", salesQuery)
}

func queryItems[T any](ctx context.Context, c *DevClient, dataset, query string) ([]T, error) {
	body, err := json.Marshal(graphqlRequest{Query: query})
	if err != nil {
		return nil, err
	}

	raw, err := c.transport.Fetch(ctx, dataset, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var resp graphqlResponse[T]
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%s: malformed payload: %w", dataset, err)
	}
	if len(resp.Errors) > 0 && len(resp.Data.Items) == 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("%s: graphql errors: %s", dataset, strings.Join(msgs, "; "))
	}

	// tarkov.dev returns null entries for items it failed to resolve.
	items := make([]T, 0, len(resp.Data.Items))
	for _, it := range resp.Data.Items {
		if it != nil {
			items = append(items, *it)
		}
	}
	return items, nil
}
