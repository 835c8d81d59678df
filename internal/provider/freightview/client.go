package freightview

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/grbod/shipdash/internal/domain"
	"github.com/grbod/shipdash/internal/provider"
)

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Client is an authenticated HTTP client for the freight-quoting API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     provider.TokenSource
}

// NewClient creates a freight API client using the given token source.
func NewClient(baseURL string, tokens provider.TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListShipments fetches the shipment listing filtered by one status value.
func (c *Client) ListShipments(ctx context.Context, status string) (*shipmentsResponse, error) {
	var out shipmentsResponse
	err := provider.GetJSON(ctx, domain.ProviderFreight, c.httpClient, c.tokens, func(ctx context.Context) (*http.Request, error) {
		q := url.Values{}
		q.Set("status", status)
		return http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/shipments?"+q.Encode(), nil)
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
