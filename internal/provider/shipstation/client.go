package shipstation

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/grbod/shipdash/internal/domain"
	"github.com/grbod/shipdash/internal/provider"
)

// pageSize is the provider's maximum listing page size.
const pageSize = 500

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

// Client is an authenticated HTTP client for the parcel-carrier API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     provider.TokenSource
}

// NewClient creates a parcel API client using the given token source.
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

// DateRange bounds a listing call by create date.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ListShipments fetches every page of the shipment listing in the range.
func (c *Client) ListShipments(ctx context.Context, dr DateRange) ([]rawShipment, error) {
	var all []rawShipment
	for page := 1; ; page++ {
		var resp shipmentsResponse
		if err := c.getPage(ctx, "/shipments", nil, dr, page, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Shipments...)
		if page >= resp.Pages {
			break
		}
	}
	return all, nil
}

// ListOrders fetches every page of the order listing with the given status
// in the range.
func (c *Client) ListOrders(ctx context.Context, status string, dr DateRange) ([]rawOrder, error) {
	extra := url.Values{}
	if status != "" {
		extra.Set("orderStatus", status)
	}
	var all []rawOrder
	for page := 1; ; page++ {
		var resp ordersResponse
		if err := c.getPage(ctx, "/orders", extra, dr, page, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Orders...)
		if page >= resp.Pages {
			break
		}
	}
	return all, nil
}

func (c *Client) getPage(ctx context.Context, path string, extra url.Values, dr DateRange, page int, v interface{}) error {
	return provider.GetJSON(ctx, domain.ProviderParcel, c.httpClient, c.tokens, func(ctx context.Context) (*http.Request, error) {
		q := url.Values{}
		for key, vals := range extra {
			for _, val := range vals {
				q.Add(key, val)
			}
		}
		q.Set("createDateStart", dr.Start.Format("2006-01-02"))
		q.Set("createDateEnd", dr.End.Format("2006-01-02"))
		q.Set("pageSize", strconv.Itoa(pageSize))
		q.Set("page", strconv.Itoa(page))
		return http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	}, v)
}
