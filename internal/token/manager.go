// Package token manages OAuth2 client-credentials bearer tokens, one
// Manager instance per provider. The token is owned by its Manager and never
// shared across providers.
package token

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/grbod/shipdash/internal/domain"
)

// expiryMargin refreshes slightly early so a token never expires mid-call.
const expiryMargin = 30 * time.Second

// ExchangeStyle selects how the client-credentials exchange is encoded.
type ExchangeStyle int

const (
	// StyleJSON posts a JSON body with client_id/client_secret/grant_type
	// (the freight provider's token endpoint).
	StyleJSON ExchangeStyle = iota

	// StyleBasicForm posts form-encoded grant_type=client_credentials
	// with HTTP basic auth (the parcel provider's token endpoint).
	StyleBasicForm
)

// tokenResponse is the provider's token endpoint payload.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type bearer struct {
	value     string
	expiresAt time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(m *Manager) { m.httpClient = hc }
}

// WithExchangeStyle sets the token endpoint encoding.
func WithExchangeStyle(style ExchangeStyle) Option {
	return func(m *Manager) { m.style = style }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager holds the current bearer token for one provider and refreshes it
// on expiry or forced invalidation. Concurrent callers needing a refresh
// share a single in-flight exchange.
type Manager struct {
	provider     domain.ProviderTag
	clientID     string
	clientSecret string
	tokenURL     string
	style        ExchangeStyle
	httpClient   *http.Client
	logger       *slog.Logger
	now          func() time.Time

	mu      sync.Mutex
	current *bearer
	sf      singleflight.Group
}

// NewManager creates a token manager for one provider.
func NewManager(provider domain.ProviderTag, clientID, clientSecret, tokenURL string, opts ...Option) *Manager {
	m := &Manager{
		provider:     provider,
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     tokenURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Token returns a valid bearer value, exchanging credentials if the held
// token is absent or expired. Exchange rejection is an authentication error
// and is not retried: bad credentials will not become good on retry.
func (m *Manager) Token(ctx context.Context) (string, error) {
	if v, ok := m.valid(); ok {
		return v, nil
	}

	// One exchange serves all concurrent callers.
	v, err, _ := m.sf.Do("exchange", func() (interface{}, error) {
		// A racing caller may have refreshed while we queued.
		if v, ok := m.valid(); ok {
			return v, nil
		}
		b, err := m.exchange(ctx)
		if err != nil {
			return "", err
		}
		m.mu.Lock()
		m.current = b
		m.mu.Unlock()
		m.logger.Debug("token refreshed",
			slog.String("provider", string(m.provider)),
			slog.Time("expires_at", b.expiresAt))
		return b.value, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate discards the current token, forcing the next Token call to
// re-exchange. Called when a provider API reports 401.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	m.logger.Debug("token invalidated", slog.String("provider", string(m.provider)))
}

func (m *Manager) valid() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil || m.current.value == "" {
		return "", false
	}
	if !m.now().Add(expiryMargin).Before(m.current.expiresAt) {
		return "", false
	}
	return m.current.value, true
}

func (m *Manager) exchange(ctx context.Context) (*bearer, error) {
	req, err := m.exchangeRequest(ctx)
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, domain.ErrUnavailable(m.provider, "token endpoint unreachable").WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.ErrUnavailable(m.provider, "read token response").WithCause(err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= 500 {
			return nil, domain.ErrUnavailable(m.provider,
				fmt.Sprintf("token endpoint returned %d", resp.StatusCode)).WithStatusCode(resp.StatusCode)
		}
		return nil, domain.ErrAuthentication(m.provider,
			fmt.Sprintf("credential exchange rejected (status %d)", resp.StatusCode)).WithStatusCode(resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, domain.ErrUnavailable(m.provider, "parse token response").WithCause(err)
	}
	if tr.AccessToken == "" {
		return nil, domain.ErrAuthentication(m.provider, "token response missing access_token")
	}

	ttl := time.Duration(tr.ExpiresIn) * time.Second
	if ttl <= 0 {
		// Provider did not report a TTL; assume a short-lived token.
		ttl = 10 * time.Minute
	}

	return &bearer{
		value:     tr.AccessToken,
		expiresAt: m.now().Add(ttl),
	}, nil
}

func (m *Manager) exchangeRequest(ctx context.Context) (*http.Request, error) {
	switch m.style {
	case StyleBasicForm:
		form := url.Values{}
		form.Set("grant_type", "client_credentials")
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.tokenURL, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.SetBasicAuth(m.clientID, m.clientSecret)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	default:
		payload, err := json.Marshal(map[string]string{
			"client_id":     m.clientID,
			"client_secret": m.clientSecret,
			"grant_type":    "client_credentials",
		})
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.tokenURL, strings.NewReader(string(payload)))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}
}
