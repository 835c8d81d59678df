package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/grbod/shipdash/internal/domain"
)

// GetJSON issues an authenticated GET and decodes the JSON response into v.
// On a 401 it invalidates the token and retries exactly once with a fresh
// exchange; network errors, timeouts and 5xx map to ErrorTypeUnavailable.
// newReq must build a fresh request each call so the retry does not reuse a
// consumed body or stale header.
func GetJSON(ctx context.Context, tag domain.ProviderTag, hc *http.Client, tokens TokenSource, newReq func(ctx context.Context) (*http.Request, error), v interface{}) error {
	retried := false
	for {
		bearerValue, err := tokens.Token(ctx)
		if err != nil {
			return err
		}

		req, err := newReq(ctx)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+bearerValue)
		req.Header.Set("Accept", "application/json")

		resp, err := hc.Do(req)
		if err != nil {
			return domain.ErrUnavailable(tag, "request failed").WithCause(err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return domain.ErrUnavailable(tag, "read response").WithCause(err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := json.Unmarshal(body, v); err != nil {
				return domain.ErrUnavailable(tag, "parse response").WithCause(err)
			}
			return nil

		case resp.StatusCode == http.StatusUnauthorized && !retried:
			// Token rejected mid-lifetime: discard and retry once
			// after a fresh exchange.
			tokens.Invalidate()
			retried = true
			continue

		case resp.StatusCode == http.StatusUnauthorized:
			return domain.ErrAuthentication(tag, "request unauthorized after token refresh").
				WithStatusCode(resp.StatusCode)

		case resp.StatusCode >= 500:
			return domain.ErrUnavailable(tag,
				fmt.Sprintf("provider returned %d", resp.StatusCode)).WithStatusCode(resp.StatusCode)

		default:
			return domain.ErrUnavailable(tag,
				fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, truncate(body, 200))).
				WithStatusCode(resp.StatusCode)
		}
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
