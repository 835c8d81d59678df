// Package registry wires configured providers into fetcher instances, each
// with its own token manager. Credential resolution failures surface here as
// startup errors.
package registry

import (
	"log/slog"

	"github.com/grbod/shipdash/internal/config"
	"github.com/grbod/shipdash/internal/domain"
	"github.com/grbod/shipdash/internal/provider"
	"github.com/grbod/shipdash/internal/provider/freightview"
	"github.com/grbod/shipdash/internal/provider/shipstation"
	"github.com/grbod/shipdash/internal/token"
)

// BuildFetchers constructs the fetcher for every configured provider. Both
// providers must be fully configured; a missing credential pair is a
// configuration error, not a runtime condition.
func BuildFetchers(cfg *config.Config, logger *slog.Logger) ([]provider.Fetcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	freight, err := buildFreight(cfg, logger)
	if err != nil {
		return nil, err
	}
	parcel, err := buildParcel(cfg, logger)
	if err != nil {
		return nil, err
	}
	return []provider.Fetcher{freight, parcel}, nil
}

func buildFreight(cfg *config.Config, logger *slog.Logger) (provider.Fetcher, error) {
	creds, err := cfg.Credentials(domain.ProviderFreight)
	if err != nil {
		return nil, err
	}
	tokens := token.NewManager(domain.ProviderFreight,
		creds.ClientID, creds.ClientSecret, cfg.Freightview.TokenURL,
		token.WithExchangeStyle(token.StyleJSON),
		token.WithLogger(logger),
	)
	client := freightview.NewClient(cfg.Freightview.BaseURL, tokens)
	return freightview.New(client, logger), nil
}

func buildParcel(cfg *config.Config, logger *slog.Logger) (provider.Fetcher, error) {
	creds, err := cfg.Credentials(domain.ProviderParcel)
	if err != nil {
		return nil, err
	}
	tokens := token.NewManager(domain.ProviderParcel,
		creds.ClientID, creds.ClientSecret, cfg.Shipstation.TokenURL,
		token.WithExchangeStyle(token.StyleBasicForm),
		token.WithLogger(logger),
	)
	client := shipstation.NewClient(cfg.Shipstation.BaseURL, tokens)
	return shipstation.New(client, logger), nil
}
