// Package config loads layered service configuration: environment variables
// first, then an optional config file which takes precedence, per the
// documented resolution order. Credentials are resolved once at startup and
// read-only afterwards.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/grbod/shipdash/internal/domain"
)

const (
	// EnvPrefix namespaces the service's environment variables,
	// e.g. SHIPDASH_FREIGHTVIEW__CLIENT_ID -> freightview.client_id.
	EnvPrefix = "SHIPDASH_"

	// DefaultConfigFile is the config file probed in the working directory.
	DefaultConfigFile = "config.yaml"

	defaultFreightviewBaseURL = "https://api.freightview.com/v2.0"
	defaultShipstationBaseURL = "https://ssapi.shipstation.com"
)

type Config struct {
	Server      ServerConfig   `koanf:"server"`
	Cache       CacheConfig    `koanf:"cache"`
	Fetch       FetchConfig    `koanf:"fetch"`
	Freightview ProviderConfig `koanf:"freightview"`
	Shipstation ProviderConfig `koanf:"shipstation"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type CacheConfig struct {
	// TTL is a duration string like "15m".
	TTL string `koanf:"ttl"`
}

// TTLDuration parses the configured TTL, falling back to 15 minutes.
func (c CacheConfig) TTLDuration() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

type FetchConfig struct {
	DaysBack int `koanf:"days_back"`
}

type ProviderConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	BaseURL      string `koanf:"base_url"`
	TokenURL     string `koanf:"token_url"`
}

// Credentials is the immutable client-credential pair for one provider.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads configuration from the environment and DefaultConfigFile.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom reads configuration from the environment and the given file.
// The file is optional; when present its values override the environment.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	// Environment first so the config file wins when both are present.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load env config: %w", err)
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		// A missing file is fine, env-only configuration is supported.
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	applyDefaults(k)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Substitute ${VAR} references in secret fields so the config file can
	// point at the environment without embedding secrets.
	cfg.Freightview.ClientID = substituteEnvVars(cfg.Freightview.ClientID)
	cfg.Freightview.ClientSecret = substituteEnvVars(cfg.Freightview.ClientSecret)
	cfg.Shipstation.ClientID = substituteEnvVars(cfg.Shipstation.ClientID)
	cfg.Shipstation.ClientSecret = substituteEnvVars(cfg.Shipstation.ClientSecret)

	return &cfg, nil
}

func applyDefaults(k *koanf.Koanf) {
	if !k.Exists("server.port") {
		k.Set("server.port", 8080)
	}
	if !k.Exists("cache.ttl") {
		k.Set("cache.ttl", "15m")
	}
	if !k.Exists("fetch.days_back") {
		k.Set("fetch.days_back", domain.DefaultDaysBack)
	}
	if !k.Exists("freightview.base_url") {
		k.Set("freightview.base_url", defaultFreightviewBaseURL)
	}
	if !k.Exists("freightview.token_url") {
		k.Set("freightview.token_url", defaultFreightviewBaseURL+"/auth/token")
	}
	if !k.Exists("shipstation.base_url") {
		k.Set("shipstation.base_url", defaultShipstationBaseURL)
	}
	if !k.Exists("shipstation.token_url") {
		k.Set("shipstation.token_url", defaultShipstationBaseURL+"/oauth/token")
	}
}

// Provider returns the configuration block for the given provider tag.
func (c *Config) Provider(tag domain.ProviderTag) (ProviderConfig, error) {
	switch tag {
	case domain.ProviderFreight:
		return c.Freightview, nil
	case domain.ProviderParcel:
		return c.Shipstation, nil
	default:
		return ProviderConfig{}, domain.ErrConfiguration(tag, "unknown provider")
	}
}

// Credentials resolves the client-credential pair for a provider. Missing
// values are a hard startup failure, never retried at request time.
func (c *Config) Credentials(tag domain.ProviderTag) (Credentials, error) {
	pc, err := c.Provider(tag)
	if err != nil {
		return Credentials{}, err
	}
	if pc.ClientID == "" || pc.ClientSecret == "" {
		return Credentials{}, domain.ErrConfiguration(tag,
			"missing client_id or client_secret (set in config file or "+EnvPrefix+"* environment)")
	}
	return Credentials{ClientID: pc.ClientID, ClientSecret: pc.ClientSecret}, nil
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
