package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grbod/shipdash/internal/domain"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	orig, had := os.LookupEnv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, orig)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %v, want 8080", cfg.Server.Port)
	}
	if got := cfg.Cache.TTLDuration().Minutes(); got != 15 {
		t.Errorf("cache TTL = %v minutes, want 15", got)
	}
	if cfg.Freightview.BaseURL == "" || cfg.Freightview.TokenURL == "" {
		t.Error("expected default freightview URLs")
	}
	if cfg.Shipstation.BaseURL == "" || cfg.Shipstation.TokenURL == "" {
		t.Error("expected default shipstation URLs")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	setEnv(t, "SHIPDASH_SERVER__PORT", "9000")
	setEnv(t, "SHIPDASH_FREIGHTVIEW__CLIENT_ID", "env-id")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %v, want 9000", cfg.Server.Port)
	}
	if cfg.Freightview.ClientID != "env-id" {
		t.Errorf("client id = %q, want env-id", cfg.Freightview.ClientID)
	}
}

func TestConfigFileBeatsEnvironment(t *testing.T) {
	setEnv(t, "SHIPDASH_FREIGHTVIEW__CLIENT_ID", "env-id")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "freightview:\n  client_id: file-id\n  client_secret: file-secret\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Freightview.ClientID != "file-id" {
		t.Errorf("client id = %q, want file-id (file takes precedence)", cfg.Freightview.ClientID)
	}
}

func TestCredentials(t *testing.T) {
	t.Run("resolved when both present", func(t *testing.T) {
		cfg := &Config{Freightview: ProviderConfig{ClientID: "id", ClientSecret: "secret"}}
		creds, err := cfg.Credentials(domain.ProviderFreight)
		if err != nil {
			t.Fatalf("Credentials() error = %v", err)
		}
		if creds.ClientID != "id" || creds.ClientSecret != "secret" {
			t.Errorf("Credentials() = %+v", creds)
		}
	})

	t.Run("missing secret is a configuration error", func(t *testing.T) {
		cfg := &Config{Shipstation: ProviderConfig{ClientID: "id"}}
		_, err := cfg.Credentials(domain.ProviderParcel)
		if err == nil {
			t.Fatal("Credentials() error = nil, want configuration error")
		}
		if !domain.IsConfiguration(err) {
			t.Errorf("Credentials() error = %v, want ErrorTypeConfiguration", err)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := &Config{}
		if _, err := cfg.Credentials(domain.ProviderTag("bogus")); err == nil {
			t.Fatal("Credentials() error = nil for unknown provider")
		}
	})
}

func TestSubstituteEnvVars(t *testing.T) {
	setEnv(t, "SHIPDASH_TEST_SECRET", "s3cret")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple substitution", input: "${SHIPDASH_TEST_SECRET}", want: "s3cret"},
		{name: "no substitution", input: "plain-string", want: "plain-string"},
		{name: "undefined var", input: "${SHIPDASH_UNDEFINED_VAR}", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := substituteEnvVars(tt.input); got != tt.want {
				t.Errorf("substituteEnvVars(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCredentialsFromConfigFileWithEnvReference(t *testing.T) {
	setEnv(t, "FV_SECRET", "from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "freightview:\n  client_id: abc\n  client_secret: ${FV_SECRET}\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Freightview.ClientSecret != "from-env" {
		t.Errorf("client secret = %q, want from-env", cfg.Freightview.ClientSecret)
	}
}
