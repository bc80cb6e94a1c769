package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Upstream.BaseURL != "https://server.infotik.co" {
		t.Fatalf("unexpected upstream base URL: %s", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.PulsesPath != "pulses" {
		t.Fatalf("expected canonical pulses path, got %s", cfg.Upstream.PulsesPath)
	}
	if cfg.Thumbnails.Backend != ThumbnailBackendURL {
		t.Fatalf("expected url thumbnail backend, got %s", cfg.Thumbnails.Backend)
	}
	if cfg.Links.WebsiteURL == "" || cfg.Links.CanonicalBaseURL == "" {
		t.Fatal("expected link defaults to be populated")
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
upstream:
  base_url: https://content.example.com
  pulses_path: pulse
  api_key: sekrit
  timeout_seconds: 5
links:
  website_url: https://www.example.com
  canonical_base_url: https://share.example.com
  twitter_domain: share.example.com
thumbnails:
  backend: gcs
  bucket: thumbs
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Upstream.BaseURL != "https://content.example.com" {
		t.Fatalf("unexpected upstream base URL: %s", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.PulsesPath != "pulse" {
		t.Fatalf("expected legacy pulses path, got %s", cfg.Upstream.PulsesPath)
	}
	if cfg.Upstream.APIKey != "sekrit" {
		t.Fatal("expected api key override")
	}
	if cfg.Thumbnails.Backend != ThumbnailBackendGCS || cfg.Thumbnails.Bucket != "thumbs" {
		t.Fatalf("unexpected thumbnails config: %+v", cfg.Thumbnails)
	}
	if cfg.Logging.Development {
		t.Fatal("expected production logging")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"missing upstream", func(c *Config) { c.Upstream.BaseURL = "" }},
		{"zero timeout", func(c *Config) { c.Upstream.TimeoutSeconds = 0 }},
		{"missing website", func(c *Config) { c.Links.WebsiteURL = "" }},
		{"unknown backend", func(c *Config) { c.Thumbnails.Backend = "s3" }},
		{"gcs without bucket", func(c *Config) {
			c.Thumbnails.Backend = ThumbnailBackendGCS
			c.Thumbnails.Bucket = ""
		}},
		{"url without template", func(c *Config) {
			c.Thumbnails.Backend = ThumbnailBackendURL
			c.Thumbnails.URLTemplate = ""
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
