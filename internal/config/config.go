// Package config loads and validates gateway configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Upstream   UpstreamConfig   `mapstructure:"upstream"`
	Links      LinksConfig      `mapstructure:"links"`
	Thumbnails ThumbnailsConfig `mapstructure:"thumbnails"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// UpstreamConfig points at the content API previews are resolved against.
type UpstreamConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	PostsPath      string `mapstructure:"posts_path"`
	PulsesPath     string `mapstructure:"pulses_path"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// LinksConfig holds the fixed destinations the gateway redirects to and the
// identifiers baked into the Android deep link.
type LinksConfig struct {
	WebsiteURL       string `mapstructure:"website_url"`
	CanonicalBaseURL string `mapstructure:"canonical_base_url"`
	TwitterDomain    string `mapstructure:"twitter_domain"`
	AppScheme        string `mapstructure:"app_scheme"`
	AppPackage       string `mapstructure:"app_package"`
	StoreURL         string `mapstructure:"store_url"`
	DiscordInviteURL string `mapstructure:"discord_invite_url"`
}

// ThumbnailsConfig selects how thumbnail object names become og:image
// values.
type ThumbnailsConfig struct {
	// Backend is one of "url", "gcs" or "off".
	Backend     string `mapstructure:"backend"`
	URLTemplate string `mapstructure:"url_template"`
	Bucket      string `mapstructure:"bucket"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Thumbnail backend names accepted by ThumbnailsConfig.Backend.
const (
	ThumbnailBackendURL = "url"
	ThumbnailBackendGCS = "gcs"
	ThumbnailBackendOff = "off"
)

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LINKGW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("upstream.base_url", "https://server.infotik.co")
	v.SetDefault("upstream.posts_path", "posts")
	v.SetDefault("upstream.pulses_path", "pulses")
	v.SetDefault("upstream.timeout_seconds", 15)
	v.SetDefault("links.website_url", "https://www.infotik.co")
	v.SetDefault("links.canonical_base_url", "https://app.infotik.co")
	v.SetDefault("links.twitter_domain", "app.infotik.co")
	v.SetDefault("links.app_scheme", "infotik.co")
	v.SetDefault("links.app_package", "com.zeeshan_raza.infotik")
	v.SetDefault("links.store_url", "https://play.google.com/store/apps/details?id=com.zeeshan_raza.infotik")
	v.SetDefault("links.discord_invite_url", "https://discord.gg/infotik")
	v.SetDefault("thumbnails.backend", ThumbnailBackendURL)
	v.SetDefault("thumbnails.url_template", "https://server.infotik.co/posts/thumbnail/{object}")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url must be set")
	}
	if c.Upstream.TimeoutSeconds <= 0 {
		return fmt.Errorf("upstream.timeout_seconds must be > 0")
	}
	if c.Links.WebsiteURL == "" || c.Links.CanonicalBaseURL == "" {
		return fmt.Errorf("links.website_url and links.canonical_base_url must be set")
	}
	switch c.Thumbnails.Backend {
	case ThumbnailBackendURL:
		if c.Thumbnails.URLTemplate == "" {
			return fmt.Errorf("thumbnails.url_template must be set when backend is %q", ThumbnailBackendURL)
		}
	case ThumbnailBackendGCS:
		if c.Thumbnails.Bucket == "" {
			return fmt.Errorf("thumbnails.bucket must be set when backend is %q", ThumbnailBackendGCS)
		}
	case ThumbnailBackendOff:
	default:
		return fmt.Errorf("unknown thumbnails.backend: %s", c.Thumbnails.Backend)
	}
	return nil
}

// UpstreamTimeout converts the upstream timeout config into a duration.
func (c Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.Upstream.TimeoutSeconds) * time.Second
}
