// Package config loads process configuration from defaults, an optional TOML
// file and environment variables, in that order of precedence.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults.
const (
	DefaultHTTPAddr = ":3000"
	DefaultDBPath   = "tasks.db"
	DefaultCacheTTL = 5 * time.Minute
	DefaultAPIURL   = "http://localhost:3000"
)

// Config holds every setting read at process start.
type Config struct {
	HTTPAddr         string   `toml:"http_addr"`
	DatabaseURL      string   `toml:"database_url"`
	DBPath           string   `toml:"db_path"`
	DBDebug          bool     `toml:"db_debug"`
	RedisAddr        string   `toml:"redis_addr"`
	CacheTTL         Duration `toml:"cache_ttl"`
	TasksRequireAuth bool     `toml:"tasks_require_auth"`
	SiteURL          string   `toml:"site_url"`
	APIURL           string   `toml:"api_url"`

	Identity IdentityConfig `toml:"identity"`
	Google   GoogleConfig   `toml:"google"`
}

// IdentityConfig points at the hosted identity provider.
type IdentityConfig struct {
	URL       string `toml:"url"`
	AnonKey   string `toml:"anon_key"`
	JWTSecret string `toml:"jwt_secret"`
}

// GoogleConfig holds the OAuth client registered with Google.
type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// Duration is a time.Duration written as "5m" or "30s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		HTTPAddr: DefaultHTTPAddr,
		DBPath:   DefaultDBPath,
		CacheTTL: Duration{DefaultCacheTTL},
		SiteURL:  DefaultAPIURL,
		APIURL:   DefaultAPIURL,
	}
}

// Load builds the configuration. path names an optional TOML file; when
// empty, MYDAY_CONFIG is consulted. Environment variables always win.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("MYDAY_CONFIG")
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.DBPath, "DB_PATH")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.SiteURL, "SITE_URL", "NEXT_PUBLIC_SITE_URL")
	setString(&cfg.APIURL, "MYDAY_API_URL")

	setString(&cfg.Identity.URL, "SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL")
	setString(&cfg.Identity.AnonKey, "SUPABASE_ANON_KEY", "NEXT_PUBLIC_SUPABASE_ANON_KEY")
	setString(&cfg.Identity.JWTSecret, "SUPABASE_JWT_SECRET")

	setString(&cfg.Google.ClientID, "GOOGLE_CLIENT_ID")
	setString(&cfg.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&cfg.Google.RedirectURI, "GOOGLE_REDIRECT_URI")

	if err := setBool(&cfg.DBDebug, "DB_DEBUG"); err != nil {
		return err
	}
	if err := setBool(&cfg.TasksRequireAuth, "TASKS_REQUIRE_AUTH"); err != nil {
		return err
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if err := cfg.CacheTTL.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("CACHE_TTL: %w", err)
		}
	}
	return nil
}

// setString assigns the first non-empty variable among keys.
func setString(dst *string, keys ...string) {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			*dst = v
			return
		}
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	*dst = b
	return nil
}

// IdentityConfigured reports whether the identity provider can be used: both
// URL and key are set and the URL is https, or plain http on a loopback host
// for a locally running provider.
func (c *Config) IdentityConfigured() bool {
	if c.Identity.URL == "" || c.Identity.AnonKey == "" {
		return false
	}
	if strings.HasPrefix(c.Identity.URL, "https://") {
		return true
	}
	u, err := url.Parse(c.Identity.URL)
	if err != nil || u.Scheme != "http" {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// GoogleConfigured reports whether the Google OAuth client is complete.
func (c *Config) GoogleConfigured() bool {
	return c.Google.ClientID != "" && c.Google.ClientSecret != "" && c.Google.RedirectURI != ""
}

// UsePostgres reports whether tasks live in PostgreSQL rather than SQLite.
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}
