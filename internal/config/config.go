// Package config loads habitsync settings from the environment, with an
// optional TOML file underneath. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Defaults.
const (
	DefaultAddr              = ":3001"
	DefaultRegion            = "unknown"
	DefaultStoreTimeout      = 5 * time.Second
	DefaultRefreshTimeout    = 10 * time.Second
	DefaultRequestsPerSecond = 5.0
)

// Config holds all application configuration.
type Config struct {
	Google GoogleConfig
	Store  StoreConfig
	OAuth  OAuthConfig
	Server ServerConfig
	Sheets SheetsConfig
}

// GoogleConfig holds the OAuth client registration.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// StoreConfig selects the credential store backend.
type StoreConfig struct {
	Backend    string
	RedisURL   string
	RedisToken string
	SQLiteDir  string
	Strict     bool
	Timeout    time.Duration
}

// OAuthConfig tunes token refresh.
type OAuthConfig struct {
	RefreshTimeout time.Duration
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string
	// FrontendURL is where OAuth redirects land. Empty means derived from
	// the request.
	FrontendURL string
	Region      string
}

// SheetsConfig throttles Sheets API calls.
type SheetsConfig struct {
	RequestsPerSecond float64
}

// fileConfig is the TOML layout. Durations are strings such as "5s".
type fileConfig struct {
	Google struct {
		ClientID     string `toml:"client_id"`
		ClientSecret string `toml:"client_secret"`
		RedirectURI  string `toml:"redirect_uri"`
	} `toml:"google"`
	Store struct {
		Backend    string `toml:"backend"`
		RedisURL   string `toml:"redis_url"`
		RedisToken string `toml:"redis_token"`
		SQLiteDir  string `toml:"sqlite_dir"`
		Strict     *bool  `toml:"strict"`
		Timeout    string `toml:"timeout"`
	} `toml:"store"`
	OAuth struct {
		RefreshTimeout string `toml:"refresh_timeout"`
	} `toml:"oauth"`
	Server struct {
		Addr        string `toml:"addr"`
		FrontendURL string `toml:"frontend_url"`
		Region      string `toml:"region"`
	} `toml:"server"`
	Sheets struct {
		RequestsPerSecond float64 `toml:"requests_per_second"`
	} `toml:"sheets"`
}

// Load reads the TOML file at path, then applies environment variables.
// An empty path uses ~/.habitsync/config.toml when that file exists.
func Load(path string) (Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (Config, error) {
	cfg := Config{
		Store:  StoreConfig{Backend: "auto", Timeout: DefaultStoreTimeout},
		OAuth:  OAuthConfig{RefreshTimeout: DefaultRefreshTimeout},
		Server: ServerConfig{Addr: DefaultAddr, Region: DefaultRegion},
		Sheets: SheetsConfig{RequestsPerSecond: DefaultRequestsPerSecond},
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultPath returns ~/.habitsync/config.toml, or "" without a home
// directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".habitsync", "config.toml")
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	setString(&cfg.Google.ClientID, fc.Google.ClientID)
	setString(&cfg.Google.ClientSecret, fc.Google.ClientSecret)
	setString(&cfg.Google.RedirectURI, fc.Google.RedirectURI)

	setString(&cfg.Store.Backend, fc.Store.Backend)
	setString(&cfg.Store.RedisURL, fc.Store.RedisURL)
	setString(&cfg.Store.RedisToken, fc.Store.RedisToken)
	setString(&cfg.Store.SQLiteDir, fc.Store.SQLiteDir)
	if fc.Store.Strict != nil {
		cfg.Store.Strict = *fc.Store.Strict
	}
	if err := setDuration(&cfg.Store.Timeout, "store.timeout", fc.Store.Timeout); err != nil {
		return err
	}
	if err := setDuration(&cfg.OAuth.RefreshTimeout, "oauth.refresh_timeout", fc.OAuth.RefreshTimeout); err != nil {
		return err
	}

	setString(&cfg.Server.Addr, fc.Server.Addr)
	setString(&cfg.Server.FrontendURL, fc.Server.FrontendURL)
	setString(&cfg.Server.Region, fc.Server.Region)

	if fc.Sheets.RequestsPerSecond > 0 {
		cfg.Sheets.RequestsPerSecond = fc.Sheets.RequestsPerSecond
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	env := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				return v
			}
		}
		return ""
	}

	setString(&cfg.Google.ClientID, env("GOOGLE_CLIENT_ID"))
	setString(&cfg.Google.ClientSecret, env("GOOGLE_CLIENT_SECRET"))
	setString(&cfg.Google.RedirectURI, env("GOOGLE_REDIRECT_URI"))

	setString(&cfg.Store.Backend, env("STORE_BACKEND"))
	setString(&cfg.Store.RedisURL, env("REDIS_URL", "UPSTASH_REDIS_REST_URL"))
	setString(&cfg.Store.RedisToken, env("REDIS_TOKEN", "UPSTASH_REDIS_REST_TOKEN"))
	setString(&cfg.Store.SQLiteDir, env("STORE_SQLITE_DIR"))

	if v := env("STORE_STRICT"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse STORE_STRICT: %w", err)
		}
		cfg.Store.Strict = strict
	} else if isProduction(env("NODE_ENV")) || isProduction(env("APP_ENV")) {
		cfg.Store.Strict = true
	}

	if err := setDuration(&cfg.Store.Timeout, "STORE_TIMEOUT", env("STORE_TIMEOUT")); err != nil {
		return err
	}
	if err := setDuration(&cfg.OAuth.RefreshTimeout, "OAUTH_REFRESH_TIMEOUT", env("OAUTH_REFRESH_TIMEOUT")); err != nil {
		return err
	}

	if v := env("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	} else if v := env("PORT"); v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			return fmt.Errorf("parse PORT: %w", err)
		}
		cfg.Server.Addr = ":" + v
	}
	setString(&cfg.Server.FrontendURL, strings.TrimRight(env("FRONTEND_URL"), "/"))
	setString(&cfg.Server.Region, env("VERCEL_REGION", "REGION"))

	if v := env("SHEETS_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps <= 0 {
			return fmt.Errorf("parse SHEETS_RPS: invalid value %q", v)
		}
		cfg.Sheets.RequestsPerSecond = rps
	}
	return nil
}

func isProduction(v string) bool {
	return strings.EqualFold(v, "production")
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	if d <= 0 {
		return fmt.Errorf("parse %s: duration must be positive", key)
	}
	*dst = d
	return nil
}
