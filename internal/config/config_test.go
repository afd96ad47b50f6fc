package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

// isolateHome keeps a developer's own config file out of the tests.
func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolateHome(t)
	cfg, err := load(filepath.Join(t.TempDir(), "absent.toml"), envMap(nil))
	require.Error(t, err, "explicit missing file is an error")

	cfg, err = load("", envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "auto", cfg.Store.Backend)
	assert.Equal(t, DefaultStoreTimeout, cfg.Store.Timeout)
	assert.False(t, cfg.Store.Strict)
	assert.Equal(t, DefaultRefreshTimeout, cfg.OAuth.RefreshTimeout)
	assert.Equal(t, ":3001", cfg.Server.Addr)
	assert.Equal(t, "unknown", cfg.Server.Region)
	assert.InDelta(t, 5.0, cfg.Sheets.RequestsPerSecond, 0.001)
}

func TestLoad_Environment(t *testing.T) {
	isolateHome(t)
	cfg, err := load("", envMap(map[string]string{
		"GOOGLE_CLIENT_ID":         "id",
		"GOOGLE_CLIENT_SECRET":     "secret",
		"GOOGLE_REDIRECT_URI":      "https://app/api/auth/google/callback",
		"UPSTASH_REDIS_REST_URL":   "https://x.upstash.io",
		"UPSTASH_REDIS_REST_TOKEN": "tok",
		"STORE_TIMEOUT":            "2s",
		"OAUTH_REFRESH_TIMEOUT":    "3s",
		"PORT":                     "8080",
		"FRONTEND_URL":             "https://habits.example.com/",
		"VERCEL_REGION":            "fra1",
		"SHEETS_RPS":               "2.5",
	}))

	require.NoError(t, err)
	assert.Equal(t, GoogleConfig{ClientID: "id", ClientSecret: "secret", RedirectURI: "https://app/api/auth/google/callback"}, cfg.Google)
	assert.Equal(t, "https://x.upstash.io", cfg.Store.RedisURL)
	assert.Equal(t, "tok", cfg.Store.RedisToken)
	assert.Equal(t, 2*time.Second, cfg.Store.Timeout)
	assert.Equal(t, 3*time.Second, cfg.OAuth.RefreshTimeout)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "https://habits.example.com", cfg.Server.FrontendURL)
	assert.Equal(t, "fra1", cfg.Server.Region)
	assert.InDelta(t, 2.5, cfg.Sheets.RequestsPerSecond, 0.001)
}

func TestLoad_RedisURLWinsOverRESTURL(t *testing.T) {
	isolateHome(t)
	cfg, err := load("", envMap(map[string]string{
		"UPSTASH_REDIS_REST_URL": "https://x.upstash.io",
		"REDIS_URL":              "rediss://default:pw@x.upstash.io:6379",
		"REDIS_TOKEN":            "pw2",
	}))

	require.NoError(t, err)
	assert.Equal(t, "rediss://default:pw@x.upstash.io:6379", cfg.Store.RedisURL)
	assert.Equal(t, "pw2", cfg.Store.RedisToken)
}

func TestLoad_RedisURLFallback(t *testing.T) {
	isolateHome(t)
	cfg, err := load("", envMap(map[string]string{"REDIS_URL": "redis://localhost:6379"}))

	require.NoError(t, err)
	assert.Equal(t, "redis://localhost:6379", cfg.Store.RedisURL)
}

func TestLoad_Strict(t *testing.T) {
	isolateHome(t)
	tests := []struct {
		name string
		env  map[string]string
		want bool
	}{
		{"default", nil, false},
		{"explicit true", map[string]string{"STORE_STRICT": "true"}, true},
		{"node production", map[string]string{"NODE_ENV": "production"}, true},
		{"app production", map[string]string{"APP_ENV": "Production"}, true},
		{"explicit false beats production", map[string]string{"NODE_ENV": "production", "STORE_STRICT": "false"}, false},
		{"development", map[string]string{"NODE_ENV": "development"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := load("", envMap(tt.env))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Store.Strict)
		})
	}
}

func TestLoad_ServerAddrBeatsPort(t *testing.T) {
	isolateHome(t)
	cfg, err := load("", envMap(map[string]string{"SERVER_ADDR": "127.0.0.1:9000", "PORT": "8080"}))

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
}

func TestLoad_InvalidValues(t *testing.T) {
	isolateHome(t)
	tests := map[string]string{
		"STORE_STRICT":          "maybe",
		"STORE_TIMEOUT":         "soon",
		"OAUTH_REFRESH_TIMEOUT": "-1s",
		"PORT":                  "http",
		"SHEETS_RPS":            "0",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			_, err := load("", envMap(map[string]string{key: value}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
[google]
client_id = "file-id"
client_secret = "file-secret"
redirect_uri = "http://localhost:3001/api/auth/google/callback"

[store]
backend = "sqlite"
sqlite_dir = "/var/lib/habitsync"
strict = true
timeout = "750ms"

[oauth]
refresh_timeout = "4s"

[server]
addr = ":4000"
frontend_url = "http://localhost:5173"

[sheets]
requests_per_second = 1.5
`)

	cfg, err := load(path, envMap(nil))

	require.NoError(t, err)
	assert.Equal(t, "file-id", cfg.Google.ClientID)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "/var/lib/habitsync", cfg.Store.SQLiteDir)
	assert.True(t, cfg.Store.Strict)
	assert.Equal(t, 750*time.Millisecond, cfg.Store.Timeout)
	assert.Equal(t, 4*time.Second, cfg.OAuth.RefreshTimeout)
	assert.Equal(t, ":4000", cfg.Server.Addr)
	assert.Equal(t, "http://localhost:5173", cfg.Server.FrontendURL)
	assert.InDelta(t, 1.5, cfg.Sheets.RequestsPerSecond, 0.001)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[google]
client_id = "file-id"

[store]
strict = true
`)

	cfg, err := load(path, envMap(map[string]string{
		"GOOGLE_CLIENT_ID": "env-id",
		"STORE_STRICT":     "false",
	}))

	require.NoError(t, err)
	assert.Equal(t, "env-id", cfg.Google.ClientID)
	assert.False(t, cfg.Store.Strict)
}

func TestLoad_FileErrors(t *testing.T) {
	_, err := load(writeConfig(t, "[store\nbackend ="), envMap(nil))
	assert.Error(t, err)

	_, err = load(writeConfig(t, "[store]\ntimeout = \"later\""), envMap(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.timeout")
}

func TestLoad_DefaultPathFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".habitsync"), 0700))
	require.NoError(t, os.WriteFile(DefaultPath(), []byte("[server]\nregion = \"iad1\"\n"), 0600))

	cfg, err := load("", envMap(nil))

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".habitsync", "config.toml"), DefaultPath())
	assert.Equal(t, "iad1", cfg.Server.Region)
}
