package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads so the host environment does
// not leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MYDAY_CONFIG", "HTTP_ADDR", "DATABASE_URL", "DB_PATH", "DB_DEBUG", "REDIS_ADDR",
		"CACHE_TTL", "TASKS_REQUIRE_AUTH", "SITE_URL", "NEXT_PUBLIC_SITE_URL", "MYDAY_API_URL",
		"SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL", "SUPABASE_ANON_KEY",
		"NEXT_PUBLIC_SUPABASE_ANON_KEY", "SUPABASE_JWT_SECRET",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_REDIRECT_URI",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPAddr != DefaultHTTPAddr {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, DefaultHTTPAddr)
	}
	if cfg.DBPath != DefaultDBPath {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, DefaultDBPath)
	}
	if cfg.CacheTTL.Duration != DefaultCacheTTL {
		t.Errorf("CacheTTL = %v, want %v", cfg.CacheTTL.Duration, DefaultCacheTTL)
	}
	if cfg.UsePostgres() {
		t.Error("UsePostgres() = true without DATABASE_URL")
	}
	if cfg.IdentityConfigured() {
		t.Error("IdentityConfigured() = true without provider settings")
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "myday.toml")
	content := `
http_addr = ":8080"
db_path = "from-file.db"
cache_ttl = "30s"

[identity]
url = "https://project.supabase.co"
anon_key = "file-key"

[google]
client_id = "cid"
client_secret = "secret"
redirect_uri = "http://localhost:3000/auth/callback/google"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	clearEnv(t)
	t.Setenv("DB_PATH", "from-env.db")
	t.Setenv("NEXT_PUBLIC_SUPABASE_ANON_KEY", "alias-key")
	t.Setenv("TASKS_REQUIRE_AUTH", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.DBPath != "from-env.db" {
		t.Errorf("DBPath = %q, want from-env.db", cfg.DBPath)
	}
	if cfg.CacheTTL.Duration != 30*time.Second {
		t.Errorf("CacheTTL = %v, want 30s", cfg.CacheTTL.Duration)
	}
	if cfg.Identity.AnonKey != "alias-key" {
		t.Errorf("Identity.AnonKey = %q, want alias-key", cfg.Identity.AnonKey)
	}
	if !cfg.TasksRequireAuth {
		t.Error("TasksRequireAuth = false, want true")
	}
	if !cfg.IdentityConfigured() {
		t.Error("IdentityConfigured() = false, want true")
	}
	if !cfg.GoogleConfigured() {
		t.Error("GoogleConfigured() = false, want true")
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("Load() error = nil, want error")
		}
	})

	t.Run("bad boolean", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DB_DEBUG", "sometimes")
		if _, err := Load(""); err == nil {
			t.Error("Load() error = nil, want error")
		}
	})

	t.Run("bad duration", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CACHE_TTL", "forever")
		if _, err := Load(""); err == nil {
			t.Error("Load() error = nil, want error")
		}
	})
}

func TestIdentityConfigured(t *testing.T) {
	tests := []struct {
		name string
		url  string
		key  string
		want bool
	}{
		{name: "https", url: "https://abc.supabase.co", key: "k", want: true},
		{name: "missing key", url: "https://abc.supabase.co", key: "", want: false},
		{name: "missing url", url: "", key: "k", want: false},
		{name: "plain http remote", url: "http://abc.supabase.co", key: "k", want: false},
		{name: "local provider", url: "http://127.0.0.1:54321", key: "k", want: true},
		{name: "localhost", url: "http://localhost:54321", key: "k", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Identity.URL = tt.url
			cfg.Identity.AnonKey = tt.key
			if got := cfg.IdentityConfigured(); got != tt.want {
				t.Errorf("IdentityConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}
