package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "github.com/matzehuels/flowdot/pkg/errors"
	"github.com/matzehuels/flowdot/pkg/workflow"
)

func TestDefault(t *testing.T) {
	cfg, err := Parse("")
	if err != nil {
		t.Fatalf("Parse(\"\") error: %v", err)
	}
	if cfg.Cache.Backend != CacheFile || cfg.Cache.TTL != 24*time.Hour {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != DefaultAddr || cfg.Server.MaxBodySize != DefaultMaxBodySize {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.RunState.MongoURI != "" {
		t.Errorf("mongo enabled by default: %q", cfg.RunState.MongoURI)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse(`
[render]
clusters_first = true
max_depth = 32

[palette.default]
fillcolor = "#ffffff"

[palette.states.SUCCEEDED]
fillcolor = "darkgreen"

[palette.couplings.Webhook]
shape = "house"

[cache]
backend = "REDIS"
redis_url = "redis://localhost:6379/0"
ttl = "90m"

[runstate]
mongo_uri = "mongodb://localhost:27017"
database = "airflow"

[server]
addr = "127.0.0.1:9000"
`)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if !cfg.Render.ClustersFirst || cfg.Render.MaxDepth != 32 {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.TTL != 90*time.Minute {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if rc := cfg.RedisConfig(); rc.URL != "redis://localhost:6379/0" {
		t.Errorf("RedisConfig() = %+v", rc)
	}
	if cfg.RunState.Database != "airflow" || cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("runstate/server = %+v %+v", cfg.RunState, cfg.Server)
	}

	p, err := cfg.Palette.Palette()
	if err != nil {
		t.Fatalf("Palette() error: %v", err)
	}
	if p.Default.FillColor != "#ffffff" || p.Default.Shape != "rectangle" {
		t.Errorf("default style = %+v", p.Default)
	}
	success := p.States[workflow.StatusSuccess]
	if success.FillColor != "darkgreen" || success.Color != "white" {
		t.Errorf("success style = %+v", success)
	}
	if p.States[workflow.StatusFailed].FillColor != "red" {
		t.Error("unrelated states should keep their defaults")
	}
	if p.Couplings["webhook"].Shape != "house" {
		t.Errorf("couplings = %+v", p.Couplings)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  apperrors.Code
		want  string
	}{
		{"syntax", "[cache\n", apperrors.ErrCodeInvalidFormat, "decode config"},
		{"unknown key", "[cache]\nbackend = \"file\"\ncolour = \"red\"\n", apperrors.ErrCodeInvalidInput, "cache.colour"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n", apperrors.ErrCodeInvalidInput, "cache.backend"},
		{"redis without url", "[cache]\nbackend = \"redis\"\n", apperrors.ErrCodeInvalidInput, "cache.redis_url"},
		{"bad ttl", "[cache]\nttl = \"soon\"\n", apperrors.ErrCodeInvalidInput, "cache.ttl"},
		{"bad mongo uri", "[runstate]\nmongo_uri = \"postgres://db\"\n", apperrors.ErrCodeInvalidInput, "runstate.mongo_uri"},
		{"negative depth", "[render]\nmax_depth = -1\n", apperrors.ErrCodeInvalidInput, "max_depth"},
		{"unknown state", "[palette.states.exploded]\nfillcolor = \"red\"\n", apperrors.ErrCodeInvalidInput, "exploded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			if !apperrors.Is(err, tt.code) {
				t.Errorf("error code = %s, want %s (%v)", apperrors.GetCode(err), tt.code, err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[cache]\nbackend = \"none\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FLOWDOT_ADDR", ":9999")
	t.Setenv("FLOWDOT_MONGO_URI", "mongodb://mongo:27017")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q, want %q", cfg.Path, path)
	}
	if cfg.Cache.Backend != CacheNone {
		t.Errorf("backend = %q, want none", cfg.Cache.Backend)
	}
	if cfg.Server.Addr != ":9999" || cfg.RunState.MongoURI != "mongodb://mongo:27017" {
		t.Errorf("env overrides not applied: %+v %+v", cfg.Server, cfg.RunState)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	// The default path may be absent.
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q, want empty", cfg.Path)
	}

	// An explicit path must exist.
	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("Load(missing) should fail")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"FLOWDOT_CACHE_BACKEND": "redis",
		"FLOWDOT_REDIS_URL":     "redis://cache:6379",
		"FLOWDOT_CACHE_TTL":     "",
	}
	cfg := Default()
	cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisURL != "redis://cache:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Cache.TTLStr != DefaultCacheTTL {
		t.Errorf("empty variable overrode ttl: %q", cfg.Cache.TTLStr)
	}
}

func TestCacheDir(t *testing.T) {
	cfg := Default()
	cfg.Cache.Dir = "/tmp/flowdot-cache"
	if dir, _ := cfg.CacheDir(); dir != "/tmp/flowdot-cache" {
		t.Errorf("CacheDir() = %q", dir)
	}

	t.Setenv("XDG_CACHE_HOME", "/xdg")
	cfg.Cache.Dir = ""
	if dir, _ := cfg.CacheDir(); dir != filepath.Join("/xdg", "flowdot") {
		t.Errorf("CacheDir() = %q", dir)
	}
}
