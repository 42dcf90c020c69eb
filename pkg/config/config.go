// Package config loads flowdot's optional TOML configuration file and applies
// FLOWDOT_* environment overrides on top of it.
//
// A complete file looks like this:
//
//	[render]
//	clusters_first = false
//	tooltips = true
//
//	[palette.default]
//	fillcolor = "#ffffff"
//
//	[palette.states.success]
//	color = "white"
//	fillcolor = "darkgreen"
//
//	[palette.couplings.webhook]
//	shape = "house"
//
//	[cache]
//	backend = "redis"          # "file", "redis" or "none"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "24h"
//
//	[runstate]
//	mongo_uri = "mongodb://localhost:27017"
//	database = "flowdot"
//	collection = "task_instances"
//
//	[server]
//	addr = ":8080"
//
// Unknown keys are rejected so typos do not silently fall back to defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flowdot/pkg/cache"
	apperrors "github.com/matzehuels/flowdot/pkg/errors"
)

const appName = "flowdot"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Defaults.
const (
	DefaultAddr        = ":8080"
	DefaultCacheTTL    = "24h"
	DefaultMaxBodySize = 4 << 20
)

// Config is the complete flowdot configuration.
type Config struct {
	Render   RenderConfig   `toml:"render"`
	Palette  PaletteConfig  `toml:"palette"`
	Cache    CacheConfig    `toml:"cache"`
	RunState RunStateConfig `toml:"runstate"`
	Server   ServerConfig   `toml:"server"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-"`
}

// RenderConfig holds default render options. Command-line flags and API
// request fields override them.
type RenderConfig struct {
	ClustersFirst bool `toml:"clusters_first"`
	Tooltips      bool `toml:"tooltips"`
	MaxDepth      int  `toml:"max_depth"`
}

// CacheConfig selects and configures the render cache.
type CacheConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"`
	TTLStr   string `toml:"ttl"`

	TTL time.Duration `toml:"-"`
}

// RunStateConfig configures the MongoDB run-state source. An empty MongoURI
// disables it.
type RunStateConfig struct {
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig configures `flowdot serve`.
type ServerConfig struct {
	Addr        string `toml:"addr"`
	MaxBodySize int64  `toml:"max_body_size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Backend: CacheFile,
			TTLStr:  DefaultCacheTTL,
		},
		Server: ServerConfig{
			Addr:        DefaultAddr,
			MaxBodySize: DefaultMaxBodySize,
		},
	}
}

// Load reads the configuration file at path on top of the defaults, applies
// environment overrides and validates the result. An empty path means
// [DefaultPath], which may be absent.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		err := cfg.fromFile(path)
		switch {
		case err == nil:
			cfg.Path = path
		case !explicit && errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Adjust(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes configuration text on top of the defaults, without
// environment overrides.
func Parse(data string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode config")
	}
	if err := checkUndecoded(md); err != nil {
		return nil, err
	}
	if err := cfg.Adjust(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) fromFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config %s: %w", path, err)
		}
		return apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode config %s", path)
	}
	return checkUndecoded(md)
}

func checkUndecoded(md toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, k := range undecoded {
		keys[i] = k.String()
	}
	return apperrors.New(apperrors.ErrCodeInvalidInput, "unknown config keys: %s", strings.Join(keys, ", "))
}

// applyEnv overrides file values with FLOWDOT_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set("FLOWDOT_CACHE_BACKEND", &c.Cache.Backend)
	set("FLOWDOT_CACHE_DIR", &c.Cache.Dir)
	set("FLOWDOT_CACHE_TTL", &c.Cache.TTLStr)
	set("FLOWDOT_REDIS_URL", &c.Cache.RedisURL)
	set("FLOWDOT_MONGO_URI", &c.RunState.MongoURI)
	set("FLOWDOT_MONGO_DATABASE", &c.RunState.Database)
	set("FLOWDOT_MONGO_COLLECTION", &c.RunState.Collection)
	set("FLOWDOT_ADDR", &c.Server.Addr)
}

// Adjust fills derived fields and validates the configuration.
func (c *Config) Adjust() error {
	c.Cache.Backend = strings.ToLower(c.Cache.Backend)
	switch c.Cache.Backend {
	case "":
		c.Cache.Backend = CacheFile
	case CacheFile, CacheNone:
	case CacheRedis:
		if err := apperrors.ValidateURL(c.Cache.RedisURL, "redis", "rediss"); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "cache.redis_url")
		}
	default:
		return apperrors.New(apperrors.ErrCodeInvalidInput, "cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}

	if c.Cache.TTLStr == "" {
		c.Cache.TTLStr = DefaultCacheTTL
	}
	ttl, err := time.ParseDuration(c.Cache.TTLStr)
	if err != nil || ttl < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "cache.ttl: invalid duration %q", c.Cache.TTLStr)
	}
	c.Cache.TTL = ttl

	if c.RunState.MongoURI != "" {
		if err := apperrors.ValidateURL(c.RunState.MongoURI, "mongodb", "mongodb+srv"); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "runstate.mongo_uri")
		}
	}

	if c.Render.MaxDepth < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "render.max_depth must not be negative")
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.MaxBodySize <= 0 {
		c.Server.MaxBodySize = DefaultMaxBodySize
	}

	_, err = c.Palette.Palette()
	return err
}

// CacheDir returns the configured cache directory, or the XDG default
// (~/.cache/flowdot/).
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// RedisConfig returns the cache settings in the form [cache.NewRedisCache]
// expects.
func (c *Config) RedisConfig() cache.RedisConfig {
	return cache.RedisConfig{URL: c.Cache.RedisURL, Prefix: c.Cache.Prefix}
}

// DefaultPath returns $XDG_CONFIG_HOME/flowdot/config.toml, falling back to
// ~/.config. It returns "" when no home directory is known.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}
