// Package config resolves depviz configuration.
//
// Configuration is layered: compiled defaults, then an optional TOML file
// (depviz.toml in the working directory, or an explicit --config path), then
// command-line flags. The resolved Config value is passed explicitly into
// the build and render stages; nothing reads configuration from package
// globals.
//
// # File Format
//
//	[render]
//	skip_system_libs = true
//	format = "png"
//	engine = "dot"
//	timeout_seconds = 120
//
//	[cache]
//	backend = "file"        # file, redis, none
//	redis_addr = "localhost:6379"
//	ttl_days = 7
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/depdiscover/depviz/pkg/errors"
	"github.com/depdiscover/depviz/pkg/render"
)

// DefaultFile is the config file name looked up in the working directory.
const DefaultFile = "depviz.toml"

// Cache backend identifiers.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Render configures the build and render stages.
type Render struct {
	SkipSystemLibs bool   `toml:"skip_system_libs"`
	Format         string `toml:"format"`
	Engine         string `toml:"engine"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// CacheSettings configures the render cache.
type CacheSettings struct {
	Backend   string `toml:"backend"`
	RedisAddr string `toml:"redis_addr"`
	TTLDays   int    `toml:"ttl_days"`
}

// Config is the resolved depviz configuration.
type Config struct {
	Render Render        `toml:"render"`
	Cache  CacheSettings `toml:"cache"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		Render: Render{
			SkipSystemLibs: true,
			Format:         render.FormatPNG,
			Engine:         render.LayoutDot,
			TimeoutSeconds: 120,
		},
		Cache: CacheSettings{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
			TTLDays:   7,
		},
	}
}

// Load resolves the configuration from defaults plus an optional TOML file.
//
// With an empty path, Load looks for depviz.toml in the working directory
// and silently falls back to defaults when it is absent. With an explicit
// path, a missing or unreadable file is an INVALID_CONFIG error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config file not found: %s", path)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every configured value names a supported option.
func (c Config) Validate() error {
	if err := render.ValidateFormat(c.Render.Format); err != nil {
		return err
	}
	if err := render.ValidateLayout(c.Render.Engine); err != nil {
		return err
	}
	if c.Render.TimeoutSeconds < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "timeout_seconds must not be negative: %d", c.Render.TimeoutSeconds)
	}
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "invalid cache backend: %s (must be 'file', 'redis', or 'none')", c.Cache.Backend)
	}
	return nil
}
