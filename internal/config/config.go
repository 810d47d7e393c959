// Package config loads service settings from an optional TOML file and the
// environment.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Auth     AuthConfig     `toml:"auth"`
	Log      LogConfig      `toml:"log"`
	Catalog  CatalogConfig  `toml:"catalog"`
}

type ServerConfig struct {
	Host              string        `toml:"host"`
	Port              int           `toml:"port"`
	ReadTimeout       time.Duration `toml:"read_timeout"`
	WriteTimeout      time.Duration `toml:"write_timeout"`
	MaxBodyBytes      int64         `toml:"max_body_bytes"`
	CORSAllowedOrigin string        `toml:"cors_allowed_origin"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	URL      string `toml:"url"`
	MaxConns int32  `toml:"max_conns"`
}

type RedisConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	Channel string `toml:"channel"`
}

type AuthConfig struct {
	JWTSecret  string        `toml:"jwt_secret"`
	AccessTTL  time.Duration `toml:"access_ttl"`
	BcryptCost int           `toml:"bcrypt_cost"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type CatalogConfig struct {
	AlbumCacheSize  int `toml:"album_cache_size"`
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
}

// Default returns the settings of the embedded example file.
func Default() *Config {
	var cfg Config
	if err := toml.Unmarshal(exampleConf, &cfg); err != nil {
		panic(fmt.Sprintf("config: parse embedded defaults: %v", err))
	}
	return &cfg
}

// Example returns the embedded example file.
func Example() []byte {
	return exampleConf
}

// Load applies, in order, the defaults, the TOML file at path (skipped when
// path is empty) and the environment overrides, then validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is empty"))
	}
	if c.Auth.AccessTTL <= 0 {
		errs = append(errs, errors.New("auth.access_ttl must be positive"))
	}
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is empty"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Catalog.DefaultPageSize <= 0 || c.Catalog.MaxPageSize <= 0 {
		errs = append(errs, errors.New("catalog page sizes must be positive"))
	}
	if c.Catalog.DefaultPageSize > c.Catalog.MaxPageSize {
		errs = append(errs, errors.New("catalog.default_page_size exceeds max_page_size"))
	}
	if c.Catalog.AlbumCacheSize < 0 {
		errs = append(errs, errors.New("catalog.album_cache_size must not be negative"))
	}
	return errors.Join(errs...)
}
