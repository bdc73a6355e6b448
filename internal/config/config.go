// Package config loads settings for the server and the CLI.
//
// Precedence, highest first: command-line flags bound by the caller,
// environment (SAMEWAVE_* with dots as underscores, plus a few legacy
// names), the YAML file, then the defaults below. A .env file, when present,
// is loaded into the environment first.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sakif/samewave/internal/apiclient"
	"github.com/sakif/samewave/internal/catalog"
)

const EnvPrefix = "SAMEWAVE"

type Config struct {
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	Store   StoreConfig    `mapstructure:"store"`
	Auth    AuthConfig     `mapstructure:"auth"`
	CORS    CORSConfig     `mapstructure:"cors"`
	Catalog catalog.Config `mapstructure:"catalog"`
	Redis   RedisConfig    `mapstructure:"redis"`
	Client  ClientConfig   `mapstructure:"client"`
}

type StoreConfig struct {
	// Driver is "json" or "sqlite".
	Driver        string `mapstructure:"driver"`
	DataDir       string `mapstructure:"data_dir"`
	DBPath        string `mapstructure:"db_path"`
	SeedDemoUsers bool   `mapstructure:"seed_demo_users"`
}

// AuthConfig enables bearer tokens when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type CORSConfig struct {
	Origins []string `mapstructure:"origins"`
}

// RedisConfig is optional. When URL is set the server caches search results
// and the CLI may keep its state there.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type ClientConfig struct {
	APIURL    string        `mapstructure:"api_url"`
	StatePath string        `mapstructure:"state_path"`
	Timeout   time.Duration `mapstructure:"timeout"`
	// Cache is "file" or "redis".
	Cache string `mapstructure:"cache"`
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("port", 3001)
	v.SetDefault("log_level", "info")

	v.SetDefault("store.driver", "json")
	v.SetDefault("store.data_dir", "data")
	v.SetDefault("store.db_path", "data/samewave.db")
	v.SetDefault("store.seed_demo_users", true)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "24h")

	v.SetDefault("cors.origins", []string{"http://localhost:5173", "http://localhost:3000"})

	v.SetDefault("catalog.providers", []string{"spotify", "deezer"})
	v.SetDefault("catalog.timeout", catalog.DefaultTimeout.String())
	v.SetDefault("catalog.requests_per_second", 5)
	v.SetDefault("catalog.burst", 5)
	v.SetDefault("catalog.cache_ttl", catalog.DefaultCacheTTL.String())
	v.SetDefault("catalog.deezer.base_url", catalog.DeezerBaseURL)
	v.SetDefault("catalog.deezer.relays", catalog.DefaultDeezerRelays)
	v.SetDefault("catalog.spotify.client_id", "")
	v.SetDefault("catalog.spotify.client_secret", "")
	v.SetDefault("catalog.spotify.token_url", catalog.SpotifyTokenURL)
	v.SetDefault("catalog.spotify.api_base", catalog.SpotifyAPIBase)
	v.SetDefault("catalog.spotify.market", catalog.SpotifyMarket)
	v.SetDefault("catalog.spotify.relays", []string{catalog.DirectRelay})

	v.SetDefault("redis.url", "")

	v.SetDefault("client.api_url", apiclient.DefaultBaseURL)
	v.SetDefault("client.state_path", defaultStatePath())
	v.SetDefault("client.timeout", apiclient.DefaultTimeout.String())
	v.SetDefault("client.cache", "file")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Legacy names used by existing deployments.
	_ = v.BindEnv("port", EnvPrefix+"_PORT", "PORT")
	_ = v.BindEnv("catalog.spotify.client_id", EnvPrefix+"_CATALOG_SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_ID")
	_ = v.BindEnv("catalog.spotify.client_secret", EnvPrefix+"_CATALOG_SPOTIFY_CLIENT_SECRET", "SPOTIFY_CLIENT_SECRET")

	return v
}

// LoadDotEnv loads the given files (default ".env") into the environment.
// Missing files are skipped; variables already set are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: loading %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the config file and decodes everything into a Config. With an
// empty path, ./configs/samewave.yaml and ./samewave.yaml are tried and may
// be absent.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	} else {
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		v.SetConfigName("samewave")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if !slices.Contains([]string{"json", "sqlite"}, c.Store.Driver) {
		return fmt.Errorf("config: store.driver must be json or sqlite, got %q", c.Store.Driver)
	}
	if !slices.Contains([]string{"file", "redis"}, c.Client.Cache) {
		return fmt.Errorf("config: client.cache must be file or redis, got %q", c.Client.Cache)
	}
	if c.Client.Cache == "redis" && c.Redis.URL == "" {
		return errors.New("config: client.cache=redis needs redis.url")
	}
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 16 {
		return errors.New("config: auth.jwt_secret must be at least 16 characters")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: log_level: %w", err)
	}
	return level, nil
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".samewave-state.json"
	}
	return filepath.Join(dir, "samewave", "state.json")
}
