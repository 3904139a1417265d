package app

import (
	"os"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

const defaultAddr = "0.0.0.0:8000"

// Config holds the complete application configuration, loadable from
// environment variables (SHOP_ prefix), flags, .env and YAML config files.
type Config struct {
	Addr      string `default:"0.0.0.0:8000" usage:"API server listen address"`
	Store     StoreConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// StoreConfig selects and tunes the document store backend. An empty URL
// with the mongo or postgres driver starts the server without a store.
type StoreConfig struct {
	Driver                 string        `default:"mongo" usage:"Document store driver: mongo, postgres or memory"`
	URL                    string        `usage:"Store connection URL (SHOP_STORE_URL or DATABASE_URL)"`
	Name                   string        `default:"storefront" usage:"Database name (SHOP_STORE_NAME or DATABASE_NAME)"`
	ConnectTimeout         time.Duration `default:"10s" usage:"Store connect timeout"`
	ServerSelectionTimeout time.Duration `default:"5s" usage:"MongoDB server selection timeout"`
	Breaker                BreakerConfig
}

// BreakerConfig controls the circuit breaker in front of the store.
type BreakerConfig struct {
	Failures uint32        `default:"5" usage:"Consecutive connectivity failures that open the circuit"`
	Timeout  time.Duration `default:"30s" usage:"Time the circuit stays open before probing"`
}

// CacheConfig enables the Redis product cache when URL is set.
type CacheConfig struct {
	URL string        `usage:"Redis URL for the product cache (SHOP_CACHE_URL or REDIS_URL)"`
	TTL time.Duration `default:"15m" usage:"Product cache entry TTL"`
}

// RateLimitConfig limits seed and checkout requests per client.
type RateLimitConfig struct {
	Max    int           `default:"30" usage:"Max write requests per window (0 disables)"`
	Window time.Duration `default:"1m" usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"true" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads .env, then configuration from environment variables,
// flags and YAML config files, and applies platform defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(os.Args[1:])
}

func loadConfig(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "SHOP",
		Args:      args,
		Files:     []string{"config.yaml", "/etc/shop/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyPlatformDefaults maps the unprefixed variables set by hosting
// platforms (DATABASE_URL, DATABASE_NAME, REDIS_URL, PORT) onto the config.
func (c *Config) applyPlatformDefaults() {
	if c.Store.URL == "" {
		c.Store.URL = os.Getenv("DATABASE_URL")
	}
	if v := os.Getenv("DATABASE_NAME"); v != "" && os.Getenv("SHOP_STORE_NAME") == "" {
		c.Store.Name = v
	}
	if c.Cache.URL == "" {
		c.Cache.URL = os.Getenv("REDIS_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
	if os.Getenv("SHOP_STORE_DRIVER") == "" {
		if d := DriverFromURL(c.Store.URL); d != "" {
			c.Store.Driver = d
		}
	}
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverMongo, DriverPostgres, DriverMemory:
	default:
		return errors.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Name == "" {
		return errors.New("store name is required")
	}
	return nil
}

// DriverFromURL infers the store driver from a connection URL scheme.
func DriverFromURL(u string) string {
	switch {
	case strings.HasPrefix(u, "mongodb://"), strings.HasPrefix(u, "mongodb+srv://"):
		return DriverMongo
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return DriverPostgres
	default:
		return ""
	}
}

// ResolveStoreConfig fills a store config for command line tools. Empty
// values fall back to DATABASE_URL and DATABASE_NAME, and the driver is
// inferred from the URL.
func ResolveStoreConfig(cfg StoreConfig) (StoreConfig, error) {
	if cfg.URL == "" {
		cfg.URL = os.Getenv("DATABASE_URL")
	}
	if cfg.URL == "" {
		return cfg, errors.New("store URL is required: set --store-url or DATABASE_URL")
	}
	if cfg.Name == "" {
		cfg.Name = os.Getenv("DATABASE_NAME")
	}
	if cfg.Name == "" {
		cfg.Name = "storefront"
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverFromURL(cfg.URL)
	}
	if cfg.Driver != DriverMongo && cfg.Driver != DriverPostgres {
		return cfg, errors.Errorf("cannot use driver %q for %q: set --store-driver", cfg.Driver, cfg.URL)
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.ServerSelectionTimeout == 0 {
		cfg.ServerSelectionTimeout = 5 * time.Second
	}
	if cfg.Breaker.Failures == 0 {
		cfg.Breaker = BreakerConfig{Failures: 5, Timeout: 30 * time.Second}
	}
	return cfg, nil
}
