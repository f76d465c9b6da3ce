// Package config loads runtime settings from an optional YAML file and then
// from environment variables, which take precedence. Variables are named
// ARTISTRY_<SECTION>_<FIELD>, e.g. ARTISTRY_STORE_BACKEND or
// ARTISTRY_CHECKOUT_RECORD_ORDERS.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"
)

const envPrefix = "artistry"

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type StoreConfig struct {
	Backend     string `yaml:"backend"`
	Dir         string `yaml:"dir"`
	DatabaseURL string `yaml:"database_url" split_words:"true"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	Database int    `yaml:"database"`
	Prefix   string `yaml:"prefix"`
}

type CartConfig struct {
	Currency       string        `yaml:"currency"`
	RevealInterval time.Duration `yaml:"reveal_interval" split_words:"true"`
}

type CheckoutConfig struct {
	DownloadDir     string        `yaml:"download_dir" split_words:"true"`
	DownloadTimeout time.Duration `yaml:"download_timeout" split_words:"true"`
	RecordOrders    bool          `yaml:"record_orders" split_words:"true"`
}

type HTTPConfig struct {
	Addr        string        `yaml:"addr"`
	SessionIdle time.Duration `yaml:"session_idle" split_words:"true"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Redis    RedisConfig    `yaml:"redis"`
	Cart     CartConfig     `yaml:"cart"`
	Checkout CheckoutConfig `yaml:"checkout"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
}

func Default() Config {
	return Config{
		Store: StoreConfig{
			Backend: BackendFile,
			Dir:     ".artistry",
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "artistry:",
		},
		Cart: CartConfig{
			Currency:       "USD",
			RevealInterval: 3 * time.Second,
		},
		Checkout: CheckoutConfig{
			DownloadDir:     "downloads",
			DownloadTimeout: 30 * time.Second,
		},
		HTTP: HTTPConfig{
			Addr:        ":3000",
			SessionIdle: 30 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads filename when it is not empty, applies the environment and
// validates the result.
func Load(filename string) (Config, error) {
	cfg := Default()

	if filename != "" {
		if err := loadFile(filename, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("envconfig.Process: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadFile(filename string, cfg *Config) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("os.Open: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("yaml.Decode[%s]: %w", filename, err)
	}

	return nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Store.Dir == "" {
			errs = append(errs, errors.New("store.dir is required for the file backend"))
		}
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("store.database_url is required for the postgres backend"))
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend[%s] is not supported", c.Store.Backend))
	}

	if _, err := c.Currency(); err != nil {
		errs = append(errs, err)
	}
	if c.Cart.RevealInterval <= 0 {
		errs = append(errs, errors.New("cart.reveal_interval must be positive"))
	}
	if c.HTTP.SessionIdle < 0 {
		errs = append(errs, errors.New("http.session_idle must not be negative"))
	}
	if c.Checkout.RecordOrders && c.Store.Backend != BackendPostgres {
		errs = append(errs, errors.New("checkout.record_orders requires the postgres backend"))
	}

	return errors.Join(errs...)
}

func (c Config) Currency() (currency.Unit, error) {
	unit, err := currency.ParseISO(c.Cart.Currency)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("cart.currency[%s] is not valid: %w", c.Cart.Currency, err)
	}

	return unit, nil
}
