// Package config loads the folio settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Store drivers.
const (
	StorePebble   = "pebble"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Quote sources.
const (
	QuotesFinnhub = "finnhub"
	QuotesYahoo   = "yahoo"
	QuotesEODHD   = "eodhd"
	QuotesNone    = "none"
)

type Config struct {
	Env      string `env:"FOLIO_ENV" envDefault:"prod"`
	Currency string `env:"FOLIO_CURRENCY" envDefault:"INR"`

	Store       string `env:"FOLIO_STORE" envDefault:"pebble"`
	StorePath   string `env:"FOLIO_STORE_PATH" envDefault:".folio"`
	DatabaseURL string `env:"DATABASE_URL"`

	Quotes           string        `env:"FOLIO_QUOTES" envDefault:"yahoo"`
	FinnhubAPIKey    string        `env:"FINNHUB_API_KEY"`
	EODHDAPIKey      string        `env:"EODHD_API_KEY"`
	QuoteTimeout     time.Duration `env:"QUOTE_TIMEOUT" envDefault:"5s"`
	QuoteCacheTTL    time.Duration `env:"QUOTE_CACHE_TTL" envDefault:"60s"`
	QuoteConcurrency int           `env:"QUOTE_CONCURRENCY" envDefault:"8"`

	InflationRate float64         `env:"INFLATION_RATE" envDefault:"0.06"`
	GrowthFactor  decimal.Decimal `env:"FD_GROWTH_FACTOR" envDefault:"1.07"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
}

// Load reads the .env file at envPath (or ./.env when empty) if it exists, then
// parses the environment. Variables already set take precedence over the file.
func Load(envPath string) (Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return Config{}, fmt.Errorf("could not load %s: %w", envPath, err)
		}
	} else {
		_ = godotenv.Load() // optional
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate reports every inconsistent setting.
func (c Config) Validate() error {
	var errs []error
	switch c.Store {
	case StorePebble:
		if c.StorePath == "" {
			errs = append(errs, errors.New("FOLIO_STORE_PATH is required by the pebble store"))
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required by the postgres store"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown FOLIO_STORE %q", c.Store))
	}
	switch c.Quotes {
	case QuotesFinnhub:
		if c.FinnhubAPIKey == "" {
			errs = append(errs, errors.New("FINNHUB_API_KEY is required by the finnhub quotes"))
		}
	case QuotesEODHD:
		if c.EODHDAPIKey == "" {
			errs = append(errs, errors.New("EODHD_API_KEY is required by the eodhd quotes"))
		}
	case QuotesYahoo, QuotesNone:
	default:
		errs = append(errs, fmt.Errorf("unknown FOLIO_QUOTES %q", c.Quotes))
	}
	if c.InflationRate < 0 {
		errs = append(errs, fmt.Errorf("INFLATION_RATE must not be negative, got %v", c.InflationRate))
	}
	if !c.GrowthFactor.IsPositive() {
		errs = append(errs, fmt.Errorf("FD_GROWTH_FACTOR must be positive, got %s", c.GrowthFactor))
	}
	if c.QuoteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("QUOTE_TIMEOUT must be positive, got %s", c.QuoteTimeout))
	}
	if c.QuoteConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("QUOTE_CONCURRENCY must be positive, got %d", c.QuoteConcurrency))
	}
	return errors.Join(errs...)
}
