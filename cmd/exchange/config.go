package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"service-exchange/internal"
	"service-exchange/internal/cnb"
	currencyFreaks "service-exchange/internal/currency_freaks"
	"service-exchange/internal/ecb"
)

type Config struct {
	Driver     string `env:"DRIVER" env-default:"cnb" env-description:"driver fetched on schedule"`
	Currencies string `env:"CURRENCIES" env-description:"comma separated allow list, empty for all"`

	HTTPPort    string        `env:"PORT,HTTP_PORT" env-default:"8080"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" env-default:"20s"`

	CronSpec string `env:"CRON_SPEC" env-description:"overrides the driver's refresh schedule"`

	DatabaseURL string `env:"DATABASE_URL" env-description:"enables the fetch and request log"`
	EncodingKey string `env:"ENCODING_KEY" env-description:"enables X-API-Key auth, requires DATABASE_URL"`

	APIKey  string `env:"CURRENCY_API_KEY" env-description:"enables the currencyfreaks driver"`
	BaseCCY string `env:"CURRENCY_BASE" env-default:"USD"`

	AppEnv         string `env:"APP_ENV" env-default:"production"`
	MetricsEnabled bool   `env:"METRICS_ENABLED" env-default:"true"`

	Codes []internal.CurrencyCode
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// LoadConfig overlays .env (when present) on the environment and validates it.
func LoadConfig() (Config, error) {
	if err := godotenv.Overload(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	switch c.Driver {
	case cnb.Name, ecb.Name:
	case currencyFreaks.Name:
		if strings.TrimSpace(c.APIKey) == "" {
			return fmt.Errorf("CURRENCY_API_KEY is empty, required by DRIVER=%s", c.Driver)
		}
	default:
		return fmt.Errorf("DRIVER %q is not one of %s, %s, %s", c.Driver, cnb.Name, ecb.Name, currencyFreaks.Name)
	}

	codes, err := internal.ParseCurrencyCodes(c.Currencies)
	if err != nil {
		return fmt.Errorf("CURRENCIES: %w", err)
	}
	c.Codes = codes

	if _, err := internal.NewCurrencyCode(c.BaseCCY); err != nil {
		return fmt.Errorf("CURRENCY_BASE: %w", err)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.EncodingKey != "" && c.DatabaseURL == "" {
		return fmt.Errorf("ENCODING_KEY requires DATABASE_URL")
	}
	return nil
}
