package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type HTTPConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

type DBConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
	Seed            bool
}

type PricingConfig struct {
	Timezone string
	Currency string
}

type LogConfig struct {
	Level string
	File  string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Pricing     PricingConfig
	Log         LogConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	v.SetDefault("DB_SEED", true)

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host:           v.GetString("HTTP_HOST"),
			Port:           v.GetInt("HTTP_PORT"),
			AllowedOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			Driver:          strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
			Seed:            v.GetBool("DB_SEED"),
		},
		Pricing: PricingConfig{
			Timezone: v.GetString("PRICING_TIMEZONE"),
			Currency: v.GetString("PRICING_CURRENCY"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
			File:  v.GetString("LOG_FILE"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if len(cfg.HTTP.AllowedOrigins) == 0 {
		cfg.HTTP.AllowedOrigins = []string{"*"}
	}
	if cfg.DB.Driver == "" {
		cfg.DB.Driver = DriverPostgres
	}
	if cfg.Pricing.Timezone == "" {
		cfg.Pricing.Timezone = "UTC"
	}
	if cfg.Pricing.Currency == "" {
		cfg.Pricing.Currency = "USD"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PricingLocation is the location whose wall clock decides day and night
// rates.
func (c *Config) PricingLocation() (*time.Location, error) {
	return time.LoadLocation(c.Pricing.Timezone)
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func validate(cfg *Config) error {
	switch cfg.DB.Driver {
	case DriverPostgres:
		if cfg.DB.DSN == "" {
			return fmt.Errorf("DB_DSN is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("DB_DRIVER %q is not supported", cfg.DB.Driver)
	}
	if cfg.DB.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(cfg.DB.ConnMaxLifetime); err != nil {
			return fmt.Errorf("DB_CONN_MAX_LIFETIME: %w", err)
		}
	}
	if _, err := cfg.PricingLocation(); err != nil {
		return fmt.Errorf("PRICING_TIMEZONE: %w", err)
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
