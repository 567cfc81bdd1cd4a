package config

import (
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// AppConfig is read once at startup and never modified.
type AppConfig struct {
	Env      string `envconfig:"APP_ENV" default:"local" validate:"oneof=local dev prod test"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Server  ServerConfig
	Store   StoreConfig
	Breaker BreakerConfig
	Probe   ProbeConfig
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s" validate:"gt=0"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"10s" validate:"gt=0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`
}

// StoreConfig selects and tunes the Record Store.
type StoreConfig struct {
	Driver string `envconfig:"STORE_DRIVER" default:"sqlite" validate:"oneof=sqlite postgres memory"`

	// DSN is a file path for sqlite and a connection string for postgres.
	DSN string `envconfig:"STORE_DSN" default:"Resources/hawaii.sqlite" validate:"required_unless=Driver memory"`

	// Seed files for the memory driver.
	MeasurementsCSV string `envconfig:"STORE_MEASUREMENTS_CSV" validate:"required_if=Driver memory"`
	StationsCSV     string `envconfig:"STORE_STATIONS_CSV"`

	MaxOpenConns int           `envconfig:"STORE_MAX_OPEN_CONNS" default:"5" validate:"gte=0"`
	QueryTimeout time.Duration `envconfig:"STORE_QUERY_TIMEOUT" default:"5s" validate:"gte=0"`
}

// BreakerConfig tunes the circuit breaker in front of the store.
type BreakerConfig struct {
	MaxRequests      uint32        `envconfig:"BREAKER_MAX_REQUESTS" default:"1" validate:"gte=1"`
	Interval         time.Duration `envconfig:"BREAKER_INTERVAL" default:"1m" validate:"gte=0"`
	Timeout          time.Duration `envconfig:"BREAKER_TIMEOUT" default:"30s" validate:"gt=0"`
	FailureThreshold uint32        `envconfig:"BREAKER_FAILURE_THRESHOLD" default:"5" validate:"gte=1"`
}

// ProbeConfig controls the periodic dataset probe behind /health.
type ProbeConfig struct {
	Interval time.Duration `envconfig:"PROBE_INTERVAL" default:"5m" validate:"gte=10s"`
}

// Load reads configuration from the environment (and an optional .env file)
// and validates it.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("invalid environment configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}
