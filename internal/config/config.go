// Package config reads the service settings from the environment, optionally
// seeded from .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	SinkLog   = "log"
	SinkEmail = "email"
	SinkKafka = "kafka"
)

type OutboxOptions struct {
	PollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	BatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"50"`
	MaxAttempts  int           `env:"OUTBOX_MAX_ATTEMPTS" envDefault:"10"`
	MaxBackoff   time.Duration `env:"OUTBOX_MAX_BACKOFF" envDefault:"10m"`
}

type NotifyOptions struct {
	Sink         string        `env:"NOTIFY_SINK" envDefault:"log"`
	URL          string        `env:"NOTIFY_URL"`
	Key          string        `env:"NOTIFY_KEY"`
	Timeout      time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s"`
	KafkaBrokers string        `env:"KAFKA_BROKERS"`
	KafkaTopic   string        `env:"KAFKA_TOPIC" envDefault:"waseet.notifications"`
}

type Configuration struct {
	ServerAddress  string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0:8080"`
	PostgresConn   string `env:"POSTGRES_CONN"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"migrations"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	AdminToken           string `env:"ADMIN_TOKEN"`
	LifecycleForwardOnly bool   `env:"LIFECYCLE_FORWARD_ONLY" envDefault:"false"`
	ShippingRatesPath    string `env:"SHIPPING_RATES_PATH"`

	Notify NotifyOptions
	Outbox OutboxOptions
}

// LoadEnv loads the env files that exist. Variables already set in the
// process environment win.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}

	return len(existing), godotenv.Load(existing...)
}

func Load(envFiles ...string) (*Configuration, error) {
	if _, err := LoadEnv(envFiles); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}

	c := &Configuration{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Configuration) Validate() error {
	var errs []error
	if c.PostgresConn == "" {
		errs = append(errs, errors.New("POSTGRES_CONN is required"))
	}

	switch strings.ToLower(c.Notify.Sink) {
	case SinkLog:
	case SinkEmail:
		if c.Notify.URL == "" {
			errs = append(errs, errors.New("NOTIFY_URL is required when NOTIFY_SINK is email"))
		}
	case SinkKafka:
		if c.Notify.KafkaBrokers == "" {
			errs = append(errs, errors.New("KAFKA_BROKERS is required when NOTIFY_SINK is kafka"))
		}
	default:
		errs = append(errs, fmt.Errorf("NOTIFY_SINK must be one of log, email, kafka, got %q", c.Notify.Sink))
	}

	if c.Outbox.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("OUTBOX_POLL_INTERVAL must be positive, got %s", c.Outbox.PollInterval))
	}
	if c.Outbox.MaxBackoff <= 0 {
		errs = append(errs, fmt.Errorf("OUTBOX_MAX_BACKOFF must be positive, got %s", c.Outbox.MaxBackoff))
	}
	if c.Outbox.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("OUTBOX_BATCH_SIZE must be positive, got %d", c.Outbox.BatchSize))
	}
	if c.Outbox.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("OUTBOX_MAX_ATTEMPTS must be positive, got %d", c.Outbox.MaxAttempts))
	}

	return errors.Join(errs...)
}
