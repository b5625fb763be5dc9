// Package config builds the explicit configuration objects handed to each
// process at start-up. Required values have no fallback: Load fails instead.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/joho/godotenv"

	"smartspend/internal/database"
)

// Budget write strategies accepted by BUDGET_WRITE_STRATEGY.
const (
	WriteStrategyReplace = "replace"
	WriteStrategyUpdate  = "update"
)

// Common holds settings shared by the API server and the alert worker.
type Common struct {
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL"`

	Database database.Config

	BudgetWriteStrategy string `env:"BUDGET_WRITE_STRATEGY" envDefault:"replace"`
	Timezone            string `env:"TIMEZONE" envDefault:"UTC"`

	// Location is resolved from Timezone by Load.
	Location *time.Location
}

// Config holds the API server configuration.
type Config struct {
	Common

	Port             string        `env:"PORT" envDefault:"8080"`
	JWTSecret        string        `env:"JWT_SECRET"`
	JWTExpirationDur time.Duration `env:"JWT_EXPIRES_IN" envDefault:"24h"`
	CORSAllowOrigins []string      `env:"CORS_ALLOW_ORIGINS" envSeparator:" " envDefault:"*"`
	InternalAPIKey   string        `env:"INTERNAL_API_KEY"`
}

// WorkerConfig holds the alert worker configuration.
type WorkerConfig struct {
	Common

	AMQPURL        string        `env:"AMQP_URL"`
	AMQPExchange   string        `env:"AMQP_EXCHANGE" envDefault:"smartspend"`
	AMQPAlertQueue string        `env:"AMQP_ALERT_QUEUE" envDefault:"budget_alerts"`
	PollInterval   time.Duration `env:"ALERT_POLL_INTERVAL" envDefault:"30s"`
	SuppressTTL    time.Duration `env:"ALERT_SUPPRESS_TTL" envDefault:"6h"`
	Concurrency    int           `env:"ALERT_WORKER_CONCURRENCY" envDefault:"4"`
	MetricsPort    string        `env:"METRICS_PORT" envDefault:"9091"`
}

// Load reads the API configuration from the environment (and .env when
// present) and validates it.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWorker reads and validates the alert worker configuration.
func LoadWorker() (*WorkerConfig, error) {
	loadDotEnv()

	cfg := &WorkerConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabase reads only the database settings, for tools that need nothing
// else.
func LoadDatabase() (*database.Config, error) {
	loadDotEnv()

	cfg := &database.Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := joinProblems(cfg.Validate()); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
}

// Validate checks the API configuration and resolves derived values.
func (c *Config) Validate() error {
	problems := c.Common.validate()

	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	if c.JWTExpirationDur <= 0 {
		problems = append(problems, "JWT_EXPIRES_IN must be positive")
	}

	return joinProblems(problems)
}

// Validate checks the worker configuration and resolves derived values.
func (c *WorkerConfig) Validate() error {
	problems := c.Common.validate()

	if c.AMQPURL == "" {
		problems = append(problems, "AMQP_URL is required")
	}
	if c.PollInterval <= 0 {
		problems = append(problems, "ALERT_POLL_INTERVAL must be positive")
	}
	if c.SuppressTTL < 0 {
		problems = append(problems, "ALERT_SUPPRESS_TTL must not be negative")
	}
	if c.Concurrency < 1 {
		problems = append(problems, "ALERT_WORKER_CONCURRENCY must be at least 1")
	}

	return joinProblems(problems)
}

func (c *Common) validate() []string {
	var problems []string

	switch c.BudgetWriteStrategy {
	case WriteStrategyReplace, WriteStrategyUpdate:
	default:
		problems = append(problems, fmt.Sprintf("BUDGET_WRITE_STRATEGY %q must be %q or %q",
			c.BudgetWriteStrategy, WriteStrategyReplace, WriteStrategyUpdate))
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		problems = append(problems, fmt.Sprintf("TIMEZONE %q: %v", c.Timezone, err))
	} else {
		c.Location = loc
	}

	problems = append(problems, c.Database.Validate()...)
	return problems
}

func joinProblems(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}
