// Package config loads run settings from the environment, optionally seeded
// from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"rras-datagen/internal/datastore"
	"rras-datagen/internal/generator"
	"rras-datagen/internal/simulation"
	"rras-datagen/internal/snapshot"
	"rras-datagen/internal/store"
)

var validate = validator.New()

// Config holds every setting of a run.
type Config struct {
	SinkType    string `validate:"oneof=db api memory"`
	Database    DatabaseConfig
	API         APIConfig
	Simulation  SimulationConfig
	Log         LogConfig
	MetricsAddr string
}

type DatabaseConfig struct {
	ConnString      string
	Host            string `validate:"required_without=ConnString"`
	Port            int    `validate:"min=1,max=65535"`
	Name            string `validate:"required_without=ConnString"`
	User            string
	Password        string
	SSLMode         string `validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxOpenConns    int    `validate:"min=0"`
	MaxIdleConns    int    `validate:"min=0"`
	ConnMaxLifetime time.Duration
}

type APIConfig struct {
	BaseURL string `validate:"omitempty,url"`
	Token   string
	Timeout time.Duration `validate:"min=0"`
}

type SimulationConfig struct {
	Customers       int           `validate:"min=0"`
	Duration        time.Duration `validate:"min=0"`
	Rate            float64       `validate:"min=0"`
	Interval        time.Duration `validate:"min=0"`
	BatchSize       int           `validate:"min=1"`
	Backoff         time.Duration `validate:"min=0"`
	Seed            int64
	Policy          string `validate:"omitempty,oneof=batch stream"`
	DelinquencyMode string `validate:"omitempty,oneof=uniform weighted"`
	SnapshotMode    string `validate:"oneof=fixed random"`
}

type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=json text"`
	File   string
}

// Load reads envFiles (default .env) into the environment without
// overriding variables already set, then builds and validates a Config.
// Missing env files are not an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxOpenConns, err := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %w", err)
	}
	maxIdleConns, err := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_IDLE_CONNS: %w", err)
	}
	connMaxLifetime, err := time.ParseDuration(getEnv("DB_CONN_MAX_LIFETIME", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}
	apiTimeout, err := time.ParseDuration(getEnv("API_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}
	customers, err := strconv.Atoi(getEnv("SIM_CUSTOMERS", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid SIM_CUSTOMERS: %w", err)
	}
	duration, err := time.ParseDuration(getEnv("SIM_DURATION", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SIM_DURATION: %w", err)
	}
	rate, err := strconv.ParseFloat(getEnv("SIM_RATE", "0"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SIM_RATE: %w", err)
	}
	interval, err := time.ParseDuration(getEnv("SIM_INTERVAL", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SIM_INTERVAL: %w", err)
	}
	batchSize, err := strconv.Atoi(getEnv("SIM_BATCH_SIZE", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid SIM_BATCH_SIZE: %w", err)
	}
	backoff, err := time.ParseDuration(getEnv("SIM_BACKOFF", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SIM_BACKOFF: %w", err)
	}
	seed, err := strconv.ParseInt(getEnv("SIM_SEED", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SIM_SEED: %w", err)
	}

	cfg := &Config{
		SinkType: strings.ToLower(getEnv("SINK_TYPE", "db")),
		Database: DatabaseConfig{
			ConnString:      os.Getenv("DB_CONN_STRING"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            dbPort,
			Name:            getEnv("DB_NAME", "rras"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        os.Getenv("DB_PASSWORD"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    maxOpenConns,
			MaxIdleConns:    maxIdleConns,
			ConnMaxLifetime: connMaxLifetime,
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(os.Getenv("API_BASE_URL"), "/"),
			Token:   os.Getenv("API_TOKEN"),
			Timeout: apiTimeout,
		},
		Simulation: SimulationConfig{
			Customers:       customers,
			Duration:        duration,
			Rate:            rate,
			Interval:        interval,
			BatchSize:       batchSize,
			Backoff:         backoff,
			Seed:            seed,
			Policy:          strings.ToLower(os.Getenv("SIM_POLICY")),
			DelinquencyMode: strings.ToLower(os.Getenv("SIM_DELINQUENCY_MODE")),
			SnapshotMode:    strings.ToLower(getEnv("SIM_SNAPSHOT_MODE", "fixed")),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
			File:   os.Getenv("LOG_FILE"),
		},
		MetricsAddr: os.Getenv("METRICS_ADDR"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and the settings the chosen sink needs.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.SinkType == string(datastore.APIStore) && c.API.BaseURL == "" {
		return fmt.Errorf("invalid configuration: API_BASE_URL is required when SINK_TYPE=api")
	}
	return nil
}

// DataStore returns the sink selection.
func (c *Config) DataStore() datastore.Config {
	return datastore.Config{
		Type: datastore.Type(c.SinkType),
		Database: store.Config{
			ConnString:      c.Database.ConnString,
			Host:            c.Database.Host,
			Port:            c.Database.Port,
			Name:            c.Database.Name,
			User:            c.Database.User,
			Password:        c.Database.Password,
			SSLMode:         c.Database.SSLMode,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
		},
		APIURL:   c.API.BaseURL,
		APIToken: c.API.Token,
		Timeout:  c.API.Timeout,
	}
}

// Policy resolves the generation policy. Without SIM_POLICY the API sink
// streams and every other sink seeds in batch shape.
func (c *Config) Policy() (generator.Policy, error) {
	name := c.Simulation.Policy
	if name == "" {
		name = "batch"
		if c.SinkType == string(datastore.APIStore) {
			name = "stream"
		}
	}
	p, err := generator.PolicyByName(name)
	if err != nil {
		return p, err
	}
	if c.Simulation.DelinquencyMode != "" {
		mode, err := generator.ParseDelinquencyMode(c.Simulation.DelinquencyMode)
		if err != nil {
			return p, err
		}
		p.Delinquency = mode
	}
	return p, p.Validate()
}

// Runner returns the pacing settings for a simulation.
func (c *Config) Runner() simulation.Config {
	return simulation.Config{
		Duration:     c.Simulation.Duration,
		Interval:     c.Simulation.Interval,
		Rate:         c.Simulation.Rate,
		BatchSize:    c.Simulation.BatchSize,
		Backoff:      c.Simulation.Backoff,
		SnapshotMode: snapshot.Mode(c.Simulation.SnapshotMode),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
