package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Server   ServerConfig   `yaml:"server"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Kitchen  KitchenConfig  `yaml:"kitchen"`
	Log      LogConfig      `yaml:"log"`
	// Storage selects the store adapter: postgres or memory.
	Storage string `yaml:"storage"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int    `yaml:"max_conns"`
}

type RabbitMQConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LedgerConfig struct {
	// StrictTransitions only lets orders move forward through their statuses.
	StrictTransitions bool   `yaml:"strict_transitions"`
	Timezone          string `yaml:"timezone"`
}

type KitchenConfig struct {
	WorkerName string        `yaml:"worker_name"`
	PrepTime   time.Duration `yaml:"prep_time"`
	Prefetch   int           `yaml:"prefetch"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads the YAML file at path, then applies .env and environment
// overrides and fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = n
		}
		return nil
	}
	setBool := func(key string, dst *bool) error {
		if v, ok := os.LookupEnv(key); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = b
		}
		return nil
	}

	setString("PG_HOST", &c.Database.Host)
	setString("PG_USER", &c.Database.User)
	setString("PG_PASS", &c.Database.Password)
	setString("PG_DB", &c.Database.Database)
	setString("PG_SSLMODE", &c.Database.SSLMode)
	setString("RABBITMQ_HOST", &c.RabbitMQ.Host)
	setString("RABBITMQ_USER", &c.RabbitMQ.User)
	setString("RABBITMQ_PASS", &c.RabbitMQ.Password)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("TZ_NAME", &c.Ledger.Timezone)
	setString("STORAGE", &c.Storage)

	for key, dst := range map[string]*int{
		"PG_PORT":       &c.Database.Port,
		"RABBITMQ_PORT": &c.RabbitMQ.Port,
		"SERVER_PORT":   &c.Server.Port,
	} {
		if err := setInt(key, dst); err != nil {
			return err
		}
	}
	for key, dst := range map[string]*bool{
		"RABBITMQ_ENABLED":   &c.RabbitMQ.Enabled,
		"STRICT_TRANSITIONS": &c.Ledger.StrictTransitions,
	} {
		if err := setBool(key, dst); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.RabbitMQ.Host == "" {
		c.RabbitMQ.Host = "localhost"
	}
	if c.RabbitMQ.Port == 0 {
		c.RabbitMQ.Port = 5672
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Ledger.Timezone == "" {
		c.Ledger.Timezone = "UTC"
	}
	if c.Kitchen.WorkerName == "" {
		c.Kitchen.WorkerName = "kitchen-worker"
	}
	if c.Kitchen.PrepTime == 0 {
		c.Kitchen.PrepTime = 5 * time.Second
	}
	if c.Kitchen.Prefetch == 0 {
		c.Kitchen.Prefetch = 1
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Storage == "" {
		c.Storage = StoragePostgres
	}
	c.Storage = strings.ToLower(c.Storage)
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch c.Storage {
	case StoragePostgres:
		if c.Database.User == "" || c.Database.Database == "" {
			return errors.New("database.user and database.database are required for postgres storage")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage %q", c.Storage)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Kitchen.PrepTime < 0 {
		return errors.New("kitchen.prep_time must not be negative")
	}
	if c.Kitchen.Prefetch < 0 {
		return errors.New("kitchen.prefetch must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// ValidateMode rejects settings a process mode cannot run with. The kitchen
// shares orders with the floor service, so it needs the shared database and
// the broker.
func (c *Config) ValidateMode(mode string) error {
	switch mode {
	case "kitchen-worker":
		if c.Storage != StoragePostgres {
			return fmt.Errorf("kitchen-worker requires postgres storage, got %q", c.Storage)
		}
		if !c.RabbitMQ.Enabled {
			return errors.New("kitchen-worker requires rabbitmq.enabled")
		}
	case "notification-subscriber":
		if !c.RabbitMQ.Enabled {
			return errors.New("notification-subscriber requires rabbitmq.enabled")
		}
	case "migrate":
		if c.Storage != StoragePostgres {
			return fmt.Errorf("migrate requires postgres storage, got %q", c.Storage)
		}
	}
	return nil
}

// Location is the time zone calendar days are reported in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Ledger.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Ledger.Timezone, err)
	}
	return loc, nil
}

// RabbitMQURL returns an AMQP connection URL
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}
