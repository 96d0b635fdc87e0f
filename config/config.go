package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// ID schemes
const (
	IDsUUID   = "uuid"
	IDsNanoID = "nanoid"
)

var (
	ErrUnknownBackend  = errors.New("unknown storage backend")
	ErrUnknownIDScheme = errors.New("unknown id scheme")
)

type Config struct {
	Env  string `yaml:"env"`
	Port string `yaml:"port"`

	Storage StorageConfig `yaml:"storage"`
	Latency LatencyConfig `yaml:"latency"`

	// KeyPrefix namespaces every storage key.
	KeyPrefix       string `yaml:"keyPrefix"`
	DisableCache    bool   `yaml:"disableCache"`
	DisableDemoData bool   `yaml:"disableDemoData"`

	// IDs selects time-ordered UUIDs or short nanoids for new records.
	IDs string `yaml:"ids"`
}

type StorageConfig struct {
	Backend        string `yaml:"backend"`
	SQLitePath     string `yaml:"sqlitePath"`
	PostgresURL    string `yaml:"postgresUrl"`
	RedisURL       string `yaml:"redisUrl"`
	RedisNamespace string `yaml:"redisNamespace"`
}

type LatencyConfig struct {
	Auth    time.Duration `yaml:"auth"`
	Tickets time.Duration `yaml:"tickets"`
}

func Default() Config {
	return Config{
		Env:  "dev",
		Port: "8080",
		Storage: StorageConfig{
			Backend:        BackendSQLite,
			SQLitePath:     "ticketflow.db",
			RedisNamespace: "ticketflow",
		},
		Latency: LatencyConfig{
			Auth:    1500 * time.Millisecond,
			Tickets: 500 * time.Millisecond,
		},
		IDs: IDsUUID,
	}
}

// LoadConfig reads .env if present, then the YAML file named by
// TICKETFLOW_CONFIG, then environment variables. Later sources win.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	return Load(os.Getenv("TICKETFLOW_CONFIG"))
}

// Load builds a config from defaults, the optional YAML file at path and
// the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnv() {
	c.Env = getEnv("APP_ENV", c.Env)
	c.Port = getEnv("PORT", c.Port)

	c.Storage.Backend = getEnv("TICKETFLOW_STORAGE", c.Storage.Backend)
	c.Storage.SQLitePath = getEnv("TICKETFLOW_SQLITE_PATH", c.Storage.SQLitePath)
	c.Storage.PostgresURL = getEnv("TICKETFLOW_DATABASE_URL", c.Storage.PostgresURL)
	c.Storage.RedisURL = getEnv("TICKETFLOW_REDIS_URL", c.Storage.RedisURL)
	c.Storage.RedisNamespace = getEnv("TICKETFLOW_REDIS_NAMESPACE", c.Storage.RedisNamespace)

	c.Latency.Auth = getEnvDuration("TICKETFLOW_AUTH_LATENCY", c.Latency.Auth)
	c.Latency.Tickets = getEnvDuration("TICKETFLOW_TICKET_LATENCY", c.Latency.Tickets)

	c.KeyPrefix = getEnv("TICKETFLOW_KEY_PREFIX", c.KeyPrefix)
	c.DisableCache = getEnvBool("TICKETFLOW_DISABLE_CACHE", c.DisableCache)
	c.DisableDemoData = getEnvBool("TICKETFLOW_DISABLE_DEMO_DATA", c.DisableDemoData)
	c.IDs = getEnv("TICKETFLOW_IDS", c.IDs)
}

// Validate checks that the selected backend has what it needs to connect.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite backend requires TICKETFLOW_SQLITE_PATH")
		}
	case BackendPostgres:
		if c.Storage.PostgresURL == "" {
			return fmt.Errorf("postgres backend requires TICKETFLOW_DATABASE_URL")
		}
	case BackendRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("redis backend requires TICKETFLOW_REDIS_URL")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Storage.Backend)
	}

	if c.IDs != IDsUUID && c.IDs != IDsNanoID {
		return fmt.Errorf("%w: %q", ErrUnknownIDScheme, c.IDs)
	}

	if c.Latency.Auth < 0 || c.Latency.Tickets < 0 {
		return fmt.Errorf("latency must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
