package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rogerio-castellano/inventory-shell/internal/repo"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// ErrMissingConnectionString is returned when the selected store has no
// connection string configured.
var ErrMissingConnectionString = errors.New("connection string not configured")

type Config struct {
	MongoURI    string `mapstructure:"mongodb_key"`
	DatabaseURL string `mapstructure:"database_url"`
	Store       Store  `mapstructure:"store"`
	Redis       Redis  `mapstructure:"redis"`
	Log         Log    `mapstructure:"log"`
}

type Store struct {
	Driver     string        `mapstructure:"driver"`
	Database   string        `mapstructure:"database"`
	Collection string        `mapstructure:"collection"`
	Timeout    time.Duration `mapstructure:"timeout"`
	UpdateMode string        `mapstructure:"update_mode"`
}

type Redis struct {
	Addr string        `mapstructure:"addr"`
	TTL  time.Duration `mapstructure:"ttl"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Load reads .env, an optional config.yaml and the environment, in that
// order of increasing precedence.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if path := os.Getenv("INVENTORY_CONFIG"); path != "" {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows about.
	for _, key := range []string{"mongodb_key", "database_url"} {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", DriverMongo)
	v.SetDefault("store.database", "inventoryManagementSystemDB")
	v.SetDefault("store.collection", "product")
	v.SetDefault("store.timeout", 5*time.Second)
	v.SetDefault("store.update_mode", string(repo.UpdateFirst))
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.ttl", time.Minute)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.pretty", true)
}

func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_KEY: %w", ErrMissingConnectionString)
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL: %w", ErrMissingConnectionString)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if _, err := repo.ParseUpdateMode(c.Store.UpdateMode); err != nil {
		return err
	}

	if c.Store.Timeout <= 0 {
		return fmt.Errorf("store timeout must be positive, got %s", c.Store.Timeout)
	}
	return nil
}
