package config

import (
	"reflect"
	"strings"
	"time"

	"catalog-sync/core/database"
	"catalog-sync/core/lock"
	"catalog-sync/core/logger"
	"catalog-sync/core/reconcile"
	"catalog-sync/core/server"
	"catalog-sync/core/storage"
	"catalog-sync/feature/catalog/remote"
	catalogsync "catalog-sync/feature/catalog/sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the snapshot object storage (S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// Remote holds the endpoints and pacing of the remote catalog sources.
	Remote remote.Config `mapstructure:"remote"`
	// Sync holds the schedule and parallelism of reconciliation runs.
	Sync catalogsync.Config `mapstructure:"sync"`
	// Lock holds the run lock backend.
	Lock lock.Config `mapstructure:"lock"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SYNC_INTERVAL -> sync.interval)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the settings that cannot be recovered from at runtime.
// The returned error is always a *reconcile.ConfigurationError.
func (c *Config) Validate() error {
	if c.Remote.MarketAPIKey == "" {
		return &reconcile.ConfigurationError{Field: "remote.market_api_key", Reason: "is required"}
	}
	if c.Remote.MarketBaseURL == "" {
		return &reconcile.ConfigurationError{Field: "remote.market_base_url", Reason: "is required"}
	}
	if c.Remote.TarkovDevEndpoint == "" {
		return &reconcile.ConfigurationError{Field: "remote.tarkovdev_endpoint", Reason: "is required"}
	}
	if !database.IsSupportedDriver(c.Database.Driver) {
		return &reconcile.ConfigurationError{Field: "database.driver", Reason: "unsupported driver " + c.Database.Driver}
	}
	switch c.Lock.Backend {
	case lock.BackendMemory:
	case lock.BackendRedis:
		if c.Lock.RedisAddr == "" {
			return &reconcile.ConfigurationError{Field: "lock.redis_addr", Reason: "is required for the redis backend"}
		}
	default:
		return &reconcile.ConfigurationError{Field: "lock.backend", Reason: "unknown backend " + c.Lock.Backend}
	}
	if c.Sync.Interval <= 0 {
		return &reconcile.ConfigurationError{Field: "sync.interval", Reason: "must be positive"}
	}
	if c.Sync.Snapshot.Replay && c.Storage.Bucket == "" {
		return &reconcile.ConfigurationError{Field: "storage.bucket", Reason: "is required to replay snapshots"}
	}
	return nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	durationType := reflect.TypeOf(time.Duration(0))

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// Durations are int64 kinds, everything else struct-shaped is a section
		if field.Type.Kind() == reflect.Struct && field.Type != durationType {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
