// Package config provides configuration management for catalog-sync.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file. Defaults live next to each field in a `default` tag.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Server: HTTP port and API key for the trigger/status API
//   - Database: driver (mysql, postgres, sqlite) and connection details
//   - Storage: S3/MinIO credentials and the snapshot bucket
//   - Log: logging level and format
//   - Remote: tarkov-market and tarkov.dev endpoints, API key, request pacing
//   - Sync: recurring interval, worker count, snapshot archive/replay
//   - Lock: run lock backend (memory or redis)
//
// Validate reports missing credentials or endpoints as a ConfigurationError,
// which is the only error class that stops the process at startup.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
