package server

import "strings"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// Enabled toggles the HTTP API; the sync scheduler runs either way.
	Enabled bool `mapstructure:"enabled" default:"true"`
}

// Address returns the listen address for fiber.
func (c Config) Address() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
