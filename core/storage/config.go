package storage

// Config holds the snapshot bucket connection, bound to the storage section.
type Config struct {
	// Endpoint is host:port of the S3 compatible service; a scheme is ignored.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`

	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	UseSSL    bool   `mapstructure:"use_ssl" default:"false"`
	Region    string `mapstructure:"region" default:""`

	// Bucket holds raw remote snapshots under sync.snapshot.prefix.
	Bucket string `mapstructure:"bucket" default:"catalog-snapshots"`

	// TimeoutSeconds bounds dialing, TLS and the first response byte.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
