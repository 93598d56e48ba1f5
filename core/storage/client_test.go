package storage_test

import (
	"testing"

	"catalog-sync/core/storage"
	"catalog-sync/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The mock must keep up with the narrowed interface.
var _ storage.Client = (*mocks.Client)(nil)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name string
		cfg  storage.Config
	}{
		{"plain host", storage.Config{Endpoint: "localhost:9000", Bucket: "catalog-snapshots"}},
		{"http scheme stripped", storage.Config{Endpoint: "http://minio:9000"}},
		{"https with region", storage.Config{Endpoint: "https://s3.amazonaws.com", UseSSL: true, Region: "eu-west-1"}},
		{"zero timeout falls back", storage.Config{Endpoint: "localhost:9000", TimeoutSeconds: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.AccessKey, tt.cfg.SecretKey = "key", "secret"
			client, err := storage.NewClient(tt.cfg)
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}

	_, err := storage.NewClient(storage.Config{Endpoint: "bad host:9000"})
	assert.Error(t, err, "minio rejects an endpoint with a space")
}
