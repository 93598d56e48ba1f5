package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"catalog-sync/core/storage"

	"github.com/minio/minio-go/v7"
)

// ErrNoSnapshot is returned when replay finds no archived payload for a dataset.
var ErrNoSnapshot = errors.New("no snapshot archived")

// snapshotLayout sorts lexicographically in time order.
const snapshotLayout = "20060102T150405.000000000Z"

// Snapshots archives raw remote payloads in object storage.
// Objects are named {prefix}/{dataset}/{UTC timestamp}.json.
type Snapshots struct {
	client storage.Client
	bucket string
	prefix string
	now    func() time.Time
}

// NewSnapshots creates a snapshot archive in bucket under prefix.
func NewSnapshots(client storage.Client, bucket, prefix string) *Snapshots {
	return &Snapshots{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		now:    time.Now,
	}
}

// Bucket returns the archive bucket.
func (s *Snapshots) Bucket() string {
	return s.bucket
}

// Dir returns the object prefix of a dataset, trailing slash included.
func (s *Snapshots) Dir(dataset string) string {
	if s.prefix == "" {
		return dataset + "/"
	}
	return path.Join(s.prefix, dataset) + "/"
}

// Archive stores raw as the newest snapshot of dataset and returns its object name.
func (s *Snapshots) Archive(ctx context.Context, dataset string, raw []byte) (string, error) {
	key := s.Dir(dataset) + s.now().UTC().Format(snapshotLayout) + ".json"
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(raw), int64(len(raw)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", key, err)
	}
	return key, nil
}

// LatestKey returns the object name of the newest snapshot of dataset.
func (s *Snapshots) LatestKey(ctx context.Context, dataset string) (string, error) {
	opts := minio.ListObjectsOptions{Prefix: s.Dir(dataset), Recursive: true}

	latest := ""
	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return "", fmt.Errorf("failed to list snapshots of %s: %w", dataset, obj.Err)
		}
		if strings.HasSuffix(obj.Key, ".json") && obj.Key > latest {
			latest = obj.Key
		}
	}
	if latest == "" {
		return "", fmt.Errorf("%s: %w", dataset, ErrNoSnapshot)
	}
	return latest, nil
}

// Latest returns the newest archived payload of dataset and its object name.
func (s *Snapshots) Latest(ctx context.Context, dataset string) ([]byte, string, error) {
	key, err := s.LatestKey(ctx, dataset)
	if err != nil {
		return nil, "", err
	}

	reader, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get snapshot %s: %w", key, err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read snapshot %s: %w", key, err)
	}
	return raw, key, nil
}

// Datasets lists every dataset name the transport archives.
func Datasets() []string {
	return []string{"market-pve", "market-pvp", "dev-items", "dev-types", "dev-keys", "dev-sales"}
}
