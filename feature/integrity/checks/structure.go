package checks

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"catalog-sync/core/storage"
	"catalog-sync/feature/catalog/remote"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// SnapshotFolders lists the folders the snapshot archive writes to.
func SnapshotFolders(snaps *remote.Snapshots) []string {
	datasets := remote.Datasets()
	folders := make([]string, 0, len(datasets))
	for _, ds := range datasets {
		folders = append(folders, snaps.Dir(ds))
	}
	return folders
}

// CheckStructure returns the dataset folders missing from the snapshot bucket.
// A missing bucket is an error, not a list of missing folders.
func CheckStructure(ctx context.Context, client storage.Client, bucket string, folders []string) ([]string, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	var missing []string
	for _, folder := range folders {
		if !hasObjects(ctx, client, bucket, folderKey(folder)) {
			missing = append(missing, folder)
		}
	}
	return missing, nil
}

// hasObjects reports whether anything is stored under prefix. The listing is
// cancelled after the first hit so the lister goroutine exits.
func hasObjects(ctx context.Context, client storage.Client, bucket, prefix string) bool {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	obj, ok := <-client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, MaxKeys: 1})
	return ok && obj.Err == nil
}

// FixStructure writes an empty marker object for every missing folder.
func FixStructure(ctx context.Context, client storage.Client, bucket string, logger *zap.Logger, missing []string) error {
	for _, folder := range missing {
		key := folderKey(folder)
		if _, err := client.PutObject(ctx, bucket, key, bytes.NewReader(nil), 0, minio.PutObjectOptions{}); err != nil {
			logger.Error("Failed to create snapshot folder", zap.String("folder", key), zap.Error(err))
			return fmt.Errorf("failed to create folder %s: %w", key, err)
		}
		logger.Info("Created snapshot folder", zap.String("folder", key))
	}
	return nil
}

func folderKey(folder string) string {
	if strings.HasSuffix(folder, "/") {
		return folder
	}
	return folder + "/"
}
