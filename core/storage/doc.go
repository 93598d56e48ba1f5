// Package storage is the object storage client behind the snapshot archive.
//
// Client is a narrow view of minio.Client: the archive writes, lists and reads
// raw remote payloads, and the integrity checks look for the dataset folders.
// NewClient works against MinIO or any S3 compatible endpoint; a scheme in
// the endpoint is stripped and TLS follows storage.use_ssl.
//
// mocks.Client is the testify mock used by the remote and integrity tests.
package storage
