/*
Package storage handles avatar object storage on S3-compatible services.

Uploads never pass through the API server: handlers hand out short-lived
presigned URLs and the browser talks to the bucket directly.
*/
package storage

import (
	"context"
	"time"
)

// ServiceConfig holds the credentials and location of the avatar bucket.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// AvatarStorage is the interface handlers use to manage avatar objects.
type AvatarStorage interface {
	// PresignUpload generates a pre-signed URL for uploading an avatar.
	PresignUpload(
		ctx context.Context,
		key string,
		mimeType string,
		fileSize int64,
		duration time.Duration,
	) (string, error)

	// PresignDownload generates a pre-signed URL for reading an avatar.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)

	// Delete removes the avatar object with the given key.
	Delete(ctx context.Context, key string) error
}

// NewAvatarStorage returns the S3-compatible implementation.
func NewAvatarStorage(cfg ServiceConfig) (AvatarStorage, error) {
	return newS3Client(cfg)
}
