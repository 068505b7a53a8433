package helpers

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

const avatarCacheControl = "public, max-age=86400"

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// AvatarObjectPath returns a fresh object name under avatars/<userID>/ so a
// new upload never overwrites a cached one.
func AvatarObjectPath(userID, ext string) string {
	return path.Join("avatars", userID, uuid.NewString()+strings.ToLower(ext))
}

// UploadObject streams r into bucket/objectPath and returns the public URL.
func UploadObject(ctx context.Context, client *storage.Client, bucket, objectPath, contentType string, r io.Reader) (string, error) {
	wc := client.Bucket(bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = avatarCacheControl
	wc.ChunkSize = 0 // avatars are small, send in one request
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("writing gs://%s/%s: %w", bucket, objectPath, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("closing gs://%s/%s: %w", bucket, objectPath, err)
	}
	return PublicURL(bucket, objectPath), nil
}

func PublicURL(bucket, objectPath string) string {
	return "https://storage.googleapis.com/" + bucket + "/" + objectPath
}
