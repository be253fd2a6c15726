package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// NewGCSClient creates a storage client. With an empty credentialsFile the
// client uses Application Default Credentials.
func NewGCSClient(ctx context.Context, credentialsFile string) (*storage.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); err != nil {
			return nil, fmt.Errorf("service account key not found at path %s: %w", credentialsFile, err)
		}
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}
	return client, nil
}

// ParseGCSURL splits gs://bucket/object into its bucket and object name.
func ParseGCSURL(url string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(url, gcsScheme)
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidGCSURL, url)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidGCSURL, url)
	}
	return bucket, object, nil
}

func readGCS(ctx context.Context, client *storage.Client, bucket, object string) ([]byte, error) {
	rc, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, objectError(err, bucket, object)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", bucket, object, err)
	}
	return data, nil
}

// objectError maps a failed object open to ErrNotFound when the object or
// bucket is missing.
func objectError(err error, bucket, object string) error {
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("%w: gs://%s/%s: %w", ErrNotFound, bucket, object, err)
	}
	return fmt.Errorf("failed to open gs://%s/%s: %w", bucket, object, err)
}

func writeGCS(ctx context.Context, client *storage.Client, bucket, object string, data []byte) error {
	w := client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = "application/octet-stream"
	w.CacheControl = "no-cache, no-store, must-revalidate"

	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write gs://%s/%s: %w", bucket, object, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer for gs://%s/%s: %w", bucket, object, err)
	}
	return nil
}
