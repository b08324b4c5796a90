// Package storage adapts MinIO / S3-compatible object storage for
// message attachments.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrObjectExists is returned by Upload when the key is already taken.
var ErrObjectExists = errors.New("object already exists")

// Options configures a MinIOClient.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the base under which objects are served. Defaults to the
	// endpoint with the scheme implied by UseSSL.
	PublicURL string
}

// PutOptions carries per-object metadata.
type PutOptions struct {
	ContentType  string
	CacheControl string
}

// MinIOClient wraps a MinIO client with bucket-scoped operations.
type MinIOClient struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinIOClient creates a MinIO client and ensures the bucket exists.
func NewMinIOClient(ctx context.Context, opts Options) (*MinIOClient, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return &MinIOClient{
		client:    client,
		bucket:    opts.Bucket,
		publicURL: PublicBaseURL(opts),
	}, nil
}

// PublicBaseURL resolves the base URL objects are served from.
func PublicBaseURL(opts Options) string {
	if opts.PublicURL != "" {
		return strings.TrimRight(opts.PublicURL, "/")
	}
	scheme := "http"
	if opts.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + opts.Endpoint
}

// Upload stores an object under key and refuses to overwrite an existing one.
// The existence check and the put are separate requests, so no-overwrite is
// best-effort: two writers racing on one key can both pass the check. Keys
// carry a random token, so a collision needs a duplicate token as well.
func (m *MinIOClient) Upload(ctx context.Context, key string, reader io.Reader, size int64, opts PutOptions) error {
	_, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return fmt.Errorf("%s: %w", key, ErrObjectExists)
	}
	if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("minio stat %s: %w", key, err)
	}

	_, err = m.client.PutObject(ctx, m.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		CacheControl: opts.CacheControl,
	})
	if err != nil {
		return fmt.Errorf("minio put %s: %w", key, err)
	}
	return nil
}

// GetURL returns the public URL for an object.
func (m *MinIOClient) GetURL(key string) string {
	return ObjectURL(m.publicURL, m.bucket, key)
}

// ObjectURL joins a public base, bucket and key, escaping each key segment.
func ObjectURL(base, bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return base + "/" + url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}

// Delete removes an object from the bucket.
func (m *MinIOClient) Delete(ctx context.Context, key string) error {
	return m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
}

// Ping checks that the bucket is reachable.
func (m *MinIOClient) Ping(ctx context.Context) error {
	if _, err := m.client.BucketExists(ctx, m.bucket); err != nil {
		return fmt.Errorf("minio bucket check: %w", err)
	}
	return nil
}
