// Package s3 stores evidence photos (listing shots, condition reports,
// dispute attachments) in a MinIO/S3 bucket and hands back stable URLs.
// The rest of the system only ever compares these URLs as opaque strings.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Uploader stores binary content and returns a public URL for it.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (publicURL string, err error)
}

const defaultContentType = "application/octet-stream"

// Client uploads into one bucket, creating it lazily on first use so a
// fresh MinIO container needs no manual setup.
type Client struct {
	bucket     string
	publicBase string
	mc         *minio.Client
	logger     *slog.Logger

	initOnce sync.Once
	initErr  error
}

// NewClient connects to an S3-compatible endpoint. publicBaseURL is the
// address clients can reach objects on; it falls back to the endpoint when
// the deployment has no separate public hostname.
func NewClient(endpoint string, useSSL bool, accessKey, secretKey, bucket, publicBaseURL string, logger *slog.Logger) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}

	mc, err := minio.New(hostOf(endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(accessKey), strings.TrimSpace(secretKey), ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}

	base := strings.TrimSpace(publicBaseURL)
	if base == "" {
		base = endpoint
	}
	return &Client{
		bucket:     bucket,
		publicBase: strings.TrimRight(base, "/"),
		mc:         mc,
		logger:     logger,
	}, nil
}

// Upload writes the object and returns its public URL.
func (c *Client) Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	if reader == nil {
		return "", errors.New("s3: reader is required")
	}
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("s3: object key is required")
	}
	if err := c.ensureBucket(ctx); err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = defaultContentType
	}

	if _, err := c.mc.PutObject(ctx, c.bucket, key, reader, -1, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("s3: put object: %w", err)
	}

	u := c.publicBase + "/" + c.bucket + "/" + key
	if c.logger != nil {
		c.logger.Info("evidence stored", "bucket", c.bucket, "key", key, "url", u)
	}
	return u, nil
}

// ensureBucket creates the bucket with anonymous read on first upload.
// Evidence URLs are embedded in condition reports and dispute threads, so
// objects must be fetchable without signing.
func (c *Client) ensureBucket(ctx context.Context) error {
	c.initOnce.Do(func() {
		exists, err := c.mc.BucketExists(ctx, c.bucket)
		if err != nil {
			c.initErr = fmt.Errorf("s3: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			c.initErr = fmt.Errorf("s3: create bucket: %w", err)
			return
		}
		policy := fmt.Sprintf(
			`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`,
			c.bucket,
		)
		if err := c.mc.SetBucketPolicy(ctx, c.bucket, policy); err != nil {
			c.initErr = fmt.Errorf("s3: set bucket policy: %w", err)
		}
	})
	return c.initErr
}

func hostOf(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

// NoopUploader rejects every upload. Wired when object storage is not
// configured so photo endpoints fail with a clear error instead of a panic.
type NoopUploader struct{}

func (NoopUploader) Upload(context.Context, string, io.Reader, string) (string, error) {
	return "", errors.New("s3: object storage is not configured")
}

var _ Uploader = (*Client)(nil)
var _ Uploader = NoopUploader{}
