package clients

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const statementURLTTL = 30 * time.Minute

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	Prefix          string
}

// S3Storage is the object-store backend for statement files, used instead of
// LocalStorage when an S3 endpoint is configured.
type S3Storage struct {
	raw    *minio.Client
	bucket string
	prefix string
}

func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	return &S3Storage{
		raw:    client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

func (c *S3Storage) Save(ctx context.Context, fileName string, data []byte) (string, error) {
	if c.raw == nil {
		return "", fmt.Errorf("s3 client is nil")
	}

	fileName = filepath.Base(fileName)
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return "", fmt.Errorf("generate object name: %w", err)
	}
	key := fmt.Sprintf("%s%s_%s", c.prefix, hex.EncodeToString(randBytes), fileName)

	_, err := c.raw.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	})
	if err != nil {
		return "", fmt.Errorf("put object %q: %w", key, err)
	}

	return key, nil
}

// GetURL returns a presigned download URL for a stored statement.
func (c *S3Storage) GetURL(ctx context.Context, key string) (string, error) {
	if c.raw == nil {
		return "", fmt.Errorf("s3 client is nil")
	}

	u, err := c.raw.PresignedGetObject(ctx, c.bucket, key, statementURLTTL, nil)
	if err != nil {
		return "", fmt.Errorf("presign object %q: %w", key, err)
	}
	return u.String(), nil
}
