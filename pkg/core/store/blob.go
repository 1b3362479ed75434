package store

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// BlobStore archives analysis artifacts (response JSON, HTML reports, source
// PDFs) in an S3-compatible bucket.
type BlobStore struct {
	client *minio.Client
	bucket string
	public bool
}

// NewBlobStore connects and ensures the bucket exists.
func NewBlobStore(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL, public bool) (*BlobStore, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("bucket check: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("bucket create: %w", err)
		}
	}

	return &BlobStore{client: cli, bucket: bucket, public: public}, nil
}

// Upload stores data under key and returns a URL for it.
func (s *BlobStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("blob upload %s: %w", key, err)
	}
	return s.URL(ctx, key)
}

// URL returns a public URL for open buckets, a presigned one otherwise.
func (s *BlobStore) URL(ctx context.Context, key string) (string, error) {
	if s.public {
		return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, key), nil
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, 24*time.Hour, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u.String(), nil
}

// ArtifactKey builds a stable object key from the company name and a request
// ID, folding accents and spaces so keys stay URL-safe.
func ArtifactKey(companyName, requestID, ext string) string {
	return fmt.Sprintf("insights/%s/%s.%s", slugify(companyName), requestID, ext)
}

var accentFold = strings.NewReplacer(
	"à", "a", "â", "a", "ä", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"î", "i", "ï", "i",
	"ô", "o", "ö", "o",
	"ù", "u", "û", "u", "ü", "u",
	"ç", "c", "œ", "oe",
)

func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = accentFold.Replace(s)
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
