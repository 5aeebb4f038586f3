package objectstore

import (
	"context"
	"filegate/internal/config"
	"filegate/internal/storage"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore signs time-limited fetch URLs for the single gated object.
// The backend enforces the validity window itself: a presigned URL presented
// after GrantTTL is rejected by the storage service, not by this process.
type ObjectStore struct {
	client    *minio.Client
	bucket    string
	objectKey string
	grantTTL  time.Duration
}

// New creates new instance of object store client. accessKey/secretKey come
// from config or from vault, resolved by the caller before construction.
func New(conf *config.ResourceConfig, accessKey, secretKey string) (*ObjectStore, error) {
	client, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: conf.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating object store client: %w", err)
	}

	return &ObjectStore{
		client:    client,
		bucket:    conf.Bucket,
		objectKey: conf.ObjectKey,
		grantTTL:  conf.GrantTTL,
	}, nil
}

// SignedURL produces a presigned GET for the gated object with the given
// client-visible filename set as the content disposition. Failures are
// surfaced as storage.ErrSigningUnavailable and are not retried here: a
// retried signature could outlive the intended window.
func (s *ObjectStore) SignedURL(ctx context.Context, filename string) (string, error) {
	const op = "storage.objectstore.SignedURL"

	reqParams := make(url.Values)
	reqParams.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", filename))

	signed, err := s.client.PresignedGetObject(ctx, s.bucket, s.objectKey, s.grantTTL, reqParams)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", op, storage.ErrSigningUnavailable, err)
	}
	return signed.String(), nil
}

// GrantTTL returns the validity window applied to signed URLs.
func (s *ObjectStore) GrantTTL() time.Duration {
	return s.grantTTL
}
