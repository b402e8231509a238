package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/config"
	internal_utils "github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/utils"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
)

// ObjectStore keeps receipt PDFs. Objects are addressed by StorageLocator so
// rows written against an older bucket stay readable.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (internal_utils.StorageLocator, error)
	Get(ctx context.Context, loc internal_utils.StorageLocator) ([]byte, error)
	SignedURL(ctx context.Context, loc internal_utils.StorageLocator, ttl time.Duration) (string, error)
}

// NewObjectStore connects to OSS. It returns (nil, nil) when storage is not
// configured; the receipt service then skips the PDF step.
func NewObjectStore(cfg config.StorageConfig) (ObjectStore, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	if _, err := client.Bucket(cfg.Bucket); err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}
	utils.Logger.Infof("OSS storage ready (bucket=%s)", cfg.Bucket)
	return &ossStore{client: client, bucket: cfg.Bucket}, nil
}

type ossStore struct {
	client *oss.Client
	bucket string
}

func (s *ossStore) Put(ctx context.Context, key string, body []byte, contentType string) (internal_utils.StorageLocator, error) {
	loc := internal_utils.StorageLocator{Container: s.bucket, Key: key}
	bkt, err := s.client.Bucket(s.bucket)
	if err != nil {
		return loc, err
	}
	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
	}
	if err := bkt.PutObject(key, bytes.NewReader(body), opts...); err != nil {
		return loc, fmt.Errorf("%w: put %s: %v", internal_utils.ErrStorageFailure, loc, err)
	}
	return loc, nil
}

func (s *ossStore) Get(ctx context.Context, loc internal_utils.StorageLocator) ([]byte, error) {
	bkt, err := s.client.Bucket(loc.Container)
	if err != nil {
		return nil, err
	}
	rc, err := bkt.GetObject(loc.Key, oss.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", internal_utils.ErrStorageFailure, loc, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *ossStore) SignedURL(_ context.Context, loc internal_utils.StorageLocator, ttl time.Duration) (string, error) {
	bkt, err := s.client.Bucket(loc.Container)
	if err != nil {
		return "", err
	}
	u, err := bkt.SignURL(loc.Key, oss.HTTPGet, int64(ttl/time.Second))
	if err != nil {
		return "", fmt.Errorf("%w: sign %s: %v", internal_utils.ErrStorageFailure, loc, err)
	}
	return u, nil
}
