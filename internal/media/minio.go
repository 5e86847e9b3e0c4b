package media

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/videotube/videotube-api/internal/config"
	"github.com/videotube/videotube-api/internal/metrics"
	"github.com/videotube/videotube-api/pkg/logger"
	"go.uber.org/zap"
)

// objectClient is the subset of *minio.Client used by MinioStore.
type objectClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	SetBucketPolicy(ctx context.Context, bucketName, policy string) error
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// DurationProber returns the length of a media file in seconds.
type DurationProber func(ctx context.Context, path string) (float64, error)

// MinioStore keeps media in a single bucket with public read access.
type MinioStore struct {
	client    objectClient
	bucket    string
	publicURL string
	probe     DurationProber
}

// NewMinioStore connects to the media host and makes sure the bucket exists.
func NewMinioStore(ctx context.Context, cfg config.MediaConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	store := newMinioStore(client, cfg, FFProbe(cfg.ProbeTimeout))
	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}

	logger.L().Info("Connected to media host",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket),
	)
	return store, nil
}

func newMinioStore(client objectClient, cfg config.MediaConfig, probe DurationProber) *MinioStore {
	return &MinioStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		probe:     probe,
	}
}

func (s *MinioStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	if err := s.client.SetBucketPolicy(ctx, s.bucket, publicReadPolicy(s.bucket)); err != nil {
		return fmt.Errorf("set bucket policy: %w", err)
	}

	logger.L().Info("Created media bucket", zap.String("bucket", s.bucket))
	return nil
}

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}

// objectKey names a new object as <kind>/<uuid><ext>.
func objectKey(kind Kind, localPath string) string {
	return fmt.Sprintf("%s/%s%s", kind, uuid.NewString(), strings.ToLower(filepath.Ext(localPath)))
}

func contentType(localPath string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(localPath))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// URL returns the public address of an object.
func (s *MinioStore) URL(publicID string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, publicID)
}

// Upload implements Store.
func (s *MinioStore) Upload(ctx context.Context, localPath string, kind Kind) (*Asset, error) {
	if localPath == "" {
		return nil, ErrEmptyPath
	}
	defer removeLocal(localPath)

	asset := &Asset{PublicID: objectKey(kind, localPath)}
	if kind == KindVideo && s.probe != nil {
		d, err := s.probe(ctx, localPath)
		if err != nil {
			logger.L().Warn("Failed to probe video duration",
				zap.String("path", localPath),
				zap.Error(err),
			)
		}
		asset.Duration = d
	}

	_, err := s.client.FPutObject(ctx, s.bucket, asset.PublicID, localPath, minio.PutObjectOptions{
		ContentType: contentType(localPath),
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", kind, err)
	}

	asset.URL = s.URL(asset.PublicID)
	metrics.Uploads.WithLabelValues(string(kind)).Inc()

	logger.L().Debug("Uploaded media",
		zap.String("kind", string(kind)),
		zap.String("public_id", asset.PublicID),
	)
	return asset, nil
}

// Delete implements Store. Deleting an empty id is a no-op.
func (s *MinioStore) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete %s: %w", publicID, err)
	}
	return nil
}

func removeLocal(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.L().Warn("Failed to remove temp file", zap.String("path", path), zap.Error(err))
	}
}
