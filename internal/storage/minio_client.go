package storage

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"devconnect/internal/config"
	"devconnect/internal/models"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

// Storage is the media store used for post images and profile pictures.
// Objects are addressed by key; URLs are resolved on read.
type Storage interface {
	UploadImage(ctx context.Context, prefix string, upload *models.Upload) (string, error)
	DeleteImage(ctx context.Context, objectKey string) error
	GetImageURL(ctx context.Context, objectKey string) (string, error)
}

type MinIOClient struct {
	client *minio.Client
	cfg    config.MinIO
}

func NewMinIOClient(ctx context.Context, cfg *config.Config) (*MinIOClient, error) {
	client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
		Secure: cfg.MinIO.UseSSL,
		Region: cfg.MinIO.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinIO.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.MinIO.BucketName, err)
	}

	if !exists {
		err = client.MakeBucket(ctx, cfg.MinIO.BucketName, minio.MakeBucketOptions{Region: cfg.MinIO.Region})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.MinIO.BucketName, err)
		}
		log.Infof("[storage] bucket %s created", cfg.MinIO.BucketName)
	}

	return &MinIOClient{client: client, cfg: cfg.MinIO}, nil
}

// ObjectName builds "<prefix>/<yyyy>/<mm>/<uuid><ext>" for an uploaded file.
func ObjectName(prefix, fileName string, now time.Time) string {
	fileExt := strings.ToLower(filepath.Ext(fileName))
	if fileExt == "" {
		fileExt = ".jpg"
	}

	return fmt.Sprintf("%s/%d/%02d/%s%s",
		strings.Trim(prefix, "/"),
		now.Year(),
		now.Month(),
		uuid.New().String(),
		fileExt)
}

func (m *MinIOClient) UploadImage(ctx context.Context, prefix string, upload *models.Upload) (string, error) {
	now := time.Now()
	objectName := ObjectName(prefix, upload.FileName, now)

	contentType := upload.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(objectName))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := m.client.PutObject(ctx, m.cfg.BucketName, objectName, upload.Reader, upload.Size,
		minio.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				"original-filename": upload.FileName,
				"uploaded-at":       now.Format(time.RFC3339),
			},
		})
	if err != nil {
		return "", fmt.Errorf("failed to upload to MinIO: %w", err)
	}

	return objectName, nil
}

func (m *MinIOClient) DeleteImage(ctx context.Context, objectKey string) error {
	err := m.client.RemoveObject(ctx, m.cfg.BucketName, objectKey, minio.RemoveObjectOptions{
		GovernanceBypass: true,
	})
	if err != nil {
		return fmt.Errorf("failed to delete from MinIO: %w", err)
	}
	return nil
}

func (m *MinIOClient) GetImageURL(ctx context.Context, objectKey string) (string, error) {
	if m.cfg.PublicURL != "" {
		return PublicObjectURL(m.cfg.PublicURL, m.cfg.BucketName, objectKey), nil
	}

	u, err := m.client.PresignedGetObject(ctx, m.cfg.BucketName, objectKey, m.cfg.URLExpiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", objectKey, err)
	}

	return u.String(), nil
}

func PublicObjectURL(baseURL, bucket, objectKey string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + bucket + "/" + strings.TrimPrefix(objectKey, "/")
}
