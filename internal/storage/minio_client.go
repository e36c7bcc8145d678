package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"yatube/internal/config"
	"yatube/internal/logger"
)

// ImagePrefix is the folder every post image is stored under.
const ImagePrefix = "posts/"

type Storage interface {
	UploadImage(ctx context.Context, fileName string, file io.Reader, size int64, contentType string) (string, error)
	DeleteImage(ctx context.Context, ref string) error
	GetImageURL(ctx context.Context, ref string) (string, error)
}

type MinIOClient struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

func NewMinIOClient(cfg *config.Config) (*MinIOClient, error) {
	client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
		Secure: cfg.MinIO.UseSSL,
		Region: cfg.MinIO.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента MinIO: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinIO.BucketName)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки бакета %s: %w", cfg.MinIO.BucketName, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinIO.BucketName, minio.MakeBucketOptions{Region: cfg.MinIO.Region}); err != nil {
			return nil, fmt.Errorf("ошибка создания бакета %s: %w", cfg.MinIO.BucketName, err)
		}
		logger.Info.Printf("Создан бакет MinIO: %s", cfg.MinIO.BucketName)
	}

	return &MinIOClient{
		client: client,
		bucket: cfg.MinIO.BucketName,
		expiry: cfg.MinIO.URLExpiry,
	}, nil
}

var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}_.-]+`)

// ObjectName turns an uploaded file name into an object key under ImagePrefix.
func ObjectName(fileName string) string {
	base := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	stem = strings.Trim(unsafeChars.ReplaceAllString(strings.TrimSpace(stem), "_"), "_.")
	if stem == "" || stem == "." {
		stem = "image"
	}
	if ext == "" || ext == "." {
		ext = ".jpg"
	}

	return ImagePrefix + stem + ext
}

func withSuffix(objectName string) string {
	ext := path.Ext(objectName)
	return strings.TrimSuffix(objectName, ext) + "_" + uuid.New().String()[:7] + ext
}

func (m *MinIOClient) exists(ctx context.Context, objectName string) (bool, error) {
	_, err := m.client.StatObject(ctx, m.bucket, objectName, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, err
}

// UploadImage stores the file and returns its reference. A taken name gets a
// random suffix, existing objects are never overwritten.
func (m *MinIOClient) UploadImage(ctx context.Context, fileName string, file io.Reader, size int64, contentType string) (string, error) {
	objectName := ObjectName(fileName)

	taken, err := m.exists(ctx, objectName)
	if err != nil {
		return "", fmt.Errorf("ошибка проверки объекта в MinIO: %w", err)
	}
	if taken {
		objectName = withSuffix(objectName)
	}

	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(objectName))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = m.client.PutObject(ctx, m.bucket, objectName, file, size,
		minio.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				"original-filename": url.QueryEscape(fileName),
				"uploaded-at":       time.Now().UTC().Format(time.RFC3339),
			},
		})
	if err != nil {
		return "", fmt.Errorf("ошибка загрузки в MinIO: %w", err)
	}

	return objectName, nil
}

func (m *MinIOClient) DeleteImage(ctx context.Context, ref string) error {
	err := m.client.RemoveObject(ctx, m.bucket, ref,
		minio.RemoveObjectOptions{
			GovernanceBypass: true,
		})
	if err != nil {
		return fmt.Errorf("ошибка удаления из MinIO: %w", err)
	}
	return nil
}

func (m *MinIOClient) GetImageURL(ctx context.Context, ref string) (string, error) {
	presigned, err := m.client.PresignedGetObject(ctx, m.bucket, ref, m.expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("ошибка получения ссылки MinIO: %w", err)
	}
	return presigned.String(), nil
}
