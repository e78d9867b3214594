package minio

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"water-service/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioClient wraps the MinIO client with the buckets the sign-up flow needs.
type MinioClient struct {
	client *minio.Client
	config config.MinioConfig
}

// BucketSpec describes a bucket and the uploads it accepts.
type BucketSpec struct {
	Name             string
	MaxObjectSize    int64
	AllowedMimeTypes []string
}

// Storage defines bucket names used by the water service.
var Storage = struct {
	Documents  string
	Signatures string
}{
	Documents:  "documents",
	Signatures: "signatures",
}

// RequiredBuckets are private; documents are served through presigned URLs.
var RequiredBuckets = []BucketSpec{
	{
		Name:             Storage.Documents,
		MaxObjectSize:    10 * 1024 * 1024,
		AllowedMimeTypes: []string{"application/pdf", "image/jpeg", "image/png", "image/heic"},
	},
	{
		Name:             Storage.Signatures,
		MaxObjectSize:    2 * 1024 * 1024,
		AllowedMimeTypes: []string{"image/png", "image/jpeg"},
	},
}

// BucketStatus is one row of the storage diagnostic report.
type BucketStatus struct {
	Name   string
	Exists bool
}

// endpointHost strips the scheme and trailing slash; minio-go wants host:port.
func endpointHost(minioURL string) string {
	endpoint := strings.TrimPrefix(minioURL, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")
	return strings.TrimSuffix(endpoint, "/")
}

func newClient(cfg config.MinioConfig) (*minio.Client, error) {
	endpoint := endpointHost(cfg.MinioURL)

	isSecure, err := strconv.ParseBool(cfg.MinioSecure)
	if err != nil {
		log.Printf("Invalid value for MinIO secure flag: %v. Defaulting to false.", err)
		isSecure = false
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: isSecure,
		Region: cfg.MinioLocation,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}
	return client, nil
}

// NewMinioClient connects and verifies access. Buckets are not created here;
// see EnsureRequiredBuckets.
func NewMinioClient(cfg config.MinioConfig) (*MinioClient, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := client.ListBuckets(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to MinIO server: %w", err)
	}

	log.Printf("Successfully connected to MinIO at %s", cfg.MinioURL)
	return &MinioClient{client: client, config: cfg}, nil
}

// EnsureRequiredBuckets creates any missing bucket from RequiredBuckets.
func (mc *MinioClient) EnsureRequiredBuckets(ctx context.Context) error {
	for _, spec := range RequiredBuckets {
		if err := mc.ensureBucket(ctx, spec.Name); err != nil {
			return fmt.Errorf("failed to ensure bucket %s: %w", spec.Name, err)
		}
	}
	return nil
}

func (mc *MinioClient) ensureBucket(ctx context.Context, bucketName string) error {
	exists, err := mc.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}

	if exists {
		log.Printf("Bucket already exists: %s", bucketName)
		return nil
	}

	err = mc.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{
		Region: mc.config.MinioLocation,
	})
	if err != nil {
		return fmt.Errorf("error creating bucket %s: %w", bucketName, err)
	}
	log.Printf("Created bucket: %s", bucketName)
	return nil
}

// CheckBuckets reports which required buckets exist.
func (mc *MinioClient) CheckBuckets(ctx context.Context) ([]BucketStatus, error) {
	statuses := make([]BucketStatus, 0, len(RequiredBuckets))
	for _, spec := range RequiredBuckets {
		exists, err := mc.client.BucketExists(ctx, spec.Name)
		if err != nil {
			return nil, fmt.Errorf("error checking bucket %s: %w", spec.Name, err)
		}
		statuses = append(statuses, BucketStatus{Name: spec.Name, Exists: exists})
	}
	return statuses, nil
}

// UploadFile stores an object and returns its key.
func (mc *MinioClient) UploadFile(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) (string, error) {
	info, err := mc.client.PutObject(ctx, bucketName, objectName, reader, objectSize,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload file %s to bucket %s: %w", objectName, bucketName, err)
	}

	log.Printf("Successfully uploaded file: %s to bucket: %s", info.Key, bucketName)
	return info.Key, nil
}

// GetFile retrieves an object.
func (mc *MinioClient) GetFile(ctx context.Context, bucketName, objectName string) (*minio.Object, error) {
	object, err := mc.client.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s from bucket %s: %w", objectName, bucketName, err)
	}
	return object, nil
}

// DeleteFile removes an object.
func (mc *MinioClient) DeleteFile(ctx context.Context, bucketName, objectName string) error {
	err := mc.client.RemoveObject(ctx, bucketName, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete file %s from bucket %s: %w", objectName, bucketName, err)
	}

	log.Printf("Successfully deleted file: %s from bucket: %s", objectName, bucketName)
	return nil
}

// GetPresignedURL generates a temporary download link.
func (mc *MinioClient) GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	presignedURL, err := mc.client.PresignedGetObject(ctx, bucketName, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL for %s in bucket %s: %w", objectName, bucketName, err)
	}
	return presignedURL.String(), nil
}

// FileExists checks for an object without downloading it.
func (mc *MinioClient) FileExists(ctx context.Context, bucketName, objectName string) (bool, error) {
	_, err := mc.client.StatObject(ctx, bucketName, objectName, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("error checking file existence for %s in bucket %s: %w", objectName, bucketName, err)
	}
	return true, nil
}
