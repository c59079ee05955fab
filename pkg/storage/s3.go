package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ImageStorage uploads user profile images and knows the fallback image
// handed to users who did not provide one.
type ImageStorage interface {
	UploadProfileImage(ctx context.Context, file *multipart.FileHeader) (string, error)
	DefaultProfileImageURL() string
}

// S3Client is the subset of the S3 API used by S3Storage.
// Narrowed to an interface so tests can substitute a mock.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config contains the settings for S3-compatible object storage.
type Config struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretKey       string
	Endpoint        string // optional, for S3-compatible services like MinIO
	BaseURL         string // public URL base for serving uploaded files
	DefaultImageKey string // object key of the default profile image
}

// S3Storage implements ImageStorage on top of an S3 bucket.
type S3Storage struct {
	client          S3Client
	bucket          string
	baseURL         string
	defaultImageKey string
}

// NewS3Storage creates an S3Storage with a freshly configured client.
func NewS3Storage(ctx context.Context, cfg Config) (*S3Storage, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, fmt.Errorf("s3 bucket and region are required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3StorageWithClient(client, cfg), nil
}

// NewS3StorageWithClient creates an S3Storage over a pre-built client.
// Useful for testing with mocks.
func NewS3StorageWithClient(client S3Client, cfg Config) *S3Storage {
	return &S3Storage{
		client:          client,
		bucket:          cfg.Bucket,
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		defaultImageKey: cfg.DefaultImageKey,
	}
}

// UploadProfileImage stores the uploaded file under profile/<uuid><ext>
// and returns its public URL.
func (s *S3Storage) UploadProfileImage(ctx context.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	key := "profile/" + uuid.New().String() + strings.ToLower(filepath.Ext(file.Filename))

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          src,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(file.Size),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload profile image: %w", err)
	}

	return s.baseURL + "/" + key, nil
}

// DefaultProfileImageURL returns the URL of the bundled default image.
func (s *S3Storage) DefaultProfileImageURL() string {
	return s.baseURL + "/" + s.defaultImageKey
}
