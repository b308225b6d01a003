package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/bewize/audio-generator/internal/config"
	"go.uber.org/zap"
)

// S3API is the subset of the S3 client used by S3Storage
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage stores objects in a single bucket with public-read ACL
type S3Storage struct {
	client   S3API
	bucket   string
	region   string
	endpoint string
	logger   *zap.Logger
}

// NewS3Storage builds an S3 client from static credentials.
// A non-empty cfg.Endpoint targets an S3-compatible store with path-style addressing.
func NewS3Storage(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
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

	return NewS3StorageWithClient(client, cfg.Bucket, cfg.Region, cfg.Endpoint, logger), nil
}

// NewS3StorageWithClient wraps an existing client
func NewS3StorageWithClient(client S3API, bucket, region, endpoint string, logger *zap.Logger) *S3Storage {
	return &S3Storage{
		client:   client,
		bucket:   bucket,
		region:   region,
		endpoint: strings.TrimRight(endpoint, "/"),
		logger:   logger,
	}
}

// Put uploads data under key and returns its public URL
func (s *S3Storage) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		s.logger.Error("refusing to upload empty object", zap.String("key", key))
		return "", ErrEmptyObject
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		s.logger.Error("failed to upload object", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	url := s.URL(key)
	s.logger.Info("object uploaded", zap.String("key", key), zap.String("url", url), zap.Int("bytes", len(data)))
	return url, nil
}

// Delete removes the object stored under key
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Error("failed to delete object", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	s.logger.Info("object deleted", zap.String("key", key))
	return nil
}

// URL returns the public URL of key
func (s *S3Storage) URL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
