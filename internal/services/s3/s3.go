// Package s3service provides S3 operations for model artifacts and batch files.
package s3service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	appConfig "churn-prediction-engine/internal/config"
	"churn-prediction-engine/internal/utils"
)

// API is the subset of the S3 client used by the service.
type API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Service handles S3 operations
type Service struct {
	client     API
	bucketName string
}

// ObjectInfo describes a stored artifact object.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// NewService creates a new S3 service for the configured model bucket.
func NewService(ctx context.Context, appCfg *appConfig.Config) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(appCfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewWithClient(s3.NewFromConfig(cfg), appCfg.S3Bucket), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client API, bucket string) *Service {
	return &Service{client: client, bucketName: bucket}
}

// ForBucket returns a service sharing the client but targeting bucket.
func (s *Service) ForBucket(bucket string) *Service {
	return &Service{client: s.client, bucketName: bucket}
}

// Bucket returns the bucket name.
func (s *Service) Bucket() string {
	return s.bucketName
}

// DownloadFile downloads a file from S3
func (s *Service) DownloadFile(ctx context.Context, key string) ([]byte, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}

	result, err := s.client.GetObject(ctx, input)
	if err != nil {
		utils.GetLogger().Error("Failed to download file from S3",
			zap.String("bucket", s.bucketName),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", s.bucketName, key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	utils.GetLogger().Info("Downloaded file from S3",
		zap.String("bucket", s.bucketName),
		zap.String("key", key),
		zap.Int("size", len(data)),
	)

	return data, nil
}

// UploadFile uploads a file to S3
func (s *Service) UploadFile(ctx context.Context, key string, data []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}

	_, err := s.client.PutObject(ctx, input)
	if err != nil {
		utils.GetLogger().Error("Failed to upload file to S3",
			zap.String("bucket", s.bucketName),
			zap.String("key", key),
			zap.Error(err),
		)
		return fmt.Errorf("failed to upload s3://%s/%s: %w", s.bucketName, key, err)
	}

	utils.GetLogger().Info("Uploaded file to S3",
		zap.String("bucket", s.bucketName),
		zap.String("key", key),
		zap.Int("size", len(data)),
	)

	return nil
}

// FileExists checks if a file exists in S3. Errors other than "not found"
// are returned to the caller.
func (s *Service) FileExists(ctx context.Context, key string) (bool, error) {
	input := &s3.HeadObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}

	_, err := s.client.HeadObject(ctx, input)
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check s3://%s/%s: %w", s.bucketName, key, err)
	}

	return true, nil
}

// ListFiles lists objects under prefix.
func (s *Service) ListFiles(ctx context.Context, prefix string, maxKeys int32) ([]ObjectInfo, error) {
	if maxKeys <= 0 {
		maxKeys = 100
	}

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucketName),
		MaxKeys: aws.Int32(maxKeys),
	}

	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	result, err := s.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	out := make([]ObjectInfo, 0, len(result.Contents))
	for _, obj := range result.Contents {
		out = append(out, ObjectInfo{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
		})
	}

	return out, nil
}
