package upload

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"storefront/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3Scheme = "s3://"

// S3API is the subset of the S3 client used by S3ImageStore.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3ImageStore keeps images in an S3 compatible bucket.
type S3ImageStore struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Client builds a client from static credentials when they are set,
// otherwise from the default AWS credential chain. A custom endpoint
// switches to path style addressing for MinIO.
func NewS3Client(ctx context.Context, cfg config.S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewS3ImageStore creates a new S3ImageStore.
func NewS3ImageStore(client S3API, bucket, prefix string) *S3ImageStore {
	return &S3ImageStore{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Save uploads the image and returns its s3://bucket/key location.
func (s *S3ImageStore) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	key := path.Join(s.prefix, path.Base(name))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s3Scheme + s.bucket + "/" + key, nil
}

// Remove deletes an object previously written by Save.
func (s *S3ImageStore) Remove(ctx context.Context, storedPath string) error {
	rest, ok := strings.CutPrefix(storedPath, s3Scheme+s.bucket+"/")
	if !ok || rest == "" {
		return fmt.Errorf("%w: %s", ErrOutsideUploadDir, storedPath)
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(rest),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", rest, err)
	}
	return nil
}

// NewImageStore returns the backend selected by cfg.ImageBackend.
func NewImageStore(ctx context.Context, cfg config.Config) (ImageStore, error) {
	switch cfg.ImageBackend {
	case config.ImageBackendS3:
		client, err := NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return NewS3ImageStore(client, cfg.S3.Bucket, cfg.S3.KeyPrefix), nil
	case config.ImageBackendLocal, "":
		return NewLocalImageStore(cfg.UploadDir)
	default:
		return nil, fmt.Errorf("unsupported image backend %q", cfg.ImageBackend)
	}
}
