package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const s3PathScheme = "s3://"

// S3Config holds construction parameters for the S3 driver. Credentials come
// from the default AWS chain (environment, shared config, instance role).
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // optional; set for MinIO or other S3-compatible stores
	PathStyle bool
}

// S3Storage stores files as objects in a single bucket.
type S3Storage struct {
	client *s3.Client
	bucket string
}

// NewS3Storage creates an S3-backed FileStorage.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &S3Storage{client: client, bucket: cfg.Bucket}, nil
}

// NewS3StorageWithClient wraps an already configured client.
func NewS3StorageWithClient(client *s3.Client, bucket string) *S3Storage {
	return &S3Storage{client: client, bucket: bucket}
}

func (s *S3Storage) Save(ctx context.Context, namespace, fileID, filename string, reader io.Reader) (string, error) {
	key := path.Join(namespace, fileID, path.Base(filename))
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   reader,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s3PathScheme + s.bucket + "/" + key, nil
}

func (s *S3Storage) Open(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	key, err := s.keyOf(storagePath)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	return out.Body, nil
}

func (s *S3Storage) Delete(ctx context.Context, storagePath string) error {
	key, err := s.keyOf(storagePath)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	var noKey *types.NoSuchKey
	if err != nil && !errors.As(err, &noKey) {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// keyOf strips the s3://bucket/ prefix written by Save.
func (s *S3Storage) keyOf(storagePath string) (string, error) {
	key, ok := strings.CutPrefix(storagePath, s3PathScheme+s.bucket+"/")
	if !ok || key == "" {
		return "", fmt.Errorf("path %q is not in bucket %s", storagePath, s.bucket)
	}
	return key, nil
}
