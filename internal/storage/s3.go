package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config configures an S3Store. Endpoint is set for MinIO and other
// S3-compatible servers; PublicURL overrides the default object URL base.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
}

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store stores images in an S3 bucket
type S3Store struct {
	client  s3API
	bucket  string
	baseURL string
}

// NewS3Store creates an S3Store from cfg
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket not configured")
	}
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Store(client, cfg), nil
}

func newS3Store(client s3API, cfg S3Config) *S3Store {
	base := cfg.PublicURL
	switch {
	case base != "":
	case cfg.Endpoint != "":
		base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &S3Store{client: client, bucket: cfg.Bucket, baseURL: strings.TrimRight(base, "/")}
}

// Upload puts the file under a fresh key in folder
func (s *S3Store) Upload(ctx context.Context, folder string, file File) (models.Image, error) {
	key := NewKey(folder, file.Extension)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file.Data),
		ContentType: aws.String(file.ContentType),
	})
	if err != nil {
		return models.Image{}, err
	}
	return models.Image{URL: s.baseURL + "/" + key, PublicID: key}, nil
}

// Delete removes the object. S3 reports success for missing keys.
func (s *S3Store) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	return err
}
