package media

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/srgjo27/installation_proof/internal/core/ports"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Config struct {
	Bucket        string
	Region        string
	Endpoint      string // optional, for MinIO / LocalStack
	Prefix        string
	PublicBaseURL string // e.g. a CDN in front of the bucket
}

// S3Storage stores installation and issue photos under a random key and
// returns the public URL. Bytes never reach the database.
type S3Storage struct {
	client putObjectAPI
	cfg    S3Config
	newKey func() string
}

func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Storage(client, cfg), nil
}

func newS3Storage(client putObjectAPI, cfg S3Config) *S3Storage {
	return &S3Storage{
		client: client,
		cfg:    cfg,
		newKey: uuid.NewString,
	}
}

func (s *S3Storage) Upload(ctx context.Context, photo ports.Photo) (string, error) {
	contentType := photo.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := s.cfg.Prefix + s.newKey() + path.Ext(photo.Name)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(photo.Data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}

	return s.publicURL(key), nil
}

func (s *S3Storage) publicURL(key string) string {
	if s.cfg.PublicBaseURL != "" {
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + key
	}
	if s.cfg.Endpoint != "" {
		return strings.TrimRight(s.cfg.Endpoint, "/") + "/" + s.cfg.Bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}
