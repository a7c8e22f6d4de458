package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3PutObjectAPI is the part of *s3.Client the store uses
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads objects to a bucket; they are served from PublicBaseURL
// (a CDN or the bucket website endpoint).
type S3Store struct {
	client        S3PutObjectAPI
	bucket        string
	prefix        string
	publicBaseURL string
	logger        *slog.Logger
}

// NewS3Store builds a client from the default AWS credential chain.
func NewS3Store(ctx context.Context, region, bucket, prefix, publicBaseURL string, logger *slog.Logger) (*S3Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewS3StoreWithClient(s3.NewFromConfig(cfg), bucket, prefix, publicBaseURL, logger), nil
}

func NewS3StoreWithClient(client S3PutObjectAPI, bucket, prefix, publicBaseURL string, logger *slog.Logger) *S3Store {
	return &S3Store{
		client:        client,
		bucket:        bucket,
		prefix:        strings.TrimLeft(prefix, "/"),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

var _ BlobStore = (*S3Store)(nil)

func (s *S3Store) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if name == "" || strings.Contains(name, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	key := s.prefix + name

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "s3 put failed", "bucket", s.bucket, "key", key, "error", err)
		return "", fmt.Errorf("put object: %w", err)
	}

	s.logger.DebugContext(ctx, "s3 object stored", "bucket", s.bucket, "key", key, "size", len(data))
	return s.publicBaseURL + "/" + key, nil
}
