// Package storage archives ledger exports in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	appledger "github.com/erp/cashbook/internal/application/ledger"
	infraconfig "github.com/erp/cashbook/internal/infrastructure/config"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const (
	defaultRegion            = "us-east-1"
	defaultPrefix            = "exports"
	defaultPresignExpiration = 15 * time.Minute
)

// Ensure S3ExportArchive implements ExportArchive
var _ appledger.ExportArchive = (*S3ExportArchive)(nil)

type objectStore interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

type objectPresigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3ExportArchive uploads CSV exports and hands out presigned download links.
// It works with any S3-compatible store (AWS S3, MinIO, RustFS).
type S3ExportArchive struct {
	client            objectStore
	presigner         objectPresigner
	bucket            string
	prefix            string
	presignExpiration time.Duration
	logger            *zap.Logger
	now               func() time.Time
	entropy           io.Reader
}

// S3ExportArchiveOption is a functional option for configuring S3ExportArchive
type S3ExportArchiveOption func(*S3ExportArchive)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3ExportArchiveOption {
	return func(s *S3ExportArchive) {
		s.logger = logger
	}
}

// WithPresignExpiration sets how long download links stay valid
func WithPresignExpiration(d time.Duration) S3ExportArchiveOption {
	return func(s *S3ExportArchive) {
		if d > 0 {
			s.presignExpiration = d
		}
	}
}

// NewS3ExportArchive creates an archive from configuration
func NewS3ExportArchive(cfg *infraconfig.StorageConfig, opts ...S3ExportArchiveOption) (*S3ExportArchive, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKeyID == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretAccessKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	var endpoint *string
	if cfg.Endpoint != "" {
		u, err := url.Parse(cfg.Endpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid storage endpoint %q", cfg.Endpoint)
		}
		endpoint = aws.String(cfg.Endpoint)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = endpoint
	})

	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix == "" {
		prefix = defaultPrefix
	}

	archive := &S3ExportArchive{
		client:            client,
		presigner:         s3.NewPresignClient(client),
		bucket:            cfg.Bucket,
		prefix:            prefix,
		presignExpiration: cfg.PresignExpiration,
		logger:            zap.NewNop(),
		now:               time.Now,
		entropy:           ulid.DefaultEntropy(),
	}
	for _, opt := range opts {
		opt(archive)
	}
	if archive.presignExpiration <= 0 {
		archive.presignExpiration = defaultPresignExpiration
	}
	return archive, nil
}

// Bucket returns the bucket name
func (s *S3ExportArchive) Bucket() string {
	return s.bucket
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *S3ExportArchive) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating export bucket", zap.String("bucket", s.bucket))
	if _, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Store uploads body under a time-sortable key and returns a presigned GET link
func (s *S3ExportArchive) Store(ctx context.Context, filename string, body []byte, contentType string) (*appledger.ArchivedExport, error) {
	filename = path.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." || filename == "/" {
		return nil, errors.New("export filename is required")
	}

	key, err := s.objectKey(filename)
	if err != nil {
		return nil, err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(body),
		ContentType:        aws.String(contentType),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", filename)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload export: %w", err)
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignExpiration))
	if err != nil {
		return nil, fmt.Errorf("failed to generate download URL: %w", err)
	}

	s.logger.Debug("export uploaded", zap.String("bucket", s.bucket), zap.String("key", key), zap.Int("bytes", len(body)))

	return &appledger.ArchivedExport{
		Key:       key,
		URL:       req.URL,
		ExpiresAt: s.now().Add(s.presignExpiration),
	}, nil
}

// objectKey builds <prefix>/<ulid>-<filename> so listings sort by upload time
func (s *S3ExportArchive) objectKey(filename string) (string, error) {
	id, err := ulid.New(ulid.Timestamp(s.now()), s.entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate object key: %w", err)
	}
	return s.prefix + "/" + id.String() + "-" + filename, nil
}
