package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/erp/cashbook/internal/infrastructure/config"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockObjectStore struct {
	mock.Mock
	uploaded []byte
}

func (m *mockObjectStore) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(aws.ToString(in.Bucket), aws.ToString(in.Key), aws.ToString(in.ContentType))
	if in.Body != nil {
		m.uploaded, _ = io.ReadAll(in.Body)
	}
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return &s3.PutObjectOutput{}, nil
}

func (m *mockObjectStore) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	args := m.Called(aws.ToString(in.Bucket))
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return &s3.HeadBucketOutput{}, nil
}

func (m *mockObjectStore) CreateBucket(ctx context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	args := m.Called(aws.ToString(in.Bucket))
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return &s3.CreateBucketOutput{}, nil
}

func validStorageConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Enabled:         true,
		Endpoint:        "http://localhost:9000",
		Bucket:          "ledger-exports",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		UsePathStyle:    true,
	}
}

func newTestArchive(t *testing.T, store *mockObjectStore) *S3ExportArchive {
	t.Helper()
	archive, err := NewS3ExportArchive(validStorageConfig(), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	archive.client = store
	archive.now = func() time.Time { return time.Date(2026, 10, 15, 9, 30, 5, 0, time.UTC) }
	return archive
}

func TestNewS3ExportArchive_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.StorageConfig)
		wantErr string
	}{
		{"missing bucket", func(c *config.StorageConfig) { c.Bucket = "" }, "bucket is required"},
		{"missing access key", func(c *config.StorageConfig) { c.AccessKeyID = "" }, "access key is required"},
		{"missing secret key", func(c *config.StorageConfig) { c.SecretAccessKey = "" }, "secret key is required"},
		{"endpoint without scheme", func(c *config.StorageConfig) { c.Endpoint = "localhost:9000" }, "invalid storage endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validStorageConfig()
			tt.mutate(cfg)
			_, err := NewS3ExportArchive(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3ExportArchive(nil)
		assert.Error(t, err)
	})
}

func TestNewS3ExportArchive_Defaults(t *testing.T) {
	archive, err := NewS3ExportArchive(validStorageConfig())
	require.NoError(t, err)

	assert.Equal(t, "ledger-exports", archive.Bucket())
	assert.Equal(t, defaultPrefix, archive.prefix)
	assert.Equal(t, defaultPresignExpiration, archive.presignExpiration)

	cfg := validStorageConfig()
	cfg.Prefix = "/cashbook/exports/"
	archive, err = NewS3ExportArchive(cfg, WithPresignExpiration(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "cashbook/exports", archive.prefix)
	assert.Equal(t, time.Hour, archive.presignExpiration)
}

func TestS3ExportArchive_Store(t *testing.T) {
	store := &mockObjectStore{}
	archive := newTestArchive(t, store)

	store.On("PutObject", "ledger-exports", mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "exports/") && strings.HasSuffix(key, "-transactions.csv")
	}), "text/csv").Return(nil)

	body := []byte("ID,Date\n")
	got, err := archive.Store(context.Background(), "transactions.csv", body, "text/csv")
	require.NoError(t, err)

	assert.Equal(t, body, store.uploaded)
	assert.Equal(t, time.Date(2026, 10, 15, 9, 45, 5, 0, time.UTC), got.ExpiresAt)

	id, err := ulid.ParseStrict(strings.TrimSuffix(strings.TrimPrefix(got.Key, "exports/"), "-transactions.csv"))
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(archive.now()), id.Time())

	assert.Contains(t, got.URL, "http://localhost:9000/ledger-exports/"+got.Key)
	assert.Contains(t, got.URL, "X-Amz-Expires=900")
	store.AssertExpectations(t)
}

func TestS3ExportArchive_StoreKeysSortByTime(t *testing.T) {
	store := &mockObjectStore{}
	archive := newTestArchive(t, store)
	store.On("PutObject", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	first, err := archive.Store(context.Background(), "a.csv", nil, "text/csv")
	require.NoError(t, err)
	archive.now = func() time.Time { return time.Date(2026, 10, 15, 9, 30, 6, 0, time.UTC) }
	second, err := archive.Store(context.Background(), "a.csv", nil, "text/csv")
	require.NoError(t, err)

	assert.Less(t, first.Key, second.Key)
}

func TestS3ExportArchive_StoreErrors(t *testing.T) {
	t.Run("empty filename", func(t *testing.T) {
		archive := newTestArchive(t, &mockObjectStore{})
		_, err := archive.Store(context.Background(), "  ", nil, "text/csv")
		assert.Error(t, err)
	})

	t.Run("path components are stripped", func(t *testing.T) {
		store := &mockObjectStore{}
		archive := newTestArchive(t, store)
		store.On("PutObject", "ledger-exports", mock.MatchedBy(func(key string) bool {
			return !strings.Contains(strings.TrimPrefix(key, "exports/"), "/")
		}), "text/csv").Return(nil)

		_, err := archive.Store(context.Background(), "../../etc/report.csv", nil, "text/csv")
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("upload failure", func(t *testing.T) {
		store := &mockObjectStore{}
		archive := newTestArchive(t, store)
		store.On("PutObject", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection reset"))

		_, err := archive.Store(context.Background(), "transactions.csv", nil, "text/csv")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to upload export")
	})
}

func TestS3ExportArchive_EnsureBucket(t *testing.T) {
	t.Run("existing bucket", func(t *testing.T) {
		store := &mockObjectStore{}
		store.On("HeadBucket", "ledger-exports").Return(nil)

		require.NoError(t, newTestArchive(t, store).EnsureBucket(context.Background()))
		store.AssertNotCalled(t, "CreateBucket", mock.Anything)
	})

	t.Run("creates missing bucket", func(t *testing.T) {
		store := &mockObjectStore{}
		store.On("HeadBucket", "ledger-exports").Return(&types.NotFound{})
		store.On("CreateBucket", "ledger-exports").Return(nil)

		require.NoError(t, newTestArchive(t, store).EnsureBucket(context.Background()))
		store.AssertExpectations(t)
	})

	t.Run("tolerates a concurrent create", func(t *testing.T) {
		store := &mockObjectStore{}
		store.On("HeadBucket", "ledger-exports").Return(&types.NoSuchBucket{})
		store.On("CreateBucket", "ledger-exports").Return(&types.BucketAlreadyOwnedByYou{})

		assert.NoError(t, newTestArchive(t, store).EnsureBucket(context.Background()))
	})

	t.Run("other head errors fail", func(t *testing.T) {
		store := &mockObjectStore{}
		store.On("HeadBucket", "ledger-exports").Return(errors.New("access denied"))

		err := newTestArchive(t, store).EnsureBucket(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to check bucket existence")
	})
}
