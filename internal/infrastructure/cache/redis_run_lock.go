package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/erp/cashbook/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockPrefix = "lock:"

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another process is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisRunLock implements RunLock with SET NX and a TTL.
// This is suitable for deployments where several instances share one database.
type RedisRunLock struct {
	client    *redis.Client
	keyPrefix string

	mu     sync.Mutex
	tokens map[string]string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisRunLock connects to Redis and verifies the connection
func NewRedisRunLock(cfg RedisConfig) (*RedisRunLock, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisRunLockWithClient(client, ""), nil
}

// NewRedisRunLockWithClient creates a lock over an existing client
func NewRedisRunLockWithClient(client *redis.Client, keyPrefix string) *RedisRunLock {
	if keyPrefix == "" {
		keyPrefix = defaultLockPrefix
	}
	return &RedisRunLock{
		client:    client,
		keyPrefix: keyPrefix,
		tokens:    make(map[string]string),
	}
}

// Acquire tries SET NX with a fresh token. It returns false when the key is
// already held.
func (l *RedisRunLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.keyPrefix+key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}

	l.mu.Lock()
	l.tokens[key] = token
	l.mu.Unlock()
	return true, nil
}

// Release deletes the key if this instance still owns it
func (l *RedisRunLock) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	token, ok := l.tokens[key]
	delete(l.tokens, key)
	l.mu.Unlock()
	if !ok {
		return nil
	}

	if err := releaseScript.Run(ctx, l.client, []string{l.keyPrefix + key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis client
func (l *RedisRunLock) Close() error {
	return l.client.Close()
}

var _ shared.RunLock = (*RedisRunLock)(nil)
