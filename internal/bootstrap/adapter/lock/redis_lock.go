package lock

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"pnregistry-dbinit/internal/bootstrap/config"
	"pnregistry-dbinit/internal/bootstrap/domain/repository"
	"pnregistry-dbinit/internal/shared/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every lock key
const KeyPrefix = "pnregistry-dbinit:lock:"

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another run is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewRedisClient creates a Redis client for the lock backend
func NewRedisClient(cfg config.LockConfig) *redis.Client {
	options := &redis.Options{
		Addr:       cfg.GetAddr(),
		Password:   cfg.Password,
		DB:         cfg.Database,
		MaxRetries: 1,
		PoolSize:   2,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	}

	if cfg.EnableTLS {
		options.TLSConfig = &tls.Config{
			ServerName: cfg.Host,
		}
	}

	return redis.NewClient(options)
}

// RedisLocker implements repository.Locker with SET NX PX
type RedisLocker struct {
	client redis.Cmdable
	logger logger.Logger

	mu     sync.Mutex
	tokens map[string]string
}

var _ repository.Locker = (*RedisLocker)(nil)

// NewRedisLocker creates a new RedisLocker
func NewRedisLocker(client redis.Cmdable, log logger.Logger) *RedisLocker {
	return &RedisLocker{
		client: client,
		logger: log.WithComponent("redis-lock"),
		tokens: make(map[string]string),
	}
}

// Acquire implements repository.Locker
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, KeyPrefix+key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		l.logger.Debugf("Lock %s is held by another run", key)
		return false, nil
	}

	l.mu.Lock()
	l.tokens[key] = token
	l.mu.Unlock()

	l.logger.Debugf("Acquired lock %s for %s", key, ttl)
	return true, nil
}

// Release implements repository.Locker. Releasing a key this locker does
// not hold is a no-op.
func (l *RedisLocker) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	token, ok := l.tokens[key]
	delete(l.tokens, key)
	l.mu.Unlock()

	if !ok {
		return nil
	}

	deleted, err := releaseScript.Run(ctx, l.client, []string{KeyPrefix + key}, token).Int()
	if err != nil {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	if deleted == 0 {
		l.logger.Warnf("Lock %s expired before it was released", key)
	}
	return nil
}
