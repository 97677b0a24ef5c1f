package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every key this service writes.
const KeyPrefix = "flowrk:"

var (
	client     *redis.Client
	clientOnce sync.Once
	clientErr  error
)

type Config struct {
	URL      string // redis:// or rediss:// (TLS)
	Password string // overrides the password embedded in URL
}

// Client returns the shared client, or nil when Redis is not configured or unreachable.
func Client() *redis.Client {
	return client
}

// Initialize connects once. Later calls return the first result.
func Initialize(cfg Config) error {
	clientOnce.Do(func() {
		if cfg.URL == "" {
			clientErr = errors.New("redis: REDIS_URL not configured")
			return
		}

		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			clientErr = fmt.Errorf("redis: invalid URL: %w", err)
			return
		}
		if cfg.Password != "" {
			opts.Password = cfg.Password
		}
		opts.DialTimeout = 5 * time.Second
		opts.ReadTimeout = 2 * time.Second
		opts.WriteTimeout = 2 * time.Second
		opts.PoolSize = 10
		opts.MinIdleConns = 2

		c := redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Ping(ctx).Err(); err != nil {
			_ = c.Close()
			clientErr = fmt.Errorf("redis: connection failed: %w", err)
			return
		}
		client = c
	})

	return clientErr
}

// Key joins parts under KeyPrefix, e.g. Key("role", uid) -> "flowrk:role:<uid>".
func Key(parts ...string) string {
	return KeyPrefix + strings.Join(parts, ":")
}

func Close() error {
	if client != nil {
		return client.Close()
	}
	return nil
}

func HealthCheck(ctx context.Context) error {
	if client == nil {
		return errors.New("redis: client not initialized")
	}
	return client.Ping(ctx).Err()
}
