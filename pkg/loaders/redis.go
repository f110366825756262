package loaders

import (
	"context"
	"fmt"

	backend "github.com/redis/go-redis/v9"
)

// RedisLoader serves templates stored as plain string values in Redis,
// keyed by prefix + name. Intended for deployments that edit templates at
// runtime without a shared filesystem.
type RedisLoader struct {
	client *backend.Client
	prefix string
}

// RedisOption configures a RedisLoader.
type RedisOption func(*RedisLoader)

// WithPrefix sets the key prefix templates are stored under.
func WithPrefix(prefix string) RedisOption {
	return func(l *RedisLoader) {
		l.prefix = prefix
	}
}

// NewRedisLoader creates a loader with its own Redis client.
func NewRedisLoader(address, password string, db int, opts ...RedisOption) *RedisLoader {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewRedisLoaderFromClient(client, opts...)
}

// NewRedisLoaderFromClient creates a loader from an existing client.
func NewRedisLoaderFromClient(client *backend.Client, opts ...RedisOption) *RedisLoader {
	l := &RedisLoader{
		client: client,
		prefix: "vellum:template:",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *RedisLoader) key(name string) string {
	return l.prefix + name
}

// Load fetches the template source stored under prefix + name.
// The returned Uptodate callback re-reads the key and compares, so
// auto-reloading environments pick up edits made through Redis.
func (l *RedisLoader) Load(ctx context.Context, name string) (Source, error) {
	val, err := l.client.Get(ctx, l.key(name)).Result()
	if err != nil {
		if err == backend.Nil {
			return Source{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return Source{}, fmt.Errorf("redis get %s: %w", name, err)
	}

	return Source{
		Name:     name,
		Contents: val,
		Uptodate: func() bool {
			current, err := l.client.Get(context.Background(), l.key(name)).Result()
			if err != nil {
				return false
			}
			return current == val
		},
	}, nil
}

// Store writes template source under prefix + name. Convenience for
// seeding and tests; production writers can use any Redis client.
func (l *RedisLoader) Store(ctx context.Context, name, source string) error {
	if err := l.client.Set(ctx, l.key(name), source, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", name, err)
	}
	return nil
}

// Close closes the underlying client.
func (l *RedisLoader) Close() error {
	return l.client.Close()
}
