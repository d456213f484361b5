package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectionInfo describes the Redis instance backing the token cache.
type ConnectionInfo struct {
	Addr        string
	Password    string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
}

// NewRedisConnection connects and pings Redis so a bad address fails at
// startup instead of on the first token lookup.
func NewRedisConnection(ctx context.Context, info ConnectionInfo) (*redis.Client, error) {
	if info.DialTimeout == 0 {
		info.DialTimeout = 5 * time.Second
	}
	if info.Timeout == 0 {
		info.Timeout = 3 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         info.Addr,
		Password:     info.Password,
		DB:           info.DB,
		MaxRetries:   info.MaxRetries,
		DialTimeout:  info.DialTimeout,
		ReadTimeout:  info.Timeout,
		WriteTimeout: info.Timeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", info.Addr, err)
	}
	return client, nil
}
