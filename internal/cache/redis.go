package cache

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 5 * time.Second

// RedisOptions builds client options from REDIS_ADDR. A redis:// or rediss://
// URL, as handed out by hosted Redis providers, carries its own credentials
// and database; password and db only fill what the URL leaves empty.
func RedisOptions(addr, password string, db int) (*redis.Options, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}
	if !strings.HasPrefix(addr, "redis://") && !strings.HasPrefix(addr, "rediss://") {
		return &redis.Options{Addr: addr, Password: password, DB: db}, nil
	}
	opts, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.Password == "" {
		opts.Password = password
	}
	if opts.DB == 0 {
		opts.DB = db
	}
	return opts, nil
}

// ConnectRedis returns a client backing listing locks, the task queue and the
// mock mailbox, after checking the server answers.
func ConnectRedis(addr, password string, db int) (*redis.Client, error) {
	opts, err := RedisOptions(addr, password, db)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	log.Printf("Connected to Redis at %s (db %d)", opts.Addr, opts.DB)
	return rdb, nil
}

// DisconnectRedis closes client; nil is a no-op.
func DisconnectRedis(client *redis.Client) error {
	if client == nil {
		return nil
	}
	if err := client.Close(); err != nil {
		return fmt.Errorf("close redis: %w", err)
	}
	return nil
}
