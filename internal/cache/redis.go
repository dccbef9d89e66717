// Package cache keeps built leaderboards in Redis between writes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "leaderboard:"
	generationKey = keyPrefix + "generation"
)

// Client wraps a Redis connection.
type Client struct {
	rdb *goredis.Client
}

// NewClient connects and pings with a 5s budget.
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connect failed: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// Boards stores leaderboard snapshots under a generation number. Invalidate
// bumps the generation, so stale snapshots are never read again and simply expire.
// Store takes the generation Load returned; a board built across an Invalidate
// lands under the old generation and is never served.
type Boards struct {
	client *Client
	ttl    time.Duration
}

func NewBoards(client *Client, ttl time.Duration) *Boards {
	return &Boards{client: client, ttl: ttl}
}

func (b *Boards) Load(ctx context.Context, key string, dst any) (int64, bool, error) {
	gen, err := b.generation(ctx)
	if err != nil {
		return 0, false, err
	}
	raw, err := b.client.rdb.Get(ctx, b.key(gen, key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return gen, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return 0, false, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return gen, true, nil
}

func (b *Boards) Store(ctx context.Context, gen int64, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", key, err)
	}
	return b.client.rdb.Set(ctx, b.key(gen, key), payload, b.ttl).Err()
}

func (b *Boards) Invalidate(ctx context.Context) error {
	return b.client.rdb.Incr(ctx, generationKey).Err()
}

func (b *Boards) generation(ctx context.Context) (int64, error) {
	gen, err := b.client.rdb.Get(ctx, generationKey).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (b *Boards) key(gen int64, key string) string {
	return keyPrefix + strconv.FormatInt(gen, 10) + ":" + key
}
