package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/barhand/barhand-backend/internal/pkg/logger"
)

// MatchCache caches computed match sets per (user, maxDepth). Entries are
// versioned by a per-user generation counter so invalidation is a single
// INCR instead of a key scan.
type MatchCache interface {
	Get(ctx context.Context, userID uuid.UUID, maxDepth int, out any) (bool, error)
	Set(ctx context.Context, userID uuid.UUID, maxDepth int, value any) error
	InvalidateUser(ctx context.Context, userID uuid.UUID) error
	InvalidateAll(ctx context.Context) error
	Close() error
}

type matchCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewMatchCache connects using REDIS_ADDR. Returns (nil, nil) when the env
// is not set so callers can treat the cache as optional.
func NewMatchCache(log *logger.Logger) (MatchCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, nil
	}

	ttlSec := 300
	if v := os.Getenv("MATCH_CACHE_TTL_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			ttlSec = parsed
		}
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &matchCache{
		log: log.With("service", "RedisMatchCache"),
		rdb: rdb,
		ttl: time.Duration(ttlSec) * time.Second,
	}, nil
}

const (
	globalGenKey  = "matchset:gen"
	userGenKeyFmt = "matchset:gen:%s"
	entryKeyFmt   = "matchset:%d:%s:%d:%d"
)

func (c *matchCache) generations(ctx context.Context, userID uuid.UUID) (int64, int64, error) {
	vals, err := c.rdb.MGet(ctx, globalGenKey, fmt.Sprintf(userGenKeyFmt, userID)).Result()
	if err != nil {
		return 0, 0, err
	}
	parse := func(v any) int64 {
		s, ok := v.(string)
		if !ok {
			return 0
		}
		n, _ := strconv.ParseInt(s, 10, 64)
		return n
	}
	return parse(vals[0]), parse(vals[1]), nil
}

func (c *matchCache) entryKey(ctx context.Context, userID uuid.UUID, maxDepth int) (string, error) {
	globalGen, userGen, err := c.generations(ctx, userID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(entryKeyFmt, globalGen, userID, userGen, maxDepth), nil
}

func (c *matchCache) Get(ctx context.Context, userID uuid.UUID, maxDepth int, out any) (bool, error) {
	key, err := c.entryKey(ctx, userID, maxDepth)
	if err != nil {
		return false, err
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode cached match set: %w", err)
	}
	return true, nil
}

func (c *matchCache) Set(ctx context.Context, userID uuid.UUID, maxDepth int, value any) error {
	key, err := c.entryKey(ctx, userID, maxDepth)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, c.ttl).Err()
}

func (c *matchCache) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	return c.rdb.Incr(ctx, fmt.Sprintf(userGenKeyFmt, userID)).Err()
}

func (c *matchCache) InvalidateAll(ctx context.Context) error {
	return c.rdb.Incr(ctx, globalGenKey).Err()
}

func (c *matchCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
