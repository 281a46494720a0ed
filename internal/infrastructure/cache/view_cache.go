package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-postboard/internal/domain/event"
	"github.com/oksasatya/go-ddd-postboard/pkg/helpers"
)

const defaultViewTTL = 5 * time.Minute

var errStaleView = errors.New("view version moved")

// ViewCache keeps read models in Redis under a per-collection version counter.
// A change increments the counter; keys of older versions are never read again and
// expire with their TTL.
type ViewCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	logger *logrus.Logger
}

// NewViewCache uses a 5 minute TTL when ttl <= 0; entries always expire.
func NewViewCache(rdb *redis.Client, prefix string, ttl time.Duration, logger *logrus.Logger) *ViewCache {
	if prefix == "" {
		prefix = "view"
	}
	if ttl <= 0 {
		ttl = defaultViewTTL
	}
	return &ViewCache{rdb: rdb, prefix: prefix, ttl: ttl, logger: logger}
}

// view:users:v3:list
func (c *ViewCache) key(col event.Collection, version int64, key string) string {
	return c.prefix + ":" + string(col) + ":v" + strconv.FormatInt(version, 10) + ":" + key
}

func (c *ViewCache) versionKey(col event.Collection) string {
	return c.prefix + ":" + string(col) + ":version"
}

// Version returns the current version of col; 0 before the first change.
func (c *ViewCache) Version(ctx context.Context, col event.Collection) (int64, error) {
	v, err := c.rdb.Get(ctx, c.versionKey(col)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *ViewCache) Get(ctx context.Context, col event.Collection, version int64, key string, dst any) (bool, error) {
	return helpers.RedisGetJSON(ctx, c.rdb, c.key(col, version, key), dst)
}

// Set stores value only while col is still at version. A value loaded before a change
// landed is dropped silently.
func (c *ViewCache) Set(ctx context.Context, col event.Collection, version int64, key string, value any) error {
	vk := c.versionKey(col)
	err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vk).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleView
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return helpers.RedisSetJSON(ctx, pipe, c.key(col, version, key), value, c.ttl)
		})
		return err
	}, vk)

	if errors.Is(err, errStaleView) || errors.Is(err, redis.TxFailedErr) {
		if c.logger != nil {
			c.logger.WithFields(logrus.Fields{"collection": col, "key": key, "version": version}).Debug("stale view not cached")
		}
		return nil
	}
	return err
}

// Notify moves every collection affected by changes to a new version.
func (c *ViewCache) Notify(ctx context.Context, changes ...event.Change) error {
	seen := map[event.Collection]bool{}
	var cols []event.Collection
	for _, ch := range changes {
		for _, col := range ch.Affected() {
			if !seen[col] {
				seen[col] = true
				cols = append(cols, col)
			}
		}
	}
	return c.Invalidate(ctx, cols...)
}

// Invalidate bumps the version of each collection in one round trip.
func (c *ViewCache) Invalidate(ctx context.Context, cols ...event.Collection) error {
	if len(cols) == 0 {
		return nil
	}
	pipe := c.rdb.TxPipeline()
	for _, col := range cols {
		pipe.Incr(ctx, c.versionKey(col))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	if c.logger != nil {
		c.logger.WithField("collections", cols).Debug("view cache invalidated")
	}
	return nil
}

var _ event.Notifier = (*ViewCache)(nil)
