package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-postboard/pkg/helpers"
)

// SessionStore keeps one session hash per operator.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func sessionKey(subject string) string {
	return "operator:session:" + subject
}

func (s *SessionStore) Save(ctx context.Context, subject, sid string, ttl time.Duration) error {
	key := sessionKey(subject)
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"subject":    subject,
		"sid":        sid,
		"logged_in":  true,
		"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *SessionStore) Current(ctx context.Context, subject string) (string, error) {
	sid, err := s.rdb.HGet(ctx, sessionKey(subject), "sid").Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return sid, err
}

func (s *SessionStore) Delete(ctx context.Context, subject string) error {
	return helpers.RedisDel(ctx, s.rdb, sessionKey(subject))
}
