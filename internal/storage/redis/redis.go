package redis

import (
	"context"
	"filegate/internal/config"
	"filegate/internal/storage"
	"fmt"
	"github.com/redis/go-redis/v9"
	"strconv"
	"time"
)

const tokenKeyPrefix = "dlt"

// TokenStore persists single-use download tokens in redis.
// Expiry is delegated to redis key TTLs: a key past its TTL is gone for every
// subsequent command, so no explicit expire_at predicate is needed on consume.
type TokenStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTokenStore creates new instance of redis-backed token store
func NewTokenStore(conf *config.RedisConfig, tokenTTL time.Duration) *TokenStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Host + ":" + strconv.Itoa(conf.Port),
		Password: conf.Password,
		DB:       conf.DB,
	})

	return &TokenStore{rdb: rdb, ttl: tokenTTL}
}

func (s *TokenStore) key(value string) string {
	return tokenKeyPrefix + ":" + value
}

// Issue writes a fresh token record with the configured TTL. The stored value
// is the issuance timestamp, kept only for operator inspection; the key's
// existence is what makes the token live. A colliding value overwrites the
// previous record and restarts the TTL, accepted given caller-side entropy.
func (s *TokenStore) Issue(ctx context.Context, value string) error {
	const op = "storage.redis.Issue"

	if err := s.rdb.Set(ctx, s.key(value), time.Now().Unix(), s.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w: %v", op, storage.ErrStoreUnavailable, err)
	}
	return nil
}

// ConsumeIfValid destroys the token record and reports whether it was still
// live. The whole operation is a single DEL: redis executes commands one at a
// time, so of two racing consumers exactly one observes the removal count 1.
// Returns storage.ErrTokenNotFound when the token was never issued, already
// consumed, or expired.
func (s *TokenStore) ConsumeIfValid(ctx context.Context, value string) error {
	const op = "storage.redis.ConsumeIfValid"

	removed, err := s.rdb.Del(ctx, s.key(value)).Result()
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, storage.ErrStoreUnavailable, err)
	}
	if removed == 0 {
		return storage.ErrTokenNotFound
	}
	return nil
}

// TTL returns the issuance TTL applied to new tokens.
func (s *TokenStore) TTL() time.Duration {
	return s.ttl
}

// Close ends the redis connection
func (s *TokenStore) Close() error {
	return s.rdb.Close()
}
