package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisStore keeps sessions in Redis so several server processes can share
// them. Each session is a key with a TTL; a per-user set indexes them for
// RevokeUser.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string { return "session:" + id }

func userKey(userID uint) string { return fmt.Sprintf("session:user:%d", userID) }

func (r *RedisStore) Create(ctx context.Context, userID uint) (string, error) {
	id := uuid.NewString()
	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, sessionKey(id), userID, r.ttl)
	pipe.SAdd(ctx, userKey(userID), id)
	pipe.Expire(ctx, userKey(userID), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return id, nil
}

func (r *RedisStore) Lookup(ctx context.Context, id string) (uint, error) {
	val, err := r.rdb.Get(ctx, sessionKey(id)).Result()
	if err == redis.Nil {
		return 0, ErrNotFound
	} else if err != nil {
		return 0, fmt.Errorf("failed to read session: %w", err)
	}
	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, ErrNotFound
	}
	return uint(userID), nil
}

func (r *RedisStore) Revoke(ctx context.Context, id string) error {
	val, err := r.rdb.GetDel(ctx, sessionKey(id)).Result()
	if err == redis.Nil {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	if userID, err := strconv.ParseUint(val, 10, 64); err == nil {
		if err := r.rdb.SRem(ctx, userKey(uint(userID)), id).Err(); err != nil {
			logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Warn("Failed to drop session from user index")
		}
	}
	return nil
}

func (r *RedisStore) RevokeUser(ctx context.Context, userID uint) error {
	ids, err := r.rdb.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userKey(userID))
	return r.rdb.Del(ctx, keys...).Err()
}
