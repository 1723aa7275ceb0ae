package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	attemptKeyPrefix = "login:attempts:"
	lockKeyPrefix    = "login:lock:"
)

// RedisAttemptStore は複数インスタンスで共有できるよう Redis に状態を保存します。
type RedisAttemptStore struct {
	rdb    *redis.Client
	policy ThrottlePolicy
}

// NewRedisAttemptStore は RedisAttemptStore を作成します。
func NewRedisAttemptStore(rdb *redis.Client, policy ThrottlePolicy) *RedisAttemptStore {
	return &RedisAttemptStore{
		rdb:    rdb,
		policy: policy,
	}
}

func (s *RedisAttemptStore) LockedFor(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.rdb.PTTL(ctx, lockKey(key)).Result()
	if err != nil {
		return 0, err
	}
	// キーが無い場合は -2、期限なしは -1 が返る
	if ttl <= 0 {
		return 0, nil
	}
	return ttl, nil
}

func (s *RedisAttemptStore) RecordFailure(ctx context.Context, key string) (int, error) {
	counter := attemptKey(key)

	// 加算と期限設定は同じトランザクションで行い、期限なしのカウンターを残さない
	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, counter)
	pipe.ExpireNX(ctx, counter, s.policy.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to record failure for %s: %w", key, err)
	}
	count := incr.Val()

	if int(count) < s.policy.MaxAttempts {
		return s.policy.MaxAttempts - int(count), nil
	}

	tx := s.rdb.TxPipeline()
	tx.Set(ctx, lockKey(key), count, s.policy.Lock)
	tx.Del(ctx, counter)
	if _, err := tx.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to lock %s: %w", key, err)
	}
	return 0, nil
}

func (s *RedisAttemptStore) Reset(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, attemptKey(key), lockKey(key)).Err()
}

func attemptKey(key string) string {
	return attemptKeyPrefix + key
}

func lockKey(key string) string {
	return lockKeyPrefix + key
}
