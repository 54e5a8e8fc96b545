package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisUsageTTL = 48 * time.Hour

// RedisUsageStore 每日计数的 Redis 实现，INCR 保证原子自增，过期自动清理
type RedisUsageStore struct {
	client *redis.Client
	prefix string
}

func NewRedisUsageStore(client *redis.Client, prefix string) *RedisUsageStore {
	return &RedisUsageStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisUsageStore) key(userID int64, date string) string {
	return fmt.Sprintf("%s%d:%s", s.prefix, userID, date)
}

func (s *RedisUsageStore) GetDailyUsage(ctx context.Context, userID int64, date string) (int, error) {
	val, err := s.client.Get(ctx, s.key(userID, date)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read usage: %w", err)
	}

	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("corrupt usage counter %q: %w", val, err)
	}
	return count, nil
}

func (s *RedisUsageStore) IncrementDailyUsage(ctx context.Context, userID int64, date string) (int, error) {
	key := s.key(userID, date)

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, redisUsageTTL)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment usage: %w", err)
	}

	return int(incr.Val()), nil
}
