package repository

import (
	"context"
	"dungeon_backend/internal/model"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const rankingKeyPrefix = "dungeon:ranking:"

// RankingCache 排行榜结果缓存在 Redis，TTL 由调用时读取以支持热更新
type RankingCache struct {
	Client *redis.Client
	TTL    func() time.Duration
}

func NewRankingCache(client *redis.Client, ttl func() time.Duration) *RankingCache {
	return &RankingCache{Client: client, TTL: ttl}
}

func rankingKey(limit int) string {
	return fmt.Sprintf("%s%d", rankingKeyPrefix, limit)
}

func (c *RankingCache) Get(ctx context.Context, limit int) ([]model.Student, bool, error) {
	data, err := c.Client.Get(ctx, rankingKey(limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var students []model.Student
	if err := json.Unmarshal(data, &students); err != nil {
		return nil, false, err
	}
	return students, true, nil
}

func (c *RankingCache) Set(ctx context.Context, limit int, students []model.Student) error {
	ttl := c.TTL()
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(students)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, rankingKey(limit), data, ttl).Err()
}
