package service

import (
	"context"
	"dungeon_backend/internal/model"
	"dungeon_backend/internal/util"
	"dungeon_backend/pkg/logger"

	"go.uber.org/zap"
)

// RankingCache 排行榜缓存，未命中时返回 ok=false
type RankingCache interface {
	Get(ctx context.Context, limit int) (students []model.Student, ok bool, err error)
	Set(ctx context.Context, limit int, students []model.Student) error
}

type RankingService struct {
	Students StudentStore
	Cache    RankingCache
}

func NewRankingService(students StudentStore, cache RankingCache) *RankingService {
	return &RankingService{Students: students, Cache: cache}
}

// Top 按等级、经验排序，缓存不可用时直接查库
func (s *RankingService) Top(ctx context.Context, limit int) ([]model.Student, error) {
	if limit <= 0 {
		limit = util.DefaultRankingLimit
	}
	if limit > util.MaxRankingLimit {
		limit = util.MaxRankingLimit
	}

	if s.Cache != nil {
		students, ok, err := s.Cache.Get(ctx, limit)
		if err != nil {
			logger.Log.Warn("Ranking cache read failed", zap.Error(err))
		} else if ok {
			return students, nil
		}
	}

	students, err := s.Students.Top(ctx, limit)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, limit, students); err != nil {
			logger.Log.Warn("Ranking cache write failed", zap.Error(err))
		}
	}
	return students, nil
}
