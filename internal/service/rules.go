package service

import (
	"dungeon_backend/internal/config"
	"sync"
)

// Rules 运行时游戏规则，配置热更新时整体替换
type Rules struct {
	mu   sync.RWMutex
	game config.GameConfig
}

func NewRules(game config.GameConfig) *Rules {
	return &Rules{game: game}
}

func (r *Rules) Get() config.GameConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.game
}

// Update 校验失败时保留旧规则
func (r *Rules) Update(game config.GameConfig) error {
	if err := game.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.game = game
	r.mu.Unlock()
	return nil
}

func (r *Rules) FatherRageResumes() bool {
	return r.Get().FatherRagePolicy == config.FatherRageResumes
}

// RaidLevelCost 领取团战奖励时使用的升级曲线
func (r *Rules) RaidLevelCost() LevelCost {
	if r.Get().RaidRewardCurve == config.RaidRewardScaled {
		return StudentLevelCost
	}
	return FlatLevelCost
}
