package service

// rewardTier 分数段奖励，按 minScore 降序排列
type rewardTier struct {
	minScore float64
	exp      int
	points   int
}

var rewardTiers = []rewardTier{
	{90, 40, 400},
	{80, 30, 300},
	{70, 25, 250},
	{60, 20, 200},
	{50, 15, 150},
	{40, 10, 100},
}

// RewardsFor 根据整张试卷的得分率返回经验和积分，满分单独处理
func RewardsFor(scorePercent float64) (exp int, points int) {
	if scorePercent == 100 {
		return 50, 500
	}
	for _, tier := range rewardTiers {
		if scorePercent >= tier.minScore {
			return tier.exp, tier.points
		}
	}
	return 5, 50
}
