package util

// 经验值来源，用于经验日志
const (
	ExpSourceQuiz      = "quiz"
	ExpSourceWorksheet = "worksheet"
	ExpSourceRaid      = "raid_reward"
	ExpSourceStudent   = "student_answer"
)

const (
	ExpTypeStudent    = "student"
	ExpTypeInstructor = "instructor"
)

const (
	DefaultRankingLimit = 10
	MaxRankingLimit     = 100
	DefaultHistoryLimit = 20
)
