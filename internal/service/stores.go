package service

import (
	"context"
	"dungeon_backend/internal/model"
	"time"
)

// 服务层依赖的存储接口，由 repository 包中的 gorm 实现提供，
// 测试中使用内存实现

type StudentStore interface {
	Create(ctx context.Context, student *model.Student) error
	FindByID(ctx context.Context, id string) (*model.Student, error)
	Save(ctx context.Context, student *model.Student) error
	Top(ctx context.Context, limit int) ([]model.Student, error)
	// AnswerTotals 全体学生的正确/错误次数之和以及学生人数
	AnswerTotals(ctx context.Context) (correct, wrong, students int64, err error)
}

type MentalStateStore interface {
	// FindByStudent 不存在时返回 util.ErrMentalStateNotFound
	FindByStudent(ctx context.Context, studentID string) (*model.MentalState, error)
	Save(ctx context.Context, state *model.MentalState) error
}

type InstructorStore interface {
	// FindByKey 不存在时返回 util.ErrInstructorNotFound
	FindByKey(ctx context.Context, key string) (*model.Instructor, error)
	Create(ctx context.Context, instructor *model.Instructor) error
	Save(ctx context.Context, instructor *model.Instructor) error
}

type ExpLogStore interface {
	Create(ctx context.Context, log *model.ExpLog) error
}

type DialogueStore interface {
	Create(ctx context.Context, dialogue *model.RageDialogue) error
	Recent(ctx context.Context, instructorID uint, limit int) ([]model.RageDialogue, error)
}

type QuizStore interface {
	FindByID(ctx context.Context, id string) (*model.Quiz, error)
	ListByBoss(ctx context.Context, bossID string) ([]model.Quiz, error)
	RecordAttempt(ctx context.Context, attempt *model.QuizAttempt) error
	// SolvedInRaid 该学生是否已在此会话中答对过这道题
	SolvedInRaid(ctx context.Context, sessionID, studentID, quizID string) (bool, error)
}

type MissionStore interface {
	FindByID(ctx context.Context, id string) (*model.MentalRecoveryMission, error)
	ListActive(ctx context.Context, missionType string) ([]model.MentalRecoveryMission, error)
}

// RaidHit 一次命中，Damage 已按剩余 HP 截断
type RaidHit struct {
	SessionID     string
	ParticipantID string
	BossID        string
	PrevHP        int
	Damage        int
	Completes     bool
	At            time.Time
}

type RaidStore interface {
	FindBoss(ctx context.Context, id string) (*model.RaidBoss, error)
	ActiveBosses(ctx context.Context) ([]model.RaidBoss, error)

	CreateSession(ctx context.Context, session *model.RaidSession) error
	FindSession(ctx context.Context, id string) (*model.RaidSession, error)
	ActiveSessions(ctx context.Context) ([]model.RaidSession, error)
	OverdueSessions(ctx context.Context, now time.Time) ([]model.RaidSession, error)

	// AddParticipant 同时递增 participantCount，重复加入返回 util.ErrAlreadyJoined
	AddParticipant(ctx context.Context, participant *model.RaidParticipant) error
	FindParticipant(ctx context.Context, sessionID, studentID string) (*model.RaidParticipant, error)
	ListParticipants(ctx context.Context, sessionID string) ([]model.RaidParticipant, error)

	// StartSession 仅当状态为 waiting 时生效，否则返回 util.ErrRaidNotWaiting
	StartSession(ctx context.Context, sessionID string, startedAt time.Time) error
	// ApplyHit 以 PrevHP 做比较交换，返回 false 表示会话已被其他写入方修改
	ApplyHit(ctx context.Context, hit RaidHit) (bool, error)
	RecordMiss(ctx context.Context, participantID string) error
	// ExpireSession 将未结束的会话标记为失败，返回是否由本次调用完成
	ExpireSession(ctx context.Context, sessionID string, endedAt time.Time) (bool, error)
	// ClaimReward 在同一事务中置位 rewardClaimed 并保存学生，已领取返回 util.ErrRewardAlreadyClaimed
	ClaimReward(ctx context.Context, participantID string, student *model.Student) error
}
