package service

import (
	"context"
	"dungeon_backend/internal/model"
	"dungeon_backend/internal/util"
	"dungeon_backend/pkg/lock"
	"dungeon_backend/pkg/logger"
	"dungeon_backend/pkg/monitoring"
	"strings"

	"go.uber.org/zap"
)

const (
	correctAnswerExp    = 10
	correctAnswerPoints = 5
)

// LevelCost 返回从 level 升到 level+1 所需经验
type LevelCost func(level int) int

func StudentLevelCost(level int) int { return level * 100 }

// FlatLevelCost 团战奖励沿用的固定曲线
func FlatLevelCost(int) int { return 100 }

// ResolveLevels 循环扣减经验直到不足以升级，一次大额经验可以跨越多级
func ResolveLevels(level, exp int, cost LevelCost) (int, int) {
	if level < 1 {
		level = 1
	}
	for exp >= cost(level) {
		exp -= cost(level)
		level++
	}
	return level, exp
}

type ProgressResult struct {
	LeveledUp    bool           `json:"leveledUp"`
	OldLevel     int            `json:"oldLevel"`
	NewLevel     int            `json:"newLevel"`
	ExpGained    int            `json:"expGained"`
	PointsGained int            `json:"pointsGained"`
	Student      *model.Student `json:"student"`
}

// grant 为学生增加经验和积分并结算等级
func grant(student *model.Student, exp, points int, cost LevelCost) *ProgressResult {
	oldLevel := student.Level
	student.Points += points
	student.Level, student.Exp = ResolveLevels(student.Level, student.Exp+exp, cost)
	return &ProgressResult{
		LeveledUp:    student.Level > oldLevel,
		OldLevel:     oldLevel,
		NewLevel:     student.Level,
		ExpGained:    exp,
		PointsGained: points,
		Student:      student,
	}
}

type StudentService struct {
	Students StudentStore
	ExpLogs  ExpLogStore
	Locker   lock.Locker
}

func NewStudentService(students StudentStore, expLogs ExpLogStore, locker lock.Locker) *StudentService {
	return &StudentService{Students: students, ExpLogs: expLogs, Locker: locker}
}

func (s *StudentService) CreateStudent(ctx context.Context, username, displayName string, groupID *string) (*model.Student, error) {
	username = strings.TrimSpace(username)
	if displayName == "" {
		displayName = username
	}
	student := &model.Student{
		Username:    username,
		DisplayName: displayName,
		GroupID:     groupID,
		Level:       1,
	}
	if err := s.Students.Create(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *StudentService) GetStudent(ctx context.Context, id string) (*model.Student, error) {
	return s.Students.FindByID(ctx, id)
}

// ApplyResult 单题作答：答对 +10 经验 +5 积分，答错只记录错误次数
func (s *StudentService) ApplyResult(ctx context.Context, studentID string, correct bool) (*ProgressResult, error) {
	var result *ProgressResult
	err := withLock(ctx, s.Locker, studentKey(studentID), func() error {
		student, err := s.Students.FindByID(ctx, studentID)
		if err != nil {
			return err
		}

		if correct {
			student.TotalCorrect++
			result = grant(student, correctAnswerExp, correctAnswerPoints, StudentLevelCost)
		} else {
			student.TotalWrong++
			result = grant(student, 0, 0, StudentLevelCost)
		}

		return s.Students.Save(ctx, student)
	})
	if err != nil {
		return nil, err
	}

	s.afterGrant(ctx, studentID, result, util.ExpSourceQuiz)
	return result, nil
}

// ApplyWorksheetResult 整张试卷提交，奖励按得分率查表
func (s *StudentService) ApplyWorksheetResult(ctx context.Context, studentID string, scorePercent float64, correctCount, wrongCount int) (*ProgressResult, error) {
	if scorePercent < 0 || scorePercent > 100 {
		return nil, util.ErrInvalidScore
	}
	if correctCount < 0 || wrongCount < 0 {
		return nil, util.ErrInvalidCount
	}

	exp, points := RewardsFor(scorePercent)

	var result *ProgressResult
	err := withLock(ctx, s.Locker, studentKey(studentID), func() error {
		student, err := s.Students.FindByID(ctx, studentID)
		if err != nil {
			return err
		}
		student.TotalCorrect += correctCount
		student.TotalWrong += wrongCount
		result = grant(student, exp, points, StudentLevelCost)
		return s.Students.Save(ctx, student)
	})
	if err != nil {
		return nil, err
	}

	s.afterGrant(ctx, studentID, result, util.ExpSourceWorksheet)
	return result, nil
}

func (s *StudentService) afterGrant(ctx context.Context, studentID string, result *ProgressResult, source string) {
	if result.LeveledUp {
		monitoring.LevelUps.WithLabelValues(util.ExpTypeStudent).Add(float64(result.NewLevel - result.OldLevel))
		logger.Log.Info("Student leveled up",
			zap.String("studentId", studentID),
			zap.Int("oldLevel", result.OldLevel),
			zap.Int("newLevel", result.NewLevel),
		)
	}
	if result.ExpGained > 0 {
		recordStudentExp(ctx, s.ExpLogs, studentID, result.ExpGained, source)
	}
}

// recordStudentExp 经验日志写入失败不影响主流程
func recordStudentExp(ctx context.Context, logs ExpLogStore, studentID string, amount int, source string) {
	if logs == nil {
		return
	}
	id := studentID
	if err := logs.Create(ctx, &model.ExpLog{
		StudentID:  &id,
		ExpAmount:  amount,
		ExpType:    util.ExpTypeStudent,
		SourceType: source,
	}); err != nil {
		logger.Log.Warn("Failed to record exp log", zap.String("studentId", studentID), zap.Error(err))
	}
}
