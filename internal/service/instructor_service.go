package service

import (
	"context"
	"dungeon_backend/internal/model"
	"dungeon_backend/internal/util"
	"dungeon_backend/pkg/lock"
	"dungeon_backend/pkg/logger"
	"dungeon_backend/pkg/monitoring"
	"dungeon_backend/pkg/tracing"
	"errors"
	"fmt"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	instructorExpCorrect = 5
	instructorExpWrong   = 2
	rageOnWrong          = 3
	rageOnCorrect        = 1
	rageLevelUpRelief    = 10
	maxRage              = 100
	enragedReleaseBelow  = 50

	angryLevel  = 5
	calmLevel   = 10
	evolveLevel = 10
	evolveRage  = 20
	evolveRate  = 70.0
)

func InstructorLevelCost(level int) int { return level * 500 }

// baseStage 不考虑愤怒状态时由等级决定的阶段
func baseStage(level int) model.EvolutionStage {
	switch {
	case level >= calmLevel:
		return model.StageCalm
	case level >= angryLevel:
		return model.StageAngry
	default:
		return model.StageNormal
	}
}

// resolveStage father 为终态；enraged 在愤怒值降到 50 以下之前保持
func resolveStage(in *model.Instructor) {
	if in.IsEvolved || in.EvolutionStage == model.StageFather {
		in.EvolutionStage = model.StageFather
		return
	}
	if in.RageGauge >= maxRage {
		in.EvolutionStage = model.StageEnraged
		return
	}
	if in.EvolutionStage == model.StageEnraged && in.RageGauge >= enragedReleaseBelow {
		return
	}
	in.EvolutionStage = baseStage(in.Level)
}

// addRage 返回实际变化量；frozen 策略下进化后的愤怒值不再变化
func addRage(in *model.Instructor, delta int, resumeAfterFather bool) int {
	if in.IsEvolved && !resumeAfterFather {
		return 0
	}
	before := in.RageGauge
	in.RageGauge = addClamped(in.RageGauge, delta, 0, maxRage)
	return in.RageGauge - before
}

func TitleForLevel(level int, evolved bool) string {
	var title string
	switch {
	case evolved || level >= 10:
		title = "아빠 허태훈 (부성애 각성)"
	case level >= 7:
		title = "분노 게이지 안정화됨"
	case level >= 5:
		title = "독설의 달인"
	case level >= 3:
		title = "엄격한 교육자"
	default:
		title = "신입 강사"
	}
	return fmt.Sprintf("Lv.%d — %s", level, title)
}

func StatusMessage(in *model.Instructor) string {
	if in.IsEvolved {
		return "아빠 허태훈 — 더 이상 분노하지 않습니다"
	}
	switch rage := in.RageGauge; {
	case rage >= 80:
		return "분노 폭발 직전"
	case rage >= 60:
		return "분노 게이지 상승 중"
	case rage >= 40:
		return "약간 짜증남"
	case rage >= 20:
		return "분노 게이지 안정화됨"
	default:
		return "평온한 상태"
	}
}

type InstructorTransition struct {
	LeveledUp bool                 `json:"leveledUp"`
	OldLevel  int                  `json:"oldLevel"`
	NewLevel  int                  `json:"newLevel"`
	ExpGained int                  `json:"expGained"`
	RageDelta int                  `json:"rageDelta"`
	OldStage  model.EvolutionStage `json:"oldStage"`
	NewStage  model.EvolutionStage `json:"newStage"`
}

// ApplyInstructorEvent 先结算经验和升级，再按答题结果调整愤怒值
func ApplyInstructorEvent(in *model.Instructor, correct bool, resumeAfterFather bool) InstructorTransition {
	tr := InstructorTransition{OldLevel: in.Level, OldStage: in.EvolutionStage}

	tr.ExpGained = instructorExpWrong
	if correct {
		tr.ExpGained = instructorExpCorrect
	}

	in.Exp += tr.ExpGained
	for in.Exp >= InstructorLevelCost(in.Level) {
		in.Exp -= InstructorLevelCost(in.Level)
		in.Level++
		tr.RageDelta += addRage(in, -rageLevelUpRelief, resumeAfterFather)
	}

	if correct {
		tr.RageDelta += addRage(in, -rageOnCorrect, resumeAfterFather)
	} else {
		tr.RageDelta += addRage(in, rageOnWrong, resumeAfterFather)
	}

	tr.NewLevel = in.Level
	tr.LeveledUp = tr.NewLevel > tr.OldLevel
	if tr.LeveledUp {
		in.CurrentTitle = TitleForLevel(in.Level, in.IsEvolved)
	}
	resolveStage(in)
	tr.NewStage = in.EvolutionStage
	return tr
}

// EvolveInstructor 进化为 father，愤怒值清零
func EvolveInstructor(in *model.Instructor) {
	in.IsEvolved = true
	in.EvolutionStage = model.StageFather
	in.RageGauge = 0
	in.CurrentTitle = TitleForLevel(in.Level, true)
}

type InstructorEventResult struct {
	Instructor *model.Instructor    `json:"instructor"`
	Transition InstructorTransition `json:"transition"`
}

type InstructorStats struct {
	Instructor         *model.Instructor `json:"instructor"`
	StatusMessage      string            `json:"statusMessage"`
	TotalStudents      int64             `json:"totalStudents"`
	AverageCorrectRate float64           `json:"averageCorrectRate"`
}

type EvolutionCheck struct {
	CanEvolve           bool              `json:"canEvolve"`
	IsAlreadyEvolved    bool              `json:"isAlreadyEvolved"`
	CurrentLevel        int               `json:"currentLevel"`
	RequiredLevel       int               `json:"requiredLevel"`
	StudentCorrectRate  float64           `json:"studentCorrectRate"`
	RequiredCorrectRate float64           `json:"requiredCorrectRate"`
	Reasons             []string          `json:"reasons"`
	Evolved             bool              `json:"evolved"`
	Instructor          *model.Instructor `json:"instructor,omitempty"`
}

type InstructorService struct {
	Instructors InstructorStore
	Students    StudentStore
	ExpLogs     ExpLogStore
	Dialogues   DialogueStore
	Locker      lock.Locker
	Rules       *Rules
}

func NewInstructorService(instructors InstructorStore, students StudentStore, expLogs ExpLogStore, dialogues DialogueStore, locker lock.Locker, rules *Rules) *InstructorService {
	return &InstructorService{
		Instructors: instructors,
		Students:    students,
		ExpLogs:     expLogs,
		Dialogues:   dialogues,
		Locker:      locker,
		Rules:       rules,
	}
}

// Seed 启动时确保讲师记录存在
func (s *InstructorService) Seed(ctx context.Context, name string) (*model.Instructor, error) {
	key := s.Rules.Get().InstructorKey
	in, err := s.Instructors.FindByKey(ctx, key)
	if err == nil {
		return in, nil
	}
	if !errors.Is(err, util.ErrInstructorNotFound) {
		return nil, err
	}

	in = &model.Instructor{
		LookupKey:      key,
		Name:           name,
		Level:          1,
		EvolutionStage: model.StageNormal,
		CurrentTitle:   TitleForLevel(1, false),
	}
	if err := s.Instructors.Create(ctx, in); err != nil {
		return nil, err
	}
	logger.Log.Info("Instructor seeded", zap.String("key", key), zap.String("name", name))
	return in, nil
}

func (s *InstructorService) Get(ctx context.Context) (*model.Instructor, error) {
	return s.Instructors.FindByKey(ctx, s.Rules.Get().InstructorKey)
}

// mutate 在讲师锁内读取、修改并保存
func (s *InstructorService) mutate(ctx context.Context, fn func(in *model.Instructor) error) (*model.Instructor, error) {
	key := s.Rules.Get().InstructorKey
	var out *model.Instructor
	err := withLock(ctx, s.Locker, instructorKey(key), func() error {
		in, err := s.Instructors.FindByKey(ctx, key)
		if err != nil {
			return err
		}
		if err := fn(in); err != nil {
			return err
		}
		if err := s.Instructors.Save(ctx, in); err != nil {
			return err
		}
		out = in
		return nil
	})
	return out, err
}

func (s *InstructorService) ApplyEvent(ctx context.Context, correct bool) (*InstructorEventResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "InstructorService.ApplyEvent")
	defer span.End()
	span.SetAttributes(attribute.Bool("answer.correct", correct))

	resume := s.Rules.FatherRageResumes()
	var tr InstructorTransition
	in, err := s.mutate(ctx, func(in *model.Instructor) error {
		tr = ApplyInstructorEvent(in, correct, resume)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if tr.LeveledUp {
		monitoring.LevelUps.WithLabelValues(util.ExpTypeInstructor).Add(float64(tr.NewLevel - tr.OldLevel))
		logger.Log.Info("Instructor leveled up", zap.Int("level", tr.NewLevel), zap.String("stage", string(tr.NewStage)))
	}
	if tr.OldStage != tr.NewStage {
		logger.Log.Info("Instructor stage changed",
			zap.String("from", string(tr.OldStage)),
			zap.String("to", string(tr.NewStage)),
			zap.Int("rage", in.RageGauge),
		)
	}
	s.recordExp(ctx, in.ID, tr.ExpGained)

	return &InstructorEventResult{Instructor: in, Transition: tr}, nil
}

func (s *InstructorService) recordExp(ctx context.Context, instructorID uint, amount int) {
	if s.ExpLogs == nil {
		return
	}
	id := instructorID
	if err := s.ExpLogs.Create(ctx, &model.ExpLog{
		InstructorID: &id,
		ExpAmount:    amount,
		ExpType:      util.ExpTypeInstructor,
		SourceType:   util.ExpSourceStudent,
	}); err != nil {
		logger.Log.Warn("Failed to record instructor exp log", zap.Error(err))
	}
}

// AdjustRage 直接增减愤怒值，正数增加负数减少
func (s *InstructorService) AdjustRage(ctx context.Context, delta int) (*model.Instructor, error) {
	if delta == 0 {
		return nil, util.ErrInvalidAmount
	}
	resume := s.Rules.FatherRageResumes()
	return s.mutate(ctx, func(in *model.Instructor) error {
		addRage(in, delta, resume)
		resolveStage(in)
		return nil
	})
}

func (s *InstructorService) EvolveToFather(ctx context.Context) (*model.Instructor, error) {
	in, err := s.mutate(ctx, func(in *model.Instructor) error {
		EvolveInstructor(in)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Instructor evolved to father", zap.Int("level", in.Level))
	return in, nil
}

func correctRate(correct, wrong int64) float64 {
	total := correct + wrong
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*1000) / 10
}

func (s *InstructorService) Stats(ctx context.Context) (*InstructorStats, error) {
	in, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	correct, wrong, students, err := s.Students.AnswerTotals(ctx)
	if err != nil {
		return nil, err
	}
	return &InstructorStats{
		Instructor:         in,
		StatusMessage:      StatusMessage(in),
		TotalStudents:      students,
		AverageCorrectRate: correctRate(correct, wrong),
	}, nil
}

func (s *InstructorService) evolutionCheck(ctx context.Context, in *model.Instructor) (*EvolutionCheck, error) {
	correct, wrong, students, err := s.Students.AnswerTotals(ctx)
	if err != nil {
		return nil, err
	}

	check := &EvolutionCheck{
		IsAlreadyEvolved:    in.IsEvolved,
		CurrentLevel:        in.Level,
		RequiredLevel:       evolveLevel,
		RequiredCorrectRate: evolveRate,
		Reasons:             []string{},
	}
	if in.Level < evolveLevel {
		check.Reasons = append(check.Reasons, "강사 레벨이 10 미만입니다")
	}
	if in.RageGauge > evolveRage {
		check.Reasons = append(check.Reasons, "분노 게이지가 너무 높습니다 (20 이하 필요)")
	}
	if students == 0 {
		check.Reasons = append(check.Reasons, "등록된 학생이 없습니다")
	} else {
		check.StudentCorrectRate = correctRate(correct, wrong)
		if check.StudentCorrectRate < evolveRate {
			check.Reasons = append(check.Reasons,
				fmt.Sprintf("학생 평균 정답률이 70%% 미만입니다 (현재: %.1f%%)", check.StudentCorrectRate))
		}
	}
	check.CanEvolve = len(check.Reasons) == 0 && !in.IsEvolved
	return check, nil
}

func (s *InstructorService) CheckEvolution(ctx context.Context) (*EvolutionCheck, error) {
	in, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.evolutionCheck(ctx, in)
}

// TryAutoEvolve 满足条件时进化，判断与进化在同一把锁内完成
func (s *InstructorService) TryAutoEvolve(ctx context.Context) (*EvolutionCheck, error) {
	var check *EvolutionCheck
	in, err := s.mutate(ctx, func(in *model.Instructor) error {
		c, err := s.evolutionCheck(ctx, in)
		if err != nil {
			return err
		}
		check = c
		if c.CanEvolve {
			EvolveInstructor(in)
			c.Evolved = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	check.Instructor = in
	if check.Evolved {
		logger.Log.Info("Instructor auto-evolved to father", zap.Int("level", in.Level))
	}
	return check, nil
}

func (s *InstructorService) RageHistory(ctx context.Context, limit int) ([]model.RageDialogue, error) {
	in, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = util.DefaultHistoryLimit
	}
	return s.Dialogues.Recent(ctx, in.ID, limit)
}
