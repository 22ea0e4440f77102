package service

import (
	"context"
	"dungeon_backend/internal/model"
	"dungeon_backend/internal/util"
	"dungeon_backend/pkg/lock"
	"dungeon_backend/pkg/logger"
	"dungeon_backend/pkg/monitoring"
	"errors"
	"time"

	"go.uber.org/zap"
)

const (
	maxGauge         = 100
	crisisThreshold  = 20
	anxiousThreshold = 40
	stableThreshold  = 70
	correctRecovery  = 10
)

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// addClamped 先把步长限制在 [lo-v, hi-v] 内再相加，任意 delta 都不会溢出
func addClamped(v, delta, lo, hi int) int {
	v = clamp(v, lo, hi)
	return v + clamp(delta, lo-v, hi-v)
}

// MoodFor 按心态值划分情绪
func MoodFor(gauge int) model.Mood {
	switch {
	case gauge <= crisisThreshold:
		return model.MoodBreakdown
	case gauge <= anxiousThreshold:
		return model.MoodAnxious
	case gauge <= stableThreshold:
		return model.MoodNormal
	default:
		return model.MoodStable
	}
}

// mentalDamage 连续答错越多伤害越大
func mentalDamage(consecutiveWrongs int) int {
	switch {
	case consecutiveWrongs >= 5:
		return 25
	case consecutiveWrongs >= 3:
		return 15
	default:
		return 10
	}
}

// wrongTier 答错后的台词强度
func wrongTier(gauge int) DialogueKind {
	switch {
	case gauge <= crisisThreshold:
		return DialogueDestruction
	case gauge <= anxiousThreshold:
		return DialoguePressure
	case gauge <= stableThreshold:
		return DialogueDoubt
	default:
		return DialogueLight
	}
}

// NewMentalState 首次接触时的初始状态
func NewMentalState(studentID string) *model.MentalState {
	return &model.MentalState{
		StudentID: studentID,
		Gauge:     maxGauge,
		Mood:      model.MoodNormal,
	}
}

type MentalTransition struct {
	Correct bool `json:"correct"`
	// Damage 答错时扣除的值，Recovery 答对时恢复的值
	Damage   int `json:"damage"`
	Recovery int `json:"recovery"`
	// EnteredCrisis 仅在本次跨入危机时为 true，提示外部提供恢复任务
	EnteredCrisis bool `json:"triggerRecoveryMission"`
	// BrokeCombo 答错打断了之前的连续答对
	BrokeCombo bool         `json:"brokeCombo"`
	Tier       DialogueKind `json:"tier,omitempty"`
}

// ApplyAnswerToState 纯状态转换，不访问存储
func ApplyAnswerToState(st *model.MentalState, correct bool, now time.Time) MentalTransition {
	tr := MentalTransition{Correct: correct}

	if correct {
		st.ConsecutiveCorrects++
		st.ConsecutiveWrongs = 0
		tr.Recovery = min(correctRecovery, maxGauge-st.Gauge)
		st.Gauge = addClamped(st.Gauge, tr.Recovery, 0, maxGauge)
		st.Mood = MoodFor(st.Gauge)
		if st.Gauge > crisisThreshold {
			st.InCrisis = false
		}
		return tr
	}

	tr.BrokeCombo = st.ConsecutiveCorrects >= comboThreshold
	st.ConsecutiveWrongs++
	st.ConsecutiveCorrects = 0
	tr.Damage = mentalDamage(st.ConsecutiveWrongs)
	st.Gauge = addClamped(st.Gauge, -tr.Damage, 0, maxGauge)
	st.Mood = MoodFor(st.Gauge)
	tr.Tier = wrongTier(st.Gauge)

	if st.Gauge <= crisisThreshold && !st.InCrisis {
		st.InCrisis = true
		st.TotalBreakdowns++
		st.LastBreakdownAt = &now
		tr.EnteredCrisis = true
	}
	return tr
}

// ApplyRecovery 恢复任务完成，未处于危机时同样生效
func ApplyRecovery(st *model.MentalState, amount int) int {
	before := st.Gauge
	st.Gauge = addClamped(st.Gauge, amount, 0, maxGauge)
	st.TotalRecoveries++
	st.ConsecutiveWrongs = 0
	if st.Gauge > crisisThreshold {
		st.InCrisis = false
	}
	st.Mood = MoodFor(st.Gauge)
	return st.Gauge - before
}

type MentalResult struct {
	State      *model.MentalState `json:"state"`
	Transition MentalTransition   `json:"transition"`
}

type RecoveryResult struct {
	State     *model.MentalState `json:"state"`
	Recovered int                `json:"recovered"`
}

type MentalService struct {
	States   MentalStateStore
	Students StudentStore
	Locker   lock.Locker
	Now      func() time.Time
}

func NewMentalService(states MentalStateStore, students StudentStore, locker lock.Locker) *MentalService {
	return &MentalService{States: states, Students: students, Locker: locker, Now: time.Now}
}

// load 学生必须存在，心态记录不存在时返回初始值（尚未保存）
func (s *MentalService) load(ctx context.Context, studentID string) (*model.MentalState, error) {
	if _, err := s.Students.FindByID(ctx, studentID); err != nil {
		return nil, err
	}
	st, err := s.States.FindByStudent(ctx, studentID)
	if errors.Is(err, util.ErrMentalStateNotFound) {
		return NewMentalState(studentID), nil
	}
	return st, err
}

func (s *MentalService) Get(ctx context.Context, studentID string) (*model.MentalState, error) {
	return s.load(ctx, studentID)
}

func (s *MentalService) ApplyAnswer(ctx context.Context, studentID string, correct bool) (*MentalResult, error) {
	var result *MentalResult
	err := withLock(ctx, s.Locker, mentalKey(studentID), func() error {
		st, err := s.load(ctx, studentID)
		if err != nil {
			return err
		}
		tr := ApplyAnswerToState(st, correct, s.Now())
		if err := s.States.Save(ctx, st); err != nil {
			return err
		}
		result = &MentalResult{State: st, Transition: tr}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Transition.EnteredCrisis {
		monitoring.MentalBreakdowns.Inc()
		logger.Log.Info("Student entered mental crisis",
			zap.String("studentId", studentID),
			zap.Int("gauge", result.State.Gauge),
			zap.Int("totalBreakdowns", result.State.TotalBreakdowns),
		)
	}
	return result, nil
}

func (s *MentalService) CompleteRecovery(ctx context.Context, studentID string, amount int) (*RecoveryResult, error) {
	if amount <= 0 {
		return nil, util.ErrInvalidAmount
	}

	var result *RecoveryResult
	err := withLock(ctx, s.Locker, mentalKey(studentID), func() error {
		st, err := s.load(ctx, studentID)
		if err != nil {
			return err
		}
		recovered := ApplyRecovery(st, amount)
		if err := s.States.Save(ctx, st); err != nil {
			return err
		}
		result = &RecoveryResult{State: st, Recovered: recovered}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
