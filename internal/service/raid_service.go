package service

import (
	"context"
	"dungeon_backend/internal/model"
	"dungeon_backend/internal/util"
	"dungeon_backend/pkg/lock"
	"dungeon_backend/pkg/logger"
	"dungeon_backend/pkg/monitoring"
	"dungeon_backend/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// 比较交换失败后的最大重试次数，进程内有会话锁时只会在多实例并发下触发
const maxHitAttempts = 5

type DamageResult struct {
	Session     *model.RaidSession     `json:"session"`
	Participant *model.RaidParticipant `json:"participant"`
	DamageDealt int                    `json:"damageDealt"`
	IsDefeated  bool                   `json:"isDefeated"`
}

type RaidAnswerResult struct {
	Correct     bool                   `json:"isCorrect"`
	Session     *model.RaidSession     `json:"session"`
	Participant *model.RaidParticipant `json:"participant"`
	DamageDealt int                    `json:"damageDealt"`
	IsDefeated  bool                   `json:"isDefeated"`
}

type RewardResult struct {
	Progress     *ProgressResult `json:"progress"`
	RewardExp    int             `json:"rewardExp"`
	RewardPoints int             `json:"rewardPoints"`
}

type RaidDetails struct {
	Session      *model.RaidSession      `json:"session"`
	Boss         *model.RaidBoss         `json:"boss"`
	Participants []model.RaidParticipant `json:"participants"`
}

type RaidService struct {
	Raids    RaidStore
	Students StudentStore
	Quizzes  QuizStore
	ExpLogs  ExpLogStore
	Locker   lock.Locker
	Rules    *Rules
	Now      func() time.Time
}

func NewRaidService(raids RaidStore, students StudentStore, quizzes QuizStore, expLogs ExpLogStore, locker lock.Locker, rules *Rules) *RaidService {
	return &RaidService{
		Raids:    raids,
		Students: students,
		Quizzes:  quizzes,
		ExpLogs:  expLogs,
		Locker:   locker,
		Rules:    rules,
		Now:      time.Now,
	}
}

func (s *RaidService) ActiveBosses(ctx context.Context) ([]model.RaidBoss, error) {
	return s.Raids.ActiveBosses(ctx)
}

// ActiveSessions 先结算已超时的会话再返回
func (s *RaidService) ActiveSessions(ctx context.Context) ([]model.RaidSession, error) {
	if _, err := s.ExpireOverdue(ctx); err != nil {
		return nil, err
	}
	return s.Raids.ActiveSessions(ctx)
}

func (s *RaidService) Create(ctx context.Context, bossID string, groupID *string) (*model.RaidSession, error) {
	boss, err := s.Raids.FindBoss(ctx, bossID)
	if err != nil {
		return nil, err
	}
	if !boss.IsActive {
		return nil, util.ErrBossNotFound
	}
	if boss.IsDefeated {
		return nil, util.ErrBossDefeated
	}

	session := &model.RaidSession{
		RaidBossID: boss.ID,
		GroupID:    groupID,
		Status:     model.RaidWaiting,
		CurrentHP:  boss.TotalHP,
		Deadline:   s.Now().Add(time.Duration(boss.TimeLimitMinutes) * time.Minute),
	}
	if err := s.Raids.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	logger.Log.Info("Raid session created", zap.String("sessionId", session.ID), zap.String("bossId", boss.ID))
	return session, nil
}

// loadSession 读取会话，超时未结束的会话在此处结算为失败
func (s *RaidService) loadSession(ctx context.Context, sessionID string) (*model.RaidSession, error) {
	session, err := s.Raids.FindSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Expired(s.Now()) {
		if _, err := s.expire(ctx, session); err != nil {
			return nil, err
		}
	}
	return session, nil
}

// expire 返回是否由本次调用结算；已被其他写入方结束时重新读取最新状态
func (s *RaidService) expire(ctx context.Context, session *model.RaidSession) (bool, error) {
	endedAt := session.Deadline
	done, err := s.Raids.ExpireSession(ctx, session.ID, endedAt)
	if err != nil {
		return false, err
	}
	if !done {
		fresh, err := s.Raids.FindSession(ctx, session.ID)
		if err != nil {
			return false, err
		}
		*session = *fresh
		return false, nil
	}
	session.Status = model.RaidCompleted
	session.IsSuccess = false
	session.EndedAt = &endedAt
	monitoring.RaidOutcomes.WithLabelValues("expired").Inc()
	logger.Log.Info("Raid session expired", zap.String("sessionId", session.ID))
	return true, nil
}

// ExpireOverdue 后台定时调用，返回本次结算的会话数
func (s *RaidService) ExpireOverdue(ctx context.Context) (int, error) {
	overdue, err := s.Raids.OverdueSessions(ctx, s.Now())
	if err != nil {
		return 0, err
	}
	expired := 0
	for i := range overdue {
		id := overdue[i].ID
		err := withLock(ctx, s.Locker, sessionKey(id), func() error {
			session, err := s.Raids.FindSession(ctx, id)
			if err != nil {
				return err
			}
			if !session.Expired(s.Now()) {
				return nil
			}
			done, err := s.expire(ctx, session)
			if done {
				expired++
			}
			return err
		})
		if err != nil {
			logger.Log.Warn("Failed to expire raid session, skipped", zap.String("sessionId", id), zap.Error(err))
		}
	}
	return expired, nil
}

func (s *RaidService) Join(ctx context.Context, sessionID, studentID string) (*model.RaidParticipant, error) {
	if _, err := s.Students.FindByID(ctx, studentID); err != nil {
		return nil, err
	}

	var participant *model.RaidParticipant
	err := withLock(ctx, s.Locker, sessionKey(sessionID), func() error {
		session, err := s.loadSession(ctx, sessionID)
		if err != nil {
			return err
		}
		if session.Status == model.RaidCompleted {
			return util.ErrRaidClosed
		}
		if _, err := s.Raids.FindParticipant(ctx, sessionID, studentID); err == nil {
			return util.ErrAlreadyJoined
		} else if !util.IsNotFound(err) {
			return err
		}

		participant = &model.RaidParticipant{
			RaidSessionID: sessionID,
			StudentID:     studentID,
			JoinedAt:      s.Now(),
		}
		return s.Raids.AddParticipant(ctx, participant)
	})
	if err != nil {
		return nil, err
	}
	return participant, nil
}

func (s *RaidService) Start(ctx context.Context, sessionID string) (*model.RaidSession, error) {
	var session *model.RaidSession
	err := withLock(ctx, s.Locker, sessionKey(sessionID), func() error {
		var err error
		session, err = s.loadSession(ctx, sessionID)
		if err != nil {
			return err
		}
		if session.Status != model.RaidWaiting {
			return util.ErrRaidNotWaiting
		}
		boss, err := s.Raids.FindBoss(ctx, session.RaidBossID)
		if err != nil {
			return err
		}
		if session.ParticipantCount < boss.MinParticipants {
			return util.ErrInsufficientParticipants
		}

		now := s.Now()
		if err := s.Raids.StartSession(ctx, sessionID, now); err != nil {
			return err
		}
		session.Status = model.RaidInProgress
		session.StartedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// DealDamage 会话锁内读取剩余 HP，伤害按剩余 HP 截断，击杀只会由一次调用完成
func (s *RaidService) DealDamage(ctx context.Context, sessionID, studentID string, damage int) (*DamageResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "RaidService.DealDamage")
	defer span.End()
	span.SetAttributes(attribute.String("raid.session_id", sessionID), attribute.Int("raid.damage", damage))

	if damage <= 0 {
		return nil, util.ErrInvalidAmount
	}

	var result *DamageResult
	err := withLock(ctx, s.Locker, sessionKey(sessionID), func() error {
		var err error
		result, err = s.applyHit(ctx, sessionID, studentID, damage)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.observeHit(sessionID, studentID, result)
	span.SetAttributes(attribute.Bool("raid.defeated", result.IsDefeated))
	return result, nil
}

func (s *RaidService) observeHit(sessionID, studentID string, result *DamageResult) {
	monitoring.RaidDamage.Add(float64(result.DamageDealt))
	if result.IsDefeated {
		monitoring.RaidOutcomes.WithLabelValues("defeated").Inc()
		logger.Log.Info("Raid boss defeated",
			zap.String("sessionId", sessionID),
			zap.String("bossId", result.Session.RaidBossID),
			zap.String("finisher", studentID),
		)
	}
}

func (s *RaidService) applyHit(ctx context.Context, sessionID, studentID string, damage int) (*DamageResult, error) {
	for attempt := 0; attempt < maxHitAttempts; attempt++ {
		session, err := s.loadSession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if session.Status != model.RaidInProgress {
			return nil, util.ErrRaidNotInProgress
		}
		participant, err := s.Raids.FindParticipant(ctx, sessionID, studentID)
		if err != nil {
			return nil, err
		}

		now := s.Now()
		applied := min(damage, session.CurrentHP)
		hit := RaidHit{
			SessionID:     sessionID,
			ParticipantID: participant.ID,
			BossID:        session.RaidBossID,
			PrevHP:        session.CurrentHP,
			Damage:        applied,
			Completes:     session.CurrentHP-applied == 0,
			At:            now,
		}
		ok, err := s.Raids.ApplyHit(ctx, hit)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		session.CurrentHP -= applied
		session.TotalDamageDealt += applied
		if hit.Completes {
			session.Status = model.RaidCompleted
			session.IsSuccess = true
			session.EndedAt = &now
		}
		participant.DamageDealt += applied
		participant.CorrectAnswers++

		return &DamageResult{
			Session:     session,
			Participant: participant,
			DamageDealt: applied,
			IsDefeated:  hit.Completes,
		}, nil
	}
	return nil, util.ErrLockTimeout
}

// SubmitAnswer 服务端判题，答对时按 boss.DamagePerCorrect 造成伤害。
// 同一会话中每名学生每道题只计一次命中，判重与扣血在同一把会话锁内完成
func (s *RaidService) SubmitAnswer(ctx context.Context, sessionID, studentID, quizID, answer string) (*RaidAnswerResult, error) {
	quiz, err := s.Quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if quiz.RaidBossID == nil || *quiz.RaidBossID != session.RaidBossID {
		return nil, util.ErrQuizNotFound
	}
	boss, err := s.Raids.FindBoss(ctx, session.RaidBossID)
	if err != nil {
		return nil, err
	}

	correct := GradeAnswer(quiz.CorrectAnswer, answer)
	result := &RaidAnswerResult{Correct: correct}

	err = withLock(ctx, s.Locker, sessionKey(sessionID), func() error {
		if correct {
			solved, err := s.Quizzes.SolvedInRaid(ctx, sessionID, studentID, quizID)
			if err != nil {
				return err
			}
			if solved {
				return util.ErrQuizAlreadySolved
			}
			dr, err := s.applyHit(ctx, sessionID, studentID, boss.DamagePerCorrect)
			if err != nil {
				return err
			}
			result.Session = dr.Session
			result.Participant = dr.Participant
			result.DamageDealt = dr.DamageDealt
			result.IsDefeated = dr.IsDefeated
		} else {
			session, err := s.loadSession(ctx, sessionID)
			if err != nil {
				return err
			}
			if session.Status != model.RaidInProgress {
				return util.ErrRaidNotInProgress
			}
			participant, err := s.Raids.FindParticipant(ctx, sessionID, studentID)
			if err != nil {
				return err
			}
			if err := s.Raids.RecordMiss(ctx, participant.ID); err != nil {
				return err
			}
			participant.WrongAnswers++
			result.Session = session
			result.Participant = participant
		}

		sid := sessionID
		if err := s.Quizzes.RecordAttempt(ctx, &model.QuizAttempt{
			QuizID:         quizID,
			StudentID:      studentID,
			RaidSessionID:  &sid,
			SelectedAnswer: answer,
			IsCorrect:      correct,
			AttemptedAt:    s.Now(),
		}); err != nil {
			logger.Log.Warn("Failed to record raid quiz attempt", zap.String("quizId", quizID), zap.Error(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if correct {
		s.observeHit(sessionID, studentID, &DamageResult{
			Session:     result.Session,
			DamageDealt: result.DamageDealt,
			IsDefeated:  result.IsDefeated,
		})
	}
	return result, nil
}

// ClaimReward 奖励领取标志的置位与学生保存在同一事务中完成
func (s *RaidService) ClaimReward(ctx context.Context, sessionID, studentID string) (*RewardResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "RaidService.ClaimReward",
		trace.WithAttributes(attribute.String("raid.session_id", sessionID)))
	defer span.End()

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsSuccess {
		return nil, util.ErrRaidNotSuccessful
	}
	participant, err := s.Raids.FindParticipant(ctx, sessionID, studentID)
	if err != nil {
		return nil, err
	}
	boss, err := s.Raids.FindBoss(ctx, session.RaidBossID)
	if err != nil {
		return nil, err
	}

	var progress *ProgressResult
	err = withLock(ctx, s.Locker, participantKey(participant.ID), func() error {
		current, err := s.Raids.FindParticipant(ctx, sessionID, studentID)
		if err != nil {
			return err
		}
		if current.RewardClaimed {
			return util.ErrRewardAlreadyClaimed
		}
		return withLock(ctx, s.Locker, studentKey(studentID), func() error {
			student, err := s.Students.FindByID(ctx, studentID)
			if err != nil {
				return err
			}
			progress = grant(student, boss.RewardExp, boss.RewardPoints, s.Rules.RaidLevelCost())
			return s.Raids.ClaimReward(ctx, current.ID, student)
		})
	})
	if err != nil {
		return nil, err
	}

	if progress.LeveledUp {
		monitoring.LevelUps.WithLabelValues(util.ExpTypeStudent).Add(float64(progress.NewLevel - progress.OldLevel))
	}
	recordStudentExp(ctx, s.ExpLogs, studentID, boss.RewardExp, util.ExpSourceRaid)
	logger.Log.Info("Raid reward claimed",
		zap.String("sessionId", sessionID),
		zap.String("studentId", studentID),
		zap.Int("exp", boss.RewardExp),
		zap.Int("points", boss.RewardPoints),
	)
	return &RewardResult{Progress: progress, RewardExp: boss.RewardExp, RewardPoints: boss.RewardPoints}, nil
}

func (s *RaidService) Details(ctx context.Context, sessionID string) (*RaidDetails, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	boss, err := s.Raids.FindBoss(ctx, session.RaidBossID)
	if err != nil {
		return nil, err
	}
	participants, err := s.Raids.ListParticipants(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &RaidDetails{Session: session, Boss: boss, Participants: participants}, nil
}

// BossQuizzes 会话对应 boss 的题目，正确答案不会序列化
func (s *RaidService) BossQuizzes(ctx context.Context, sessionID string) ([]model.Quiz, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.Quizzes.ListByBoss(ctx, session.RaidBossID)
}
