package service

import (
	"context"
	"dungeon_backend/internal/model"
	"dungeon_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
)

type QuizAnswerResult struct {
	IsCorrect     bool                 `json:"isCorrect"`
	CorrectAnswer string               `json:"correctAnswer"`
	Explanation   string               `json:"explanation,omitempty"`
	Progress      *ProgressResult      `json:"progress"`
	Mental        *MentalResult        `json:"mental"`
	Instructor    InstructorTransition `json:"instructor"`
	ComboCount    int                  `json:"comboCount"`
	Dialogue      Line                 `json:"dialogue"`
}

type StudentOverview struct {
	Student  *model.Student     `json:"student"`
	Accuracy float64            `json:"accuracy"`
	Mental   *model.MentalState `json:"mental"`
}

// GameService 单题作答的编排：判题、学生成长、心态、讲师、台词
type GameService struct {
	Quizzes    QuizStore
	Students   *StudentService
	Mental     *MentalService
	Instructor *InstructorService
	Dialogue   *DialogueService
	Now        func() time.Time
}

func NewGameService(quizzes QuizStore, students *StudentService, mental *MentalService, instructor *InstructorService, dialogue *DialogueService) *GameService {
	return &GameService{
		Quizzes:    quizzes,
		Students:   students,
		Mental:     mental,
		Instructor: instructor,
		Dialogue:   dialogue,
		Now:        time.Now,
	}
}

// dialogueKindFor 根据心态变化选择台词类型
func dialogueKindFor(tr MentalTransition, consecutiveCorrects int) DialogueKind {
	if tr.Correct {
		if consecutiveCorrects > 0 && consecutiveCorrects%comboThreshold == 0 {
			return DialogueCombo
		}
		return DialogueCorrect
	}
	if tr.EnteredCrisis {
		return DialogueDestruction
	}
	if tr.BrokeCombo {
		return DialogueComboBroken
	}
	return tr.Tier
}

func (s *GameService) SubmitQuizAnswer(ctx context.Context, quizID, studentID, answer string) (*QuizAnswerResult, error) {
	quiz, err := s.Quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	student, err := s.Students.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	// 讲师缺失属于配置错误，在修改任何状态之前暴露
	instructor, err := s.Instructor.Get(ctx)
	if err != nil {
		return nil, err
	}

	correct := GradeAnswer(quiz.CorrectAnswer, answer)

	// 三条记录的锁一次性获取，拿不到任何一把都不修改状态
	var (
		progress *ProgressResult
		mental   *MentalResult
		event    *InstructorEventResult
	)
	keys := []string{
		instructorKey(s.Instructor.Rules.Get().InstructorKey),
		studentKey(studentID),
		mentalKey(studentID),
	}
	err = withLocks(ctx, s.Instructor.Locker, keys, func(ctx context.Context) error {
		var err error
		if progress, err = s.Students.ApplyResult(ctx, studentID, correct); err != nil {
			return err
		}
		if mental, err = s.Mental.ApplyAnswer(ctx, studentID, correct); err != nil {
			return err
		}
		event, err = s.Instructor.ApplyEvent(ctx, correct)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.Quizzes.RecordAttempt(ctx, &model.QuizAttempt{
		QuizID:         quizID,
		StudentID:      studentID,
		SelectedAnswer: answer,
		IsCorrect:      correct,
		AttemptedAt:    s.Now(),
	}); err != nil {
		logger.Log.Warn("Failed to record quiz attempt", zap.String("quizId", quizID), zap.Error(err))
	}

	kind := dialogueKindFor(mental.Transition, mental.State.ConsecutiveCorrects)
	line := s.Dialogue.Line(ctx, DialogueContext{
		Kind:                kind,
		InstructorName:      instructor.Name,
		StudentName:         student.DisplayName,
		Question:            quiz.Question,
		Gauge:               mental.State.Gauge,
		ConsecutiveWrongs:   mental.State.ConsecutiveWrongs,
		ConsecutiveCorrects: mental.State.ConsecutiveCorrects,
	})
	s.Dialogue.Record(ctx, event.Instructor.ID, studentID, line)

	return &QuizAnswerResult{
		IsCorrect:     correct,
		CorrectAnswer: quiz.CorrectAnswer,
		Explanation:   quiz.Explanation,
		Progress:      progress,
		Mental:        mental,
		Instructor:    event.Transition,
		ComboCount:    mental.State.ConsecutiveCorrects,
		Dialogue:      line,
	}, nil
}

func (s *GameService) StudentOverview(ctx context.Context, studentID string) (*StudentOverview, error) {
	student, err := s.Students.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	mental, err := s.Mental.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return &StudentOverview{Student: student, Accuracy: student.Accuracy(), Mental: mental}, nil
}
