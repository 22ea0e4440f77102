package repository

import (
	"context"
	"dungeon_backend/internal/model"
	"dungeon_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) FindByID(ctx context.Context, id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&quiz).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuizNotFound
	}
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizRepository) ListByBoss(ctx context.Context, bossID string) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.WithContext(ctx).
		Where("raid_boss_id = ?", bossID).
		Order("difficulty_level ASC").
		Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) RecordAttempt(ctx context.Context, attempt *model.QuizAttempt) error {
	return r.DB.WithContext(ctx).Create(attempt).Error
}

func (r *QuizRepository) SolvedInRaid(ctx context.Context, sessionID, studentID, quizID string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.QuizAttempt{}).
		Where("raid_session_id = ? AND student_id = ? AND quiz_id = ? AND is_correct = ?", sessionID, studentID, quizID, true).
		Count(&count).Error
	return count > 0, err
}
