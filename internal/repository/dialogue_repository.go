package repository

import (
	"context"
	"dungeon_backend/internal/model"

	"gorm.io/gorm"
)

type DialogueRepository struct {
	DB *gorm.DB
}

func NewDialogueRepository(db *gorm.DB) *DialogueRepository {
	return &DialogueRepository{DB: db}
}

func (r *DialogueRepository) Create(ctx context.Context, dialogue *model.RageDialogue) error {
	return r.DB.WithContext(ctx).Create(dialogue).Error
}

// Recent 最新的在前
func (r *DialogueRepository) Recent(ctx context.Context, instructorID uint, limit int) ([]model.RageDialogue, error) {
	var dialogues []model.RageDialogue
	err := r.DB.WithContext(ctx).
		Where("instructor_id = ?", instructorID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&dialogues).Error
	return dialogues, err
}
