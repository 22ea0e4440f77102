package repository

import (
	"context"
	"dungeon_backend/internal/model"

	"gorm.io/gorm"
)

type ExpLogRepository struct {
	DB *gorm.DB
}

func NewExpLogRepository(db *gorm.DB) *ExpLogRepository {
	return &ExpLogRepository{DB: db}
}

func (r *ExpLogRepository) Create(ctx context.Context, log *model.ExpLog) error {
	return r.DB.WithContext(ctx).Create(log).Error
}
