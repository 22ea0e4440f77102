package repository

import (
	"context"
	"dungeon_backend/internal/model"
	"dungeon_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type MentalStateRepository struct {
	DB *gorm.DB
}

func NewMentalStateRepository(db *gorm.DB) *MentalStateRepository {
	return &MentalStateRepository{DB: db}
}

func (r *MentalStateRepository) FindByStudent(ctx context.Context, studentID string) (*model.MentalState, error) {
	var state model.MentalState
	err := r.DB.WithContext(ctx).Where("student_id = ?", studentID).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrMentalStateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Save ID 为 0 时插入，首次作答时创建
func (r *MentalStateRepository) Save(ctx context.Context, state *model.MentalState) error {
	return r.DB.WithContext(ctx).Save(state).Error
}
