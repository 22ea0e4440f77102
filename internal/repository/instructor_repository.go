package repository

import (
	"context"
	"dungeon_backend/internal/model"
	"dungeon_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type InstructorRepository struct {
	DB *gorm.DB
}

func NewInstructorRepository(db *gorm.DB) *InstructorRepository {
	return &InstructorRepository{DB: db}
}

func (r *InstructorRepository) FindByKey(ctx context.Context, key string) (*model.Instructor, error) {
	var instructor model.Instructor
	err := r.DB.WithContext(ctx).Where("lookup_key = ?", key).First(&instructor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrInstructorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &instructor, nil
}

func (r *InstructorRepository) Create(ctx context.Context, instructor *model.Instructor) error {
	return r.DB.WithContext(ctx).Create(instructor).Error
}

func (r *InstructorRepository) Save(ctx context.Context, instructor *model.Instructor) error {
	return r.DB.WithContext(ctx).Save(instructor).Error
}
