package repository

import (
	"context"
	"dungeon_backend/internal/model"
	"dungeon_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type StudentRepository struct {
	DB *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

func (r *StudentRepository) Create(ctx context.Context, student *model.Student) error {
	return r.DB.WithContext(ctx).Create(student).Error
}

func (r *StudentRepository) FindByID(ctx context.Context, id string) (*model.Student, error) {
	var student model.Student
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&student).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *StudentRepository) Save(ctx context.Context, student *model.Student) error {
	return r.DB.WithContext(ctx).Save(student).Error
}

// Top 排行榜：等级优先，其次经验
func (r *StudentRepository) Top(ctx context.Context, limit int) ([]model.Student, error) {
	var students []model.Student
	err := r.DB.WithContext(ctx).
		Order("level DESC").
		Order("exp DESC").
		Order("created_at ASC").
		Limit(limit).
		Find(&students).Error
	return students, err
}

func (r *StudentRepository) AnswerTotals(ctx context.Context) (correct, wrong, students int64, err error) {
	var totals struct {
		Correct  int64
		Wrong    int64
		Students int64
	}
	err = r.DB.WithContext(ctx).Model(&model.Student{}).
		Select("COALESCE(SUM(total_correct), 0) AS correct, COALESCE(SUM(total_wrong), 0) AS wrong, COUNT(*) AS students").
		Scan(&totals).Error
	return totals.Correct, totals.Wrong, totals.Students, err
}
