package repository

import (
	"context"
	"dungeon_backend/internal/model"
	"dungeon_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type MissionRepository struct {
	DB *gorm.DB
}

func NewMissionRepository(db *gorm.DB) *MissionRepository {
	return &MissionRepository{DB: db}
}

func (r *MissionRepository) FindByID(ctx context.Context, id string) (*model.MentalRecoveryMission, error) {
	var mission model.MentalRecoveryMission
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&mission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrMissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &mission, nil
}

func (r *MissionRepository) ListActive(ctx context.Context, missionType string) ([]model.MentalRecoveryMission, error) {
	query := r.DB.WithContext(ctx).Where("is_active = ?", true)
	if missionType != "" {
		query = query.Where("mission_type = ?", missionType)
	}
	var missions []model.MentalRecoveryMission
	err := query.Order("difficulty_level ASC").Order("created_at ASC").Find(&missions).Error
	return missions, err
}
