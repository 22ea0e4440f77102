package repository

import (
	"context"
	"dungeon_backend/internal/model"
	"dungeon_backend/internal/service"
	"dungeon_backend/internal/util"
	"errors"
	"time"

	"gorm.io/gorm"
)

type RaidRepository struct {
	DB *gorm.DB
}

func NewRaidRepository(db *gorm.DB) *RaidRepository {
	return &RaidRepository{DB: db}
}

func (r *RaidRepository) FindBoss(ctx context.Context, id string) (*model.RaidBoss, error) {
	var boss model.RaidBoss
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&boss).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrBossNotFound
	}
	if err != nil {
		return nil, err
	}
	return &boss, nil
}

func (r *RaidRepository) ActiveBosses(ctx context.Context) ([]model.RaidBoss, error) {
	var bosses []model.RaidBoss
	err := r.DB.WithContext(ctx).
		Where("is_active = ? AND is_defeated = ?", true, false).
		Order("total_hp ASC").
		Find(&bosses).Error
	return bosses, err
}

func (r *RaidRepository) CreateSession(ctx context.Context, session *model.RaidSession) error {
	return r.DB.WithContext(ctx).Create(session).Error
}

func (r *RaidRepository) FindSession(ctx context.Context, id string) (*model.RaidSession, error) {
	var session model.RaidSession
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *RaidRepository) ActiveSessions(ctx context.Context) ([]model.RaidSession, error) {
	var sessions []model.RaidSession
	err := r.DB.WithContext(ctx).
		Where("status <> ?", model.RaidCompleted).
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *RaidRepository) OverdueSessions(ctx context.Context, now time.Time) ([]model.RaidSession, error) {
	var sessions []model.RaidSession
	err := r.DB.WithContext(ctx).
		Where("status <> ? AND deadline < ?", model.RaidCompleted, now).
		Find(&sessions).Error
	return sessions, err
}

func (r *RaidRepository) AddParticipant(ctx context.Context, participant *model.RaidParticipant) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(participant).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return util.ErrAlreadyJoined
			}
			return err
		}
		result := tx.Model(&model.RaidSession{}).
			Where("id = ?", participant.RaidSessionID).
			Update("participant_count", gorm.Expr("participant_count + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return util.ErrSessionNotFound
		}
		return nil
	})
}

func (r *RaidRepository) FindParticipant(ctx context.Context, sessionID, studentID string) (*model.RaidParticipant, error) {
	var participant model.RaidParticipant
	err := r.DB.WithContext(ctx).
		Where("raid_session_id = ? AND student_id = ?", sessionID, studentID).
		First(&participant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotParticipant
	}
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

// ListParticipants 按造成伤害降序
func (r *RaidRepository) ListParticipants(ctx context.Context, sessionID string) ([]model.RaidParticipant, error) {
	var participants []model.RaidParticipant
	err := r.DB.WithContext(ctx).
		Where("raid_session_id = ?", sessionID).
		Order("damage_dealt DESC").
		Order("joined_at ASC").
		Find(&participants).Error
	return participants, err
}

func (r *RaidRepository) StartSession(ctx context.Context, sessionID string, startedAt time.Time) error {
	result := r.DB.WithContext(ctx).Model(&model.RaidSession{}).
		Where("id = ? AND status = ?", sessionID, model.RaidWaiting).
		Updates(map[string]interface{}{
			"status":     model.RaidInProgress,
			"started_at": startedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindSession(ctx, sessionID); err != nil {
			return err
		}
		return util.ErrRaidNotWaiting
	}
	return nil
}

// ApplyHit 条件更新 current_hp，影响行数为 0 说明已被其他请求修改
func (r *RaidRepository) ApplyHit(ctx context.Context, hit service.RaidHit) (bool, error) {
	applied := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"current_hp":         gorm.Expr("current_hp - ?", hit.Damage),
			"total_damage_dealt": gorm.Expr("total_damage_dealt + ?", hit.Damage),
		}
		if hit.Completes {
			updates["status"] = model.RaidCompleted
			updates["is_success"] = true
			updates["ended_at"] = hit.At
		}
		result := tx.Model(&model.RaidSession{}).
			Where("id = ? AND status = ? AND current_hp = ?", hit.SessionID, model.RaidInProgress, hit.PrevHP).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if err := tx.Model(&model.RaidParticipant{}).
			Where("id = ?", hit.ParticipantID).
			Updates(map[string]interface{}{
				"damage_dealt":    gorm.Expr("damage_dealt + ?", hit.Damage),
				"correct_answers": gorm.Expr("correct_answers + ?", 1),
			}).Error; err != nil {
			return err
		}

		if hit.Completes {
			if err := tx.Model(&model.RaidBoss{}).
				Where("id = ?", hit.BossID).
				Update("is_defeated", true).Error; err != nil {
				return err
			}
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (r *RaidRepository) RecordMiss(ctx context.Context, participantID string) error {
	result := r.DB.WithContext(ctx).Model(&model.RaidParticipant{}).
		Where("id = ?", participantID).
		Update("wrong_answers", gorm.Expr("wrong_answers + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return util.ErrNotParticipant
	}
	return nil
}

func (r *RaidRepository) ExpireSession(ctx context.Context, sessionID string, endedAt time.Time) (bool, error) {
	result := r.DB.WithContext(ctx).Model(&model.RaidSession{}).
		Where("id = ? AND status <> ?", sessionID, model.RaidCompleted).
		Updates(map[string]interface{}{
			"status":     model.RaidCompleted,
			"is_success": false,
			"ended_at":   endedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ClaimReward 领取标记与学生成长在同一事务中提交
func (r *RaidRepository) ClaimReward(ctx context.Context, participantID string, student *model.Student) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.RaidParticipant{}).
			Where("id = ? AND reward_claimed = ?", participantID, false).
			Update("reward_claimed", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&model.RaidParticipant{}).Where("id = ?", participantID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return util.ErrNotParticipant
			}
			return util.ErrRewardAlreadyClaimed
		}
		return tx.Save(student).Error
	})
}
