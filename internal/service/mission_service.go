package service

import (
	"context"
	"dungeon_backend/internal/model"
	"dungeon_backend/internal/util"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const selfPraiseMinLength = 10

type MissionResult struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Recovery *RecoveryResult `json:"recovery,omitempty"`
}

type MissionService struct {
	Missions MissionStore
	Mental   *MentalService

	mu  sync.Mutex
	rng *rand.Rand
}

func NewMissionService(missions MissionStore, mental *MentalService, rng *rand.Rand) *MissionService {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 1))
	}
	return &MissionService{Missions: missions, Mental: mental, rng: rng}
}

// ListActive missionType 为空时返回全部
func (s *MissionService) ListActive(ctx context.Context, missionType string) ([]model.MentalRecoveryMission, error) {
	return s.Missions.ListActive(ctx, missionType)
}

func (s *MissionService) RandomMission(ctx context.Context, missionType string) (*model.MentalRecoveryMission, error) {
	missions, err := s.Missions.ListActive(ctx, missionType)
	if err != nil {
		return nil, err
	}
	if len(missions) == 0 {
		return nil, util.ErrNoActiveMission
	}
	s.mu.Lock()
	idx := s.rng.IntN(len(missions))
	s.mu.Unlock()
	return &missions[idx], nil
}

// checkMission 按任务类型校验提交内容
func checkMission(m *model.MentalRecoveryMission, answer string) bool {
	switch m.MissionType {
	case model.MissionWordQuiz:
		return GradeAnswer(m.CorrectAnswer, answer)
	case model.MissionSelfPraise:
		return utf8.RuneCountInString(strings.TrimSpace(answer)) >= selfPraiseMinLength
	case model.MissionMeditation:
		return true
	default:
		return false
	}
}

func (s *MissionService) CompleteMission(ctx context.Context, studentID, missionID, answer string) (*MissionResult, error) {
	mission, err := s.Missions.FindByID(ctx, missionID)
	if err != nil {
		return nil, err
	}
	if !mission.IsActive {
		return nil, util.ErrMissionNotFound
	}

	if !checkMission(mission, answer) {
		if _, err := s.Mental.Get(ctx, studentID); err != nil {
			return nil, err
		}
		return &MissionResult{Success: false, Message: "회복 실패... 다시 시도해보세요"}, nil
	}

	recovery, err := s.Mental.CompleteRecovery(ctx, studentID, mission.RecoveryAmount)
	if err != nil {
		return nil, err
	}
	return &MissionResult{
		Success:  true,
		Message:  "멘탈 회복 성공!",
		Recovery: recovery,
	}, nil
}
