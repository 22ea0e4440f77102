package util

import (
	"dungeon_backend/pkg/lock"
	"errors"
)

// 资源不存在
var (
	ErrStudentNotFound     = errors.New("학생을 찾을 수 없습니다")
	ErrMentalStateNotFound = errors.New("멘탈 상태를 찾을 수 없습니다")
	ErrInstructorNotFound  = errors.New("instructor not seeded")
	ErrQuizNotFound        = errors.New("퀴즈를 찾을 수 없습니다")
	ErrBossNotFound        = errors.New("레이드 보스를 찾을 수 없습니다")
	ErrSessionNotFound     = errors.New("레이드 세션을 찾을 수 없습니다")
	ErrNotParticipant      = errors.New("레이드 참가자가 아닙니다")
	ErrMissionNotFound     = errors.New("미션을 찾을 수 없습니다")
)

// 业务校验失败，原样返回给调用方
var (
	ErrAlreadyJoined            = errors.New("이미 참가한 레이드입니다")
	ErrInsufficientParticipants = errors.New("최소 참가 인원이 부족합니다")
	ErrRaidNotWaiting           = errors.New("대기 중인 레이드가 아닙니다")
	ErrRaidNotInProgress        = errors.New("진행 중인 레이드가 아닙니다")
	ErrRaidNotSuccessful        = errors.New("성공한 레이드가 아닙니다")
	ErrRaidClosed               = errors.New("이미 종료된 레이드입니다")
	ErrRewardAlreadyClaimed     = errors.New("이미 보상을 받았습니다")
	ErrBossDefeated             = errors.New("이미 처치된 보스입니다")
	ErrQuizAlreadySolved        = errors.New("이미 맞힌 문제입니다")
	ErrNoActiveMission          = errors.New("사용 가능한 회복 미션이 없습니다")
	ErrInvalidScore             = errors.New("scorePercent must be between 0 and 100")
	ErrInvalidAmount            = errors.New("amount must be positive")
	ErrInvalidCount             = errors.New("answer counts must not be negative")
)

// ErrLockTimeout 共享资源繁忙
var ErrLockTimeout = lock.ErrTimeout

var notFoundErrors = []error{
	ErrStudentNotFound,
	ErrMentalStateNotFound,
	ErrQuizNotFound,
	ErrBossNotFound,
	ErrSessionNotFound,
	ErrNotParticipant,
	ErrMissionNotFound,
}

var conflictErrors = []error{
	ErrAlreadyJoined,
	ErrInsufficientParticipants,
	ErrRaidNotWaiting,
	ErrRaidNotInProgress,
	ErrRaidNotSuccessful,
	ErrRaidClosed,
	ErrRewardAlreadyClaimed,
	ErrBossDefeated,
	ErrQuizAlreadySolved,
	ErrNoActiveMission,
}

var badRequestErrors = []error{
	ErrInvalidScore,
	ErrInvalidAmount,
	ErrInvalidCount,
}

func matchAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func IsNotFound(err error) bool {
	return matchAny(err, notFoundErrors)
}

// IsDomainError 判断是否为可预期的业务错误（不需要记录为内部错误）
func IsDomainError(err error) bool {
	return matchAny(err, conflictErrors) || matchAny(err, badRequestErrors)
}
