package model

import "time"

type RaidStatus string

const (
	RaidWaiting    RaidStatus = "waiting"
	RaidInProgress RaidStatus = "in_progress"
	RaidCompleted  RaidStatus = "completed"
)

type RaidBoss struct {
	UUIDBase
	BossName           string `gorm:"size:100;not null" json:"bossName"`
	Description        string `gorm:"type:text" json:"description"`
	TotalHP            int    `gorm:"not null" json:"totalHp"`
	MinParticipants    int    `gorm:"not null;default:1" json:"minParticipants"`
	TimeLimitMinutes   int    `gorm:"not null" json:"timeLimitMinutes"`
	DamagePerCorrect   int    `gorm:"not null" json:"damagePerCorrect"`
	RewardExp          int    `gorm:"not null" json:"rewardExp"`
	RewardPoints       int    `gorm:"not null" json:"rewardPoints"`
	PenaltyDescription string `gorm:"type:text" json:"penaltyDescription"`
	IsActive           bool   `gorm:"not null" json:"isActive"`
	IsDefeated         bool   `gorm:"not null;default:false" json:"isDefeated"`
}

func (RaidBoss) TableName() string {
	return "raid_bosses"
}

type RaidSession struct {
	UUIDBase
	RaidBossID       string     `gorm:"type:varchar(36);index;not null" json:"raidBossId"`
	GroupID          *string    `gorm:"type:varchar(36)" json:"groupId,omitempty"`
	Status           RaidStatus `gorm:"size:20;index;not null" json:"sessionStatus"`
	CurrentHP        int        `gorm:"not null" json:"currentHp"`
	TotalDamageDealt int        `gorm:"not null;default:0" json:"totalDamageDealt"`
	ParticipantCount int        `gorm:"not null;default:0" json:"participantCount"`
	StartedAt        *time.Time `json:"startedAt,omitempty"`
	EndedAt          *time.Time `json:"endedAt,omitempty"`
	Deadline         time.Time  `json:"deadline"`
	IsSuccess        bool       `gorm:"not null;default:false" json:"isSuccess"`
}

func (RaidSession) TableName() string {
	return "raid_sessions"
}

// Expired 截止时间已过且尚未结束
func (s *RaidSession) Expired(now time.Time) bool {
	return s.Status != RaidCompleted && now.After(s.Deadline)
}

type RaidParticipant struct {
	UUIDBase
	RaidSessionID  string    `gorm:"type:varchar(36);uniqueIndex:idx_session_student;not null" json:"raidSessionId"`
	StudentID      string    `gorm:"type:varchar(36);uniqueIndex:idx_session_student;not null" json:"studentId"`
	DamageDealt    int       `gorm:"not null;default:0" json:"damageDealt"`
	CorrectAnswers int       `gorm:"not null;default:0" json:"correctAnswers"`
	WrongAnswers   int       `gorm:"not null;default:0" json:"wrongAnswers"`
	RewardClaimed  bool      `gorm:"not null;default:false" json:"hasReceivedReward"`
	JoinedAt       time.Time `json:"joinedAt"`
}

func (RaidParticipant) TableName() string {
	return "raid_participants"
}
