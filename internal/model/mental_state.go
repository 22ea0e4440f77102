package model

import "time"

type Mood string

const (
	MoodStable    Mood = "안정"
	MoodNormal    Mood = "보통"
	MoodAnxious   Mood = "불안"
	MoodBreakdown Mood = "멘탈붕괴"
)

// MentalState 学生的心态值，每个学生一条
type MentalState struct {
	ID                  uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID           string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"studentId"`
	Gauge               int        `gorm:"not null" json:"mentalGauge"`
	ConsecutiveWrongs   int        `gorm:"not null;default:0" json:"consecutiveWrongs"`
	ConsecutiveCorrects int        `gorm:"not null;default:0" json:"consecutiveCorrects"`
	Mood                Mood       `gorm:"size:20" json:"mood"`
	InCrisis            bool       `gorm:"not null;default:false" json:"isInCrisis"`
	LastBreakdownAt     *time.Time `json:"lastBreakdownAt,omitempty"`
	TotalBreakdowns     int        `gorm:"not null;default:0" json:"totalBreakdowns"`
	TotalRecoveries     int        `gorm:"not null;default:0" json:"totalRecoveries"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

func (MentalState) TableName() string {
	return "mental_states"
}
