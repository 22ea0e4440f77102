package model

import "time"

type ExpLog struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID    *string   `gorm:"type:varchar(36);index" json:"studentId,omitempty"`
	InstructorID *uint     `gorm:"index" json:"instructorId,omitempty"`
	ExpAmount    int       `gorm:"not null" json:"expAmount"`
	ExpType      string    `gorm:"size:50;not null" json:"expType"`
	SourceType   string    `gorm:"size:50;not null" json:"sourceType"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (ExpLog) TableName() string {
	return "exp_logs"
}
