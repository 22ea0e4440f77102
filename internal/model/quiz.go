package model

import "time"

type Quiz struct {
	UUIDBase
	RaidBossID      *string `gorm:"type:varchar(36);index" json:"raidBossId,omitempty"`
	Question        string  `gorm:"type:text;not null" json:"question"`
	OptionA         string  `gorm:"size:255" json:"optionA"`
	OptionB         string  `gorm:"size:255" json:"optionB"`
	OptionC         string  `gorm:"size:255" json:"optionC"`
	OptionD         string  `gorm:"size:255" json:"optionD"`
	CorrectAnswer   string  `gorm:"size:255;not null" json:"-"`
	Explanation     string  `gorm:"type:text" json:"explanation,omitempty"`
	DifficultyLevel int     `gorm:"default:1" json:"difficultyLevel"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// QuizAttempt 每次作答记录
type QuizAttempt struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	QuizID         string    `gorm:"type:varchar(36);index;not null" json:"quizId"`
	StudentID      string    `gorm:"type:varchar(36);index;not null" json:"studentId"`
	RaidSessionID  *string   `gorm:"type:varchar(36);index" json:"raidSessionId,omitempty"`
	SelectedAnswer string    `gorm:"size:255" json:"selectedAnswer"`
	IsCorrect      bool      `json:"isCorrect"`
	AttemptedAt    time.Time `json:"attemptedAt"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
