package model

const (
	MissionWordQuiz   = "word_quiz"
	MissionSelfPraise = "self_praise"
	MissionMeditation = "meditation"
)

type MentalRecoveryMission struct {
	UUIDBase
	MissionType     string `gorm:"size:50;index;not null" json:"missionType"`
	Title           string `gorm:"size:100;not null" json:"title"`
	Description     string `gorm:"type:text" json:"description"`
	RecoveryAmount  int    `gorm:"not null" json:"recoveryAmount"`
	DifficultyLevel int    `gorm:"default:1" json:"difficultyLevel"`
	QuestionText    string `gorm:"type:text" json:"questionText,omitempty"`
	CorrectAnswer   string `gorm:"size:255" json:"-"`
	IsActive        bool   `gorm:"not null" json:"isActive"`
}

func (MentalRecoveryMission) TableName() string {
	return "mental_recovery_missions"
}
