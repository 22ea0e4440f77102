package model

import "time"

type RageDialogue struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	InstructorID   uint      `gorm:"index" json:"instructorId"`
	StudentID      *string   `gorm:"type:varchar(36);index" json:"studentId,omitempty"`
	DialogueText   string    `gorm:"type:text;not null" json:"message"`
	DialogueType   string    `gorm:"size:50;not null" json:"dialogueType"`
	IntensityLevel int       `gorm:"not null" json:"intensityLevel"`
	Generated      bool      `gorm:"not null;default:false" json:"generated"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`
}

func (RageDialogue) TableName() string {
	return "rage_dialogues"
}
