package model

import "time"

type EvolutionStage string

const (
	StageNormal  EvolutionStage = "normal"
	StageAngry   EvolutionStage = "angry"
	StageCalm    EvolutionStage = "calm"
	StageEnraged EvolutionStage = "enraged"
	StageFather  EvolutionStage = "father"
)

// Instructor 讲师聚合，通过 LookupKey 定位
type Instructor struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	LookupKey      string         `gorm:"size:50;uniqueIndex;not null" json:"lookupKey"`
	Name           string         `gorm:"size:100;not null" json:"name"`
	Level          int            `gorm:"not null;default:1" json:"level"`
	Exp            int            `gorm:"not null;default:0" json:"exp"`
	RageGauge      int            `gorm:"not null;default:0" json:"rageGauge"`
	EvolutionStage EvolutionStage `gorm:"size:20;not null;default:'normal'" json:"evolutionStage"`
	IsEvolved      bool           `gorm:"not null;default:false" json:"isEvolved"`
	CurrentTitle   string         `gorm:"size:100" json:"currentTitle"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

func (Instructor) TableName() string {
	return "instructors"
}
