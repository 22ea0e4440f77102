package model

// swagger:model Student
type Student struct {
	UUIDBase
	Username     string  `gorm:"size:50;uniqueIndex;not null" json:"username"`
	DisplayName  string  `gorm:"size:100;not null" json:"displayName"`
	GroupID      *string `gorm:"type:varchar(36);index" json:"groupId,omitempty"`
	Level        int     `gorm:"not null;default:1" json:"level"`
	Exp          int     `gorm:"not null;default:0" json:"exp"`
	Points       int     `gorm:"not null;default:0" json:"points"`
	TotalCorrect int     `gorm:"not null;default:0" json:"totalCorrect"`
	TotalWrong   int     `gorm:"not null;default:0" json:"totalWrong"`
}

func (Student) TableName() string {
	return "students"
}

// Accuracy 正确率（百分比，保留一位小数）
func (s *Student) Accuracy() float64 {
	total := s.TotalCorrect + s.TotalWrong
	if total == 0 {
		return 0
	}
	return float64(int(float64(s.TotalCorrect)/float64(total)*1000+0.5)) / 10
}
