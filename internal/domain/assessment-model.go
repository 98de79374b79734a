package domain

import "time"

const (
	MinScore = 0
	MaxScore = 100
)

// Assessment is one reviewer's scoring of one application.
type Assessment struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	ApplicationID  uint   `gorm:"not null;uniqueIndex:uidx_assessment_app_reviewer" json:"application_id"`
	ReviewerID     uint   `gorm:"not null;uniqueIndex:uidx_assessment_app_reviewer;index" json:"reviewer_id"`
	FinancialScore int    `gorm:"not null;default:0" json:"financial_score"`
	AcademicScore  int    `gorm:"not null;default:0" json:"academic_score"`
	ChurchScore    int    `gorm:"not null;default:0" json:"church_score"`
	Total          int    `gorm:"not null;default:0" json:"total"`
	Notes          string `gorm:"type:text" json:"notes"`

	Reviewer *User `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ComputeTotal keeps Total equal to the sum of the three sub-scores.
func (a *Assessment) ComputeTotal() {
	a.Total = a.FinancialScore + a.AcademicScore + a.ChurchScore
}
