package dto

type AssessmentRequest struct {
	ApplicationID  uint   `json:"applicationId"`
	FinancialScore *int   `json:"financialScore,omitempty"`
	AcademicScore  *int   `json:"academicScore,omitempty"`
	ChurchScore    *int   `json:"churchScore,omitempty"`
	Notes          string `json:"notes"`
}

type AssessmentFilter struct {
	ApplicationID uint
}
