package domain

import "time"

// FamilyInfo holds parent and guardian biodata, owned by exactly one applicant.
type FamilyInfo struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	ApplicantID uint `gorm:"uniqueIndex;not null" json:"applicant_id"`

	FatherName       string `gorm:"type:varchar(150)" json:"father_name"`
	FatherOccupation string `gorm:"type:varchar(150)" json:"father_occupation"`
	FatherEmployer   string `gorm:"type:varchar(150)" json:"father_employer"`
	FatherPhone      string `gorm:"type:varchar(30)" json:"father_phone"`
	FatherAddress    string `gorm:"type:text" json:"father_address"`
	FatherAlive      *bool  `json:"father_alive,omitempty"`

	MotherName       string `gorm:"type:varchar(150)" json:"mother_name"`
	MotherOccupation string `gorm:"type:varchar(150)" json:"mother_occupation"`
	MotherEmployer   string `gorm:"type:varchar(150)" json:"mother_employer"`
	MotherPhone      string `gorm:"type:varchar(30)" json:"mother_phone"`
	MotherAddress    string `gorm:"type:text" json:"mother_address"`
	MotherAlive      *bool  `json:"mother_alive,omitempty"`

	GuardianName         string `gorm:"type:varchar(150)" json:"guardian_name"`
	GuardianRelationship string `gorm:"type:varchar(50)" json:"guardian_relationship"`
	GuardianOccupation   string `gorm:"type:varchar(150)" json:"guardian_occupation"`
	GuardianPhone        string `gorm:"type:varchar(30)" json:"guardian_phone"`
	GuardianAddress      string `gorm:"type:text" json:"guardian_address"`

	NumberOfSiblings *int `json:"number_of_siblings,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
