package domain

import "time"

// NotSpecified fills required text columns a draft has not supplied yet.
const NotSpecified = "Not Specified"

type Sex string

const (
	SexMale   Sex = "Male"
	SexFemale Sex = "Female"
)

type Applicant struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Surname          string     `gorm:"type:varchar(100);not null" json:"surname"`
	FirstName        string     `gorm:"type:varchar(100);not null" json:"first_name"`
	OtherNames       string     `gorm:"type:varchar(150)" json:"other_names"`
	DateOfBirth      *time.Time `gorm:"type:date" json:"date_of_birth,omitempty"`
	Sex              Sex        `gorm:"type:varchar(10)" json:"sex"`
	StateOfOrigin    string     `gorm:"type:varchar(100);index" json:"state_of_origin"`
	LGA              string     `gorm:"column:lga;type:varchar(100)" json:"lga"`
	HomeTown         string     `gorm:"type:varchar(100)" json:"home_town"`
	Address          string     `gorm:"type:text" json:"address"`
	Phone            string     `gorm:"type:varchar(30)" json:"phone"`
	Email            string     `gorm:"type:varchar(255)" json:"email"`
	Parish           string     `gorm:"type:varchar(150)" json:"parish"`
	ConsentGiven     bool       `gorm:"not null;default:false" json:"consent_given"`
	PriorScholarship bool       `gorm:"not null;default:false" json:"prior_scholarship"`

	FamilyInfo   *FamilyInfo   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignKey:ApplicantID" json:"family_info,omitempty"`
	Applications []Application `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignKey:ApplicantID" json:"applications,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Applicant) FullName() string {
	name := a.FirstName + " " + a.Surname
	if a.OtherNames != "" {
		name = a.FirstName + " " + a.OtherNames + " " + a.Surname
	}
	return name
}
