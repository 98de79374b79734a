package dto

import (
	"github.com/shopspring/decimal"
)

// FamilyPayload carries optional parent/guardian fields. Its JSON keys are
// flattened into ApplicationPayload.
type FamilyPayload struct {
	FatherName       *string `json:"fatherName,omitempty"`
	FatherOccupation *string `json:"fatherOccupation,omitempty"`
	FatherEmployer   *string `json:"fatherEmployer,omitempty"`
	FatherPhone      *string `json:"fatherPhone,omitempty"`
	FatherAddress    *string `json:"fatherAddress,omitempty"`
	FatherAlive      *YesNo  `json:"fatherAlive,omitempty"`

	MotherName       *string `json:"motherName,omitempty"`
	MotherOccupation *string `json:"motherOccupation,omitempty"`
	MotherEmployer   *string `json:"motherEmployer,omitempty"`
	MotherPhone      *string `json:"motherPhone,omitempty"`
	MotherAddress    *string `json:"motherAddress,omitempty"`
	MotherAlive      *YesNo  `json:"motherAlive,omitempty"`

	GuardianName         *string `json:"guardianName,omitempty"`
	GuardianRelationship *string `json:"guardianRelationship,omitempty"`
	GuardianOccupation   *string `json:"guardianOccupation,omitempty"`
	GuardianPhone        *string `json:"guardianPhone,omitempty"`
	GuardianAddress      *string `json:"guardianAddress,omitempty"`

	NumberOfSiblings *FlexInt `json:"numberOfSiblings,omitempty"`
}

// ApplicationPayload is the body of both the draft save and the final
// submission. A nil field was omitted and leaves the stored value alone; a
// present empty string clears it.
type ApplicationPayload struct {
	DraftID *uint `json:"draftId,omitempty"`

	Surname          *string `json:"surname,omitempty"`
	FirstName        *string `json:"firstName,omitempty"`
	OtherNames       *string `json:"otherNames,omitempty"`
	DateOfBirth      *Date   `json:"dob,omitempty"`
	Sex              *string `json:"sex,omitempty"`
	StateOfOrigin    *string `json:"stateOfOrigin,omitempty"`
	LGA              *string `json:"lga,omitempty"`
	HomeTown         *string `json:"homeTown,omitempty"`
	Address          *string `json:"address,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	Email            *string `json:"email,omitempty"`
	Parish           *string `json:"parish,omitempty"`
	ConsentGiven     *YesNo  `json:"consent,omitempty"`
	PriorScholarship *YesNo  `json:"priorScholarship,omitempty"`

	SchoolName           *string          `json:"schoolName,omitempty"`
	SchoolAddress        *string          `json:"schoolAddress,omitempty"`
	ClassLevel           *string          `json:"classLevel,omitempty"`
	Course               *string          `json:"course,omitempty"`
	AdmissionNumber      *string          `json:"admissionNumber,omitempty"`
	Age                  *FlexInt         `json:"age,omitempty"`
	ClassSize            *FlexInt         `json:"classSize,omitempty"`
	AmountRequested      *decimal.Decimal `json:"amountRequested,omitempty"`
	Reason               *string          `json:"reason,omitempty"`
	ChurchMember         *YesNo           `json:"churchMember,omitempty"`
	ReceivesOtherSupport *YesNo           `json:"receivesOtherSupport,omitempty"`

	PassportPhotoKey        *string `json:"passportPhotoKey,omitempty"`
	AdmissionLetterKey      *string `json:"admissionLetterKey,omitempty"`
	ResultSlipKey           *string `json:"resultSlipKey,omitempty"`
	RecommendationLetterKey *string `json:"recommendationLetterKey,omitempty"`
	FeesInvoiceKey          *string `json:"feesInvoiceKey,omitempty"`

	FamilyPayload
}

type DraftSavedResponse struct {
	DraftID uint `json:"draft_id"`
}

type SubmittedResponse struct {
	ApplicationID uint   `json:"application_id"`
	Status        string `json:"status"`
}

type SetApplicationStatusRequest struct {
	Status         string           `json:"status" example:"Approved"`
	ApprovedAmount *decimal.Decimal `json:"approved_amount,omitempty"`
	Note           string           `json:"note,omitempty"`
}

type DisburseRequest struct {
	PaymentReference string `json:"payment_reference"`
	VoucherCode      string `json:"voucher_code,omitempty"`
	DisbursedAt      *Date  `json:"disbursed_at,omitempty"`
	Note             string `json:"note,omitempty"`
}

type ApplicationFilter struct {
	Status  string
	CycleID uint
	Search  string
	Limit   int
	Offset  int
}

type ApplicationListResponse struct {
	Items []ApplicationSummary `json:"items"`
	Total int64                `json:"total"`
}

type ApplicationSummary struct {
	ID              uint     `json:"id"`
	ApplicantName   string   `json:"applicant_name"`
	SchoolName      string   `json:"school_name"`
	Status          string   `json:"status"`
	CycleID         *uint    `json:"cycle_id,omitempty"`
	AmountRequested string   `json:"amount_requested"`
	ApprovedAmount  *string  `json:"approved_amount,omitempty"`
	CommitteeScore  *float64 `json:"committee_score,omitempty"`
	ReviewCount     int      `json:"review_count"`
	SubmittedAt     *string  `json:"submitted_at,omitempty"`
}
