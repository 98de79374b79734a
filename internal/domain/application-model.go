package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ApplicationStatus string

const (
	ApplicationStatusDraft       ApplicationStatus = "Draft"
	ApplicationStatusPending     ApplicationStatus = "Pending"
	ApplicationStatusUnderReview ApplicationStatus = "Under Review"
	ApplicationStatusApproved    ApplicationStatus = "Approved"
	ApplicationStatusRejected    ApplicationStatus = "Rejected"
	ApplicationStatusDisbursed   ApplicationStatus = "Disbursed"
)

var applicationStatuses = []ApplicationStatus{
	ApplicationStatusDraft,
	ApplicationStatusPending,
	ApplicationStatusUnderReview,
	ApplicationStatusApproved,
	ApplicationStatusRejected,
	ApplicationStatusDisbursed,
}

// ApplicationStatuses returns the status vocabulary in lifecycle order.
func ApplicationStatuses() []ApplicationStatus {
	out := make([]ApplicationStatus, len(applicationStatuses))
	copy(out, applicationStatuses)
	return out
}

// ParseApplicationStatus accepts a label in any case, with spaces, dashes or
// underscores between words ("under_review", "Under Review").
func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	key := normalizeLabel(s)
	for _, st := range applicationStatuses {
		if normalizeLabel(string(st)) == key {
			return st, true
		}
	}
	return "", false
}

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

// statusTransitions lists the statuses reachable from each status through an
// admin status change. Disbursed is only entered by recording a disbursement.
var statusTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusDraft:       {ApplicationStatusPending},
	ApplicationStatusPending:     {ApplicationStatusUnderReview, ApplicationStatusApproved, ApplicationStatusRejected},
	ApplicationStatusUnderReview: {ApplicationStatusPending, ApplicationStatusApproved, ApplicationStatusRejected},
	ApplicationStatusApproved:    {ApplicationStatusUnderReview, ApplicationStatusRejected},
	ApplicationStatusRejected:    {ApplicationStatusUnderReview, ApplicationStatusApproved},
	ApplicationStatusDisbursed:   {},
}

func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Application struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	ApplicantID uint              `gorm:"not null;index" json:"applicant_id"`
	CycleID     *uint             `gorm:"index" json:"cycle_id,omitempty"`
	Status      ApplicationStatus `gorm:"type:varchar(20);not null;default:'Draft';index" json:"status"`

	SchoolName      string `gorm:"type:varchar(255);not null" json:"school_name"`
	SchoolAddress   string `gorm:"type:text" json:"school_address"`
	ClassLevel      string `gorm:"type:varchar(50)" json:"class_level"`
	Course          string `gorm:"type:varchar(150)" json:"course"`
	AdmissionNumber string `gorm:"type:varchar(50)" json:"admission_number"`
	Age             int    `gorm:"not null;default:0" json:"age"`
	ClassSize       *int   `json:"class_size,omitempty"`

	AmountRequested      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"amount_requested"`
	Reason               string          `gorm:"type:text" json:"reason"`
	ChurchMember         bool            `gorm:"not null;default:false" json:"church_member"`
	ReceivesOtherSupport bool            `gorm:"not null;default:false" json:"receives_other_support"`

	// storage keys, not URLs
	PassportPhotoKey        string `gorm:"type:text" json:"passport_photo_key"`
	AdmissionLetterKey      string `gorm:"type:text" json:"admission_letter_key"`
	ResultSlipKey           string `gorm:"type:text" json:"result_slip_key"`
	RecommendationLetterKey string `gorm:"type:text" json:"recommendation_letter_key"`
	FeesInvoiceKey          string `gorm:"type:text" json:"fees_invoice_key"`

	ApprovedAmount   decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"approved_amount"`
	VoucherCode      *string             `gorm:"type:varchar(40);uniqueIndex" json:"voucher_code,omitempty"`
	PaymentReference *string             `gorm:"type:varchar(100)" json:"payment_reference,omitempty"`
	DisbursedAt      *time.Time          `json:"disbursed_at,omitempty"`

	CommitteeScore *float64 `json:"committee_score,omitempty"`
	ReviewCount    int      `gorm:"not null;default:0" json:"review_count"`

	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	StatusChangedAt *time.Time `json:"status_changed_at,omitempty"`
	StatusChangedBy *uint      `json:"status_changed_by,omitempty"`

	Applicant   *Applicant        `gorm:"foreignKey:ApplicantID" json:"applicant,omitempty"`
	Cycle       *ScholarshipCycle `gorm:"foreignKey:CycleID" json:"cycle,omitempty"`
	Assessments []Assessment      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignKey:ApplicationID" json:"assessments,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
