package dto

import "strconv"

type Analytics struct {
	TotalApplications int64            `json:"total_applications"`
	ByStatus          map[string]int64 `json:"by_status"`
	ByCycle           map[string]int64 `json:"by_cycle"`
	BySex             map[string]int64 `json:"by_sex"`
	ByStateOfOrigin   map[string]int64 `json:"by_state_of_origin"`
	AverageScore      *float64         `json:"average_score,omitempty"`
	TotalRequested    string           `json:"total_requested"`
	TotalApproved     string           `json:"total_approved"`
	TotalDisbursed    string           `json:"total_disbursed"`
}

type ReportRow struct {
	ApplicationID    uint   `json:"application_id"`
	Surname          string `json:"surname"`
	FirstName        string `json:"first_name"`
	Sex              string `json:"sex"`
	StateOfOrigin    string `json:"state_of_origin"`
	Parish           string `json:"parish"`
	SchoolName       string `json:"school_name"`
	ClassLevel       string `json:"class_level"`
	Status           string `json:"status"`
	Cycle            string `json:"cycle"`
	AmountRequested  string `json:"amount_requested"`
	ApprovedAmount   string `json:"approved_amount"`
	CommitteeScore   string `json:"committee_score"`
	VoucherCode      string `json:"voucher_code"`
	PaymentReference string `json:"payment_reference"`
	DisbursedAt      string `json:"disbursed_at"`
}

// ReportHeader is the CSV header matching ReportRow.Values.
var ReportHeader = []string{
	"application_id", "surname", "first_name", "sex", "state_of_origin", "parish",
	"school_name", "class_level", "status", "cycle", "amount_requested", "approved_amount",
	"committee_score", "voucher_code", "payment_reference", "disbursed_at",
}

func (r ReportRow) Values() []string {
	return []string{
		strconv.FormatUint(uint64(r.ApplicationID), 10), r.Surname, r.FirstName, r.Sex, r.StateOfOrigin, r.Parish,
		r.SchoolName, r.ClassLevel, r.Status, r.Cycle, r.AmountRequested, r.ApprovedAmount,
		r.CommitteeScore, r.VoucherCode, r.PaymentReference, r.DisbursedAt,
	}
}
