package dto

import "github.com/shopspring/decimal"

type RecordTransactionRequest struct {
	Type        string          `json:"type" example:"Income"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Reference   string          `json:"reference"`
	Description string          `json:"description"`
	OccurredAt  *Date           `json:"occurred_at,omitempty"`
}

type TransactionFilter struct {
	Type   string
	Limit  int
	Offset int
}

type CreateBudgetRequest struct {
	Name        string          `json:"name"`
	CycleID     *uint           `json:"cycle_id,omitempty"`
	Allocated   decimal.Decimal `json:"allocated"`
	Description string          `json:"description"`
}

type BudgetExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
}

type BudgetResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	CycleID     *uint  `json:"cycle_id,omitempty"`
	Allocated   string `json:"allocated"`
	Spent       string `json:"spent"`
	Remaining   string `json:"remaining"`
	Description string `json:"description"`
}

type DonationRequest struct {
	DonorName  string          `json:"donor_name"`
	DonorEmail string          `json:"donor_email"`
	Amount     decimal.Decimal `json:"amount"`
	Message    string          `json:"message"`
}

type VerifyDonationRequest struct {
	Reference string `json:"reference"`
}

type FinanceSummary struct {
	TotalIncome       string `json:"total_income"`
	TotalExpenses     string `json:"total_expenses"`
	Balance           string `json:"balance"`
	TotalDisbursed    string `json:"total_disbursed"`
	TotalDonations    string `json:"total_donations"`
	VerifiedDonations int    `json:"verified_donations"`
	PendingDonations  int    `json:"pending_donations"`
}
