package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionIncome  TransactionType = "Income"
	TransactionExpense TransactionType = "Expense"
)

func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

const (
	CategoryDisbursement = "Disbursement"
	CategoryDonation     = "Donation"
	CategoryBudget       = "Budget"
)

// Transaction is an append-only ledger row.
type Transaction struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Type          TransactionType `gorm:"type:varchar(10);not null;index" json:"type"`
	Category      string          `gorm:"type:varchar(50);not null;index" json:"category"`
	Amount        decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Reference     string          `gorm:"type:varchar(100);index" json:"reference"`
	Description   string          `gorm:"type:text" json:"description"`
	ApplicationID *uint           `gorm:"index" json:"application_id,omitempty"`
	RecordedBy    *uint           `json:"recorded_by,omitempty"`
	OccurredAt    time.Time       `gorm:"not null;index" json:"occurred_at"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type DonationStatus string

const (
	DonationPending  DonationStatus = "Pending"
	DonationVerified DonationStatus = "Verified"
	DonationFailed   DonationStatus = "Failed"
)

type Donation struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	DonorName     string          `gorm:"type:varchar(150);not null" json:"donor_name"`
	DonorEmail    string          `gorm:"type:varchar(255)" json:"donor_email"`
	Amount        decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Reference     string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"reference"`
	Status        DonationStatus  `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	Message       string          `gorm:"type:text" json:"message"`
	VerifiedAt    *time.Time      `json:"verified_at,omitempty"`
	TransactionID *uint           `json:"transaction_id,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type Budget struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(150);not null" json:"name"`
	CycleID     *uint           `gorm:"index" json:"cycle_id,omitempty"`
	Allocated   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"allocated"`
	Description string          `gorm:"type:text" json:"description"`

	Expenses []BudgetExpense `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignKey:BudgetID" json:"expenses,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type BudgetExpense struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	BudgetID      uint            `gorm:"not null;index" json:"budget_id"`
	TransactionID uint            `gorm:"not null;uniqueIndex" json:"transaction_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Description   string          `gorm:"type:text" json:"description"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}
