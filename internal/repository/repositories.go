package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles every repository over one *gorm.DB so a service can
// run several writes in a single transaction.
type Repositories struct {
	db *gorm.DB

	Users        UserRepository
	Applicants   ApplicantRepository
	Families     FamilyRepository
	Applications ApplicationRepository
	Assessments  AssessmentRepository
	Cycles       CycleRepository
	Transactions TransactionRepository
	Donations    DonationRepository
	Budgets      BudgetRepository
	Audit        AuditRepository
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		db:           db,
		Users:        NewUserRepository(db),
		Applicants:   NewApplicantRepository(db),
		Families:     NewFamilyRepository(db),
		Applications: NewApplicationRepository(db),
		Assessments:  NewAssessmentRepository(db),
		Cycles:       NewCycleRepository(db),
		Transactions: NewTransactionRepository(db),
		Donations:    NewDonationRepository(db),
		Budgets:      NewBudgetRepository(db),
		Audit:        NewAuditRepository(db),
	}
}

// DB exposes the underlying handle for health checks and tests.
func (r *Repositories) DB() *gorm.DB {
	return r.db
}

// Transaction runs fn with repositories bound to one database transaction.
// Inside fn only tx may be used.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}
