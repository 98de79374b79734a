package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/SundayYogurt/bursary_service/internal/domain"
	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/SundayYogurt/bursary_service/internal/helper/utils"
	"github.com/SundayYogurt/bursary_service/internal/interfaces"
	"github.com/SundayYogurt/bursary_service/internal/repository"
	log "github.com/sirupsen/logrus"
)

type FinanceService interface {
	// Ledger
	ListTransactions(ctx context.Context, filter dto.TransactionFilter) ([]domain.Transaction, int64, error)
	RecordTransaction(ctx context.Context, actor *domain.User, input dto.RecordTransactionRequest) (*domain.Transaction, error)
	Summary(ctx context.Context) (*dto.FinanceSummary, error)

	// Budgets
	CreateBudget(ctx context.Context, input dto.CreateBudgetRequest) (*dto.BudgetResponse, error)
	ListBudgets(ctx context.Context) ([]dto.BudgetResponse, error)
	AddBudgetExpense(ctx context.Context, actor *domain.User, budgetID uint, input dto.BudgetExpenseRequest) (*dto.BudgetResponse, error)

	// Donations
	CreateDonation(ctx context.Context, input dto.DonationRequest) (*domain.Donation, error)
	VerifyDonation(ctx context.Context, reference string) (*domain.Donation, error)
	ListDonations(ctx context.Context, status string) ([]domain.Donation, error)
}

type financeService struct {
	repos    *repository.Repositories
	verifier interfaces.PaymentVerifier
	notifier interfaces.Notifier
	now      func() time.Time
}

func NewFinanceService(repos *repository.Repositories, verifier interfaces.PaymentVerifier, notifier interfaces.Notifier) FinanceService {
	return &financeService{repos: repos, verifier: verifier, notifier: notifier, now: time.Now}
}

func (s *financeService) ListTransactions(ctx context.Context, filter dto.TransactionFilter) ([]domain.Transaction, int64, error) {
	if filter.Type != "" {
		t, err := parseTransactionType(filter.Type)
		if err != nil {
			return nil, 0, err
		}
		filter.Type = string(t)
	}
	return s.repos.Transactions.List(ctx, filter)
}

func parseTransactionType(s string) (domain.TransactionType, error) {
	for _, t := range []domain.TransactionType{domain.TransactionIncome, domain.TransactionExpense} {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t, nil
		}
	}
	return "", validationError("type must be Income or Expense")
}

func (s *financeService) RecordTransaction(ctx context.Context, actor *domain.User, input dto.RecordTransactionRequest) (*domain.Transaction, error) {
	t, err := parseTransactionType(input.Type)
	if err != nil {
		return nil, err
	}
	if !input.Amount.IsPositive() {
		return nil, validationError("amount must be greater than zero")
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, validationError("category is required")
	}
	occurredAt := s.now().UTC()
	if input.OccurredAt != nil && !input.OccurredAt.IsZero() {
		occurredAt = input.OccurredAt.Time
	}

	txn := &domain.Transaction{
		Type:        t,
		Category:    category,
		Amount:      input.Amount,
		Reference:   strings.TrimSpace(input.Reference),
		Description: strings.TrimSpace(input.Description),
		RecordedBy:  &actor.ID,
		OccurredAt:  occurredAt,
	}
	if err := s.repos.Transactions.Create(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *financeService) Summary(ctx context.Context) (*dto.FinanceSummary, error) {
	txns, err := s.repos.Transactions.All(ctx)
	if err != nil {
		return nil, err
	}
	donations, err := s.repos.Donations.List(ctx, "")
	if err != nil {
		return nil, err
	}

	income, expenses, disbursed, donated := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, t := range txns {
		switch t.Type {
		case domain.TransactionIncome:
			income = income.Add(t.Amount)
			if t.Category == domain.CategoryDonation {
				donated = donated.Add(t.Amount)
			}
		case domain.TransactionExpense:
			expenses = expenses.Add(t.Amount)
			if t.Category == domain.CategoryDisbursement {
				disbursed = disbursed.Add(t.Amount)
			}
		}
	}

	out := &dto.FinanceSummary{
		TotalIncome:    income.StringFixed(2),
		TotalExpenses:  expenses.StringFixed(2),
		Balance:        income.Sub(expenses).StringFixed(2),
		TotalDisbursed: disbursed.StringFixed(2),
		TotalDonations: donated.StringFixed(2),
	}
	for _, d := range donations {
		switch d.Status {
		case domain.DonationVerified:
			out.VerifiedDonations++
		case domain.DonationPending:
			out.PendingDonations++
		}
	}
	return out, nil
}

func budgetSpent(b *domain.Budget) decimal.Decimal {
	spent := decimal.Zero
	for _, e := range b.Expenses {
		spent = spent.Add(e.Amount)
	}
	return spent
}

func toBudgetResponse(b *domain.Budget) dto.BudgetResponse {
	spent := budgetSpent(b)
	return dto.BudgetResponse{
		ID:          b.ID,
		Name:        b.Name,
		CycleID:     b.CycleID,
		Allocated:   b.Allocated.StringFixed(2),
		Spent:       spent.StringFixed(2),
		Remaining:   b.Allocated.Sub(spent).StringFixed(2),
		Description: b.Description,
	}
}

func (s *financeService) CreateBudget(ctx context.Context, input dto.CreateBudgetRequest) (*dto.BudgetResponse, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("budget name is required")
	}
	if input.Allocated.IsNegative() {
		return nil, validationError("allocated amount must not be negative")
	}
	if input.CycleID != nil {
		if _, err := s.repos.Cycles.FindByID(ctx, *input.CycleID); err != nil {
			return nil, translate(err, "cycle")
		}
	}

	b := &domain.Budget{
		Name:        name,
		CycleID:     input.CycleID,
		Allocated:   input.Allocated,
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.repos.Budgets.Create(ctx, b); err != nil {
		return nil, err
	}
	resp := toBudgetResponse(b)
	return &resp, nil
}

func (s *financeService) ListBudgets(ctx context.Context) ([]dto.BudgetResponse, error) {
	budgets, err := s.repos.Budgets.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BudgetResponse, 0, len(budgets))
	for i := range budgets {
		out = append(out, toBudgetResponse(&budgets[i]))
	}
	return out, nil
}

// AddBudgetExpense books an Expense transaction against a budget. An expense
// larger than the remaining allocation is rejected.
func (s *financeService) AddBudgetExpense(ctx context.Context, actor *domain.User, budgetID uint, input dto.BudgetExpenseRequest) (*dto.BudgetResponse, error) {
	if !input.Amount.IsPositive() {
		return nil, validationError("amount must be greater than zero")
	}

	var resp dto.BudgetResponse
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		b, err := tx.Budgets.FindByID(ctx, budgetID)
		if err != nil {
			return translate(err, "budget")
		}
		remaining := b.Allocated.Sub(budgetSpent(b))
		if input.Amount.GreaterThan(remaining) {
			return conflict("expense of %s exceeds remaining budget %s", input.Amount.StringFixed(2), remaining.StringFixed(2))
		}

		description := strings.TrimSpace(input.Description)
		txn := &domain.Transaction{
			Type:        domain.TransactionExpense,
			Category:    domain.CategoryBudget,
			Amount:      input.Amount,
			Reference:   strings.TrimSpace(input.Reference),
			Description: strings.TrimSpace(b.Name + ": " + description),
			RecordedBy:  &actor.ID,
			OccurredAt:  s.now().UTC(),
		}
		if err := tx.Transactions.Create(ctx, txn); err != nil {
			return err
		}
		if err := tx.Budgets.AddExpense(ctx, &domain.BudgetExpense{
			BudgetID:      b.ID,
			TransactionID: txn.ID,
			Amount:        input.Amount,
			Description:   description,
		}); err != nil {
			return err
		}

		updated, err := tx.Budgets.FindByID(ctx, b.ID)
		if err != nil {
			return err
		}
		resp = toBudgetResponse(updated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func newDonationReference() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "DON-" + strings.ToUpper(hex[:12])
}

func (s *financeService) CreateDonation(ctx context.Context, input dto.DonationRequest) (*domain.Donation, error) {
	name := strings.TrimSpace(input.DonorName)
	if name == "" {
		name = "Anonymous"
	}
	if !input.Amount.IsPositive() {
		return nil, validationError("amount must be greater than zero")
	}
	email := strings.TrimSpace(input.DonorEmail)
	if email != "" {
		normalized, err := utils.NormalizeEmail(email)
		if err != nil {
			return nil, validationError("%s", err.Error())
		}
		email = normalized
	}

	d := &domain.Donation{
		DonorName:  name,
		DonorEmail: email,
		Amount:     input.Amount,
		Reference:  newDonationReference(),
		Status:     domain.DonationPending,
		Message:    strings.TrimSpace(input.Message),
	}
	if err := s.repos.Donations.Create(ctx, d); err != nil {
		return nil, translate(err, "donation")
	}
	return d, nil
}

// VerifyDonation asks the payment gateway about a donation reference. A
// verified donation is posted to the ledger once; repeated calls return it
// unchanged.
func (s *financeService) VerifyDonation(ctx context.Context, reference string) (*domain.Donation, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, validationError("reference is required")
	}
	d, err := s.repos.Donations.FindByReference(ctx, reference)
	if err != nil {
		return nil, translate(err, "donation")
	}
	if d.Status == domain.DonationVerified {
		return d, nil
	}
	if s.verifier == nil {
		return nil, newError(ErrUpstream, "payment verification is not configured")
	}

	res, err := s.verifier.Verify(ctx, reference)
	if err != nil {
		log.WithField("reference", reference).Warnf("payment verification failed: %v", err)
		return nil, newError(ErrUpstream, "payment could not be verified")
	}

	switch {
	case res.Paid:
	case res.Failed:
		d.Status = domain.DonationFailed
		if err := s.repos.Donations.Save(ctx, d); err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, conflict("payment has not completed")
	}

	posted := false
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		current, err := tx.Donations.FindByReference(ctx, reference)
		if err != nil {
			return err
		}
		d = current
		if d.Status == domain.DonationVerified {
			return nil
		}
		if res.Amount.IsPositive() && !res.Amount.Equal(d.Amount) {
			log.WithFields(log.Fields{"reference": reference, "pledged": d.Amount.String(), "paid": res.Amount.String()}).
				Warn("donation paid amount differs from pledge")
			d.Amount = res.Amount
		}

		verifiedAt := s.now().UTC()
		if res.PaidAt != nil {
			verifiedAt = res.PaidAt.UTC()
		}
		claimed, err := tx.Donations.ClaimVerified(ctx, d.ID, d.Amount, verifiedAt)
		if err != nil {
			return err
		}
		if !claimed {
			d, err = tx.Donations.FindByReference(ctx, reference)
			return err
		}
		txn := &domain.Transaction{
			Type:        domain.TransactionIncome,
			Category:    domain.CategoryDonation,
			Amount:      d.Amount,
			Reference:   d.Reference,
			Description: "Donation from " + d.DonorName,
			OccurredAt:  verifiedAt,
		}
		if err := tx.Transactions.Create(ctx, txn); err != nil {
			return err
		}
		if err := tx.Donations.LinkTransaction(ctx, d.ID, txn.ID); err != nil {
			return err
		}
		d.Status = domain.DonationVerified
		d.VerifiedAt = &verifiedAt
		d.TransactionID = &txn.ID
		posted = true
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("donation")
	}
	if err != nil {
		return nil, err
	}

	if posted {
		log.WithFields(log.Fields{"reference": reference, "amount": d.Amount.String()}).Info("donation verified")
		if d.DonorEmail != "" {
			s.notifier.Notify(ctx, dto.NotificationEvent{
				Type: dto.EventDonationVerified,
				To:   d.DonorEmail,
				Data: map[string]string{"name": d.DonorName, "amount": d.Amount.StringFixed(2), "reference": d.Reference},
			})
		}
	}
	return d, nil
}

func (s *financeService) ListDonations(ctx context.Context, status string) ([]domain.Donation, error) {
	var filter domain.DonationStatus
	if status = strings.TrimSpace(status); status != "" {
		for _, st := range []domain.DonationStatus{domain.DonationPending, domain.DonationVerified, domain.DonationFailed} {
			if strings.EqualFold(status, string(st)) {
				filter = st
			}
		}
		if filter == "" {
			return nil, validationError("status must be Pending, Verified or Failed")
		}
	}
	return s.repos.Donations.List(ctx, filter)
}
