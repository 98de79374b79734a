package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SundayYogurt/bursary_service/internal/domain"
	"github.com/SundayYogurt/bursary_service/internal/dto"
)

type fakeVerifier struct {
	result   *dto.PaymentVerification
	err      error
	calls    int
	onVerify func()
}

func (f *fakeVerifier) Verify(_ context.Context, reference string) (*dto.PaymentVerification, error) {
	f.calls++
	if f.onVerify != nil {
		f.onVerify()
	}
	if f.err != nil {
		return nil, f.err
	}
	res := *f.result
	res.Reference = reference
	return &res, nil
}

func newFinance(h *harness, v *fakeVerifier) *financeService {
	var svc *financeService
	if v == nil {
		svc = NewFinanceService(h.repos, nil, h.notifier).(*financeService)
	} else {
		svc = NewFinanceService(h.repos, v, h.notifier).(*financeService)
	}
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestCreateDonationDefaults(t *testing.T) {
	h := newHarness(t)
	svc := newFinance(h, nil)

	d, err := svc.CreateDonation(h.ctx, dto.DonationRequest{Amount: decimal.NewFromInt(5000)})
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", d.DonorName)
	assert.Equal(t, domain.DonationPending, d.Status)
	assert.Regexp(t, `^DON-[0-9A-F]{12}$`, d.Reference)

	_, err = svc.CreateDonation(h.ctx, dto.DonationRequest{Amount: decimal.Zero})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateDonation(h.ctx, dto.DonationRequest{Amount: decimal.NewFromInt(1), DonorEmail: "nope"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestVerifyDonationLosesClaimToConcurrentCall(t *testing.T) {
	h := newHarness(t)
	v := &fakeVerifier{result: &dto.PaymentVerification{Paid: true, Amount: decimal.NewFromInt(5000)}}
	svc := newFinance(h, v)

	d, err := svc.CreateDonation(h.ctx, dto.DonationRequest{DonorName: "Grace", DonorEmail: "grace@example.com", Amount: decimal.NewFromInt(5000)})
	require.NoError(t, err)
	v.onVerify = func() {
		claimed, err := h.repos.Donations.ClaimVerified(h.ctx, d.ID, d.Amount, fixedNow)
		require.NoError(t, err)
		require.True(t, claimed)
	}

	got, err := svc.VerifyDonation(h.ctx, d.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.DonationVerified, got.Status)
	assert.Nil(t, got.TransactionID)
	assert.EqualValues(t, 0, h.count(t, &domain.Transaction{}))
	assert.Empty(t, h.notifier.types())
}

func TestVerifyDonationPostsIncomeOnce(t *testing.T) {
	h := newHarness(t)
	paidAt := fixedNow.Add(-time.Hour)
	v := &fakeVerifier{result: &dto.PaymentVerification{Paid: true, Amount: decimal.NewFromInt(7500), PaidAt: &paidAt}}
	svc := newFinance(h, v)

	d, err := svc.CreateDonation(h.ctx, dto.DonationRequest{DonorName: "Grace", DonorEmail: "grace@example.com", Amount: decimal.NewFromInt(5000)})
	require.NoError(t, err)

	verified, err := svc.VerifyDonation(h.ctx, d.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.DonationVerified, verified.Status)
	assert.Equal(t, "7500.00", verified.Amount.StringFixed(2))
	require.NotNil(t, verified.TransactionID)
	assert.Equal(t, []string{dto.EventDonationVerified}, h.notifier.types())

	again, err := svc.VerifyDonation(h.ctx, d.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.DonationVerified, again.Status)
	assert.Equal(t, 1, v.calls)
	assert.EqualValues(t, 1, h.count(t, &domain.Transaction{}))

	summary, err := svc.Summary(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, "7500.00", summary.TotalDonations)
	assert.Equal(t, "7500.00", summary.Balance)
	assert.Equal(t, 1, summary.VerifiedDonations)
}

func TestVerifyDonationOutcomes(t *testing.T) {
	h := newHarness(t)
	v := &fakeVerifier{result: &dto.PaymentVerification{}}
	svc := newFinance(h, v)
	d, err := svc.CreateDonation(h.ctx, dto.DonationRequest{Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)

	_, err = svc.VerifyDonation(h.ctx, d.Reference)
	assert.ErrorIs(t, err, ErrConflict)

	v.err = errors.New("gateway down")
	_, err = svc.VerifyDonation(h.ctx, d.Reference)
	assert.ErrorIs(t, err, ErrUpstream)

	v.err = nil
	v.result = &dto.PaymentVerification{Failed: true}
	failed, err := svc.VerifyDonation(h.ctx, d.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.DonationFailed, failed.Status)
	assert.EqualValues(t, 0, h.count(t, &domain.Transaction{}))

	_, err = svc.VerifyDonation(h.ctx, "DON-UNKNOWN")
	assert.ErrorIs(t, err, ErrNotFound)

	unconfigured := newFinance(h, nil)
	_, err = unconfigured.VerifyDonation(h.ctx, d.Reference)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestBudgetExpenses(t *testing.T) {
	h := newHarness(t)
	svc := newFinance(h, nil)
	treasurer := h.admin(t, "treasurer@example.com")

	budget, err := svc.CreateBudget(h.ctx, dto.CreateBudgetRequest{Name: "Books", CycleID: &h.cycle.ID, Allocated: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	assert.Equal(t, "1000.00", budget.Remaining)

	updated, err := svc.AddBudgetExpense(h.ctx, treasurer, budget.ID, dto.BudgetExpenseRequest{Amount: decimal.NewFromInt(600), Description: "textbooks"})
	require.NoError(t, err)
	assert.Equal(t, "600.00", updated.Spent)
	assert.Equal(t, "400.00", updated.Remaining)

	_, err = svc.AddBudgetExpense(h.ctx, treasurer, budget.ID, dto.BudgetExpenseRequest{Amount: decimal.NewFromInt(401)})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.AddBudgetExpense(h.ctx, treasurer, 999, dto.BudgetExpenseRequest{Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualValues(t, 1, h.count(t, &domain.Transaction{}))

	missingCycle := uint(999)
	_, err = svc.CreateBudget(h.ctx, dto.CreateBudgetRequest{Name: "Ghost", CycleID: &missingCycle})
	assert.ErrorIs(t, err, ErrNotFound)

	budgets, err := svc.ListBudgets(h.ctx)
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, "400.00", budgets[0].Remaining)
}

func TestRecordTransactionAndSummary(t *testing.T) {
	h := newHarness(t)
	svc := newFinance(h, nil)
	treasurer := h.admin(t, "treasurer@example.com")

	_, err := svc.RecordTransaction(h.ctx, treasurer, dto.RecordTransactionRequest{Type: "income", Category: "Offering", Amount: decimal.NewFromInt(2000)})
	require.NoError(t, err)
	_, err = svc.RecordTransaction(h.ctx, treasurer, dto.RecordTransactionRequest{Type: "Expense", Category: "Stationery", Amount: decimal.NewFromInt(500)})
	require.NoError(t, err)

	_, err = svc.RecordTransaction(h.ctx, treasurer, dto.RecordTransactionRequest{Type: "Refund", Category: "x", Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.RecordTransaction(h.ctx, treasurer, dto.RecordTransactionRequest{Type: "Income", Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrValidation)

	incomes, total, err := svc.ListTransactions(h.ctx, dto.TransactionFilter{Type: "INCOME"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, incomes, 1)
	assert.Equal(t, "Offering", incomes[0].Category)

	summary, err := svc.Summary(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, "2000.00", summary.TotalIncome)
	assert.Equal(t, "500.00", summary.TotalExpenses)
	assert.Equal(t, "1500.00", summary.Balance)
	assert.Equal(t, "0.00", summary.TotalDisbursed)
}

func TestDisbursementReachesLedger(t *testing.T) {
	h := newHarness(t)
	svc := newFinance(h, nil)
	admin := h.admin(t, "admin@example.com")
	app := h.submitted(t, "jane@example.com")

	amount := decimal.NewFromInt(40000)
	_, err := h.apps.SetStatus(h.ctx, admin, app.ID, dto.SetApplicationStatusRequest{Status: "Approved", ApprovedAmount: &amount})
	require.NoError(t, err)
	_, err = h.apps.Disburse(h.ctx, admin, app.ID, dto.DisburseRequest{PaymentReference: "TRF-1"})
	require.NoError(t, err)

	summary, err := svc.Summary(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, "40000.00", summary.TotalDisbursed)
	assert.Equal(t, "-40000.00", summary.Balance)
}
