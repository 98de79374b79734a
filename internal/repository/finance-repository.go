package repository

import (
	"context"
	"time"

	"github.com/SundayYogurt/bursary_service/internal/domain"
	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(ctx context.Context, txn *domain.Transaction) error
	List(ctx context.Context, filter dto.TransactionFilter) ([]domain.Transaction, int64, error)
	All(ctx context.Context) ([]domain.Transaction, error)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *transactionRepository) List(ctx context.Context, filter dto.TransactionFilter) ([]domain.Transaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Transaction{})
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Order("occurred_at DESC").Order("id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	var out []domain.Transaction
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *transactionRepository) All(ctx context.Context) ([]domain.Transaction, error) {
	var out []domain.Transaction
	if err := r.db.WithContext(ctx).Order("occurred_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type DonationRepository interface {
	Create(ctx context.Context, d *domain.Donation) error
	Save(ctx context.Context, d *domain.Donation) error
	FindByReference(ctx context.Context, reference string) (*domain.Donation, error)
	List(ctx context.Context, status domain.DonationStatus) ([]domain.Donation, error)
	ClaimVerified(ctx context.Context, id uint, amount decimal.Decimal, verifiedAt time.Time) (bool, error)
	LinkTransaction(ctx context.Context, id, transactionID uint) error
}

type donationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepository{db: db}
}

func (r *donationRepository) Create(ctx context.Context, d *domain.Donation) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *donationRepository) Save(ctx context.Context, d *domain.Donation) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *donationRepository) FindByReference(ctx context.Context, reference string) (*domain.Donation, error) {
	var d domain.Donation
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// ClaimVerified flips a donation to Verified unless it already is. It reports
// false when another caller got there first.
func (r *donationRepository) ClaimVerified(ctx context.Context, id uint, amount decimal.Decimal, verifiedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Donation{}).
		Where("id = ? AND status <> ?", id, domain.DonationVerified).
		Updates(map[string]any{
			"status":      domain.DonationVerified,
			"amount":      amount,
			"verified_at": verifiedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *donationRepository) LinkTransaction(ctx context.Context, id, transactionID uint) error {
	return r.db.WithContext(ctx).Model(&domain.Donation{}).Where("id = ?", id).
		Update("transaction_id", transactionID).Error
}

func (r *donationRepository) List(ctx context.Context, status domain.DonationStatus) ([]domain.Donation, error) {
	q := r.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []domain.Donation
	if err := q.Order("created_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type BudgetRepository interface {
	Create(ctx context.Context, b *domain.Budget) error
	FindByID(ctx context.Context, id uint) (*domain.Budget, error)
	List(ctx context.Context) ([]domain.Budget, error)
	AddExpense(ctx context.Context, e *domain.BudgetExpense) error
}

type budgetRepository struct {
	db *gorm.DB
}

func NewBudgetRepository(db *gorm.DB) BudgetRepository {
	return &budgetRepository{db: db}
}

func (r *budgetRepository) Create(ctx context.Context, b *domain.Budget) error {
	return r.db.WithContext(ctx).Omit("Expenses").Create(b).Error
}

func (r *budgetRepository) FindByID(ctx context.Context, id uint) (*domain.Budget, error) {
	var b domain.Budget
	if err := r.db.WithContext(ctx).Preload("Expenses").First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *budgetRepository) List(ctx context.Context) ([]domain.Budget, error) {
	var out []domain.Budget
	if err := r.db.WithContext(ctx).Preload("Expenses").Order("created_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *budgetRepository) AddExpense(ctx context.Context, e *domain.BudgetExpense) error {
	return r.db.WithContext(ctx).Create(e).Error
}
