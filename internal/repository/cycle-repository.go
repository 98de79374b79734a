package repository

import (
	"context"

	"github.com/SundayYogurt/bursary_service/internal/domain"
	"gorm.io/gorm"
)

type CycleRepository interface {
	Create(ctx context.Context, cycle *domain.ScholarshipCycle) error
	Save(ctx context.Context, cycle *domain.ScholarshipCycle) error
	FindByID(ctx context.Context, id uint) (*domain.ScholarshipCycle, error)
	List(ctx context.Context) ([]domain.ScholarshipCycle, error)
	ListOpen(ctx context.Context) ([]domain.ScholarshipCycle, error)
}

type cycleRepository struct {
	db *gorm.DB
}

func NewCycleRepository(db *gorm.DB) CycleRepository {
	return &cycleRepository{db: db}
}

func (r *cycleRepository) Create(ctx context.Context, cycle *domain.ScholarshipCycle) error {
	return r.db.WithContext(ctx).Create(cycle).Error
}

func (r *cycleRepository) Save(ctx context.Context, cycle *domain.ScholarshipCycle) error {
	return r.db.WithContext(ctx).Save(cycle).Error
}

func (r *cycleRepository) FindByID(ctx context.Context, id uint) (*domain.ScholarshipCycle, error) {
	var cycle domain.ScholarshipCycle
	if err := r.db.WithContext(ctx).First(&cycle, id).Error; err != nil {
		return nil, err
	}
	return &cycle, nil
}

func (r *cycleRepository) List(ctx context.Context) ([]domain.ScholarshipCycle, error) {
	var cycles []domain.ScholarshipCycle
	if err := r.db.WithContext(ctx).Order("start_date DESC").Find(&cycles).Error; err != nil {
		return nil, err
	}
	return cycles, nil
}

// ListOpen returns cycles with status Open, latest start first. Date bounds
// are checked by the caller.
func (r *cycleRepository) ListOpen(ctx context.Context) ([]domain.ScholarshipCycle, error) {
	var cycles []domain.ScholarshipCycle
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.CycleStatusOpen).
		Order("start_date DESC").
		Find(&cycles).Error
	if err != nil {
		return nil, err
	}
	return cycles, nil
}
