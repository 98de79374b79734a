package repository

import (
	"context"

	"github.com/SundayYogurt/bursary_service/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssessmentRepository interface {
	Upsert(ctx context.Context, a *domain.Assessment) (*domain.Assessment, error)
	List(ctx context.Context, applicationID, reviewerID uint) ([]domain.Assessment, error)
	Totals(ctx context.Context, applicationID uint) ([]int, error)
}

type assessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

// Upsert writes one row per (application, reviewer) and returns the stored row.
func (r *assessmentRepository) Upsert(ctx context.Context, a *domain.Assessment) (*domain.Assessment, error) {
	a.ComputeTotal()
	err := r.db.WithContext(ctx).Omit("Reviewer").Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "application_id"}, {Name: "reviewer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"financial_score", "academic_score", "church_score", "total", "notes", "updated_at",
		}),
	}).Create(a).Error
	if err != nil {
		return nil, err
	}

	var stored domain.Assessment
	err = r.db.WithContext(ctx).
		Where("application_id = ? AND reviewer_id = ?", a.ApplicationID, a.ReviewerID).
		First(&stored).Error
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// List filters by application and reviewer when they are non-zero.
func (r *assessmentRepository) List(ctx context.Context, applicationID, reviewerID uint) ([]domain.Assessment, error) {
	q := r.db.WithContext(ctx).Preload("Reviewer")
	if applicationID != 0 {
		q = q.Where("application_id = ?", applicationID)
	}
	if reviewerID != 0 {
		q = q.Where("reviewer_id = ?", reviewerID)
	}

	var out []domain.Assessment
	if err := q.Order("updated_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assessmentRepository) Totals(ctx context.Context, applicationID uint) ([]int, error) {
	var totals []int
	err := r.db.WithContext(ctx).Model(&domain.Assessment{}).
		Where("application_id = ?", applicationID).
		Pluck("total", &totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}
