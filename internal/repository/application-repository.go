package repository

import (
	"context"
	"strings"

	"github.com/SundayYogurt/bursary_service/internal/domain"
	"github.com/SundayYogurt/bursary_service/internal/dto"
	"gorm.io/gorm"
)

type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	Save(ctx context.Context, app *domain.Application) error
	FindByID(ctx context.Context, id uint) (*domain.Application, error)
	FindDetailed(ctx context.Context, id uint) (*domain.Application, error)
	FindLatestDraft(ctx context.Context, applicantID uint) (*domain.Application, error)
	ListByApplicant(ctx context.Context, applicantID uint) ([]domain.Application, error)
	List(ctx context.Context, filter dto.ApplicationFilter) ([]domain.Application, int64, error)
	UpdateScore(ctx context.Context, id uint, score *float64, reviewCount int) error
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *domain.Application) error {
	return r.db.WithContext(ctx).Omit("Applicant", "Cycle", "Assessments").Create(app).Error
}

func (r *applicationRepository) Save(ctx context.Context, app *domain.Application) error {
	return r.db.WithContext(ctx).Omit("Applicant", "Cycle", "Assessments").Save(app).Error
}

func (r *applicationRepository) FindByID(ctx context.Context, id uint) (*domain.Application, error) {
	var app domain.Application
	if err := r.db.WithContext(ctx).First(&app, id).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// FindDetailed loads the applicant with family info, the cycle and every assessment.
func (r *applicationRepository) FindDetailed(ctx context.Context, id uint) (*domain.Application, error) {
	var app domain.Application
	err := r.db.WithContext(ctx).
		Preload("Applicant.FamilyInfo").
		Preload("Cycle").
		Preload("Assessments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Assessments.Reviewer").
		First(&app, id).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) FindLatestDraft(ctx context.Context, applicantID uint) (*domain.Application, error) {
	var app domain.Application
	err := r.db.WithContext(ctx).
		Where("applicant_id = ? AND status = ?", applicantID, domain.ApplicationStatusDraft).
		Order("updated_at DESC").Order("id DESC").
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) ListByApplicant(ctx context.Context, applicantID uint) ([]domain.Application, error) {
	var apps []domain.Application
	err := r.db.WithContext(ctx).
		Preload("Cycle").
		Where("applicant_id = ?", applicantID).
		Order("created_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

// List applies filter; a non-positive Limit returns every match.
func (r *applicationRepository) List(ctx context.Context, filter dto.ApplicationFilter) ([]domain.Application, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Application{})
	if filter.Status != "" {
		q = q.Where("applications.status = ?", filter.Status)
	} else {
		q = q.Where("applications.status <> ?", domain.ApplicationStatusDraft)
	}
	if filter.CycleID != 0 {
		q = q.Where("applications.cycle_id = ?", filter.CycleID)
	}
	if s := strings.ToLower(strings.TrimSpace(filter.Search)); s != "" {
		like := "%" + s + "%"
		q = q.Joins("JOIN applicants ON applicants.id = applications.applicant_id").
			Where("LOWER(applicants.surname) LIKE ? OR LOWER(applicants.first_name) LIKE ? OR LOWER(applications.school_name) LIKE ?",
				like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Preload("Applicant").Preload("Cycle").Order("applications.created_at DESC").Order("applications.id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	var apps []domain.Application
	if err := q.Find(&apps).Error; err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (r *applicationRepository) UpdateScore(ctx context.Context, id uint, score *float64, reviewCount int) error {
	return r.db.WithContext(ctx).Model(&domain.Application{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"committee_score": score,
			"review_count":    reviewCount,
		}).Error
}
