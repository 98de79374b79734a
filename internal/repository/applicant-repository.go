package repository

import (
	"context"

	"github.com/SundayYogurt/bursary_service/internal/domain"
	"gorm.io/gorm"
)

type ApplicantRepository interface {
	Create(ctx context.Context, applicant *domain.Applicant) error
	Save(ctx context.Context, applicant *domain.Applicant) error
	FindByUserID(ctx context.Context, userID uint) (*domain.Applicant, error)
}

type applicantRepository struct {
	db *gorm.DB
}

func NewApplicantRepository(db *gorm.DB) ApplicantRepository {
	return &applicantRepository{db: db}
}

func (r *applicantRepository) Create(ctx context.Context, applicant *domain.Applicant) error {
	return r.db.WithContext(ctx).Omit("FamilyInfo", "Applications").Create(applicant).Error
}

func (r *applicantRepository) Save(ctx context.Context, applicant *domain.Applicant) error {
	return r.db.WithContext(ctx).Omit("FamilyInfo", "Applications").Save(applicant).Error
}

func (r *applicantRepository) FindByUserID(ctx context.Context, userID uint) (*domain.Applicant, error) {
	var applicant domain.Applicant
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&applicant).Error; err != nil {
		return nil, err
	}
	return &applicant, nil
}

type FamilyRepository interface {
	Save(ctx context.Context, family *domain.FamilyInfo) error
	FindByApplicantID(ctx context.Context, applicantID uint) (*domain.FamilyInfo, error)
}

type familyRepository struct {
	db *gorm.DB
}

func NewFamilyRepository(db *gorm.DB) FamilyRepository {
	return &familyRepository{db: db}
}

// Save inserts when family.ID is zero, otherwise updates every column.
func (r *familyRepository) Save(ctx context.Context, family *domain.FamilyInfo) error {
	return r.db.WithContext(ctx).Save(family).Error
}

func (r *familyRepository) FindByApplicantID(ctx context.Context, applicantID uint) (*domain.FamilyInfo, error) {
	var family domain.FamilyInfo
	if err := r.db.WithContext(ctx).Where("applicant_id = ?", applicantID).First(&family).Error; err != nil {
		return nil, err
	}
	return &family, nil
}
