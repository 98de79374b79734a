package services

import (
	"context"
	"strings"

	"github.com/SundayYogurt/bursary_service/internal/domain"
	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/SundayYogurt/bursary_service/internal/metrics"
	"github.com/SundayYogurt/bursary_service/internal/repository"
	log "github.com/sirupsen/logrus"
)

type AssessmentService interface {
	Upsert(ctx context.Context, reviewer *domain.User, in dto.AssessmentRequest) (*domain.Assessment, error)
	List(ctx context.Context, caller *domain.User, filter dto.AssessmentFilter) ([]domain.Assessment, error)
}

type assessmentService struct {
	repos *repository.Repositories
}

func NewAssessmentService(repos *repository.Repositories) AssessmentService {
	return &assessmentService{repos: repos}
}

func score(v *int, field string) (int, error) {
	if v == nil {
		return 0, nil
	}
	if *v < domain.MinScore || *v > domain.MaxScore {
		return 0, validationError("%s must be between %d and %d", field, domain.MinScore, domain.MaxScore)
	}
	return *v, nil
}

func (s *assessmentService) Upsert(ctx context.Context, reviewer *domain.User, in dto.AssessmentRequest) (*domain.Assessment, error) {
	if in.ApplicationID == 0 {
		return nil, validationError("applicationId is required")
	}
	financial, err := score(in.FinancialScore, "financialScore")
	if err != nil {
		return nil, err
	}
	academic, err := score(in.AcademicScore, "academicScore")
	if err != nil {
		return nil, err
	}
	church, err := score(in.ChurchScore, "churchScore")
	if err != nil {
		return nil, err
	}

	var stored *domain.Assessment
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		app, err := tx.Applications.FindByID(ctx, in.ApplicationID)
		if err != nil {
			return translate(err, "application")
		}
		if app.Status == domain.ApplicationStatusDraft {
			return conflict("draft applications cannot be assessed")
		}

		stored, err = tx.Assessments.Upsert(ctx, &domain.Assessment{
			ApplicationID:  app.ID,
			ReviewerID:     reviewer.ID,
			FinancialScore: financial,
			AcademicScore:  academic,
			ChurchScore:    church,
			Notes:          strings.TrimSpace(in.Notes),
		})
		if err != nil {
			return err
		}

		totals, err := tx.Assessments.Totals(ctx, app.ID)
		if err != nil {
			return err
		}
		return tx.Applications.UpdateScore(ctx, app.ID, meanScore(totals), len(totals))
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordAssessmentUpsert()
	log.WithFields(log.Fields{
		"application_id": in.ApplicationID,
		"reviewer_id":    reviewer.ID,
		"total":          stored.Total,
	}).Info("assessment recorded")
	return stored, nil
}

// meanScore is nil when there are no assessments.
func meanScore(totals []int) *float64 {
	if len(totals) == 0 {
		return nil
	}
	sum := 0
	for _, t := range totals {
		sum += t
	}
	mean := float64(sum) / float64(len(totals))
	return &mean
}

// List shows a SuperAdmin every assessment; other reviewers see only their own.
func (s *assessmentService) List(ctx context.Context, caller *domain.User, filter dto.AssessmentFilter) ([]domain.Assessment, error) {
	var reviewerID uint
	if !caller.IsSuperAdmin() {
		reviewerID = caller.ID
	}
	return s.repos.Assessments.List(ctx, filter.ApplicationID, reviewerID)
}
