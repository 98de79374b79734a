package services

import (
	"context"
	"strings"
	"time"

	"github.com/SundayYogurt/bursary_service/internal/domain"
	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/SundayYogurt/bursary_service/internal/repository"
)

type CycleService interface {
	Create(ctx context.Context, input dto.CreateCycleRequest) (*domain.ScholarshipCycle, error)
	Update(ctx context.Context, id uint, input dto.UpdateCycleRequest) (*domain.ScholarshipCycle, error)
	List(ctx context.Context) ([]domain.ScholarshipCycle, error)
	// Current returns the cycle accepting submissions today, or nil.
	Current(ctx context.Context) (*domain.ScholarshipCycle, error)
}

type cycleService struct {
	repo repository.CycleRepository
	now  func() time.Time
}

func NewCycleService(repo repository.CycleRepository) CycleService {
	return &cycleService{repo: repo, now: time.Now}
}

func parseCycleStatus(s string, fallback domain.CycleStatus) (domain.CycleStatus, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	for _, st := range []domain.CycleStatus{domain.CycleStatusUpcoming, domain.CycleStatusOpen, domain.CycleStatusClosed} {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", validationError("cycle status must be Upcoming, Open or Closed")
}

func validateCycle(c *domain.ScholarshipCycle) error {
	if c.Name == "" {
		return validationError("cycle name is required")
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return validationError("start and end dates are required")
	}
	if c.EndDate.Before(c.StartDate) {
		return validationError("end date must not precede start date")
	}
	return nil
}

func (s *cycleService) Create(ctx context.Context, input dto.CreateCycleRequest) (*domain.ScholarshipCycle, error) {
	status, err := parseCycleStatus(input.Status, domain.CycleStatusUpcoming)
	if err != nil {
		return nil, err
	}
	cycle := &domain.ScholarshipCycle{
		Name:        strings.TrimSpace(input.Name),
		StartDate:   input.StartDate.Time,
		EndDate:     input.EndDate.Time,
		Status:      status,
		Description: strings.TrimSpace(input.Description),
	}
	if err := validateCycle(cycle); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, cycle); err != nil {
		return nil, translate(err, "cycle")
	}
	return cycle, nil
}

func (s *cycleService) Update(ctx context.Context, id uint, input dto.UpdateCycleRequest) (*domain.ScholarshipCycle, error) {
	cycle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "cycle")
	}
	if input.Name != nil {
		cycle.Name = strings.TrimSpace(*input.Name)
	}
	if input.StartDate != nil {
		cycle.StartDate = input.StartDate.Time
	}
	if input.EndDate != nil {
		cycle.EndDate = input.EndDate.Time
	}
	if input.Status != nil {
		status, err := parseCycleStatus(*input.Status, cycle.Status)
		if err != nil {
			return nil, err
		}
		cycle.Status = status
	}
	if input.Description != nil {
		cycle.Description = strings.TrimSpace(*input.Description)
	}
	if err := validateCycle(cycle); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, cycle); err != nil {
		return nil, translate(err, "cycle")
	}
	return cycle, nil
}

func (s *cycleService) List(ctx context.Context) ([]domain.ScholarshipCycle, error) {
	return s.repo.List(ctx)
}

func (s *cycleService) Current(ctx context.Context) (*domain.ScholarshipCycle, error) {
	return currentCycle(ctx, s.repo, s.now().UTC())
}
