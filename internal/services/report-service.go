package services

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SundayYogurt/bursary_service/internal/domain"
	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/SundayYogurt/bursary_service/internal/repository"
)

type ReportService interface {
	Analytics(ctx context.Context, cycleID uint) (*dto.Analytics, error)
	Report(ctx context.Context, filter dto.ApplicationFilter) ([]dto.ReportRow, error)
}

type reportService struct {
	repos *repository.Repositories
}

func NewReportService(repos *repository.Repositories) ReportService {
	return &reportService{repos: repos}
}

func (s *reportService) submitted(ctx context.Context, filter dto.ApplicationFilter) ([]domain.Application, error) {
	if filter.Status != "" {
		status, ok := domain.ParseApplicationStatus(filter.Status)
		if !ok {
			return nil, validationError("unknown status %q", filter.Status)
		}
		filter.Status = string(status)
	}
	filter.Limit, filter.Offset = 0, 0
	apps, _, err := s.repos.Applications.List(ctx, filter)
	return apps, err
}

// Analytics aggregates every submitted application, optionally within one cycle.
func (s *reportService) Analytics(ctx context.Context, cycleID uint) (*dto.Analytics, error) {
	apps, err := s.submitted(ctx, dto.ApplicationFilter{CycleID: cycleID})
	if err != nil {
		return nil, err
	}

	out := &dto.Analytics{
		TotalApplications: int64(len(apps)),
		ByStatus:          map[string]int64{},
		ByCycle:           map[string]int64{},
		BySex:             map[string]int64{},
		ByStateOfOrigin:   map[string]int64{},
	}
	requested, approved, disbursed := decimal.Zero, decimal.Zero, decimal.Zero
	var scoreSum float64
	var scored int

	for i := range apps {
		app := &apps[i]
		out.ByStatus[string(app.Status)]++

		cycle := "Unassigned"
		if app.Cycle != nil {
			cycle = app.Cycle.Name
		}
		out.ByCycle[cycle]++

		sex, state := "Unknown", "Unknown"
		if app.Applicant != nil {
			if app.Applicant.Sex != "" {
				sex = string(app.Applicant.Sex)
			}
			if app.Applicant.StateOfOrigin != "" {
				state = app.Applicant.StateOfOrigin
			}
		}
		out.BySex[sex]++
		out.ByStateOfOrigin[state]++

		requested = requested.Add(app.AmountRequested)
		if app.ApprovedAmount.Valid {
			switch app.Status {
			case domain.ApplicationStatusApproved:
				approved = approved.Add(app.ApprovedAmount.Decimal)
			case domain.ApplicationStatusDisbursed:
				approved = approved.Add(app.ApprovedAmount.Decimal)
				disbursed = disbursed.Add(app.ApprovedAmount.Decimal)
			}
		}
		if app.CommitteeScore != nil {
			scoreSum += *app.CommitteeScore
			scored++
		}
	}

	if scored > 0 {
		avg := scoreSum / float64(scored)
		out.AverageScore = &avg
	}
	out.TotalRequested = requested.StringFixed(2)
	out.TotalApproved = approved.StringFixed(2)
	out.TotalDisbursed = disbursed.StringFixed(2)
	return out, nil
}

func (s *reportService) Report(ctx context.Context, filter dto.ApplicationFilter) ([]dto.ReportRow, error) {
	apps, err := s.submitted(ctx, filter)
	if err != nil {
		return nil, err
	}
	rows := make([]dto.ReportRow, 0, len(apps))
	for i := range apps {
		rows = append(rows, toReportRow(&apps[i]))
	}
	return rows, nil
}

func toReportRow(app *domain.Application) dto.ReportRow {
	row := dto.ReportRow{
		ApplicationID:   app.ID,
		SchoolName:      app.SchoolName,
		ClassLevel:      app.ClassLevel,
		Status:          string(app.Status),
		AmountRequested: app.AmountRequested.StringFixed(2),
	}
	if a := app.Applicant; a != nil {
		row.Surname = a.Surname
		row.FirstName = a.FirstName
		row.Sex = string(a.Sex)
		row.StateOfOrigin = a.StateOfOrigin
		row.Parish = a.Parish
	}
	if app.Cycle != nil {
		row.Cycle = app.Cycle.Name
	}
	if app.ApprovedAmount.Valid {
		row.ApprovedAmount = app.ApprovedAmount.Decimal.StringFixed(2)
	}
	if app.CommitteeScore != nil {
		row.CommitteeScore = strconv.FormatFloat(*app.CommitteeScore, 'f', 2, 64)
	}
	if app.VoucherCode != nil {
		row.VoucherCode = *app.VoucherCode
	}
	if app.PaymentReference != nil {
		row.PaymentReference = *app.PaymentReference
	}
	if app.DisbursedAt != nil {
		row.DisbursedAt = app.DisbursedAt.UTC().Format(time.DateOnly)
	}
	return row
}
