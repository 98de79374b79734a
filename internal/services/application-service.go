package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SundayYogurt/bursary_service/internal/domain"
	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/SundayYogurt/bursary_service/internal/helper"
	"github.com/SundayYogurt/bursary_service/internal/interfaces"
	"github.com/SundayYogurt/bursary_service/internal/metrics"
	"github.com/SundayYogurt/bursary_service/internal/repository"
	log "github.com/sirupsen/logrus"
)

type ApplicationService interface {
	// Applicant
	SaveDraft(ctx context.Context, userID uint, in dto.ApplicationPayload) (uint, error)
	GetDraft(ctx context.Context, userID uint) (*domain.Application, error)
	ListMine(ctx context.Context, userID uint) ([]domain.Application, error)
	Submit(ctx context.Context, userID uint, in dto.ApplicationPayload) (*domain.Application, error)

	// Committee
	List(ctx context.Context, filter dto.ApplicationFilter) (*dto.ApplicationListResponse, error)
	Get(ctx context.Context, id uint) (*domain.Application, error)
	SetStatus(ctx context.Context, actor *domain.User, id uint, in dto.SetApplicationStatusRequest) (*domain.Application, error)
	Disburse(ctx context.Context, actor *domain.User, id uint, in dto.DisburseRequest) (*domain.Application, error)
}

type applicationService struct {
	repos      *repository.Repositories
	notifier   interfaces.Notifier
	adminEmail string
	now        func() time.Time
}

func NewApplicationService(repos *repository.Repositories, notifier interfaces.Notifier, adminEmail string) ApplicationService {
	return &applicationService{
		repos:      repos,
		notifier:   notifier,
		adminEmail: adminEmail,
		now:        time.Now,
	}
}

// errApplicantRace marks a lost race on the one-applicant-per-user index.
var errApplicantRace = errors.New("applicant created concurrently")

// retryApplicantRace runs fn a second time when the first attempt lost the
// race to create the caller's Applicant row.
func retryApplicantRace(fn func() error) error {
	err := fn()
	if errors.Is(err, errApplicantRace) {
		err = fn()
	}
	if errors.Is(err, errApplicantRace) {
		return conflict("applicant record is being created, try again")
	}
	return err
}

// workingSet is the applicant, family and application a payload is merged into.
type workingSet struct {
	applicant *domain.Applicant
	family    *domain.FamilyInfo
	app       *domain.Application
}

// load resolves the records a save or submit applies to: an explicit draft id,
// else the caller's latest draft, else fresh records. Nothing is written.
func load(ctx context.Context, tx *repository.Repositories, userID uint, draftID *uint) (*workingSet, error) {
	ws := &workingSet{}

	applicant, err := tx.Applicants.FindByUserID(ctx, userID)
	switch {
	case err == nil:
		ws.applicant = applicant
	case errors.Is(err, gorm.ErrRecordNotFound):
		user, err := tx.Users.FindByID(ctx, userID)
		if err != nil {
			return nil, translate(err, "user")
		}
		ws.applicant = &domain.Applicant{
			UserID:    userID,
			Surname:   domain.NotSpecified,
			FirstName: domain.NotSpecified,
			Email:     user.Email,
		}
	default:
		return nil, err
	}

	if draftID != nil && *draftID != 0 {
		app, err := tx.Applications.FindByID(ctx, *draftID)
		if err != nil {
			return nil, translate(err, "draft")
		}
		if ws.applicant.ID == 0 || app.ApplicantID != ws.applicant.ID {
			return nil, notFound("draft")
		}
		if app.Status != domain.ApplicationStatusDraft {
			return nil, conflict("application %d has already been submitted", app.ID)
		}
		ws.app = app
	} else if ws.applicant.ID != 0 {
		app, err := tx.Applications.FindLatestDraft(ctx, ws.applicant.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		ws.app = app
	}
	if ws.app == nil {
		ws.app = &domain.Application{
			Status:     domain.ApplicationStatusDraft,
			SchoolName: domain.NotSpecified,
		}
	}

	ws.family = &domain.FamilyInfo{}
	if ws.applicant.ID != 0 {
		family, err := tx.Families.FindByApplicantID(ctx, ws.applicant.ID)
		switch {
		case err == nil:
			ws.family = family
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}
	return ws, nil
}

func (ws *workingSet) merge(in *dto.ApplicationPayload) error {
	if err := mergeApplicant(ws.applicant, in); err != nil {
		return err
	}
	if err := mergeFamily(ws.family, &in.FamilyPayload); err != nil {
		return err
	}
	return mergeApplication(ws.app, in)
}

// persist writes all three records. A fresh Applicant that collides with a
// concurrent insert reports errApplicantRace.
func (ws *workingSet) persist(ctx context.Context, tx *repository.Repositories) error {
	if ws.applicant.ID == 0 {
		if err := tx.Applicants.Create(ctx, ws.applicant); err != nil {
			if helper.IsDuplicateKey(err) {
				return errApplicantRace
			}
			return err
		}
	} else if err := tx.Applicants.Save(ctx, ws.applicant); err != nil {
		return err
	}

	ws.family.ApplicantID = ws.applicant.ID
	if err := tx.Families.Save(ctx, ws.family); err != nil {
		return err
	}

	ws.app.ApplicantID = ws.applicant.ID
	if ws.app.ID == 0 {
		return tx.Applications.Create(ctx, ws.app)
	}
	return tx.Applications.Save(ctx, ws.app)
}

func (s *applicationService) SaveDraft(ctx context.Context, userID uint, in dto.ApplicationPayload) (uint, error) {
	var draftID uint
	err := retryApplicantRace(func() error {
		return s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
			ws, err := load(ctx, tx, userID, in.DraftID)
			if err != nil {
				return err
			}
			if err := ws.merge(&in); err != nil {
				return err
			}
			if err := ws.persist(ctx, tx); err != nil {
				return err
			}
			draftID = ws.app.ID
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	metrics.RecordApplicationEvent("draft_saved")
	log.WithFields(log.Fields{"user_id": userID, "draft_id": draftID}).Debug("draft saved")
	return draftID, nil
}

func (s *applicationService) GetDraft(ctx context.Context, userID uint) (*domain.Application, error) {
	applicant, err := s.repos.Applicants.FindByUserID(ctx, userID)
	if err != nil {
		return nil, translate(err, "draft")
	}
	draft, err := s.repos.Applications.FindLatestDraft(ctx, applicant.ID)
	if err != nil {
		return nil, translate(err, "draft")
	}
	app, err := s.repos.Applications.FindDetailed(ctx, draft.ID)
	if err != nil {
		return nil, translate(err, "draft")
	}
	return app, nil
}

func (s *applicationService) ListMine(ctx context.Context, userID uint) ([]domain.Application, error) {
	applicant, err := s.repos.Applicants.FindByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []domain.Application{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.repos.Applications.ListByApplicant(ctx, applicant.ID)
}

// currentCycle returns the open cycle covering today, or nil.
func currentCycle(ctx context.Context, repo repository.CycleRepository, now time.Time) (*domain.ScholarshipCycle, error) {
	cycles, err := repo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	for i := range cycles {
		if cycles[i].AcceptsSubmissionsAt(now) {
			return &cycles[i], nil
		}
	}
	return nil, nil
}

func (s *applicationService) Submit(ctx context.Context, userID uint, in dto.ApplicationPayload) (*domain.Application, error) {
	now := s.now().UTC()
	cycle, err := currentCycle(ctx, s.repos.Cycles, now)
	if err != nil {
		return nil, err
	}
	if cycle == nil {
		return nil, conflict("applications are closed")
	}

	var ws *workingSet
	err = retryApplicantRace(func() error {
		return s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
			var err error
			ws, err = load(ctx, tx, userID, in.DraftID)
			if err != nil {
				return err
			}
			if err := ws.merge(&in); err != nil {
				return err
			}
			if !readyForSubmission(ws.applicant, ws.app) {
				return validationError("missing required fields")
			}

			ws.app.Status = domain.ApplicationStatusPending
			ws.app.CycleID = &cycle.ID
			ws.app.SubmittedAt = &now
			ws.app.StatusChangedAt = &now
			return ws.persist(ctx, tx)
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordApplicationEvent("submitted")
	log.WithFields(log.Fields{"user_id": userID, "application_id": ws.app.ID, "cycle_id": cycle.ID}).Info("application submitted")

	data := map[string]string{
		"name":           ws.applicant.FullName(),
		"application_id": strconv.FormatUint(uint64(ws.app.ID), 10),
		"school_name":    ws.app.SchoolName,
		"status":         string(ws.app.Status),
		"cycle":          cycle.Name,
	}
	if ws.applicant.Email != "" {
		s.notifier.Notify(ctx, dto.NotificationEvent{Type: dto.EventApplicationSubmitted, To: ws.applicant.Email, Data: data})
	}
	if s.adminEmail != "" {
		s.notifier.Notify(ctx, dto.NotificationEvent{Type: dto.EventApplicationReceived, To: s.adminEmail, Data: data})
	}

	ws.app.Applicant = ws.applicant
	ws.app.Cycle = cycle
	return ws.app, nil
}

func (s *applicationService) List(ctx context.Context, filter dto.ApplicationFilter) (*dto.ApplicationListResponse, error) {
	if filter.Status != "" {
		status, ok := domain.ParseApplicationStatus(filter.Status)
		if !ok {
			return nil, validationError("unknown status %q", filter.Status)
		}
		filter.Status = string(status)
	}

	apps, total, err := s.repos.Applications.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ApplicationSummary, 0, len(apps))
	for i := range apps {
		items = append(items, toSummary(&apps[i]))
	}
	return &dto.ApplicationListResponse{Items: items, Total: total}, nil
}

func toSummary(app *domain.Application) dto.ApplicationSummary {
	out := dto.ApplicationSummary{
		ID:              app.ID,
		SchoolName:      app.SchoolName,
		Status:          string(app.Status),
		CycleID:         app.CycleID,
		AmountRequested: app.AmountRequested.StringFixed(2),
		CommitteeScore:  app.CommitteeScore,
		ReviewCount:     app.ReviewCount,
	}
	if app.Applicant != nil {
		out.ApplicantName = app.Applicant.FullName()
	}
	if app.ApprovedAmount.Valid {
		v := app.ApprovedAmount.Decimal.StringFixed(2)
		out.ApprovedAmount = &v
	}
	if app.SubmittedAt != nil {
		v := app.SubmittedAt.UTC().Format(time.RFC3339)
		out.SubmittedAt = &v
	}
	return out
}

func (s *applicationService) Get(ctx context.Context, id uint) (*domain.Application, error) {
	app, err := s.repos.Applications.FindDetailed(ctx, id)
	if err != nil {
		return nil, translate(err, "application")
	}
	return app, nil
}

func (s *applicationService) SetStatus(ctx context.Context, actor *domain.User, id uint, in dto.SetApplicationStatusRequest) (*domain.Application, error) {
	next, ok := domain.ParseApplicationStatus(in.Status)
	if !ok {
		return nil, validationError("unknown status %q", in.Status)
	}
	if next == domain.ApplicationStatusDisbursed {
		return nil, conflict("use the disbursement endpoint to mark an application disbursed")
	}
	if in.ApprovedAmount != nil {
		if next != domain.ApplicationStatusApproved {
			return nil, validationError("approved amount can only be set when approving")
		}
		if !in.ApprovedAmount.IsPositive() {
			return nil, validationError("approved amount must be greater than zero")
		}
	}

	now := s.now().UTC()
	var (
		app     *domain.Application
		prev    domain.ApplicationStatus
		changed bool
	)
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		app, err = tx.Applications.FindByID(ctx, id)
		if err != nil {
			return translate(err, "application")
		}
		prev = app.Status

		if prev != next && !prev.CanTransitionTo(next) {
			return conflict("cannot change status from %s to %s", prev, next)
		}
		if prev == next && in.ApprovedAmount == nil {
			return nil
		}

		app.Status = next
		if in.ApprovedAmount != nil {
			app.ApprovedAmount = decimal.NewNullDecimal(*in.ApprovedAmount)
		}
		if prev != next {
			app.StatusChangedAt = &now
			app.StatusChangedBy = &actor.ID
		}
		if err := tx.Applications.Save(ctx, app); err != nil {
			return err
		}
		changed = true

		details := datatypes.JSONMap{"from": string(prev), "to": string(next)}
		if in.ApprovedAmount != nil {
			details["approved_amount"] = in.ApprovedAmount.StringFixed(2)
		}
		if note := strings.TrimSpace(in.Note); note != "" {
			details["note"] = note
		}
		return tx.Audit.Create(ctx, &domain.AuditLog{
			ActorID:  actor.ID,
			Action:   domain.AuditActionStatusChange,
			Entity:   "application",
			EntityID: app.ID,
			Details:  details,
		})
	})
	if err != nil {
		return nil, err
	}

	detailed, err := s.repos.Applications.FindDetailed(ctx, id)
	if err != nil {
		return nil, translate(err, "application")
	}
	if !changed || prev == next {
		return detailed, nil
	}

	fields := log.Fields{"application_id": id, "from": prev, "to": next, "actor_id": actor.ID}
	if next == domain.ApplicationStatusApproved && !detailed.ApprovedAmount.Valid {
		log.WithFields(fields).Warn("application approved without an approved amount")
	} else {
		log.WithFields(fields).Info("application status changed")
	}
	metrics.RecordApplicationEvent("status_changed")

	if detailed.Applicant != nil && detailed.Applicant.Email != "" {
		data := map[string]string{
			"name":           detailed.Applicant.FullName(),
			"application_id": strconv.FormatUint(uint64(id), 10),
			"from":           string(prev),
			"status":         string(next),
		}
		if detailed.ApprovedAmount.Valid {
			data["approved_amount"] = detailed.ApprovedAmount.Decimal.StringFixed(2)
		}
		s.notifier.Notify(ctx, dto.NotificationEvent{Type: dto.EventApplicationStatusChanged, To: detailed.Applicant.Email, Data: data})
	}
	return detailed, nil
}

// NewVoucherCode returns "VCH-" followed by eight upper-case hex digits.
func NewVoucherCode() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "VCH-" + strings.ToUpper(hex[:8])
}

func (s *applicationService) Disburse(ctx context.Context, actor *domain.User, id uint, in dto.DisburseRequest) (*domain.Application, error) {
	reference := strings.TrimSpace(in.PaymentReference)
	if reference == "" {
		return nil, validationError("payment reference is required")
	}
	voucher := strings.ToUpper(strings.TrimSpace(in.VoucherCode))
	if voucher == "" {
		voucher = NewVoucherCode()
	}
	paidAt := s.now().UTC()
	if in.DisbursedAt != nil && !in.DisbursedAt.IsZero() {
		paidAt = in.DisbursedAt.Time
	}

	var amount decimal.Decimal
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		app, err := tx.Applications.FindByID(ctx, id)
		if err != nil {
			return translate(err, "application")
		}
		if app.Status != domain.ApplicationStatusApproved {
			return conflict("only approved applications can be disbursed (current status %s)", app.Status)
		}
		if !app.ApprovedAmount.Valid || !app.ApprovedAmount.Decimal.IsPositive() {
			return validationError("approved amount is required before disbursement")
		}
		amount = app.ApprovedAmount.Decimal

		now := s.now().UTC()
		app.Status = domain.ApplicationStatusDisbursed
		app.VoucherCode = &voucher
		app.PaymentReference = &reference
		app.DisbursedAt = &paidAt
		app.StatusChangedAt = &now
		app.StatusChangedBy = &actor.ID
		if err := tx.Applications.Save(ctx, app); err != nil {
			if helper.IsDuplicateKey(err) {
				return conflict("voucher code %s is already in use", voucher)
			}
			return err
		}

		appID := app.ID
		if err := tx.Transactions.Create(ctx, &domain.Transaction{
			Type:          domain.TransactionExpense,
			Category:      domain.CategoryDisbursement,
			Amount:        amount,
			Reference:     voucher,
			Description:   strings.TrimSpace("Bursary disbursement " + reference + " " + strings.TrimSpace(in.Note)),
			ApplicationID: &appID,
			RecordedBy:    &actor.ID,
			OccurredAt:    paidAt,
		}); err != nil {
			return err
		}

		return tx.Audit.Create(ctx, &domain.AuditLog{
			ActorID:  actor.ID,
			Action:   domain.AuditActionDisburse,
			Entity:   "application",
			EntityID: app.ID,
			Details: datatypes.JSONMap{
				"voucher_code":      voucher,
				"payment_reference": reference,
				"amount":            amount.StringFixed(2),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordApplicationEvent("disbursed")
	log.WithFields(log.Fields{"application_id": id, "voucher": voucher, "actor_id": actor.ID}).Info("application disbursed")

	detailed, err := s.repos.Applications.FindDetailed(ctx, id)
	if err != nil {
		return nil, translate(err, "application")
	}
	if detailed.Applicant != nil && detailed.Applicant.Email != "" {
		s.notifier.Notify(ctx, dto.NotificationEvent{
			Type: dto.EventApplicationDisbursed,
			To:   detailed.Applicant.Email,
			Data: map[string]string{
				"name":              detailed.Applicant.FullName(),
				"application_id":    strconv.FormatUint(uint64(id), 10),
				"amount":            amount.StringFixed(2),
				"voucher_code":      voucher,
				"payment_reference": reference,
			},
		})
	}
	return detailed, nil
}
