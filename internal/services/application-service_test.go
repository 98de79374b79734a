package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SundayYogurt/bursary_service/internal/domain"
	"github.com/SundayYogurt/bursary_service/internal/dto"
)

func TestSaveDraftFirstTimeCreatesApplicantAndDraft(t *testing.T) {
	h := newHarness(t)
	u := h.applicantUser(t, "jane@example.com")

	id, err := h.apps.SaveDraft(h.ctx, u.ID, dto.ApplicationPayload{
		Surname:    dto.StringPtr("Doe"),
		FirstName:  dto.StringPtr("Jane"),
		SchoolName: dto.StringPtr("Test School"),
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	assert.EqualValues(t, 1, h.count(t, &domain.Applicant{}))
	assert.EqualValues(t, 1, h.count(t, &domain.Application{}))
	assert.EqualValues(t, 1, h.count(t, &domain.FamilyInfo{}))

	draft, err := h.apps.GetDraft(h.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, id, draft.ID)
	assert.Equal(t, domain.ApplicationStatusDraft, draft.Status)
	assert.Equal(t, 0, draft.Age)
	assert.Equal(t, "Test School", draft.SchoolName)
	require.NotNil(t, draft.Applicant)
	assert.Equal(t, "Doe", draft.Applicant.Surname)
	assert.Equal(t, "jane@example.com", draft.Applicant.Email)
}

func TestSaveDraftDefaultsMissingRequiredFields(t *testing.T) {
	h := newHarness(t)
	u := h.applicantUser(t, "jane@example.com")

	_, err := h.apps.SaveDraft(h.ctx, u.ID, dto.ApplicationPayload{Phone: dto.StringPtr("0803")})
	require.NoError(t, err)

	draft, err := h.apps.GetDraft(h.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.NotSpecified, draft.SchoolName)
	assert.Equal(t, domain.NotSpecified, draft.Applicant.Surname)
	assert.Equal(t, domain.NotSpecified, draft.Applicant.FirstName)
	assert.Equal(t, "0803", draft.Applicant.Phone)
}

func TestSaveDraftOmittedFieldsAreUnchanged(t *testing.T) {
	h := newHarness(t)
	u := h.applicantUser(t, "jane@example.com")

	first, err := h.apps.SaveDraft(h.ctx, u.ID, dto.ApplicationPayload{
		Surname:    dto.StringPtr("Doe"),
		FirstName:  dto.StringPtr("Jane"),
		Parish:     dto.StringPtr("St Peter"),
		SchoolName: dto.StringPtr("Test School"),
		Age:        dto.NewFlexInt(17),
		FamilyPayload: dto.FamilyPayload{
			FatherName:  dto.StringPtr("John Doe"),
			MotherPhone: dto.StringPtr("0802"),
		},
	})
	require.NoError(t, err)

	second, err := h.apps.SaveDraft(h.ctx, u.ID, dto.ApplicationPayload{
		ClassLevel: dto.StringPtr("SS2"),
	})
	require.NoError(t, err)
	assert.Equal(t, first, second, "a save without draftId continues the latest draft")

	draft, err := h.apps.GetDraft(h.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Doe", draft.Applicant.Surname)
	assert.Equal(t, "St Peter", draft.Applicant.Parish)
	assert.Equal(t, "Test School", draft.SchoolName)
	assert.Equal(t, 17, draft.Age)
	assert.Equal(t, "SS2", draft.ClassLevel)
	require.NotNil(t, draft.Applicant.FamilyInfo)
	assert.Equal(t, "John Doe", draft.Applicant.FamilyInfo.FatherName)
	assert.Equal(t, "0802", draft.Applicant.FamilyInfo.MotherPhone)
	assert.EqualValues(t, 1, h.count(t, &domain.Application{}))
}

func TestSaveDraftEmptyStringClears(t *testing.T) {
	h := newHarness(t)
	u := h.applicantUser(t, "jane@example.com")

	_, err := h.apps.SaveDraft(h.ctx, u.ID, dto.ApplicationPayload{
		Surname:    dto.StringPtr("Doe"),
		Parish:     dto.StringPtr("St Peter"),
		SchoolName: dto.StringPtr("Test School"),
		ClassSize:  dto.NewFlexInt(40),
	})
	require.NoError(t, err)

	_, err = h.apps.SaveDraft(h.ctx, u.ID, dto.ApplicationPayload{
		Surname:    dto.StringPtr(""),
		Parish:     dto.StringPtr(""),
		SchoolName: dto.StringPtr("  "),
		ClassSize:  &dto.FlexInt{Null: true},
	})
	require.NoError(t, err)

	draft, err := h.apps.GetDraft(h.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.NotSpecified, draft.Applicant.Surname)
	assert.Equal(t, "", draft.Applicant.Parish)
	assert.Equal(t, domain.NotSpecified, draft.SchoolName)
	assert.Nil(t, draft.ClassSize)
}

func TestSaveDraftMergesEveryFamilyField(t *testing.T) {
	h := newHarness(t)
	u := h.applicantUser(t, "jane@example.com")

	_, err := h.apps.SaveDraft(h.ctx, u.ID, dto.ApplicationPayload{FamilyPayload: dto.FamilyPayload{
		FatherName:           dto.StringPtr("John"),
		FatherOccupation:     dto.StringPtr("Farmer"),
		FatherEmployer:       dto.StringPtr("Self"),
		FatherPhone:          dto.StringPtr("1"),
		FatherAddress:        dto.StringPtr("Village"),
		FatherAlive:          dto.YesNoPtr(false),
		MotherName:           dto.StringPtr("Mary"),
		MotherOccupation:     dto.StringPtr("Trader"),
		MotherEmployer:       dto.StringPtr("Market"),
		MotherPhone:          dto.StringPtr("2"),
		MotherAddress:        dto.StringPtr("Town"),
		MotherAlive:          dto.YesNoPtr(true),
		GuardianName:         dto.StringPtr("Uncle Ben"),
		GuardianRelationship: dto.StringPtr("Uncle"),
		GuardianOccupation:   dto.StringPtr("Teacher"),
		GuardianPhone:        dto.StringPtr("3"),
		GuardianAddress:      dto.StringPtr("City"),
		NumberOfSiblings:     dto.NewFlexInt(4),
	}})
	require.NoError(t, err)

	draft, err := h.apps.GetDraft(h.ctx, u.ID)
	require.NoError(t, err)
	f := draft.Applicant.FamilyInfo
	require.NotNil(t, f)
	assert.Equal(t, "Farmer", f.FatherOccupation)
	assert.Equal(t, "Self", f.FatherEmployer)
	assert.Equal(t, "Village", f.FatherAddress)
	require.NotNil(t, f.FatherAlive)
	assert.False(t, *f.FatherAlive)
	assert.Equal(t, "Market", f.MotherEmployer)
	require.NotNil(t, f.MotherAlive)
	assert.True(t, *f.MotherAlive)
	assert.Equal(t, "Uncle", f.GuardianRelationship)
	assert.Equal(t, "City", f.GuardianAddress)
	require.NotNil(t, f.NumberOfSiblings)
	assert.Equal(t, 4, *f.NumberOfSiblings)
}

func TestSaveDraftRejectsForeignOrSubmittedDraft(t *testing.T) {
	h := newHarness(t)
	owner := h.applicantUser(t, "owner@example.com")
	other := h.applicantUser(t, "other@example.com")

	id, err := h.apps.SaveDraft(h.ctx, owner.ID, completePayload())
	require.NoError(t, err)

	_, err = h.apps.SaveDraft(h.ctx, other.ID, dto.ApplicationPayload{DraftID: &id, Surname: dto.StringPtr("Hijack")})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = h.apps.Submit(h.ctx, owner.ID, dto.ApplicationPayload{DraftID: &id})
	require.NoError(t, err)

	_, err = h.apps.SaveDraft(h.ctx, owner.ID, dto.ApplicationPayload{DraftID: &id, Surname: dto.StringPtr("Late")})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSaveDraftValidatesValues(t *testing.T) {
	h := newHarness(t)
	u := h.applicantUser(t, "jane@example.com")

	_, err := h.apps.SaveDraft(h.ctx, u.ID, dto.ApplicationPayload{Sex: dto.StringPtr("robot")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = h.apps.SaveDraft(h.ctx, u.ID, dto.ApplicationPayload{Age: dto.NewFlexInt(-3)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = h.apps.SaveDraft(h.ctx, u.ID, dto.ApplicationPayload{Email: dto.StringPtr("nope")})
	assert.ErrorIs(t, err, ErrValidation)

	assert.EqualValues(t, 0, h.count(t, &domain.Applicant{}))
}

func TestSubmitMissingRequiredFieldsWritesNothing(t *testing.T) {
	cases := map[string]func(p *dto.ApplicationPayload){
		"surname":    func(p *dto.ApplicationPayload) { p.Surname = nil },
		"firstName":  func(p *dto.ApplicationPayload) { p.FirstName = nil },
		"dob":        func(p *dto.ApplicationPayload) { p.DateOfBirth = nil },
		"schoolName": func(p *dto.ApplicationPayload) { p.SchoolName = dto.StringPtr("") },
	}
	for name, drop := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			u := h.applicantUser(t, "jane@example.com")
			payload := completePayload()
			drop(&payload)

			_, err := h.apps.Submit(h.ctx, u.ID, payload)
			require.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, "missing required fields", err.Error())
			assert.EqualValues(t, 0, h.count(t, &domain.Applicant{}))
			assert.EqualValues(t, 0, h.count(t, &domain.Application{}))
			assert.Empty(t, h.notifier.types())
		})
	}
}

func TestSubmitFreshRecordNotifiesApplicantAndTrust(t *testing.T) {
	h := newHarness(t)
	u := h.applicantUser(t, "jane@example.com")

	payload := completePayload()
	payload.Age = dto.NewFlexInt(18)
	payload.ChurchMember = dto.YesNoPtr(true)
	amount := decimal.NewFromInt(150000)
	payload.AmountRequested = &amount

	app, err := h.apps.Submit(h.ctx, u.ID, payload)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusPending, app.Status)
	require.NotNil(t, app.CycleID)
	assert.Equal(t, h.cycle.ID, *app.CycleID)
	require.NotNil(t, app.SubmittedAt)
	assert.True(t, app.ChurchMember)

	assert.Equal(t, []string{dto.EventApplicationSubmitted, dto.EventApplicationReceived}, h.notifier.types())
	assert.Equal(t, "jane@example.com", h.notifier.events[0].To)
	assert.Equal(t, "trust@example.com", h.notifier.events[1].To)
}

func TestSubmitPromotesLatestDraftInPlace(t *testing.T) {
	h := newHarness(t)
	u := h.applicantUser(t, "jane@example.com")

	draftID, err := h.apps.SaveDraft(h.ctx, u.ID, dto.ApplicationPayload{
		Surname:   dto.StringPtr("Doe"),
		FirstName: dto.StringPtr("Jane"),
		Reason:    dto.StringPtr("School fees"),
	})
	require.NoError(t, err)

	app, err := h.apps.Submit(h.ctx, u.ID, dto.ApplicationPayload{
		DateOfBirth: dto.NewDate(fixedNow.AddDate(-17, 0, 0)),
		SchoolName:  dto.StringPtr("Test School"),
	})
	require.NoError(t, err)
	assert.Equal(t, draftID, app.ID)
	assert.Equal(t, "School fees", app.Reason)
	assert.EqualValues(t, 1, h.count(t, &domain.Application{}))

	_, err = h.apps.GetDraft(h.ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	mine, err := h.apps.ListMine(h.ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, domain.ApplicationStatusPending, mine[0].Status)
}

func TestSubmitOverDraftNeedsRequiredFieldsAfterMerge(t *testing.T) {
	h := newHarness(t)
	u := h.applicantUser(t, "jane@example.com")

	draftID, err := h.apps.SaveDraft(h.ctx, u.ID, dto.ApplicationPayload{
		Surname:   dto.StringPtr("Doe"),
		FirstName: dto.StringPtr("Jane"),
	})
	require.NoError(t, err)

	_, err = h.apps.Submit(h.ctx, u.ID, dto.ApplicationPayload{
		Surname:     dto.StringPtr(""),
		DateOfBirth: dto.NewDate(fixedNow.AddDate(-17, 0, 0)),
		SchoolName:  dto.StringPtr("Test School"),
	})
	require.ErrorIs(t, err, ErrValidation)

	draft, err := h.apps.GetDraft(h.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, draftID, draft.ID)
	require.NotNil(t, draft.Applicant)
	assert.Equal(t, "Doe", draft.Applicant.Surname)

	app, err := h.apps.Submit(h.ctx, u.ID, dto.ApplicationPayload{
		DateOfBirth: dto.NewDate(fixedNow.AddDate(-17, 0, 0)),
		SchoolName:  dto.StringPtr("Test School"),
	})
	require.NoError(t, err)
	assert.Equal(t, draftID, app.ID)
}

func TestSubmitOutsideOpenCycleIsRejected(t *testing.T) {
	h := newHarness(t)
	u := h.applicantUser(t, "jane@example.com")
	h.cycle.Status = domain.CycleStatusClosed
	require.NoError(t, h.repos.Cycles.Save(h.ctx, h.cycle))

	_, err := h.apps.Submit(h.ctx, u.ID, completePayload())
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "applications are closed", err.Error())
}

func TestSetStatusFollowsTransitionTable(t *testing.T) {
	h := newHarness(t)
	admin := h.admin(t, "admin@example.com")
	app := h.submitted(t, "jane@example.com")

	for _, status := range []string{"Approved", "Rejected", "Approved"} {
		updated, err := h.apps.SetStatus(h.ctx, admin, app.ID, dto.SetApplicationStatusRequest{Status: status})
		require.NoError(t, err, status)
		assert.Equal(t, status, string(updated.Status))
	}

	logs, err := h.repos.Audit.ListForEntity(h.ctx, "application", app.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 3)
	assert.Contains(t, h.notifier.types(), dto.EventApplicationStatusChanged)
}

func TestSetStatusRejectsUnknownAndDisallowed(t *testing.T) {
	h := newHarness(t)
	admin := h.admin(t, "admin@example.com")
	app := h.submitted(t, "jane@example.com")

	_, err := h.apps.SetStatus(h.ctx, admin, app.ID, dto.SetApplicationStatusRequest{Status: "Shortlisted"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = h.apps.SetStatus(h.ctx, admin, app.ID, dto.SetApplicationStatusRequest{Status: "Draft"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = h.apps.SetStatus(h.ctx, admin, app.ID, dto.SetApplicationStatusRequest{Status: "Disbursed"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = h.apps.SetStatus(h.ctx, admin, 9999, dto.SetApplicationStatusRequest{Status: "Approved"})
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := h.apps.SetStatus(h.ctx, admin, app.ID, dto.SetApplicationStatusRequest{Status: "under_review"})
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusUnderReview, updated.Status)
}

func TestSetStatusSameStatusIsNoop(t *testing.T) {
	h := newHarness(t)
	admin := h.admin(t, "admin@example.com")
	app := h.submitted(t, "jane@example.com")
	before := len(h.notifier.types())

	updated, err := h.apps.SetStatus(h.ctx, admin, app.ID, dto.SetApplicationStatusRequest{Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusPending, updated.Status)
	assert.Len(t, h.notifier.types(), before)

	logs, err := h.repos.Audit.ListForEntity(h.ctx, "application", app.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestDisburseRecordsVoucherAndLedger(t *testing.T) {
	h := newHarness(t)
	admin := h.admin(t, "admin@example.com")
	app := h.submitted(t, "jane@example.com")
	amount := decimal.NewFromInt(50000)

	_, err := h.apps.Disburse(h.ctx, admin, app.ID, dto.DisburseRequest{PaymentReference: "TRF-1"})
	assert.ErrorIs(t, err, ErrConflict, "pending applications cannot be disbursed")

	_, err = h.apps.SetStatus(h.ctx, admin, app.ID, dto.SetApplicationStatusRequest{Status: "Approved", ApprovedAmount: &amount})
	require.NoError(t, err)

	_, err = h.apps.Disburse(h.ctx, admin, app.ID, dto.DisburseRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	done, err := h.apps.Disburse(h.ctx, admin, app.ID, dto.DisburseRequest{PaymentReference: "TRF-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusDisbursed, done.Status)
	require.NotNil(t, done.VoucherCode)
	assert.Regexp(t, `^VCH-[0-9A-F]{8}$`, *done.VoucherCode)
	require.NotNil(t, done.DisbursedAt)

	txns, err := h.repos.Transactions.All(h.ctx)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, domain.TransactionExpense, txns[0].Type)
	assert.Equal(t, domain.CategoryDisbursement, txns[0].Category)
	assert.True(t, amount.Equal(txns[0].Amount))

	_, err = h.apps.SetStatus(h.ctx, admin, app.ID, dto.SetApplicationStatusRequest{Status: "Approved"})
	assert.ErrorIs(t, err, ErrConflict, "disbursed is terminal")
	assert.Contains(t, h.notifier.types(), dto.EventApplicationDisbursed)
}

func TestDisburseRequiresApprovedAmount(t *testing.T) {
	h := newHarness(t)
	admin := h.admin(t, "admin@example.com")
	app := h.submitted(t, "jane@example.com")

	_, err := h.apps.SetStatus(h.ctx, admin, app.ID, dto.SetApplicationStatusRequest{Status: "Approved"})
	require.NoError(t, err)

	_, err = h.apps.Disburse(h.ctx, admin, app.ID, dto.DisburseRequest{PaymentReference: "TRF-2"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListAndGet(t *testing.T) {
	h := newHarness(t)
	h.submitted(t, "a@example.com")
	second := h.submitted(t, "b@example.com")
	draftOwner := h.applicantUser(t, "c@example.com")
	_, err := h.apps.SaveDraft(h.ctx, draftOwner.ID, completePayload())
	require.NoError(t, err)

	list, err := h.apps.List(h.ctx, dto.ApplicationFilter{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)
	assert.Equal(t, "Jane Doe", list.Items[0].ApplicantName)

	_, err = h.apps.List(h.ctx, dto.ApplicationFilter{Status: "bogus"})
	assert.ErrorIs(t, err, ErrValidation)

	got, err := h.apps.Get(h.ctx, second.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Applicant)
	require.NotNil(t, got.Cycle)

	_, err = h.apps.Get(h.ctx, 4242)
	assert.ErrorIs(t, err, ErrNotFound)
}
