package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SundayYogurt/bursary_service/internal/domain"
	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/SundayYogurt/bursary_service/internal/repository"
	"github.com/SundayYogurt/bursary_service/internal/testutil"
)

var fixedNow = time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu     sync.Mutex
	events []dto.NotificationEvent
}

func (n *recordingNotifier) Notify(_ context.Context, e dto.NotificationEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

type harness struct {
	ctx      context.Context
	repos    *repository.Repositories
	notifier *recordingNotifier
	apps     *applicationService
	cycle    *domain.ScholarshipCycle
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	repos := repository.New(testutil.NewDB(t))
	notifier := &recordingNotifier{}
	apps := NewApplicationService(repos, notifier, "trust@example.com").(*applicationService)
	apps.now = func() time.Time { return fixedNow }

	h := &harness{ctx: context.Background(), repos: repos, notifier: notifier, apps: apps}
	h.cycle = &domain.ScholarshipCycle{
		Name:      "2026 Bursary",
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		Status:    domain.CycleStatusOpen,
	}
	require.NoError(t, repos.Cycles.Create(h.ctx, h.cycle))
	return h
}

func (h *harness) user(t *testing.T, email string, role domain.Role, status domain.UserStatus) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, PasswordHash: "x", DisplayName: email, Role: role, Status: status}
	require.NoError(t, h.repos.Users.Create(h.ctx, u))
	return u
}

func (h *harness) applicantUser(t *testing.T, email string) *domain.User {
	return h.user(t, email, domain.RoleApplicant, domain.UserStatusApproved)
}

func (h *harness) admin(t *testing.T, email string) *domain.User {
	return h.user(t, email, domain.RoleAdmin, domain.UserStatusApproved)
}

func (h *harness) superAdmin(t *testing.T, email string) *domain.User {
	return h.user(t, email, domain.RoleSuperAdmin, domain.UserStatusApproved)
}

func completePayload() dto.ApplicationPayload {
	return dto.ApplicationPayload{
		Surname:     dto.StringPtr("Doe"),
		FirstName:   dto.StringPtr("Jane"),
		DateOfBirth: dto.NewDate(time.Date(2008, 3, 14, 0, 0, 0, 0, time.UTC)),
		SchoolName:  dto.StringPtr("Test School"),
	}
}

// submitted creates a Pending application for a new applicant.
func (h *harness) submitted(t *testing.T, email string) *domain.Application {
	t.Helper()
	u := h.applicantUser(t, email)
	app, err := h.apps.Submit(h.ctx, u.ID, completePayload())
	require.NoError(t, err)
	return app
}

func (h *harness) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.repos.DB().WithContext(h.ctx).Model(model).Count(&n).Error)
	return n
}
