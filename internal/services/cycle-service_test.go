package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SundayYogurt/bursary_service/internal/domain"
	"github.com/SundayYogurt/bursary_service/internal/dto"
)

func day(y int, m time.Month, d int) dto.Date {
	return dto.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func TestCycleValidation(t *testing.T) {
	h := newHarness(t)
	svc := NewCycleService(h.repos.Cycles)

	cases := []struct {
		name string
		in   dto.CreateCycleRequest
	}{
		{"missing name", dto.CreateCycleRequest{StartDate: day(2027, 1, 1), EndDate: day(2027, 6, 1)}},
		{"missing dates", dto.CreateCycleRequest{Name: "2027"}},
		{"end before start", dto.CreateCycleRequest{Name: "2027", StartDate: day(2027, 6, 1), EndDate: day(2027, 1, 1)}},
		{"bad status", dto.CreateCycleRequest{Name: "2027", StartDate: day(2027, 1, 1), EndDate: day(2027, 6, 1), Status: "Paused"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(h.ctx, tc.in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := svc.Create(h.ctx, dto.CreateCycleRequest{Name: "2026 Bursary", StartDate: day(2026, 1, 1), EndDate: day(2026, 2, 1)})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCycleCreateAndUpdate(t *testing.T) {
	h := newHarness(t)
	svc := NewCycleService(h.repos.Cycles)

	created, err := svc.Create(h.ctx, dto.CreateCycleRequest{Name: " 2027 Bursary ", StartDate: day(2027, 1, 1), EndDate: day(2027, 6, 30)})
	require.NoError(t, err)
	assert.Equal(t, "2027 Bursary", created.Name)
	assert.Equal(t, domain.CycleStatusUpcoming, created.Status)

	open := "open"
	updated, err := svc.Update(h.ctx, created.ID, dto.UpdateCycleRequest{Status: &open})
	require.NoError(t, err)
	assert.Equal(t, domain.CycleStatusOpen, updated.Status)

	earlier := day(2026, 12, 1)
	_, err = svc.Update(h.ctx, created.ID, dto.UpdateCycleRequest{EndDate: &earlier})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Update(h.ctx, 999, dto.UpdateCycleRequest{Status: &open})
	assert.ErrorIs(t, err, ErrNotFound)

	cycles, err := svc.List(h.ctx)
	require.NoError(t, err)
	assert.Len(t, cycles, 2)
}

func TestCurrentCycle(t *testing.T) {
	h := newHarness(t)
	svc := NewCycleService(h.repos.Cycles).(*cycleService)

	svc.now = func() time.Time { return fixedNow }
	current, err := svc.Current(h.ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, h.cycle.ID, current.ID)

	svc.now = func() time.Time { return time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC) }
	current, err = svc.Current(h.ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	closed := "Closed"
	_, err = svc.Update(h.ctx, h.cycle.ID, dto.UpdateCycleRequest{Status: &closed})
	require.NoError(t, err)
	svc.now = func() time.Time { return fixedNow }
	current, err = svc.Current(h.ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}
