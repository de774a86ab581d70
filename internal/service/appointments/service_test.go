package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
	"github.com/m04kA/SMC-TurnosService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-TurnosService/internal/service/appointments/models"
	"github.com/m04kA/SMC-TurnosService/pkg/logger"
	"github.com/m04kA/SMC-TurnosService/pkg/ptr"
	"github.com/m04kA/SMC-TurnosService/pkg/types"
)

var date = time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

type recordingCache struct {
	invalidated []time.Time
}

func (c *recordingCache) Invalidate(_ context.Context, dates ...time.Time) error {
	c.invalidated = append(c.invalidated, dates...)
	return nil
}

type fixture struct {
	svc   *Service
	repo  *memory.AppointmentRepository
	cache *recordingCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	_, err := memory.NewPersonRepository(store).Create(context.Background(), &domain.Person{
		DNI: 1, FullName: "Ana", Email: "ana@example.com", Enabled: true,
	})
	require.NoError(t, err)

	f := &fixture{
		repo:  memory.NewAppointmentRepository(store),
		cache: &recordingCache{},
	}
	f.svc = NewService(f.repo, f.cache, memory.NewTxManager(store), logger.NewNop())
	return f
}

func (f *fixture) add(t *testing.T, slot string, status domain.AppointmentStatus) int64 {
	t.Helper()
	a, err := f.repo.Create(context.Background(), &domain.Appointment{
		Date: date, Slot: types.MustTimeString(slot), Status: status, PersonDNI: 1,
	})
	require.NoError(t, err)
	return a.ID
}

func TestService_Cancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.add(t, "09:00", domain.StatusPending)

	resp, err := f.svc.Cancel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	assert.Len(t, f.cache.invalidated, 1)

	// повторная отмена ничего не меняет
	resp, err = f.svc.Cancel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	assert.Len(t, f.cache.invalidated, 1)

	attended := f.add(t, "10:00", domain.StatusAttended)
	_, err = f.svc.Cancel(ctx, attended)
	assert.ErrorIs(t, err, ErrImmutable)

	_, err = f.svc.Cancel(ctx, 999)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestService_Confirm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.add(t, "09:00", domain.StatusPending)

	resp, err := f.svc.Confirm(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Status)

	resp, err = f.svc.Confirm(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Status)

	for _, status := range []domain.AppointmentStatus{domain.StatusCancelled, domain.StatusAttended} {
		other := f.add(t, "11:00", status)
		_, err := f.svc.Confirm(ctx, other)
		assert.ErrorIs(t, err, ErrImmutable)
		require.NoError(t, f.repo.Delete(ctx, other))
	}
}

func TestService_Attend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.add(t, "09:00", domain.StatusConfirmed)

	resp, err := f.svc.Attend(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "attended", resp.Status)

	// посещённая запись неизменяема
	_, err = f.svc.Attend(ctx, id)
	assert.ErrorIs(t, err, ErrImmutable)
	_, err = f.svc.Confirm(ctx, id)
	assert.ErrorIs(t, err, ErrImmutable)
	assert.ErrorIs(t, f.svc.Delete(ctx, id), ErrImmutable)

	cancelled := f.add(t, "09:30", domain.StatusCancelled)
	_, err = f.svc.Attend(ctx, cancelled)
	assert.ErrorIs(t, err, ErrImmutable)
}

func TestService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.add(t, "09:00", domain.StatusCancelled)
	require.NoError(t, f.svc.Delete(ctx, id))
	assert.Len(t, f.cache.invalidated, 1)

	_, err := f.svc.GetByID(ctx, id)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	assert.ErrorIs(t, f.svc.Delete(ctx, id), ErrAppointmentNotFound)
}

func TestService_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.add(t, "10:00", domain.StatusPending)
	f.add(t, "09:00", domain.StatusConfirmed)
	f.add(t, "09:00", domain.StatusCancelled)

	all, err := f.svc.List(ctx, &models.ListAppointmentsRequest{Date: ptr.Ptr(date)})
	require.NoError(t, err)
	require.Len(t, all.Appointments, 3)
	assert.Equal(t, "09:00", all.Appointments[0].Slot)
	assert.Equal(t, "10:00", all.Appointments[2].Slot)

	confirmed, err := f.svc.List(ctx, &models.ListAppointmentsRequest{Status: ptr.Ptr("confirmed")})
	require.NoError(t, err)
	require.Len(t, confirmed.Appointments, 1)
	assert.Equal(t, "2026-06-10", confirmed.Appointments[0].Date)

	none, err := f.svc.List(ctx, &models.ListAppointmentsRequest{PersonDNI: ptr.Ptr(int64(2))})
	require.NoError(t, err)
	assert.Empty(t, none.Appointments)

	_, err = f.svc.List(ctx, &models.ListAppointmentsRequest{Status: ptr.Ptr("unknown")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
