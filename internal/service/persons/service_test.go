package persons

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
	"github.com/m04kA/SMC-TurnosService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-TurnosService/internal/service/persons/models"
	"github.com/m04kA/SMC-TurnosService/pkg/logger"
	"github.com/m04kA/SMC-TurnosService/pkg/ptr"
	"github.com/m04kA/SMC-TurnosService/pkg/types"
)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type recordingCache struct {
	invalidated []time.Time
}

func (c *recordingCache) Invalidate(_ context.Context, dates ...time.Time) error {
	c.invalidated = append(c.invalidated, dates...)
	return nil
}

type fixture struct {
	svc          *Service
	appointments *memory.AppointmentRepository
	cache        *recordingCache
}

func newFixture() *fixture {
	store := memory.NewStore()
	f := &fixture{
		appointments: memory.NewAppointmentRepository(store),
		cache:        &recordingCache{},
	}
	f.svc = NewService(
		memory.NewPersonRepository(store),
		f.appointments,
		f.cache,
		memory.NewTxManager(store),
		logger.NewNop(),
	).WithTimeProvider(fixedTime{now: time.Date(2026, 5, 16, 10, 0, 0, 0, time.UTC)})
	return f
}

func validRequest(dni int64, email string) *models.CreatePersonRequest {
	return &models.CreatePersonRequest{
		DNI:       dni,
		FullName:  "Ana Pérez",
		Email:     email,
		Phone:     "+54 11 5555 0000",
		BirthDate: "1990-05-17",
	}
}

func TestService_Create(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.Create(context.Background(), validRequest(30111222, "ana@example.com"))
	require.NoError(t, err)

	assert.Equal(t, int64(30111222), resp.DNI)
	assert.True(t, resp.Enabled)
	assert.Equal(t, "1990-05-17", resp.BirthDate)
	// день рождения завтра, полных лет ещё 35
	assert.Equal(t, 35, resp.Age)
}

func TestService_CreateDuplicates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, validRequest(1, "ana@example.com"))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, validRequest(1, "other@example.com"))
	assert.ErrorIs(t, err, ErrDuplicateDNI)

	_, err = f.svc.Create(ctx, validRequest(2, "Ana@Example.com"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestService_CreateValidation(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name   string
		modify func(r *models.CreatePersonRequest)
	}{
		{name: "zero dni", modify: func(r *models.CreatePersonRequest) { r.DNI = 0 }},
		{name: "empty name", modify: func(r *models.CreatePersonRequest) { r.FullName = "  " }},
		{name: "bad email", modify: func(r *models.CreatePersonRequest) { r.Email = "ana.example.com" }},
		{name: "bad birth date", modify: func(r *models.CreatePersonRequest) { r.BirthDate = "17/05/1990" }},
		{name: "missing birth date", modify: func(r *models.CreatePersonRequest) { r.BirthDate = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest(5, "ana@example.com")
			tt.modify(req)
			_, err := f.svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestService_Update(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, validRequest(1, "ana@example.com"))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, validRequest(2, "bob@example.com"))
	require.NoError(t, err)

	resp, err := f.svc.Update(ctx, 1, &models.UpdatePersonRequest{
		FullName: ptr.Ptr("Ana María Pérez"),
		Enabled:  ptr.Ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana María Pérez", resp.FullName)
	assert.False(t, resp.Enabled)
	assert.Equal(t, "ana@example.com", resp.Email)

	_, err = f.svc.Update(ctx, 1, &models.UpdatePersonRequest{Email: ptr.Ptr("BOB@example.com")})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	// свой email можно передать повторно
	_, err = f.svc.Update(ctx, 1, &models.UpdatePersonRequest{Email: ptr.Ptr("ana@example.com")})
	assert.NoError(t, err)

	_, err = f.svc.Update(ctx, 99, &models.UpdatePersonRequest{Enabled: ptr.Ptr(true)})
	assert.ErrorIs(t, err, ErrPersonNotFound)
}

func TestService_List(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, validRequest(2, "b@example.com"))
	require.NoError(t, err)
	req := validRequest(1, "a@example.com")
	req.Enabled = ptr.Ptr(false)
	_, err = f.svc.Create(ctx, req)
	require.NoError(t, err)

	all, err := f.svc.List(ctx, &models.ListPersonsRequest{})
	require.NoError(t, err)
	require.Len(t, all.Persons, 2)
	assert.Equal(t, int64(1), all.Persons[0].DNI)

	disabled, err := f.svc.List(ctx, &models.ListPersonsRequest{Enabled: ptr.Ptr(false)})
	require.NoError(t, err)
	require.Len(t, disabled.Persons, 1)
	assert.Equal(t, int64(1), disabled.Persons[0].DNI)
}

func TestService_DeleteCascadesAndInvalidates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, validRequest(1, "ana@example.com"))
	require.NoError(t, err)

	day := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	a, err := f.appointments.Create(ctx, &domain.Appointment{
		Date: day, Slot: types.MustTimeString("09:00"), Status: domain.StatusPending, PersonDNI: 1,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, 1))

	_, err = f.svc.GetByDNI(ctx, 1)
	assert.ErrorIs(t, err, ErrPersonNotFound)

	_, err = f.appointments.GetByID(ctx, a.ID)
	assert.Error(t, err)

	require.Len(t, f.cache.invalidated, 1)
	assert.True(t, f.cache.invalidated[0].Equal(day))

	assert.ErrorIs(t, f.svc.Delete(ctx, 1), ErrPersonNotFound)
}
