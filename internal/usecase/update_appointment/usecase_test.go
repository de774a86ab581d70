package update_appointment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
	"github.com/m04kA/SMC-TurnosService/internal/infra/cache/availability"
	"github.com/m04kA/SMC-TurnosService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-TurnosService/internal/slots"
	"github.com/m04kA/SMC-TurnosService/pkg/logger"
	"github.com/m04kA/SMC-TurnosService/pkg/ptr"
	"github.com/m04kA/SMC-TurnosService/pkg/types"
)

var date = time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

type fixture struct {
	uc           *UseCase
	persons      *memory.PersonRepository
	appointments *memory.AppointmentRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	calendar, err := slots.NewCalendar(types.MustTimeString("09:00"), types.MustTimeString("17:00"), 30)
	require.NoError(t, err)

	store := memory.NewStore()
	f := &fixture{
		persons:      memory.NewPersonRepository(store),
		appointments: memory.NewAppointmentRepository(store),
	}
	f.uc = NewUseCase(f.appointments, f.persons, calendar, availability.Noop{}, memory.NewTxManager(store), logger.NewNop())
	return f
}

func (f *fixture) addPerson(t *testing.T, dni int64, enabled bool) {
	t.Helper()
	_, err := f.persons.Create(context.Background(), &domain.Person{
		DNI: dni, FullName: "Person", Email: fmt.Sprintf("p%d@example.com", dni), Enabled: enabled,
	})
	require.NoError(t, err)
}

func (f *fixture) addAppointment(t *testing.T, dni int64, slot string, status domain.AppointmentStatus) *domain.Appointment {
	t.Helper()
	a, err := f.appointments.Create(context.Background(), &domain.Appointment{
		Date: date, Slot: types.MustTimeString(slot), Status: status, PersonDNI: dni,
	})
	require.NoError(t, err)
	return a
}

func TestExecute_MoveToFreeSlot(t *testing.T) {
	f := newFixture(t)
	f.addPerson(t, 1, true)
	a := f.addAppointment(t, 1, "09:00", domain.StatusPending)

	resp, err := f.uc.Execute(context.Background(), &Request{
		ID:   a.ID,
		Date: ptr.Ptr(date.AddDate(0, 0, 1)),
		Slot: ptr.Ptr("11:30"),
	})
	require.NoError(t, err)
	assert.Equal(t, types.MustTimeString("11:30"), resp.Slot)
	assert.True(t, resp.Date.Equal(date.AddDate(0, 0, 1)))
	assert.Equal(t, "pending", resp.Status)
}

func TestExecute_MoveToOccupiedSlot(t *testing.T) {
	f := newFixture(t)
	f.addPerson(t, 1, true)
	a := f.addAppointment(t, 1, "09:00", domain.StatusPending)
	f.addAppointment(t, 1, "09:30", domain.StatusConfirmed)

	_, err := f.uc.Execute(context.Background(), &Request{ID: a.ID, Slot: ptr.Ptr("09:30")})
	assert.ErrorIs(t, err, ErrSlotOccupied)

	// запись не изменилась
	got, err := f.appointments.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, types.MustTimeString("09:00"), got.Slot)
}

func TestExecute_SameSlotIsNotConflict(t *testing.T) {
	f := newFixture(t)
	f.addPerson(t, 1, true)
	a := f.addAppointment(t, 1, "09:00", domain.StatusPending)

	resp, err := f.uc.Execute(context.Background(), &Request{ID: a.ID, Slot: ptr.Ptr("09:00"), Status: ptr.Ptr("confirmed")})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Status)
}

func TestExecute_Immutable(t *testing.T) {
	f := newFixture(t)
	f.addPerson(t, 1, true)
	attended := f.addAppointment(t, 1, "09:00", domain.StatusAttended)
	cancelled := f.addAppointment(t, 1, "10:00", domain.StatusCancelled)

	for _, id := range []int64{attended.ID, cancelled.ID} {
		_, err := f.uc.Execute(context.Background(), &Request{ID: id, Status: ptr.Ptr("pending")})
		assert.ErrorIs(t, err, ErrImmutable)
	}
}

func TestExecute_PersonTransfer(t *testing.T) {
	f := newFixture(t)
	f.addPerson(t, 1, true)
	f.addPerson(t, 2, false)
	f.addPerson(t, 3, true)
	a := f.addAppointment(t, 1, "09:00", domain.StatusPending)

	_, err := f.uc.Execute(context.Background(), &Request{ID: a.ID, PersonDNI: ptr.Ptr(int64(2))})
	assert.ErrorIs(t, err, ErrPersonDisabled)

	_, err = f.uc.Execute(context.Background(), &Request{ID: a.ID, PersonDNI: ptr.Ptr(int64(99))})
	assert.ErrorIs(t, err, ErrPersonNotFound)

	resp, err := f.uc.Execute(context.Background(), &Request{ID: a.ID, PersonDNI: ptr.Ptr(int64(3))})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.PersonDNI)
}

func TestExecute_Errors(t *testing.T) {
	f := newFixture(t)
	f.addPerson(t, 1, true)
	a := f.addAppointment(t, 1, "09:00", domain.StatusPending)

	_, err := f.uc.Execute(context.Background(), &Request{ID: 999, Status: ptr.Ptr("confirmed")})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	_, err = f.uc.Execute(context.Background(), &Request{ID: a.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(context.Background(), &Request{ID: a.ID, Status: ptr.Ptr("archived")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(context.Background(), &Request{ID: a.ID, Slot: ptr.Ptr("09:10")})
	assert.ErrorIs(t, err, ErrInvalidTimeSlot)
	assert.ErrorIs(t, err, slots.ErrInvalidGranularity)
}

func TestExecute_ConcurrentMovesIntoSameSlot(t *testing.T) {
	f := newFixture(t)
	f.addPerson(t, 1, true)

	const workers = 10
	ids := make([]int64, 0, workers)
	for i := 0; i < workers; i++ {
		slot, err := types.NewTimeStringFromMinutes(11*60 + 30*i)
		require.NoError(t, err)
		ids = append(ids, f.addAppointment(t, 1, slot.String(), domain.StatusPending).ID)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		moved    int
		occupied int
		other    []error
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := f.uc.Execute(context.Background(), &Request{ID: id, Slot: ptr.Ptr("09:00")})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				moved++
			case errors.Is(err, ErrSlotOccupied):
				occupied++
			default:
				other = append(other, err)
			}
		}(id)
	}
	wg.Wait()

	assert.Empty(t, other)
	assert.Equal(t, 1, moved)
	assert.Equal(t, workers-1, occupied)

	taken, err := f.appointments.List(context.Background(), domain.AppointmentFilter{Date: &date})
	require.NoError(t, err)
	atNine := 0
	for _, a := range taken {
		if a.Slot == types.MustTimeString("09:00") {
			atNine++
		}
	}
	assert.Equal(t, 1, atNine)
}
