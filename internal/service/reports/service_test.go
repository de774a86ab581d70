package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
	"github.com/m04kA/SMC-TurnosService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-TurnosService/pkg/logger"
	"github.com/m04kA/SMC-TurnosService/pkg/types"
)

var (
	day1 = time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	day2 = time.Date(2026, 6, 11, 0, 0, 0, 0, time.UTC)
	day3 = time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC)
)

func newService(t *testing.T) *Service {
	t.Helper()

	store := memory.NewStore()
	persons := memory.NewPersonRepository(store)
	appointments := memory.NewAppointmentRepository(store)
	ctx := context.Background()

	for _, p := range []*domain.Person{
		{DNI: 1, FullName: "Ana", Email: "ana@example.com", Enabled: true, BirthDate: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)},
		{DNI: 2, FullName: "Bob", Email: "bob@example.com", Enabled: false, BirthDate: time.Date(1985, 1, 1, 0, 0, 0, 0, time.UTC)},
	} {
		_, err := persons.Create(ctx, p)
		require.NoError(t, err)
	}

	seed := []struct {
		date   time.Time
		slot   string
		status domain.AppointmentStatus
		dni    int64
	}{
		{day1, "09:00", domain.StatusConfirmed, 1},
		{day1, "09:30", domain.StatusCancelled, 2},
		{day1, "10:00", domain.StatusCancelled, 2},
		{day2, "09:00", domain.StatusCancelled, 1},
		{day2, "11:00", domain.StatusConfirmed, 2},
		{day3, "12:00", domain.StatusConfirmed, 1},
	}
	for _, s := range seed {
		_, err := appointments.Create(ctx, &domain.Appointment{
			Date: s.date, Slot: types.MustTimeString(s.slot), Status: s.status, PersonDNI: s.dni,
		})
		require.NoError(t, err)
	}

	svc := NewService(appointments, persons, memory.NewTxManager(store), logger.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestService_ByDate(t *testing.T) {
	svc := newService(t)

	report, err := svc.ByDate(context.Background(), day1)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, "09:00", report.Appointments[0].Slot)

	_, err = svc.ByDate(context.Background(), time.Time{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_ByPerson(t *testing.T) {
	svc := newService(t)

	report, err := svc.ByPerson(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Ana", report.Person.FullName)
	assert.Equal(t, 36, report.Person.Age)
	assert.Equal(t, 3, report.Total)

	_, err = svc.ByPerson(context.Background(), 99)
	assert.ErrorIs(t, err, ErrPersonNotFound)
}

func TestService_InPeriod(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	cancelled, err := svc.CancelledInPeriod(ctx, day1, day2)
	require.NoError(t, err)
	assert.Equal(t, 3, cancelled.Total)
	assert.Equal(t, "cancelled", cancelled.Status)

	confirmed, err := svc.ConfirmedInPeriod(ctx, day2, day3)
	require.NoError(t, err)
	assert.Equal(t, 2, confirmed.Total)

	_, err = svc.ConfirmedInPeriod(ctx, day3, day1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_FrequentCancellers(t *testing.T) {
	svc := newService(t)

	report, err := svc.FrequentCancellers(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, report.Persons, 1)
	assert.Equal(t, int64(2), report.Persons[0].PersonDNI)
	assert.Equal(t, "Bob", report.Persons[0].FullName)
	assert.Equal(t, 2, report.Persons[0].CancelledCount)

	report, err = svc.FrequentCancellers(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, report.Persons, 2)

	_, err = svc.FrequentCancellers(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_PersonsStatus(t *testing.T) {
	svc := newService(t)

	report, err := svc.PersonsStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.EnabledCount)
	assert.Equal(t, 1, report.DisabledCount)
	assert.Equal(t, int64(2), report.Disabled[0].DNI)
}

func TestWriteCSV(t *testing.T) {
	svc := newService(t)

	report, err := svc.ByDate(context.Background(), day1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, report))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"id", "date", "slot", "status", "person_dni"}, records[0])
	assert.Equal(t, []string{"2026-06-10", "09:00", "confirmed", "1"}, records[1][1:])

	cancellers, err := svc.FrequentCancellers(context.Background(), 2)
	require.NoError(t, err)

	buf.Reset()
	require.NoError(t, WriteCSV(&buf, cancellers))
	assert.Equal(t, "person_dni,full_name,cancelled_count\n2,Bob,2\n", buf.String())
}
