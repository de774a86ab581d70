package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-TurnosService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-TurnosService/pkg/types"
)

// AppointmentRepository in-memory аналог appointment.Repository с теми же ошибками
type AppointmentRepository struct {
	store *Store
}

func NewAppointmentRepository(store *Store) *AppointmentRepository {
	return &AppointmentRepository{store: store}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.persons[a.PersonDNI]; !ok {
		return nil, appointmentRepo.ErrPersonNotFound
	}
	if a.OccupiesSlot() && s.slotTakenLocked(a.Date, a.Slot, 0) {
		return nil, appointmentRepo.ErrSlotTaken
	}

	s.nextID++
	now := s.now()
	a.ID = s.nextID
	a.Date = domain.DateOnly(a.Date)
	a.CreatedAt = now
	a.UpdatedAt = now
	s.appointments[a.ID] = *a

	out := *a
	return &out, nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.appointments[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	return &a, nil
}

// GetByIDForUpdate транзакции в Store сериализованы, отдельная блокировка строки не нужна
func (r *AppointmentRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Appointment, error) {
	return r.GetByID(ctx, id)
}

func (r *AppointmentRepository) List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Appointment, 0)
	for _, a := range s.appointments {
		if !matches(a, filter) {
			continue
		}
		a := a
		out = append(out, &a)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].Slot != out[j].Slot {
			return out[i].Slot.IsBefore(out[j].Slot)
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (r *AppointmentRepository) FindActiveBySlot(ctx context.Context, date time.Time, slot types.TimeString, excludeID int64) (*domain.Appointment, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.appointments {
		if a.ID != excludeID && a.OccupiesSlot() && sameDay(a.Date, date) && a.Slot == slot {
			return &a, nil
		}
	}
	return nil, appointmentRepo.ErrAppointmentNotFound
}

func (r *AppointmentRepository) OccupiedSlots(ctx context.Context, date time.Time) ([]types.TimeString, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	slots := make([]types.TimeString, 0)
	for _, a := range s.appointments {
		if a.OccupiesSlot() && sameDay(a.Date, date) {
			slots = append(slots, a.Slot)
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].IsBefore(slots[j]) })
	return slots, nil
}

func (r *AppointmentRepository) CountByPersonAndStatusSince(ctx context.Context, dni int64, status domain.AppointmentStatus, since time.Time) (int, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	from := domain.DateOnly(since)
	count := 0
	for _, a := range s.appointments {
		if a.PersonDNI == dni && a.Status == status && !a.Date.Before(from) {
			count++
		}
	}
	return count, nil
}

func (r *AppointmentRepository) DatesByPerson(ctx context.Context, dni int64) ([]time.Time, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]time.Time)
	for _, a := range s.appointments {
		if a.PersonDNI == dni {
			seen[a.Date.Format(domain.DateFormat)] = a.Date
		}
	}

	dates := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

func (r *AppointmentRepository) CountCancelledByPerson(ctx context.Context, minCount int) ([]*domain.CancellerStat, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[int64]int)
	for _, a := range s.appointments {
		if a.IsCancelled() {
			counts[a.PersonDNI]++
		}
	}

	stats := make([]*domain.CancellerStat, 0)
	for dni, n := range counts {
		if n < minCount {
			continue
		}
		stats = append(stats, &domain.CancellerStat{
			PersonDNI:      dni,
			FullName:       s.persons[dni].FullName,
			CancelledCount: n,
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].CancelledCount != stats[j].CancelledCount {
			return stats[i].CancelledCount > stats[j].CancelledCount
		}
		return stats[i].PersonDNI < stats[j].PersonDNI
	})
	return stats, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.appointments[a.ID]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	if _, ok := s.persons[a.PersonDNI]; !ok {
		return nil, appointmentRepo.ErrPersonNotFound
	}
	if a.OccupiesSlot() && s.slotTakenLocked(a.Date, a.Slot, a.ID) {
		return nil, appointmentRepo.ErrSlotTaken
	}

	a.Date = domain.DateOnly(a.Date)
	a.CreatedAt = current.CreatedAt
	a.UpdatedAt = s.now()
	s.appointments[a.ID] = *a

	out := *a
	return &out, nil
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	if status != domain.StatusCancelled && !a.OccupiesSlot() && s.slotTakenLocked(a.Date, a.Slot, a.ID) {
		return appointmentRepo.ErrSlotTaken
	}

	a.Status = status
	a.UpdatedAt = s.now()
	s.appointments[id] = a
	return nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.appointments[id]; !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	delete(s.appointments, id)
	return nil
}

// slotTakenLocked аналог частичного уникального индекса appointments_active_slot_uidx
func (s *Store) slotTakenLocked(date time.Time, slot types.TimeString, excludeID int64) bool {
	for _, a := range s.appointments {
		if a.ID != excludeID && a.OccupiesSlot() && sameDay(a.Date, date) && a.Slot == slot {
			return true
		}
	}
	return false
}

func matches(a domain.Appointment, f domain.AppointmentFilter) bool {
	if f.Date != nil && !sameDay(a.Date, *f.Date) {
		return false
	}
	if f.StartDate != nil && a.Date.Before(domain.DateOnly(*f.StartDate)) {
		return false
	}
	if f.EndDate != nil && a.Date.After(domain.DateOnly(*f.EndDate)) {
		return false
	}
	if f.PersonDNI != nil && a.PersonDNI != *f.PersonDNI {
		return false
	}
	if f.Status != nil {
		return a.Status == *f.Status
	}
	if f.ExcludeCancelled && a.IsCancelled() {
		return false
	}
	return true
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
