package domain

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-TurnosService/pkg/types"
)

// ErrInvalidStatus возвращается при неизвестном статусе записи
var ErrInvalidStatus = errors.New("domain: invalid appointment status")

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusAttended  AppointmentStatus = "attended"
)

// AllStatuses все допустимые статусы записи
var AllStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusCancelled,
	StatusAttended,
}

// ParseStatus конвертирует строку в AppointmentStatus с валидацией
func ParseStatus(s string) (AppointmentStatus, error) {
	status := AppointmentStatus(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// IsValid returns true for a known status
func (s AppointmentStatus) IsValid() bool {
	for _, valid := range AllStatuses {
		if s == valid {
			return true
		}
	}
	return false
}

// Appointment represents a booking of one person into one (date, slot) pair
type Appointment struct {
	ID        int64
	Date      time.Time        // только дата, время обнулено
	Slot      types.TimeString // "HH:MM" из сетки слотов
	Status    AppointmentStatus
	PersonDNI int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OccupiesSlot returns true if the appointment holds its (date, slot) pair
func (a *Appointment) OccupiesSlot() bool {
	return a.Status != StatusCancelled
}

// IsAttended returns true for the terminal state
func (a *Appointment) IsAttended() bool {
	return a.Status == StatusAttended
}

// IsCancelled returns true if the appointment has been cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == StatusCancelled
}

// CanBeModified returns true if fields and status may still change
func (a *Appointment) CanBeModified() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// CanBeDeleted returns true unless the appointment was attended
func (a *Appointment) CanBeDeleted() bool {
	return !a.IsAttended()
}

// AppointmentFilter фильтр для выборки записей
type AppointmentFilter struct {
	Date             *time.Time         // Конкретная дата (опционально)
	StartDate        *time.Time         // Начало периода включительно (опционально)
	EndDate          *time.Time         // Конец периода включительно (опционально)
	PersonDNI        *int64             // Фильтр по человеку (опционально)
	Status           *AppointmentStatus // Фильтр по статусу (опционально)
	ExcludeCancelled bool               // Исключить отменённые записи
}
