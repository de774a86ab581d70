package create_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
	"github.com/m04kA/SMC-TurnosService/pkg/types"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error)
	FindActiveBySlot(ctx context.Context, date time.Time, slot types.TimeString, excludeID int64) (*domain.Appointment, error)
	CountByPersonAndStatusSince(ctx context.Context, dni int64, status domain.AppointmentStatus, since time.Time) (int, error)
}

// PersonRepository интерфейс репозитория людей
type PersonRepository interface {
	GetByDNI(ctx context.Context, dni int64) (*domain.Person, error)
}

// SlotCalendar сетка допустимых слотов
type SlotCalendar interface {
	Parse(text string) (types.TimeString, error)
}

// AvailabilityCache кэш свободных слотов, сбрасывается после изменения занятости
type AvailabilityCache interface {
	Invalidate(ctx context.Context, dates ...time.Time) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
