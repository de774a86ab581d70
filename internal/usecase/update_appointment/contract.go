package update_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
	"github.com/m04kA/SMC-TurnosService/pkg/types"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Appointment, error)
	FindActiveBySlot(ctx context.Context, date time.Time, slot types.TimeString, excludeID int64) (*domain.Appointment, error)
	Update(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error)
}

// PersonRepository интерфейс репозитория людей
type PersonRepository interface {
	GetByDNI(ctx context.Context, dni int64) (*domain.Person, error)
}

// SlotCalendar сетка допустимых слотов
type SlotCalendar interface {
	Parse(text string) (types.TimeString, error)
}

// AvailabilityCache кэш свободных слотов
type AvailabilityCache interface {
	Invalidate(ctx context.Context, dates ...time.Time) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
