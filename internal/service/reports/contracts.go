package reports

import (
	"context"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error)
	CountCancelledByPerson(ctx context.Context, minCount int) ([]*domain.CancellerStat, error)
}

// PersonRepository интерфейс репозитория людей
type PersonRepository interface {
	GetByDNI(ctx context.Context, dni int64) (*domain.Person, error)
	List(ctx context.Context, filter domain.PersonFilter) ([]*domain.Person, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
