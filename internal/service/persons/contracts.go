package persons

import (
	"context"
	"time"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
)

// PersonRepository интерфейс репозитория людей
type PersonRepository interface {
	Create(ctx context.Context, person *domain.Person) (*domain.Person, error)
	GetByDNI(ctx context.Context, dni int64) (*domain.Person, error)
	ExistsByEmail(ctx context.Context, email string, excludeDNI int64) (bool, error)
	List(ctx context.Context, filter domain.PersonFilter) ([]*domain.Person, error)
	Update(ctx context.Context, person *domain.Person) (*domain.Person, error)
	Delete(ctx context.Context, dni int64) error
}

// AppointmentRepository нужен для сброса кэша по датам записей удаляемого человека
type AppointmentRepository interface {
	DatesByPerson(ctx context.Context, dni int64) ([]time.Time, error)
}

// AvailabilityCache кэш свободных слотов
type AvailabilityCache interface {
	Invalidate(ctx context.Context, dates ...time.Time) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (возраст считается на сегодня)
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
