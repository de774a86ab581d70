package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-TurnosService/pkg/types"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	// OccupiedSlots возвращает слоты, занятые неотменёнными записями на дату
	OccupiedSlots(ctx context.Context, date time.Time) ([]types.TimeString, error)
}

// SlotCalendar сетка допустимых слотов
type SlotCalendar interface {
	Available(occupied []types.TimeString) []types.TimeString
}

// AvailabilityCache кэш свободных слотов по дате
// Generation меняется при каждой инвалидации даты, SetIfUnchanged пишет только при совпадении
type AvailabilityCache interface {
	Get(ctx context.Context, date time.Time) ([]types.TimeString, bool, error)
	Generation(ctx context.Context, date time.Time) (int64, error)
	SetIfUnchanged(ctx context.Context, date time.Time, generation int64, slots []types.TimeString) (bool, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
