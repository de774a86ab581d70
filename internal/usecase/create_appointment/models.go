package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-TurnosService/pkg/types"
)

// Rules бизнес-правила записи
type Rules struct {
	CancellationWindowDays int // окно подсчёта отмен, дней назад от сегодня
	MaxRecentCancellations int // при стольких отменах в окне запись запрещена
}

// Request модель запроса на создание записи
type Request struct {
	PersonDNI int64     // DNI человека
	Date      time.Time // Дата записи (без времени)
	Slot      string    // Время слота "HH:MM", проверяется по сетке
	Status    *string   // Начальный статус (опционально, по умолчанию pending)
}

// Response модель ответа с созданной записью
type Response struct {
	ID        int64
	PersonDNI int64
	Date      time.Time
	Slot      types.TimeString
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
