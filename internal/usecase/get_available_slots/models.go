package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-TurnosService/pkg/types"
)

// Request модель запроса на получение свободных слотов
type Request struct {
	Date time.Time // Дата (без времени)
}

// Response модель ответа со свободными слотами по возрастанию
type Response struct {
	Date  time.Time
	Slots []types.TimeString
}
