package update_appointment

import (
	"time"

	"github.com/m04kA/SMC-TurnosService/pkg/types"
)

// Request модель частичного обновления записи
// nil поле означает "не менять"
type Request struct {
	ID        int64
	Date      *time.Time
	Slot      *string
	PersonDNI *int64
	Status    *string
}

// Response модель ответа с обновлённой записью
type Response struct {
	ID        int64
	PersonDNI int64
	Date      time.Time
	Slot      types.TimeString
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
