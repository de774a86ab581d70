package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
	createAppointment "github.com/m04kA/SMC-TurnosService/internal/usecase/create_appointment"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	PersonDNI int64   `json:"personDni"`
	Date      string  `json:"date"` // "2026-06-10"
	Slot      string  `json:"slot"` // "09:30"
	Status    *string `json:"status,omitempty"`
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID        int64  `json:"id"`
	PersonDNI int64  `json:"personDni"`
	Date      string `json:"date"`
	Slot      string `json:"slot"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
// Слот передаётся строкой, сетку проверяет use case
func (r *CreateAppointmentRequest) ToUseCaseRequest() (*createAppointment.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	return &createAppointment.Request{
		PersonDNI: r.PersonDNI,
		Date:      date,
		Slot:      r.Slot,
		Status:    r.Status,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createAppointment.Response) *AppointmentResponse {
	return &AppointmentResponse{
		ID:        resp.ID,
		PersonDNI: resp.PersonDNI,
		Date:      resp.Date.Format(domain.DateFormat),
		Slot:      resp.Slot.String(),
		Status:    resp.Status,
		CreatedAt: resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt: resp.UpdatedAt.Format(time.RFC3339),
	}
}
