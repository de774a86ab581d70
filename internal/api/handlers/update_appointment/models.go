package update_appointment

import (
	"time"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
	updateAppointment "github.com/m04kA/SMC-TurnosService/internal/usecase/update_appointment"
)

// UpdateAppointmentRequest HTTP request model, все поля опциональны
type UpdateAppointmentRequest struct {
	PersonDNI *int64  `json:"personDni,omitempty"`
	Date      *string `json:"date,omitempty"`
	Slot      *string `json:"slot,omitempty"`
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
func (r *UpdateAppointmentRequest) ToUseCaseRequest(id int64) (*updateAppointment.Request, error) {
	req := &updateAppointment.Request{
		ID:        id,
		Slot:      r.Slot,
		PersonDNI: r.PersonDNI,
		Status:    r.Status,
	}

	if r.Date != nil {
		date, err := time.Parse(domain.DateFormat, *r.Date)
		if err != nil {
			return nil, err
		}
		req.Date = &date
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *updateAppointment.Response) *AppointmentResponse {
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
