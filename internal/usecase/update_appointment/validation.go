package update_appointment

import (
	"fmt"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
)

// validateRequest проверяет формат полей, бизнес-проверки выполняются в транзакции
func validateRequest(req *Request) (*domain.AppointmentStatus, error) {
	if req.ID <= 0 {
		return nil, fmt.Errorf("%w: appointment id must be positive", ErrInvalidInput)
	}

	if req.Date == nil && req.Slot == nil && req.PersonDNI == nil && req.Status == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	if req.Date != nil && req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date must not be empty", ErrInvalidInput)
	}

	if req.PersonDNI != nil && *req.PersonDNI <= 0 {
		return nil, fmt.Errorf("%w: personDni must be positive", ErrInvalidInput)
	}

	if req.Status == nil {
		return nil, nil
	}

	status, err := domain.ParseStatus(*req.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *req.Status)
	}
	return &status, nil
}
