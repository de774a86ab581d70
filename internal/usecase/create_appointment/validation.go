package create_appointment

import (
	"fmt"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
)

// validateRequest проверяет поля, без которых нельзя искать человека
func validateRequest(req *Request) error {
	if req.PersonDNI <= 0 {
		return fmt.Errorf("%w: personDni must be positive", ErrInvalidInput)
	}

	// Проверяем, что дата не является нулевой
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	return nil
}

// parseStatus возвращает начальный статус записи, по умолчанию pending
func parseStatus(req *Request) (domain.AppointmentStatus, error) {
	if req.Status == nil {
		return domain.DefaultStatus, nil
	}

	status, err := domain.ParseStatus(*req.Status)
	if err != nil {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *req.Status)
	}

	return status, nil
}
