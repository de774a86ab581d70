package create_appointment

import "errors"

var (
	// ErrPersonNotFound возвращается, когда человек с указанным DNI не найден
	ErrPersonNotFound = errors.New("create_appointment: person not found")

	// ErrPersonDisabled возвращается, когда человек отключён и не может записываться
	ErrPersonDisabled = errors.New("create_appointment: person is disabled")

	// ErrTooManyRecentCancellations возвращается, когда у человека слишком много недавних отмен
	ErrTooManyRecentCancellations = errors.New("create_appointment: too many recent cancellations")

	// ErrInvalidTimeSlot возвращается, когда слот не прошёл проверку сетки
	// Оборачивает slots.ErrInvalidFormat, slots.ErrInvalidGranularity или slots.ErrOutOfRange
	ErrInvalidTimeSlot = errors.New("create_appointment: invalid time slot")

	// ErrSlotOccupied возвращается, когда слот на эту дату уже занят
	ErrSlotOccupied = errors.New("create_appointment: slot is already occupied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)
