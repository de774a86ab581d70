package update_appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("update_appointment: appointment not found")

	// ErrImmutable возвращается при попытке изменить посещённую или отменённую запись
	ErrImmutable = errors.New("update_appointment: appointment can no longer be modified")

	// ErrPersonNotFound возвращается, когда новый владелец записи не найден
	ErrPersonNotFound = errors.New("update_appointment: person not found")

	// ErrPersonDisabled возвращается, когда новый владелец записи отключён
	ErrPersonDisabled = errors.New("update_appointment: person is disabled")

	// ErrInvalidTimeSlot оборачивает ошибку сетки слотов
	ErrInvalidTimeSlot = errors.New("update_appointment: invalid time slot")

	// ErrSlotOccupied возвращается, когда новый слот уже занят другой записью
	ErrSlotOccupied = errors.New("update_appointment: slot is already occupied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("update_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("update_appointment: internal error")
)
