package reports

import "errors"

var (
	// ErrPersonNotFound возвращается, когда человек для отчёта не найден
	ErrPersonNotFound = errors.New("reports: person not found")

	// ErrInvalidInput возвращается при некорректных параметрах отчёта
	ErrInvalidInput = errors.New("reports: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("reports: internal error")
)
