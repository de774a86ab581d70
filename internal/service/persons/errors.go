package persons

import "errors"

var (
	// ErrPersonNotFound возвращается, когда человек не найден
	ErrPersonNotFound = errors.New("persons: person not found")

	// ErrDuplicateDNI возвращается при попытке создать человека с существующим DNI
	ErrDuplicateDNI = errors.New("persons: dni already registered")

	// ErrDuplicateEmail возвращается, когда email уже занят другим человеком
	ErrDuplicateEmail = errors.New("persons: email already registered")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("persons: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("persons: internal error")
)
