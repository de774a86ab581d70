package slots

import "errors"

var (
	// ErrInvalidFormat возвращается, когда строка не в формате HH:MM
	ErrInvalidFormat = errors.New("slots: invalid time format, expected HH:MM")

	// ErrInvalidGranularity возвращается, когда время не попадает на шаг сетки
	ErrInvalidGranularity = errors.New("slots: time is not aligned to slot step")

	// ErrOutOfRange возвращается, когда время вне рабочего дня
	ErrOutOfRange = errors.New("slots: time is outside working hours")

	// ErrInvalidConfig возвращается при некорректных параметрах сетки
	ErrInvalidConfig = errors.New("slots: invalid calendar configuration")
)
