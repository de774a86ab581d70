package domain

import "time"

// Default configuration values
const (
	DefaultSlotStart              = "09:00"
	DefaultSlotEnd                = "17:00"
	DefaultSlotStepMinutes        = 30
	DefaultCancellationWindowDays = 180
	DefaultMaxRecentCancellations = 5
	DefaultStatus                 = StatusPending
)

// Business validation constants
const (
	MaxFullNameLength = 200
	MaxPhoneLength    = 30
	MaxEmailLength    = 254
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// DateOnly обнуляет время, оставляя календарную дату в той же локации
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
