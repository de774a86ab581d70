package domain

import "time"

// Person represents a registered person who can book appointments
type Person struct {
	DNI       int64 // национальный идентификатор, уникален
	FullName  string
	Email     string // уникален
	Phone     string
	BirthDate time.Time
	Enabled   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Age возвращает число полных лет на момент now
// Дата рождения берётся как календарная дата и сравнивается с днём now в его часовом поясе
func (p *Person) Age(now time.Time) int {
	today := DateOnly(now)
	y, m, d := p.BirthDate.Date()
	birth := time.Date(y, m, d, 0, 0, 0, 0, today.Location())

	age := today.Year() - birth.Year()
	if birth.AddDate(age, 0, 0).After(today) {
		age--
	}
	return age
}

// CanBook returns true if the person may receive new appointments
func (p *Person) CanBook() bool {
	return p.Enabled
}

// PersonFilter фильтр для выборки людей
type PersonFilter struct {
	Enabled *bool
}
