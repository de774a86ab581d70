package models

import (
	"time"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
)

// Request модели

// CreatePersonRequest запрос на регистрацию человека
type CreatePersonRequest struct {
	DNI       int64  `json:"dni"`
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birthDate"`         // "1990-05-17"
	Enabled   *bool  `json:"enabled,omitempty"` // по умолчанию true
}

// UpdatePersonRequest запрос на обновление человека
// Все поля опциональны - обновляются только переданные значения
type UpdatePersonRequest struct {
	FullName  *string `json:"fullName,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	BirthDate *string `json:"birthDate,omitempty"`
	Enabled   *bool   `json:"enabled,omitempty"`
}

// ListPersonsRequest фильтр списка людей
type ListPersonsRequest struct {
	Enabled *bool
}

// Response модели

// PersonResponse ответ с данными человека
type PersonResponse struct {
	DNI       int64     `json:"dni"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	BirthDate string    `json:"birthDate"`
	Age       int       `json:"age"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PersonListResponse ответ со списком людей
type PersonListResponse struct {
	Persons []PersonResponse `json:"persons"`
}

// Методы конвертации

// FromDomainPerson конвертирует domain модель в DTO, возраст считается на момент now
func FromDomainPerson(p *domain.Person, now time.Time) *PersonResponse {
	if p == nil {
		return nil
	}

	return &PersonResponse{
		DNI:       p.DNI,
		FullName:  p.FullName,
		Email:     p.Email,
		Phone:     p.Phone,
		BirthDate: p.BirthDate.Format(domain.DateFormat),
		Age:       p.Age(now),
		Enabled:   p.Enabled,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// FromDomainPersonList конвертирует список domain моделей в DTO
func FromDomainPersonList(persons []*domain.Person, now time.Time) *PersonListResponse {
	resp := &PersonListResponse{
		Persons: make([]PersonResponse, 0, len(persons)),
	}

	for _, p := range persons {
		if item := FromDomainPerson(p, now); item != nil {
			resp.Persons = append(resp.Persons, *item)
		}
	}

	return resp
}

// ApplyToPerson применяет обновления к существующему человеку
// birthDate уже разобрана вызывающим кодом
func (r *UpdatePersonRequest) ApplyToPerson(p *domain.Person, birthDate *time.Time) {
	if r.FullName != nil {
		p.FullName = *r.FullName
	}
	if r.Email != nil {
		p.Email = *r.Email
	}
	if r.Phone != nil {
		p.Phone = *r.Phone
	}
	if birthDate != nil {
		p.BirthDate = *birthDate
	}
	if r.Enabled != nil {
		p.Enabled = *r.Enabled
	}
}
