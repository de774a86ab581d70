package models

import (
	"strconv"
	"time"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
)

// AppointmentRow строка отчёта по записям
type AppointmentRow struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`
	Slot      string `json:"slot"`
	Status    string `json:"status"`
	PersonDNI int64  `json:"personDni"`
}

// PersonRow строка отчёта по людям
type PersonRow struct {
	DNI      int64  `json:"dni"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Age      int    `json:"age"`
	Enabled  bool   `json:"enabled"`
}

// CancellerRow строка отчёта по частым отменам
type CancellerRow struct {
	PersonDNI      int64  `json:"personDni"`
	FullName       string `json:"fullName"`
	CancelledCount int    `json:"cancelledCount"`
}

// AppointmentsReport записи за дату или период
type AppointmentsReport struct {
	From         string           `json:"from,omitempty"`
	To           string           `json:"to,omitempty"`
	Status       string           `json:"status,omitempty"`
	Total        int              `json:"total"`
	Appointments []AppointmentRow `json:"appointments"`
}

// PersonAppointmentsReport все записи одного человека
type PersonAppointmentsReport struct {
	Person       PersonRow        `json:"person"`
	Total        int              `json:"total"`
	Appointments []AppointmentRow `json:"appointments"`
}

// CancellersReport люди с числом отмен не меньше MinCancelled
type CancellersReport struct {
	MinCancelled int            `json:"minCancelled"`
	Persons      []CancellerRow `json:"persons"`
}

// PersonsStatusReport включённые и отключённые люди
type PersonsStatusReport struct {
	EnabledCount  int         `json:"enabledCount"`
	DisabledCount int         `json:"disabledCount"`
	Enabled       []PersonRow `json:"enabled"`
	Disabled      []PersonRow `json:"disabled"`
}

// Методы конвертации

func FromDomainAppointments(list []*domain.Appointment) []AppointmentRow {
	rows := make([]AppointmentRow, 0, len(list))
	for _, a := range list {
		rows = append(rows, AppointmentRow{
			ID:        a.ID,
			Date:      a.Date.Format(domain.DateFormat),
			Slot:      a.Slot.String(),
			Status:    string(a.Status),
			PersonDNI: a.PersonDNI,
		})
	}
	return rows
}

func FromDomainPerson(p *domain.Person, now time.Time) PersonRow {
	return PersonRow{
		DNI:      p.DNI,
		FullName: p.FullName,
		Email:    p.Email,
		Phone:    p.Phone,
		Age:      p.Age(now),
		Enabled:  p.Enabled,
	}
}

func FromDomainCancellers(stats []*domain.CancellerStat) []CancellerRow {
	rows := make([]CancellerRow, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, CancellerRow{
			PersonDNI:      s.PersonDNI,
			FullName:       s.FullName,
			CancelledCount: s.CancelledCount,
		})
	}
	return rows
}

// Табличное представление для CSV

var (
	appointmentHeader = []string{"id", "date", "slot", "status", "person_dni"}
	personHeader      = []string{"dni", "full_name", "email", "phone", "age", "enabled"}
)

func (r AppointmentRow) record() []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.Date,
		r.Slot,
		r.Status,
		strconv.FormatInt(r.PersonDNI, 10),
	}
}

func (r PersonRow) record() []string {
	return []string{
		strconv.FormatInt(r.DNI, 10),
		r.FullName,
		r.Email,
		r.Phone,
		strconv.Itoa(r.Age),
		strconv.FormatBool(r.Enabled),
	}
}

func (r *AppointmentsReport) Header() []string { return appointmentHeader }

func (r *AppointmentsReport) Records() [][]string {
	out := make([][]string, 0, len(r.Appointments))
	for _, row := range r.Appointments {
		out = append(out, row.record())
	}
	return out
}

func (r *PersonAppointmentsReport) Header() []string { return appointmentHeader }

func (r *PersonAppointmentsReport) Records() [][]string {
	out := make([][]string, 0, len(r.Appointments))
	for _, row := range r.Appointments {
		out = append(out, row.record())
	}
	return out
}

func (r *CancellersReport) Header() []string {
	return []string{"person_dni", "full_name", "cancelled_count"}
}

func (r *CancellersReport) Records() [][]string {
	out := make([][]string, 0, len(r.Persons))
	for _, row := range r.Persons {
		out = append(out, []string{
			strconv.FormatInt(row.PersonDNI, 10),
			row.FullName,
			strconv.Itoa(row.CancelledCount),
		})
	}
	return out
}

// Header у отчёта по статусу людей общий, enabled различает группы
func (r *PersonsStatusReport) Header() []string { return personHeader }

func (r *PersonsStatusReport) Records() [][]string {
	out := make([][]string, 0, len(r.Enabled)+len(r.Disabled))
	for _, row := range r.Enabled {
		out = append(out, row.record())
	}
	for _, row := range r.Disabled {
		out = append(out, row.record())
	}
	return out
}
