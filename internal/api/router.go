package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	changeStatusHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/change_appointment_status"
	createAppointmentHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/create_appointment"
	deleteAppointmentHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/delete_appointment"
	getAppointmentHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/get_available_slots"
	listAppointmentsHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/list_appointments"
	personsHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/persons"
	reportsHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/reports"
	updateAppointmentHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/update_appointment"
	"github.com/m04kA/SMC-TurnosService/internal/api/middleware"
	"github.com/m04kA/SMC-TurnosService/pkg/metrics"
)

// Handlers все HTTP обработчики сервиса
type Handlers struct {
	Persons           *personsHandler.Handler
	CreateAppointment *createAppointmentHandler.Handler
	GetAppointment    *getAppointmentHandler.Handler
	ListAppointments  *listAppointmentsHandler.Handler
	UpdateAppointment *updateAppointmentHandler.Handler
	DeleteAppointment *deleteAppointmentHandler.Handler
	ChangeStatus      *changeStatusHandler.Handler
	AvailableSlots    *getAvailableSlotsHandler.Handler
	Reports           *reportsHandler.Handler
}

// RouterOptions параметры роутера
// Metrics == nil отключает middleware метрик и endpoint /metrics
type RouterOptions struct {
	Metrics     *metrics.Metrics
	MetricsPath string
	Logger      middleware.Logger
}

// NewRouter собирает маршруты /api/v1 и служебные endpoints
func NewRouter(h Handlers, opts RouterOptions) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(opts.Logger))

	if opts.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(opts.Metrics))
		r.Handle(opts.MetricsPath, promhttp.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// --- Люди ---
	api.HandleFunc("/persons", h.Persons.Create).Methods(http.MethodPost)
	api.HandleFunc("/persons", h.Persons.List).Methods(http.MethodGet)
	api.HandleFunc("/persons/{dni}", h.Persons.Get).Methods(http.MethodGet)
	api.HandleFunc("/persons/{dni}", h.Persons.Update).Methods(http.MethodPut)
	api.HandleFunc("/persons/{dni}", h.Persons.Delete).Methods(http.MethodDelete)

	// --- Записи ---
	api.HandleFunc("/appointments", h.CreateAppointment.Handle).Methods(http.MethodPost)
	api.HandleFunc("/appointments", h.ListAppointments.Handle).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{appointmentId}", h.GetAppointment.Handle).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{appointmentId}", h.UpdateAppointment.Handle).Methods(http.MethodPut)
	api.HandleFunc("/appointments/{appointmentId}", h.DeleteAppointment.Handle).Methods(http.MethodDelete)
	api.HandleFunc("/appointments/{appointmentId}/cancel", h.ChangeStatus.Cancel).Methods(http.MethodPatch)
	api.HandleFunc("/appointments/{appointmentId}/confirm", h.ChangeStatus.Confirm).Methods(http.MethodPatch)
	api.HandleFunc("/appointments/{appointmentId}/attend", h.ChangeStatus.Attend).Methods(http.MethodPatch)

	// --- Свободные слоты ---
	api.HandleFunc("/available-slots", h.AvailableSlots.Handle).Methods(http.MethodGet)

	// --- Отчёты (?format=csv) ---
	api.HandleFunc("/reports/appointments-by-date", h.Reports.ByDate).Methods(http.MethodGet)
	api.HandleFunc("/reports/appointments-by-person/{dni}", h.Reports.ByPerson).Methods(http.MethodGet)
	api.HandleFunc("/reports/cancelled", h.Reports.Cancelled).Methods(http.MethodGet)
	api.HandleFunc("/reports/confirmed", h.Reports.Confirmed).Methods(http.MethodGet)
	api.HandleFunc("/reports/frequent-cancellers", h.Reports.FrequentCancellers).Methods(http.MethodGet)
	api.HandleFunc("/reports/persons-status", h.Reports.PersonsStatus).Methods(http.MethodGet)

	return r
}
