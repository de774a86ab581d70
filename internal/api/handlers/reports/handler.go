package reports

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/SMC-TurnosService/internal/api/handlers"
	"github.com/m04kA/SMC-TurnosService/internal/domain"
	reportsService "github.com/m04kA/SMC-TurnosService/internal/service/reports"
)

const (
	msgInvalidDate    = "параметр date обязателен, формат YYYY-MM-DD"
	msgInvalidPeriod  = "параметры from и to обязательны, формат YYYY-MM-DD"
	msgInvalidDNI     = "некорректный DNI"
	msgInvalidMin     = "параметр min должен быть положительным числом"
	msgInvalidInput   = "некорректные параметры отчёта"
	msgPersonNotFound = "человек не найден"
)

// Handler отчёты, JSON по умолчанию, CSV при ?format=csv
type Handler struct {
	service ReportService
	logger  Logger
}

func NewHandler(service ReportService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// ByDate GET /api/v1/reports/appointments-by-date?date=
func (h *Handler) ByDate(w http.ResponseWriter, r *http.Request) {
	const route = "GET /reports/appointments-by-date"

	date, err := handlers.RequiredQueryDate(r, "date")
	if err != nil {
		h.logger.Warn("%s - Invalid date: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	report, err := h.service.ByDate(r.Context(), date)
	if err != nil {
		h.respondServiceError(w, route, err)
		return
	}

	h.respond(w, r, route, "appointments-"+date.Format(domain.DateFormat)+".csv", report)
}

// ByPerson GET /api/v1/reports/appointments-by-person/{dni}
func (h *Handler) ByPerson(w http.ResponseWriter, r *http.Request) {
	const route = "GET /reports/appointments-by-person"

	dni, err := handlers.PathInt64(r, "dni")
	if err != nil {
		h.logger.Warn("%s - Invalid DNI: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidDNI)
		return
	}

	report, err := h.service.ByPerson(r.Context(), dni)
	if err != nil {
		h.respondServiceError(w, route, err)
		return
	}

	h.respond(w, r, route, "appointments-person-"+strconv.FormatInt(dni, 10)+".csv", report)
}

// Cancelled GET /api/v1/reports/cancelled?from=&to=
func (h *Handler) Cancelled(w http.ResponseWriter, r *http.Request) {
	const route = "GET /reports/cancelled"

	from, to, ok := h.parsePeriod(w, r, route)
	if !ok {
		return
	}

	report, err := h.service.CancelledInPeriod(r.Context(), from, to)
	if err != nil {
		h.respondServiceError(w, route, err)
		return
	}

	h.respond(w, r, route, "cancelled-"+report.From+"-"+report.To+".csv", report)
}

// Confirmed GET /api/v1/reports/confirmed?from=&to=
func (h *Handler) Confirmed(w http.ResponseWriter, r *http.Request) {
	const route = "GET /reports/confirmed"

	from, to, ok := h.parsePeriod(w, r, route)
	if !ok {
		return
	}

	report, err := h.service.ConfirmedInPeriod(r.Context(), from, to)
	if err != nil {
		h.respondServiceError(w, route, err)
		return
	}

	h.respond(w, r, route, "confirmed-"+report.From+"-"+report.To+".csv", report)
}

// FrequentCancellers GET /api/v1/reports/frequent-cancellers?min=
// Без min используется порог из правил записи
func (h *Handler) FrequentCancellers(w http.ResponseWriter, r *http.Request) {
	const route = "GET /reports/frequent-cancellers"

	minCancelled := domain.DefaultMaxRecentCancellations
	if raw := r.URL.Query().Get("min"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.logger.Warn("%s - Invalid min %q", route, raw)
			handlers.RespondBadRequest(w, msgInvalidMin)
			return
		}
		minCancelled = parsed
	}

	report, err := h.service.FrequentCancellers(r.Context(), minCancelled)
	if err != nil {
		h.respondServiceError(w, route, err)
		return
	}

	h.respond(w, r, route, "frequent-cancellers.csv", report)
}

// PersonsStatus GET /api/v1/reports/persons-status
func (h *Handler) PersonsStatus(w http.ResponseWriter, r *http.Request) {
	const route = "GET /reports/persons-status"

	report, err := h.service.PersonsStatus(r.Context())
	if err != nil {
		h.respondServiceError(w, route, err)
		return
	}

	h.respond(w, r, route, "persons-status.csv", report)
}

func (h *Handler) parsePeriod(w http.ResponseWriter, r *http.Request, route string) (time.Time, time.Time, bool) {
	from, err := handlers.RequiredQueryDate(r, "from")
	if err != nil {
		h.logger.Warn("%s - Invalid from: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidPeriod)
		return time.Time{}, time.Time{}, false
	}
	to, err := handlers.RequiredQueryDate(r, "to")
	if err != nil {
		h.logger.Warn("%s - Invalid to: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidPeriod)
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, route, filename string, report reportsService.Table) {
	if !handlers.WantsCSV(r) {
		handlers.RespondJSON(w, http.StatusOK, report)
		return
	}

	err := handlers.RespondCSV(w, filename, func(out io.Writer) error {
		return reportsService.WriteCSV(out, report)
	})
	if err != nil {
		// заголовки уже отправлены, остаётся только залогировать
		h.logger.Error("%s - Failed to write CSV: %v", route, err)
		return
	}
	h.logger.Info("%s - CSV %s sent", route, filename)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, route string, err error) {
	switch {
	case errors.Is(err, reportsService.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	case errors.Is(err, reportsService.ErrPersonNotFound):
		h.logger.Warn("%s - Person not found", route)
		handlers.RespondNotFound(w, msgPersonNotFound)

	default:
		h.logger.Error("%s - Internal error: %v", route, err)
		handlers.RespondInternalError(w)
	}
}
