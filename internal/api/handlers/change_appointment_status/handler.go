package change_appointment_status

import (
	"context"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-TurnosService/internal/api/handlers"
	"github.com/m04kA/SMC-TurnosService/internal/service/appointments"
	"github.com/m04kA/SMC-TurnosService/internal/service/appointments/models"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgAppointmentNotFound  = "запись не найдена"
	msgCannotCancel         = "посещённую запись отменить нельзя"
	msgCannotConfirm        = "посещённую или отменённую запись подтвердить нельзя"
	msgCannotAttend         = "запись уже посещена или отменена"
)

type transitionFunc func(ctx context.Context, id int64) (*models.AppointmentResponse, error)

// Handler переводит запись в новый статус, по одному методу на переход
type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Cancel PATCH /api/v1/appointments/{appointmentId}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "cancel", h.service.Cancel, msgCannotCancel)
}

// Confirm PATCH /api/v1/appointments/{appointmentId}/confirm
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "confirm", h.service.Confirm, msgCannotConfirm)
}

// Attend PATCH /api/v1/appointments/{appointmentId}/attend
func (h *Handler) Attend(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "attend", h.service.Attend, msgCannotAttend)
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, action string, fn transitionFunc, msgImmutable string) {
	id, err := handlers.PathInt64(r, "appointmentId")
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/%s - Invalid appointment ID: %v", action, err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	appointment, err := fn(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /appointments/%d/%s - Appointment not found", id, action)
			handlers.RespondNotFound(w, msgAppointmentNotFound)

		case errors.Is(err, appointments.ErrImmutable):
			h.logger.Warn("PATCH /appointments/%d/%s - Transition not allowed: %v", id, action, err)
			handlers.RespondUnprocessable(w, msgImmutable)

		default:
			h.logger.Error("PATCH /appointments/%d/%s - Failed: %v", id, action, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/%d/%s - Status is now %s", id, action, appointment.Status)
	handlers.RespondJSON(w, http.StatusOK, appointment)
}
