package update_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-TurnosService/internal/api/handlers"
	"github.com/m04kA/SMC-TurnosService/internal/slots"
	updateAppointment "github.com/m04kA/SMC-TurnosService/internal/usecase/update_appointment"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidDate          = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidInput         = "некорректные данные для обновления"
	msgInvalidTimeSlot      = "слот не соответствует сетке расписания"
	msgInvalidSlotFormat    = "некорректный формат слота, ожидается HH:MM"
	msgSlotGranularity      = "слот должен попадать на шаг сетки"
	msgSlotOutOfRange       = "слот вне рабочего времени"
	msgAppointmentNotFound  = "запись не найдена"
	msgImmutable            = "посещённую или отменённую запись изменить нельзя"
	msgPersonNotFound       = "человек не найден"
	msgPersonDisabled       = "человек отключён и не может записываться"
	msgSlotOccupied         = "выбранный слот уже занят"
)

type Handler struct {
	useCase UpdateAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase UpdateAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PUT /api/v1/appointments/{appointmentId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathInt64(r, "appointmentId")
	if err != nil {
		h.logger.Warn("PUT /appointments/{id} - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req UpdateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /appointments/%d - Invalid request body: %v", id, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(id)
	if err != nil {
		h.logger.Warn("PUT /appointments/%d - Invalid date: %v", id, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, updateAppointment.ErrInvalidInput):
			h.logger.Warn("PUT /appointments/%d - Invalid input: %v", id, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, updateAppointment.ErrInvalidTimeSlot):
			h.logger.Warn("PUT /appointments/%d - Invalid slot: %v", id, err)
			handlers.RespondBadRequest(w, slotErrorMessage(err))

		case errors.Is(err, updateAppointment.ErrAppointmentNotFound):
			h.logger.Warn("PUT /appointments/%d - Appointment not found", id)
			handlers.RespondNotFound(w, msgAppointmentNotFound)

		case errors.Is(err, updateAppointment.ErrPersonNotFound):
			h.logger.Warn("PUT /appointments/%d - Person not found", id)
			handlers.RespondNotFound(w, msgPersonNotFound)

		case errors.Is(err, updateAppointment.ErrImmutable):
			h.logger.Warn("PUT /appointments/%d - Appointment is immutable", id)
			handlers.RespondUnprocessable(w, msgImmutable)

		case errors.Is(err, updateAppointment.ErrPersonDisabled):
			h.logger.Warn("PUT /appointments/%d - Person disabled", id)
			handlers.RespondUnprocessable(w, msgPersonDisabled)

		case errors.Is(err, updateAppointment.ErrSlotOccupied):
			h.logger.Warn("PUT /appointments/%d - Slot occupied", id)
			handlers.RespondConflict(w, msgSlotOccupied)

		default:
			h.logger.Error("PUT /appointments/%d - Failed to update appointment: %v", id, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /appointments/%d - Appointment updated", id)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}

// slotErrorMessage уточняет причину отказа по ошибке сетки
func slotErrorMessage(err error) string {
	switch {
	case errors.Is(err, slots.ErrInvalidFormat):
		return msgInvalidSlotFormat
	case errors.Is(err, slots.ErrInvalidGranularity):
		return msgSlotGranularity
	case errors.Is(err, slots.ErrOutOfRange):
		return msgSlotOutOfRange
	default:
		return msgInvalidTimeSlot
	}
}
