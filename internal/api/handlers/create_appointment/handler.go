package create_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-TurnosService/internal/api/handlers"
	"github.com/m04kA/SMC-TurnosService/internal/slots"
	createAppointment "github.com/m04kA/SMC-TurnosService/internal/usecase/create_appointment"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidInput       = "некорректные данные записи"
	msgInvalidTimeSlot    = "слот не соответствует сетке расписания"
	msgInvalidSlotFormat  = "некорректный формат слота, ожидается HH:MM"
	msgSlotGranularity    = "слот должен попадать на шаг сетки"
	msgSlotOutOfRange     = "слот вне рабочего времени"
	msgSlotOccupied       = "выбранный слот уже занят"
	msgPersonNotFound     = "человек не найден"
	msgPersonDisabled     = "человек отключён и не может записываться"
	msgTooManyCancels     = "слишком много отмен за последнее время"
)

type Handler struct {
	useCase CreateAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CreateAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /appointments - Invalid date %q: %v", req.Date, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createAppointment.ErrInvalidTimeSlot):
			h.logger.Warn("POST /appointments - Invalid slot %q: %v", req.Slot, err)
			handlers.RespondBadRequest(w, slotErrorMessage(err))

		case errors.Is(err, createAppointment.ErrPersonNotFound):
			h.logger.Warn("POST /appointments - Person not found: dni=%d", req.PersonDNI)
			handlers.RespondNotFound(w, msgPersonNotFound)

		case errors.Is(err, createAppointment.ErrPersonDisabled):
			h.logger.Warn("POST /appointments - Person disabled: dni=%d", req.PersonDNI)
			handlers.RespondUnprocessable(w, msgPersonDisabled)

		case errors.Is(err, createAppointment.ErrTooManyRecentCancellations):
			h.logger.Warn("POST /appointments - Too many cancellations: dni=%d", req.PersonDNI)
			handlers.RespondUnprocessable(w, msgTooManyCancels)

		case errors.Is(err, createAppointment.ErrSlotOccupied):
			h.logger.Warn("POST /appointments - Slot occupied: date=%s, slot=%s", req.Date, req.Slot)
			handlers.RespondConflict(w, msgSlotOccupied)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: dni=%d, error=%v", req.PersonDNI, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments - Appointment created: id=%d, dni=%d, date=%s, slot=%s",
		result.ID, result.PersonDNI, req.Date, result.Slot)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
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
