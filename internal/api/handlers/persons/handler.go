package persons

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-TurnosService/internal/api/handlers"
	personsService "github.com/m04kA/SMC-TurnosService/internal/service/persons"
	"github.com/m04kA/SMC-TurnosService/internal/service/persons/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDNI         = "некорректный DNI"
	msgInvalidEnabled     = "параметр enabled должен быть true или false"
	msgInvalidInput       = "некорректные данные человека"
	msgPersonNotFound     = "человек не найден"
	msgDuplicateDNI       = "человек с таким DNI уже зарегистрирован"
	msgDuplicateEmail     = "email уже используется"
)

// Handler CRUD по людям
type Handler struct {
	service PersonService
	logger  Logger
}

func NewHandler(service PersonService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Create POST /api/v1/persons
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePersonRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /persons - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	person, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, "POST /persons", err)
		return
	}

	h.logger.Info("POST /persons - Person registered: dni=%d", person.DNI)
	handlers.RespondJSON(w, http.StatusCreated, person)
}

// Get GET /api/v1/persons/{dni}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	dni, ok := h.parseDNI(w, r, "GET")
	if !ok {
		return
	}

	person, err := h.service.GetByDNI(r.Context(), dni)
	if err != nil {
		h.respondServiceError(w, "GET /persons/"+strconv.FormatInt(dni, 10), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, person)
}

// List GET /api/v1/persons?enabled=true|false
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := &models.ListPersonsRequest{}

	if raw := r.URL.Query().Get("enabled"); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			h.logger.Warn("GET /persons - Invalid enabled param: %v", err)
			handlers.RespondBadRequest(w, msgInvalidEnabled)
			return
		}
		req.Enabled = &enabled
	}

	list, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, "GET /persons", err)
		return
	}

	h.logger.Info("GET /persons - Returned %d persons", len(list.Persons))
	handlers.RespondJSON(w, http.StatusOK, list)
}

// Update PUT /api/v1/persons/{dni}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	dni, ok := h.parseDNI(w, r, "PUT")
	if !ok {
		return
	}

	var req models.UpdatePersonRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /persons/%d - Invalid request body: %v", dni, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	person, err := h.service.Update(r.Context(), dni, &req)
	if err != nil {
		h.respondServiceError(w, "PUT /persons/"+strconv.FormatInt(dni, 10), err)
		return
	}

	h.logger.Info("PUT /persons/%d - Person updated", dni)
	handlers.RespondJSON(w, http.StatusOK, person)
}

// Delete DELETE /api/v1/persons/{dni}
// Записи человека удаляются вместе с ним
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	dni, ok := h.parseDNI(w, r, "DELETE")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), dni); err != nil {
		h.respondServiceError(w, "DELETE /persons/"+strconv.FormatInt(dni, 10), err)
		return
	}

	h.logger.Info("DELETE /persons/%d - Person deleted", dni)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) parseDNI(w http.ResponseWriter, r *http.Request, method string) (int64, bool) {
	dni, err := handlers.PathInt64(r, "dni")
	if err != nil || dni <= 0 {
		h.logger.Warn("%s /persons/{dni} - Invalid DNI: %q", method, r.URL.Path)
		handlers.RespondBadRequest(w, msgInvalidDNI)
		return 0, false
	}
	return dni, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, route string, err error) {
	switch {
	case errors.Is(err, personsService.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	case errors.Is(err, personsService.ErrPersonNotFound):
		h.logger.Warn("%s - Person not found", route)
		handlers.RespondNotFound(w, msgPersonNotFound)

	case errors.Is(err, personsService.ErrDuplicateDNI):
		h.logger.Warn("%s - Duplicate DNI", route)
		handlers.RespondConflict(w, msgDuplicateDNI)

	case errors.Is(err, personsService.ErrDuplicateEmail):
		h.logger.Warn("%s - Duplicate email", route)
		handlers.RespondConflict(w, msgDuplicateEmail)

	default:
		h.logger.Error("%s - Internal error: %v", route, err)
		handlers.RespondInternalError(w)
	}
}
