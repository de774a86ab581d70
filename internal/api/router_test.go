package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TurnosService/internal/api"
	changeStatusHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/change_appointment_status"
	createAppointmentHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/create_appointment"
	deleteAppointmentHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/delete_appointment"
	getAppointmentHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/get_available_slots"
	listAppointmentsHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/list_appointments"
	personsHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/persons"
	reportsHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/reports"
	updateAppointmentHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/update_appointment"
	"github.com/m04kA/SMC-TurnosService/internal/infra/cache/availability"
	"github.com/m04kA/SMC-TurnosService/internal/infra/storage/memory"
	appointmentsService "github.com/m04kA/SMC-TurnosService/internal/service/appointments"
	personsService "github.com/m04kA/SMC-TurnosService/internal/service/persons"
	reportsService "github.com/m04kA/SMC-TurnosService/internal/service/reports"
	"github.com/m04kA/SMC-TurnosService/internal/slots"
	createAppointmentUC "github.com/m04kA/SMC-TurnosService/internal/usecase/create_appointment"
	getAvailableSlotsUC "github.com/m04kA/SMC-TurnosService/internal/usecase/get_available_slots"
	updateAppointmentUC "github.com/m04kA/SMC-TurnosService/internal/usecase/update_appointment"
	"github.com/m04kA/SMC-TurnosService/pkg/logger"
	"github.com/m04kA/SMC-TurnosService/pkg/types"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := logger.NewNop()
	store := memory.NewStore()
	persons := memory.NewPersonRepository(store)
	appointments := memory.NewAppointmentRepository(store)
	txManager := memory.NewTxManager(store)
	cache := availability.Noop{}

	calendar, err := slots.NewCalendar(types.MustTimeString("09:00"), types.MustTimeString("17:00"), 30)
	require.NoError(t, err)

	appointmentSvc := appointmentsService.NewService(appointments, cache, txManager, log)
	personSvc := personsService.NewService(persons, appointments, cache, txManager, log)
	reportSvc := reportsService.NewService(appointments, persons, txManager, log)

	rules := createAppointmentUC.Rules{CancellationWindowDays: 180, MaxRecentCancellations: 5}

	router := api.NewRouter(api.Handlers{
		Persons: personsHandler.NewHandler(personSvc, log),
		CreateAppointment: createAppointmentHandler.NewHandler(
			createAppointmentUC.NewUseCase(appointments, persons, calendar, cache, txManager, rules, log), log),
		GetAppointment:   getAppointmentHandler.NewHandler(appointmentSvc, log),
		ListAppointments: listAppointmentsHandler.NewHandler(appointmentSvc, log),
		UpdateAppointment: updateAppointmentHandler.NewHandler(
			updateAppointmentUC.NewUseCase(appointments, persons, calendar, cache, txManager, log), log),
		DeleteAppointment: deleteAppointmentHandler.NewHandler(appointmentSvc, log),
		ChangeStatus:      changeStatusHandler.NewHandler(appointmentSvc, log),
		AvailableSlots: getAvailableSlotsHandler.NewHandler(
			getAvailableSlotsUC.NewUseCase(appointments, calendar, cache, log), log),
		Reports: reportsHandler.NewHandler(reportSvc, log),
	}, api.RouterOptions{Logger: log})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

const personBody = `{"dni":30111222,"fullName":"Ana Pérez","email":"ana@example.com","phone":"1155550000","birthDate":"1990-05-17"}`

func TestAPI_AppointmentLifecycle(t *testing.T) {
	srv := newServer(t)

	resp := do(t, srv, http.MethodPost, "/api/v1/persons", personBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp = do(t, srv, http.MethodPost, "/api/v1/persons", personBody)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/api/v1/appointments",
		`{"personDni":30111222,"date":"2030-01-15","slot":"09:00"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID     int64  `json:"id"`
		Slot   string `json:"slot"`
		Status string `json:"status"`
	}
	decode(t, resp, &created)
	assert.Equal(t, "09:00", created.Slot)
	assert.Equal(t, "pending", created.Status)

	resp = do(t, srv, http.MethodPost, "/api/v1/appointments",
		`{"personDni":30111222,"date":"2030-01-15","slot":"09:00"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/api/v1/available-slots?date=2030-01-15", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var available struct {
		Slots []string `json:"slots"`
	}
	decode(t, resp, &available)
	assert.Len(t, available.Slots, 15)
	assert.Equal(t, "09:30", available.Slots[0])

	id := strconv.FormatInt(created.ID, 10)

	resp = do(t, srv, http.MethodPatch, "/api/v1/appointments/"+id+"/cancel", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cancelled struct {
		Status string `json:"status"`
	}
	decode(t, resp, &cancelled)
	assert.Equal(t, "cancelled", cancelled.Status)

	resp = do(t, srv, http.MethodPatch, "/api/v1/appointments/"+id+"/confirm", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/api/v1/reports/cancelled?from=2030-01-01&to=2030-01-31&format=csv", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/csv"))
	buf := new(bytes.Buffer)
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,date,slot,status,person_dni", lines[0])
}

func TestAPI_Errors(t *testing.T) {
	srv := newServer(t)

	resp := do(t, srv, http.MethodPost, "/api/v1/persons", personBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"slot off grid", http.MethodPost, "/api/v1/appointments",
			`{"personDni":30111222,"date":"2030-01-15","slot":"09:10"}`, http.StatusBadRequest},
		{"slot after hours", http.MethodPost, "/api/v1/appointments",
			`{"personDni":30111222,"date":"2030-01-15","slot":"17:00"}`, http.StatusBadRequest},
		{"bad date", http.MethodPost, "/api/v1/appointments",
			`{"personDni":30111222,"date":"15/01/2030","slot":"09:00"}`, http.StatusBadRequest},
		{"unknown person", http.MethodPost, "/api/v1/appointments",
			`{"personDni":1,"date":"2030-01-15","slot":"09:00"}`, http.StatusNotFound},
		{"unknown field", http.MethodPost, "/api/v1/persons", `{"dni":5,"foo":1}`, http.StatusBadRequest},
		{"bad dni", http.MethodGet, "/api/v1/persons/abc", "", http.StatusBadRequest},
		{"missing person", http.MethodGet, "/api/v1/persons/42", "", http.StatusNotFound},
		{"missing appointment", http.MethodGet, "/api/v1/appointments/999", "", http.StatusNotFound},
		{"bad status filter", http.MethodGet, "/api/v1/appointments?status=done", "", http.StatusBadRequest},
		{"slots without date", http.MethodGet, "/api/v1/available-slots", "", http.StatusBadRequest},
		{"period reversed", http.MethodGet, "/api/v1/reports/confirmed?from=2030-02-01&to=2030-01-01", "", http.StatusBadRequest},
		{"bad min", http.MethodGet, "/api/v1/reports/frequent-cancellers?min=0", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, srv, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			}
			decode(t, resp, &body)
			assert.Equal(t, tt.status, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestAPI_DisabledPersonCannotBook(t *testing.T) {
	srv := newServer(t)

	resp := do(t, srv, http.MethodPost, "/api/v1/persons", personBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, srv, http.MethodPut, "/api/v1/persons/30111222", `{"enabled":false}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/api/v1/appointments",
		`{"personDni":30111222,"date":"2030-01-15","slot":"09:00"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/api/v1/reports/persons-status", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report struct {
		EnabledCount  int `json:"enabledCount"`
		DisabledCount int `json:"disabledCount"`
	}
	decode(t, resp, &report)
	assert.Equal(t, 0, report.EnabledCount)
	assert.Equal(t, 1, report.DisabledCount)

	resp = do(t, srv, http.MethodDelete, "/api/v1/persons/30111222", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestAPI_SlotErrorMessages(t *testing.T) {
	srv := newServer(t)

	resp := do(t, srv, http.MethodPost, "/api/v1/persons", personBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/api/v1/appointments",
		`{"personDni":30111222,"date":"2030-01-15","slot":"09:00"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID int64 `json:"id"`
	}
	decode(t, resp, &created)
	updatePath := "/api/v1/appointments/" + strconv.FormatInt(created.ID, 10)

	tests := []struct {
		name    string
		slot    string
		message string
	}{
		{"not a time", "9am", "некорректный формат слота, ожидается HH:MM"},
		{"off grid", "10:15", "слот должен попадать на шаг сетки"},
		{"before opening", "08:30", "слот вне рабочего времени"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			}

			resp := do(t, srv, http.MethodPost, "/api/v1/appointments",
				`{"personDni":30111222,"date":"2030-01-16","slot":"`+tt.slot+`"}`)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			decode(t, resp, &body)
			assert.Equal(t, tt.message, body.Message)

			resp = do(t, srv, http.MethodPut, updatePath, `{"slot":"`+tt.slot+`"}`)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			decode(t, resp, &body)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}
