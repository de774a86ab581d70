package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
)

// ErrMissingParam возвращается, когда обязательный параметр не передан
var ErrMissingParam = errors.New("handlers: missing parameter")

// PathInt64 читает целочисленную переменную пути
func PathInt64(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

// QueryDate читает дату YYYY-MM-DD из query параметра
// Отсутствующий параметр возвращает nil без ошибки
func QueryDate(r *http.Request, name string) (*time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(domain.DateFormat, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// RequiredQueryDate как QueryDate, но параметр обязателен
func RequiredQueryDate(r *http.Request, name string) (time.Time, error) {
	t, err := QueryDate(r, name)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Time{}, ErrMissingParam
	}
	return *t, nil
}

// WantsCSV true, если клиент запросил ?format=csv
func WantsCSV(r *http.Request) bool {
	return r.URL.Query().Get("format") == "csv"
}
