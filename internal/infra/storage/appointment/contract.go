package appointment

import (
	"errors"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-TurnosService/pkg/dbmetrics"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

const (
	pqUniqueViolation      = "23505"
	pqForeignKeyViolation  = "23503"
	pqSerializationFailure = "40001"

	activeSlotConstraint = "appointments_active_slot_uidx"
)

// mapWriteError переводит ошибки postgres при записи в ошибки репозитория
func mapWriteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			if pqErr.Constraint == activeSlotConstraint {
				return ErrSlotTaken
			}
		case pqForeignKeyViolation:
			return ErrPersonNotFound
		case pqSerializationFailure:
			return wrap(ErrSerialization, op, err)
		}
	}
	return wrap(ErrExecQuery, op, err)
}
