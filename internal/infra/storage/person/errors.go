package person

import (
	"errors"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-TurnosService/pkg/dbmetrics"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

var (
	// ErrPersonNotFound возвращается, когда человек не найден
	ErrPersonNotFound = errors.New("person.repository: person not found")

	// ErrDuplicateDNI возвращается при попытке создать человека с существующим DNI
	ErrDuplicateDNI = errors.New("person.repository: duplicate dni")

	// ErrDuplicateEmail возвращается при попытке использовать занятый email
	ErrDuplicateEmail = errors.New("person.repository: duplicate email")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("person.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("person.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("person.repository: failed to scan row")
)

const (
	pqUniqueViolation = "23505"

	pkConstraint    = "persons_pkey"
	emailConstraint = "persons_email_uidx"
)

// mapUniqueViolation возвращает ErrDuplicateDNI/ErrDuplicateEmail для нарушений уникальности
// или nil, если ошибка другого рода
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != pqUniqueViolation {
		return nil
	}
	switch pqErr.Constraint {
	case pkConstraint:
		return ErrDuplicateDNI
	case emailConstraint:
		return ErrDuplicateEmail
	}
	return nil
}
