package person

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
	"github.com/m04kA/SMC-TurnosService/pkg/dbmetrics"
	"github.com/m04kA/SMC-TurnosService/pkg/psqlbuilder"
)

const table = "persons"

var columns = []string{
	"dni",
	"full_name",
	"email",
	"phone",
	"birth_date",
	"enabled",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с людьми
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория людей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает нового человека
// Нарушения уникальности DNI и email возвращаются как ErrDuplicateDNI и ErrDuplicateEmail
func (r *Repository) Create(ctx context.Context, p *domain.Person) (*domain.Person, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns("dni", "full_name", "email", "phone", "birth_date", "enabled").
		Values(p.DNI, p.FullName, p.Email, p.Phone, p.BirthDate.Format(domain.DateFormat), p.Enabled).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err != nil {
		if dupErr := mapUniqueViolation(err); dupErr != nil {
			return nil, dupErr
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return p, nil
}

// GetByDNI получает человека по DNI
func (r *Repository) GetByDNI(ctx context.Context, dni int64) (*domain.Person, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"dni": dni}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByDNI - build select query: %v", ErrBuildQuery, err)
	}

	p, err := scanPerson(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrPersonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByDNI - scan person: %v", ErrScanRow, err)
	}

	return p, nil
}

// ExistsByEmail проверяет, занят ли email другим человеком (без учёта регистра)
// excludeDNI > 0 исключает самого человека при обновлении
func (r *Repository) ExistsByEmail(ctx context.Context, email string, excludeDNI int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select("COUNT(*)").
		From(table).
		Where(squirrel.Eq{"LOWER(email)": strings.ToLower(email)})
	if excludeDNI > 0 {
		builder = builder.Where(squirrel.NotEq{"dni": excludeDNI})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: ExistsByEmail - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("%w: ExistsByEmail - scan count: %v", ErrScanRow, err)
	}

	return count > 0, nil
}

// List получает людей, опционально фильтруя по флагу enabled
func (r *Repository) List(ctx context.Context, filter domain.PersonFilter) ([]*domain.Person, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(table).
		OrderBy("dni ASC")
	if filter.Enabled != nil {
		builder = builder.Where(squirrel.Eq{"enabled": *filter.Enabled})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	persons := make([]*domain.Person, 0)
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		persons = append(persons, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return persons, nil
}

// Update сохраняет изменяемые поля человека
func (r *Repository) Update(ctx context.Context, p *domain.Person) (*domain.Person, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("full_name", p.FullName).
		Set("email", p.Email).
		Set("phone", p.Phone).
		Set("birth_date", p.BirthDate.Format(domain.DateFormat)).
		Set("enabled", p.Enabled).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"dni": p.DNI}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrPersonNotFound
	}
	if err != nil {
		if dupErr := mapUniqueViolation(err); dupErr != nil {
			return nil, dupErr
		}
		return nil, fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return p, nil
}

// Delete удаляет человека, записи удаляются каскадно (ON DELETE CASCADE)
func (r *Repository) Delete(ctx context.Context, dni int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(table).
		Where(squirrel.Eq{"dni": dni}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrPersonNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPerson(row rowScanner) (*domain.Person, error) {
	var p domain.Person
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&p.DNI,
		&p.FullName,
		&p.Email,
		&p.Phone,
		&p.BirthDate,
		&p.Enabled,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return &p, nil
}
