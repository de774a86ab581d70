package migrations

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-TurnosService/pkg/dbmetrics"
	"github.com/m04kA/SMC-TurnosService/pkg/psqlbuilder"
)

var (
	// ErrReadMigrations возвращается, когда не удалось прочитать каталог или файл миграции
	ErrReadMigrations = errors.New("migrations: failed to read migrations")

	// ErrApplyMigration возвращается, когда SQL миграции завершился ошибкой
	ErrApplyMigration = errors.New("migrations: failed to apply migration")
)

const createVersionsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    name       VARCHAR(255) PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Runner применяет .sql файлы из каталога в лексикографическом порядке
// Применённые файлы запоминаются в schema_migrations и повторно не выполняются
type Runner struct {
	db        dbmetrics.DBExecutor
	txManager TransactionManager
	dir       string
	logger    Logger
}

// NewRunner создает новый экземпляр раннера миграций
func NewRunner(db dbmetrics.DBExecutor, txManager TransactionManager, dir string, logger Logger) *Runner {
	return &Runner{
		db:        db,
		txManager: txManager,
		dir:       dir,
		logger:    logger,
	}
}

// Run применяет все ещё не применённые миграции, каждую в своей транзакции
func (r *Runner) Run(ctx context.Context) (int, error) {
	files, err := r.listFiles()
	if err != nil {
		return 0, err
	}

	if _, err := r.db.ExecContext(ctx, createVersionsTable); err != nil {
		return 0, fmt.Errorf("%w: create schema_migrations: %v", ErrApplyMigration, err)
	}

	applied := 0
	for _, name := range files {
		done, err := r.isApplied(ctx, name)
		if err != nil {
			return applied, err
		}
		if done {
			continue
		}

		content, err := os.ReadFile(filepath.Join(r.dir, name))
		if err != nil {
			return applied, fmt.Errorf("%w: %s: %v", ErrReadMigrations, name, err)
		}

		r.logger.Info("Applying migration %s", name)
		err = r.txManager.Do(ctx, func(txCtx context.Context) error {
			executor := dbmetrics.GetExecutor(txCtx, r.db)
			if _, err := executor.ExecContext(txCtx, string(content)); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrApplyMigration, name, err)
			}
			return r.markApplied(txCtx, name)
		})
		if err != nil {
			r.logger.Error("Migration %s failed: %v", name, err)
			return applied, err
		}
		applied++
	}

	r.logger.Info("Migrations applied: %d new, %d total", applied, len(files))
	return applied, nil
}

func (r *Runner) listFiles() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadMigrations, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}

func (r *Runner) isApplied(ctx context.Context, name string) (bool, error) {
	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("schema_migrations").
		Where(squirrel.Eq{"name": name}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: build query: %v", ErrApplyMigration, err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("%w: check %s: %v", ErrApplyMigration, name, err)
	}
	return count > 0, nil
}

func (r *Runner) markApplied(ctx context.Context, name string) error {
	query, args, err := psqlbuilder.Insert("schema_migrations").
		Columns("name").
		Values(name).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: build query: %v", ErrApplyMigration, err)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: record %s: %v", ErrApplyMigration, name, err)
	}
	return nil
}
