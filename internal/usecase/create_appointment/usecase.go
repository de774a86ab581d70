package create_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-TurnosService/internal/infra/storage/appointment"
	personRepo "github.com/m04kA/SMC-TurnosService/internal/infra/storage/person"
)

// UseCase use case для создания записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	personRepo      PersonRepository
	calendar        SlotCalendar
	cache           AvailabilityCache
	txManager       TransactionManager
	rules           Rules
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	personRepo PersonRepository,
	calendar SlotCalendar,
	cache AvailabilityCache,
	txManager TransactionManager,
	rules Rules,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		personRepo:      personRepo,
		calendar:        calendar,
		cache:           cache,
		txManager:       txManager,
		rules:           rules,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания записи
// Проверки выполняются строго по порядку в одной сериализуемой транзакции:
// человек, флаг enabled, недавние отмены, сетка слотов, занятость слота
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: person=%d, date=%s, slot=%s",
		req.PersonDNI, req.Date.Format(domain.DateFormat), req.Slot)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	date := domain.DateOnly(req.Date)
	today := domain.DateOnly(uc.timeProvider.Now())
	since := today.AddDate(0, 0, -uc.rules.CancellationWindowDays)

	var result *domain.Appointment

	// 2. Выполняем проверки и запись в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2.1. Человек существует
		person, err := uc.personRepo.GetByDNI(txCtx, req.PersonDNI)
		if err != nil {
			if errors.Is(err, personRepo.ErrPersonNotFound) {
				uc.logger.Warn("CreateAppointment: person dni=%d not found", req.PersonDNI)
				return ErrPersonNotFound
			}
			uc.logger.Error("CreateAppointment: failed to get person dni=%d: %v", req.PersonDNI, err)
			return fmt.Errorf("%w: failed to get person: %v", ErrInternal, err)
		}

		// 2.2. Человек не отключён
		if !person.CanBook() {
			uc.logger.Warn("CreateAppointment: person dni=%d is disabled", req.PersonDNI)
			return ErrPersonDisabled
		}

		// Статус разбирается только для существующего и включённого человека
		status, err := parseStatus(req)
		if err != nil {
			uc.logger.Warn("CreateAppointment: validation failed: %v", err)
			return err
		}

		// 2.3. Недавние отмены
		cancelled, err := uc.appointmentRepo.CountByPersonAndStatusSince(txCtx, req.PersonDNI, domain.StatusCancelled, since)
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to count cancellations for dni=%d: %v", req.PersonDNI, err)
			return fmt.Errorf("%w: failed to count cancellations: %v", ErrInternal, err)
		}
		if cancelled >= uc.rules.MaxRecentCancellations {
			uc.logger.Warn("CreateAppointment: person dni=%d has %d cancellations since %s",
				req.PersonDNI, cancelled, since.Format(domain.DateFormat))
			return fmt.Errorf("%w: %d cancellations in the last %d days",
				ErrTooManyRecentCancellations, cancelled, uc.rules.CancellationWindowDays)
		}

		// 2.4. Слот из сетки
		slot, err := uc.calendar.Parse(req.Slot)
		if err != nil {
			uc.logger.Warn("CreateAppointment: invalid slot %q: %v", req.Slot, err)
			return fmt.Errorf("%w: %w", ErrInvalidTimeSlot, err)
		}

		// 2.5. Слот свободен (строка блокируется FOR UPDATE)
		existing, err := uc.appointmentRepo.FindActiveBySlot(txCtx, date, slot, 0)
		switch {
		case err == nil:
			uc.logger.Warn("CreateAppointment: slot %s %s occupied by appointment id=%d",
				date.Format(domain.DateFormat), slot, existing.ID)
			return ErrSlotOccupied
		case !errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
			uc.logger.Error("CreateAppointment: failed to check slot occupancy: %v", err)
			return fmt.Errorf("%w: failed to check slot occupancy: %v", ErrInternal, err)
		}

		// 2.6. Сохраняем запись
		created, err := uc.appointmentRepo.Create(txCtx, &domain.Appointment{
			Date:      date,
			Slot:      slot,
			Status:    status,
			PersonDNI: req.PersonDNI,
		})
		if err != nil {
			switch {
			case errors.Is(err, appointmentRepo.ErrSlotTaken):
				// Параллельная запись успела занять слот, сработал уникальный индекс
				uc.logger.Warn("CreateAppointment: slot %s %s taken concurrently", date.Format(domain.DateFormat), slot)
				return ErrSlotOccupied
			case errors.Is(err, appointmentRepo.ErrPersonNotFound):
				return ErrPersonNotFound
			}
			uc.logger.Error("CreateAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		uc.logger.Error("CreateAppointment: transaction failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if err := uc.cache.Invalidate(ctx, date); err != nil {
		uc.logger.Warn("CreateAppointment: failed to invalidate availability cache for %s: %v",
			date.Format(domain.DateFormat), err)
	}

	uc.logger.Info("CreateAppointment: successfully created appointment id=%d", result.ID)

	return &Response{
		ID:        result.ID,
		PersonDNI: result.PersonDNI,
		Date:      result.Date,
		Slot:      result.Slot,
		Status:    string(result.Status),
		CreatedAt: result.CreatedAt,
		UpdatedAt: result.UpdatedAt,
	}, nil
}

// isDomainError true для ошибок, которые use case вернул сам
// Остальные (begin/commit транзакции) относятся к инфраструктуре
func isDomainError(err error) bool {
	for _, target := range []error{
		ErrPersonNotFound,
		ErrPersonDisabled,
		ErrTooManyRecentCancellations,
		ErrInvalidTimeSlot,
		ErrSlotOccupied,
		ErrInvalidInput,
		ErrInternal,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
