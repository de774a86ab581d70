package update_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-TurnosService/internal/infra/storage/appointment"
	personRepo "github.com/m04kA/SMC-TurnosService/internal/infra/storage/person"
)

// UseCase use case для частичного обновления записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	personRepo      PersonRepository
	calendar        SlotCalendar
	cache           AvailabilityCache
	txManager       TransactionManager
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	personRepo PersonRepository,
	calendar SlotCalendar,
	cache AvailabilityCache,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		personRepo:      personRepo,
		calendar:        calendar,
		cache:           cache,
		txManager:       txManager,
		logger:          logger,
	}
}

// Execute обновляет дату, слот, владельца и статус записи
// Статус выставляется напрямую без проверки переходов, но посещённые и отменённые записи не меняются
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("UpdateAppointment: id=%d", req.ID)

	newStatus, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("UpdateAppointment: validation failed: %v", err)
		return nil, err
	}

	var (
		result  *domain.Appointment
		oldDate time.Time
	)

	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 1. Текущая запись под блокировкой
		current, err := uc.appointmentRepo.GetByIDForUpdate(txCtx, req.ID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				uc.logger.Warn("UpdateAppointment: appointment id=%d not found", req.ID)
				return ErrAppointmentNotFound
			}
			uc.logger.Error("UpdateAppointment: failed to get appointment id=%d: %v", req.ID, err)
			return fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
		}

		if !current.CanBeModified() {
			uc.logger.Warn("UpdateAppointment: appointment id=%d is %s", req.ID, current.Status)
			return fmt.Errorf("%w: status is %s", ErrImmutable, current.Status)
		}

		oldDate = current.Date
		updated := *current

		// 2. Новый владелец
		if req.PersonDNI != nil && *req.PersonDNI != current.PersonDNI {
			person, err := uc.personRepo.GetByDNI(txCtx, *req.PersonDNI)
			if err != nil {
				if errors.Is(err, personRepo.ErrPersonNotFound) {
					uc.logger.Warn("UpdateAppointment: person dni=%d not found", *req.PersonDNI)
					return ErrPersonNotFound
				}
				uc.logger.Error("UpdateAppointment: failed to get person dni=%d: %v", *req.PersonDNI, err)
				return fmt.Errorf("%w: failed to get person: %v", ErrInternal, err)
			}
			if !person.CanBook() {
				uc.logger.Warn("UpdateAppointment: person dni=%d is disabled", *req.PersonDNI)
				return ErrPersonDisabled
			}
			updated.PersonDNI = person.DNI
		}

		// 3. Новые дата и слот
		if req.Date != nil {
			updated.Date = domain.DateOnly(*req.Date)
		}
		if req.Slot != nil {
			slot, err := uc.calendar.Parse(*req.Slot)
			if err != nil {
				uc.logger.Warn("UpdateAppointment: invalid slot %q: %v", *req.Slot, err)
				return fmt.Errorf("%w: %w", ErrInvalidTimeSlot, err)
			}
			updated.Slot = slot
		}
		if newStatus != nil {
			updated.Status = *newStatus
		}

		// 4. Занятость проверяется только при переезде в другой слот
		moved := !updated.Date.Equal(current.Date) || updated.Slot != current.Slot
		if moved && updated.OccupiesSlot() {
			existing, err := uc.appointmentRepo.FindActiveBySlot(txCtx, updated.Date, updated.Slot, updated.ID)
			switch {
			case err == nil:
				uc.logger.Warn("UpdateAppointment: slot %s %s occupied by appointment id=%d",
					updated.Date.Format(domain.DateFormat), updated.Slot, existing.ID)
				return ErrSlotOccupied
			case !errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
				uc.logger.Error("UpdateAppointment: failed to check slot occupancy: %v", err)
				return fmt.Errorf("%w: failed to check slot occupancy: %v", ErrInternal, err)
			}
		}

		// 5. Сохраняем
		saved, err := uc.appointmentRepo.Update(txCtx, &updated)
		if err != nil {
			switch {
			case errors.Is(err, appointmentRepo.ErrSlotTaken):
				return ErrSlotOccupied
			case errors.Is(err, appointmentRepo.ErrPersonNotFound):
				return ErrPersonNotFound
			case errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
				return ErrAppointmentNotFound
			}
			uc.logger.Error("UpdateAppointment: failed to update appointment id=%d: %v", req.ID, err)
			return fmt.Errorf("%w: failed to update appointment: %v", ErrInternal, err)
		}

		result = saved
		return nil
	})

	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		uc.logger.Error("UpdateAppointment: transaction failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if err := uc.cache.Invalidate(ctx, oldDate, result.Date); err != nil {
		uc.logger.Warn("UpdateAppointment: failed to invalidate availability cache: %v", err)
	}

	uc.logger.Info("UpdateAppointment: successfully updated appointment id=%d", result.ID)

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

func isDomainError(err error) bool {
	for _, target := range []error{
		ErrAppointmentNotFound,
		ErrImmutable,
		ErrPersonNotFound,
		ErrPersonDisabled,
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
