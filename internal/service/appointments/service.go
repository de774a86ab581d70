package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-TurnosService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-TurnosService/internal/service/appointments/models"
)

// Service сервис чтения записей и переходов между статусами
type Service struct {
	appointmentRepo AppointmentRepository
	cache           AvailabilityCache
	txManager       TransactionManager
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	cache AvailabilityCache,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		cache:           cache,
		txManager:       txManager,
		logger:          logger,
	}
}

// GetByID получает запись по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d", id)

	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAppointment(appointment), nil
}

// List получает записи с фильтрацией по дате, человеку и статусу
func (s *Service) List(ctx context.Context, req *models.ListAppointmentsRequest) (*models.AppointmentListResponse, error) {
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	list, err := s.appointmentRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d appointments", len(list))
	return models.FromDomainAppointmentList(list), nil
}

// Delete удаляет запись, посещённые записи удалить нельзя
func (s *Service) Delete(ctx context.Context, id int64) error {
	s.logger.Info("Delete: deleting appointment id=%d", id)

	var deleted *domain.Appointment

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		appointment, err := s.lockAppointment(txCtx, "Delete", id)
		if err != nil {
			return err
		}

		if !appointment.CanBeDeleted() {
			s.logger.Warn("Delete: appointment id=%d is attended", id)
			return fmt.Errorf("%w: attended appointment cannot be deleted", ErrImmutable)
		}

		if err := s.appointmentRepo.Delete(txCtx, id); err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			s.logger.Error("Delete: repository error for appointment id=%d: %v", id, err)
			return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
		}

		deleted = appointment
		return nil
	})
	if err != nil {
		return s.txError("Delete", err)
	}

	s.invalidate(ctx, "Delete", deleted)
	s.logger.Info("Delete: successfully deleted appointment id=%d", id)
	return nil
}

// Cancel отменяет запись и освобождает слот
// Повторная отмена возвращает запись без изменений
func (s *Service) Cancel(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	return s.transition(ctx, "Cancel", id, domain.StatusCancelled, func(a *domain.Appointment) bool {
		return a.IsAttended()
	})
}

// Confirm подтверждает запись
// Повторное подтверждение возвращает запись без изменений
func (s *Service) Confirm(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	return s.transition(ctx, "Confirm", id, domain.StatusConfirmed, func(a *domain.Appointment) bool {
		return a.IsAttended() || a.IsCancelled()
	})
}

// Attend отмечает запись посещённой, после этого запись не меняется
func (s *Service) Attend(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	return s.transition(ctx, "Attend", id, domain.StatusAttended, func(a *domain.Appointment) bool {
		return a.IsAttended() || a.IsCancelled()
	})
}

// transition переводит запись в target, если blocked не запрещает переход
// Если запись уже в target и переход разрешён, изменений нет
func (s *Service) transition(
	ctx context.Context,
	op string,
	id int64,
	target domain.AppointmentStatus,
	blocked func(a *domain.Appointment) bool,
) (*models.AppointmentResponse, error) {
	s.logger.Info("%s: appointment id=%d", op, id)

	var (
		result  *domain.Appointment
		changed bool
	)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		appointment, err := s.lockAppointment(txCtx, op, id)
		if err != nil {
			return err
		}

		if target != domain.StatusAttended && appointment.Status == target {
			result = appointment
			return nil
		}

		if blocked(appointment) {
			s.logger.Warn("%s: appointment id=%d is %s", op, id, appointment.Status)
			return fmt.Errorf("%w: status is %s", ErrImmutable, appointment.Status)
		}

		if err := s.appointmentRepo.UpdateStatus(txCtx, id, target); err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			s.logger.Error("%s: repository error for appointment id=%d: %v", op, id, err)
			return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
		}

		appointment.Status = target
		result = appointment
		changed = true
		return nil
	})
	if err != nil {
		return nil, s.txError(op, err)
	}

	if changed && target == domain.StatusCancelled {
		s.invalidate(ctx, op, result)
	}

	s.logger.Info("%s: appointment id=%d is %s", op, id, result.Status)
	return models.FromDomainAppointment(result), nil
}

// lockAppointment читает запись под блокировкой строки
func (s *Service) lockAppointment(ctx context.Context, op string, id int64) (*domain.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment id=%d not found", op, id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error for appointment id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return appointment, nil
}

func (s *Service) txError(op string, err error) error {
	for _, target := range []error{ErrAppointmentNotFound, ErrImmutable, ErrInvalidInput, ErrInternal} {
		if errors.Is(err, target) {
			return err
		}
	}
	s.logger.Error("%s: transaction failed: %v", op, err)
	return fmt.Errorf("%w: %s - transaction failed: %v", ErrInternal, op, err)
}

func (s *Service) invalidate(ctx context.Context, op string, a *domain.Appointment) {
	if err := s.cache.Invalidate(ctx, a.Date); err != nil {
		s.logger.Warn("%s: failed to invalidate availability cache for %s: %v",
			op, a.Date.Format(domain.DateFormat), err)
	}
}
