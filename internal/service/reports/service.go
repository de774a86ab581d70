package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
	personRepo "github.com/m04kA/SMC-TurnosService/internal/infra/storage/person"
	"github.com/m04kA/SMC-TurnosService/internal/service/reports/models"
)

// Service сервис отчётов, только чтение
type Service struct {
	appointmentRepo AppointmentRepository
	personRepo      PersonRepository
	txManager       TransactionManager
	now             func() time.Time
	logger          Logger
}

// NewService создает новый экземпляр сервиса отчётов
func NewService(
	appointmentRepo AppointmentRepository,
	personRepo PersonRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		personRepo:      personRepo,
		txManager:       txManager,
		now:             time.Now,
		logger:          logger,
	}
}

// ByDate все записи на дату, включая отменённые
func (s *Service) ByDate(ctx context.Context, date time.Time) (*models.AppointmentsReport, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	day := domain.DateOnly(date)

	list, err := s.appointmentRepo.List(ctx, domain.AppointmentFilter{Date: &day})
	if err != nil {
		s.logger.Error("ByDate: repository error: %v", err)
		return nil, fmt.Errorf("%w: ByDate - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ByDate: %d appointments on %s", len(list), day.Format(domain.DateFormat))

	return &models.AppointmentsReport{
		From:         day.Format(domain.DateFormat),
		To:           day.Format(domain.DateFormat),
		Total:        len(list),
		Appointments: models.FromDomainAppointments(list),
	}, nil
}

// ByPerson все записи человека
func (s *Service) ByPerson(ctx context.Context, dni int64) (*models.PersonAppointmentsReport, error) {
	var report *models.PersonAppointmentsReport

	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		person, err := s.personRepo.GetByDNI(txCtx, dni)
		if err != nil {
			if errors.Is(err, personRepo.ErrPersonNotFound) {
				s.logger.Warn("ByPerson: person dni=%d not found", dni)
				return ErrPersonNotFound
			}
			return fmt.Errorf("%w: ByPerson - repository error: %v", ErrInternal, err)
		}

		list, err := s.appointmentRepo.List(txCtx, domain.AppointmentFilter{PersonDNI: &dni})
		if err != nil {
			return fmt.Errorf("%w: ByPerson - repository error: %v", ErrInternal, err)
		}

		report = &models.PersonAppointmentsReport{
			Person:       models.FromDomainPerson(person, s.now()),
			Total:        len(list),
			Appointments: models.FromDomainAppointments(list),
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrPersonNotFound):
			return nil, err
		case errors.Is(err, ErrInternal):
			s.logger.Error("ByPerson: %v", err)
			return nil, err
		}
		s.logger.Error("ByPerson: transaction failed: %v", err)
		return nil, fmt.Errorf("%w: ByPerson - transaction failed: %v", ErrInternal, err)
	}

	s.logger.Info("ByPerson: %d appointments for dni=%d", report.Total, dni)
	return report, nil
}

// CancelledInPeriod отменённые записи с датой в [from, to]
func (s *Service) CancelledInPeriod(ctx context.Context, from, to time.Time) (*models.AppointmentsReport, error) {
	return s.byStatusInPeriod(ctx, "CancelledInPeriod", domain.StatusCancelled, from, to)
}

// ConfirmedInPeriod подтверждённые записи с датой в [from, to]
func (s *Service) ConfirmedInPeriod(ctx context.Context, from, to time.Time) (*models.AppointmentsReport, error) {
	return s.byStatusInPeriod(ctx, "ConfirmedInPeriod", domain.StatusConfirmed, from, to)
}

func (s *Service) byStatusInPeriod(
	ctx context.Context,
	op string,
	status domain.AppointmentStatus,
	from, to time.Time,
) (*models.AppointmentsReport, error) {
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("%w: from and to are required", ErrInvalidInput)
	}
	start, end := domain.DateOnly(from), domain.DateOnly(to)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: from must not be after to", ErrInvalidInput)
	}

	list, err := s.appointmentRepo.List(ctx, domain.AppointmentFilter{
		StartDate: &start,
		EndDate:   &end,
		Status:    &status,
	})
	if err != nil {
		s.logger.Error("%s: repository error: %v", op, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	s.logger.Info("%s: %d appointments between %s and %s",
		op, len(list), start.Format(domain.DateFormat), end.Format(domain.DateFormat))

	return &models.AppointmentsReport{
		From:         start.Format(domain.DateFormat),
		To:           end.Format(domain.DateFormat),
		Status:       string(status),
		Total:        len(list),
		Appointments: models.FromDomainAppointments(list),
	}, nil
}

// FrequentCancellers люди, у которых отменённых записей не меньше minCancelled
func (s *Service) FrequentCancellers(ctx context.Context, minCancelled int) (*models.CancellersReport, error) {
	if minCancelled <= 0 {
		return nil, fmt.Errorf("%w: min must be positive", ErrInvalidInput)
	}

	stats, err := s.appointmentRepo.CountCancelledByPerson(ctx, minCancelled)
	if err != nil {
		s.logger.Error("FrequentCancellers: repository error: %v", err)
		return nil, fmt.Errorf("%w: FrequentCancellers - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("FrequentCancellers: %d persons with at least %d cancellations", len(stats), minCancelled)

	return &models.CancellersReport{
		MinCancelled: minCancelled,
		Persons:      models.FromDomainCancellers(stats),
	}, nil
}

// PersonsStatus делит людей на включённых и отключённых
func (s *Service) PersonsStatus(ctx context.Context) (*models.PersonsStatusReport, error) {
	persons, err := s.personRepo.List(ctx, domain.PersonFilter{})
	if err != nil {
		s.logger.Error("PersonsStatus: repository error: %v", err)
		return nil, fmt.Errorf("%w: PersonsStatus - repository error: %v", ErrInternal, err)
	}

	now := s.now()
	report := &models.PersonsStatusReport{
		Enabled:  make([]models.PersonRow, 0),
		Disabled: make([]models.PersonRow, 0),
	}
	for _, p := range persons {
		if p.Enabled {
			report.Enabled = append(report.Enabled, models.FromDomainPerson(p, now))
		} else {
			report.Disabled = append(report.Disabled, models.FromDomainPerson(p, now))
		}
	}
	report.EnabledCount = len(report.Enabled)
	report.DisabledCount = len(report.Disabled)

	s.logger.Info("PersonsStatus: %d enabled, %d disabled", report.EnabledCount, report.DisabledCount)
	return report, nil
}
