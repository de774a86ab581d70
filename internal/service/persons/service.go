package persons

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
	personRepo "github.com/m04kA/SMC-TurnosService/internal/infra/storage/person"
	"github.com/m04kA/SMC-TurnosService/internal/service/persons/models"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Service сервис для работы с людьми
type Service struct {
	personRepo      PersonRepository
	appointmentRepo AppointmentRepository
	cache           AvailabilityCache
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса людей
func NewService(
	personRepo PersonRepository,
	appointmentRepo AppointmentRepository,
	cache AvailabilityCache,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		personRepo:      personRepo,
		appointmentRepo: appointmentRepo,
		cache:           cache,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// Create регистрирует человека
// DNI и email (без учёта регистра) должны быть уникальны
func (s *Service) Create(ctx context.Context, req *models.CreatePersonRequest) (*models.PersonResponse, error) {
	s.logger.Info("Create: registering person dni=%d", req.DNI)

	if req.DNI <= 0 {
		return nil, fmt.Errorf("%w: dni must be positive", ErrInvalidInput)
	}

	birthDate, err := parseBirthDate(req.BirthDate)
	if err != nil {
		s.logger.Warn("Create: validation failed for dni=%d: %v", req.DNI, err)
		return nil, err
	}

	person := &domain.Person{
		DNI:       req.DNI,
		FullName:  strings.TrimSpace(req.FullName),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		BirthDate: birthDate,
		Enabled:   true,
	}
	if req.Enabled != nil {
		person.Enabled = *req.Enabled
	}

	if err := validatePerson(person); err != nil {
		s.logger.Warn("Create: validation failed for dni=%d: %v", req.DNI, err)
		return nil, err
	}

	var created *domain.Person

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		_, err := s.personRepo.GetByDNI(txCtx, person.DNI)
		switch {
		case err == nil:
			s.logger.Warn("Create: dni=%d already registered", person.DNI)
			return ErrDuplicateDNI
		case !errors.Is(err, personRepo.ErrPersonNotFound):
			return s.repositoryError("Create", err)
		}

		if err := s.checkEmailFree(txCtx, "Create", person.Email, 0); err != nil {
			return err
		}

		created, err = s.personRepo.Create(txCtx, person)
		if err != nil {
			return s.repositoryError("Create", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.txError("Create", err)
	}

	s.logger.Info("Create: successfully registered person dni=%d", created.DNI)
	return models.FromDomainPerson(created, s.timeProvider.Now()), nil
}

// GetByDNI получает человека по DNI вместе с возрастом
func (s *Service) GetByDNI(ctx context.Context, dni int64) (*models.PersonResponse, error) {
	s.logger.Info("GetByDNI: fetching person dni=%d", dni)

	person, err := s.personRepo.GetByDNI(ctx, dni)
	if err != nil {
		if errors.Is(err, personRepo.ErrPersonNotFound) {
			s.logger.Warn("GetByDNI: person dni=%d not found", dni)
			return nil, ErrPersonNotFound
		}
		s.logger.Error("GetByDNI: repository error for dni=%d: %v", dni, err)
		return nil, fmt.Errorf("%w: GetByDNI - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainPerson(person, s.timeProvider.Now()), nil
}

// List получает людей, опционально только включённых или отключённых
func (s *Service) List(ctx context.Context, req *models.ListPersonsRequest) (*models.PersonListResponse, error) {
	persons, err := s.personRepo.List(ctx, domain.PersonFilter{Enabled: req.Enabled})
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d persons", len(persons))
	return models.FromDomainPersonList(persons, s.timeProvider.Now()), nil
}

// Update частично обновляет человека
// Отключение не трогает существующие записи, но запрещает новые
func (s *Service) Update(ctx context.Context, dni int64, req *models.UpdatePersonRequest) (*models.PersonResponse, error) {
	s.logger.Info("Update: updating person dni=%d", dni)

	var birthDate *time.Time
	if req.BirthDate != nil {
		parsed, err := parseBirthDate(*req.BirthDate)
		if err != nil {
			s.logger.Warn("Update: validation failed for dni=%d: %v", dni, err)
			return nil, err
		}
		birthDate = &parsed
	}

	var updated *domain.Person

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		person, err := s.personRepo.GetByDNI(txCtx, dni)
		if err != nil {
			if errors.Is(err, personRepo.ErrPersonNotFound) {
				s.logger.Warn("Update: person dni=%d not found", dni)
				return ErrPersonNotFound
			}
			return s.repositoryError("Update", err)
		}

		req.ApplyToPerson(person, birthDate)
		person.FullName = strings.TrimSpace(person.FullName)
		person.Email = strings.TrimSpace(person.Email)
		person.Phone = strings.TrimSpace(person.Phone)

		if err := validatePerson(person); err != nil {
			s.logger.Warn("Update: validation failed for dni=%d: %v", dni, err)
			return err
		}

		if req.Email != nil {
			if err := s.checkEmailFree(txCtx, "Update", person.Email, dni); err != nil {
				return err
			}
		}

		updated, err = s.personRepo.Update(txCtx, person)
		if err != nil {
			return s.repositoryError("Update", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.txError("Update", err)
	}

	s.logger.Info("Update: successfully updated person dni=%d", dni)
	return models.FromDomainPerson(updated, s.timeProvider.Now()), nil
}

// Delete удаляет человека вместе со всеми его записями
func (s *Service) Delete(ctx context.Context, dni int64) error {
	s.logger.Info("Delete: deleting person dni=%d", dni)

	var dates []time.Time

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		dates, err = s.appointmentRepo.DatesByPerson(txCtx, dni)
		if err != nil {
			return s.repositoryError("Delete", err)
		}

		if err := s.personRepo.Delete(txCtx, dni); err != nil {
			if errors.Is(err, personRepo.ErrPersonNotFound) {
				s.logger.Warn("Delete: person dni=%d not found", dni)
				return ErrPersonNotFound
			}
			return s.repositoryError("Delete", err)
		}
		return nil
	})
	if err != nil {
		return s.txError("Delete", err)
	}

	if len(dates) > 0 {
		if err := s.cache.Invalidate(ctx, dates...); err != nil {
			s.logger.Warn("Delete: failed to invalidate availability cache for %d dates: %v", len(dates), err)
		}
	}

	s.logger.Info("Delete: successfully deleted person dni=%d with appointments on %d dates", dni, len(dates))
	return nil
}

// Вспомогательные методы

func (s *Service) checkEmailFree(ctx context.Context, op, email string, excludeDNI int64) error {
	taken, err := s.personRepo.ExistsByEmail(ctx, email, excludeDNI)
	if err != nil {
		return s.repositoryError(op, err)
	}
	if taken {
		s.logger.Warn("%s: email %s already registered", op, email)
		return ErrDuplicateEmail
	}
	return nil
}

// repositoryError переводит ошибки хранилища в ошибки сервиса
// Нарушения уникальности возможны при гонке двух регистраций
func (s *Service) repositoryError(op string, err error) error {
	switch {
	case errors.Is(err, personRepo.ErrDuplicateDNI):
		return ErrDuplicateDNI
	case errors.Is(err, personRepo.ErrDuplicateEmail):
		return ErrDuplicateEmail
	case errors.Is(err, personRepo.ErrPersonNotFound):
		return ErrPersonNotFound
	}
	s.logger.Error("%s: repository error: %v", op, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}

func (s *Service) txError(op string, err error) error {
	for _, target := range []error{ErrPersonNotFound, ErrDuplicateDNI, ErrDuplicateEmail, ErrInvalidInput, ErrInternal} {
		if errors.Is(err, target) {
			return err
		}
	}
	s.logger.Error("%s: transaction failed: %v", op, err)
	return fmt.Errorf("%w: %s - transaction failed: %v", ErrInternal, op, err)
}

// validatePerson проверяет поля человека после нормализации
func validatePerson(p *domain.Person) error {
	if p.FullName == "" {
		return fmt.Errorf("%w: fullName is required", ErrInvalidInput)
	}
	if len(p.FullName) > domain.MaxFullNameLength {
		return fmt.Errorf("%w: fullName must be at most %d characters", ErrInvalidInput, domain.MaxFullNameLength)
	}
	if len(p.Email) > domain.MaxEmailLength || !emailPattern.MatchString(p.Email) {
		return fmt.Errorf("%w: invalid email %q", ErrInvalidInput, p.Email)
	}
	if len(p.Phone) > domain.MaxPhoneLength {
		return fmt.Errorf("%w: phone must be at most %d characters", ErrInvalidInput, domain.MaxPhoneLength)
	}
	return nil
}

func parseBirthDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: birthDate is required", ErrInvalidInput)
	}
	t, err := time.Parse(domain.DateFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: birthDate must be YYYY-MM-DD", ErrInvalidInput)
	}
	return t, nil
}
