package get_available_slots

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
)

// UseCase use case для получения свободных слотов на дату
type UseCase struct {
	appointmentRepo AppointmentRepository
	calendar        SlotCalendar
	cache           AvailabilityCache
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	calendar SlotCalendar,
	cache AvailabilityCache,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		calendar:        calendar,
		cache:           cache,
		logger:          logger,
	}
}

// Execute возвращает слоты сетки, не занятые неотменёнными записями
// Ошибки кэша не прерывают запрос, слоты тогда считаются из базы
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	date := domain.DateOnly(req.Date)
	day := date.Format(domain.DateFormat)

	// 1. Кэш
	cached, ok, err := uc.cache.Get(ctx, date)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: cache get failed for %s: %v", day, err)
	}
	if ok {
		uc.logger.Info("GetAvailableSlots: cache hit for %s, %d slots", day, len(cached))
		return &Response{Date: date, Slots: cached}, nil
	}

	// 2. Поколение даты фиксируется до чтения хранилища
	// Если запись инвалидирует дату после чтения, устаревший результат в кэш не попадёт
	generation, genErr := uc.cache.Generation(ctx, date)
	if genErr != nil {
		uc.logger.Warn("GetAvailableSlots: cache generation failed for %s: %v", day, genErr)
	}

	// 3. Занятые слоты из хранилища
	occupied, err := uc.appointmentRepo.OccupiedSlots(ctx, date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get occupied slots for %s: %v", day, err)
		return nil, fmt.Errorf("%w: failed to get occupied slots: %v", ErrInternal, err)
	}

	// 4. Разность с сеткой
	free := uc.calendar.Available(occupied)

	if genErr == nil {
		stored, err := uc.cache.SetIfUnchanged(ctx, date, generation, free)
		switch {
		case err != nil:
			uc.logger.Warn("GetAvailableSlots: cache set failed for %s: %v", day, err)
		case !stored:
			uc.logger.Info("GetAvailableSlots: %s was invalidated during read, result not cached", day)
		}
	}

	uc.logger.Info("GetAvailableSlots: %s has %d free slots (%d occupied)", day, len(free), len(occupied))

	return &Response{Date: date, Slots: free}, nil
}
