package check_slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	ruleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availabilityrule"
	directoryClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/directoryservice"
)

// UseCase use case для точечной проверки доступности слота
// Результат - моментальный снимок: между ответом и созданием записи слот
// может занять кто-то другой, финальная проверка в любом случае выполняется
// атомарно внутри транзакции бронирования
type UseCase struct {
	apptRepo  AppointmentRepository
	ruleRepo  AvailabilityRuleRepository
	blockRepo TimeBlockRepository
	directory DirectoryClient
	logger    Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	apptRepo AppointmentRepository,
	ruleRepo AvailabilityRuleRepository,
	blockRepo TimeBlockRepository,
	directory DirectoryClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		apptRepo:  apptRepo,
		ruleRepo:  ruleRepo,
		blockRepo: blockRepo,
		directory: directory,
		logger:    logger,
	}
}

// Execute выполняет use case проверки слота
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CheckSlot: business=%d, professional=%d, date=%s, start=%s, duration=%d",
		req.BusinessID, req.ProfessionalID, req.Date.Format(domain.DateFormat), req.StartTime, req.DurationMinutes)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CheckSlot: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем бизнес с настройками бронирования
	business, err := uc.directory.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, directoryClient.ErrBusinessNotFound) {
			uc.logger.Warn("CheckSlot: business id=%d not found", req.BusinessID)
			return nil, ErrBusinessNotFound
		}
		uc.logger.Error("CheckSlot: failed to get business id=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	// 3. Получаем специалиста
	professional, err := uc.directory.GetProfessional(ctx, req.BusinessID, req.ProfessionalID)
	if err != nil {
		if errors.Is(err, directoryClient.ErrProfessionalNotFound) {
			uc.logger.Warn("CheckSlot: professional id=%d not found in business id=%d",
				req.ProfessionalID, req.BusinessID)
			return nil, ErrProfessionalNotFound
		}
		uc.logger.Error("CheckSlot: failed to get professional id=%d: %v", req.ProfessionalID, err)
		return nil, fmt.Errorf("%w: failed to get professional: %v", ErrInternal, err)
	}

	if professional.BusinessID != req.BusinessID {
		uc.logger.Warn("CheckSlot: professional id=%d belongs to another business", req.ProfessionalID)
		return nil, ErrProfessionalNotFound
	}

	// 4. Резолвим таймзону и собираем абсолютный интервал слота
	loc := resolveLocation(business.Timezone, uc.logger)

	slotStart, err := req.StartTime.Combine(req.Date, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
	}
	slotEnd := slotStart.Add(time.Duration(req.DurationMinutes) * time.Minute)

	// 5. Правило доступности нужно только ради окна перерыва
	// Отсутствие правила здесь не ошибка: проверяются только занятость и блокировки
	rule, err := uc.ruleRepo.GetActiveByWeekday(ctx, req.ProfessionalID, req.Date.Weekday())
	if err != nil {
		if !errors.Is(err, ruleRepo.ErrRuleNotFound) {
			uc.logger.Error("CheckSlot: failed to get availability rule: %v", err)
			return nil, fmt.Errorf("%w: failed to get availability rule: %v", ErrInternal, err)
		}
		rule = nil
	}

	// 6. Получаем записи на дату и блокировки времени
	appointments, err := uc.apptRepo.ListForDay(ctx, req.ProfessionalID, req.Date, false)
	if err != nil {
		uc.logger.Error("CheckSlot: failed to get appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}

	dayStart, dayEnd := dayWindow(req.Date, loc)
	blocks, err := uc.blockRepo.ListOverlapping(ctx, req.BusinessID, req.ProfessionalID, dayStart, dayEnd)
	if err != nil {
		uc.logger.Error("CheckSlot: failed to get time blocks: %v", err)
		return nil, fmt.Errorf("%w: failed to get time blocks: %v", ErrInternal, err)
	}

	// 7. Проверяем конфликты с действующим буфером
	buffer := business.Settings.EffectiveBufferMinutes(professional.CustomBuffer, professional.BufferMinutes)

	conflict, err := slotHasConflict(slotStart, slotEnd, req.Date, loc, appointments, buffer, blocks, rule)
	if err != nil {
		uc.logger.Error("CheckSlot: conflict check failed: %v", err)
		return nil, fmt.Errorf("%w: conflict check failed: %v", ErrInternal, err)
	}

	uc.logger.Info("CheckSlot: professional=%d, date=%s, start=%s, free=%t",
		req.ProfessionalID, req.Date.Format(domain.DateFormat), req.StartTime, !conflict)

	return &Response{Free: !conflict}, nil
}
