package get_free_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	ruleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availabilityrule"
	directoryClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/directoryservice"
)

// UseCase use case для получения свободных слотов специалиста на день
// Операция чистая: не имеет побочных эффектов, безопасна для повторных вызовов.
// Возвращённый слот - рекомендация, а не резерв: финальная проверка
// выполняется атомарно при создании записи
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

// Execute выполняет use case получения свободных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetFreeSlots: business=%d, professional=%d, service=%d, date=%s",
		req.BusinessID, req.ProfessionalID, req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetFreeSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем бизнес с настройками бронирования
	business, err := uc.directory.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, directoryClient.ErrBusinessNotFound) {
			uc.logger.Warn("GetFreeSlots: business id=%d not found", req.BusinessID)
			return nil, ErrBusinessNotFound
		}
		uc.logger.Error("GetFreeSlots: failed to get business id=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	// 3. Получаем специалиста (включая переопределение буфера)
	professional, err := uc.directory.GetProfessional(ctx, req.BusinessID, req.ProfessionalID)
	if err != nil {
		if errors.Is(err, directoryClient.ErrProfessionalNotFound) {
			uc.logger.Warn("GetFreeSlots: professional id=%d not found in business id=%d",
				req.ProfessionalID, req.BusinessID)
			return nil, ErrProfessionalNotFound
		}
		uc.logger.Error("GetFreeSlots: failed to get professional id=%d: %v", req.ProfessionalID, err)
		return nil, fmt.Errorf("%w: failed to get professional: %v", ErrInternal, err)
	}

	if professional.BusinessID != req.BusinessID {
		uc.logger.Warn("GetFreeSlots: professional id=%d belongs to another business", req.ProfessionalID)
		return nil, ErrProfessionalNotFound
	}

	// 4. Получаем услугу (длительность нужна для генерации кандидатов)
	service, err := uc.directory.GetService(ctx, req.BusinessID, req.ServiceID)
	if err != nil {
		if errors.Is(err, directoryClient.ErrServiceNotFound) {
			uc.logger.Warn("GetFreeSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetFreeSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 5. Резолвим таймзону бизнеса
	loc := resolveLocation(business.Timezone, uc.logger)

	// 6. Получаем правило доступности на день недели
	// Отсутствующее или неактивное правило - это "выходной", а не ошибка
	rule, err := uc.ruleRepo.GetActiveByWeekday(ctx, req.ProfessionalID, req.Date.Weekday())
	if err != nil {
		if errors.Is(err, ruleRepo.ErrRuleNotFound) {
			uc.logger.Info("GetFreeSlots: no active rule for professional=%d on weekday=%d",
				req.ProfessionalID, req.Date.Weekday())
			return uc.emptyResponse(req), nil
		}
		uc.logger.Error("GetFreeSlots: failed to get availability rule: %v", err)
		return nil, fmt.Errorf("%w: failed to get availability rule: %v", ErrInternal, err)
	}

	// 7. Генерируем кандидатов стартовых времён
	candidates, err := generateCandidateSlots(
		rule.StartTime,
		rule.EndTime,
		service.DurationMinutes,
		business.Settings.SlotIntervalMinutes,
	)
	if err != nil {
		uc.logger.Error("GetFreeSlots: failed to generate candidate slots: %v", err)
		return nil, fmt.Errorf("%w: failed to generate candidate slots: %v", ErrInternal, err)
	}

	// 8. Получаем записи специалиста на дату (без отменённых)
	appointments, err := uc.apptRepo.ListForDay(ctx, req.ProfessionalID, req.Date, false)
	if err != nil {
		uc.logger.Error("GetFreeSlots: failed to get appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}

	// 9. Получаем блокировки времени, пересекающие день
	dayStart, dayEnd := dayWindow(req.Date, loc)
	blocks, err := uc.blockRepo.ListOverlapping(ctx, req.BusinessID, req.ProfessionalID, dayStart, dayEnd)
	if err != nil {
		uc.logger.Error("GetFreeSlots: failed to get time blocks: %v", err)
		return nil, fmt.Errorf("%w: failed to get time blocks: %v", ErrInternal, err)
	}

	// 10. Резолвим действующий буфер: переопределение специалиста или дефолт бизнеса
	buffer := business.Settings.EffectiveBufferMinutes(professional.CustomBuffer, professional.BufferMinutes)

	// 11. Отфильтровываем конфликтующих кандидатов
	slots := make([]Slot, 0, len(candidates))
	for _, candidate := range candidates {
		slotStart, err := candidate.Combine(req.Date, loc)
		if err != nil {
			uc.logger.Error("GetFreeSlots: failed to combine slot time: %v", err)
			return nil, fmt.Errorf("%w: failed to combine slot time: %v", ErrInternal, err)
		}
		slotEnd := slotStart.Add(time.Duration(service.DurationMinutes) * time.Minute)

		conflict, err := slotHasConflict(slotStart, slotEnd, req.Date, loc, appointments, buffer, blocks, rule)
		if err != nil {
			uc.logger.Error("GetFreeSlots: conflict check failed: %v", err)
			return nil, fmt.Errorf("%w: conflict check failed: %v", ErrInternal, err)
		}

		if !conflict {
			slots = append(slots, Slot{
				StartTime:       candidate,
				DurationMinutes: service.DurationMinutes,
			})
		}
	}

	uc.logger.Info("GetFreeSlots: %d of %d candidates free for professional=%d, date=%s",
		len(slots), len(candidates), req.ProfessionalID, req.Date.Format(domain.DateFormat))

	return &Response{
		Date:           req.Date,
		BusinessID:     req.BusinessID,
		ProfessionalID: req.ProfessionalID,
		ServiceID:      req.ServiceID,
		Slots:          slots,
	}, nil
}

func (uc *UseCase) emptyResponse(req *Request) *Response {
	return &Response{
		Date:           req.Date,
		BusinessID:     req.BusinessID,
		ProfessionalID: req.ProfessionalID,
		ServiceID:      req.ServiceID,
		Slots:          []Slot{},
	}
}
