package create_appointment

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	apptRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	ruleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availabilityrule"
	directoryClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/directoryservice"
)

// UseCase use case для создания записи
//
// Ключевая операция сервиса: финальная проверка слота и вставка выполняются
// в одной SERIALIZABLE транзакции с блокировкой записей дня FOR UPDATE.
// При гонке двух запросов за один слот ровно один получает запись,
// второй - ErrSlotNoLongerAvailable
type UseCase struct {
	txManager TxManager
	apptRepo  AppointmentRepository
	ruleRepo  AvailabilityRuleRepository
	blockRepo TimeBlockRepository
	directory DirectoryClient
	logger    Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	txManager TxManager,
	apptRepo AppointmentRepository,
	ruleRepo AvailabilityRuleRepository,
	blockRepo TimeBlockRepository,
	directory DirectoryClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		txManager: txManager,
		apptRepo:  apptRepo,
		ruleRepo:  ruleRepo,
		blockRepo: blockRepo,
		directory: directory,
		logger:    logger,
	}
}

// Execute выполняет use case создания записи
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: business=%d, professional=%d, service=%d, date=%s, start=%s, source=%s",
		req.BusinessID, req.ProfessionalID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime, req.Source)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем бизнес с настройками бронирования
	business, err := uc.directory.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, directoryClient.ErrBusinessNotFound) {
			uc.logger.Warn("CreateAppointment: business id=%d not found", req.BusinessID)
			return nil, ErrBusinessNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get business id=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	// 3. Публичные каналы проходят по capability-токену бизнеса
	// Операторский канал аутентифицируется на уровне API, токен не требуется
	if req.Source != domain.SourceOperatorUI {
		if err := checkAPIToken(req.APIToken, business.Settings.APIToken); err != nil {
			uc.logger.Warn("CreateAppointment: token check failed for business id=%d, source=%s",
				req.BusinessID, req.Source)
			return nil, err
		}
	}

	// 4. Получаем специалиста
	professional, err := uc.directory.GetProfessional(ctx, req.BusinessID, req.ProfessionalID)
	if err != nil {
		if errors.Is(err, directoryClient.ErrProfessionalNotFound) {
			uc.logger.Warn("CreateAppointment: professional id=%d not found in business id=%d",
				req.ProfessionalID, req.BusinessID)
			return nil, ErrProfessionalNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get professional id=%d: %v", req.ProfessionalID, err)
		return nil, fmt.Errorf("%w: failed to get professional: %v", ErrInternal, err)
	}

	if professional.BusinessID != req.BusinessID {
		uc.logger.Warn("CreateAppointment: professional id=%d belongs to another business", req.ProfessionalID)
		return nil, ErrProfessionalNotFound
	}

	// 5. Получаем услугу: длительность и цена снимаются в запись на момент создания
	service, err := uc.directory.GetService(ctx, req.BusinessID, req.ServiceID)
	if err != nil {
		if errors.Is(err, directoryClient.ErrServiceNotFound) {
			uc.logger.Warn("CreateAppointment: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 6. Идемпотентность: повтор с тем же ключом возвращает исходную запись
	if req.IdempotencyKey != nil {
		existing, err := uc.apptRepo.GetByIdempotencyKey(ctx, req.BusinessID, *req.IdempotencyKey)
		if err == nil {
			uc.logger.Info("CreateAppointment: idempotent replay, returning appointment id=%d", existing.ID)
			return toResponse(existing, true), nil
		}
		if !errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			uc.logger.Error("CreateAppointment: idempotency lookup failed: %v", err)
			return nil, fmt.Errorf("%w: idempotency lookup failed: %v", ErrInternal, err)
		}
	}

	loc := resolveLocation(business.Timezone, uc.logger)

	slotStart, err := req.StartTime.Combine(req.Date, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
	}
	slotEnd := slotStart.Add(time.Duration(service.DurationMinutes) * time.Minute)

	// 7. Правило доступности нужно только ради окна перерыва
	rule, err := uc.ruleRepo.GetActiveByWeekday(ctx, req.ProfessionalID, req.Date.Weekday())
	if err != nil {
		if !errors.Is(err, ruleRepo.ErrRuleNotFound) {
			uc.logger.Error("CreateAppointment: failed to get availability rule: %v", err)
			return nil, fmt.Errorf("%w: failed to get availability rule: %v", ErrInternal, err)
		}
		rule = nil
	}

	buffer := business.Settings.EffectiveBufferMinutes(professional.CustomBuffer, professional.BufferMinutes)

	// Статус новой записи определяется политикой бизнеса:
	// с предоплатой запись ждёт подтверждения платежа
	status := domain.StatusConfirmed
	if business.Settings.RequirePayment {
		status = domain.StatusPending
	}

	newAppt := &domain.Appointment{
		BusinessID:      req.BusinessID,
		ProfessionalID:  req.ProfessionalID,
		ServiceID:       req.ServiceID,
		ClientName:      req.ClientName,
		ClientPhone:     req.ClientPhone,
		Date:            req.Date,
		StartTime:       req.StartTime,
		DurationMinutes: service.DurationMinutes,
		Status:          status,
		Source:          req.Source,
		ServiceName:     service.Name,
		Notes:           req.Notes,
		IdempotencyKey:  req.IdempotencyKey,
	}
	if service.Price != nil {
		newAppt.ServicePrice = *service.Price
	}

	// 8. Финальная проверка и вставка атомарно: записи дня блокируются
	// FOR UPDATE, конкурирующая транзакция ждёт и увидит нашу вставку
	var created *domain.Appointment
	var replayed *domain.Appointment
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Повторная проверка ключа внутри транзакции: параллельный повтор
		// того же запроса мог вставить запись после проверки на шаге 6
		if req.IdempotencyKey != nil {
			existing, err := uc.apptRepo.GetByIdempotencyKey(txCtx, req.BusinessID, *req.IdempotencyKey)
			if err == nil {
				replayed = existing
				return nil
			}
			if !errors.Is(err, apptRepo.ErrAppointmentNotFound) {
				return fmt.Errorf("idempotency lookup failed: %w", err)
			}
		}

		appointments, err := uc.apptRepo.ListForDay(txCtx, req.ProfessionalID, req.Date, false)
		if err != nil {
			return fmt.Errorf("failed to get appointments: %w", err)
		}

		dayStart, dayEnd := dayWindow(req.Date, loc)
		blocks, err := uc.blockRepo.ListOverlapping(txCtx, req.BusinessID, req.ProfessionalID, dayStart, dayEnd)
		if err != nil {
			return fmt.Errorf("failed to get time blocks: %w", err)
		}

		conflict, err := slotHasConflict(slotStart, slotEnd, req.Date, loc, appointments, buffer, blocks, rule)
		if err != nil {
			return fmt.Errorf("conflict check failed: %w", err)
		}
		if conflict {
			return ErrSlotNoLongerAvailable
		}

		created, err = uc.apptRepo.Create(txCtx, newAppt)
		if err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotNoLongerAvailable) {
			uc.logger.Warn("CreateAppointment: slot %s %s taken for professional=%d",
				req.Date.Format(domain.DateFormat), req.StartTime, req.ProfessionalID)
			return nil, ErrSlotNoLongerAvailable
		}
		// Гонка по ключу идемпотентности: параллельный повтор успел вставить
		// запись первым, возвращаем её
		if errors.Is(err, apptRepo.ErrDuplicateIdempotencyKey) && req.IdempotencyKey != nil {
			existing, lookupErr := uc.apptRepo.GetByIdempotencyKey(ctx, req.BusinessID, *req.IdempotencyKey)
			if lookupErr != nil {
				uc.logger.Error("CreateAppointment: duplicate key lookup failed: %v", lookupErr)
				return nil, fmt.Errorf("%w: duplicate key lookup failed: %v", ErrInternal, lookupErr)
			}
			uc.logger.Info("CreateAppointment: idempotent replay after insert race, appointment id=%d", existing.ID)
			return toResponse(existing, true), nil
		}
		uc.logger.Error("CreateAppointment: transaction failed: %v", err)
		return nil, fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
	}

	if replayed != nil {
		uc.logger.Info("CreateAppointment: idempotent replay, returning appointment id=%d", replayed.ID)
		return toResponse(replayed, true), nil
	}

	uc.logger.Info("CreateAppointment: created appointment id=%d, professional=%d, date=%s, start=%s, status=%s",
		created.ID, req.ProfessionalID, req.Date.Format(domain.DateFormat), req.StartTime, created.Status)

	return toResponse(created, false), nil
}

// checkAPIToken сверяет токен запроса с токеном бизнеса за константное время
func checkAPIToken(got *string, want string) error {
	if want == "" {
		// Публичное бронирование для бизнеса не включено
		return ErrUnauthorized
	}
	if got == nil {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(*got), []byte(want)) != 1 {
		return ErrUnauthorized
	}
	return nil
}
