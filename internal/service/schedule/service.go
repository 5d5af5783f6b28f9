package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	ruleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availabilityrule"
	timeblockRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/timeblock"
	directoryClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/directoryservice"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
)

// Service сервис управления расписанием: правила доступности специалистов
// и административные блокировки времени
type Service struct {
	ruleRepo  AvailabilityRuleRepository
	blockRepo TimeBlockRepository
	directory DirectoryClient
	logger    Logger
}

// NewService создает новый экземпляр сервиса расписания
func NewService(
	ruleRepo AvailabilityRuleRepository,
	blockRepo TimeBlockRepository,
	directory DirectoryClient,
	logger Logger,
) *Service {
	return &Service{
		ruleRepo:  ruleRepo,
		blockRepo: blockRepo,
		directory: directory,
		logger:    logger,
	}
}

// UpsertRule создает или обновляет правило доступности на день недели
// Существующее правило для пары (специалист, день недели) перезаписывается
func (s *Service) UpsertRule(ctx context.Context, req *models.UpsertRuleRequest) (*models.RuleResponse, error) {
	s.logger.Info("UpsertRule: professional=%d, weekday=%d, %s-%s",
		req.ProfessionalID, req.Weekday, req.StartTime, req.EndTime)

	if err := s.validateRule(req); err != nil {
		s.logger.Warn("UpsertRule: validation failed: %v", err)
		return nil, err
	}

	if err := s.checkProfessional(ctx, req.BusinessID, req.ProfessionalID); err != nil {
		return nil, err
	}

	rule := &domain.AvailabilityRule{
		ProfessionalID: req.ProfessionalID,
		Weekday:        time.Weekday(req.Weekday),
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		BreakStart:     req.BreakStart,
		BreakEnd:       req.BreakEnd,
		IsActive:       true,
	}

	saved, err := s.ruleRepo.Upsert(ctx, rule)
	if err != nil {
		s.logger.Error("UpsertRule: repository error for professional=%d: %v", req.ProfessionalID, err)
		return nil, fmt.Errorf("%w: UpsertRule - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpsertRule: rule id=%d saved for professional=%d, weekday=%d",
		saved.ID, req.ProfessionalID, req.Weekday)
	return models.FromDomainRule(saved), nil
}

// ListRules получает все правила доступности специалиста, включая неактивные
func (s *Service) ListRules(ctx context.Context, businessID, professionalID int64) (*models.RuleListResponse, error) {
	s.logger.Info("ListRules: business=%d, professional=%d", businessID, professionalID)

	if err := s.checkProfessional(ctx, businessID, professionalID); err != nil {
		return nil, err
	}

	rules, err := s.ruleRepo.ListByProfessional(ctx, professionalID)
	if err != nil {
		s.logger.Error("ListRules: repository error for professional=%d: %v", professionalID, err)
		return nil, fmt.Errorf("%w: ListRules - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainRuleList(rules), nil
}

// DeactivateRule отключает правило на день недели, делая день выходным
// Правило остаётся в хранилище и может быть включено повторным upsert
func (s *Service) DeactivateRule(ctx context.Context, req *models.DeactivateRuleRequest) error {
	s.logger.Info("DeactivateRule: professional=%d, weekday=%d", req.ProfessionalID, req.Weekday)

	if req.Weekday < 0 || req.Weekday > 6 {
		return fmt.Errorf("%w: weekday must be in range 0..6", ErrInvalidInput)
	}

	if err := s.checkProfessional(ctx, req.BusinessID, req.ProfessionalID); err != nil {
		return err
	}

	if err := s.ruleRepo.Deactivate(ctx, req.ProfessionalID, time.Weekday(req.Weekday)); err != nil {
		if errors.Is(err, ruleRepo.ErrRuleNotFound) {
			s.logger.Warn("DeactivateRule: no rule for professional=%d, weekday=%d", req.ProfessionalID, req.Weekday)
			return ErrRuleNotFound
		}
		s.logger.Error("DeactivateRule: repository error for professional=%d: %v", req.ProfessionalID, err)
		return fmt.Errorf("%w: DeactivateRule - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("DeactivateRule: rule deactivated for professional=%d, weekday=%d", req.ProfessionalID, req.Weekday)
	return nil
}

// CreateTimeBlock создает блокировку времени
// Без специалиста блокировка закрывает весь бизнес
func (s *Service) CreateTimeBlock(ctx context.Context, req *models.CreateTimeBlockRequest) (*models.TimeBlockResponse, error) {
	s.logger.Info("CreateTimeBlock: business=%d, professional=%v, %s - %s",
		req.BusinessID, req.ProfessionalID, req.StartDatetime.Format(time.RFC3339), req.EndDatetime.Format(time.RFC3339))

	if req.StartDatetime.IsZero() || req.EndDatetime.IsZero() {
		return nil, fmt.Errorf("%w: startDatetime and endDatetime are required", ErrInvalidInput)
	}
	if !req.StartDatetime.Before(req.EndDatetime) {
		return nil, fmt.Errorf("%w: startDatetime must be before endDatetime", ErrInvalidInput)
	}
	if req.Reason != nil && len(*req.Reason) > domain.MaxNotesLength {
		return nil, fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	if err := s.checkBusiness(ctx, req.BusinessID); err != nil {
		return nil, err
	}

	if req.ProfessionalID != nil {
		if err := s.checkProfessional(ctx, req.BusinessID, *req.ProfessionalID); err != nil {
			return nil, err
		}
	}

	block := &domain.TimeBlock{
		BusinessID:     req.BusinessID,
		ProfessionalID: req.ProfessionalID,
		StartDatetime:  req.StartDatetime,
		EndDatetime:    req.EndDatetime,
		Reason:         req.Reason,
	}

	created, err := s.blockRepo.Create(ctx, block)
	if err != nil {
		s.logger.Error("CreateTimeBlock: repository error for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: CreateTimeBlock - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateTimeBlock: block id=%d created for business=%d", created.ID, req.BusinessID)
	return models.FromDomainTimeBlock(created), nil
}

// DeleteTimeBlock удаляет блокировку времени своего бизнеса
func (s *Service) DeleteTimeBlock(ctx context.Context, id int64, businessID int64) error {
	s.logger.Info("DeleteTimeBlock: block id=%d, business=%d", id, businessID)

	if err := s.blockRepo.Delete(ctx, id, businessID); err != nil {
		if errors.Is(err, timeblockRepo.ErrTimeBlockNotFound) {
			s.logger.Warn("DeleteTimeBlock: block id=%d not found for business=%d", id, businessID)
			return ErrTimeBlockNotFound
		}
		s.logger.Error("DeleteTimeBlock: repository error for block id=%d: %v", id, err)
		return fmt.Errorf("%w: DeleteTimeBlock - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("DeleteTimeBlock: block id=%d deleted", id)
	return nil
}

// validateRule проверяет рабочее окно и окно перерыва
func (s *Service) validateRule(req *models.UpsertRuleRequest) error {
	if req.Weekday < 0 || req.Weekday > 6 {
		return fmt.Errorf("%w: weekday must be in range 0..6", ErrInvalidInput)
	}
	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
	}
	if err := req.EndTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid endTime: %v", ErrInvalidInput, err)
	}
	if !req.StartTime.IsBefore(req.EndTime) {
		return fmt.Errorf("%w: startTime must be before endTime", ErrInvalidInput)
	}

	// Перерыв задаётся только целиком
	if (req.BreakStart == nil) != (req.BreakEnd == nil) {
		return fmt.Errorf("%w: breakStart and breakEnd must be set together", ErrInvalidInput)
	}
	if req.BreakStart != nil {
		if err := req.BreakStart.Validate(); err != nil {
			return fmt.Errorf("%w: invalid breakStart: %v", ErrInvalidInput, err)
		}
		if err := req.BreakEnd.Validate(); err != nil {
			return fmt.Errorf("%w: invalid breakEnd: %v", ErrInvalidInput, err)
		}
		if !req.BreakStart.IsBefore(*req.BreakEnd) {
			return fmt.Errorf("%w: breakStart must be before breakEnd", ErrInvalidInput)
		}
		if req.BreakStart.IsBefore(req.StartTime) || req.EndTime.IsBefore(*req.BreakEnd) {
			return fmt.Errorf("%w: break window must be inside working hours", ErrInvalidInput)
		}
	}

	return nil
}

// checkBusiness проверяет существование бизнеса
func (s *Service) checkBusiness(ctx context.Context, businessID int64) error {
	if _, err := s.directory.GetBusiness(ctx, businessID); err != nil {
		if errors.Is(err, directoryClient.ErrBusinessNotFound) {
			s.logger.Warn("business id=%d not found", businessID)
			return ErrBusinessNotFound
		}
		s.logger.Error("failed to get business id=%d: %v", businessID, err)
		return fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}
	return nil
}

// checkProfessional проверяет существование специалиста и принадлежность бизнесу
func (s *Service) checkProfessional(ctx context.Context, businessID, professionalID int64) error {
	professional, err := s.directory.GetProfessional(ctx, businessID, professionalID)
	if err != nil {
		if errors.Is(err, directoryClient.ErrProfessionalNotFound) {
			s.logger.Warn("professional id=%d not found in business id=%d", professionalID, businessID)
			return ErrProfessionalNotFound
		}
		s.logger.Error("failed to get professional id=%d: %v", professionalID, err)
		return fmt.Errorf("%w: failed to get professional: %v", ErrInternal, err)
	}

	if professional.BusinessID != businessID {
		s.logger.Warn("professional id=%d belongs to another business", professionalID)
		return ErrProfessionalNotFound
	}

	return nil
}
