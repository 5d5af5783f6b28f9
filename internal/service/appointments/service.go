package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	apptRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	ruleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availabilityrule"
	directoryClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/directoryservice"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// Service сервис операторского управления записями
type Service struct {
	txManager TxManager
	apptRepo  AppointmentRepository
	ruleRepo  AvailabilityRuleRepository
	blockRepo TimeBlockRepository
	directory DirectoryClient
	logger    Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	txManager TxManager,
	apptRepo AppointmentRepository,
	ruleRepo AvailabilityRuleRepository,
	blockRepo TimeBlockRepository,
	directory DirectoryClient,
	logger Logger,
) *Service {
	return &Service{
		txManager: txManager,
		apptRepo:  apptRepo,
		ruleRepo:  ruleRepo,
		blockRepo: blockRepo,
		directory: directory,
		logger:    logger,
	}
}

// GetByID получает запись по ID
// Запись видна только в рамках своего бизнеса
func (s *Service) GetByID(ctx context.Context, id int64, businessID int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for business=%d", id, businessID)

	appointment, err := s.getOwned(ctx, id, businessID)
	if err != nil {
		return nil, err
	}

	return models.FromDomainAppointment(appointment), nil
}

// ListForBusiness получает записи бизнеса с фильтрами по специалисту,
// периоду и статусу
func (s *Service) ListForBusiness(ctx context.Context, req *models.GetBusinessAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("ListForBusiness: business=%d, professional=%v, status=%v",
		req.BusinessID, req.ProfessionalID, req.Status)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("ListForBusiness: invalid status=%v for business=%d", req.Status, req.BusinessID)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	appointments, err := s.apptRepo.GetByBusinessWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("ListForBusiness: repository error for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: ListForBusiness - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListForBusiness: fetched %d appointments for business=%d", len(appointments), req.BusinessID)
	return models.FromDomainAppointmentList(appointments), nil
}

// Cancel отменяет запись с указанием причины
// Отменять можно только записи в статусах pending и confirmed
func (s *Service) Cancel(ctx context.Context, req *models.CancelAppointmentRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("Cancel: cancelling appointment id=%d for business=%d", req.ID, req.BusinessID)

	if len(req.CancellationReason) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: cancellationReason exceeds %d characters",
			ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	appointment, err := s.getOwned(ctx, req.ID, req.BusinessID)
	if err != nil {
		return nil, err
	}

	if !appointment.CanBeCancelled() {
		s.logger.Warn("Cancel: appointment id=%d in status=%s cannot be cancelled", req.ID, appointment.Status)
		return nil, ErrCannotCancel
	}

	if err := s.apptRepo.Cancel(ctx, req.ID, req.CancellationReason); err != nil {
		s.logger.Error("Cancel: repository error for appointment id=%d: %v", req.ID, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	updated, err := s.apptRepo.GetByID(ctx, req.ID)
	if err != nil {
		s.logger.Error("Cancel: failed to reload appointment id=%d: %v", req.ID, err)
		return nil, fmt.Errorf("%w: Cancel - failed to reload appointment: %v", ErrInternal, err)
	}

	s.logger.Info("Cancel: appointment id=%d cancelled", req.ID)
	return models.FromDomainAppointment(updated), nil
}

// UpdateStatus переводит запись в новый статус
// Допустимые переходы: pending -> confirmed/cancelled,
// confirmed -> completed/no_show/cancelled
func (s *Service) UpdateStatus(ctx context.Context, req *models.UpdateStatusRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("UpdateStatus: appointment id=%d -> status=%s", req.ID, req.Status)

	status, err := models.ToDomainStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for appointment id=%d", req.Status, req.ID)
		return nil, ErrInvalidStatus
	}

	appointment, err := s.getOwned(ctx, req.ID, req.BusinessID)
	if err != nil {
		return nil, err
	}

	if !appointment.CanTransitionTo(status) {
		s.logger.Warn("UpdateStatus: transition %s -> %s not allowed for appointment id=%d",
			appointment.Status, status, req.ID)
		return nil, ErrInvalidStatusTransition
	}

	if err := s.apptRepo.UpdateStatus(ctx, req.ID, status); err != nil {
		s.logger.Error("UpdateStatus: repository error for appointment id=%d: %v", req.ID, err)
		return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	updated, err := s.apptRepo.GetByID(ctx, req.ID)
	if err != nil {
		s.logger.Error("UpdateStatus: failed to reload appointment id=%d: %v", req.ID, err)
		return nil, fmt.Errorf("%w: UpdateStatus - failed to reload appointment: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateStatus: appointment id=%d moved to status=%s", req.ID, status)
	return models.FromDomainAppointment(updated), nil
}

// Reschedule переносит запись на другой слот, опционально к другому специалисту
// Проверка целевого слота и перенос выполняются в одной SERIALIZABLE транзакции
func (s *Service) Reschedule(ctx context.Context, req *models.RescheduleRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("Reschedule: appointment id=%d -> date=%s, start=%s, professional=%v",
		req.ID, req.Date.Format(domain.DateFormat), req.StartTime, req.ProfessionalID)

	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if err := req.StartTime.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
	}

	appointment, err := s.getOwned(ctx, req.ID, req.BusinessID)
	if err != nil {
		return nil, err
	}

	if !appointment.CanBeRescheduled() {
		s.logger.Warn("Reschedule: appointment id=%d in status=%s cannot be rescheduled", req.ID, appointment.Status)
		return nil, ErrCannotReschedule
	}

	targetProfessionalID := appointment.ProfessionalID
	if req.ProfessionalID != nil {
		targetProfessionalID = *req.ProfessionalID
	}

	business, err := s.directory.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		s.logger.Error("Reschedule: failed to get business id=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	professional, err := s.directory.GetProfessional(ctx, req.BusinessID, targetProfessionalID)
	if err != nil {
		if errors.Is(err, directoryClient.ErrProfessionalNotFound) {
			s.logger.Warn("Reschedule: professional id=%d not found in business id=%d",
				targetProfessionalID, req.BusinessID)
			return nil, ErrProfessionalNotFound
		}
		s.logger.Error("Reschedule: failed to get professional id=%d: %v", targetProfessionalID, err)
		return nil, fmt.Errorf("%w: failed to get professional: %v", ErrInternal, err)
	}

	loc := resolveLocation(business.Timezone, s.logger)

	slotStart, err := req.StartTime.Combine(req.Date, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
	}
	slotEnd := slotStart.Add(time.Duration(appointment.DurationMinutes) * time.Minute)

	rule, err := s.ruleRepo.GetActiveByWeekday(ctx, targetProfessionalID, req.Date.Weekday())
	if err != nil {
		if !errors.Is(err, ruleRepo.ErrRuleNotFound) {
			s.logger.Error("Reschedule: failed to get availability rule: %v", err)
			return nil, fmt.Errorf("%w: failed to get availability rule: %v", ErrInternal, err)
		}
		rule = nil
	}

	buffer := business.Settings.EffectiveBufferMinutes(professional.CustomBuffer, professional.BufferMinutes)

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		dayAppointments, err := s.apptRepo.ListForDay(txCtx, targetProfessionalID, req.Date, false)
		if err != nil {
			return fmt.Errorf("failed to get appointments: %w", err)
		}

		// Сама переносимая запись конфликтом не считается
		others := make([]*domain.Appointment, 0, len(dayAppointments))
		for _, a := range dayAppointments {
			if a.ID != req.ID {
				others = append(others, a)
			}
		}

		dayStart, dayEnd := dayWindow(req.Date, loc)
		blocks, err := s.blockRepo.ListOverlapping(txCtx, req.BusinessID, targetProfessionalID, dayStart, dayEnd)
		if err != nil {
			return fmt.Errorf("failed to get time blocks: %w", err)
		}

		conflict, err := slotHasConflict(slotStart, slotEnd, req.Date, loc, others, buffer, blocks, rule)
		if err != nil {
			return fmt.Errorf("conflict check failed: %w", err)
		}
		if conflict {
			return ErrSlotNoLongerAvailable
		}

		return s.apptRepo.Reschedule(txCtx, req.ID, req.Date, req.StartTime, targetProfessionalID)
	})
	if err != nil {
		if errors.Is(err, ErrSlotNoLongerAvailable) {
			s.logger.Warn("Reschedule: target slot %s %s taken for professional=%d",
				req.Date.Format(domain.DateFormat), req.StartTime, targetProfessionalID)
			return nil, ErrSlotNoLongerAvailable
		}
		s.logger.Error("Reschedule: transaction failed for appointment id=%d: %v", req.ID, err)
		return nil, fmt.Errorf("%w: Reschedule - transaction failed: %v", ErrInternal, err)
	}

	updated, err := s.apptRepo.GetByID(ctx, req.ID)
	if err != nil {
		s.logger.Error("Reschedule: failed to reload appointment id=%d: %v", req.ID, err)
		return nil, fmt.Errorf("%w: Reschedule - failed to reload appointment: %v", ErrInternal, err)
	}

	s.logger.Info("Reschedule: appointment id=%d moved to %s %s, professional=%d",
		req.ID, req.Date.Format(domain.DateFormat), req.StartTime, targetProfessionalID)
	return models.FromDomainAppointment(updated), nil
}

// getOwned загружает запись и проверяет принадлежность бизнесу
func (s *Service) getOwned(ctx context.Context, id int64, businessID int64) (*domain.Appointment, error) {
	appointment, err := s.apptRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: repository error: %v", ErrInternal, err)
	}

	if appointment.BusinessID != businessID {
		s.logger.Warn("appointment id=%d belongs to business=%d, requested by business=%d",
			id, appointment.BusinessID, businessID)
		return nil, ErrAccessDenied
	}

	return appointment, nil
}
