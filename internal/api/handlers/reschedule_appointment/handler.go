package reschedule_appointment

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentsService "github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const (
	msgInvalidBusinessID     = "некорректный ID бизнеса"
	msgInvalidAppointmentID  = "некорректный ID записи"
	msgInvalidRequestBody    = "некорректное тело запроса"
	msgInvalidDate           = "некорректная дата, ожидается формат YYYY-MM-DD"
	msgNotFound              = "запись не найдена"
	msgForbidden             = "нет доступа к этой записи"
	msgProfessionalNotFound  = "специалист не найден"
	msgCannotReschedule      = "запись нельзя перенести в текущем статусе"
	msgSlotNoLongerAvailable = "выбранное время уже занято"
	msgInvalidInput          = "некорректные данные переноса"
)

// RescheduleRequest HTTP request model
type RescheduleRequest struct {
	Date           string `json:"date"`
	StartTime      string `json:"startTime"`
	ProfessionalID *int64 `json:"professionalId,omitempty"`
}

type Handler struct {
	service AppointmentsService
	logger  Logger
}

func NewHandler(service AppointmentsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/businesses/{businessId}/appointments/{appointmentId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	businessID, err := strconv.ParseInt(vars["businessId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /businesses/{id}/appointments/{id}/reschedule - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	appointmentID, err := strconv.ParseInt(vars["appointmentId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /businesses/{id}/appointments/{id}/reschedule - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req RescheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /businesses/{id}/appointments/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	date, err := time.Parse(domain.DateFormat, req.Date)
	if err != nil {
		h.logger.Warn("PATCH /businesses/{id}/appointments/{id}/reschedule - Invalid date: %s", req.Date)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.Reschedule(r.Context(), &models.RescheduleRequest{
		ID:             appointmentID,
		BusinessID:     businessID,
		Date:           date,
		StartTime:      types.TimeString(req.StartTime),
		ProfessionalID: req.ProfessionalID,
	})
	if err != nil {
		switch {
		case errors.Is(err, appointmentsService.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /businesses/{id}/appointments/{id}/reschedule - Not found: appointment_id=%d", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, appointmentsService.ErrAccessDenied):
			h.logger.Warn("PATCH /businesses/{id}/appointments/{id}/reschedule - Access denied: business_id=%d, appointment_id=%d",
				businessID, appointmentID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, appointmentsService.ErrProfessionalNotFound):
			h.logger.Warn("PATCH /businesses/{id}/appointments/{id}/reschedule - Professional not found: appointment_id=%d", appointmentID)
			handlers.RespondNotFound(w, msgProfessionalNotFound)

		case errors.Is(err, appointmentsService.ErrCannotReschedule):
			h.logger.Warn("PATCH /businesses/{id}/appointments/{id}/reschedule - Cannot reschedule: appointment_id=%d", appointmentID)
			handlers.RespondBadRequest(w, msgCannotReschedule)

		case errors.Is(err, appointmentsService.ErrSlotNoLongerAvailable):
			h.logger.Info("PATCH /businesses/{id}/appointments/{id}/reschedule - Slot taken: appointment_id=%d, date=%s, start_time=%s",
				appointmentID, req.Date, req.StartTime)
			handlers.RespondConflict(w, msgSlotNoLongerAvailable)

		case errors.Is(err, appointmentsService.ErrInvalidInput):
			h.logger.Warn("PATCH /businesses/{id}/appointments/{id}/reschedule - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("PATCH /businesses/{id}/appointments/{id}/reschedule - Failed: appointment_id=%d, error=%v",
				appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /businesses/{id}/appointments/{id}/reschedule - Rescheduled: appointment_id=%d, date=%s, start_time=%s",
		appointmentID, req.Date, req.StartTime)
	handlers.RespondJSON(w, http.StatusOK, result)
}
