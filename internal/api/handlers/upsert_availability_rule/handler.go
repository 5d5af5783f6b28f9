package upsert_availability_rule

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	scheduleService "github.com/m04kA/SMC-AppointmentService/internal/service/schedule"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const (
	msgInvalidBusinessID     = "некорректный ID бизнеса"
	msgInvalidProfessionalID = "некорректный ID специалиста"
	msgInvalidRequestBody    = "некорректное тело запроса"
	msgBusinessNotFound      = "бизнес не найден"
	msgProfessionalNotFound  = "специалист не найден"
	msgInvalidInput          = "некорректные данные правила"
)

// UpsertRuleRequest HTTP request model
type UpsertRuleRequest struct {
	Weekday    int     `json:"weekday"`
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
	BreakStart *string `json:"breakStart,omitempty"`
	BreakEnd   *string `json:"breakEnd,omitempty"`
}

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/businesses/{businessId}/professionals/{professionalId}/availability-rules
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	businessID, err := strconv.ParseInt(vars["businessId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /businesses/{id}/professionals/{id}/availability-rules - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	professionalID, err := strconv.ParseInt(vars["professionalId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /businesses/{id}/professionals/{id}/availability-rules - Invalid professional ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProfessionalID)
		return
	}

	var req UpsertRuleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /businesses/{id}/professionals/{id}/availability-rules - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	serviceReq := &models.UpsertRuleRequest{
		BusinessID:     businessID,
		ProfessionalID: professionalID,
		Weekday:        req.Weekday,
		StartTime:      types.TimeString(req.StartTime),
		EndTime:        types.TimeString(req.EndTime),
	}
	if req.BreakStart != nil {
		breakStart := types.TimeString(*req.BreakStart)
		serviceReq.BreakStart = &breakStart
	}
	if req.BreakEnd != nil {
		breakEnd := types.TimeString(*req.BreakEnd)
		serviceReq.BreakEnd = &breakEnd
	}

	result, err := h.service.UpsertRule(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, scheduleService.ErrBusinessNotFound):
			h.logger.Warn("PUT /businesses/{id}/professionals/{id}/availability-rules - Business not found: business_id=%d", businessID)
			handlers.RespondNotFound(w, msgBusinessNotFound)

		case errors.Is(err, scheduleService.ErrProfessionalNotFound):
			h.logger.Warn("PUT /businesses/{id}/professionals/{id}/availability-rules - Professional not found: business_id=%d, professional_id=%d",
				businessID, professionalID)
			handlers.RespondNotFound(w, msgProfessionalNotFound)

		case errors.Is(err, scheduleService.ErrInvalidInput):
			h.logger.Warn("PUT /businesses/{id}/professionals/{id}/availability-rules - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("PUT /businesses/{id}/professionals/{id}/availability-rules - Failed: professional_id=%d, error=%v",
				professionalID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /businesses/{id}/professionals/{id}/availability-rules - Rule saved: professional_id=%d, weekday=%d",
		professionalID, req.Weekday)
	handlers.RespondJSON(w, http.StatusOK, result)
}
