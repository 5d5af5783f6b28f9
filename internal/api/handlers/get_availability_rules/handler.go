package get_availability_rules

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	scheduleService "github.com/m04kA/SMC-AppointmentService/internal/service/schedule"
)

const (
	msgInvalidBusinessID     = "некорректный ID бизнеса"
	msgInvalidProfessionalID = "некорректный ID специалиста"
	msgBusinessNotFound      = "бизнес не найден"
	msgProfessionalNotFound  = "специалист не найден"
)

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

// Handle GET /api/v1/businesses/{businessId}/professionals/{professionalId}/availability-rules
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	businessID, err := strconv.ParseInt(vars["businessId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/professionals/{id}/availability-rules - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	professionalID, err := strconv.ParseInt(vars["professionalId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/professionals/{id}/availability-rules - Invalid professional ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProfessionalID)
		return
	}

	result, err := h.service.ListRules(r.Context(), businessID, professionalID)
	if err != nil {
		switch {
		case errors.Is(err, scheduleService.ErrBusinessNotFound):
			h.logger.Warn("GET /businesses/{id}/professionals/{id}/availability-rules - Business not found: business_id=%d", businessID)
			handlers.RespondNotFound(w, msgBusinessNotFound)

		case errors.Is(err, scheduleService.ErrProfessionalNotFound):
			h.logger.Warn("GET /businesses/{id}/professionals/{id}/availability-rules - Professional not found: business_id=%d, professional_id=%d",
				businessID, professionalID)
			handlers.RespondNotFound(w, msgProfessionalNotFound)

		default:
			h.logger.Error("GET /businesses/{id}/professionals/{id}/availability-rules - Failed: professional_id=%d, error=%v",
				professionalID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /businesses/{id}/professionals/{id}/availability-rules - Rules retrieved: professional_id=%d, count=%d",
		professionalID, len(result.Rules))
	handlers.RespondJSON(w, http.StatusOK, result)
}
