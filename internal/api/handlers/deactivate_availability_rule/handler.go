package deactivate_availability_rule

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	scheduleService "github.com/m04kA/SMC-AppointmentService/internal/service/schedule"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
)

const (
	msgInvalidBusinessID     = "некорректный ID бизнеса"
	msgInvalidProfessionalID = "некорректный ID специалиста"
	msgInvalidWeekday        = "некорректный день недели, ожидается значение от 0 до 6"
	msgProfessionalNotFound  = "специалист не найден"
	msgRuleNotFound          = "правило доступности не найдено"
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

// Handle DELETE /api/v1/businesses/{businessId}/professionals/{professionalId}/availability-rules/{weekday}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	businessID, err := strconv.ParseInt(vars["businessId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /businesses/{id}/professionals/{id}/availability-rules/{weekday} - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	professionalID, err := strconv.ParseInt(vars["professionalId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /businesses/{id}/professionals/{id}/availability-rules/{weekday} - Invalid professional ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProfessionalID)
		return
	}

	weekday, err := strconv.Atoi(vars["weekday"])
	if err != nil || weekday < 0 || weekday > 6 {
		h.logger.Warn("DELETE /businesses/{id}/professionals/{id}/availability-rules/{weekday} - Invalid weekday: %s", vars["weekday"])
		handlers.RespondBadRequest(w, msgInvalidWeekday)
		return
	}

	err = h.service.DeactivateRule(r.Context(), &models.DeactivateRuleRequest{
		BusinessID:     businessID,
		ProfessionalID: professionalID,
		Weekday:        weekday,
	})
	if err != nil {
		switch {
		case errors.Is(err, scheduleService.ErrProfessionalNotFound):
			h.logger.Warn("DELETE /businesses/{id}/professionals/{id}/availability-rules/{weekday} - Professional not found: business_id=%d, professional_id=%d",
				businessID, professionalID)
			handlers.RespondNotFound(w, msgProfessionalNotFound)

		case errors.Is(err, scheduleService.ErrRuleNotFound):
			h.logger.Warn("DELETE /businesses/{id}/professionals/{id}/availability-rules/{weekday} - Rule not found: professional_id=%d, weekday=%d",
				professionalID, weekday)
			handlers.RespondNotFound(w, msgRuleNotFound)

		default:
			h.logger.Error("DELETE /businesses/{id}/professionals/{id}/availability-rules/{weekday} - Failed: professional_id=%d, error=%v",
				professionalID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /businesses/{id}/professionals/{id}/availability-rules/{weekday} - Rule deactivated: professional_id=%d, weekday=%d",
		professionalID, weekday)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
