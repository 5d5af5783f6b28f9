package create_time_block

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	scheduleService "github.com/m04kA/SMC-AppointmentService/internal/service/schedule"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
)

const (
	msgInvalidBusinessID    = "некорректный ID бизнеса"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidDatetime      = "некорректная дата и время, ожидается формат RFC3339"
	msgBusinessNotFound     = "бизнес не найден"
	msgProfessionalNotFound = "специалист не найден"
	msgInvalidInput         = "некорректные данные блокировки"
)

// CreateTimeBlockRequest HTTP request model
type CreateTimeBlockRequest struct {
	ProfessionalID *int64  `json:"professionalId,omitempty"`
	StartDatetime  string  `json:"startDatetime"`
	EndDatetime    string  `json:"endDatetime"`
	Reason         *string `json:"reason,omitempty"`
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

// Handle POST /api/v1/businesses/{businessId}/time-blocks
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	businessID, err := strconv.ParseInt(vars["businessId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /businesses/{id}/time-blocks - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	var req CreateTimeBlockRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /businesses/{id}/time-blocks - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	startDatetime, err := time.Parse(time.RFC3339, req.StartDatetime)
	if err != nil {
		h.logger.Warn("POST /businesses/{id}/time-blocks - Invalid start datetime: %s", req.StartDatetime)
		handlers.RespondBadRequest(w, msgInvalidDatetime)
		return
	}

	endDatetime, err := time.Parse(time.RFC3339, req.EndDatetime)
	if err != nil {
		h.logger.Warn("POST /businesses/{id}/time-blocks - Invalid end datetime: %s", req.EndDatetime)
		handlers.RespondBadRequest(w, msgInvalidDatetime)
		return
	}

	result, err := h.service.CreateTimeBlock(r.Context(), &models.CreateTimeBlockRequest{
		BusinessID:     businessID,
		ProfessionalID: req.ProfessionalID,
		StartDatetime:  startDatetime,
		EndDatetime:    endDatetime,
		Reason:         req.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, scheduleService.ErrBusinessNotFound):
			h.logger.Warn("POST /businesses/{id}/time-blocks - Business not found: business_id=%d", businessID)
			handlers.RespondNotFound(w, msgBusinessNotFound)

		case errors.Is(err, scheduleService.ErrProfessionalNotFound):
			h.logger.Warn("POST /businesses/{id}/time-blocks - Professional not found: business_id=%d", businessID)
			handlers.RespondNotFound(w, msgProfessionalNotFound)

		case errors.Is(err, scheduleService.ErrInvalidInput):
			h.logger.Warn("POST /businesses/{id}/time-blocks - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /businesses/{id}/time-blocks - Failed: business_id=%d, error=%v",
				businessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /businesses/{id}/time-blocks - Time block created: block_id=%d, business_id=%d",
		result.ID, businessID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
