package check_slot

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	checkSlot "github.com/m04kA/SMC-AppointmentService/internal/usecase/check_slot"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const (
	msgInvalidBusinessID     = "некорректный ID бизнеса"
	msgInvalidProfessionalID = "некорректный ID специалиста"
	msgMissingDate           = "дата обязательна"
	msgInvalidDate           = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgMissingStartTime      = "время начала обязательно"
	msgInvalidStartTime      = "некорректный формат времени, ожидается HH:MM"
	msgMissingDuration       = "длительность обязательна"
	msgInvalidDuration       = "некорректная длительность"
	msgBusinessNotFound      = "бизнес не найден"
	msgProfessionalNotFound  = "специалист не найден"
)

type Handler struct {
	useCase CheckSlotUseCase
	logger  Logger
}

func NewHandler(useCase CheckSlotUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// CheckSlotResponse HTTP response model
type CheckSlotResponse struct {
	Free bool `json:"free"`
}

// Handle GET /api/v1/businesses/{businessId}/professionals/{professionalId}/check-slot
// Query params: date (YYYY-MM-DD), startTime (HH:MM), durationMinutes
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	businessID, err := strconv.ParseInt(vars["businessId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/professionals/{id}/check-slot - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	professionalID, err := strconv.ParseInt(vars["professionalId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/professionals/{id}/check-slot - Invalid professional ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProfessionalID)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/professionals/{id}/check-slot - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	startTimeStr := r.URL.Query().Get("startTime")
	if startTimeStr == "" {
		handlers.RespondBadRequest(w, msgMissingStartTime)
		return
	}
	startTime, err := types.NewTimeStringFromString(startTimeStr)
	if err != nil {
		h.logger.Warn("GET /businesses/{id}/professionals/{id}/check-slot - Invalid start time: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStartTime)
		return
	}

	durationStr := r.URL.Query().Get("durationMinutes")
	if durationStr == "" {
		handlers.RespondBadRequest(w, msgMissingDuration)
		return
	}
	duration, err := strconv.Atoi(durationStr)
	if err != nil || duration < 1 {
		h.logger.Warn("GET /businesses/{id}/professionals/{id}/check-slot - Invalid duration: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDuration)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &checkSlot.Request{
		BusinessID:      businessID,
		ProfessionalID:  professionalID,
		Date:            date,
		StartTime:       startTime,
		DurationMinutes: duration,
	})
	if err != nil {
		switch {
		case errors.Is(err, checkSlot.ErrBusinessNotFound):
			h.logger.Warn("GET /businesses/{id}/professionals/{id}/check-slot - Business not found: business_id=%d", businessID)
			handlers.RespondNotFound(w, msgBusinessNotFound)

		case errors.Is(err, checkSlot.ErrProfessionalNotFound):
			h.logger.Warn("GET /businesses/{id}/professionals/{id}/check-slot - Professional not found: business_id=%d, professional_id=%d",
				businessID, professionalID)
			handlers.RespondNotFound(w, msgProfessionalNotFound)

		case errors.Is(err, checkSlot.ErrInvalidInput):
			h.logger.Warn("GET /businesses/{id}/professionals/{id}/check-slot - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDuration)

		default:
			h.logger.Error("GET /businesses/{id}/professionals/{id}/check-slot - Failed to check slot: business_id=%d, professional_id=%d, error=%v",
				businessID, professionalID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /businesses/{id}/professionals/{id}/check-slot - Checked: business_id=%d, professional_id=%d, free=%t",
		businessID, professionalID, result.Free)
	handlers.RespondJSON(w, http.StatusOK, &CheckSlotResponse{Free: result.Free})
}
