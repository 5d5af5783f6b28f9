package create_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	createAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
)

const (
	// HeaderAPIToken capability-токен публичного канала бронирования
	HeaderAPIToken = "X-Api-Token"
	// HeaderBookingSource канал публичного бронирования: public_link или messaging_bot
	HeaderBookingSource = "X-Booking-Source"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidDate          = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidTime          = "некорректный формат времени начала, ожидается HH:MM"
	msgInvalidInput         = "некорректные данные записи"
	msgInvalidSource        = "некорректный канал бронирования"
	msgUnauthorized         = "невалидный токен бронирования"
	msgSlotNotAvailable     = "выбранный временной слот недоступен"
	msgBusinessNotFound     = "бизнес не найден"
	msgProfessionalNotFound = "специалист не найден"
	msgServiceNotFound      = "услуга не найдена"
)

type Handler struct {
	useCase CreateAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CreateAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
// Операторский канал: аутентификация через X-User-ID middleware, токен не нужен
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, domain.SourceOperatorUI, nil)
}

// HandlePublic POST /api/v1/public/appointments
// Публичный канал: страница бронирования или мессенджер-бот
// Аутентификация через X-Api-Token бизнеса, канал в X-Booking-Source
func (h *Handler) HandlePublic(w http.ResponseWriter, r *http.Request) {
	source := domain.AppointmentSource(r.Header.Get(HeaderBookingSource))
	if source == "" {
		source = domain.SourcePublicLink
	}
	if source != domain.SourcePublicLink && source != domain.SourceMessagingBot {
		h.logger.Warn("POST /public/appointments - Invalid booking source: %s", source)
		handlers.RespondBadRequest(w, msgInvalidSource)
		return
	}

	var apiToken *string
	if token := r.Header.Get(HeaderAPIToken); token != "" {
		apiToken = &token
	}

	h.handle(w, r, source, apiToken)
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, source domain.AppointmentSource, apiToken *string) {
	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(source, apiToken)
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse request: %v", err)
		if req.Date != "" && len(req.Date) == len(domain.DateFormat) {
			handlers.RespondBadRequest(w, msgInvalidTime)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createAppointment.ErrSlotNoLongerAvailable):
			h.logger.Warn("POST /appointments - Slot not available: business_id=%d, professional_id=%d, date=%s, start=%s",
				req.BusinessID, req.ProfessionalID, req.Date, req.StartTime)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, createAppointment.ErrUnauthorized):
			h.logger.Warn("POST /appointments - Invalid booking token: business_id=%d, source=%s",
				req.BusinessID, source)
			handlers.RespondUnauthorized(w, msgUnauthorized)

		case errors.Is(err, createAppointment.ErrBusinessNotFound):
			h.logger.Warn("POST /appointments - Business not found: business_id=%d", req.BusinessID)
			handlers.RespondNotFound(w, msgBusinessNotFound)

		case errors.Is(err, createAppointment.ErrProfessionalNotFound):
			h.logger.Warn("POST /appointments - Professional not found: business_id=%d, professional_id=%d",
				req.BusinessID, req.ProfessionalID)
			handlers.RespondNotFound(w, msgProfessionalNotFound)

		case errors.Is(err, createAppointment.ErrServiceNotFound):
			h.logger.Warn("POST /appointments - Service not found: business_id=%d, service_id=%d",
				req.BusinessID, req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: business_id=%d, professional_id=%d, error=%v",
				req.BusinessID, req.ProfessionalID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	// Повтор по ключу идемпотентности возвращает исходную запись с 200
	status := http.StatusCreated
	if result.AlreadyExisted {
		status = http.StatusOK
		h.logger.Info("POST /appointments - Idempotent replay: appointment_id=%d, business_id=%d",
			result.ID, req.BusinessID)
	} else {
		h.logger.Info("POST /appointments - Appointment created: appointment_id=%d, business_id=%d, professional_id=%d, source=%s",
			result.ID, req.BusinessID, req.ProfessionalID, source)
	}

	handlers.RespondJSON(w, status, response)
}
