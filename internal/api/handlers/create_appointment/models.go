package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	createAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	BusinessID     int64   `json:"businessId"`
	ProfessionalID int64   `json:"professionalId"`
	ServiceID      int64   `json:"serviceId"`
	Date           string  `json:"date"`      // "2026-03-16"
	StartTime      string  `json:"startTime"` // "12:00"
	ClientName     string  `json:"clientName"`
	ClientPhone    string  `json:"clientPhone"`
	Notes          *string `json:"notes,omitempty"`
	IdempotencyKey *string `json:"idempotencyKey,omitempty"`
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID              int64   `json:"id"`
	BusinessID      int64   `json:"businessId"`
	ProfessionalID  int64   `json:"professionalId"`
	ServiceID       int64   `json:"serviceId"`
	ClientName      string  `json:"clientName"`
	ClientPhone     string  `json:"clientPhone"`
	Date            string  `json:"date"`
	StartTime       string  `json:"startTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	Source          string  `json:"source"`
	ServiceName     string  `json:"serviceName"`
	ServicePrice    float64 `json:"servicePrice"`
	Notes           *string `json:"notes,omitempty"`
	CreatedAt       string  `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
// Канал и токен проставляются обработчиком по маршруту, а не клиентом
func (r *CreateAppointmentRequest) ToUseCaseRequest(source domain.AppointmentSource, apiToken *string) (*createAppointment.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createAppointment.Request{
		BusinessID:     r.BusinessID,
		ProfessionalID: r.ProfessionalID,
		ServiceID:      r.ServiceID,
		Date:           date,
		StartTime:      startTime,
		ClientName:     r.ClientName,
		ClientPhone:    r.ClientPhone,
		Notes:          r.Notes,
		Source:         source,
		APIToken:       apiToken,
		IdempotencyKey: r.IdempotencyKey,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createAppointment.Response) *AppointmentResponse {
	return &AppointmentResponse{
		ID:              resp.ID,
		BusinessID:      resp.BusinessID,
		ProfessionalID:  resp.ProfessionalID,
		ServiceID:       resp.ServiceID,
		ClientName:      resp.ClientName,
		ClientPhone:     resp.ClientPhone,
		Date:            resp.Date.Format(domain.DateFormat),
		StartTime:       resp.StartTime.String(),
		DurationMinutes: resp.DurationMinutes,
		Status:          string(resp.Status),
		Source:          string(resp.Source),
		ServiceName:     resp.ServiceName,
		ServicePrice:    resp.ServicePrice,
		Notes:           resp.Notes,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
	}
}
