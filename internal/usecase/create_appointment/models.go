package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request запрос на создание записи
type Request struct {
	BusinessID     int64
	ProfessionalID int64
	ServiceID      int64

	Date      time.Time
	StartTime types.TimeString

	ClientName  string
	ClientPhone string
	Notes       *string

	// Канал создания записи. Для каналов кроме operator_ui требуется APIToken
	Source   domain.AppointmentSource
	APIToken *string

	// Ключ идемпотентности: повтор запроса с тем же ключом возвращает
	// уже созданную запись вместо создания дубликата
	IdempotencyKey *string
}

// Response созданная (или ранее созданная) запись
type Response struct {
	ID             int64
	BusinessID     int64
	ProfessionalID int64
	ServiceID      int64

	ClientName  string
	ClientPhone string

	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int

	Status domain.AppointmentStatus
	Source domain.AppointmentSource

	ServiceName  string
	ServicePrice float64

	Notes     *string
	CreatedAt time.Time

	// AlreadyExisted true, если запись вернулась по ключу идемпотентности
	AlreadyExisted bool
}

func toResponse(appt *domain.Appointment, alreadyExisted bool) *Response {
	return &Response{
		ID:              appt.ID,
		BusinessID:      appt.BusinessID,
		ProfessionalID:  appt.ProfessionalID,
		ServiceID:       appt.ServiceID,
		ClientName:      appt.ClientName,
		ClientPhone:     appt.ClientPhone,
		Date:            appt.Date,
		StartTime:       appt.StartTime,
		DurationMinutes: appt.DurationMinutes,
		Status:          appt.Status,
		Source:          appt.Source,
		ServiceName:     appt.ServiceName,
		ServicePrice:    appt.ServicePrice,
		Notes:           appt.Notes,
		CreatedAt:       appt.CreatedAt,
		AlreadyExisted:  alreadyExisted,
	}
}
