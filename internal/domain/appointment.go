package domain

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
	StatusNoShow    AppointmentStatus = "no_show"
)

// AppointmentSource represents the channel that created an appointment
type AppointmentSource string

const (
	SourceOperatorUI   AppointmentSource = "operator_ui"
	SourcePublicLink   AppointmentSource = "public_link"
	SourceMessagingBot AppointmentSource = "messaging_bot"
)

// Appointment represents a confirmed or pending service appointment
type Appointment struct {
	ID             int64
	BusinessID     int64
	ProfessionalID int64
	ServiceID      int64

	ClientName  string
	ClientPhone string

	Date            time.Time // Календарная дата записи (без времени)
	StartTime       types.TimeString
	DurationMinutes int // Снимок длительности услуги на момент записи

	Status AppointmentStatus
	Source AppointmentSource

	// Денормализованные данные услуги для истории:
	// последующие изменения услуги не меняют уже созданные записи
	ServiceName  string
	ServicePrice float64

	Notes          *string
	IdempotencyKey *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OccupiesSlot returns true if the appointment blocks its time interval
// for the professional. Only cancelled appointments free the slot.
func (a *Appointment) OccupiesSlot() bool {
	return a.Status != StatusCancelled
}

// CanBeCancelled returns true if the appointment can be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// CanBeRescheduled returns true if the appointment can be moved to another slot
func (a *Appointment) CanBeRescheduled() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// CanTransitionTo returns true if the operator status transition is legal
func (a *Appointment) CanTransitionTo(next AppointmentStatus) bool {
	switch a.Status {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusNoShow || next == StatusCancelled
	default:
		return false
	}
}

// IsCancelled returns true if the appointment has been cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == StatusCancelled
}

// BusinessAppointmentsFilter фильтр для получения записей бизнеса
type BusinessAppointmentsFilter struct {
	BusinessID      int64              // Обязательный параметр
	ProfessionalID  *int64             // Фильтр по специалисту (опционально)
	StartDate       *time.Time         // Начало периода (опционально)
	EndDate         *time.Time         // Конец периода (опционально)
	Status          *AppointmentStatus // Фильтр по статусу (опционально)
	IncludeInactive bool               // Включать ли отменённые записи
}
