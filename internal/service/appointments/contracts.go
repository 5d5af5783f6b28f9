package appointments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/directoryservice"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	ListForDay(ctx context.Context, professionalID int64, date time.Time, includeInactive bool) ([]*domain.Appointment, error)
	GetByBusinessWithFilter(ctx context.Context, filter domain.BusinessAppointmentsFilter) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error
	Cancel(ctx context.Context, id int64, reason string) error
	Reschedule(ctx context.Context, id int64, date time.Time, startTime types.TimeString, professionalID int64) error
}

// AvailabilityRuleRepository интерфейс репозитория правил доступности
type AvailabilityRuleRepository interface {
	GetActiveByWeekday(ctx context.Context, professionalID int64, weekday time.Weekday) (*domain.AvailabilityRule, error)
}

// TimeBlockRepository интерфейс репозитория блокировок времени
type TimeBlockRepository interface {
	ListOverlapping(ctx context.Context, businessID, professionalID int64, from, to time.Time) ([]*domain.TimeBlock, error)
}

// DirectoryClient интерфейс клиента DirectoryService
type DirectoryClient interface {
	GetBusiness(ctx context.Context, businessID int64) (*directoryservice.Business, error)
	GetProfessional(ctx context.Context, businessID, professionalID int64) (*directoryservice.Professional, error)
}

// TxManager интерфейс менеджера транзакций
type TxManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
