package create_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/directoryservice"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	// Create вставляет запись и возвращает её с заполненными id и таймстемпами
	Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
	// GetByIdempotencyKey ищет существующую запись по ключу идемпотентности
	GetByIdempotencyKey(ctx context.Context, businessID int64, key string) (*domain.Appointment, error)
	// ListForDay получает записи специалиста на дату
	// Внутри транзакции строки дня блокируются FOR UPDATE
	ListForDay(ctx context.Context, professionalID int64, date time.Time, includeInactive bool) ([]*domain.Appointment, error)
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
	GetService(ctx context.Context, businessID, serviceID int64) (*directoryservice.Service, error)
}

// TxManager интерфейс менеджера транзакций
// Финальная проверка слота и вставка выполняются в одной SERIALIZABLE транзакции
type TxManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
