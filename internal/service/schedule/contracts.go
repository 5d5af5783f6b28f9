package schedule

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/directoryservice"
)

// AvailabilityRuleRepository интерфейс репозитория правил доступности
type AvailabilityRuleRepository interface {
	ListByProfessional(ctx context.Context, professionalID int64) ([]*domain.AvailabilityRule, error)
	Upsert(ctx context.Context, rule *domain.AvailabilityRule) (*domain.AvailabilityRule, error)
	Deactivate(ctx context.Context, professionalID int64, weekday time.Weekday) error
}

// TimeBlockRepository интерфейс репозитория блокировок времени
type TimeBlockRepository interface {
	Create(ctx context.Context, block *domain.TimeBlock) (*domain.TimeBlock, error)
	ListOverlapping(ctx context.Context, businessID, professionalID int64, from, to time.Time) ([]*domain.TimeBlock, error)
	Delete(ctx context.Context, id int64, businessID int64) error
}

// DirectoryClient интерфейс клиента DirectoryService
type DirectoryClient interface {
	GetBusiness(ctx context.Context, businessID int64) (*directoryservice.Business, error)
	GetProfessional(ctx context.Context, businessID, professionalID int64) (*directoryservice.Professional, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
