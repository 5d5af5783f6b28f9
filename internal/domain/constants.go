package domain

// Default configuration values
const (
	DefaultBufferMinutes       = 15
	DefaultSlotIntervalMinutes = 60
)

// Business validation constants
const (
	MinBufferMinutes            = 0
	MaxBufferMinutes            = 240 // 4 hours
	MinSlotIntervalMinutes      = 5
	MaxSlotIntervalMinutes      = 480 // 8 hours
	MinServiceDurationMinutes   = 1
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxClientNameLength         = 200
	MaxIdempotencyKeyLength     = 100
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses список статусов, не занимающих слот специалиста
// Используется при фильтрации записей для проверки доступности
var InactiveStatuses = []AppointmentStatus{
	StatusCancelled,
}

// ValidStatuses все допустимые статусы записи
var ValidStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusCancelled,
	StatusCompleted,
	StatusNoShow,
}

// ValidSources все допустимые каналы создания записи
var ValidSources = []AppointmentSource{
	SourceOperatorUI,
	SourcePublicLink,
	SourceMessagingBot,
}
