package directoryservice

import "github.com/m04kA/SMC-AppointmentService/internal/domain"

// Business бизнес (салон, клиника и т.д.)
type Business struct {
	ID       int64                  `json:"id"`
	Name     string                 `json:"name"`
	Timezone string                 `json:"timezone"` // IANA, например "Europe/Moscow"
	Settings domain.BookingSettings `json:"settings"`
}

// Professional специалист бизнеса
type Professional struct {
	ID         int64  `json:"id"`
	BusinessID int64  `json:"businessId"`
	Name       string `json:"name"`

	// Персональное переопределение буфера между записями
	CustomBuffer  bool `json:"customBuffer"`
	BufferMinutes int  `json:"bufferMinutes"`
}

// Service услуга бизнеса
type Service struct {
	ID              int64    `json:"id"`
	BusinessID      int64    `json:"businessId"`
	Name            string   `json:"name"`
	DurationMinutes int      `json:"durationMinutes"`
	Price           *float64 `json:"price,omitempty"`
}
