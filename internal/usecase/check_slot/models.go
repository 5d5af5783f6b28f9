package check_slot

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request запрос на проверку доступности конкретного слота
type Request struct {
	BusinessID      int64
	ProfessionalID  int64
	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int
}

// Response результат проверки слота
type Response struct {
	Free bool
}
