package check_slot

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// validateRequest проверяет корректность входных данных
func validateRequest(req *Request) error {
	if req.BusinessID <= 0 {
		return fmt.Errorf("%w: businessId must be positive", ErrInvalidInput)
	}
	if req.ProfessionalID <= 0 {
		return fmt.Errorf("%w: professionalId must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
	}
	if req.DurationMinutes < domain.MinServiceDurationMinutes {
		return fmt.Errorf("%w: durationMinutes must be at least %d", ErrInvalidInput, domain.MinServiceDurationMinutes)
	}
	return nil
}
