package create_appointment

import (
	"fmt"
	"strings"

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
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceId must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
	}

	name := strings.TrimSpace(req.ClientName)
	if name == "" {
		return fmt.Errorf("%w: clientName is required", ErrInvalidInput)
	}
	if len(name) > domain.MaxClientNameLength {
		return fmt.Errorf("%w: clientName exceeds %d characters", ErrInvalidInput, domain.MaxClientNameLength)
	}
	if strings.TrimSpace(req.ClientPhone) == "" {
		return fmt.Errorf("%w: clientPhone is required", ErrInvalidInput)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	if !isValidSource(req.Source) {
		return fmt.Errorf("%w: unknown source %q", ErrInvalidInput, req.Source)
	}

	if req.IdempotencyKey != nil {
		key := strings.TrimSpace(*req.IdempotencyKey)
		if key == "" {
			return fmt.Errorf("%w: idempotencyKey must not be blank", ErrInvalidInput)
		}
		if len(key) > domain.MaxIdempotencyKeyLength {
			return fmt.Errorf("%w: idempotencyKey exceeds %d characters", ErrInvalidInput, domain.MaxIdempotencyKeyLength)
		}
	}

	return nil
}

func isValidSource(source domain.AppointmentSource) bool {
	for _, s := range domain.ValidSources {
		if s == source {
			return true
		}
	}
	return false
}
