package domain

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// AvailabilityRule represents the recurring weekly working-hours template
// for a professional. At most one rule exists per (professional, weekday);
// the store enforces this with a unique index.
type AvailabilityRule struct {
	ID             int64
	ProfessionalID int64
	Weekday        time.Weekday // 0 = Sunday ... 6 = Saturday

	StartTime types.TimeString
	EndTime   types.TimeString

	// Необязательное окно перерыва внутри рабочего дня
	BreakStart *types.TimeString
	BreakEnd   *types.TimeString

	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasBreak returns true if the rule defines a break window
func (r *AvailabilityRule) HasBreak() bool {
	return r.BreakStart != nil && r.BreakEnd != nil
}

// TimeBlock represents an administrative blackout interval independent
// of appointments (lunch, holiday, maintenance)
type TimeBlock struct {
	ID         int64
	BusinessID int64

	// nil означает, что блок закрывает всех специалистов бизнеса (например, праздник)
	ProfessionalID *int64

	StartDatetime time.Time
	EndDatetime   time.Time

	Reason *string

	CreatedAt time.Time
}

// AppliesTo returns true if the block covers the given professional
func (b *TimeBlock) AppliesTo(professionalID int64) bool {
	return b.ProfessionalID == nil || *b.ProfessionalID == professionalID
}
