package appointments

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// slotHasConflict проверяет слот [slotStart, slotEnd) на конфликты:
// неотменённые записи с трейлинг-буфером [start, end+buffer), блокировки
// времени и окно перерыва правила. Интервалы полуоткрытые, касание границ
// конфликтом не считается. Правило может быть nil, тогда перерыв не проверяется
func slotHasConflict(
	slotStart time.Time,
	slotEnd time.Time,
	date time.Time,
	loc *time.Location,
	appointments []*domain.Appointment,
	bufferMinutes int,
	blocks []*domain.TimeBlock,
	rule *domain.AvailabilityRule,
) (bool, error) {
	for _, appt := range appointments {
		if !appt.OccupiesSlot() {
			continue
		}

		apptStart, err := appt.StartTime.Combine(date, loc)
		if err != nil {
			return false, err
		}
		apptEnd := apptStart.Add(time.Duration(appt.DurationMinutes+bufferMinutes) * time.Minute)

		if types.Overlaps(slotStart, slotEnd, apptStart, apptEnd) {
			return true, nil
		}
	}

	for _, block := range blocks {
		if types.Overlaps(slotStart, slotEnd, block.StartDatetime, block.EndDatetime) {
			return true, nil
		}
	}

	if rule != nil && rule.HasBreak() {
		breakStart, err := rule.BreakStart.Combine(date, loc)
		if err != nil {
			return false, err
		}
		breakEnd, err := rule.BreakEnd.Combine(date, loc)
		if err != nil {
			return false, err
		}

		if types.Overlaps(slotStart, slotEnd, breakStart, breakEnd) {
			return true, nil
		}
	}

	return false, nil
}

// resolveLocation резолвит IANA таймзону бизнеса с фолбэком на UTC
func resolveLocation(timezone string, log Logger) *time.Location {
	if timezone == "" {
		log.Warn("business timezone is empty, falling back to UTC")
		return time.UTC
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.Warn("unknown business timezone %q, falling back to UTC", timezone)
		return time.UTC
	}

	return loc
}

// dayWindow возвращает границы календарного дня в таймзоне бизнеса
func dayWindow(date time.Time, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
