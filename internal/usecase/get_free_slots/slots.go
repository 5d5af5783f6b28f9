package get_free_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// generateCandidateSlots генерирует кандидатов начала слотов на день
// Кандидаты идут от начала рабочего окна с шагом displayInterval; кандидат
// включается, только если услуга целиком помещается до конца окна:
// candidate + serviceDuration <= workEnd. Последний подходящий кандидат
// включается, даже если следующий шаг сетки уже выходит за окно.
//
// Шаг сетки (displayInterval) намеренно не связан с длительностью услуги:
// интерфейс показывает ровную сетку (например, каждый час), при этом
// длительность остается точной (например, 45 минут).
//
// Буфер здесь НЕ применяется - это свойство существующих записей,
// учитываемое при проверке конфликтов, а не пустой сетки дня.
func generateCandidateSlots(
	workStart types.TimeString,
	workEnd types.TimeString,
	serviceDuration int,
	displayInterval int,
) ([]types.TimeString, error) {
	candidates := make([]types.TimeString, 0)
	current := workStart

	for !current.IsAfter(workEnd) {
		slotEnd, err := current.AddMinutes(serviceDuration)
		if err != nil {
			// Услуга не помещается до конца суток - дальше кандидатов нет
			break
		}
		if slotEnd.IsAfter(workEnd) {
			break
		}

		candidates = append(candidates, current)

		next, err := current.AddMinutes(displayInterval)
		if err != nil {
			break
		}
		current = next
	}

	return candidates, nil
}

// slotHasConflict проверяет слот [slotStart, slotEnd) на конфликты из трёх источников:
//
//  1. Неотменённые записи специалиста. Интервал занятости записи расширяется
//     буфером ПОСЛЕ неё: [start, end+buffer). Буфер односторонний - он моделирует
//     уборку/переход после записи, а не до неё.
//  2. Блокировки времени бизнеса (персональные и общие).
//  3. Окно перерыва из правила доступности.
//
// Полуоткрытые интервалы: слот, заканчивающийся ровно в breakStart, перерыву
// не мешает.
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
	// 1. Существующие записи с трейлинг-буфером
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

	// 2. Блокировки времени (абсолютные интервалы, буфер не применяется)
	for _, block := range blocks {
		if types.Overlaps(slotStart, slotEnd, block.StartDatetime, block.EndDatetime) {
			return true, nil
		}
	}

	// 3. Перерыв в правиле доступности
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

// resolveLocation резолвит IANA таймзону бизнеса
// Таймзона приходит из DirectoryService; UTC используется только как
// фолбэк на пустое значение
func resolveLocation(timezone string, log Logger) *time.Location {
	if timezone == "" {
		log.Warn("business timezone is empty, falling back to UTC")
		return time.UTC
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.Warn("failed to load business timezone %q, falling back to UTC: %v", timezone, err)
		return time.UTC
	}

	return loc
}

// dayWindow возвращает границы календарного дня в таймзоне бизнеса
// Используется для выборки блокировок, пересекающих день
func dayWindow(date time.Time, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
