package get_free_slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

func TestGenerateCandidateSlots(t *testing.T) {
	tests := []struct {
		name            string
		workStart       types.TimeString
		workEnd         types.TimeString
		serviceDuration int
		displayInterval int
		expected        []types.TimeString
	}{
		{
			name:            "часовая сетка, часовая услуга",
			workStart:       "10:00",
			workEnd:         "18:00",
			serviceDuration: 60,
			displayInterval: 60,
			expected:        []types.TimeString{"10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00", "17:00"},
		},
		{
			name:            "услуга длиннее шага сетки",
			workStart:       "10:00",
			workEnd:         "18:00",
			serviceDuration: 90,
			displayInterval: 60,
			expected:        []types.TimeString{"10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00"},
		},
		{
			name:            "шаг сетки мельче услуги",
			workStart:       "10:00",
			workEnd:         "12:00",
			serviceDuration: 60,
			displayInterval: 30,
			expected:        []types.TimeString{"10:00", "10:30", "11:00"},
		},
		{
			name:            "услуга не помещается в рабочий день",
			workStart:       "10:00",
			workEnd:         "10:30",
			serviceDuration: 60,
			displayInterval: 60,
			expected:        []types.TimeString{},
		},
		{
			name:            "услуга ровно на весь день",
			workStart:       "10:00",
			workEnd:         "11:00",
			serviceDuration: 60,
			displayInterval: 60,
			expected:        []types.TimeString{"10:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates, err := generateCandidateSlots(tt.workStart, tt.workEnd, tt.serviceDuration, tt.displayInterval)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, candidates)
		})
	}
}

func TestSlotHasConflict_Appointments(t *testing.T) {
	date := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	loc := time.UTC

	appt := &domain.Appointment{
		ID:              1,
		StartTime:       "12:00",
		DurationMinutes: 60,
		Status:          domain.StatusConfirmed,
	}

	tests := []struct {
		name      string
		slotStart types.TimeString
		duration  int
		buffer    int
		expected  bool
	}{
		{
			name:      "слот внутри записи",
			slotStart: "12:00",
			duration:  60,
			buffer:    0,
			expected:  true,
		},
		{
			name:      "слот заканчивается ровно в начале записи",
			slotStart: "11:00",
			duration:  60,
			buffer:    0,
			expected:  false,
		},
		{
			name:      "слот начинается ровно в конце записи без буфера",
			slotStart: "13:00",
			duration:  60,
			buffer:    0,
			expected:  false,
		},
		{
			name:      "буфер после записи цепляет следующий слот",
			slotStart: "13:00",
			duration:  60,
			buffer:    15,
			expected:  true,
		},
		{
			name:      "буфер не действует перед записью",
			slotStart: "11:00",
			duration:  60,
			buffer:    15,
			expected:  false,
		},
		{
			name:      "слот начинается ровно в конце буфера",
			slotStart: "13:15",
			duration:  60,
			buffer:    15,
			expected:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slotStart, err := tt.slotStart.Combine(date, loc)
			require.NoError(t, err)
			slotEnd := slotStart.Add(time.Duration(tt.duration) * time.Minute)

			conflict, err := slotHasConflict(slotStart, slotEnd, date, loc,
				[]*domain.Appointment{appt}, tt.buffer, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, conflict)
		})
	}
}

func TestSlotHasConflict_CancelledAppointmentIgnored(t *testing.T) {
	date := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	loc := time.UTC

	cancelled := &domain.Appointment{
		ID:              1,
		StartTime:       "12:00",
		DurationMinutes: 60,
		Status:          domain.StatusCancelled,
	}

	slotStart, err := types.TimeString("12:00").Combine(date, loc)
	require.NoError(t, err)
	slotEnd := slotStart.Add(60 * time.Minute)

	conflict, err := slotHasConflict(slotStart, slotEnd, date, loc,
		[]*domain.Appointment{cancelled}, 15, nil, nil)
	require.NoError(t, err)
	assert.False(t, conflict)
}

func TestSlotHasConflict_TimeBlocks(t *testing.T) {
	date := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	loc := time.UTC

	block := &domain.TimeBlock{
		ID:             1,
		BusinessID:     10,
		StartDatetime:  time.Date(2026, 3, 16, 14, 0, 0, 0, time.UTC),
		EndDatetime:    time.Date(2026, 3, 16, 16, 0, 0, 0, time.UTC),
		ProfessionalID: nil,
	}

	tests := []struct {
		name      string
		slotStart types.TimeString
		expected  bool
	}{
		{"слот внутри блокировки", "14:00", true},
		{"слот частично пересекает блокировку", "13:30", true},
		{"слот заканчивается ровно в начале блокировки", "13:00", false},
		{"слот начинается ровно в конце блокировки", "16:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slotStart, err := tt.slotStart.Combine(date, loc)
			require.NoError(t, err)
			slotEnd := slotStart.Add(60 * time.Minute)

			conflict, err := slotHasConflict(slotStart, slotEnd, date, loc,
				nil, 0, []*domain.TimeBlock{block}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, conflict)
		})
	}
}

func TestSlotHasConflict_Break(t *testing.T) {
	date := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	loc := time.UTC

	rule := &domain.AvailabilityRule{
		ID:             1,
		ProfessionalID: 5,
		Weekday:        time.Monday,
		StartTime:      "09:00",
		EndTime:        "18:00",
		BreakStart:     ptr.Ptr(types.TimeString("13:00")),
		BreakEnd:       ptr.Ptr(types.TimeString("14:00")),
		IsActive:       true,
	}

	tests := []struct {
		name      string
		slotStart types.TimeString
		expected  bool
	}{
		{"слот в перерыве", "13:00", true},
		{"слот наезжает на перерыв", "12:30", true},
		{"слот заканчивается ровно в начале перерыва", "12:00", false},
		{"слот начинается ровно в конце перерыва", "14:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slotStart, err := tt.slotStart.Combine(date, loc)
			require.NoError(t, err)
			slotEnd := slotStart.Add(60 * time.Minute)

			conflict, err := slotHasConflict(slotStart, slotEnd, date, loc, nil, 0, nil, rule)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, conflict)
		})
	}
}

func TestResolveLocation(t *testing.T) {
	log := noopLogger{}

	t.Run("валидная IANA таймзона", func(t *testing.T) {
		loc := resolveLocation("Europe/Moscow", log)
		assert.Equal(t, "Europe/Moscow", loc.String())
	})

	t.Run("пустая таймзона - фолбэк на UTC", func(t *testing.T) {
		loc := resolveLocation("", log)
		assert.Equal(t, time.UTC, loc)
	})

	t.Run("неизвестная таймзона - фолбэк на UTC", func(t *testing.T) {
		loc := resolveLocation("Mars/Olympus", log)
		assert.Equal(t, time.UTC, loc)
	})
}
