package get_free_slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	ruleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availabilityrule"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/directoryservice"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type fakeAppointmentRepo struct {
	appointments []*domain.Appointment
	err          error
}

func (f *fakeAppointmentRepo) ListForDay(ctx context.Context, professionalID int64, date time.Time, includeInactive bool) ([]*domain.Appointment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.appointments, nil
}

type fakeRuleRepo struct {
	rule *domain.AvailabilityRule
	err  error
}

func (f *fakeRuleRepo) GetActiveByWeekday(ctx context.Context, professionalID int64, weekday time.Weekday) (*domain.AvailabilityRule, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rule, nil
}

type fakeBlockRepo struct {
	blocks []*domain.TimeBlock
	err    error
}

func (f *fakeBlockRepo) ListOverlapping(ctx context.Context, businessID, professionalID int64, from, to time.Time) ([]*domain.TimeBlock, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.blocks, nil
}

type fakeDirectory struct {
	business        *directoryservice.Business
	businessErr     error
	professional    *directoryservice.Professional
	professionalErr error
	service         *directoryservice.Service
	serviceErr      error
}

func (f *fakeDirectory) GetBusiness(ctx context.Context, businessID int64) (*directoryservice.Business, error) {
	if f.businessErr != nil {
		return nil, f.businessErr
	}
	return f.business, nil
}

func (f *fakeDirectory) GetProfessional(ctx context.Context, businessID, professionalID int64) (*directoryservice.Professional, error) {
	if f.professionalErr != nil {
		return nil, f.professionalErr
	}
	return f.professional, nil
}

func (f *fakeDirectory) GetService(ctx context.Context, businessID, serviceID int64) (*directoryservice.Service, error) {
	if f.serviceErr != nil {
		return nil, f.serviceErr
	}
	return f.service, nil
}

func defaultDirectory() *fakeDirectory {
	return &fakeDirectory{
		business: &directoryservice.Business{
			ID:       10,
			Name:     "Салон Ромашка",
			Timezone: "UTC",
			Settings: domain.BookingSettings{
				BufferMinutes:       15,
				SlotIntervalMinutes: 60,
			},
		},
		professional: &directoryservice.Professional{
			ID:         5,
			BusinessID: 10,
			Name:       "Мастер Анна",
		},
		service: &directoryservice.Service{
			ID:              3,
			BusinessID:      10,
			Name:            "Стрижка",
			DurationMinutes: 60,
		},
	}
}

func workdayRule() *domain.AvailabilityRule {
	return &domain.AvailabilityRule{
		ID:             1,
		ProfessionalID: 5,
		Weekday:        time.Monday,
		StartTime:      "10:00",
		EndTime:        "18:00",
		IsActive:       true,
	}
}

// Понедельник
var testDate = time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

func defaultRequest() *Request {
	return &Request{
		BusinessID:     10,
		ProfessionalID: 5,
		ServiceID:      3,
		Date:           testDate,
	}
}

func slotTimes(slots []Slot) []types.TimeString {
	times := make([]types.TimeString, 0, len(slots))
	for _, s := range slots {
		times = append(times, s.StartTime)
	}
	return times
}

func TestUseCase_Execute_FullDayFree(t *testing.T) {
	uc := NewUseCase(
		&fakeAppointmentRepo{},
		&fakeRuleRepo{rule: workdayRule()},
		&fakeBlockRepo{},
		defaultDirectory(),
		noopLogger{},
	)

	resp, err := uc.Execute(context.Background(), defaultRequest())
	require.NoError(t, err)

	assert.Equal(t, []types.TimeString{"10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00", "17:00"},
		slotTimes(resp.Slots))
	for _, slot := range resp.Slots {
		assert.Equal(t, 60, slot.DurationMinutes)
	}
}

func TestUseCase_Execute_BufferHidesAdjacentSlot(t *testing.T) {
	// Запись 12:00-13:00 с буфером 15 минут занимает [12:00, 13:15),
	// поэтому слот 13:00 тоже скрыт
	uc := NewUseCase(
		&fakeAppointmentRepo{appointments: []*domain.Appointment{
			{ID: 1, StartTime: "12:00", DurationMinutes: 60, Status: domain.StatusConfirmed},
		}},
		&fakeRuleRepo{rule: workdayRule()},
		&fakeBlockRepo{},
		defaultDirectory(),
		noopLogger{},
	)

	resp, err := uc.Execute(context.Background(), defaultRequest())
	require.NoError(t, err)

	assert.Equal(t, []types.TimeString{"10:00", "11:00", "14:00", "15:00", "16:00", "17:00"},
		slotTimes(resp.Slots))
}

func TestUseCase_Execute_ProfessionalBufferOverride(t *testing.T) {
	// Переопределение буфера мастером: 0 минут вместо дефолтных 15,
	// слот 13:00 сразу после записи остаётся свободным
	dir := defaultDirectory()
	dir.professional.CustomBuffer = true
	dir.professional.BufferMinutes = 0

	uc := NewUseCase(
		&fakeAppointmentRepo{appointments: []*domain.Appointment{
			{ID: 1, StartTime: "12:00", DurationMinutes: 60, Status: domain.StatusConfirmed},
		}},
		&fakeRuleRepo{rule: workdayRule()},
		&fakeBlockRepo{},
		dir,
		noopLogger{},
	)

	resp, err := uc.Execute(context.Background(), defaultRequest())
	require.NoError(t, err)

	assert.Equal(t, []types.TimeString{"10:00", "11:00", "13:00", "14:00", "15:00", "16:00", "17:00"},
		slotTimes(resp.Slots))
}

func TestUseCase_Execute_TimeBlockHidesSlots(t *testing.T) {
	uc := NewUseCase(
		&fakeAppointmentRepo{},
		&fakeRuleRepo{rule: workdayRule()},
		&fakeBlockRepo{blocks: []*domain.TimeBlock{
			{
				ID:            1,
				BusinessID:    10,
				StartDatetime: time.Date(2026, 3, 16, 14, 0, 0, 0, time.UTC),
				EndDatetime:   time.Date(2026, 3, 16, 16, 0, 0, 0, time.UTC),
			},
		}},
		defaultDirectory(),
		noopLogger{},
	)

	resp, err := uc.Execute(context.Background(), defaultRequest())
	require.NoError(t, err)

	assert.Equal(t, []types.TimeString{"10:00", "11:00", "12:00", "13:00", "16:00", "17:00"},
		slotTimes(resp.Slots))
}

func TestUseCase_Execute_NoRuleMeansDayOff(t *testing.T) {
	uc := NewUseCase(
		&fakeAppointmentRepo{},
		&fakeRuleRepo{err: ruleRepo.ErrRuleNotFound},
		&fakeBlockRepo{},
		defaultDirectory(),
		noopLogger{},
	)

	resp, err := uc.Execute(context.Background(), defaultRequest())
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
	assert.NotNil(t, resp.Slots)
}

func TestUseCase_Execute_BusinessNotFound(t *testing.T) {
	uc := NewUseCase(
		&fakeAppointmentRepo{},
		&fakeRuleRepo{rule: workdayRule()},
		&fakeBlockRepo{},
		&fakeDirectory{businessErr: directoryservice.ErrBusinessNotFound},
		noopLogger{},
	)

	resp, err := uc.Execute(context.Background(), defaultRequest())
	assert.ErrorIs(t, err, ErrBusinessNotFound)
	assert.Nil(t, resp)
}

func TestUseCase_Execute_ProfessionalFromAnotherBusiness(t *testing.T) {
	dir := defaultDirectory()
	dir.professional.BusinessID = 99

	uc := NewUseCase(
		&fakeAppointmentRepo{},
		&fakeRuleRepo{rule: workdayRule()},
		&fakeBlockRepo{},
		dir,
		noopLogger{},
	)

	resp, err := uc.Execute(context.Background(), defaultRequest())
	assert.ErrorIs(t, err, ErrProfessionalNotFound)
	assert.Nil(t, resp)
}

func TestUseCase_Execute_ServiceNotFound(t *testing.T) {
	dir := defaultDirectory()
	dir.serviceErr = directoryservice.ErrServiceNotFound

	uc := NewUseCase(
		&fakeAppointmentRepo{},
		&fakeRuleRepo{rule: workdayRule()},
		&fakeBlockRepo{},
		dir,
		noopLogger{},
	)

	resp, err := uc.Execute(context.Background(), defaultRequest())
	assert.ErrorIs(t, err, ErrServiceNotFound)
	assert.Nil(t, resp)
}

func TestUseCase_Execute_RepositoryErrorIsNotEmptyList(t *testing.T) {
	// Сбой хранилища отдаётся наверх ошибкой, а не пустым списком слотов
	uc := NewUseCase(
		&fakeAppointmentRepo{err: errors.New("connection refused")},
		&fakeRuleRepo{rule: workdayRule()},
		&fakeBlockRepo{},
		defaultDirectory(),
		noopLogger{},
	)

	resp, err := uc.Execute(context.Background(), defaultRequest())
	assert.ErrorIs(t, err, ErrInternal)
	assert.Nil(t, resp)
}

func TestUseCase_Execute_InvalidInput(t *testing.T) {
	uc := NewUseCase(
		&fakeAppointmentRepo{},
		&fakeRuleRepo{rule: workdayRule()},
		&fakeBlockRepo{},
		defaultDirectory(),
		noopLogger{},
	)

	req := defaultRequest()
	req.ProfessionalID = 0

	resp, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Nil(t, resp)
}
