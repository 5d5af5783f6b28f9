package appointments

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	apptRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	ruleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availabilityrule"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/directoryservice"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

type memoryAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[int64]*domain.Appointment
}

func newMemoryAppointmentRepo(appointments ...*domain.Appointment) *memoryAppointmentRepo {
	repo := &memoryAppointmentRepo{appointments: make(map[int64]*domain.Appointment)}
	for _, a := range appointments {
		copy := *a
		repo.appointments[a.ID] = &copy
	}
	return repo
}

func (r *memoryAppointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok {
		return nil, apptRepo.ErrAppointmentNotFound
	}
	copy := *appt
	return &copy, nil
}

func (r *memoryAppointmentRepo) ListForDay(ctx context.Context, professionalID int64, date time.Time, includeInactive bool) ([]*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*domain.Appointment, 0)
	for _, appt := range r.appointments {
		if appt.ProfessionalID != professionalID || !appt.Date.Equal(date) {
			continue
		}
		if !includeInactive && appt.IsCancelled() {
			continue
		}
		copy := *appt
		result = append(result, &copy)
	}
	return result, nil
}

func (r *memoryAppointmentRepo) GetByBusinessWithFilter(ctx context.Context, filter domain.BusinessAppointmentsFilter) ([]*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*domain.Appointment, 0)
	for _, appt := range r.appointments {
		if appt.BusinessID != filter.BusinessID {
			continue
		}
		if filter.ProfessionalID != nil && appt.ProfessionalID != *filter.ProfessionalID {
			continue
		}
		if filter.Status != nil && appt.Status != *filter.Status {
			continue
		}
		if !filter.IncludeInactive && appt.IsCancelled() {
			continue
		}
		copy := *appt
		result = append(result, &copy)
	}
	return result, nil
}

func (r *memoryAppointmentRepo) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok {
		return apptRepo.ErrAppointmentNotFound
	}
	appt.Status = status
	return nil
}

func (r *memoryAppointmentRepo) Cancel(ctx context.Context, id int64, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok {
		return apptRepo.ErrAppointmentNotFound
	}
	now := time.Now()
	appt.Status = domain.StatusCancelled
	appt.CancellationReason = &reason
	appt.CancelledAt = &now
	return nil
}

func (r *memoryAppointmentRepo) Reschedule(ctx context.Context, id int64, date time.Time, startTime types.TimeString, professionalID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok {
		return apptRepo.ErrAppointmentNotFound
	}
	appt.Date = date
	appt.StartTime = startTime
	appt.ProfessionalID = professionalID
	return nil
}

type fakeRuleRepo struct{}

func (fakeRuleRepo) GetActiveByWeekday(ctx context.Context, professionalID int64, weekday time.Weekday) (*domain.AvailabilityRule, error) {
	return nil, ruleRepo.ErrRuleNotFound
}

type fakeBlockRepo struct {
	blocks []*domain.TimeBlock
}

func (f *fakeBlockRepo) ListOverlapping(ctx context.Context, businessID, professionalID int64, from, to time.Time) ([]*domain.TimeBlock, error) {
	return f.blocks, nil
}

type fakeDirectory struct{}

func (fakeDirectory) GetBusiness(ctx context.Context, businessID int64) (*directoryservice.Business, error) {
	return &directoryservice.Business{
		ID:       businessID,
		Timezone: "UTC",
		Settings: domain.BookingSettings{
			BufferMinutes:       15,
			SlotIntervalMinutes: 60,
		},
	}, nil
}

func (fakeDirectory) GetProfessional(ctx context.Context, businessID, professionalID int64) (*directoryservice.Professional, error) {
	if professionalID > 100 {
		return nil, directoryservice.ErrProfessionalNotFound
	}
	return &directoryservice.Professional{
		ID:         professionalID,
		BusinessID: businessID,
	}, nil
}

type mutexTxManager struct {
	mu sync.Mutex
}

func (m *mutexTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

// Понедельник
var testDate = time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

func baseAppointment() *domain.Appointment {
	return &domain.Appointment{
		ID:              1,
		BusinessID:      10,
		ProfessionalID:  5,
		ServiceID:       3,
		ClientName:      "Иван Петров",
		ClientPhone:     "+79991234567",
		Date:            testDate,
		StartTime:       "12:00",
		DurationMinutes: 60,
		Status:          domain.StatusConfirmed,
		Source:          domain.SourceOperatorUI,
		ServiceName:     "Стрижка",
		ServicePrice:    1500,
	}
}

func newService(repo AppointmentRepository) *Service {
	return NewService(
		&mutexTxManager{},
		repo,
		fakeRuleRepo{},
		&fakeBlockRepo{},
		fakeDirectory{},
		noopLogger{},
	)
}

func TestService_GetByID(t *testing.T) {
	svc := newService(newMemoryAppointmentRepo(baseAppointment()))

	t.Run("найдена", func(t *testing.T) {
		resp, err := svc.GetByID(context.Background(), 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.ID)
		assert.Equal(t, "12:00", resp.StartTime)
		assert.Equal(t, "2026-03-16", resp.Date)
	})

	t.Run("не найдена", func(t *testing.T) {
		resp, err := svc.GetByID(context.Background(), 404, 10)
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
		assert.Nil(t, resp)
	})

	t.Run("чужой бизнес", func(t *testing.T) {
		resp, err := svc.GetByID(context.Background(), 1, 99)
		assert.ErrorIs(t, err, ErrAccessDenied)
		assert.Nil(t, resp)
	})
}

func TestService_ListForBusiness(t *testing.T) {
	second := baseAppointment()
	second.ID = 2
	second.ProfessionalID = 6
	second.Status = domain.StatusPending

	cancelled := baseAppointment()
	cancelled.ID = 3
	cancelled.StartTime = "15:00"
	cancelled.Status = domain.StatusCancelled

	svc := newService(newMemoryAppointmentRepo(baseAppointment(), second, cancelled))

	t.Run("без фильтров отменённые скрыты", func(t *testing.T) {
		resp, err := svc.ListForBusiness(context.Background(), &models.GetBusinessAppointmentsRequest{BusinessID: 10})
		require.NoError(t, err)
		assert.Len(t, resp.Appointments, 2)
	})

	t.Run("фильтр по специалисту", func(t *testing.T) {
		resp, err := svc.ListForBusiness(context.Background(), &models.GetBusinessAppointmentsRequest{
			BusinessID:     10,
			ProfessionalID: ptr.Ptr(int64(6)),
		})
		require.NoError(t, err)
		require.Len(t, resp.Appointments, 1)
		assert.Equal(t, int64(2), resp.Appointments[0].ID)
	})

	t.Run("includeInactive возвращает отменённые", func(t *testing.T) {
		resp, err := svc.ListForBusiness(context.Background(), &models.GetBusinessAppointmentsRequest{
			BusinessID:      10,
			IncludeInactive: true,
		})
		require.NoError(t, err)
		assert.Len(t, resp.Appointments, 3)
	})

	t.Run("неизвестный статус", func(t *testing.T) {
		resp, err := svc.ListForBusiness(context.Background(), &models.GetBusinessAppointmentsRequest{
			BusinessID: 10,
			Status:     ptr.Ptr("teleported"),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Nil(t, resp)
	})
}

func TestService_Cancel(t *testing.T) {
	t.Run("успешная отмена", func(t *testing.T) {
		svc := newService(newMemoryAppointmentRepo(baseAppointment()))

		resp, err := svc.Cancel(context.Background(), &models.CancelAppointmentRequest{
			ID:                 1,
			BusinessID:         10,
			CancellationReason: "клиент попросил",
		})
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusCancelled), resp.Status)
		require.NotNil(t, resp.CancellationReason)
		assert.Equal(t, "клиент попросил", *resp.CancellationReason)
		assert.NotNil(t, resp.CancelledAt)
	})

	t.Run("завершённую отменить нельзя", func(t *testing.T) {
		appt := baseAppointment()
		appt.Status = domain.StatusCompleted
		svc := newService(newMemoryAppointmentRepo(appt))

		resp, err := svc.Cancel(context.Background(), &models.CancelAppointmentRequest{
			ID:         1,
			BusinessID: 10,
		})
		assert.ErrorIs(t, err, ErrCannotCancel)
		assert.Nil(t, resp)
	})
}

func TestService_UpdateStatus(t *testing.T) {
	t.Run("pending -> confirmed", func(t *testing.T) {
		appt := baseAppointment()
		appt.Status = domain.StatusPending
		svc := newService(newMemoryAppointmentRepo(appt))

		resp, err := svc.UpdateStatus(context.Background(), &models.UpdateStatusRequest{
			ID:         1,
			BusinessID: 10,
			Status:     "confirmed",
		})
		require.NoError(t, err)
		assert.Equal(t, "confirmed", resp.Status)
	})

	t.Run("confirmed -> completed", func(t *testing.T) {
		svc := newService(newMemoryAppointmentRepo(baseAppointment()))

		resp, err := svc.UpdateStatus(context.Background(), &models.UpdateStatusRequest{
			ID:         1,
			BusinessID: 10,
			Status:     "completed",
		})
		require.NoError(t, err)
		assert.Equal(t, "completed", resp.Status)
	})

	t.Run("недопустимый переход", func(t *testing.T) {
		svc := newService(newMemoryAppointmentRepo(baseAppointment()))

		resp, err := svc.UpdateStatus(context.Background(), &models.UpdateStatusRequest{
			ID:         1,
			BusinessID: 10,
			Status:     "pending",
		})
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)
		assert.Nil(t, resp)
	})

	t.Run("неизвестный статус", func(t *testing.T) {
		svc := newService(newMemoryAppointmentRepo(baseAppointment()))

		resp, err := svc.UpdateStatus(context.Background(), &models.UpdateStatusRequest{
			ID:         1,
			BusinessID: 10,
			Status:     "hidden",
		})
		assert.ErrorIs(t, err, ErrInvalidStatus)
		assert.Nil(t, resp)
	})
}

func TestService_Reschedule(t *testing.T) {
	t.Run("перенос на свободный слот", func(t *testing.T) {
		svc := newService(newMemoryAppointmentRepo(baseAppointment()))

		resp, err := svc.Reschedule(context.Background(), &models.RescheduleRequest{
			ID:         1,
			BusinessID: 10,
			Date:       testDate,
			StartTime:  "15:00",
		})
		require.NoError(t, err)
		assert.Equal(t, "15:00", resp.StartTime)
		assert.Equal(t, int64(5), resp.ProfessionalID)
	})

	t.Run("перенос на занятый слот", func(t *testing.T) {
		other := baseAppointment()
		other.ID = 2
		other.StartTime = "15:00"
		svc := newService(newMemoryAppointmentRepo(baseAppointment(), other))

		resp, err := svc.Reschedule(context.Background(), &models.RescheduleRequest{
			ID:         1,
			BusinessID: 10,
			Date:       testDate,
			StartTime:  "15:00",
		})
		assert.ErrorIs(t, err, ErrSlotNoLongerAvailable)
		assert.Nil(t, resp)
	})

	t.Run("пересечение с самой собой не конфликт", func(t *testing.T) {
		svc := newService(newMemoryAppointmentRepo(baseAppointment()))

		// Сдвиг на полчаса внутри собственного интервала
		resp, err := svc.Reschedule(context.Background(), &models.RescheduleRequest{
			ID:         1,
			BusinessID: 10,
			Date:       testDate,
			StartTime:  "12:30",
		})
		require.NoError(t, err)
		assert.Equal(t, "12:30", resp.StartTime)
	})

	t.Run("перенос к другому специалисту", func(t *testing.T) {
		svc := newService(newMemoryAppointmentRepo(baseAppointment()))

		resp, err := svc.Reschedule(context.Background(), &models.RescheduleRequest{
			ID:             1,
			BusinessID:     10,
			Date:           testDate,
			StartTime:      "12:00",
			ProfessionalID: ptr.Ptr(int64(7)),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(7), resp.ProfessionalID)
	})

	t.Run("целевой специалист не найден", func(t *testing.T) {
		svc := newService(newMemoryAppointmentRepo(baseAppointment()))

		resp, err := svc.Reschedule(context.Background(), &models.RescheduleRequest{
			ID:             1,
			BusinessID:     10,
			Date:           testDate,
			StartTime:      "12:00",
			ProfessionalID: ptr.Ptr(int64(777)),
		})
		assert.ErrorIs(t, err, ErrProfessionalNotFound)
		assert.Nil(t, resp)
	})

	t.Run("отменённую перенести нельзя", func(t *testing.T) {
		appt := baseAppointment()
		appt.Status = domain.StatusCancelled
		svc := newService(newMemoryAppointmentRepo(appt))

		resp, err := svc.Reschedule(context.Background(), &models.RescheduleRequest{
			ID:         1,
			BusinessID: 10,
			Date:       testDate,
			StartTime:  "15:00",
		})
		assert.ErrorIs(t, err, ErrCannotReschedule)
		assert.Nil(t, resp)
	})
}
