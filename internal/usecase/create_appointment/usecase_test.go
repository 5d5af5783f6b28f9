package create_appointment

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
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

// memoryAppointmentRepo хранит записи в памяти, повторяя контракт
// Postgres-репозитория включая ошибку дубликата ключа идемпотентности
type memoryAppointmentRepo struct {
	mu           sync.Mutex
	nextID       int64
	appointments []*domain.Appointment
}

func newMemoryAppointmentRepo() *memoryAppointmentRepo {
	return &memoryAppointmentRepo{nextID: 1}
}

func (r *memoryAppointmentRepo) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if appt.IdempotencyKey != nil {
		for _, existing := range r.appointments {
			if existing.BusinessID == appt.BusinessID &&
				existing.IdempotencyKey != nil &&
				*existing.IdempotencyKey == *appt.IdempotencyKey {
				return nil, apptRepo.ErrDuplicateIdempotencyKey
			}
		}
	}

	stored := *appt
	stored.ID = r.nextID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.nextID++
	r.appointments = append(r.appointments, &stored)

	copy := stored
	return &copy, nil
}

func (r *memoryAppointmentRepo) GetByIdempotencyKey(ctx context.Context, businessID int64, key string) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.appointments {
		if existing.BusinessID == businessID &&
			existing.IdempotencyKey != nil &&
			*existing.IdempotencyKey == key {
			copy := *existing
			return &copy, nil
		}
	}
	return nil, apptRepo.ErrAppointmentNotFound
}

func (r *memoryAppointmentRepo) ListForDay(ctx context.Context, professionalID int64, date time.Time, includeInactive bool) ([]*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*domain.Appointment, 0)
	for _, existing := range r.appointments {
		if existing.ProfessionalID != professionalID || !existing.Date.Equal(date) {
			continue
		}
		if !includeInactive && existing.IsCancelled() {
			continue
		}
		copy := *existing
		result = append(result, &copy)
	}
	return result, nil
}

func (r *memoryAppointmentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.appointments)
}

// mutexTxManager сериализует транзакции мьютексом, имитируя блокировку
// строк дня FOR UPDATE: вторая транзакция видит вставку первой
type mutexTxManager struct {
	mu sync.Mutex
}

func (m *mutexTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
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
}

func (f *fakeBlockRepo) ListOverlapping(ctx context.Context, businessID, professionalID int64, from, to time.Time) ([]*domain.TimeBlock, error) {
	return f.blocks, nil
}

type fakeDirectory struct {
	business     *directoryservice.Business
	businessErr  error
	professional *directoryservice.Professional
	service      *directoryservice.Service
	serviceErr   error
}

func (f *fakeDirectory) GetBusiness(ctx context.Context, businessID int64) (*directoryservice.Business, error) {
	if f.businessErr != nil {
		return nil, f.businessErr
	}
	return f.business, nil
}

func (f *fakeDirectory) GetProfessional(ctx context.Context, businessID, professionalID int64) (*directoryservice.Professional, error) {
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
				APIToken:            "booking-token-123",
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
			Price:           ptr.Ptr(1500.0),
		},
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
		StartTime:      "12:00",
		ClientName:     "Иван Петров",
		ClientPhone:    "+79991234567",
		Source:         domain.SourceOperatorUI,
	}
}

func newUseCase(repo AppointmentRepository, dir DirectoryClient) *UseCase {
	return NewUseCase(
		&mutexTxManager{},
		repo,
		&fakeRuleRepo{err: ruleRepo.ErrRuleNotFound},
		&fakeBlockRepo{},
		dir,
		noopLogger{},
	)
}

func TestUseCase_Execute_CreatesConfirmedAppointment(t *testing.T) {
	repo := newMemoryAppointmentRepo()
	uc := newUseCase(repo, defaultDirectory())

	resp, err := uc.Execute(context.Background(), defaultRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, domain.StatusConfirmed, resp.Status)
	assert.Equal(t, 60, resp.DurationMinutes)
	assert.Equal(t, "Стрижка", resp.ServiceName)
	assert.Equal(t, 1500.0, resp.ServicePrice)
	assert.False(t, resp.AlreadyExisted)
	assert.Equal(t, 1, repo.count())
}

func TestUseCase_Execute_RequirePaymentCreatesPending(t *testing.T) {
	dir := defaultDirectory()
	dir.business.Settings.RequirePayment = true

	uc := newUseCase(newMemoryAppointmentRepo(), dir)

	resp, err := uc.Execute(context.Background(), defaultRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, resp.Status)
}

func TestUseCase_Execute_SlotTaken(t *testing.T) {
	repo := newMemoryAppointmentRepo()
	uc := newUseCase(repo, defaultDirectory())

	_, err := uc.Execute(context.Background(), defaultRequest())
	require.NoError(t, err)

	// Второй клиент на тот же слот
	req := defaultRequest()
	req.ClientName = "Пётр Сидоров"

	resp, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotNoLongerAvailable)
	assert.Nil(t, resp)
	assert.Equal(t, 1, repo.count())
}

func TestUseCase_Execute_TrailingBufferConflict(t *testing.T) {
	repo := newMemoryAppointmentRepo()
	uc := newUseCase(repo, defaultDirectory())

	_, err := uc.Execute(context.Background(), defaultRequest())
	require.NoError(t, err)

	// 13:00 попадает в буфер [12:00, 13:15) после первой записи
	req := defaultRequest()
	req.StartTime = "13:00"

	_, err = uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotNoLongerAvailable)

	// 13:15 уже свободно
	req = defaultRequest()
	req.StartTime = "13:15"

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("13:15"), resp.StartTime)
}

func TestUseCase_Execute_ParallelBookingOneWinner(t *testing.T) {
	repo := newMemoryAppointmentRepo()
	uc := newUseCase(repo, defaultDirectory())

	const workers = 10

	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Execute(context.Background(), defaultRequest())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, lost int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		default:
			assert.ErrorIs(t, err, ErrSlotNoLongerAvailable)
			lost++
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, lost)
	assert.Equal(t, 1, repo.count())
}

func TestUseCase_Execute_PublicChannelTokenRequired(t *testing.T) {
	repo := newMemoryAppointmentRepo()
	uc := newUseCase(repo, defaultDirectory())

	tests := []struct {
		name  string
		token *string
	}{
		{"без токена", nil},
		{"неверный токен", ptr.Ptr("wrong-token")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := defaultRequest()
			req.Source = domain.SourcePublicLink
			req.APIToken = tt.token

			resp, err := uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrUnauthorized)
			assert.Nil(t, resp)
		})
	}

	// Ни одна запись не создана
	assert.Equal(t, 0, repo.count())
}

func TestUseCase_Execute_PublicChannelValidToken(t *testing.T) {
	repo := newMemoryAppointmentRepo()
	uc := newUseCase(repo, defaultDirectory())

	req := defaultRequest()
	req.Source = domain.SourceMessagingBot
	req.APIToken = ptr.Ptr("booking-token-123")

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceMessagingBot, resp.Source)
}

func TestUseCase_Execute_PublicBookingDisabled(t *testing.T) {
	dir := defaultDirectory()
	dir.business.Settings.APIToken = ""

	uc := newUseCase(newMemoryAppointmentRepo(), dir)

	req := defaultRequest()
	req.Source = domain.SourcePublicLink
	req.APIToken = ptr.Ptr("")

	resp, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Nil(t, resp)
}

func TestUseCase_Execute_OperatorChannelSkipsToken(t *testing.T) {
	uc := newUseCase(newMemoryAppointmentRepo(), defaultDirectory())

	req := defaultRequest()
	req.APIToken = nil

	_, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
}

func TestUseCase_Execute_IdempotentReplay(t *testing.T) {
	repo := newMemoryAppointmentRepo()
	uc := newUseCase(repo, defaultDirectory())

	req := defaultRequest()
	req.IdempotencyKey = ptr.Ptr("req-abc-1")

	first, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.AlreadyExisted)

	second, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.AlreadyExisted)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, repo.count())
}

func TestUseCase_Execute_ParallelIdempotentRequests(t *testing.T) {
	repo := newMemoryAppointmentRepo()
	uc := newUseCase(repo, defaultDirectory())

	const workers = 5

	var wg sync.WaitGroup
	responses := make(chan *Response, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := defaultRequest()
			req.IdempotencyKey = ptr.Ptr("req-parallel-1")

			resp, err := uc.Execute(context.Background(), req)
			assert.NoError(t, err)
			responses <- resp
		}()
	}
	wg.Wait()
	close(responses)

	ids := make(map[int64]struct{})
	for resp := range responses {
		if resp != nil {
			ids[resp.ID] = struct{}{}
		}
	}

	assert.Len(t, ids, 1)
	assert.Equal(t, 1, repo.count())
}

func TestUseCase_Execute_BusinessNotFound(t *testing.T) {
	uc := newUseCase(newMemoryAppointmentRepo(), &fakeDirectory{
		businessErr: directoryservice.ErrBusinessNotFound,
	})

	resp, err := uc.Execute(context.Background(), defaultRequest())
	assert.ErrorIs(t, err, ErrBusinessNotFound)
	assert.Nil(t, resp)
}

func TestUseCase_Execute_ServiceNotFound(t *testing.T) {
	dir := defaultDirectory()
	dir.serviceErr = directoryservice.ErrServiceNotFound

	uc := newUseCase(newMemoryAppointmentRepo(), dir)

	resp, err := uc.Execute(context.Background(), defaultRequest())
	assert.ErrorIs(t, err, ErrServiceNotFound)
	assert.Nil(t, resp)
}

func TestUseCase_Execute_InvalidInput(t *testing.T) {
	uc := newUseCase(newMemoryAppointmentRepo(), defaultDirectory())

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"пустое имя клиента", func(r *Request) { r.ClientName = "  " }},
		{"пустой телефон", func(r *Request) { r.ClientPhone = "" }},
		{"кривое время", func(r *Request) { r.StartTime = "9am" }},
		{"неизвестный источник", func(r *Request) { r.Source = "carrier_pigeon" }},
		{"пустой ключ идемпотентности", func(r *Request) { r.IdempotencyKey = ptr.Ptr("") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := defaultRequest()
			tt.mutate(req)

			resp, err := uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, resp)
		})
	}
}
