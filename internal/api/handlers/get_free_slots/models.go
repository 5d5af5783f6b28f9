package get_free_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	getFreeSlots "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_free_slots"
)

// FreeSlotsResponse HTTP response model
type FreeSlotsResponse struct {
	Date           string     `json:"date"`
	BusinessID     int64      `json:"businessId"`
	ProfessionalID int64      `json:"professionalId"`
	ServiceID      int64      `json:"serviceId"`
	Slots          []FreeSlot `json:"slots"`
}

// FreeSlot модель свободного слота
type FreeSlot struct {
	StartTime       string `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getFreeSlots.Response) *FreeSlotsResponse {
	slots := make([]FreeSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = FreeSlot{
			StartTime:       slot.StartTime.String(),
			DurationMinutes: slot.DurationMinutes,
		}
	}

	return &FreeSlotsResponse{
		Date:           resp.Date.Format(domain.DateFormat),
		BusinessID:     resp.BusinessID,
		ProfessionalID: resp.ProfessionalID,
		ServiceID:      resp.ServiceID,
		Slots:          slots,
	}
}

// ToUseCaseRequest создает запрос use case из path и query параметров
func ToUseCaseRequest(businessID, professionalID, serviceID int64, dateStr string) (*getFreeSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	return &getFreeSlots.Request{
		BusinessID:     businessID,
		ProfessionalID: professionalID,
		ServiceID:      serviceID,
		Date:           date,
	}, nil
}
