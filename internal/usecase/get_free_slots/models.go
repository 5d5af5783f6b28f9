package get_free_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на получение свободных слотов
type Request struct {
	BusinessID     int64     // ID бизнеса
	ProfessionalID int64     // ID специалиста
	ServiceID      int64     // ID услуги
	Date           time.Time // Дата (без времени)
}

// Response модель ответа со списком свободных слотов
// Пустой список слотов - валидный результат (выходной день, всё занято),
// а не ошибка
type Response struct {
	Date           time.Time
	BusinessID     int64
	ProfessionalID int64
	ServiceID      int64
	Slots          []Slot
}

// Slot свободный слот для записи
type Slot struct {
	StartTime       types.TimeString // Время начала слота (например, "10:00")
	DurationMinutes int              // Длительность услуги в минутах
}
