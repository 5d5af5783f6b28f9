package domain

// BookingSettings represents the booking configuration of a business.
// Owned by the directory service; read-only for this service.
type BookingSettings struct {
	BufferMinutes       int    `json:"bufferMinutes"`       // Минимальный простой после записи (уборка, переход)
	SlotIntervalMinutes int    `json:"slotIntervalMinutes"` // Шаг сетки слотов для отображения
	APIToken            string `json:"apiToken"`            // Capability-токен публичного канала бронирования
	RequirePayment      bool   `json:"requirePayment"`      // Если true, новая запись создается в статусе pending
}

// Normalize подставляет значения по умолчанию вместо незаполненных полей
// Вызывается один раз на границе с directory service
func (s *BookingSettings) Normalize() {
	if s.BufferMinutes <= 0 {
		s.BufferMinutes = DefaultBufferMinutes
	}
	if s.SlotIntervalMinutes <= 0 {
		s.SlotIntervalMinutes = DefaultSlotIntervalMinutes
	}
}

// EffectiveBufferMinutes возвращает действующий буфер для специалиста:
// персональное переопределение, если оно задано, иначе значение бизнеса
func (s *BookingSettings) EffectiveBufferMinutes(customBuffer bool, professionalBuffer int) int {
	if customBuffer {
		return professionalBuffer
	}
	return s.BufferMinutes
}
