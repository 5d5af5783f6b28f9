package appointments

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrAccessDenied возвращается при обращении к записи чужого бизнеса
	ErrAccessDenied = errors.New("access denied")

	// ErrProfessionalNotFound возвращается, когда целевой специалист не найден
	ErrProfessionalNotFound = errors.New("professional not found")

	// ErrCannotCancel возвращается, когда запись нельзя отменить в текущем статусе
	ErrCannotCancel = errors.New("appointment cannot be cancelled")

	// ErrCannotReschedule возвращается, когда запись нельзя перенести в текущем статусе
	ErrCannotReschedule = errors.New("appointment cannot be rescheduled")

	// ErrInvalidStatusTransition возвращается при недопустимом переходе статуса
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// ErrInvalidStatus возвращается при неизвестном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")

	// ErrSlotNoLongerAvailable возвращается, когда целевой слот переноса занят
	ErrSlotNoLongerAvailable = errors.New("slot is no longer available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
