package create_appointment

import "errors"

var (
	// ErrBusinessNotFound бизнес не найден
	ErrBusinessNotFound = errors.New("create_appointment: business not found")

	// ErrProfessionalNotFound специалист не найден или принадлежит другому бизнесу
	ErrProfessionalNotFound = errors.New("create_appointment: professional not found")

	// ErrServiceNotFound услуга не найдена
	ErrServiceNotFound = errors.New("create_appointment: service not found")

	// ErrUnauthorized невалидный токен публичного канала бронирования
	ErrUnauthorized = errors.New("create_appointment: invalid booking token")

	// ErrSlotNoLongerAvailable слот занят на момент финальной проверки в транзакции
	ErrSlotNoLongerAvailable = errors.New("create_appointment: slot is no longer available")

	// ErrInvalidInput некорректные входные данные
	ErrInvalidInput = errors.New("create_appointment: invalid input")

	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("create_appointment: internal error")
)
