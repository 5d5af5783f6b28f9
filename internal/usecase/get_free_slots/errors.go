package get_free_slots

import "errors"

var (
	// ErrBusinessNotFound возвращается, когда бизнес не найден
	ErrBusinessNotFound = errors.New("get_free_slots: business not found")

	// ErrProfessionalNotFound возвращается, когда специалист не найден в бизнесе
	ErrProfessionalNotFound = errors.New("get_free_slots: professional not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("get_free_slots: service not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_free_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	// Ошибки хранилища и DirectoryService никогда не превращаются в пустой
	// список слотов - операторы должны видеть, что что-то сломано
	ErrInternal = errors.New("get_free_slots: internal error")
)
