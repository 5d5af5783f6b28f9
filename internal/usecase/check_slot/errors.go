package check_slot

import "errors"

var (
	// ErrBusinessNotFound бизнес не найден
	ErrBusinessNotFound = errors.New("check_slot: business not found")

	// ErrProfessionalNotFound специалист не найден или принадлежит другому бизнесу
	ErrProfessionalNotFound = errors.New("check_slot: professional not found")

	// ErrInvalidInput некорректные входные данные
	ErrInvalidInput = errors.New("check_slot: invalid input")

	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("check_slot: internal error")
)
