package directoryservice

import "errors"

var (
	// ErrBusinessNotFound возвращается, когда бизнес не найден
	ErrBusinessNotFound = errors.New("directoryservice: business not found")

	// ErrProfessionalNotFound возвращается, когда специалист не найден
	ErrProfessionalNotFound = errors.New("directoryservice: professional not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("directoryservice: service not found")

	// ErrInvalidResponse возвращается при некорректном ответе DirectoryService
	ErrInvalidResponse = errors.New("directoryservice: invalid response")

	// ErrInternal возвращается при сетевых и прочих внутренних ошибках клиента
	ErrInternal = errors.New("directoryservice: internal error")
)
