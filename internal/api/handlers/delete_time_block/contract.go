package delete_time_block

import "context"

type ScheduleService interface {
	DeleteTimeBlock(ctx context.Context, id int64, businessID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
