package timeblock

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

var timeBlockColumns = []string{
	"id",
	"business_id",
	"professional_id",
	"start_datetime",
	"end_datetime",
	"reason",
	"created_at",
}

// Repository репозиторий для работы с административными блокировками времени
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория блокировок времени
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает блокировку времени
func (r *Repository) Create(ctx context.Context, block *domain.TimeBlock) (*domain.TimeBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("time_blocks").
		Columns(
			"business_id",
			"professional_id",
			"start_datetime",
			"end_datetime",
			"reason",
		).
		Values(
			block.BusinessID,
			block.ProfessionalID,
			block.StartDatetime,
			block.EndDatetime,
			block.Reason,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&block.ID,
		&createdAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	block.CreatedAt = createdAt.Time

	return block, nil
}

// ListOverlapping получает блокировки бизнеса, пересекающие интервал [from, to)
// и действующие на указанного специалиста: либо personal (professional_id = ?),
// либо общие для всего бизнеса (professional_id IS NULL - например, праздник)
func (r *Repository) ListOverlapping(ctx context.Context, businessID, professionalID int64, from, to time.Time) ([]*domain.TimeBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(timeBlockColumns...).
		From("time_blocks").
		Where(squirrel.Eq{"business_id": businessID}).
		Where(squirrel.Or{
			squirrel.Eq{"professional_id": nil},
			squirrel.Eq{"professional_id": professionalID},
		}).
		// Полуоткрытые интервалы: соприкасающиеся границы пересечением не считаются
		Where(squirrel.Lt{"start_datetime": to}).
		Where(squirrel.Gt{"end_datetime": from}).
		OrderBy("start_datetime ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOverlapping - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	blocks := make([]*domain.TimeBlock, 0)

	for rows.Next() {
		var block domain.TimeBlock
		var createdAt sql.NullTime

		err := rows.Scan(
			&block.ID,
			&block.BusinessID,
			&block.ProfessionalID,
			&block.StartDatetime,
			&block.EndDatetime,
			&block.Reason,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListOverlapping - scan row: %v", ErrScanRow, err)
		}

		block.CreatedAt = createdAt.Time
		blocks = append(blocks, &block)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListOverlapping - rows error: %v", ErrScanRow, err)
	}

	return blocks, nil
}

// Delete удаляет блокировку времени в рамках своего бизнеса
// В отличие от записей, блокировки удаляются физически - истории по ним не ведётся
func (r *Repository) Delete(ctx context.Context, id int64, businessID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("time_blocks").
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"business_id": businessID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrTimeBlockNotFound
	}

	return nil
}
