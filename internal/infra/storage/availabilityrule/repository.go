package availabilityrule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

var ruleColumns = []string{
	"id",
	"professional_id",
	"weekday",
	"start_time",
	"end_time",
	"break_start",
	"break_end",
	"is_active",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с правилами доступности (недельным расписанием)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория правил доступности
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetActiveByWeekday получает активное правило специалиста на день недели
// Уникальный индекс (professional_id, weekday) гарантирует, что правило максимум одно
func (r *Repository) GetActiveByWeekday(ctx context.Context, professionalID int64, weekday time.Weekday) (*domain.AvailabilityRule, error) {
	if weekday < time.Sunday || weekday > time.Saturday {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWeekday, weekday)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(ruleColumns...).
		From("availability_rules").
		Where(squirrel.Eq{
			"professional_id": professionalID,
			"weekday":         int(weekday),
			"is_active":       true,
		}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByWeekday - build select query: %v", ErrBuildQuery, err)
	}

	rule, err := scanRule(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByWeekday - scan rule: %v", ErrScanRow, err)
	}

	return rule, nil
}

// ListByProfessional получает все правила специалиста, включая неактивные
func (r *Repository) ListByProfessional(ctx context.Context, professionalID int64) ([]*domain.AvailabilityRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(ruleColumns...).
		From("availability_rules").
		Where(squirrel.Eq{"professional_id": professionalID}).
		OrderBy("weekday ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByProfessional - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByProfessional - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	rules := make([]*domain.AvailabilityRule, 0)

	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByProfessional - scan row: %v", ErrScanRow, err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByProfessional - rows error: %v", ErrScanRow, err)
	}

	return rules, nil
}

// Upsert создает или обновляет правило на (специалист, день недели)
// Конфликт по уникальному индексу превращается в обновление существующей строки
func (r *Repository) Upsert(ctx context.Context, rule *domain.AvailabilityRule) (*domain.AvailabilityRule, error) {
	if rule.Weekday < time.Sunday || rule.Weekday > time.Saturday {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWeekday, rule.Weekday)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("availability_rules").
		Columns(
			"professional_id",
			"weekday",
			"start_time",
			"end_time",
			"break_start",
			"break_end",
			"is_active",
		).
		Values(
			rule.ProfessionalID,
			int(rule.Weekday),
			rule.StartTime,
			rule.EndTime,
			rule.BreakStart,
			rule.BreakEnd,
			rule.IsActive,
		).
		Suffix(`ON CONFLICT (professional_id, weekday) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			break_start = EXCLUDED.break_start,
			break_end = EXCLUDED.break_end,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build upsert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&rule.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute upsert: %v", ErrExecQuery, err)
	}

	rule.CreatedAt = createdAt.Time
	rule.UpdatedAt = updatedAt.Time

	return rule, nil
}

// Deactivate деактивирует правило специалиста на день недели
func (r *Repository) Deactivate(ctx context.Context, professionalID int64, weekday time.Weekday) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("availability_rules").
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"professional_id": professionalID,
			"weekday":         int(weekday),
		}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Deactivate - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Deactivate - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Deactivate - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrRuleNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanRule сканирует одну строку в доменную модель правила
func scanRule(row rowScanner) (*domain.AvailabilityRule, error) {
	var rule domain.AvailabilityRule
	var weekday int
	var breakStart, breakEnd sql.Null[types.TimeString]
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&rule.ID,
		&rule.ProfessionalID,
		&weekday,
		&rule.StartTime,
		&rule.EndTime,
		&breakStart,
		&breakEnd,
		&rule.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rule.Weekday = time.Weekday(weekday)
	if breakStart.Valid {
		rule.BreakStart = &breakStart.V
	}
	if breakEnd.Valid {
		rule.BreakEnd = &breakEnd.V
	}
	rule.CreatedAt = createdAt.Time
	rule.UpdatedAt = updatedAt.Time

	return &rule, nil
}
