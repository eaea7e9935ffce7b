package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/availability_calendar/internal/model"
	"github.com/Freeeeeet/availability_calendar/internal/repository/base"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ExceptionRepository управляет исключениями слотов на конкретные даты
type ExceptionRepository struct {
	base   *base.Repository
	logger *zap.Logger
}

// NewExceptionRepository создаёт новый репозиторий исключений
func NewExceptionRepository(pool *pgxpool.Pool, logger *zap.Logger) *ExceptionRepository {
	return &ExceptionRepository{
		base:   base.NewRepository(pool),
		logger: logger,
	}
}

// Upsert создаёт или перезаписывает исключение для пары (slot_id, exception_date).
// window == nil записывает маркер подавления. Уникальность пары гарантирует
// констрейнт БД: повторная запись обновляет существующую строку
func (r *ExceptionRepository) Upsert(ctx context.Context, slotID int64, date time.Time, window *model.TimeWindow) (*model.SlotException, error) {
	query := `
		INSERT INTO slot_exceptions (slot_id, exception_date, start_time, end_time)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slot_id, exception_date)
		DO UPDATE SET start_time = EXCLUDED.start_time, end_time = EXCLUDED.end_time, updated_at = now()
		RETURNING id, created_at, updated_at
	`

	start, end := toPgWindow(window)

	exception := &model.SlotException{
		SlotID:        slotID,
		ExceptionDate: date,
		Window:        window,
	}
	err := r.base.QueryRow(ctx, query, slotID, date, start, end).Scan(
		&exception.ID,
		&exception.CreatedAt,
		&exception.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("upsert slot exception: %w", err)
	}

	r.logger.Debug("Slot exception upserted",
		zap.Int64("slot_id", slotID),
		zap.String("exception_date", date.Format(model.DateFormat)),
		zap.Bool("suppression", window == nil))

	return exception, nil
}

// Delete удаляет исключение. Возвращает false если строки не было
func (r *ExceptionRepository) Delete(ctx context.Context, slotID int64, date time.Time) (bool, error) {
	query := `DELETE FROM slot_exceptions WHERE slot_id = $1 AND exception_date = $2`

	affected, err := r.base.ExecAffected(ctx, query, slotID, date)
	if err != nil {
		return false, fmt.Errorf("delete slot exception: %w", err)
	}

	return affected > 0, nil
}

// ListForDate получает все исключения одной даты как отображение slot_id -> окно.
// nil в значении означает подавление. Одна выборка на дату, не по слоту
func (r *ExceptionRepository) ListForDate(ctx context.Context, date time.Time) (map[int64]*model.TimeWindow, error) {
	query := `
		SELECT slot_id, start_time, end_time
		FROM slot_exceptions
		WHERE exception_date = $1
	`

	rows, err := r.base.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("list exceptions for date: %w", err)
	}
	defer rows.Close()

	exceptions := make(map[int64]*model.TimeWindow)
	for rows.Next() {
		var (
			slotID     int64
			start, end pgtype.Time
		)
		if err := rows.Scan(&slotID, &start, &end); err != nil {
			return nil, fmt.Errorf("scan slot exception: %w", err)
		}
		exceptions[slotID] = fromPgWindow(start, end)
	}

	return exceptions, nil
}

// DeleteBefore удаляет исключения с датой раньше указанной.
// Возвращает количество удалённых строк
func (r *ExceptionRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM slot_exceptions WHERE exception_date < $1`

	affected, err := r.base.ExecAffected(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete exceptions before date: %w", err)
	}

	return affected, nil
}
