package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/availability_calendar/internal/model"
	"github.com/Freeeeeet/availability_calendar/internal/repository/base"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SlotRepository управляет базовыми правилами еженедельной доступности
type SlotRepository struct {
	base *base.Repository
}

// NewSlotRepository создаёт новый репозиторий слотов
func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{base: base.NewRepository(pool)}
}

// Create создаёт новый слот
func (r *SlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	query := `
		INSERT INTO slots (day_of_week, start_time, end_time, created_for_date, is_recurring)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.base.QueryRow(
		ctx, query,
		slot.DayOfWeek,
		toPgTime(slot.Window.Start),
		toPgTime(slot.Window.End),
		slot.CreatedForDate,
		slot.IsRecurring,
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*model.Slot, error) {
	query := `
		SELECT id, day_of_week, start_time, end_time, created_for_date, is_recurring, created_at, updated_at
		FROM slots
		WHERE id = $1
	`

	var (
		slot       model.Slot
		start, end pgtype.Time
	)
	err := r.base.QueryRow(ctx, query, id).Scan(
		&slot.ID,
		&slot.DayOfWeek,
		&start,
		&end,
		&slot.CreatedForDate,
		&slot.IsRecurring,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	slot.Window = model.TimeWindow{Start: fromPgTime(start), End: fromPgTime(end)}
	return &slot, nil
}

// Update обновляет окно времени слота
func (r *SlotRepository) Update(ctx context.Context, slot *model.Slot) error {
	query := `
		UPDATE slots
		SET start_time = $2, end_time = $3, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.base.QueryRow(
		ctx, query,
		slot.ID,
		toPgTime(slot.Window.Start),
		toPgTime(slot.Window.End),
	).Scan(&slot.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return model.ErrSlotNotFound
		}
		return fmt.Errorf("update slot: %w", err)
	}

	return nil
}

// Delete удаляет слот. Исключения удаляются каскадно на уровне БД.
// Возвращает false если слот не существовал
func (r *SlotRepository) Delete(ctx context.Context, id int64) (bool, error) {
	affected, err := r.base.ExecAffected(ctx, `DELETE FROM slots WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete slot: %w", err)
	}

	return affected > 0, nil
}

// ListByDayOfWeek получает все повторяющиеся слоты для дня недели.
// Порядок выборки стабильный (по id), без сортировки по времени
func (r *SlotRepository) ListByDayOfWeek(ctx context.Context, dayOfWeek int) ([]*model.Slot, error) {
	query := `
		SELECT id, day_of_week, start_time, end_time, created_for_date, is_recurring, created_at, updated_at
		FROM slots
		WHERE is_recurring = true AND day_of_week = $1
		ORDER BY id
	`

	rows, err := r.base.Query(ctx, query, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("list slots by day of week: %w", err)
	}
	defer rows.Close()

	var slots []*model.Slot
	for rows.Next() {
		var (
			slot       model.Slot
			start, end pgtype.Time
		)
		err := rows.Scan(
			&slot.ID,
			&slot.DayOfWeek,
			&start,
			&end,
			&slot.CreatedForDate,
			&slot.IsRecurring,
			&slot.CreatedAt,
			&slot.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slot.Window = model.TimeWindow{Start: fromPgTime(start), End: fromPgTime(end)}
		slots = append(slots, &slot)
	}

	return slots, nil
}

// CountByCreatedForDate считает слоты, созданные для указанной даты.
// Используется для проверки лимита при создании
func (r *SlotRepository) CountByCreatedForDate(ctx context.Context, date time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM slots WHERE created_for_date = $1`

	var count int
	err := r.base.QueryRow(ctx, query, date).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count slots by created_for_date: %w", err)
	}

	return count, nil
}
