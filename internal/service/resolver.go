package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/availability_calendar/internal/model"
)

// Resolver материализует повторяющиеся правила в occurrences конкретных дат.
// Для каждой даты базовые слоты её дня недели соединяются с таблицей
// исключений: исключение с окном заменяет окно слота, исключение без окна
// подавляет occurrence целиком
type Resolver struct {
	slotRepo      SlotRepository
	exceptionRepo ExceptionRepository
}

// NewResolver создаёт новый резолвер
func NewResolver(slotRepo SlotRepository, exceptionRepo ExceptionRepository) *Resolver {
	return &Resolver{
		slotRepo:      slotRepo,
		exceptionRepo: exceptionRepo,
	}
}

// ResolveDate возвращает occurrences одной даты.
// Дата без подходящих слотов даёт пустой список, не ошибку.
// Порядок повторяет порядок выборки слотов, без сортировки по времени
func (r *Resolver) ResolveDate(ctx context.Context, date time.Time) ([]model.ResolvedOccurrence, error) {
	date = model.NormalizeDate(date)
	dayOfWeek := int(date.Weekday())

	slots, err := r.slotRepo.ListByDayOfWeek(ctx, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("resolve date %s: %w", date.Format(model.DateFormat), err)
	}

	// Одна выборка исключений на всю дату, не по каждому слоту
	exceptions, err := r.exceptionRepo.ListForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("resolve date %s: %w", date.Format(model.DateFormat), err)
	}

	occurrences := make([]model.ResolvedOccurrence, 0, len(slots))
	for _, slot := range slots {
		window, hasException := exceptions[slot.ID]
		if hasException && window == nil {
			// Маркер подавления: occurrence не показывается на эту дату
			continue
		}

		occurrence := model.ResolvedOccurrence{
			SlotID:      slot.ID,
			Date:        date,
			Window:      slot.Window,
			IsException: hasException,
		}
		if hasException {
			occurrence.Window = *window
		}
		occurrences = append(occurrences, occurrence)
	}

	return occurrences, nil
}

// ResolveRange возвращает расписания последовательных дат начиная с from.
// Каждая дата резолвится независимо: согласованность гарантируется в пределах
// одной даты, не всего диапазона
func (r *Resolver) ResolveRange(ctx context.Context, from time.Time, days int) ([]model.DaySchedule, error) {
	from = model.NormalizeDate(from)

	schedules := make([]model.DaySchedule, 0, days)
	for i := 0; i < days; i++ {
		date := from.AddDate(0, 0, i)

		occurrences, err := r.ResolveDate(ctx, date)
		if err != nil {
			return nil, err
		}

		schedules = append(schedules, model.DaySchedule{
			Date:      date,
			DayOfWeek: int(date.Weekday()),
			Slots:     occurrences,
		})
	}

	return schedules, nil
}

// ResolveWeek возвращает расписание недели: ровно 7 дат начиная с понедельника
// недели, которой принадлежит anchor
func (r *Resolver) ResolveWeek(ctx context.Context, anchor time.Time) ([]model.DaySchedule, error) {
	return r.ResolveRange(ctx, model.StartOfWeek(anchor), 7)
}
