package repository

import (
	"github.com/Freeeeeet/availability_calendar/internal/model"
	"github.com/jackc/pgx/v5/pgtype"
)

// Конвертация между model.TimeOfDay и колонками типа TIME.
// pgtype.Time хранит микросекунды с начала суток.

const microsPerMinute = int64(60_000_000)

func toPgTime(t model.TimeOfDay) pgtype.Time {
	return pgtype.Time{
		Microseconds: int64(t.Minutes()) * microsPerMinute,
		Valid:        true,
	}
}

func fromPgTime(t pgtype.Time) model.TimeOfDay {
	minutes := int(t.Microseconds / microsPerMinute)
	return model.TimeOfDay{
		Hour:   minutes / 60,
		Minute: minutes % 60,
	}
}

// toPgWindow раскладывает опциональное окно на пару nullable TIME значений
func toPgWindow(w *model.TimeWindow) (pgtype.Time, pgtype.Time) {
	if w == nil {
		return pgtype.Time{}, pgtype.Time{}
	}
	return toPgTime(w.Start), toPgTime(w.End)
}

// fromPgWindow собирает окно из пары nullable TIME значений.
// Обе колонки NULL означают маркер подавления, поэтому возвращается nil
func fromPgWindow(start, end pgtype.Time) *model.TimeWindow {
	if !start.Valid || !end.Valid {
		return nil
	}
	return &model.TimeWindow{Start: fromPgTime(start), End: fromPgTime(end)}
}
