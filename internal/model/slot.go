package model

import "time"

// Slot представляет базовое правило еженедельной доступности:
// окно времени, повторяющееся каждую неделю в указанный день
type Slot struct {
	ID             int64      `json:"id"`
	DayOfWeek      int        `json:"day_of_week"` // 0 = Sunday, 6 = Saturday
	Window         TimeWindow `json:"time_window"`
	CreatedForDate time.Time  `json:"created_for_date"` // дата, для которой слот создавался; на резолвинг не влияет
	IsRecurring    bool       `json:"is_recurring"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
