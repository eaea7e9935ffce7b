package model

import "time"

// ResolvedOccurrence представляет материализованный результат резолвинга:
// слот, спроецированный на конкретную календарную дату с учётом исключений
type ResolvedOccurrence struct {
	SlotID      int64      `json:"id"` // ID базового слота
	Date        time.Time  `json:"date"`
	Window      TimeWindow `json:"time_window"`
	IsException bool       `json:"is_exception"`
}

// DaySchedule представляет все occurrences одной календарной даты
type DaySchedule struct {
	Date      time.Time            `json:"date"`
	DayOfWeek int                  `json:"day_of_week"`
	Slots     []ResolvedOccurrence `json:"slots"`
}
