package model

import "time"

// SlotException представляет переопределение одного occurrence слота на конкретную дату.
// Window == nil означает подавление: слот не показывается на эту дату
type SlotException struct {
	ID            int64       `json:"id"`
	SlotID        int64       `json:"slot_id"`
	ExceptionDate time.Time   `json:"exception_date"`
	Window        *TimeWindow `json:"time_window"` // указатель - может быть nil
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// IsSuppression сообщает является ли исключение маркером подавления
func (e *SlotException) IsSuppression() bool {
	return e.Window == nil
}
