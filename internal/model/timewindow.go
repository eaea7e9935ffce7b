package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeOfDay представляет время суток без привязки к дате и таймзоне
type TimeOfDay struct {
	Hour   int // 0-23
	Minute int // 0-59
}

// ParseTimeOfDay разбирает строку формата "HH:MM"
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parsed, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time format %q, expected HH:MM", s)
	}
	return TimeOfDay{Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
}

// String возвращает время в формате "HH:MM"
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes возвращает количество минут с начала суток
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Before сравнивает два времени суток
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.Minutes() < other.Minutes()
}

// MarshalJSON сериализует время как строку "HH:MM"
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON разбирает время из строки "HH:MM"
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TimeWindow представляет полуоткрытый интервал [Start, End) внутри одних суток
type TimeWindow struct {
	Start TimeOfDay `json:"start_time"`
	End   TimeOfDay `json:"end_time"`
}

// NewTimeWindow создаёт интервал, проверяя что начало строго раньше конца
func NewTimeWindow(start, end TimeOfDay) (TimeWindow, error) {
	if !start.Before(end) {
		return TimeWindow{}, ErrInvalidWindow
	}
	return TimeWindow{Start: start, End: end}, nil
}

// String возвращает интервал в формате "HH:MM-HH:MM"
func (w TimeWindow) String() string {
	return w.Start.String() + "-" + w.End.String()
}
