package model

import "time"

// DateFormat формат календарной даты в API и хранилище
const DateFormat = "2006-01-02"

// NormalizeDate отбрасывает время суток, оставляя только календарную дату в UTC
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfWeek возвращает понедельник недели, которой принадлежит дата
func StartOfWeek(t time.Time) time.Time {
	d := NormalizeDate(t)
	// time.Weekday: 0 = Sunday, поэтому сдвиг для понедельника считается по модулю
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
