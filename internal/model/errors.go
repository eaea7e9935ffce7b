package model

import "errors"

// Общие ошибки доменной модели
var (
	// ErrInvalidWindow возвращается когда начало интервала не раньше его конца
	ErrInvalidWindow = errors.New("start time must be before end time")

	// ErrCapacityExceeded возвращается при попытке создать третий слот на одну дату
	ErrCapacityExceeded = errors.New("maximum of 2 slots allowed per date")

	// ErrSlotNotFound возвращается когда слот с указанным ID не существует
	ErrSlotNotFound = errors.New("slot not found")
)
