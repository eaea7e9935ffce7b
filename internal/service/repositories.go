package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/availability_calendar/internal/model"
)

// Контракты хранилища. Репозитории передаются в сервисы через конструкторы,
// что позволяет подставлять in-memory реализацию в тестах

// SlotRepository хранит базовые правила еженедельной доступности
type SlotRepository interface {
	Create(ctx context.Context, slot *model.Slot) error
	GetByID(ctx context.Context, id int64) (*model.Slot, error)
	Update(ctx context.Context, slot *model.Slot) error
	Delete(ctx context.Context, id int64) (bool, error)
	ListByDayOfWeek(ctx context.Context, dayOfWeek int) ([]*model.Slot, error)
	CountByCreatedForDate(ctx context.Context, date time.Time) (int, error)
}

// ExceptionRepository хранит переопределения слотов на конкретные даты
type ExceptionRepository interface {
	Upsert(ctx context.Context, slotID int64, date time.Time, window *model.TimeWindow) (*model.SlotException, error)
	Delete(ctx context.Context, slotID int64, date time.Time) (bool, error)
	ListForDate(ctx context.Context, date time.Time) (map[int64]*model.TimeWindow, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
