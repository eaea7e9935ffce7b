// Package memory содержит in-memory реализацию репозиториев.
// Используется как подменяемое хранилище в тестах вместо настоящей БД
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/availability_calendar/internal/model"
)

type exceptionKey struct {
	slotID int64
	date   string
}

// Store хранит слоты и исключения в памяти, повторяя семантику
// Postgres-репозиториев: каскадное удаление, уникальность (slot_id, date),
// стабильный порядок выборки по id
type Store struct {
	mu              sync.Mutex
	slots           map[int64]model.Slot
	exceptions      map[exceptionKey]model.SlotException
	nextSlotID      int64
	nextExceptionID int64
}

// NewStore создаёт пустое хранилище
func NewStore() *Store {
	return &Store{
		slots:           make(map[int64]model.Slot),
		exceptions:      make(map[exceptionKey]model.SlotException),
		nextSlotID:      1,
		nextExceptionID: 1,
	}
}

// Slots возвращает представление хранилища как репозитория слотов
func (s *Store) Slots() *SlotStore {
	return &SlotStore{store: s}
}

// Exceptions возвращает представление хранилища как репозитория исключений
func (s *Store) Exceptions() *ExceptionStore {
	return &ExceptionStore{store: s}
}

func dateKey(t time.Time) string {
	return model.NormalizeDate(t).Format(model.DateFormat)
}

// SlotStore реализует контракт репозитория слотов поверх Store
type SlotStore struct {
	store *Store
}

// Create сохраняет новый слот и присваивает ему ID
func (r *SlotStore) Create(_ context.Context, slot *model.Slot) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	slot.ID = s.nextSlotID
	s.nextSlotID++
	now := time.Now()
	slot.CreatedAt = now
	slot.UpdatedAt = now
	s.slots[slot.ID] = *slot
	return nil
}

// GetByID возвращает слот или nil если его нет
func (r *SlotStore) GetByID(_ context.Context, id int64) (*model.Slot, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[id]
	if !ok {
		return nil, nil
	}
	return &slot, nil
}

// Update перезаписывает окно времени существующего слота
func (r *SlotStore) Update(_ context.Context, slot *model.Slot) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.slots[slot.ID]
	if !ok {
		return model.ErrSlotNotFound
	}
	stored.Window = slot.Window
	stored.UpdatedAt = time.Now()
	s.slots[slot.ID] = stored
	slot.UpdatedAt = stored.UpdatedAt
	return nil
}

// Delete удаляет слот вместе со всеми его исключениями
func (r *SlotStore) Delete(_ context.Context, id int64) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.slots[id]; !ok {
		return false, nil
	}
	delete(s.slots, id)
	for key := range s.exceptions {
		if key.slotID == id {
			delete(s.exceptions, key)
		}
	}
	return true, nil
}

// ListByDayOfWeek возвращает повторяющиеся слоты дня недели в порядке id
func (r *SlotStore) ListByDayOfWeek(_ context.Context, dayOfWeek int) ([]*model.Slot, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var slots []*model.Slot
	for _, slot := range s.slots {
		if slot.IsRecurring && slot.DayOfWeek == dayOfWeek {
			copied := slot
			slots = append(slots, &copied)
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].ID < slots[j].ID })
	return slots, nil
}

// CountByCreatedForDate считает слоты с точным совпадением created_for_date
func (r *SlotStore) CountByCreatedForDate(_ context.Context, date time.Time) (int, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dateKey(date)
	count := 0
	for _, slot := range s.slots {
		if dateKey(slot.CreatedForDate) == key {
			count++
		}
	}
	return count, nil
}

// ExceptionStore реализует контракт репозитория исключений поверх Store
type ExceptionStore struct {
	store *Store
}

// Upsert создаёт или обновляет исключение для пары (slot_id, date).
// При обновлении ID существующей строки сохраняется
func (r *ExceptionStore) Upsert(_ context.Context, slotID int64, date time.Time, window *model.TimeWindow) (*model.SlotException, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := exceptionKey{slotID: slotID, date: dateKey(date)}
	now := time.Now()

	exception, ok := s.exceptions[key]
	if !ok {
		exception = model.SlotException{
			ID:            s.nextExceptionID,
			SlotID:        slotID,
			ExceptionDate: model.NormalizeDate(date),
			CreatedAt:     now,
		}
		s.nextExceptionID++
	}
	exception.Window = window
	exception.UpdatedAt = now
	s.exceptions[key] = exception

	result := exception
	return &result, nil
}

// Delete удаляет исключение пары (slot_id, date)
func (r *ExceptionStore) Delete(_ context.Context, slotID int64, date time.Time) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := exceptionKey{slotID: slotID, date: dateKey(date)}
	if _, ok := s.exceptions[key]; !ok {
		return false, nil
	}
	delete(s.exceptions, key)
	return true, nil
}

// ListForDate возвращает исключения одной даты как отображение slot_id -> окно
func (r *ExceptionStore) ListForDate(_ context.Context, date time.Time) (map[int64]*model.TimeWindow, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dateKey(date)
	exceptions := make(map[int64]*model.TimeWindow)
	for k, exception := range s.exceptions {
		if k.date == key {
			exceptions[k.slotID] = exception.Window
		}
	}
	return exceptions, nil
}

// DeleteBefore удаляет исключения с датой раньше указанной
func (r *ExceptionStore) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoffKey := dateKey(cutoff)
	var deleted int64
	for key := range s.exceptions {
		if key.date < cutoffKey {
			delete(s.exceptions, key)
			deleted++
		}
	}
	return deleted, nil
}
