package service

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/availability_calendar/internal/model"
	"github.com/Freeeeeet/availability_calendar/internal/repository/memory"
)

func mustDate(t *testing.T, raw string) time.Time {
	t.Helper()
	date, err := time.Parse(model.DateFormat, raw)
	if err != nil {
		t.Fatalf("parse date %q: %v", raw, err)
	}
	return date
}

func window(startHour, endHour int) model.TimeWindow {
	return model.TimeWindow{
		Start: model.TimeOfDay{Hour: startHour},
		End:   model.TimeOfDay{Hour: endHour},
	}
}

func createSlot(t *testing.T, store *memory.Store, dayOfWeek int, w model.TimeWindow, createdFor string) *model.Slot {
	t.Helper()
	slot := &model.Slot{
		DayOfWeek:      dayOfWeek,
		Window:         w,
		CreatedForDate: mustDate(t, createdFor),
		IsRecurring:    true,
	}
	if err := store.Slots().Create(context.Background(), slot); err != nil {
		t.Fatalf("create slot: %v", err)
	}
	return slot
}

func TestResolveDate_BaseRule(t *testing.T) {
	store := memory.NewStore()
	resolver := NewResolver(store.Slots(), store.Exceptions())

	// Понедельник 09:00-10:00
	slot := createSlot(t, store, 1, window(9, 10), "2024-01-08")

	occurrences, err := resolver.ResolveDate(context.Background(), mustDate(t, "2024-01-08"))
	if err != nil {
		t.Fatalf("ResolveDate failed: %v", err)
	}

	if len(occurrences) != 1 {
		t.Fatalf("Expected 1 occurrence, got %d", len(occurrences))
	}
	got := occurrences[0]
	if got.SlotID != slot.ID {
		t.Errorf("Expected slot ID %d, got %d", slot.ID, got.SlotID)
	}
	if got.IsException {
		t.Error("Expected is_exception=false for base rule")
	}
	if got.Window != window(9, 10) {
		t.Errorf("Expected window 09:00-10:00, got %s", got.Window)
	}
}

func TestResolveDate_NoMatchingSlots(t *testing.T) {
	store := memory.NewStore()
	resolver := NewResolver(store.Slots(), store.Exceptions())

	createSlot(t, store, 1, window(9, 10), "2024-01-08")

	// Вторник: подходящих слотов нет, это не ошибка
	occurrences, err := resolver.ResolveDate(context.Background(), mustDate(t, "2024-01-09"))
	if err != nil {
		t.Fatalf("ResolveDate failed: %v", err)
	}
	if len(occurrences) != 0 {
		t.Errorf("Expected empty list, got %d occurrences", len(occurrences))
	}
}

func TestResolveDate_ExceptionOverridesWindow(t *testing.T) {
	store := memory.NewStore()
	resolver := NewResolver(store.Slots(), store.Exceptions())

	slot := createSlot(t, store, 1, window(9, 10), "2024-01-08")

	override := window(14, 15)
	if _, err := store.Exceptions().Upsert(context.Background(), slot.ID, mustDate(t, "2024-01-08"), &override); err != nil {
		t.Fatalf("upsert exception: %v", err)
	}

	occurrences, err := resolver.ResolveDate(context.Background(), mustDate(t, "2024-01-08"))
	if err != nil {
		t.Fatalf("ResolveDate failed: %v", err)
	}
	if len(occurrences) != 1 {
		t.Fatalf("Expected 1 occurrence, got %d", len(occurrences))
	}
	if !occurrences[0].IsException {
		t.Error("Expected is_exception=true")
	}
	if occurrences[0].Window != override {
		t.Errorf("Expected window 14:00-15:00, got %s", occurrences[0].Window)
	}

	// Следующий понедельник не затронут
	next, err := resolver.ResolveDate(context.Background(), mustDate(t, "2024-01-15"))
	if err != nil {
		t.Fatalf("ResolveDate failed: %v", err)
	}
	if len(next) != 1 || next[0].IsException || next[0].Window != window(9, 10) {
		t.Errorf("Expected untouched base occurrence on the next Monday, got %+v", next)
	}
}

func TestResolveDate_SuppressionHidesOccurrence(t *testing.T) {
	store := memory.NewStore()
	resolver := NewResolver(store.Slots(), store.Exceptions())

	suppressed := createSlot(t, store, 1, window(9, 10), "2024-01-08")
	kept := createSlot(t, store, 1, window(11, 12), "2024-01-08")

	if _, err := store.Exceptions().Upsert(context.Background(), suppressed.ID, mustDate(t, "2024-01-08"), nil); err != nil {
		t.Fatalf("upsert suppression: %v", err)
	}

	occurrences, err := resolver.ResolveDate(context.Background(), mustDate(t, "2024-01-08"))
	if err != nil {
		t.Fatalf("ResolveDate failed: %v", err)
	}
	if len(occurrences) != 1 {
		t.Fatalf("Expected 1 occurrence after suppression, got %d", len(occurrences))
	}
	if occurrences[0].SlotID != kept.ID {
		t.Errorf("Expected slot %d to survive, got %d", kept.ID, occurrences[0].SlotID)
	}

	// Другие понедельники подавление не затрагивает
	next, err := resolver.ResolveDate(context.Background(), mustDate(t, "2024-01-15"))
	if err != nil {
		t.Fatalf("ResolveDate failed: %v", err)
	}
	if len(next) != 2 {
		t.Errorf("Expected 2 occurrences on the next Monday, got %d", len(next))
	}
}

func TestResolveDate_CreatedForDateDoesNotGate(t *testing.T) {
	store := memory.NewStore()
	resolver := NewResolver(store.Slots(), store.Exceptions())

	// created_for_date в далёком прошлом: на резолвинг не влияет
	createSlot(t, store, 1, window(9, 10), "2020-03-02")

	occurrences, err := resolver.ResolveDate(context.Background(), mustDate(t, "2030-04-08"))
	if err != nil {
		t.Fatalf("ResolveDate failed: %v", err)
	}
	if len(occurrences) != 1 {
		t.Errorf("Expected 1 occurrence regardless of created_for_date, got %d", len(occurrences))
	}
}

func TestResolveDate_StableOrder(t *testing.T) {
	store := memory.NewStore()
	resolver := NewResolver(store.Slots(), store.Exceptions())

	// Второй слот начинается раньше первого: порядок всё равно по id
	first := createSlot(t, store, 1, window(15, 16), "2024-01-08")
	second := createSlot(t, store, 1, window(9, 10), "2024-01-15")

	occurrences, err := resolver.ResolveDate(context.Background(), mustDate(t, "2024-01-08"))
	if err != nil {
		t.Fatalf("ResolveDate failed: %v", err)
	}
	if len(occurrences) != 2 {
		t.Fatalf("Expected 2 occurrences, got %d", len(occurrences))
	}
	if occurrences[0].SlotID != first.ID || occurrences[1].SlotID != second.ID {
		t.Errorf("Expected retrieval order %d,%d, got %d,%d",
			first.ID, second.ID, occurrences[0].SlotID, occurrences[1].SlotID)
	}
}

func TestResolveWeek_SevenDaysMondayFirst(t *testing.T) {
	store := memory.NewStore()
	resolver := NewResolver(store.Slots(), store.Exceptions())

	// Четверг как anchor: неделя всё равно начинается с понедельника
	week, err := resolver.ResolveWeek(context.Background(), mustDate(t, "2024-01-11"))
	if err != nil {
		t.Fatalf("ResolveWeek failed: %v", err)
	}

	if len(week) != 7 {
		t.Fatalf("Expected exactly 7 days, got %d", len(week))
	}
	if got := week[0].Date.Format(model.DateFormat); got != "2024-01-08" {
		t.Errorf("Expected week to start on 2024-01-08, got %s", got)
	}
	if week[0].DayOfWeek != 1 {
		t.Errorf("Expected Monday (1) first, got %d", week[0].DayOfWeek)
	}
	for i := 1; i < 7; i++ {
		prev := week[i-1].Date
		if !week[i].Date.Equal(prev.AddDate(0, 0, 1)) {
			t.Errorf("Expected consecutive dates, got %s after %s",
				week[i].Date.Format(model.DateFormat), prev.Format(model.DateFormat))
		}
	}
}
