package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/availability_calendar/internal/model"
	"go.uber.org/zap"
)

// Лимит слотов на одну created_for_date. Проверяется только по буквальному
// значению created_for_date при создании и никогда по материализованному
// расписанию дня
const maxSlotsPerDate = 2

// ScheduleService оркестрирует репозитории и резолвер: проверяет
// кросс-полевые инварианты на записи и отдаёт материализованные расписания
type ScheduleService struct {
	slotRepo      SlotRepository
	exceptionRepo ExceptionRepository
	resolver      *Resolver
	logger        *zap.Logger
}

// NewScheduleService создаёт новый сервис расписания
func NewScheduleService(slotRepo SlotRepository, exceptionRepo ExceptionRepository, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{
		slotRepo:      slotRepo,
		exceptionRepo: exceptionRepo,
		resolver:      NewResolver(slotRepo, exceptionRepo),
		logger:        logger,
	}
}

// CreateSlot создаёт новое правило еженедельной доступности
func (s *ScheduleService) CreateSlot(ctx context.Context, dayOfWeek int, start, end model.TimeOfDay, createdForDate time.Time) (*model.Slot, error) {
	s.logger.Info("CreateSlot called",
		zap.Int("day_of_week", dayOfWeek),
		zap.String("start", start.String()),
		zap.String("end", end.String()),
		zap.String("created_for_date", createdForDate.Format(model.DateFormat)))

	window, err := model.NewTimeWindow(start, end)
	if err != nil {
		return nil, err
	}

	createdForDate = model.NormalizeDate(createdForDate)

	// Лимит проверяется до обращения к Create: сам репозиторий только пишет
	count, err := s.slotRepo.CountByCreatedForDate(ctx, createdForDate)
	if err != nil {
		s.logger.Error("Failed to count slots for date",
			zap.String("created_for_date", createdForDate.Format(model.DateFormat)),
			zap.Error(err))
		return nil, fmt.Errorf("check slot capacity: %w", err)
	}
	if count >= maxSlotsPerDate {
		s.logger.Warn("Slot capacity exceeded",
			zap.String("created_for_date", createdForDate.Format(model.DateFormat)),
			zap.Int("existing", count))
		return nil, model.ErrCapacityExceeded
	}

	slot := &model.Slot{
		DayOfWeek:      dayOfWeek,
		Window:         window,
		CreatedForDate: createdForDate,
		IsRecurring:    true,
	}

	if err := s.slotRepo.Create(ctx, slot); err != nil {
		s.logger.Error("Failed to create slot", zap.Error(err))
		return nil, fmt.Errorf("create slot: %w", err)
	}

	s.logger.Info("Slot created",
		zap.Int64("slot_id", slot.ID),
		zap.Int("day_of_week", slot.DayOfWeek),
		zap.String("window", slot.Window.String()))

	return slot, nil
}

// GetSlot получает слот по ID
func (s *ScheduleService) GetSlot(ctx context.Context, id int64) (*model.Slot, error) {
	slot, err := s.slotRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	if slot == nil {
		return nil, model.ErrSlotNotFound
	}
	return slot, nil
}

// UpdateSlot изменяет окно времени базового правила. Затрагивает все
// occurrences без исключений; существующие исключения продолжают действовать.
// start и end опциональны и применяются поверх текущего окна
func (s *ScheduleService) UpdateSlot(ctx context.Context, id int64, start, end *model.TimeOfDay) (*model.Slot, error) {
	slot, err := s.GetSlot(ctx, id)
	if err != nil {
		return nil, err
	}

	newStart := slot.Window.Start
	newEnd := slot.Window.End
	if start != nil {
		newStart = *start
	}
	if end != nil {
		newEnd = *end
	}

	window, err := model.NewTimeWindow(newStart, newEnd)
	if err != nil {
		return nil, err
	}
	slot.Window = window

	if err := s.slotRepo.Update(ctx, slot); err != nil {
		s.logger.Error("Failed to update slot", zap.Int64("slot_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Slot updated",
		zap.Int64("slot_id", id),
		zap.String("window", slot.Window.String()))

	return slot, nil
}

// DeleteSlot удаляет базовое правило вместе со всеми его исключениями.
// Удаление несуществующего ID не ошибка: возвращается false
func (s *ScheduleService) DeleteSlot(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.slotRepo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("Failed to delete slot", zap.Int64("slot_id", id), zap.Error(err))
		return false, err
	}

	s.logger.Info("Slot delete processed",
		zap.Int64("slot_id", id),
		zap.Bool("deleted", deleted))

	return deleted, nil
}

// UpdateSlotForDate переопределяет окно одного occurrence на конкретную дату.
// Базовое правило не меняется. Повторный вызов обновляет существующее
// исключение, не создавая дубликат
func (s *ScheduleService) UpdateSlotForDate(ctx context.Context, id int64, date time.Time, start, end model.TimeOfDay) (*model.SlotException, error) {
	window, err := model.NewTimeWindow(start, end)
	if err != nil {
		return nil, err
	}

	if _, err := s.GetSlot(ctx, id); err != nil {
		return nil, err
	}

	exception, err := s.exceptionRepo.Upsert(ctx, id, model.NormalizeDate(date), &window)
	if err != nil {
		s.logger.Error("Failed to upsert exception",
			zap.Int64("slot_id", id),
			zap.String("date", date.Format(model.DateFormat)),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Slot overridden for date",
		zap.Int64("slot_id", id),
		zap.String("date", date.Format(model.DateFormat)),
		zap.String("window", window.String()))

	return exception, nil
}

// DeleteSlotForDate подавляет один occurrence на конкретную дату.
// Это запись маркера с пустым окном, не удаление строки: исключение
// остаётся в таблице и продолжает скрывать occurrence при повторных запросах
func (s *ScheduleService) DeleteSlotForDate(ctx context.Context, id int64, date time.Time) (*model.SlotException, error) {
	if _, err := s.GetSlot(ctx, id); err != nil {
		return nil, err
	}

	exception, err := s.exceptionRepo.Upsert(ctx, id, model.NormalizeDate(date), nil)
	if err != nil {
		s.logger.Error("Failed to upsert suppression",
			zap.Int64("slot_id", id),
			zap.String("date", date.Format(model.DateFormat)),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Slot suppressed for date",
		zap.Int64("slot_id", id),
		zap.String("date", date.Format(model.DateFormat)))

	return exception, nil
}

// GetSlotsForDate возвращает материализованные occurrences одной даты
func (s *ScheduleService) GetSlotsForDate(ctx context.Context, date time.Time) ([]model.ResolvedOccurrence, error) {
	return s.resolver.ResolveDate(ctx, date)
}

// GetSlotsForWeek возвращает расписание недели: ровно 7 дат начиная
// с понедельника недели, которой принадлежит anchor
func (s *ScheduleService) GetSlotsForWeek(ctx context.Context, anchor time.Time) ([]model.DaySchedule, error) {
	return s.resolver.ResolveWeek(ctx, anchor)
}

// PruneExceptions удаляет исключения с датой раньше cutoff.
// Используется фоновой задачей очистки
func (s *ScheduleService) PruneExceptions(ctx context.Context, cutoff time.Time) (int64, error) {
	deleted, err := s.exceptionRepo.DeleteBefore(ctx, model.NormalizeDate(cutoff))
	if err != nil {
		s.logger.Error("Failed to prune exceptions", zap.Error(err))
		return 0, err
	}

	if deleted > 0 {
		s.logger.Info("Old exceptions pruned",
			zap.Int64("deleted", deleted),
			zap.String("cutoff", cutoff.Format(model.DateFormat)))
	}

	return deleted, nil
}
