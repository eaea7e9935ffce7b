package app

import (
	"context"
	"time"

	"github.com/Freeeeeet/availability_calendar/internal/service"
	"go.uber.org/zap"
)

// Scheduler управляет фоновыми задачами обслуживания
type Scheduler struct {
	scheduleService *service.ScheduleService
	retentionWeeks  int
	logger          *zap.Logger
	stopChan        chan struct{}
}

// NewScheduler создаёт новый планировщик.
// retentionWeeks задаёт сколько недель хранятся старые исключения
func NewScheduler(scheduleService *service.ScheduleService, retentionWeeks int, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		scheduleService: scheduleService,
		retentionWeeks:  retentionWeeks,
		logger:          logger,
		stopChan:        make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler",
		zap.Int("retention_weeks", s.retentionWeeks))

	go s.runExceptionCleanupTask(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runExceptionCleanupTask периодически удаляет устаревшие исключения
func (s *Scheduler) runExceptionCleanupTask(ctx context.Context) {
	// Первый запуск сразу при старте
	s.cleanupExceptions(ctx)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanupExceptions(ctx)
		case <-s.stopChan:
			s.logger.Info("Exception cleanup task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Exception cleanup task cancelled")
			return
		}
	}
}

// cleanupExceptions удаляет исключения старше горизонта хранения.
// Маркеры подавления внутри горизонта не трогаются: они продолжают
// скрывать occurrences своих дат
func (s *Scheduler) cleanupExceptions(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -7*s.retentionWeeks)

	deleted, err := s.scheduleService.PruneExceptions(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to cleanup exceptions", zap.Error(err))
		return
	}

	s.logger.Info("Exception cleanup completed",
		zap.Int64("deleted", deleted))
}
