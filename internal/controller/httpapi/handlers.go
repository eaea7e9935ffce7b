package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Freeeeeet/availability_calendar/internal/model"
	"github.com/Freeeeeet/availability_calendar/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SlotHandler обрабатывает HTTP запросы к расписанию
type SlotHandler struct {
	service *service.ScheduleService
	logger  *zap.Logger
}

// NewSlotHandler создаёт новый обработчик
func NewSlotHandler(service *service.ScheduleService, logger *zap.Logger) *SlotHandler {
	return &SlotHandler{
		service: service,
		logger:  logger,
	}
}

// slotResponse тело ответа для базового правила
type slotResponse struct {
	ID             int64  `json:"id"`
	DayOfWeek      int    `json:"day_of_week"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	CreatedForDate string `json:"created_for_date"`
	IsRecurring    bool   `json:"is_recurring"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

func newSlotResponse(slot *model.Slot) slotResponse {
	return slotResponse{
		ID:             slot.ID,
		DayOfWeek:      slot.DayOfWeek,
		StartTime:      slot.Window.Start.String(),
		EndTime:        slot.Window.End.String(),
		CreatedForDate: slot.CreatedForDate.Format(model.DateFormat),
		IsRecurring:    slot.IsRecurring,
		CreatedAt:      slot.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      slot.UpdatedAt.Format(time.RFC3339),
	}
}

// exceptionResponse тело ответа для исключения.
// start_time и end_time null для маркера подавления
type exceptionResponse struct {
	ID            int64   `json:"id"`
	SlotID        int64   `json:"slot_id"`
	ExceptionDate string  `json:"exception_date"`
	StartTime     *string `json:"start_time"`
	EndTime       *string `json:"end_time"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func newExceptionResponse(exception *model.SlotException) exceptionResponse {
	resp := exceptionResponse{
		ID:            exception.ID,
		SlotID:        exception.SlotID,
		ExceptionDate: exception.ExceptionDate.Format(model.DateFormat),
		CreatedAt:     exception.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     exception.UpdatedAt.Format(time.RFC3339),
	}
	if exception.Window != nil {
		start := exception.Window.Start.String()
		end := exception.Window.End.String()
		resp.StartTime = &start
		resp.EndTime = &end
	}
	return resp
}

// occurrenceResponse тело ответа для материализованного occurrence
type occurrenceResponse struct {
	ID          int64  `json:"id"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsException bool   `json:"is_exception"`
}

// dayResponse расписание одной даты
type dayResponse struct {
	Date      string               `json:"date"`
	DayOfWeek int                  `json:"day_of_week"`
	Slots     []occurrenceResponse `json:"slots"`
}

func newOccurrenceResponses(occurrences []model.ResolvedOccurrence) []occurrenceResponse {
	responses := make([]occurrenceResponse, 0, len(occurrences))
	for _, occurrence := range occurrences {
		responses = append(responses, occurrenceResponse{
			ID:          occurrence.SlotID,
			StartTime:   occurrence.Window.Start.String(),
			EndTime:     occurrence.Window.End.String(),
			IsException: occurrence.IsException,
		})
	}
	return responses
}

// statusForError отображает доменные ошибки на HTTP статусы
func statusForError(err error) int {
	switch {
	case errors.Is(err, model.ErrSlotNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidWindow), errors.Is(err, model.ErrCapacityExceeded):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *SlotHandler) respondError(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// CreateSlot обрабатывает POST /api/slots
func (h *SlotHandler) CreateSlot(c *gin.Context) {
	var in struct {
		DayOfWeek      *int   `json:"day_of_week" binding:"required"`
		StartTime      string `json:"start_time" binding:"required"`
		EndTime        string `json:"end_time" binding:"required"`
		CreatedForDate string `json:"created_for_date" binding:"required"`
	}

	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if *in.DayOfWeek < 0 || *in.DayOfWeek > 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day_of_week must be between 0 and 6"})
		return
	}

	start, err := model.ParseTimeOfDay(in.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	end, err := model.ParseTimeOfDay(in.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	createdForDate, err := time.Parse(model.DateFormat, in.CreatedForDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid created_for_date, expected YYYY-MM-DD"})
		return
	}

	slot, err := h.service.CreateSlot(c.Request.Context(), *in.DayOfWeek, start, end, createdForDate)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newSlotResponse(slot))
}

// GetWeek обрабатывает GET /api/slots/week?startDate=YYYY-MM-DD.
// Дата нормализуется к понедельнику своей недели
func (h *SlotHandler) GetWeek(c *gin.Context) {
	raw := c.Query("startDate")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDate query parameter is required"})
		return
	}

	anchor, err := time.Parse(model.DateFormat, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid startDate format, expected YYYY-MM-DD"})
		return
	}

	week, err := h.service.GetSlotsForWeek(c.Request.Context(), anchor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	days := make([]dayResponse, 0, len(week))
	for _, day := range week {
		days = append(days, dayResponse{
			Date:      day.Date.Format(model.DateFormat),
			DayOfWeek: day.DayOfWeek,
			Slots:     newOccurrenceResponses(day.Slots),
		})
	}

	c.JSON(http.StatusOK, days)
}

// GetDate обрабатывает GET /api/slots/date/:date
func (h *SlotHandler) GetDate(c *gin.Context) {
	date, err := time.Parse(model.DateFormat, c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, expected YYYY-MM-DD"})
		return
	}

	occurrences, err := h.service.GetSlotsForDate(c.Request.Context(), date)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newOccurrenceResponses(occurrences))
}

func parseSlotID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot ID"})
		return 0, false
	}
	return id, true
}

// UpdateSlot обрабатывает PUT /api/slots/:id.
// Меняет базовое правило: затрагивает все occurrences без исключений
func (h *SlotHandler) UpdateSlot(c *gin.Context) {
	id, ok := parseSlotID(c)
	if !ok {
		return
	}

	var in struct {
		StartTime *string `json:"start_time"`
		EndTime   *string `json:"end_time"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var start, end *model.TimeOfDay
	if in.StartTime != nil {
		parsed, err := model.ParseTimeOfDay(*in.StartTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		start = &parsed
	}
	if in.EndTime != nil {
		parsed, err := model.ParseTimeOfDay(*in.EndTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		end = &parsed
	}

	slot, err := h.service.UpdateSlot(c.Request.Context(), id, start, end)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSlotResponse(slot))
}

// DeleteSlot обрабатывает DELETE /api/slots/:id.
// Удаляет правило вместе со всеми исключениями
func (h *SlotHandler) DeleteSlot(c *gin.Context) {
	id, ok := parseSlotID(c)
	if !ok {
		return
	}

	deleted, err := h.service.DeleteSlot(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "slot not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateSlotForDate обрабатывает PUT /api/slots/:id/date.
// Создаёт или обновляет исключение для одной даты, не трогая правило
func (h *SlotHandler) UpdateSlotForDate(c *gin.Context) {
	id, ok := parseSlotID(c)
	if !ok {
		return
	}

	var in struct {
		Date      string `json:"date" binding:"required"`
		StartTime string `json:"start_time" binding:"required"`
		EndTime   string `json:"end_time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse(model.DateFormat, in.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, expected YYYY-MM-DD"})
		return
	}
	start, err := model.ParseTimeOfDay(in.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	end, err := model.ParseTimeOfDay(in.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exception, err := h.service.UpdateSlotForDate(c.Request.Context(), id, date, start, end)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newExceptionResponse(exception))
}

// DeleteSlotForDate обрабатывает DELETE /api/slots/:id/date.
// Записывает маркер подавления и возвращает его, а не булево
func (h *SlotHandler) DeleteSlotForDate(c *gin.Context) {
	id, ok := parseSlotID(c)
	if !ok {
		return
	}

	var in struct {
		Date string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse(model.DateFormat, in.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, expected YYYY-MM-DD"})
		return
	}

	exception, err := h.service.DeleteSlotForDate(c.Request.Context(), id, date)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newExceptionResponse(exception))
}
