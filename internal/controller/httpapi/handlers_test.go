package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Freeeeeet/availability_calendar/internal/repository/memory"
	"github.com/Freeeeeet/availability_calendar/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	store := memory.NewStore()
	svc := service.NewScheduleService(store.Slots(), store.Exceptions(), zap.NewNop())
	handler := NewSlotHandler(svc, zap.NewNop())
	return NewRouter(handler, okPinger{}, zap.NewNop())
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createTestSlot(t *testing.T, router *gin.Engine, dayOfWeek int, start, end, createdFor string) map[string]any {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/slots", gin.H{
		"day_of_week":      dayOfWeek,
		"start_time":       start,
		"end_time":         end,
		"created_for_date": createdFor,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create slot: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestCreateSlotEndpoint(t *testing.T) {
	router := newTestRouter()

	resp := createTestSlot(t, router, 1, "09:00", "10:00", "2024-01-08")

	if resp["day_of_week"].(float64) != 1 {
		t.Errorf("Expected day_of_week=1, got %v", resp["day_of_week"])
	}
	if resp["start_time"] != "09:00" || resp["end_time"] != "10:00" {
		t.Errorf("Unexpected window: %v - %v", resp["start_time"], resp["end_time"])
	}
	if resp["is_recurring"] != true {
		t.Error("Expected is_recurring=true")
	}
}

// Воскресенье это day_of_week=0, ноль не должен отбрасываться валидацией
func TestCreateSlotEndpoint_SundayIsZero(t *testing.T) {
	router := newTestRouter()
	createTestSlot(t, router, 0, "09:00", "10:00", "2024-01-07")
}

func TestCreateSlotEndpoint_Validation(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing day_of_week", gin.H{"start_time": "09:00", "end_time": "10:00", "created_for_date": "2024-01-08"}},
		{"day_of_week out of range", gin.H{"day_of_week": 7, "start_time": "09:00", "end_time": "10:00", "created_for_date": "2024-01-08"}},
		{"bad time", gin.H{"day_of_week": 1, "start_time": "morning", "end_time": "10:00", "created_for_date": "2024-01-08"}},
		{"bad date", gin.H{"day_of_week": 1, "start_time": "09:00", "end_time": "10:00", "created_for_date": "08.01.2024"}},
		{"inverted window", gin.H{"day_of_week": 1, "start_time": "10:00", "end_time": "09:00", "created_for_date": "2024-01-08"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/slots", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCreateSlotEndpoint_CapacityExceeded(t *testing.T) {
	router := newTestRouter()

	createTestSlot(t, router, 1, "09:00", "10:00", "2024-01-08")
	createTestSlot(t, router, 1, "11:00", "12:00", "2024-01-08")

	rec := doJSON(t, router, http.MethodPost, "/api/slots", gin.H{
		"day_of_week":      1,
		"start_time":       "13:00",
		"end_time":         "14:00",
		"created_for_date": "2024-01-08",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestGetWeekEndpoint(t *testing.T) {
	router := newTestRouter()
	createTestSlot(t, router, 1, "09:00", "10:00", "2024-01-08")

	// Anchor в середине недели нормализуется к понедельнику
	rec := doJSON(t, router, http.MethodGet, "/api/slots/week?startDate=2024-01-10", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var days []struct {
		Date      string `json:"date"`
		DayOfWeek int    `json:"day_of_week"`
		Slots     []struct {
			ID          int64  `json:"id"`
			StartTime   string `json:"start_time"`
			EndTime     string `json:"end_time"`
			IsException bool   `json:"is_exception"`
		} `json:"slots"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &days); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(days) != 7 {
		t.Fatalf("Expected 7 days, got %d", len(days))
	}
	if days[0].Date != "2024-01-08" || days[0].DayOfWeek != 1 {
		t.Errorf("Expected Monday 2024-01-08 first, got %s (%d)", days[0].Date, days[0].DayOfWeek)
	}
	if len(days[0].Slots) != 1 || days[0].Slots[0].StartTime != "09:00" {
		t.Errorf("Expected one slot 09:00 on Monday, got %+v", days[0].Slots)
	}
	for i := 1; i < 7; i++ {
		if len(days[i].Slots) != 0 {
			t.Errorf("Expected no slots on day %d, got %d", i, len(days[i].Slots))
		}
	}
}

func TestGetWeekEndpoint_MissingStartDate(t *testing.T) {
	router := newTestRouter()
	rec := doJSON(t, router, http.MethodGet, "/api/slots/week", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestUpdateSlotForDateEndpoint(t *testing.T) {
	router := newTestRouter()
	resp := createTestSlot(t, router, 1, "09:00", "10:00", "2024-01-08")
	id := int64(resp["id"].(float64))

	rec := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/slots/%d/date", id), gin.H{
		"date":       "2024-01-08",
		"start_time": "14:00",
		"end_time":   "15:00",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	day := doJSON(t, router, http.MethodGet, "/api/slots/date/2024-01-08", nil)
	if day.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", day.Code)
	}
	var occurrences []struct {
		ID          int64  `json:"id"`
		StartTime   string `json:"start_time"`
		IsException bool   `json:"is_exception"`
	}
	if err := json.Unmarshal(day.Body.Bytes(), &occurrences); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(occurrences) != 1 || !occurrences[0].IsException || occurrences[0].StartTime != "14:00" {
		t.Errorf("Expected overridden occurrence at 14:00, got %+v", occurrences)
	}
}

func TestDeleteSlotForDateEndpoint(t *testing.T) {
	router := newTestRouter()
	resp := createTestSlot(t, router, 1, "09:00", "10:00", "2024-01-08")
	id := int64(resp["id"].(float64))

	rec := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/slots/%d/date", id), gin.H{
		"date": "2024-01-08",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Ответ содержит tombstone с пустым окном, не булево
	var exception struct {
		SlotID    int64   `json:"slot_id"`
		StartTime *string `json:"start_time"`
		EndTime   *string `json:"end_time"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &exception); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if exception.SlotID != id || exception.StartTime != nil || exception.EndTime != nil {
		t.Errorf("Expected suppression tombstone, got %+v", exception)
	}

	day := doJSON(t, router, http.MethodGet, "/api/slots/date/2024-01-08", nil)
	if day.Body.String() != "[]" {
		t.Errorf("Expected empty occurrence list, got %s", day.Body.String())
	}
}

func TestUpdateSlotEndpoint_NotFound(t *testing.T) {
	router := newTestRouter()
	rec := doJSON(t, router, http.MethodPut, "/api/slots/42", gin.H{"start_time": "09:00"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestDeleteSlotEndpoint(t *testing.T) {
	router := newTestRouter()
	resp := createTestSlot(t, router, 1, "09:00", "10:00", "2024-01-08")
	id := int64(resp["id"].(float64))

	rec := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/slots/%d", id), nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", rec.Code)
	}

	again := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/slots/%d", id), nil)
	if again.Code != http.StatusNotFound {
		t.Errorf("Expected 404 on second delete, got %d", again.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter()
	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}
