package party

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/roadpeak/foolu/internal/infrastructure/logging"
	"github.com/roadpeak/foolu/internal/infrastructure/registry"
	"go.opentelemetry.io/otel"
)

type nopLogger struct{}

func (nopLogger) Init() {}
func (nopLogger) Debug(cat logging.Category, sub logging.SubCategory, msg string, extra map[logging.ExtraKey]any) {
}
func (nopLogger) Debugf(template string, args ...any) {}
func (nopLogger) Info(cat logging.Category, sub logging.SubCategory, msg string, extra map[logging.ExtraKey]any) {
}
func (nopLogger) Infof(template string, args ...any) {}
func (nopLogger) Warn(cat logging.Category, sub logging.SubCategory, msg string, extra map[logging.ExtraKey]any) {
}
func (nopLogger) Warnf(template string, args ...any) {}
func (nopLogger) Error(cat logging.Category, sub logging.SubCategory, msg string, extra map[logging.ExtraKey]any) {
}
func (nopLogger) Errorf(template string, args ...any) {}
func (nopLogger) Fatal(cat logging.Category, sub logging.SubCategory, msg string, extra map[logging.ExtraKey]any) {
}
func (nopLogger) Fatalf(template string, args ...any) {}

func newTestHandler() (*Handler, *registry.Registry) {
	reg := registry.New()
	h := NewHandler(reg, nil, nopLogger{}, otel.Tracer("test"))
	return h, reg
}

func TestCheckWatchParty_MissingVideoID(t *testing.T) {
	h, _ := newTestHandler()

	r := httptest.NewRequest("GET", "/api/checkWatchParty", nil)
	w := httptest.NewRecorder()
	h.CheckWatchPartyHandler(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCheckWatchParty_InvalidVideoID(t *testing.T) {
	h, _ := newTestHandler()

	r := httptest.NewRequest("GET", "/api/checkWatchParty?videoId=bad%20id", nil)
	w := httptest.NewRecorder()
	h.CheckWatchPartyHandler(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCheckWatchParty_Inactive(t *testing.T) {
	h, reg := newTestHandler()

	// A party that exists but has no participants is not active.
	reg.EnsureParty("vid1")

	r := httptest.NewRequest("GET", "/api/checkWatchParty?videoId=vid1", nil)
	w := httptest.NewRecorder()
	h.CheckWatchPartyHandler(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp checkWatchPartyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.IsActive {
		t.Error("IsActive = true, want false for an empty party")
	}
}

func TestCheckWatchParty_Active(t *testing.T) {
	h, reg := newTestHandler()
	reg.AddParticipant("vid1", "c1", "alice")

	r := httptest.NewRequest("GET", "/api/checkWatchParty?videoId=vid1", nil)
	w := httptest.NewRecorder()
	h.CheckWatchPartyHandler(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp checkWatchPartyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.IsActive {
		t.Error("IsActive = false, want true")
	}
}
