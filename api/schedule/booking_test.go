package schedule

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fleetops-io/servicesched/core/booking"
	"github.com/fleetops-io/servicesched/core/model"
)

func newBookingService(t *testing.T) *booking.Service {
	t.Helper()
	resources := booking.NewMemoryResourceStore()
	if err := resources.Put(context.Background(), model.Resource{
		ID: "cs-1", Number: 1, Type: model.ResourceChargeStall, Status: model.ResourceAvailable,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return booking.New(resources, booking.NewMemoryServiceStore(), nil, nil, 0)
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw)))
	return rr
}

func decodeResult(t *testing.T, rr *httptest.ResponseRecorder) model.BookingResult {
	t.Helper()
	var res model.BookingResult
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return res
}

func TestAcceptHandler(t *testing.T) {
	svc := newBookingService(t)
	h := NewAcceptHandler(svc)
	start := time.Now().Add(6 * time.Hour)

	req := AcceptRequest{
		Notification: model.ServiceNotification{ID: "n1", VehicleID: "v1", Service: model.ServiceCharge},
		Slot:         model.TimeSlot{Start: start, End: start.Add(time.Hour), ResourceID: "cs-1"},
	}
	rr := postJSON(t, h, "/api/bookings/accept", req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	res := decodeResult(t, rr)
	if !res.Success || res.ServiceID == "" {
		t.Fatalf("accept failed: %+v", res)
	}

	// The same slot again: a 200 carrying the failure message.
	req.Notification.VehicleID = "v2"
	rr = postJSON(t, h, "/api/bookings/accept", req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if res := decodeResult(t, rr); res.Success {
		t.Fatal("double booking must not succeed")
	}
}

func TestAcceptHandler_BadRequest(t *testing.T) {
	h := NewAcceptHandler(newBookingService(t))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/bookings/accept", bytes.NewReader([]byte("{"))))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("malformed body should be 400, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/bookings/accept", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET should be 405, got %d", rr.Code)
	}
}

func TestDeclineHandler(t *testing.T) {
	h := NewDeclineHandler(newBookingService(t))
	rr := postJSON(t, h, "/api/bookings/decline", DeclineRequest{
		Notification: model.ServiceNotification{ID: "n1", VehicleID: "v1", Service: model.ServiceDetailClean},
		Reason:       "vehicle in use",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if res := decodeResult(t, rr); !res.Success {
		t.Fatalf("decline failed: %+v", res)
	}
}

func TestCancelHandler_Window(t *testing.T) {
	svc := newBookingService(t)
	accept := NewAcceptHandler(svc)
	cancel := NewCancelHandler(svc)

	start := time.Now().Add(30 * time.Minute)
	rr := postJSON(t, accept, "/api/bookings/accept", AcceptRequest{
		Notification: model.ServiceNotification{ID: "n1", VehicleID: "v1", Service: model.ServiceCharge},
		Slot:         model.TimeSlot{Start: start, End: start.Add(time.Hour), ResourceID: "cs-1"},
	})
	res := decodeResult(t, rr)
	if !res.Success {
		t.Fatalf("accept: %+v", res)
	}

	rr = postJSON(t, cancel, "/api/bookings/cancel", CancelRequest{
		ServiceID:      res.ServiceID,
		ResourceID:     "cs-1",
		ScheduledStart: start,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	out := decodeResult(t, rr)
	if out.Success {
		t.Fatal("cancel 30 minutes before start must be refused")
	}
	if out.Message == "" {
		t.Fatal("refusal must carry a message")
	}
}

func TestCompleteHandler(t *testing.T) {
	svc := newBookingService(t)
	accept := NewAcceptHandler(svc)
	complete := NewCompleteHandler(svc)

	start := time.Now().Add(6 * time.Hour)
	res := decodeResult(t, postJSON(t, accept, "/api/bookings/accept", AcceptRequest{
		Notification: model.ServiceNotification{ID: "n1", VehicleID: "v1", Service: model.ServiceCharge},
		Slot:         model.TimeSlot{Start: start, End: start.Add(time.Hour), ResourceID: "cs-1"},
	}))
	if !res.Success {
		t.Fatalf("accept: %+v", res)
	}

	rr := postJSON(t, complete, "/api/bookings/complete", CompleteRequest{ServiceID: res.ServiceID})
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out struct {
		Result model.BookingResult    `json:"result"`
		Record model.ScheduledService `json:"record"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Result.Success || out.Record.Status != model.StatusCompleted {
		t.Fatalf("unexpected completion: %+v", out)
	}
	if out.Record.Service != model.ServiceCharge {
		t.Fatalf("record must carry the service type for the last-performed stamp: %+v", out.Record)
	}
}
