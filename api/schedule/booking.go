package schedule

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fleetops-io/servicesched/core/booking"
	"github.com/fleetops-io/servicesched/core/model"
)

// AcceptRequest is the body of POST /api/bookings/accept.
type AcceptRequest struct {
	Notification model.ServiceNotification `json:"notification"`
	Slot         model.TimeSlot            `json:"slot"`
}

// DeclineRequest is the body of POST /api/bookings/decline.
type DeclineRequest struct {
	Notification model.ServiceNotification `json:"notification"`
	Reason       string                    `json:"reason,omitempty"`
}

// RescheduleRequest is the body of POST /api/bookings/reschedule.
type RescheduleRequest struct {
	ServiceID string         `json:"service_id"`
	OldSlot   model.TimeSlot `json:"old_slot"`
	NewSlot   model.TimeSlot `json:"new_slot"`
}

// CancelRequest is the body of POST /api/bookings/cancel.
type CancelRequest struct {
	ServiceID      string    `json:"service_id"`
	ResourceID     string    `json:"resource_id,omitempty"`
	ScheduledStart time.Time `json:"scheduled_start"`
}

// CompleteRequest is the body of POST /api/bookings/complete.
type CompleteRequest struct {
	ServiceID string `json:"service_id"`
}

// NewAcceptHandler converts a member's acceptance into a reservation.
// Failures are returned as a 200 with Success=false so the dashboard can
// render the message directly.
func NewAcceptHandler(svc *booking.Service) http.Handler {
	return post(func(r *http.Request) (any, error) {
		var req AcceptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
		return svc.Accept(r.Context(), req.Notification, req.Slot), nil
	})
}

// NewDeclineHandler records a member's refusal.
func NewDeclineHandler(svc *booking.Service) http.Handler {
	return post(func(r *http.Request) (any, error) {
		var req DeclineRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
		return svc.Decline(r.Context(), req.Notification, req.Reason), nil
	})
}

// NewRescheduleHandler moves a booking to a new slot.
func NewRescheduleHandler(svc *booking.Service) http.Handler {
	return post(func(r *http.Request) (any, error) {
		var req RescheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
		return svc.Reschedule(r.Context(), req.ServiceID, req.OldSlot, req.NewSlot), nil
	})
}

// NewCancelHandler cancels a booking subject to the cancellation window.
func NewCancelHandler(svc *booking.Service) http.Handler {
	return post(func(r *http.Request) (any, error) {
		var req CancelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
		return svc.Cancel(r.Context(), req.ServiceID, req.ResourceID, req.ScheduledStart), nil
	})
}

// NewCompleteHandler marks a booking done and reports the completed record
// so the fleet store can stamp the last-performed timestamp.
func NewCompleteHandler(svc *booking.Service) http.Handler {
	return post(func(r *http.Request) (any, error) {
		var req CompleteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
		record, res := svc.Complete(r.Context(), req.ServiceID)
		return struct {
			Result model.BookingResult    `json:"result"`
			Record model.ScheduledService `json:"record"`
		}{Result: res, Record: record}, nil
	})
}

func post(fn func(r *http.Request) (any, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		v, err := fn(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		WriteJSON(w, v)
	})
}
