// Package booking converts member responses into durable, conflict-free
// reservations. It is the only component of the scheduling core that
// performs external reads and writes, and the only one with a concurrency
// hazard: claiming a physical resource must be atomic.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fleetops-io/servicesched/core/logger"
	"github.com/fleetops-io/servicesched/core/metrics"
	"github.com/fleetops-io/servicesched/core/model"
)

// DefaultCancellationWindowHours protects depot operations from last-minute
// no-shows.
const DefaultCancellationWindowHours = 2

// Service implements accept, decline, reschedule, cancel and complete over
// the resource and service stores. Every mutating operation returns a
// BookingResult instead of raising, so callers can render Message directly.
type Service struct {
	resources   ResourceStore
	services    ServiceStore
	log         logger.Logger
	sink        metrics.MetricsSink
	windowHours float64
	now         func() time.Time
}

// New creates a booking service. A nil sink disables metrics, a nil log
// disables logging, windowHours <= 0 applies the default.
func New(resources ResourceStore, services ServiceStore, log logger.Logger, sink metrics.MetricsSink, windowHours float64) *Service {
	if log == nil {
		log = logger.Nop{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if windowHours <= 0 {
		windowHours = DefaultCancellationWindowHours
	}
	return &Service{
		resources:   resources,
		services:    services,
		log:         log,
		sink:        sink,
		windowHours: windowHours,
		now:         time.Now,
	}
}

// SetClock overrides the service clock. Intended for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Accept converts an accepted notification and the chosen slot into a
// reservation. The resource claim is atomic: when the slot's resource is no
// longer available, the operation fails without side effects and the caller
// should re-offer the alternative slots.
func (s *Service) Accept(ctx context.Context, n model.ServiceNotification, slot model.TimeSlot) model.BookingResult {
	now := s.now()
	if slot.ResourceID != "" {
		if err := s.resources.Claim(ctx, slot.ResourceID, n.VehicleID, slot.Start, slot.End); err != nil {
			if errors.Is(err, ErrStaleResource) {
				s.log.Infof("claim lost for resource %s vehicle %s", slot.ResourceID, n.VehicleID)
				return s.record(n, "accept", model.BookingResult{
					Message: "That slot was just taken. Please pick one of the alternatives.",
				})
			}
			return s.record(n, "accept", model.BookingResult{Message: fmt.Sprintf("booking failed: %v", err)})
		}
	}

	sv := model.ScheduledService{
		ID:             uuid.NewString(),
		VehicleID:      n.VehicleID,
		ResourceID:     slot.ResourceID,
		Service:        n.Service,
		Status:         model.StatusScheduled,
		PredictedDate:  n.PredictedDate,
		ScheduledStart: slot.Start,
		ScheduledEnd:   slot.End,
		PriorityScore:  n.PriorityScore,
		Reason:         n.Reason,
		RespondedAt:    now,
	}
	if err := s.services.Insert(ctx, sv); err != nil {
		if slot.ResourceID != "" {
			if rerr := s.resources.Release(ctx, slot.ResourceID); rerr != nil {
				s.log.Errorf("release after failed insert: %v", rerr)
			}
		}
		return s.record(n, "accept", model.BookingResult{Message: fmt.Sprintf("booking failed: %v", err)})
	}
	s.log.Infof("scheduled %s for vehicle %s at %s", sv.Service, sv.VehicleID, sv.ScheduledStart.Format(time.RFC3339))
	return s.record(n, "accept", model.BookingResult{Success: true, Message: "Service scheduled.", ServiceID: sv.ID})
}

// Decline records the member's refusal. No resource is touched; the record
// is retained for feedback.
func (s *Service) Decline(ctx context.Context, n model.ServiceNotification, reason string) model.BookingResult {
	if reason == "" {
		reason = n.Reason
	}
	sv := model.ScheduledService{
		ID:            uuid.NewString(),
		VehicleID:     n.VehicleID,
		Service:       n.Service,
		Status:        model.StatusDeclined,
		PredictedDate: n.PredictedDate,
		PriorityScore: n.PriorityScore,
		Reason:        reason,
		RespondedAt:   s.now(),
	}
	if err := s.services.Insert(ctx, sv); err != nil {
		return s.record(n, "decline", model.BookingResult{Message: fmt.Sprintf("decline failed: %v", err)})
	}
	return s.record(n, "decline", model.BookingResult{Success: true, Message: "Noted, we won't schedule this service.", ServiceID: sv.ID})
}

// Reschedule moves an existing booking to a new slot. The original resource
// is released first; the new claim uses the same atomic check and failure
// path as Accept. The record's slot fields are updated only after the new
// claim has succeeded.
func (s *Service) Reschedule(ctx context.Context, serviceID string, oldSlot, newSlot model.TimeSlot) model.BookingResult {
	sv, err := s.services.Get(ctx, serviceID)
	if err != nil {
		return model.BookingResult{Message: fmt.Sprintf("reschedule failed: %v", err)}
	}

	if oldSlot.ResourceID != "" {
		if err := s.resources.Release(ctx, oldSlot.ResourceID); err != nil {
			return model.BookingResult{Message: fmt.Sprintf("reschedule failed: %v", err)}
		}
	}
	if newSlot.ResourceID != "" {
		if err := s.resources.Claim(ctx, newSlot.ResourceID, sv.VehicleID, newSlot.Start, newSlot.End); err != nil {
			if errors.Is(err, ErrStaleResource) {
				return model.BookingResult{Message: "The new slot was just taken. Please pick another one.", ServiceID: serviceID}
			}
			return model.BookingResult{Message: fmt.Sprintf("reschedule failed: %v", err)}
		}
	}
	if err := s.services.UpdateSlot(ctx, serviceID, newSlot.ResourceID, newSlot.Start, newSlot.End); err != nil {
		return model.BookingResult{Message: fmt.Sprintf("reschedule failed: %v", err)}
	}
	s.log.Infof("rescheduled %s to %s", serviceID, newSlot.Start.Format(time.RFC3339))
	s.emit(metrics.BookingEvent{ServiceID: serviceID, VehicleID: sv.VehicleID, Service: sv.Service, Action: "reschedule", Success: true, Time: s.now()})
	return model.BookingResult{Success: true, Message: "Service rescheduled.", ServiceID: serviceID}
}

// Cancel releases the booking unless the scheduled start is inside the
// protected window, in which case it is refused with the remaining hours.
func (s *Service) Cancel(ctx context.Context, serviceID, resourceID string, scheduledStart time.Time) model.BookingResult {
	now := s.now()
	remaining := scheduledStart.Sub(now).Hours()
	if remaining < s.windowHours {
		werr := &CancellationWindowError{RemainingHours: remaining, WindowHours: s.windowHours}
		s.emit(metrics.BookingEvent{ServiceID: serviceID, Action: "cancel", Success: false, Reason: "window", Time: now})
		return model.BookingResult{Message: werr.Error(), ServiceID: serviceID}
	}
	if resourceID != "" {
		if err := s.resources.Release(ctx, resourceID); err != nil {
			return model.BookingResult{Message: fmt.Sprintf("cancel failed: %v", err)}
		}
	}
	if err := s.services.UpdateStatus(ctx, serviceID, model.StatusCancelled, now); err != nil {
		return model.BookingResult{Message: fmt.Sprintf("cancel failed: %v", err)}
	}
	s.emit(metrics.BookingEvent{ServiceID: serviceID, Action: "cancel", Success: true, Time: now})
	return model.BookingResult{Success: true, Message: "Service cancelled.", ServiceID: serviceID}
}

// Complete marks the booking done and frees its resource. It returns the
// completed record so the caller can stamp the vehicle's last-performed
// timestamp for the service type.
func (s *Service) Complete(ctx context.Context, serviceID string) (model.ScheduledService, model.BookingResult) {
	sv, err := s.services.Get(ctx, serviceID)
	if err != nil {
		return model.ScheduledService{}, model.BookingResult{Message: fmt.Sprintf("complete failed: %v", err)}
	}
	if sv.ResourceID != "" {
		if err := s.resources.Release(ctx, sv.ResourceID); err != nil {
			return sv, model.BookingResult{Message: fmt.Sprintf("complete failed: %v", err)}
		}
	}
	now := s.now()
	if err := s.services.UpdateStatus(ctx, serviceID, model.StatusCompleted, now); err != nil {
		return sv, model.BookingResult{Message: fmt.Sprintf("complete failed: %v", err)}
	}
	sv.Status = model.StatusCompleted
	s.emit(metrics.BookingEvent{ServiceID: serviceID, VehicleID: sv.VehicleID, Service: sv.Service, Action: "complete", Success: true, Time: now})
	return sv, model.BookingResult{Success: true, Message: "Service completed.", ServiceID: serviceID}
}

func (s *Service) record(n model.ServiceNotification, action string, res model.BookingResult) model.BookingResult {
	s.emit(metrics.BookingEvent{
		ServiceID: res.ServiceID,
		VehicleID: n.VehicleID,
		Service:   n.Service,
		Action:    action,
		Success:   res.Success,
		Reason:    res.Message,
		Time:      s.now(),
	})
	return res
}

func (s *Service) emit(ev metrics.BookingEvent) {
	if err := s.sink.RecordBooking([]metrics.BookingEvent{ev}); err != nil {
		s.log.Warnf("metrics sink: %v", err)
	}
}
