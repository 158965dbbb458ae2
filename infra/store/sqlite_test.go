package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fleetops-io/servicesched/core/booking"
	"github.com/fleetops-io/servicesched/core/model"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sched.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteResources_PutGetList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	res := s.Resources()

	stall := model.Resource{
		ID: "cs-1", Number: 1, Type: model.ResourceChargeStall,
		Depot: "north", Status: model.ResourceAvailable,
	}
	bay := model.Resource{
		ID: "mb-1", Number: 1, Type: model.ResourceMaintenanceBay,
		Depot: "north", Status: model.ResourceAvailable,
	}
	if err := res.Put(ctx, stall); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := res.Put(ctx, bay); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := res.Get(ctx, "cs-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Type != model.ResourceChargeStall || got.Depot != "north" {
		t.Fatalf("unexpected resource: %+v", got)
	}
	if !got.SessionStart.IsZero() {
		t.Fatalf("unset session time should scan as zero, got %s", got.SessionStart)
	}

	stalls, err := res.List(ctx, model.ResourceChargeStall)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stalls) != 1 || stalls[0].ID != "cs-1" {
		t.Fatalf("type filter wrong: %v", stalls)
	}
	all, err := res.List(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(all))
	}

	if _, err := res.Get(ctx, "missing"); !errors.Is(err, booking.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteResources_Claim(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	res := s.Resources()

	if err := res.Put(ctx, model.Resource{ID: "cs-1", Type: model.ResourceChargeStall, Status: model.ResourceAvailable}); err != nil {
		t.Fatalf("put: %v", err)
	}

	start := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	if err := res.Claim(ctx, "cs-1", "v1", start, end); err != nil {
		t.Fatalf("claim: %v", err)
	}

	got, _ := res.Get(ctx, "cs-1")
	if got.Status != model.ResourceReserved || got.VehicleID != "v1" {
		t.Fatalf("claim did not reserve: %+v", got)
	}
	if !got.SessionStart.Equal(start) || !got.SessionEnd.Equal(end) {
		t.Fatalf("session times lost: %+v", got)
	}

	if err := res.Claim(ctx, "cs-1", "v2", start, end); !errors.Is(err, booking.ErrStaleResource) {
		t.Fatalf("second claim should be stale, got %v", err)
	}
	got, _ = res.Get(ctx, "cs-1")
	if got.VehicleID != "v1" {
		t.Fatalf("losing claim overwrote the holder: %+v", got)
	}

	if err := res.Claim(ctx, "missing", "v1", start, end); !errors.Is(err, booking.ErrNotFound) {
		t.Fatalf("claim on unknown id should be ErrNotFound, got %v", err)
	}

	if err := res.Release(ctx, "cs-1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	got, _ = res.Get(ctx, "cs-1")
	if got.Status != model.ResourceAvailable || got.VehicleID != "" {
		t.Fatalf("release did not clear: %+v", got)
	}
	if err := res.Claim(ctx, "cs-1", "v2", start, end); err != nil {
		t.Fatalf("claim after release: %v", err)
	}
}

func TestSQLiteServices_Lifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	svcs := s.Services()

	start := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	record := model.ScheduledService{
		ID:             "svc-1",
		VehicleID:      "v1",
		ResourceID:     "cs-1",
		Service:        model.ServiceCharge,
		Status:         model.StatusScheduled,
		PredictedDate:  start.AddDate(0, 0, -1),
		ScheduledStart: start,
		ScheduledEnd:   start.Add(time.Hour),
		PriorityScore:  87.5,
		Reason:         "battery at 22%",
		RespondedAt:    start.Add(-20 * time.Hour),
	}
	if err := svcs.Insert(ctx, record); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := svcs.Get(ctx, "svc-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Service != model.ServiceCharge || got.PriorityScore != 87.5 {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	if !got.ScheduledStart.Equal(start) {
		t.Fatalf("start time drifted: %s", got.ScheduledStart)
	}

	newStart := start.Add(24 * time.Hour)
	if err := svcs.UpdateSlot(ctx, "svc-1", "cs-2", newStart, newStart.Add(time.Hour)); err != nil {
		t.Fatalf("update slot: %v", err)
	}
	if err := svcs.UpdateStatus(ctx, "svc-1", model.StatusCompleted, newStart.Add(time.Hour)); err != nil {
		t.Fatalf("update status: %v", err)
	}

	got, _ = svcs.Get(ctx, "svc-1")
	if got.ResourceID != "cs-2" || got.Status != model.StatusCompleted {
		t.Fatalf("updates lost: %+v", got)
	}

	list, err := svcs.ListByVehicle(ctx, "v1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one record, got %d", len(list))
	}

	if err := svcs.UpdateStatus(ctx, "missing", model.StatusCancelled, time.Now()); !errors.Is(err, booking.ErrNotFound) {
		t.Fatalf("update of unknown id should be ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_BacksBookingService(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Resources().Put(ctx, model.Resource{ID: "cs-1", Type: model.ResourceChargeStall, Status: model.ResourceAvailable}); err != nil {
		t.Fatalf("put: %v", err)
	}
	svc := booking.New(s.Resources(), s.Services(), nil, nil, 0)

	start := time.Now().Add(6 * time.Hour)
	n := model.ServiceNotification{ID: "n1", VehicleID: "v1", Service: model.ServiceCharge}
	slot := model.TimeSlot{Start: start, End: start.Add(time.Hour), ResourceID: "cs-1"}

	res := svc.Accept(ctx, n, slot)
	if !res.Success {
		t.Fatalf("accept over sqlite failed: %s", res.Message)
	}
	n2 := model.ServiceNotification{ID: "n2", VehicleID: "v2", Service: model.ServiceCharge}
	if r := svc.Accept(ctx, n2, slot); r.Success {
		t.Fatal("double booking over sqlite must fail")
	}
}
