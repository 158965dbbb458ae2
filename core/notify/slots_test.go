package notify

import (
	"testing"
	"time"

	"github.com/fleetops-io/servicesched/core/engine"
	"github.com/fleetops-io/servicesched/core/logger"
	"github.com/fleetops-io/servicesched/core/model"
)

func testGenerator() *Generator {
	return NewGenerator(model.DefaultPricing(), model.DefaultThresholds(), logger.Nop{})
}

func chargeStalls(n int) []model.Resource {
	out := make([]model.Resource, n)
	for i := range out {
		out[i] = model.Resource{
			ID:     string(rune('a' + i)),
			Number: i + 1,
			Type:   model.ResourceChargeStall,
			Status: model.ResourceAvailable,
		}
	}
	return out
}

func TestBuildSlots_Cap(t *testing.T) {
	g := testGenerator()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	need := engine.PredictedServiceNeed{VehicleID: "v1", Service: model.ServiceCharge, Urgency: 70}

	slots := g.buildSlots(need, nil, model.DefaultPreferences("m1"), chargeStalls(4), now)
	if len(slots) == 0 || len(slots) > 3 {
		t.Fatalf("expected between 1 and 3 slots, got %d", len(slots))
	}
	for _, s := range slots {
		if !s.End.After(s.Start) {
			t.Fatalf("slot end must follow start: %+v", s)
		}
		if s.ResourceID == "" {
			t.Fatalf("slot missing a resource assignment: %+v", s)
		}
		if s.ResourceType != model.ResourceChargeStall {
			t.Fatalf("charge needs a charge stall, got %s", s.ResourceType)
		}
	}
}

func TestBuildSlots_RoundRobin(t *testing.T) {
	g := testGenerator()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	need := engine.PredictedServiceNeed{VehicleID: "v1", Service: model.ServiceCharge, Urgency: 70}

	slots := g.buildSlots(need, nil, model.DefaultPreferences("m1"), chargeStalls(2), now)
	if len(slots) < 2 {
		t.Fatalf("expected at least 2 slots, got %d", len(slots))
	}
	if slots[0].ResourceID == slots[1].ResourceID {
		t.Fatalf("consecutive slots should rotate stalls, both got %s", slots[0].ResourceID)
	}
}

func TestBuildSlots_ChargePlanStartFirst(t *testing.T) {
	g := testGenerator()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	need := engine.PredictedServiceNeed{VehicleID: "v1", Service: model.ServiceCharge, Urgency: 70}
	rec := &engine.ChargeRecommendation{
		VehicleID:        "v1",
		EnergyKWh:        30,
		DurationMinutes:  60,
		RecommendedStart: time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC),
	}

	slots := g.buildSlots(need, rec, model.DefaultPreferences("m1"), chargeStalls(2), now)
	if len(slots) == 0 {
		t.Fatal("expected slots")
	}
	if !slots[0].Start.Equal(rec.RecommendedStart) {
		t.Fatalf("the charge plan start should lead, got %s", slots[0].Start)
	}
	if !slots[0].OffPeak {
		t.Fatal("a 23:00 start is off-peak")
	}
}

func TestBuildSlots_PreferredWindows(t *testing.T) {
	g := testGenerator()
	// A Tuesday.
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	prefs := model.MemberPreferences{
		MemberID:         "m1",
		PreferredDays:    []time.Weekday{time.Wednesday},
		PreferredWindows: []model.TimeWindow{{StartHour: 14, EndHour: 17}},
	}
	need := engine.PredictedServiceNeed{VehicleID: "v1", Service: model.ServiceDetailClean, Urgency: 50}
	resources := []model.Resource{
		{ID: "c1", Number: 1, Type: model.ResourceCleanStall, Status: model.ResourceAvailable},
	}

	slots := g.buildSlots(need, nil, prefs, resources, now)
	if len(slots) == 0 {
		t.Fatal("expected slots")
	}
	first := slots[0]
	if first.Start.Weekday() != time.Wednesday || first.Start.Hour() != 14 {
		t.Fatalf("preferred window should lead, got %s", first.Start)
	}
}

func TestBuildSlots_NoMatchingResources(t *testing.T) {
	g := testGenerator()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	need := engine.PredictedServiceNeed{VehicleID: "v1", Service: model.ServiceCharge, Urgency: 70}
	resources := []model.Resource{
		{ID: "b1", Type: model.ResourceMaintenanceBay, Status: model.ResourceAvailable},
		{ID: "c1", Type: model.ResourceChargeStall, Status: model.ResourceReserved},
	}

	slots := g.buildSlots(need, nil, model.DefaultPreferences("m1"), resources, now)
	for _, s := range slots {
		if s.ResourceID != "" {
			t.Fatalf("no available charge stall exists, yet slot claims %s", s.ResourceID)
		}
	}
}

func TestGenerate_Notification(t *testing.T) {
	g := testGenerator()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	need := engine.PredictedServiceNeed{
		VehicleID:     "v1",
		Service:       model.ServiceCharge,
		Urgency:       95,
		Composite:     88,
		Overdue:       true,
		Reason:        "battery at 20%, below the 30% charge threshold",
		CurrentValue:  20,
		PredictedDate: now,
	}
	rec := &engine.ChargeRecommendation{
		VehicleID: "v1", EnergyKWh: 42, DurationMinutes: 50,
		CostNow: 10.08, CostOffPeak: 3.36, Savings: 6.72,
		ChargeNow: true, RecommendedStart: now,
	}
	bundle := &engine.BundledServiceRecommendation{
		VehicleID:       "v1",
		PrimaryService:  model.ServiceCharge,
		BundledServices: []model.ServiceType{model.ServiceTireRotation},
	}

	n := g.Generate(need, bundle, rec, model.DefaultPreferences("m1"), chargeStalls(2), now)
	if n.ID == "" {
		t.Fatal("notification needs an id")
	}
	if n.Severity != model.SeverityCritical {
		t.Fatalf("urgency 95 is critical, got %s", n.Severity)
	}
	if n.Headline != "Charging overdue" {
		t.Fatalf("unexpected headline %q", n.Headline)
	}
	if n.EstimatedCost != rec.CostNow {
		t.Fatalf("charge-now cost should be the immediate cost, got %.2f", n.EstimatedCost)
	}
	if n.SavingsNote != "" {
		t.Fatal("charge-now allows no savings note")
	}
	if len(n.BundledSuggestion) != 1 || n.BundledSuggestion[0].Service != model.ServiceTireRotation {
		t.Fatalf("expected the tire rotation suggestion, got %v", n.BundledSuggestion)
	}
	if n.RecommendedSlot.Start.IsZero() {
		t.Fatal("expected a recommended slot")
	}
	if n.Status != model.NotificationPending {
		t.Fatalf("new notifications are pending, got %s", n.Status)
	}
	if n.PriorityScore != need.Composite {
		t.Fatalf("priority score should carry the composite, got %.1f", n.PriorityScore)
	}
}

func TestGenerate_SavingsNoteWhenDeferring(t *testing.T) {
	g := testGenerator()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	need := engine.PredictedServiceNeed{
		VehicleID: "v1", Service: model.ServiceCharge, Urgency: 50,
		CurrentValue: 55, PredictedDate: now.Add(30 * time.Hour),
	}
	rec := &engine.ChargeRecommendation{
		VehicleID: "v1", EnergyKWh: 21, DurationMinutes: 115,
		CostNow: 5.04, CostOffPeak: 1.68, Savings: 3.36,
		RecommendedStart: time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC),
	}

	n := g.Generate(need, nil, rec, model.DefaultPreferences("m1"), chargeStalls(1), now)
	if n.SavingsNote == "" {
		t.Fatal("deferrable charge with real savings should carry a note")
	}
	if n.EstimatedCost != rec.CostOffPeak {
		t.Fatalf("deferred charge should quote the off-peak cost, got %.2f", n.EstimatedCost)
	}
}
