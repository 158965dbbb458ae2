package schedule

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fleetops-io/servicesched/core/engine"
	"github.com/fleetops-io/servicesched/core/fleet"
	"github.com/fleetops-io/servicesched/core/model"
)

type stubSource struct {
	vehicles []model.Vehicle
}

func (s *stubSource) Vehicles(context.Context) ([]model.Vehicle, error) { return s.vehicles, nil }
func (s *stubSource) Preferences(_ context.Context, memberID string) (model.MemberPreferences, error) {
	return model.DefaultPreferences(memberID), nil
}

func testSource() fleet.Source {
	now := time.Now()
	return &stubSource{vehicles: []model.Vehicle{
		{ID: "v1", MemberID: "m1", SoC: 20, RangeMiles: 45, BatteryKWh: 60, AvgDailyMiles: 40, Status: model.VehicleActive},
		{ID: "v2", MemberID: "m2", SoC: 85, RangeMiles: 200, BatteryKWh: 75, AvgDailyMiles: 25, Status: model.VehicleActive,
			LastService: map[model.ServiceType]time.Time{
				model.ServiceDetailClean: now.AddDate(0, 0, -13),
			}},
		{ID: "v3", MemberID: "m3", SoC: 50, Status: model.VehicleRetired},
	}}
}

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler(testSource(), model.DefaultThresholds())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/fleet/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var body struct {
		Summary   fleet.Summary           `json:"summary"`
		Snapshots []engine.HealthSnapshot `json:"snapshots"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Summary.Vehicles != 2 {
		t.Fatalf("retired vehicle counted: %+v", body.Summary)
	}
	if len(body.Snapshots) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(body.Snapshots))
	}
}

func TestHealthHandler_MethodNotAllowed(t *testing.T) {
	h := NewHealthHandler(testSource(), model.DefaultThresholds())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/fleet/health", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", rr.Code)
	}
}

func TestQueueHandler(t *testing.T) {
	h := NewQueueHandler(testSource(), model.DefaultThresholds(), model.DefaultPricing())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/schedule/queue", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var queue []engine.PredictedServiceNeed
	if err := json.Unmarshal(rr.Body.Bytes(), &queue); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(queue) == 0 {
		t.Fatal("expected a non-empty queue")
	}
	if queue[0].VehicleID != "v1" || queue[0].Service != model.ServiceCharge {
		t.Fatalf("low battery should rank first, got %+v", queue[0])
	}
}

func TestChargeHandler(t *testing.T) {
	h := NewChargeHandler(testSource(), model.DefaultPricing())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/schedule/charge?vehicle_id=v1", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var rec engine.ChargeRecommendation
	if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.VehicleID != "v1" || rec.Charger != engine.ChargerFast {
		t.Fatalf("unexpected recommendation: %+v", rec)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/schedule/charge", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("missing vehicle_id should be 400, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/schedule/charge?vehicle_id=nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown vehicle should be 404, got %d", rr.Code)
	}
}

func TestBundlesHandler(t *testing.T) {
	h := NewBundlesHandler(testSource(), model.DefaultThresholds(), model.DefaultPricing())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/schedule/bundles", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var bundles []engine.BundledServiceRecommendation
	if err := json.Unmarshal(rr.Body.Bytes(), &bundles); err != nil {
		t.Fatalf("decode: %v", err)
	}
}
