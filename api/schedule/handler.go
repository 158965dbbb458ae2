// Package schedule exposes the scheduling engine's read surface over HTTP
// for the dashboard: fleet health, the ranked queue, bundles and charge
// recommendations.
package schedule

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fleetops-io/servicesched/core/engine"
	"github.com/fleetops-io/servicesched/core/fleet"
	"github.com/fleetops-io/servicesched/core/model"
)

// NewHealthHandler returns an HTTP handler exposing per-vehicle health
// snapshots and the fleet summary via GET.
func NewHealthHandler(src fleet.Source, thresholds []model.ServiceThreshold) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		vehicles, err := src.Vehicles(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		now := time.Now()
		snaps := make([]engine.HealthSnapshot, 0, len(vehicles))
		for _, v := range vehicles {
			if !v.Schedulable() {
				continue
			}
			snaps = append(snaps, engine.ComputeHealthSnapshot(v, thresholds, now))
		}
		WriteJSON(w, struct {
			Summary   fleet.Summary           `json:"summary"`
			Snapshots []engine.HealthSnapshot `json:"snapshots"`
		}{Summary: fleet.Summarize(snaps), Snapshots: snaps})
	})
}

// NewQueueHandler returns the fleet-wide ranked queue via GET.
func NewQueueHandler(src fleet.Source, thresholds []model.ServiceThreshold, pricing model.EnergyPricing) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		vehicles, err := src.Vehicles(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		queue := engine.GeneratePriorityQueue(vehicles, thresholds, pricing, time.Now())
		WriteJSON(w, queue)
	})
}

// NewBundlesHandler returns bundling recommendations via GET.
func NewBundlesHandler(src fleet.Source, thresholds []model.ServiceThreshold, pricing model.EnergyPricing) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		vehicles, err := src.Vehicles(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		now := time.Now()
		queue := engine.GeneratePriorityQueue(vehicles, thresholds, pricing, now)
		WriteJSON(w, engine.GenerateBundles(queue, thresholds))
	})
}

// NewChargeHandler returns the charge recommendation for one vehicle via
// GET ?vehicle_id=.
func NewChargeHandler(src fleet.Source, pricing model.EnergyPricing) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id := r.URL.Query().Get("vehicle_id")
		if id == "" {
			http.Error(w, "vehicle_id is required", http.StatusBadRequest)
			return
		}
		vehicles, err := src.Vehicles(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		for _, v := range vehicles {
			if v.ID == id {
				WriteJSON(w, engine.GetChargeRecommendation(v, pricing, time.Now()))
				return
			}
		}
		http.Error(w, "unknown vehicle", http.StatusNotFound)
	})
}

// WriteJSON encodes v as the JSON response body.
func WriteJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
