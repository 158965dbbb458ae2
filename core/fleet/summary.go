package fleet

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/fleetops-io/servicesched/core/engine"
)

// Summary aggregates fleet health for the dashboard feed.
type Summary struct {
	Vehicles      int     `json:"vehicles"`
	MeanUrgency   float64 `json:"mean_urgency"`
	MedianUrgency float64 `json:"median_urgency"`
	P90Urgency    float64 `json:"p90_urgency"`
	Overdue       int     `json:"overdue"`
	Critical      int     `json:"critical"` // overall urgency >= 90
}

// Summarize computes fleet-level statistics over per-vehicle snapshots.
func Summarize(snaps []engine.HealthSnapshot) Summary {
	s := Summary{Vehicles: len(snaps)}
	if len(snaps) == 0 {
		return s
	}
	scores := make([]float64, 0, len(snaps))
	for _, snap := range snaps {
		scores = append(scores, snap.OverallUrgency)
		if snap.OverallUrgency >= 90 {
			s.Critical++
		}
		for _, u := range snap.Urgencies {
			if u.Overdue {
				s.Overdue++
			}
		}
	}
	sort.Float64s(scores)
	s.MeanUrgency = stat.Mean(scores, nil)
	s.MedianUrgency = stat.Quantile(0.5, stat.Empirical, scores, nil)
	s.P90Urgency = stat.Quantile(0.9, stat.Empirical, scores, nil)
	return s
}
