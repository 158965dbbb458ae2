package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/fleetops-io/servicesched/core/model"
)

// chargeSafetyMarginPct widens the charge threshold so that driving variance
// does not produce a last-minute miss: urgency reaches its ceiling at
// threshold+margin rather than at the raw threshold.
const chargeSafetyMarginPct = 20

// curveExponent shapes urgency growth: scores stay low until roughly 60% of
// the interval has elapsed, then accelerate toward the threshold.
const curveExponent = 1.5

// ServiceUrgency is a single service's computed urgency for one vehicle.
type ServiceUrgency struct {
	Service        model.ServiceType `json:"service"`
	Urgency        float64           `json:"urgency"` // 0-100
	Overdue        bool              `json:"overdue"`
	Reason         string            `json:"reason"`
	Ratio          float64           `json:"ratio"` // raw current/threshold ratio, unclamped
	CurrentValue   float64           `json:"current_value"`
	ThresholdValue float64           `json:"threshold_value"`
}

// HealthSnapshot is the per-vehicle derived view recomputed on every pass.
// It is never persisted as authoritative state.
type HealthSnapshot struct {
	VehicleID      string           `json:"vehicle_id"`
	ComputedAt     time.Time        `json:"computed_at"`
	Urgencies      []ServiceUrgency `json:"urgencies"`
	OverallUrgency float64          `json:"overall_urgency"`
}

// urgencyScore passes the raw ratio through the power curve and scales it
// to 0-100. Ratios past 1 are capped: overdue is flagged separately.
func urgencyScore(ratio float64) float64 {
	if ratio <= 0 {
		return 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return math.Pow(ratio, curveExponent) * 100
}

// ComputeHealthSnapshot derives the vehicle's health view against the
// threshold table. A service with no last-performed history yields no
// urgency entry: absence of history is not evidence of need.
func ComputeHealthSnapshot(v model.Vehicle, thresholds []model.ServiceThreshold, now time.Time) HealthSnapshot {
	snap := HealthSnapshot{VehicleID: v.ID, ComputedAt: now}
	for _, th := range thresholds {
		var entry ServiceUrgency
		var ok bool
		if th.Service == model.ServiceCharge {
			entry, ok = chargeUrgency(v, th)
		} else {
			entry, ok = usageUrgency(v, th, now)
		}
		if !ok {
			continue
		}
		snap.Urgencies = append(snap.Urgencies, entry)
		if entry.Urgency > snap.OverallUrgency {
			snap.OverallUrgency = entry.Urgency
		}
	}
	return snap
}

// chargeUrgency computes urgency on an inverted scale: a full battery scores
// zero and urgency rises as charge falls toward threshold+margin.
func chargeUrgency(v model.Vehicle, th model.ServiceThreshold) (ServiceUrgency, bool) {
	floor := th.Limit + chargeSafetyMarginPct
	span := 100 - floor
	if span <= 0 {
		return ServiceUrgency{}, false
	}
	ratio := (100 - v.SoC) / span
	overdue := v.SoC <= th.Limit
	reason := fmt.Sprintf("battery at %.0f%%, charge due at %.0f%%", v.SoC, th.Limit)
	if overdue {
		reason = fmt.Sprintf("battery at %.0f%%, below the %.0f%% charge threshold", v.SoC, th.Limit)
	}
	return ServiceUrgency{
		Service:        th.Service,
		Urgency:        urgencyScore(ratio),
		Overdue:        overdue,
		Reason:         reason,
		Ratio:          ratio,
		CurrentValue:   v.SoC,
		ThresholdValue: th.Limit,
	}, true
}

// usageUrgency handles day- and mile-based thresholds. Miles since service
// are estimated from elapsed days and the vehicle's average daily distance.
func usageUrgency(v model.Vehicle, th model.ServiceThreshold, now time.Time) (ServiceUrgency, bool) {
	last, ok := v.LastServiceAt(th.Service)
	if !ok {
		return ServiceUrgency{}, false
	}
	days := now.Sub(last).Hours() / 24
	if days < 0 {
		days = 0
	}

	var current float64
	var unitLabel string
	switch th.Unit {
	case model.UnitDays:
		current = days
		unitLabel = "days"
	case model.UnitMiles:
		current = days * v.AvgDailyMiles
		unitLabel = "miles"
	default:
		return ServiceUrgency{}, false
	}
	if th.Limit <= 0 {
		return ServiceUrgency{}, false
	}
	ratio := current / th.Limit
	overdue := ratio >= 1
	reason := fmt.Sprintf("%.0f of %.0f %s since last %s", current, th.Limit, unitLabel, model.ServiceLabel[th.Service])
	return ServiceUrgency{
		Service:        th.Service,
		Urgency:        urgencyScore(ratio),
		Overdue:        overdue,
		Reason:         reason,
		Ratio:          ratio,
		CurrentValue:   current,
		ThresholdValue: th.Limit,
	}, true
}
