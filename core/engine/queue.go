package engine

import (
	"sort"
	"time"

	"github.com/fleetops-io/servicesched/core/model"
)

// noiseFloor is the minimum urgency worth acting on. Entries below it are
// dropped from the queue.
const noiseFloor = 15

// Composite score weights. The blend ranks needs fleet-wide when resources
// are scarce.
const (
	weightUrgency         = 0.4
	weightStaticPriority  = 0.3
	weightTimeSensitivity = 0.2
	weightEnergyTiming    = 0.1
	offPeakBonus          = 100
)

// PredictedServiceNeed is one urgency entry promoted into the global ranking.
type PredictedServiceNeed struct {
	VehicleID      string            `json:"vehicle_id"`
	Service        model.ServiceType `json:"service"`
	Urgency        float64           `json:"urgency"`
	Composite      float64           `json:"composite"`
	PredictedDate  time.Time         `json:"predicted_date"`
	Overdue        bool              `json:"overdue"`
	Reason         string            `json:"reason"`
	Ratio          float64           `json:"ratio"`
	CurrentValue   float64           `json:"current_value"`
	ThresholdValue float64           `json:"threshold_value"`
}

// GeneratePriorityQueue ranks every actionable need across the fleet,
// sorted descending by composite score. The ordering is deterministic:
// ties break on urgency, then vehicle id, then service.
func GeneratePriorityQueue(vehicles []model.Vehicle, thresholds []model.ServiceThreshold, pricing model.EnergyPricing, now time.Time) []PredictedServiceNeed {
	cheapest := pricing.Cheapest()
	inCheapest := cheapest.Contains(now)

	byService := make(map[model.ServiceType]model.ServiceThreshold, len(thresholds))
	for _, th := range thresholds {
		byService[th.Service] = th
	}

	var queue []PredictedServiceNeed
	for _, v := range vehicles {
		if !v.Schedulable() {
			continue
		}
		snap := ComputeHealthSnapshot(v, thresholds, now)
		for _, u := range snap.Urgencies {
			if u.Urgency < noiseFloor {
				continue
			}
			th := byService[u.Service]
			score := weightUrgency*u.Urgency +
				weightStaticPriority*normalizeWeight(th.PriorityWeight) +
				weightTimeSensitivity*model.TimeSensitivity[u.Service]
			if u.Service == model.ServiceCharge && inCheapest {
				score += weightEnergyTiming * offPeakBonus
			}
			queue = append(queue, PredictedServiceNeed{
				VehicleID:      v.ID,
				Service:        u.Service,
				Urgency:        u.Urgency,
				Composite:      score,
				PredictedDate:  predictNeedDate(v, u, now),
				Overdue:        u.Overdue,
				Reason:         u.Reason,
				Ratio:          u.Ratio,
				CurrentValue:   u.CurrentValue,
				ThresholdValue: u.ThresholdValue,
			})
		}
	}

	sort.SliceStable(queue, func(i, j int) bool {
		if queue[i].Composite != queue[j].Composite {
			return queue[i].Composite > queue[j].Composite
		}
		if queue[i].Urgency != queue[j].Urgency {
			return queue[i].Urgency > queue[j].Urgency
		}
		if queue[i].VehicleID != queue[j].VehicleID {
			return queue[i].VehicleID < queue[j].VehicleID
		}
		return queue[i].Service < queue[j].Service
	})
	return queue
}

// normalizeWeight scales the threshold table's 1-10 priority weight to 0-100.
func normalizeWeight(w float64) float64 {
	if w < 0 {
		return 0
	}
	if w > 10 {
		w = 10
	}
	return w * 10
}

// predictNeedDate estimates when the need becomes critical. Overdue items
// are due now. Charge needs divide the distance to threshold by average
// daily distance; usage needs divide the remaining interval by the
// elapsed rate.
func predictNeedDate(v model.Vehicle, u ServiceUrgency, now time.Time) time.Time {
	if u.Overdue {
		return now
	}
	var days float64
	switch u.Service {
	case model.ServiceCharge:
		if v.AvgDailyMiles <= 0 || v.SoC <= 0 {
			return now.AddDate(0, 0, 30)
		}
		milesToThreshold := v.RangeMiles * (v.SoC - u.ThresholdValue) / v.SoC
		if milesToThreshold < 0 {
			milesToThreshold = 0
		}
		days = milesToThreshold / v.AvgDailyMiles
	default:
		remaining := u.ThresholdValue - u.CurrentValue
		if remaining < 0 {
			remaining = 0
		}
		switch {
		case u.CurrentValue <= 0:
			// No elapsed usage yet: fall back to one day per remaining unit.
			days = remaining
		default:
			// CurrentValue grows linearly with elapsed days for both units,
			// so remaining/current scales the days already elapsed.
			elapsedDays := now.Sub(mustLast(v, u.Service, now)).Hours() / 24
			if elapsedDays <= 0 {
				days = remaining
			} else {
				days = remaining / (u.CurrentValue / elapsedDays)
			}
		}
	}
	return now.Add(time.Duration(days * 24 * float64(time.Hour)))
}

func mustLast(v model.Vehicle, s model.ServiceType, now time.Time) time.Time {
	if t, ok := v.LastServiceAt(s); ok {
		return t
	}
	return now
}
