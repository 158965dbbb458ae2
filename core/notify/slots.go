package notify

import (
	"time"

	"github.com/fleetops-io/servicesched/core/engine"
	"github.com/fleetops-io/servicesched/core/model"
)

// slotHorizonDays bounds how far ahead candidate start times are projected.
const slotHorizonDays = 3

// maxSlots caps the number of offers: one recommended plus two alternatives.
const maxSlots = 3

// buildSlots assembles candidate start times in priority order, pairs them
// round-robin with available resources of the matching type and converts
// them to offers. The first slot is the recommendation.
func (g *Generator) buildSlots(need engine.PredictedServiceNeed, rec *engine.ChargeRecommendation, prefs model.MemberPreferences, resources []model.Resource, now time.Time) []model.TimeSlot {
	rtype := model.ResourceTypeFor(need.Service)
	var avail []model.Resource
	for _, r := range resources {
		if r.Type == rtype && r.Status == model.ResourceAvailable {
			avail = append(avail, r)
		}
	}

	candidates := g.candidateStarts(need, rec, prefs, now)
	duration := g.serviceDuration(need.Service, rec)
	buffer := time.Duration(model.ResourceBufferMinutes[rtype]) * time.Minute
	cheapest := g.Pricing.Cheapest()

	seen := make(map[int64]bool, len(candidates))
	slots := make([]model.TimeSlot, 0, maxSlots)
	for i, start := range candidates {
		if len(slots) == maxSlots {
			break
		}
		key := start.Truncate(time.Minute).Unix()
		if seen[key] {
			continue
		}
		seen[key] = true

		slot := model.TimeSlot{
			Start:   start,
			End:     start.Add(duration + buffer),
			OffPeak: cheapest.Contains(start),
		}
		if len(avail) > 0 {
			r := avail[i%len(avail)]
			slot.ResourceID = r.ID
			slot.ResourceNumber = r.Number
			slot.ResourceType = r.Type
		}
		slot.Cost, slot.SavingsVsPeak = g.slotCost(need.Service, rec, start)
		slots = append(slots, slot)
	}
	return slots
}

// candidateStarts lists start times in priority order: the charge plan's
// recommended start, the member's preferred windows, cheap rate-period
// starts, then a near-term fallback.
func (g *Generator) candidateStarts(need engine.PredictedServiceNeed, rec *engine.ChargeRecommendation, prefs model.MemberPreferences, now time.Time) []time.Time {
	var candidates []time.Time
	if rec != nil && need.Service == model.ServiceCharge && !rec.RecommendedStart.IsZero() {
		candidates = append(candidates, rec.RecommendedStart)
	}

	for d := 0; d < slotHorizonDays; d++ {
		day := now.AddDate(0, 0, d)
		if !prefs.PrefersDay(day.Weekday()) {
			continue
		}
		for _, w := range prefs.PreferredWindows {
			start := time.Date(day.Year(), day.Month(), day.Day(), w.StartHour, 0, 0, 0, now.Location())
			if start.After(now) {
				candidates = append(candidates, start)
			}
		}
	}

	candidates = append(candidates, g.Pricing.PeriodStarts(now, slotHorizonDays, "off_peak", "shoulder_am")...)

	if len(candidates) == 0 {
		for h := 1; h <= 3; h++ {
			candidates = append(candidates, now.Add(time.Duration(h)*time.Hour))
		}
	}
	return candidates
}

func (g *Generator) serviceDuration(s model.ServiceType, rec *engine.ChargeRecommendation) time.Duration {
	if s == model.ServiceCharge && rec != nil && rec.DurationMinutes > 0 {
		return time.Duration(rec.DurationMinutes) * time.Minute
	}
	for _, th := range g.Thresholds {
		if th.Service == s {
			return time.Duration(th.DurationMinutes) * time.Minute
		}
	}
	return time.Hour
}

// slotCost estimates the member-facing cost of the slot. Charge cost follows
// the rate period the slot starts in; other services carry a flat price.
func (g *Generator) slotCost(s model.ServiceType, rec *engine.ChargeRecommendation, start time.Time) (cost, savings float64) {
	if s != model.ServiceCharge || rec == nil {
		return model.EstimatedCost[s], 0
	}
	rate := g.Pricing.PeriodAt(start).RatePerKWh
	peak := g.Pricing.MostExpensive().RatePerKWh
	return rec.EnergyKWh * rate, rec.EnergyKWh * (peak - rate)
}
