package engine

import (
	"fmt"
	"time"

	"github.com/fleetops-io/servicesched/core/model"
)

// Charging targets and charger classes.
const (
	chargeTargetPct = 90

	fastChargerKW     = 50
	standardChargerKW = 11

	fastChargerSoCPct = 35 // below this a fast stall is recommended

	riskHighSoCPct   = 15
	riskMediumSoCPct = 25
)

// RiskLevel grades the danger of deferring a charge to a cheaper window.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ChargerClass selects the stall power class.
type ChargerClass string

const (
	ChargerFast     ChargerClass = "fast"
	ChargerStandard ChargerClass = "standard"
)

// ChargeRecommendation is the cost- and risk-aware charging plan for one
// vehicle.
type ChargeRecommendation struct {
	VehicleID        string       `json:"vehicle_id"`
	Charger          ChargerClass `json:"charger"`
	PowerKW          float64      `json:"power_kw"`
	EnergyKWh        float64      `json:"energy_kwh"`
	DurationMinutes  int          `json:"duration_minutes"`
	CostNow          float64      `json:"cost_now"`
	CostOffPeak      float64      `json:"cost_off_peak"`
	Savings          float64      `json:"savings"`
	Risk             RiskLevel    `json:"risk"`
	ChargeNow        bool         `json:"charge_now"`
	RecommendedStart time.Time    `json:"recommended_start"`
	Reason           string       `json:"reason"`
}

// GetChargeRecommendation plans a charge to the target state of charge,
// trading the current rate against the cheapest window. Safety overrides
// cost: if the projected state of charge at the next cheap window falls too
// low, the recommendation is to charge immediately.
func GetChargeRecommendation(v model.Vehicle, pricing model.EnergyPricing, now time.Time) ChargeRecommendation {
	rec := ChargeRecommendation{VehicleID: v.ID}

	pct := chargeTargetPct - v.SoC
	if pct < 0 {
		pct = 0
	}
	rec.EnergyKWh = pct / 100 * v.BatteryKWh

	rec.Charger = ChargerStandard
	rec.PowerKW = standardChargerKW
	if v.SoC < fastChargerSoCPct {
		rec.Charger = ChargerFast
		rec.PowerKW = fastChargerKW
	}
	if rec.EnergyKWh > 0 && rec.PowerKW > 0 {
		rec.DurationMinutes = int(rec.EnergyKWh / rec.PowerKW * 60)
	}

	current := pricing.PeriodAt(now)
	cheapest := pricing.Cheapest()
	rec.CostNow = rec.EnergyKWh * current.RatePerKWh
	rec.CostOffPeak = rec.EnergyKWh * cheapest.RatePerKWh
	rec.Savings = rec.CostNow - rec.CostOffPeak

	nextCheap := cheapest.NextStart(now)
	hoursUntil := nextCheap.Sub(now).Hours()
	projected := projectSoC(v, hoursUntil)

	switch {
	case projected < riskHighSoCPct:
		rec.Risk = RiskHigh
	case projected < riskMediumSoCPct:
		rec.Risk = RiskMedium
	default:
		rec.Risk = RiskLow
	}

	if rec.Risk == RiskHigh {
		rec.ChargeNow = true
		rec.RecommendedStart = now
		rec.Reason = fmt.Sprintf("projected charge of %.0f%% before the next %s window is too low to wait", projected, cheapest.Name)
		return rec
	}
	rec.RecommendedStart = nextCheap
	rec.Reason = fmt.Sprintf("deferring to the %s window saves $%.2f", cheapest.Name, rec.Savings)
	if rec.Risk == RiskMedium {
		rec.Reason = fmt.Sprintf("charge soon: projected %.0f%% by the next %s window", projected, cheapest.Name)
	}
	return rec
}

// projectSoC extrapolates state of charge over the next hours using the
// vehicle's average daily distance as the burn rate. This assumes typical
// usage; a vehicle about to start a long trip will be understated.
func projectSoC(v model.Vehicle, hours float64) float64 {
	if hours <= 0 {
		return v.SoC
	}
	if v.RangeMiles <= 0 || v.SoC <= 0 {
		return v.SoC
	}
	miles := v.AvgDailyMiles * hours / 24
	pctPerMile := v.SoC / v.RangeMiles
	projected := v.SoC - miles*pctPerMile
	if projected < 0 {
		projected = 0
	}
	return projected
}
