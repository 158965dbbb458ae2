package model

import "time"

// RatePeriod is a named time-of-day energy rate window. EndHour is exclusive.
// A period may wrap past midnight (StartHour > EndHour).
type RatePeriod struct {
	Name       string  `json:"name"`
	StartHour  int     `json:"start_hour"`
	EndHour    int     `json:"end_hour"`
	RatePerKWh float64 `json:"rate_per_kwh"`
}

// Contains reports whether the hour of t falls inside the period.
func (p RatePeriod) Contains(t time.Time) bool {
	h := t.Hour()
	if p.StartHour <= p.EndHour {
		return h >= p.StartHour && h < p.EndHour
	}
	return h >= p.StartHour || h < p.EndHour
}

// EnergyPricing is the time-of-day rate calendar.
type EnergyPricing struct {
	Periods []RatePeriod `json:"periods"`
}

// DefaultPricing returns the reference rate calendar.
func DefaultPricing() EnergyPricing {
	return EnergyPricing{Periods: []RatePeriod{
		{Name: "off_peak", StartHour: 23, EndHour: 6, RatePerKWh: 0.08},
		{Name: "shoulder_am", StartHour: 6, EndHour: 10, RatePerKWh: 0.14},
		{Name: "peak", StartHour: 10, EndHour: 20, RatePerKWh: 0.24},
		{Name: "shoulder_pm", StartHour: 20, EndHour: 23, RatePerKWh: 0.14},
	}}
}

// PeriodAt returns the rate period covering t. When no period matches, the
// most expensive period is returned so cost estimates stay conservative.
func (e EnergyPricing) PeriodAt(t time.Time) RatePeriod {
	for _, p := range e.Periods {
		if p.Contains(t) {
			return p
		}
	}
	return e.MostExpensive()
}

// Cheapest returns the period with the lowest rate.
func (e EnergyPricing) Cheapest() RatePeriod {
	if len(e.Periods) == 0 {
		return RatePeriod{}
	}
	best := e.Periods[0]
	for _, p := range e.Periods[1:] {
		if p.RatePerKWh < best.RatePerKWh {
			best = p
		}
	}
	return best
}

// MostExpensive returns the period with the highest rate.
func (e EnergyPricing) MostExpensive() RatePeriod {
	if len(e.Periods) == 0 {
		return RatePeriod{}
	}
	worst := e.Periods[0]
	for _, p := range e.Periods[1:] {
		if p.RatePerKWh > worst.RatePerKWh {
			worst = p
		}
	}
	return worst
}

// NextStart returns the next instant at or after t when the period begins.
// If t is already inside the period, t is returned unchanged.
func (p RatePeriod) NextStart(t time.Time) time.Time {
	if p.Contains(t) {
		return t
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), p.StartHour, 0, 0, 0, t.Location())
	if !start.After(t) {
		start = start.Add(24 * time.Hour)
	}
	return start
}

// PeriodStarts projects the start times of the named periods over the next
// days full days beginning at t.
func (e EnergyPricing) PeriodStarts(t time.Time, days int, names ...string) []time.Time {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	var starts []time.Time
	for d := 0; d < days; d++ {
		day := t.AddDate(0, 0, d)
		for _, p := range e.Periods {
			if len(wanted) > 0 && !wanted[p.Name] {
				continue
			}
			s := time.Date(day.Year(), day.Month(), day.Day(), p.StartHour, 0, 0, 0, t.Location())
			if s.After(t) {
				starts = append(starts, s)
			}
		}
	}
	return starts
}
