// Package notify turns predicted service needs into member-facing
// recommendations: a headline, a justification, candidate time slots drawn
// against resource availability and the rate calendar, and a decision on
// whether to notify at all.
package notify

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fleetops-io/servicesched/core/engine"
	"github.com/fleetops-io/servicesched/core/logger"
	"github.com/fleetops-io/servicesched/core/model"
)

// Generator builds ServiceNotification objects. It is stateless apart from
// its reference data and is safe for concurrent use.
type Generator struct {
	Pricing    model.EnergyPricing
	Thresholds []model.ServiceThreshold
	Log        logger.Logger
}

// NewGenerator returns a Generator over the given reference data.
func NewGenerator(pricing model.EnergyPricing, thresholds []model.ServiceThreshold, log logger.Logger) *Generator {
	if log == nil {
		log = logger.Nop{}
	}
	return &Generator{Pricing: pricing, Thresholds: thresholds, Log: log}
}

// Generate builds the member-visible notification for one need. Bundle and
// charge recommendation are optional. Unmet data yields a sparser
// notification, never an error.
func (g *Generator) Generate(need engine.PredictedServiceNeed, bundle *engine.BundledServiceRecommendation, rec *engine.ChargeRecommendation, prefs model.MemberPreferences, resources []model.Resource, now time.Time) model.ServiceNotification {
	n := model.ServiceNotification{
		ID:            uuid.NewString(),
		VehicleID:     need.VehicleID,
		MemberID:      prefs.MemberID,
		Service:       need.Service,
		Urgency:       need.Urgency,
		PriorityScore: need.Composite,
		PredictedDate: need.PredictedDate,
		Severity:      model.SeverityFor(need.Urgency),
		CreatedAt:     now,
		Status:        model.NotificationPending,
	}
	n.Headline, n.Reason = g.text(need)
	n.DurationMinutes = int(g.serviceDuration(need.Service, rec).Minutes())

	if need.Service == model.ServiceCharge && rec != nil {
		if rec.ChargeNow {
			n.EstimatedCost = rec.CostNow
		} else {
			n.EstimatedCost = rec.CostOffPeak
		}
		if rec.Savings > 0.01 && !rec.ChargeNow {
			n.SavingsNote = fmt.Sprintf("Save $%.2f by charging during the %s window", rec.Savings, g.Pricing.Cheapest().Name)
		}
	} else {
		n.EstimatedCost = model.EstimatedCost[need.Service]
	}

	if bundle != nil && bundle.VehicleID == need.VehicleID {
		for _, s := range bundle.BundledServices {
			if s == need.Service {
				continue
			}
			n.BundledSuggestion = append(n.BundledSuggestion, model.BundleSuggestion{
				Service:           s,
				Reason:            fmt.Sprintf("%s is nearly due and can be done during the same visit", model.ServiceLabel[s]),
				ExtraDurationMins: g.thresholdDuration(s),
			})
		}
	}

	slots := g.buildSlots(need, rec, prefs, resources, now)
	if len(slots) > 0 {
		n.RecommendedSlot = slots[0]
		n.AlternativeSlots = slots[1:]
	} else {
		g.Log.Warnf("no candidate slots for vehicle %s service %s", need.VehicleID, need.Service)
	}
	return n
}

// text renders the template headline and justification from the need's
// computed fields.
func (g *Generator) text(need engine.PredictedServiceNeed) (headline, reason string) {
	label := model.ServiceLabel[need.Service]
	switch {
	case need.Overdue:
		headline = fmt.Sprintf("%s overdue", label)
	case need.Urgency >= 60:
		headline = fmt.Sprintf("%s due soon", label)
	default:
		headline = fmt.Sprintf("%s coming up", label)
	}
	reason = need.Reason
	if !need.Overdue && !need.PredictedDate.IsZero() {
		reason = fmt.Sprintf("%s; expected due %s", need.Reason, need.PredictedDate.Format("Jan 2"))
	}
	return headline, reason
}

func (g *Generator) thresholdDuration(s model.ServiceType) int {
	for _, th := range g.Thresholds {
		if th.Service == s {
			return th.DurationMinutes
		}
	}
	return 30
}
