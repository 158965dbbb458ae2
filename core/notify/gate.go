package notify

import (
	"time"

	"github.com/fleetops-io/servicesched/core/engine"
	"github.com/fleetops-io/servicesched/core/model"
)

// Quiet hours: no routine notifications between 22:00 and 07:00 local time.
const (
	quietHourStart = 22
	quietHourEnd   = 7
)

// forceUrgency bypasses every other gate.
const forceUrgency = 90

// forceChargeSoCPct bypasses the gates for charge needs at or below this
// state of charge.
const forceChargeSoCPct = 25

// ShouldNotifyNow decides whether a notification for the need should be
// built at all. Critical needs bypass quiet hours and lead-time
// preferences; everything else respects them.
func ShouldNotifyNow(need engine.PredictedServiceNeed, prefs model.MemberPreferences, now time.Time) bool {
	if need.Urgency >= forceUrgency {
		return true
	}
	if need.Service == model.ServiceCharge && need.CurrentValue <= forceChargeSoCPct {
		return true
	}
	if h := now.Hour(); h >= quietHourStart || h < quietHourEnd {
		return false
	}
	lead := prefs.LeadTimeHours
	if lead <= 0 {
		lead = model.DefaultPreferences(prefs.MemberID).LeadTimeHours
	}
	if need.PredictedDate.After(now.Add(time.Duration(lead) * time.Hour)) {
		return false
	}
	return true
}
