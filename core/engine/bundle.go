package engine

import (
	"sort"

	"github.com/fleetops-io/servicesched/core/model"
)

// bundleUrgencyFloor folds a secondary need into a visit slightly before it
// is independently notification-worthy: the added visit cost is zero.
const bundleUrgencyFloor = 40

// BundledServiceRecommendation groups several near-due services for one
// vehicle into a single visit.
type BundledServiceRecommendation struct {
	VehicleID        string              `json:"vehicle_id"`
	PrimaryService   model.ServiceType   `json:"primary_service"`
	BundledServices  []model.ServiceType `json:"bundled_services"`
	CombinedMinutes  int                 `json:"combined_minutes"`
	SeparateMinutes  int                 `json:"separate_minutes"`
	TimeSavedMinutes int                 `json:"time_saved_minutes"`
}

// GenerateBundles finds vehicles with at least two queued needs where
// combining them into one visit is favorable. The highest-scoring need is
// the primary; others join when their ratio passes the type-specific bundle
// ratio or their urgency passes the bundle floor.
func GenerateBundles(queue []PredictedServiceNeed, thresholds []model.ServiceThreshold) []BundledServiceRecommendation {
	durations := make(map[model.ServiceType]int, len(thresholds))
	for _, th := range thresholds {
		durations[th.Service] = th.DurationMinutes
	}

	byVehicle := make(map[string][]PredictedServiceNeed)
	var order []string
	for _, n := range queue {
		if _, seen := byVehicle[n.VehicleID]; !seen {
			order = append(order, n.VehicleID)
		}
		byVehicle[n.VehicleID] = append(byVehicle[n.VehicleID], n)
	}
	sort.Strings(order)

	var bundles []BundledServiceRecommendation
	for _, id := range order {
		needs := byVehicle[id]
		if len(needs) < 2 {
			continue
		}
		// Queue order is already descending by composite score.
		primary := needs[0]
		var secondary []PredictedServiceNeed
		for _, n := range needs[1:] {
			ratio := model.BundleRatio[n.Service]
			if ratio == 0 {
				ratio = 0.85
			}
			if n.Ratio >= ratio || n.Urgency >= bundleUrgencyFloor {
				secondary = append(secondary, n)
			}
		}
		if len(secondary) == 0 {
			continue
		}

		combined := durations[primary.Service] + model.VisitOverheadMinutes
		separate := durations[primary.Service] + model.VisitOverheadMinutes
		services := make([]model.ServiceType, 0, len(secondary))
		for _, n := range secondary {
			combined += durations[n.Service]
			separate += durations[n.Service] + model.VisitOverheadMinutes
			services = append(services, n.Service)
		}
		bundles = append(bundles, BundledServiceRecommendation{
			VehicleID:        id,
			PrimaryService:   primary.Service,
			BundledServices:  services,
			CombinedMinutes:  combined,
			SeparateMinutes:  separate,
			TimeSavedMinutes: separate - combined,
		})
	}
	return bundles
}
