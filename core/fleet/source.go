package fleet

import (
	"context"

	"github.com/fleetops-io/servicesched/core/model"
)

// Source provides the inbound fleet data the engine reads. Vehicle records
// and member preferences are owned elsewhere; this is the read boundary.
type Source interface {
	Vehicles(ctx context.Context) ([]model.Vehicle, error)
	Preferences(ctx context.Context, memberID string) (model.MemberPreferences, error)
}
