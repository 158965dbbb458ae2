package app

import (
	"sort"
	"sync"
	"time"

	"github.com/fleetops-io/servicesched/core/model"
)

// notificationRegistry tracks emitted notifications until they are acted on
// or expire. It is a working set, not the system of record: bookings are
// the durable artifact.
type notificationRegistry struct {
	mu   sync.RWMutex
	data map[string]model.ServiceNotification
	// lastSent suppresses duplicate notifications per vehicle+service until
	// the previous one leaves the pending state.
	lastSent map[string]string
}

func newNotificationRegistry() *notificationRegistry {
	return &notificationRegistry{
		data:     map[string]model.ServiceNotification{},
		lastSent: map[string]string{},
	}
}

func pendingKey(vehicleID string, s model.ServiceType) string {
	return vehicleID + "/" + string(s)
}

// Add registers a pending notification. It returns false when a pending
// notification for the same vehicle and service already exists.
func (r *notificationRegistry) Add(n model.ServiceNotification) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pendingKey(n.VehicleID, n.Service)
	if prev, ok := r.lastSent[key]; ok {
		if existing, live := r.data[prev]; live && existing.Status == model.NotificationPending {
			return false
		}
	}
	r.data[n.ID] = n
	r.lastSent[key] = n.ID
	return true
}

// Get returns the notification by id.
func (r *notificationRegistry) Get(id string) (model.ServiceNotification, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.data[id]
	return n, ok
}

// SetStatus updates the lifecycle state of a tracked notification.
func (r *notificationRegistry) SetStatus(id string, status model.NotificationStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.data[id]; ok {
		n.Status = status
		r.data[id] = n
	}
}

// Pending lists pending notifications sorted by creation time.
func (r *notificationRegistry) Pending() []model.ServiceNotification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var res []model.ServiceNotification
	for _, n := range r.data {
		if n.Status == model.NotificationPending {
			res = append(res, n)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res
}

// Sweep expires pending notifications older than ttl and prunes terminal
// ones. It returns the number of expirations.
func (r *notificationRegistry) Sweep(now time.Time, ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	expired := 0
	for id, n := range r.data {
		switch n.Status {
		case model.NotificationPending:
			if now.Sub(n.CreatedAt) > ttl {
				n.Status = model.NotificationExpired
				r.data[id] = n
				expired++
			}
		case model.NotificationAccepted, model.NotificationDeclined:
			if now.Sub(n.CreatedAt) > 2*ttl {
				delete(r.data, id)
			}
		}
	}
	return expired
}
