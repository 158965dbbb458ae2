package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fleetops-io/servicesched/core/model"
)

// ResourceStore manages the live state of stalls and bays. The booking
// service is the only writer; implementations must make Claim atomic with
// respect to concurrent claims on the same resource.
type ResourceStore interface {
	Get(ctx context.Context, id string) (model.Resource, error)
	// List returns resources of the given type, or all when typ is empty.
	List(ctx context.Context, typ model.ResourceType) ([]model.Resource, error)
	Put(ctx context.Context, r model.Resource) error
	// Claim transitions the resource from available to reserved in one
	// atomic step and stamps it with the occupant. It returns
	// ErrStaleResource when the resource is not available at commit time.
	Claim(ctx context.Context, id, vehicleID string, start, end time.Time) error
	// Release sets the resource back to available and clears the occupant.
	Release(ctx context.Context, id string) error
}

// ServiceStore persists scheduled service records.
type ServiceStore interface {
	Insert(ctx context.Context, s model.ScheduledService) error
	Get(ctx context.Context, id string) (model.ScheduledService, error)
	UpdateStatus(ctx context.Context, id string, status model.ServiceStatus, respondedAt time.Time) error
	UpdateSlot(ctx context.Context, id, resourceID string, start, end time.Time) error
	ListByVehicle(ctx context.Context, vehicleID string) ([]model.ScheduledService, error)
}

// MemoryResourceStore keeps resource state in process behind a mutex. The
// claim check and write happen under one lock acquisition, which provides
// the compare-and-swap guarantee for single-process deployments.
type MemoryResourceStore struct {
	mu   sync.RWMutex
	data map[string]model.Resource
}

// NewMemoryResourceStore returns an empty in-memory store.
func NewMemoryResourceStore() *MemoryResourceStore {
	return &MemoryResourceStore{data: map[string]model.Resource{}}
}

func (s *MemoryResourceStore) Get(_ context.Context, id string) (model.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.data[id]
	if !ok {
		return model.Resource{}, ErrNotFound
	}
	return r, nil
}

func (s *MemoryResourceStore) List(_ context.Context, typ model.ResourceType) ([]model.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.Resource, 0, len(s.data))
	for _, r := range s.data {
		if typ != "" && r.Type != typ {
			continue
		}
		res = append(res, r)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s *MemoryResourceStore) Put(_ context.Context, r model.Resource) error {
	s.mu.Lock()
	s.data[r.ID] = r
	s.mu.Unlock()
	return nil
}

func (s *MemoryResourceStore) Claim(_ context.Context, id, vehicleID string, start, end time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data[id]
	if !ok {
		return ErrNotFound
	}
	if r.Status != model.ResourceAvailable {
		return ErrStaleResource
	}
	r.Status = model.ResourceReserved
	r.VehicleID = vehicleID
	r.SessionStart = start
	r.SessionEnd = end
	s.data[id] = r
	return nil
}

func (s *MemoryResourceStore) Release(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data[id]
	if !ok {
		return ErrNotFound
	}
	r.Status = model.ResourceAvailable
	r.VehicleID = ""
	r.SessionStart = time.Time{}
	r.SessionEnd = time.Time{}
	s.data[id] = r
	return nil
}

// MemoryServiceStore keeps scheduled services in process behind a mutex.
type MemoryServiceStore struct {
	mu   sync.RWMutex
	data map[string]model.ScheduledService
}

// NewMemoryServiceStore returns an empty in-memory store.
func NewMemoryServiceStore() *MemoryServiceStore {
	return &MemoryServiceStore{data: map[string]model.ScheduledService{}}
}

func (s *MemoryServiceStore) Insert(_ context.Context, sv model.ScheduledService) error {
	s.mu.Lock()
	s.data[sv.ID] = sv
	s.mu.Unlock()
	return nil
}

func (s *MemoryServiceStore) Get(_ context.Context, id string) (model.ScheduledService, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sv, ok := s.data[id]
	if !ok {
		return model.ScheduledService{}, ErrNotFound
	}
	return sv, nil
}

func (s *MemoryServiceStore) UpdateStatus(_ context.Context, id string, status model.ServiceStatus, respondedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sv, ok := s.data[id]
	if !ok {
		return ErrNotFound
	}
	sv.Status = status
	sv.RespondedAt = respondedAt
	s.data[id] = sv
	return nil
}

func (s *MemoryServiceStore) UpdateSlot(_ context.Context, id, resourceID string, start, end time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sv, ok := s.data[id]
	if !ok {
		return ErrNotFound
	}
	sv.ResourceID = resourceID
	sv.ScheduledStart = start
	sv.ScheduledEnd = end
	s.data[id] = sv
	return nil
}

func (s *MemoryServiceStore) ListByVehicle(_ context.Context, vehicleID string) ([]model.ScheduledService, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []model.ScheduledService
	for _, sv := range s.data {
		if sv.VehicleID == vehicleID {
			res = append(res, sv)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}
