package mqtt

import (
	"fmt"
	"sync"

	"github.com/fleetops-io/servicesched/core/model"
)

// MockPublisher records published notifications in memory. Used in tests.
type MockPublisher struct {
	mu       sync.Mutex
	Messages []model.ServiceNotification
	Fail     bool
	Closed   bool
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// PublishNotification records the notification or fails when configured.
func (m *MockPublisher) PublishNotification(n model.ServiceNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("publish failed")
	}
	m.Messages = append(m.Messages, n)
	return nil
}

// Close marks the publisher closed.
func (m *MockPublisher) Close() error {
	m.mu.Lock()
	m.Closed = true
	m.mu.Unlock()
	return nil
}

// Published returns a copy of the recorded notifications.
func (m *MockPublisher) Published() []model.ServiceNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]model.ServiceNotification, len(m.Messages))
	copy(cp, m.Messages)
	return cp
}
