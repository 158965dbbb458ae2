// Package push defines the outbound channel for member-facing
// notifications. Concrete transports live under infra.
package push

import "github.com/fleetops-io/servicesched/core/model"

// Publisher delivers a notification to the member's device or inbox.
type Publisher interface {
	PublishNotification(n model.ServiceNotification) error
	Close() error
}

// NopPublisher discards notifications. Used when no transport is
// configured.
type NopPublisher struct{}

func (NopPublisher) PublishNotification(model.ServiceNotification) error { return nil }
func (NopPublisher) Close() error                                        { return nil }
