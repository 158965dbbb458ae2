// Package monitoring is the error-reporting seam between the scheduling
// core and whatever backend is configured. The core reports through the
// package-level functions; the concrete backend is installed once at boot.
package monitoring

import "time"

// Monitor receives errors and panics from the running service.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

// NopMonitor discards everything. It is the default until Init is called.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var active Monitor = NopMonitor{}

// Init installs the monitor backend. Call once during startup, before any
// goroutine defers Recover.
func Init(m Monitor) {
	if m != nil {
		active = m
	}
}

// CaptureException reports the error with optional tags, such as the
// pipeline stage that produced it.
func CaptureException(err error, tags map[string]string) {
	active.CaptureException(err, tags)
}

// Recover is deferred at the top of long-lived goroutines.
func Recover() {
	active.Recover()
}

// Flush drains buffered events, typically during shutdown.
func Flush(d time.Duration) {
	active.Flush(d)
}
