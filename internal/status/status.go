// Package status holds the process-wide liveness flag read by health probes
// and written by the administrative endpoints.
package status

import "sync/atomic"

// Store defines the liveness flag contract. Implementations must be safe for
// concurrent use.
type Store interface {
	// Live reports whether the service currently considers itself healthy.
	Live() bool

	// SetLive overwrites the flag. Subsequent Live calls from any goroutine
	// observe the new value.
	SetLive(live bool)
}

// Liveness is the in-memory Store. Create exactly one per process and share
// it between every handler that needs it.
type Liveness struct {
	live atomic.Bool
}

// New returns a Liveness that starts out live.
func New() *Liveness {
	l := &Liveness{}
	l.live.Store(true)
	return l
}

// Live returns the current value of the flag.
func (l *Liveness) Live() bool {
	return l.live.Load()
}

// SetLive stores the given value unconditionally.
func (l *Liveness) SetLive(live bool) {
	l.live.Store(live)
}
