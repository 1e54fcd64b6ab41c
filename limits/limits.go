// Package limits tracks system-wide resource ceilings for the tasking
// core. It is trimmed from biscuit's limits.go down to the one ceiling
// this module's scope actually enforces: the maximum number of live
// tasks.
package limits

import "sync/atomic"

// Sysatomic_t is a numeric limit that can be atomically updated.
type Sysatomic_t int64

// Given increases the limit by the provided amount.
func (s *Sysatomic_t) Given(n uint) {
	atomic.AddInt64((*int64)(s), int64(n))
}

// Taken tries to decrement the limit by the provided amount. It
// returns true on success, leaving the limit unchanged on failure.
func (s *Sysatomic_t) Taken(n uint) bool {
	g := atomic.AddInt64((*int64)(s), -int64(n))
	if g >= 0 {
		return true
	}
	atomic.AddInt64((*int64)(s), int64(n))
	return false
}

// Take decrements the limit by one.
func (s *Sysatomic_t) Take() bool { return s.Taken(1) }

// Give increments the limit by one.
func (s *Sysatomic_t) Give() { s.Given(1) }

// Syslimit_t holds the system-wide task ceiling. spawn_process and
// spawn_init consult Sysprocs and treat exhaustion as an allocation
// failure.
type Syslimit_t struct {
	Sysprocs Sysatomic_t
}

// Syslimit is the configured system-wide limits instance.
var Syslimit = &Syslimit_t{Sysprocs: 1 << 14}
