// Package arbitration selects, among a switch's per-port forward buffers,
// which ones may drain into their assigned output buffer this cycle.
package arbitration

import "github.com/sarchlab/rubynoc/sim"

// Arbiter grants forwarding access across a set of candidate buffers.
type Arbiter interface {
	AddBuffer(buf sim.Buffer)
	Arbitrate() []sim.Buffer
}

// RoundRobinArbiter rotates which buffer is served first on each call, so
// sustained contention on one input port cannot starve the others.
type RoundRobinArbiter struct {
	buffers []sim.Buffer
	next    int
}

// NewRoundRobinArbiter creates an arbiter with no buffers registered yet.
func NewRoundRobinArbiter() *RoundRobinArbiter {
	return &RoundRobinArbiter{}
}

// AddBuffer registers a buffer as a candidate for arbitration.
func (a *RoundRobinArbiter) AddBuffer(buf sim.Buffer) {
	a.buffers = append(a.buffers, buf)
}

// Arbitrate returns the non-empty buffers in round-robin order, starting
// from the buffer after the one that started last call.
func (a *RoundRobinArbiter) Arbitrate() []sim.Buffer {
	n := len(a.buffers)
	if n == 0 {
		return nil
	}

	ordered := make([]sim.Buffer, 0, n)

	for i := 0; i < n; i++ {
		buf := a.buffers[(a.next+i)%n]
		if buf.Size() > 0 {
			ordered = append(ordered, buf)
		}
	}

	a.next = (a.next + 1) % n

	return ordered
}
