// Package queueing implements the MessageBuffer external contract (spec
// component B): a bounded FIFO of opaque message pointers with
// enqueue-with-latency and ready/slot queries, sitting between a protocol
// producer and a single scheduled consumer.
package queueing

import (
	"github.com/sarchlab/rubynoc/sim"
)

// Consumer is anything that can be woken up by a MessageBuffer when an
// enqueued message reaches its arrival cycle; dequeuing, and so freeing a
// slot, wakes no one. It mirrors the "Wakeable" shape
// from the design notes rather than a deep hierarchy: a Throttle, a Router,
// or a NetworkInterface all satisfy it the same way.
type Consumer interface {
	Wakeup()
}

type entry struct {
	msg     interface{}
	arrival sim.Cycle
}

// MessageBuffer is a bounded FIFO of message pointers. Messages are enqueued
// with a latency and become visible to the consumer only once the current
// cycle reaches their arrival cycle. Order of enqueue is always preserved:
// a message enqueued later with a smaller latency still waits behind an
// earlier message that has not yet arrived (spec §3 invariant i).
type MessageBuffer struct {
	name     string
	engine   sim.Engine
	capacity int // 0 means unbounded

	entries  []entry
	consumer Consumer
}

// NewMessageBuffer creates a MessageBuffer with the given capacity. A
// capacity of 0 means the buffer never reports itself full.
func NewMessageBuffer(name string, engine sim.Engine, capacity int) *MessageBuffer {
	return &MessageBuffer{
		name:     name,
		engine:   engine,
		capacity: capacity,
	}
}

// Name returns the buffer's name.
func (b *MessageBuffer) Name() string {
	return b.name
}

// SetConsumer registers the single consumer that will be woken up when
// messages in this buffer reach their arrival cycle; a slot freeing up
// does not wake it. A buffer
// has at most one consumer at a time (spec §3 invariant iv); a later call
// replaces the previous consumer.
func (b *MessageBuffer) SetConsumer(c Consumer) {
	b.consumer = c
}

// IsReady reports whether the head of the buffer has arrived by now (spec
// §3 invariant i). An empty buffer is never ready.
func (b *MessageBuffer) IsReady(now sim.Cycle) bool {
	if len(b.entries) == 0 {
		return false
	}

	return b.entries[0].arrival <= now
}

// AreNSlotsAvailable reports whether n more messages can be enqueued without
// exceeding capacity. Monotone in n by construction (spec §3 invariant ii):
// if m slots are available, n < m slots are too.
func (b *MessageBuffer) AreNSlotsAvailable(n int) bool {
	if b.capacity <= 0 {
		return true
	}

	return b.capacity-len(b.entries) >= n
}

// Size returns the number of messages currently pending in the buffer,
// arrived or not.
func (b *MessageBuffer) Size() int {
	return len(b.entries)
}

// Capacity returns the buffer's capacity, or 0 if unbounded.
func (b *MessageBuffer) Capacity() int {
	return b.capacity
}

// PeekMsg returns the head message without removing it, or nil if empty.
func (b *MessageBuffer) PeekMsg() interface{} {
	if len(b.entries) == 0 {
		return nil
	}

	return b.entries[0].msg
}

// EnqueueMsg inserts msg at the tail of the buffer with an arrival cycle of
// now+latency (spec §3 invariant iii), and schedules a wakeup for the
// registered consumer at that cycle. It panics if the buffer is already at
// capacity; callers must check AreNSlotsAvailable(1) first.
func (b *MessageBuffer) EnqueueMsg(msg interface{}, now sim.Cycle, latency int) {
	if !b.AreNSlotsAvailable(1) {
		panic("message buffer " + b.name + " overflow")
	}

	arrival := now + sim.Cycle(latency)
	b.entries = append(b.entries, entry{msg: msg, arrival: arrival})

	if b.consumer != nil && b.engine != nil {
		b.engine.Schedule(sim.NewEventBase(arrival, b))
	}
}

// DequeueMsg removes and returns the head message. It returns nil if the
// buffer is empty; callers are expected to have checked IsReady first.
func (b *MessageBuffer) DequeueMsg() interface{} {
	if len(b.entries) == 0 {
		return nil
	}

	e := b.entries[0]
	b.entries = b.entries[1:]

	return e.msg
}

// Clear drops all pending entries without rescheduling (spec §3 invariant
// iv). Wakeup events already scheduled against this buffer remain in the
// event queue; they become no-ops because the buffer will report empty.
func (b *MessageBuffer) Clear() {
	b.entries = nil
}

// Handle satisfies sim.Handler so the buffer itself can be the target of
// the wakeup events it schedules; it simply forwards to the registered
// consumer and is a no-op if the consumer was cleared in the meantime.
func (b *MessageBuffer) Handle(_ sim.Event) error {
	if b.consumer != nil {
		b.consumer.Wakeup()
	}

	return nil
}
