package messaging

import "sort"

// NetDest is the set of destination machine IDs reachable via a given
// output port, or carried by a message as its addressed destination set
// (glossary: NetDest). It supports an IsBroadcast predicate, used by the
// throttle to scale per-message bandwidth accounting (spec §4.4).
type NetDest struct {
	total int
	ids   map[int]struct{}
}

// NewNetDest creates an empty NetDest over a universe of total machines.
func NewNetDest(total int) NetDest {
	return NetDest{total: total, ids: make(map[int]struct{})}
}

// Add includes id in the destination set.
func (d *NetDest) Add(id int) {
	if d.ids == nil {
		d.ids = make(map[int]struct{})
	}

	d.ids[id] = struct{}{}
}

// Contains reports whether id is part of the destination set.
func (d NetDest) Contains(id int) bool {
	_, ok := d.ids[id]
	return ok
}

// Count returns the number of machines in the destination set.
func (d NetDest) Count() int {
	return len(d.ids)
}

// IsBroadcast reports whether the destination set spans every machine in
// the network (glossary: NetDest).
func (d NetDest) IsBroadcast() bool {
	return d.total > 0 && d.Count() == d.total
}

// IDs returns the destination machine IDs in ascending order.
func (d NetDest) IDs() []int {
	ids := make([]int, 0, len(d.ids))
	for id := range d.ids {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	return ids
}
