// Package routing holds the per-port routing-table entry (spec component
// C): a NetDest reachable via a given output port, with a weight used to
// break ties when more than one port can reach the same destination.
package routing

import "github.com/sarchlab/rubynoc/noc/messaging"

// Entry pairs an output port index with the NetDest it can reach and the
// weight Topology assigned to it when the link was installed (spec §4.1
// "Link-making").
type Entry struct {
	Port   int
	Dest   messaging.NetDest
	Weight int
}

// Table holds the routing entries for a single router or NI's output
// ports and resolves a destination node ID to the best matching port.
// Routing-table entries are computed externally and supplied per output
// port; Table itself never computes shortest paths (spec §4.2).
type Table struct {
	entries []Entry
}

// NewTable creates an empty routing table.
func NewTable() *Table {
	return &Table{}
}

// AddRoute installs dest as reachable through port at the given weight.
func (t *Table) AddRoute(port int, dest messaging.NetDest, weight int) {
	t.entries = append(t.entries, Entry{Port: port, Dest: dest, Weight: weight})
}

// FindPort returns the lowest-weight output port whose NetDest contains
// dstNode, and whether any port matched.
func (t *Table) FindPort(dstNode int) (port int, found bool) {
	bestWeight := 0

	for _, e := range t.entries {
		if !e.Dest.Contains(dstNode) {
			continue
		}

		if !found || e.Weight < bestWeight {
			port = e.Port
			bestWeight = e.Weight
			found = true
		}
	}

	return port, found
}

// Entries returns the routing entries installed on this table, in
// insertion order.
func (t *Table) Entries() []Entry {
	return t.entries
}
