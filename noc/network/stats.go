package network

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/sarchlab/rubynoc/noc/messaging"
)

// safeDiv returns a/b, or 0 in place of NaN/Inf when b is zero — spec
// §4.5 requires implementations not divide-by-zero-crash when a
// statistic's denominator (e.g. flits_received) is still zero.
func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}

	v := a / b
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}

	return v
}

// Stats is the snapshot PrintStats renders; exported separately so a
// caller (e.g. cmd/noc-demo) can also consume the numbers programmatically.
type Stats struct {
	AverageLinkUtilization float64
	AverageVCLoad          []float64 // per in-use virtual network, averaged across that VN's links

	FlitsInjected uint64
	FlitsReceived uint64

	AverageNetworkLatency  float64
	AverageQueueingLatency float64
	AverageLatency         float64
}

// Stats aggregates the running counters into the spec's reporting shape.
// Link utilization and per-VC load are averaged across all Throttles
// using gonum/stat.Mean rather than a hand-rolled accumulator.
func (n *SimpleNetwork) Stats() Stats {
	utilizations := make([]float64, 0, len(n.throttles))
	for _, th := range n.throttles {
		utilizations = append(utilizations, th.Utilization())
	}

	s := Stats{
		FlitsInjected: n.flitsInjected,
		FlitsReceived: n.flitsReceived,
	}

	if len(utilizations) > 0 {
		s.AverageLinkUtilization = stat.Mean(utilizations, nil)
	}

	elapsed := float64(n.engine.CurrentTime() - n.rubyStart)

	for vnet := 0; vnet < n.cfg.VirtualNetworks; vnet++ {
		if !n.inUse[vnet] {
			continue
		}

		loads := make([]float64, 0, len(n.throttles))
		for _, th := range n.throttles {
			count := 0
			for sizeTag := 0; sizeTag < messaging.NumMessageSizeTypes(); sizeTag++ {
				count += th.MessageCount(messaging.MessageSizeType(sizeTag), vnet)
			}

			loads = append(loads, safeDiv(float64(count), elapsed))
		}

		load := 0.0
		if len(loads) > 0 {
			load = stat.Mean(loads, nil)
		}

		s.AverageVCLoad = append(s.AverageVCLoad, load)
	}

	received := float64(n.flitsReceived)
	s.AverageNetworkLatency = safeDiv(float64(n.networkLatencySum), received)
	s.AverageQueueingLatency = safeDiv(float64(n.queueingLatencySum), received)
	s.AverageLatency = safeDiv(float64(n.totalLatencySum), received)

	return s
}

// PrintStats renders the stats report in the exact layout spec.md §6
// mandates, so downstream tooling parsing gem5-style Ruby stats output
// keeps working unmodified.
func (n *SimpleNetwork) PrintStats(w io.Writer) {
	s := n.Stats()

	fmt.Fprintln(w, "Network Stats")
	fmt.Fprintln(w, "-------------")
	fmt.Fprintf(w, "Average Link Utilization :: %f flits/cycle\n", s.AverageLinkUtilization)

	for i, load := range s.AverageVCLoad {
		fmt.Fprintf(w, "Average VC Load [%d] = %f flits/cycle\n", i, load)
	}

	fmt.Fprintf(w, "Total flits injected = %d\n", s.FlitsInjected)
	fmt.Fprintf(w, "Total flits received = %d\n", s.FlitsReceived)
	fmt.Fprintf(w, "Average network latency = %f\n", s.AverageNetworkLatency)
	fmt.Fprintf(w, "Average queueing (at source NI) latency = %f\n", s.AverageQueueingLatency)
	fmt.Fprintf(w, "Average latency = %f\n", s.AverageLatency)
}

// PrintConfig renders the per-virtual-network active/ordered summary
// spec.md §6 requires, plus topology sizing when PrintTopology is set.
func (n *SimpleNetwork) PrintConfig(w io.Writer) {
	for vnet := 0; vnet < n.cfg.VirtualNetworks; vnet++ {
		if !n.inUse[vnet] {
			continue
		}

		if n.ordered[vnet] {
			fmt.Fprintf(w, "virtual_net_%d: active, ordered\n", vnet)
		} else {
			fmt.Fprintf(w, "virtual_net_%d: active\n", vnet)
		}
	}

	if n.cfg.PrintTopology {
		fmt.Fprintf(w, "topology: %d nodes, %d links\n", n.cfg.Nodes, len(n.throttles))
	}
}

// ClearStats resets all running counters (spec §3 "Lifecycle" — a
// PrintStats call should not double-count a prior measurement window).
func (n *SimpleNetwork) ClearStats() {
	for _, th := range n.throttles {
		th.ClearStats()
	}

	n.rubyStart = n.engine.CurrentTime()
	n.flitsInjected = 0
	n.flitsReceived = 0
	n.networkLatencySum = 0
	n.queueingLatencySum = 0
	n.totalLatencySum = 0
}
