// Package network implements the Network façade (spec component G): it
// owns the per-node/per-virtual-network message queues, serves
// get_to_net_queue/get_from_net_queue to the protocol above, and
// aggregates the statistics spec.md §4.5/§6 require. Two concrete
// flavors are provided, matching spec.md's two transports: SimpleNetwork
// (component D, Throttle-based) and GarnetNetwork (components C/E/F,
// router/NI-based).
package network

// RouterParams names one router in a GarnetNetwork's topology. Naming
// only; the router's ports and routing table are installed by whichever
// topology builder (e.g. topology.BuildMesh2D) consumes a Config.
type RouterParams struct {
	Name string `yaml:"name" json:"name"`
}

// LinkParams describes one directed link a SimpleNetwork should build a
// Throttle for, or one edge a GarnetNetwork's topology builder should
// wire (spec §6 "Per link: latency, weight, bandwidth_multiplier").
type LinkParams struct {
	Src                 int `yaml:"src" json:"src"`
	Dst                 int `yaml:"dst" json:"dst"`
	Latency             int `yaml:"latency" json:"latency"`
	Weight              int `yaml:"weight" json:"weight"`
	BandwidthMultiplier int `yaml:"bandwidth_multiplier" json:"bandwidth_multiplier"`
}

// Config holds the construction parameters spec.md §6 names.
type Config struct {
	Nodes           int `yaml:"nodes" json:"nodes"`
	VirtualNetworks int `yaml:"virtual_networks" json:"virtual_networks"`
	VCsPerClass     int `yaml:"vcs_per_class" json:"vcs_per_class"`

	Routers []RouterParams `yaml:"routers" json:"routers"`
	Links   []LinkParams   `yaml:"links" json:"links"`

	BashBandwidthAdaptiveThreshold float64 `yaml:"bash_bandwidth_adaptive_threshold" json:"bash_bandwidth_adaptive_threshold"`
	PrintTopology                  bool    `yaml:"print_topology" json:"print_topology"`
}
