package messaging

// NetworkMessage is the opaque payload the network core transports (spec
// §3). The coherence protocol above defines concrete message types; the
// core only ever needs to know where a message is going and how big it is.
// Implementations are expected to be reference types so copies stay cheap.
type NetworkMessage interface {
	Destination() NetDest
	MessageSize() MessageSizeType
}

// NetworkMessageToSize returns the bandwidth cost, in units, of transiting
// msg across a link (Throttle.cc's network_message_to_size). One unit of a
// message equals IntOf(size_tag) * MessageSizeMultiplier, optionally scaled
// by broadcastScaling when the destination set is a full broadcast.
func NetworkMessageToSize(msg NetworkMessage, messageSizeMultiplier, broadcastScaling int) int {
	units := IntOf(msg.MessageSize()) * messageSizeMultiplier

	if broadcastScaling > 1 && msg.Destination().IsBroadcast() {
		units *= broadcastScaling
	}

	return units
}
