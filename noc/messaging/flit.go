package messaging

import (
	"fmt"

	"github.com/sarchlab/rubynoc/sim"
)

// Flit is the smallest transport unit on a Garnet-style network link: a
// protocol NetworkMessage is packetized into one or more flits by a
// NetworkInterface, each carrying the VN/VC it travels on and its position
// within the parent message (spec §4.3).
type Flit struct {
	sim.MsgMeta

	SeqID        int
	NumFlitInMsg int
	VNet         int
	VC           int
	DstNode      int // final destination machine ID, used for route lookup
	Msg          NetworkMessage
	OutputBuf    sim.Buffer // the buffer to route to within a switch
}

// Meta returns the meta data associated with the Flit.
func (f *Flit) Meta() *sim.MsgMeta {
	return &f.MsgMeta
}

// Clone returns a cloned Flit with a different ID.
func (f *Flit) Clone() sim.Msg {
	cloneMsg := *f
	cloneMsg.ID = fmt.Sprintf("flit-%d-vn%d-%s",
		cloneMsg.SeqID, cloneMsg.VNet, sim.GetIDGenerator().Generate())

	return &cloneMsg
}

// IsHead reports whether this is the first flit of its parent message.
func (f *Flit) IsHead() bool {
	return f.SeqID == 0
}

// IsTail reports whether this is the last flit of its parent message.
func (f *Flit) IsTail() bool {
	return f.SeqID == f.NumFlitInMsg-1
}

// FlitBuilder builds flits.
type FlitBuilder struct {
	src, dst            sim.RemotePort
	msg                 NetworkMessage
	vnet, vc, dstNode   int
	seqID, numFlitInMsg int
}

// WithDstNode sets the final destination machine ID used for route
// lookups at each hop.
func (b FlitBuilder) WithDstNode(node int) FlitBuilder {
	b.dstNode = node
	return b
}

// WithSrc sets the source of the flit to build.
func (b FlitBuilder) WithSrc(src sim.RemotePort) FlitBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the flit to build.
func (b FlitBuilder) WithDst(dst sim.RemotePort) FlitBuilder {
	b.dst = dst
	return b
}

// WithVNet sets the virtual network the flit travels on.
func (b FlitBuilder) WithVNet(vnet int) FlitBuilder {
	b.vnet = vnet
	return b
}

// WithVC sets the virtual channel the flit travels on.
func (b FlitBuilder) WithVC(vc int) FlitBuilder {
	b.vc = vc
	return b
}

// WithSeqID sets the position of the flit within its parent message.
func (b FlitBuilder) WithSeqID(i int) FlitBuilder {
	b.seqID = i
	return b
}

// WithNumFlitInMsg sets the total flit count of the parent message.
func (b FlitBuilder) WithNumFlitInMsg(n int) FlitBuilder {
	b.numFlitInMsg = n
	return b
}

// WithMsg sets the parent NetworkMessage the flit was packetized from.
func (b FlitBuilder) WithMsg(msg NetworkMessage) FlitBuilder {
	b.msg = msg
	return b
}

// Build creates a new flit.
func (b FlitBuilder) Build() *Flit {
	f := &Flit{}
	f.ID = fmt.Sprintf("flit-%d-vn%d-%s",
		b.seqID, b.vnet, sim.GetIDGenerator().Generate())
	f.Src = b.src
	f.Dst = b.dst
	f.Msg = b.msg
	f.VNet = b.vnet
	f.VC = b.vc
	f.DstNode = b.dstNode
	f.SeqID = b.seqID
	f.NumFlitInMsg = b.numFlitInMsg
	f.TrafficClass = "Flit"

	return f
}
