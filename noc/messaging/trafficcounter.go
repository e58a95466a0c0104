package messaging

import "github.com/sarchlab/rubynoc/sim"

// TrafficCounter counts the number of bytes delivered over a connection. It
// is a sim.Hook, attached to a Connection or Port to accumulate flit
// traffic class bytes as they are delivered.
type TrafficCounter struct {
	TotalData uint64
}

// Func adds the delivered traffic to the counter.
func (c *TrafficCounter) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosConnDeliver {
		return
	}

	msg, ok := ctx.Item.(sim.Msg)
	if !ok {
		return
	}

	c.TotalData += uint64(msg.Meta().TrafficBytes)
}
