package tcp

import (
	"fmt"
	"log"
	"sync/atomic"

	m "github.com/Meander-Cloud/go-probe/message"
	tp "github.com/Meander-Cloud/go-probe/net/tcp/protocol"
)

type CounterSnapshot struct {
	Handshakes     uint64
	StatusRequests uint64
	Pings          uint64
	NonZeroPings   uint64
}

func (s CounterSnapshot) String() string {
	return fmt.Sprintf(
		"handshakes=%d, statusRequests=%d, pings=%d, nonZeroPings=%d",
		s.Handshakes,
		s.StatusRequests,
		s.Pings,
		s.NonZeroPings,
	)
}

// Counter is a ServerHandler that tallies decoded packets.
// Callbacks arrive on ReadLoop goroutines.
type Counter struct {
	LogPrefix string
	LogDebug  bool

	handshakes     atomic.Uint64
	statusRequests atomic.Uint64
	pings          atomic.Uint64
	nonZeroPings   atomic.Uint64
}

func (c *Counter) ClientIntention(_ *tp.Server, cs *tp.ConnState, p *m.ClientIntention) {
	c.handshakes.Add(1)
	if c.LogDebug {
		log.Printf("%s: %s: %+v", c.LogPrefix, cs.Data.Load().Descriptor, *p)
	}
}

func (c *Counter) StatusRequest(_ *tp.Server, _ *tp.ConnState, _ *m.StatusRequest) {
	c.statusRequests.Add(1)
}

func (c *Counter) PingRequest(_ *tp.Server, _ *tp.ConnState, p *m.PingRequest) {
	c.pings.Add(1)
	if p.Time != 0 {
		c.nonZeroPings.Add(1)
	}
}

func (c *Counter) Snapshot() CounterSnapshot {
	return CounterSnapshot{
		Handshakes:     c.handshakes.Load(),
		StatusRequests: c.statusRequests.Load(),
		Pings:          c.pings.Load(),
		NonZeroPings:   c.nonZeroPings.Load(),
	}
}

func (c *Counter) String() string {
	return c.Snapshot().String()
}
