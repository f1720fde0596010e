package pipeline

import (
	"context"
	"log"
	"net"

	"github.com/Meander-Cloud/go-probe/config"
	m "github.com/Meander-Cloud/go-probe/message"
	tp "github.com/Meander-Cloud/go-probe/net/tcp/protocol"
)

// dispatch goroutine
func (p *Pipeline) dispatchLoop(ctx context.Context) {
	log.Printf("%s: dispatcher started", p.logPrefix)
	defer log.Printf("%s: dispatcher stopped", p.logPrefix)

	for {
		select {
		case conn := <-p.queue:
			p.probe(conn)
		case <-ctx.Done():
			return
		}
	}
}

// probe writes handshake, status request and ping, in that order, then
// closes conn. Each write is attempted even if an earlier one failed.
// Nothing is read back.
func (p *Pipeline) probe(conn net.Conn) {
	defer conn.Close()
	p.stats.Dispatched.Add(1)

	w := tp.NewWriter(p.writerOptions, p.connIDGen.Add(1), conn)

	p.attempt(w, m.NewHandshake(
		&m.ServerboundHandshake{
			ClientIntention: &m.ClientIntention{
				ProtocolVersion: config.ProtocolVersion,
				Hostname:        p.c.Hostname,
				Port:            p.c.Port,
				Intention:       m.IntentionStatus,
			},
		},
	))

	p.attempt(w, m.NewStatus(
		&m.ServerboundStatus{
			StatusRequest: &m.StatusRequest{},
		},
	))

	// some servers hold the status response for several seconds unless a ping follows right away
	p.attempt(w, m.NewStatus(
		&m.ServerboundStatus{
			PingRequest: &m.PingRequest{
				Time: 0,
			},
		},
	))

	if p.c.LogDebug {
		log.Printf("%s: %s: probe sequence done", p.logPrefix, w.Descriptor())
	}
}

func (p *Pipeline) attempt(w *tp.Writer, outbound *m.Outbound) {
	p.stats.WriteAttempts.Add(1)

	err := w.Write(outbound)
	if err != nil {
		p.stats.WriteFailures.Add(1)
	}
}
