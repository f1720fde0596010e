package pipeline

import (
	"context"
	"log"
)

// connect goroutine
//
// Dials the target back to back. A failed dial is counted and retried at
// once. A successful one is handed to the dispatcher, blocking while the
// queue is full.
func (p *Pipeline) connectLoop(ctx context.Context) {
	address := p.c.Address()
	log.Printf("%s: connector started, address=%s", p.logPrefix, address)
	defer log.Printf("%s: connector stopped", p.logPrefix)

	for {
		if ctx.Err() != nil {
			return
		}

		p.stats.DialAttempts.Add(1)
		conn, err := p.dialer.DialContext(ctx, "tcp", address)
		if err != nil {
			p.stats.DialFailures.Add(1)
			if p.c.LogDebug {
				log.Printf("%s: failed to dial %s, err=%s", p.logPrefix, address, err.Error())
			}
			continue
		}

		select {
		case p.queue <- conn:
			p.stats.Enqueued.Add(1)
		case <-ctx.Done():
			conn.Close()
			return
		}
	}
}
