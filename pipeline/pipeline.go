package pipeline

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Meander-Cloud/go-probe/arbiter"
	"github.com/Meander-Cloud/go-probe/config"
	tp "github.com/Meander-Cloud/go-probe/net/tcp/protocol"
)

type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Pipeline feeds freshly dialed connections through a bounded queue to a
// single dispatcher that writes one status probe per connection.
type Pipeline struct {
	c         *config.Config
	dialer    Dialer
	a         *arbiter.Arbiter
	runID     uuid.UUID
	logPrefix string

	// connector -> dispatcher, ownership of each conn moves with it
	queue chan net.Conn

	writerOptions *tp.WriterOptions
	stats         Stats
	connIDGen     atomic.Uint32
	running       atomic.Bool

	// arbiter goroutine only
	reportScheduled   bool
	deadlineScheduled bool
	lastSnapshot      Snapshot
	stopped           bool
}

// New builds a pipeline. A nil dialer uses net.Dialer with the configured timeout.
func New(c *config.Config, dialer Dialer) (*Pipeline, error) {
	err := c.Validate()
	if err != nil {
		return nil, err
	}

	if dialer == nil {
		dialer = &net.Dialer{
			Timeout: c.GetTcpDialTimeout(),
		}
	}

	runID := uuid.New()
	logPrefix := fmt.Sprintf("%s[%s]", c.LogPrefix, runID.String()[:8])

	p := &Pipeline{
		c:         c,
		dialer:    dialer,
		a:         arbiter.NewArbiter(c),
		runID:     runID,
		logPrefix: logPrefix,

		queue: make(chan net.Conn, c.GetQueueLength()),

		writerOptions: &tp.WriterOptions{
			WriteDeadline: c.GetTcpWriteDeadline(),
			LogPrefix:     logPrefix,
			LogDebug:      c.LogDebug,
		},
	}

	return p, nil
}

func (p *Pipeline) RunID() uuid.UUID {
	return p.runID
}

func (p *Pipeline) Stats() Snapshot {
	return p.stats.Snapshot()
}

// Run blocks until ctx is cancelled or the configured Duration elapses.
// The pipeline itself never stops on dial or write errors.
func (p *Pipeline) Run(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		err := fmt.Errorf("%s: pipeline already ran", p.logPrefix)
		log.Printf("%s", err.Error())
		return err
	}

	start := time.Now().UTC()
	log.Printf(
		"%s: starting, target=%s, protocolVersion=%d, queueLength=%d, duration=%v",
		p.logPrefix,
		p.c.Address(),
		config.ProtocolVersion,
		cap(p.queue),
		p.c.Duration,
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// without the arbiter the deadline would never fire, so refuse to start
	err := p.a.Dispatch(
		func() {
			// invoked on arbiter goroutine
			p.scheduleReport()
			p.scheduleDeadline(cancel)
		},
	)
	if err != nil {
		log.Printf("%s: failed to schedule timers, not starting, err=%s", p.logPrefix, err.Error())
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p.connectLoop(gctx)
		return nil
	})
	g.Go(func() error {
		p.dispatchLoop(gctx)
		return nil
	})
	err = g.Wait() // wait

	p.drain()

	derr := p.a.Dispatch(
		func() {
			// invoked on arbiter goroutine
			p.stopped = true
			p.releaseReport()
			p.releaseDeadline()
		},
	)
	if derr != nil {
		// timers stay armed until Shutdown stops the scheduler
		log.Printf("%s: failed to release timers, err=%s", p.logPrefix, derr.Error())
	}

	end := time.Now().UTC()
	snapshot := p.stats.Snapshot()
	log.Printf("%s: stopped after %v, %s", p.logPrefix, end.Sub(start), snapshot)

	if p.c.ReportPath != "" {
		werr := WriteReport(
			p.c.ReportPath,
			&Report{
				RunID:           p.runID.String(),
				Target:          p.c.Address(),
				ProtocolVersion: config.ProtocolVersion,
				Start:           start,
				End:             end,
				Stats:           snapshot,
			},
		)
		if werr != nil && err == nil {
			err = werr
		} else if werr == nil {
			log.Printf("%s: report written to %s", p.logPrefix, p.c.ReportPath)
		}
	}

	return err
}

func (p *Pipeline) Shutdown() {
	if p.a != nil {
		p.a.Shutdown() // wait
	}
}

// closes connections that were queued but never dispatched
func (p *Pipeline) drain() {
	var n int
	for {
		select {
		case conn := <-p.queue:
			conn.Close()
			n++
		default:
			if n > 0 {
				log.Printf("%s: closed %d undispatched connections", p.logPrefix, n)
			}
			return
		}
	}
}

// invoked on arbiter goroutine
func (p *Pipeline) scheduleReport() {
	if p.stopped || p.reportScheduled {
		// no-op
		return
	}

	p.a.ScheduleWait(
		arbiter.GroupReport,
		p.c.GetReportInterval(),
		func() {
			// invoked on arbiter goroutine
			p.reportScheduled = false

			snapshot := p.stats.Snapshot()
			log.Printf(
				"%s: queued=%d, total %s, last %v %s",
				p.logPrefix,
				len(p.queue),
				snapshot,
				p.c.GetReportInterval(),
				snapshot.Sub(p.lastSnapshot),
			)
			p.lastSnapshot = snapshot

			p.scheduleReport()
		},
	)
	p.reportScheduled = true
}

// invoked on arbiter goroutine
func (p *Pipeline) releaseReport() {
	if !p.reportScheduled {
		// no-op
		return
	}

	p.a.ReleaseWait(arbiter.GroupReport)
	p.reportScheduled = false
}

// invoked on arbiter goroutine
func (p *Pipeline) scheduleDeadline(cancel context.CancelFunc) {
	if p.stopped || p.deadlineScheduled || p.c.Duration == 0 {
		// no-op
		return
	}

	p.a.ScheduleWait(
		arbiter.GroupDeadline,
		p.c.Duration,
		func() {
			// invoked on arbiter goroutine
			p.deadlineScheduled = false

			log.Printf("%s: duration %v elapsed, stopping", p.logPrefix, p.c.Duration)
			cancel()
		},
	)
	p.deadlineScheduled = true
}

// invoked on arbiter goroutine
func (p *Pipeline) releaseDeadline() {
	if !p.deadlineScheduled {
		// no-op
		return
	}

	p.a.ReleaseWait(arbiter.GroupDeadline)
	p.deadlineScheduled = false
}
