package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Meander-Cloud/go-probe/arbiter"
	"github.com/Meander-Cloud/go-probe/config"
	"github.com/Meander-Cloud/go-probe/net/tcp"
)

// reporter logs sink counts every interval, owned by the arbiter goroutine
type reporter struct {
	a        *arbiter.Arbiter
	s        *tcp.Sink
	h        *tcp.Counter
	interval time.Duration

	last tcp.CounterSnapshot
}

// invoked on arbiter goroutine
func (r *reporter) schedule() {
	r.a.ScheduleWait(
		arbiter.GroupReport,
		r.interval,
		func() {
			// invoked on arbiter goroutine
			snapshot := r.h.Snapshot()
			log.Printf(
				"sink: open=%d, %s, last %v pings=%d",
				r.s.Server().ConnCount(),
				snapshot,
				r.interval,
				snapshot.Pings-r.last.Pings,
			)
			r.last = snapshot

			r.schedule()
		},
	)
}

func newRootCommand() *cobra.Command {
	var (
		debug          bool
		reportInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sink <address>",
		Short: "Accept and decode status probes without answering them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if reportInterval <= 0 {
				return fmt.Errorf("invalid report interval %v", reportInterval)
			}
			cmd.SilenceUsage = true

			h := &tcp.Counter{LogPrefix: "sink", LogDebug: debug}
			s, err := tcp.NewSink(
				&tcp.SinkOptions{
					Address:   args[0],
					Handler:   h,
					LogPrefix: "sink",
					LogDebug:  debug,
				},
			)
			if err != nil {
				return err
			}
			log.Printf("sink: listening on %s", args[0])

			a := arbiter.NewArbiter(
				&config.Config{
					LogPrefix: "sink",
					LogDebug:  debug,
				},
			)
			defer a.Shutdown() // wait

			r := &reporter{
				a:        a,
				s:        s,
				h:        h,
				interval: reportInterval,
			}
			err = a.Dispatch(
				func() {
					// invoked on arbiter goroutine
					r.schedule()
				},
			)
			if err != nil {
				log.Printf("sink: failed to schedule report, err=%s", err.Error())
			}

			sigch := make(chan os.Signal, 1)
			signal.Notify(sigch, syscall.SIGINT, syscall.SIGTERM)

			sig := <-sigch // wait
			log.Printf("sink: received signal %s, exiting", sig.String())
			s.Shutdown() // wait
			log.Printf("sink: %s", h)
			return nil
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "log every connection")
	cmd.Flags().DurationVar(&reportInterval, "report-interval", config.ReportInterval, "interval between count log lines")

	return cmd
}

func main() {
	// enable microsecond and file line logging
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	err := newRootCommand().Execute()
	if err != nil {
		os.Exit(1)
	}
}
