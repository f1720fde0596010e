package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Meander-Cloud/go-probe/config"
	"github.com/Meander-Cloud/go-probe/pipeline"
)

type flags struct {
	envFile        string
	duration       time.Duration
	reportInterval time.Duration
	reportPath     string
	dialTimeout    time.Duration
	writeDeadline  time.Duration
	queueLength    uint16
	debug          bool
}

func newRootCommand() *cobra.Command {
	cmd, _ := newCommand()
	return cmd
}

func newCommand() (*cobra.Command, *flags) {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "go-probe <hostname> <port>",
		Short: "Stress a Minecraft server with back to back status probes",
		Long: `go-probe dials the target as fast as it can and, on every connection,
writes a status handshake, a status request and a ping without reading the
reply. Point it only at servers you operate.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := strconv.ParseUint(args[1], 10, 16)
			if err != nil {
				return fmt.Errorf("invalid port %q: %w", args[1], err)
			}
			cmd.SilenceUsage = true

			c := &config.Config{
				Hostname:  args[0],
				Port:      uint16(port),
				LogPrefix: "probe",
			}

			err = config.LoadEnv(f.envFile, c)
			if err != nil {
				return err
			}
			f.apply(cmd, c)

			return run(c)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.envFile, "env-file", "", "env file with PROBE_* settings, defaults to ./.env when present")
	fs.DurationVar(&f.duration, "duration", 0, "stop after this long, 0 runs until interrupted")
	fs.DurationVar(&f.reportInterval, "report-interval", config.ReportInterval, "interval between progress log lines")
	fs.StringVar(&f.reportPath, "report", "", "write a msgpack run report to this path on exit")
	fs.DurationVar(&f.dialTimeout, "dial-timeout", config.TcpDialTimeout, "timeout of a single connect attempt")
	fs.DurationVar(&f.writeDeadline, "write-deadline", config.TcpWriteDeadline, "deadline of a single packet write")
	fs.Uint16Var(&f.queueLength, "queue-length", config.QueueLength, "connections buffered between connector and dispatcher")
	fs.BoolVar(&f.debug, "debug", false, "log every connection")

	return cmd, f
}

// flags given on the command line override env settings
func (f *flags) apply(cmd *cobra.Command, c *config.Config) {
	fs := cmd.Flags()
	if fs.Changed("duration") {
		c.Duration = f.duration
	}
	if fs.Changed("report-interval") {
		c.ReportInterval = f.reportInterval
	}
	if fs.Changed("report") {
		c.ReportPath = f.reportPath
	}
	if fs.Changed("dial-timeout") {
		c.TcpDialTimeout = f.dialTimeout
	}
	if fs.Changed("write-deadline") {
		c.TcpWriteDeadline = f.writeDeadline
	}
	if fs.Changed("queue-length") {
		c.QueueLength = f.queueLength
	}
	if fs.Changed("debug") {
		c.LogDebug = f.debug
	}
}

func run(c *config.Config) error {
	p, err := pipeline.New(c, nil)
	if err != nil {
		return err
	}
	defer p.Shutdown() // wait

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = p.Run(ctx)
	if err != nil {
		return err
	}

	if ctx.Err() != nil {
		log.Printf("%s: received signal, exiting", c.LogPrefix)
	}
	return nil
}

func main() {
	// enable microsecond and file line logging
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	err := newRootCommand().Execute()
	if err != nil {
		os.Exit(1)
	}
}
