package config

import (
	"fmt"
	"log"
	"net"
	"strconv"
	"time"
)

const (
	// protocol number of Minecraft Java Edition 1.16.5
	ProtocolVersion uint32 = 754
)

const (
	// defaults for when not provided in Config
	QueueLength        uint16        = 1000
	EventChannelLength uint16        = 256
	TcpDialTimeout     time.Duration = time.Second * 3
	TcpWriteDeadline   time.Duration = time.Second * 3
	ReportInterval     time.Duration = time.Second * 5
)

const (
	maxHostnameLen int = 255
)

type Config struct {
	Hostname string
	Port     uint16

	QueueLength        uint16
	EventChannelLength uint16

	TcpDialTimeout   time.Duration
	TcpWriteDeadline time.Duration

	// zero runs until the process is told to stop
	Duration       time.Duration
	ReportInterval time.Duration
	ReportPath     string

	LogPrefix string
	LogDebug  bool
}

func (c *Config) Validate() error {
	if c == nil {
		err := fmt.Errorf("nil config")
		log.Printf("%s", err.Error())
		return err
	}

	if c.Hostname == "" {
		err := fmt.Errorf("%s: invalid Hostname=%s", c.LogPrefix, c.Hostname)
		log.Printf("%s", err.Error())
		return err
	}

	if len(c.Hostname) > maxHostnameLen {
		err := fmt.Errorf("%s: Hostname length %d exceeds %d bytes", c.LogPrefix, len(c.Hostname), maxHostnameLen)
		log.Printf("%s", err.Error())
		return err
	}

	// port zero is deliberately accepted, connects will simply keep failing

	if c.Duration < 0 {
		err := fmt.Errorf("%s: invalid Duration=%v", c.LogPrefix, c.Duration)
		log.Printf("%s", err.Error())
		return err
	}

	if c.ReportInterval < 0 {
		err := fmt.Errorf("%s: invalid ReportInterval=%v", c.LogPrefix, c.ReportInterval)
		log.Printf("%s", err.Error())
		return err
	}

	if c.TcpDialTimeout < 0 {
		err := fmt.Errorf("%s: invalid TcpDialTimeout=%v", c.LogPrefix, c.TcpDialTimeout)
		log.Printf("%s", err.Error())
		return err
	}

	if c.TcpWriteDeadline < 0 {
		err := fmt.Errorf("%s: invalid TcpWriteDeadline=%v", c.LogPrefix, c.TcpWriteDeadline)
		log.Printf("%s", err.Error())
		return err
	}

	return nil
}

// Address joins hostname and port in a form accepted by net.Dial.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Hostname, strconv.FormatUint(uint64(c.Port), 10))
}

func (c *Config) GetQueueLength() uint16 {
	if c.QueueLength == 0 {
		return QueueLength
	}
	return c.QueueLength
}

func (c *Config) GetEventChannelLength() uint16 {
	if c.EventChannelLength == 0 {
		return EventChannelLength
	}
	return c.EventChannelLength
}

func (c *Config) GetTcpDialTimeout() time.Duration {
	if c.TcpDialTimeout == 0 {
		return TcpDialTimeout
	}
	return c.TcpDialTimeout
}

func (c *Config) GetTcpWriteDeadline() time.Duration {
	if c.TcpWriteDeadline == 0 {
		return TcpWriteDeadline
	}
	return c.TcpWriteDeadline
}

func (c *Config) GetReportInterval() time.Duration {
	if c.ReportInterval == 0 {
		return ReportInterval
	}
	return c.ReportInterval
}
