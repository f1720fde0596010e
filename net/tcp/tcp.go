package tcp

import (
	"fmt"
	"log"
	"time"

	"github.com/Meander-Cloud/go-transport/tcp"

	tp "github.com/Meander-Cloud/go-probe/net/tcp/protocol"
)

const (
	// the sink never dials, these only satisfy transport defaults
	tcpKeepAliveInterval time.Duration = time.Second * 17
	tcpKeepAliveCount    uint16        = 2
	tcpDialTimeout       time.Duration = time.Second * 3
	tcpReconnectInterval time.Duration = time.Second * 5
	tcpReconnectLogEvery uint32        = 60
)

type SinkOptions struct {
	Address string
	Handler tp.ServerHandler

	LogPrefix string
	LogDebug  bool
}

// Sink listens on Address and decodes every inbound status probe.
type Sink struct {
	protocol  *tp.Server
	tcpServer *tcp.TcpServer
}

func NewSink(options *SinkOptions) (*Sink, error) {
	if options.Address == "" {
		err := fmt.Errorf("%s: invalid Address=%s", options.LogPrefix, options.Address)
		log.Printf("%s", err.Error())
		return nil, err
	}

	s := &Sink{
		protocol:  nil,
		tcpServer: nil,
	}

	var err error
	defer func() {
		if err != nil {
			s.Shutdown() // wait
		}
	}()

	s.protocol, err = tp.NewServer(
		&tp.ServerOptions{
			Options: &tcp.Options{
				Address:           options.Address,
				KeepAliveInterval: tcpKeepAliveInterval,
				KeepAliveCount:    tcpKeepAliveCount,
				DialTimeout:       tcpDialTimeout,
				ReconnectInterval: tcpReconnectInterval,
				ReconnectLogEvery: tcpReconnectLogEvery,
				Protocol:          nil,
				LogPrefix:         options.LogPrefix,
				LogDebug:          options.LogDebug,
			},
			ServerHandler: options.Handler,
		},
	)
	if err != nil {
		return nil, err
	}
	s.protocol.Options().Protocol = s.protocol

	s.tcpServer, err = tcp.NewTcpServer(s.protocol.Options().Options)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Sink) Shutdown() {
	if s.tcpServer != nil {
		s.tcpServer.Shutdown() // wait
	}
}

func (s *Sink) Server() *tp.Server {
	return s.protocol
}
