package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"sync/atomic"

	"github.com/Meander-Cloud/go-transport/tcp"

	m "github.com/Meander-Cloud/go-probe/message"
)

// ServerHandler receives decoded serverbound packets, invoked on the ReadLoop goroutine.
type ServerHandler interface {
	ClientIntention(*Server, *ConnState, *m.ClientIntention)
	StatusRequest(*Server, *ConnState, *m.StatusRequest)
	PingRequest(*Server, *ConnState, *m.PingRequest)
}

type ServerOptions struct {
	*tcp.Options
	ServerHandler
}

// Server decodes status probes on accepted connections. It never replies.
type Server struct {
	options    *ServerOptions
	inShutdown atomic.Bool

	// if increment overflow will wrap to zero
	connIDGen atomic.Uint32

	mutex   sync.Mutex
	connMap map[uint32]*ConnState // connID -> tcp connection state
}

func NewServer(options *ServerOptions) (*Server, error) {
	if options.Options == nil {
		err := fmt.Errorf("nil tcp Options")
		log.Printf("%s", err.Error())
		return nil, err
	}

	if options.ServerHandler == nil {
		err := fmt.Errorf("%s: nil ServerHandler", options.LogPrefix)
		log.Printf("%s", err.Error())
		return nil, err
	}

	p := &Server{
		options:    options,
		inShutdown: atomic.Bool{},

		connIDGen: atomic.Uint32{},

		mutex:   sync.Mutex{},
		connMap: make(map[uint32]*ConnState),
	}

	return p, nil
}

func (p *Server) Options() *ServerOptions {
	return p.options
}

func (p *Server) Close() {
	log.Printf("%s: protocol closing", p.options.LogPrefix)
	p.inShutdown.Store(true)

	func() {
		p.mutex.Lock()
		defer p.mutex.Unlock()

		for _, connState := range p.connMap {
			connState.Conn.Close()
		}
	}()

	log.Printf("%s: protocol closed", p.options.LogPrefix)
}

func (p *Server) ConnCount() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return len(p.connMap)
}

func (p *Server) ReadLoop(conn net.Conn) {
	connState := &ConnState{
		ConnID: p.getNextConnID(),
		Conn:   conn,
		Data:   atomic.Pointer[ConnVolatileData]{},
		State:  atomic.Uint32{},
	}
	cvd := &ConnVolatileData{
		// to be communicated by peer during handshake
		ClientIntention: nil,

		Descriptor: fmt.Sprintf(
			"[%d]<-<%s>",
			connState.ConnID,
			conn.RemoteAddr().String(),
		),
	}
	connState.Data.Store(cvd)
	connState.State.Store(uint32(m.StateHandshake))

	network := conn.RemoteAddr().Network()

	if p.options.LogDebug {
		log.Printf("%s: %s: new %s connection", p.options.LogPrefix, cvd.Descriptor, network)
	}

	defer func() {
		func() {
			p.mutex.Lock()
			defer p.mutex.Unlock()

			_, found := p.connMap[connState.ConnID]
			if !found {
				log.Printf("%s: %s: connID=%d not found in connection map", p.options.LogPrefix, cvd.Descriptor, connState.ConnID)
				return
			}
			delete(p.connMap, connState.ConnID)
		}()

		conn.Close()
		if p.options.LogDebug {
			log.Printf("%s: %s: %s connection closed, selfInShutdown=%t", p.options.LogPrefix, cvd.Descriptor, network, p.inShutdown.Load())
		}
	}()

	func() {
		p.mutex.Lock()
		defer p.mutex.Unlock()

		cached, found := p.connMap[connState.ConnID]
		if found {
			log.Printf("%s: %s: overriding duplicate connection %s", p.options.LogPrefix, cvd.Descriptor, cached.Data.Load().Descriptor)
		}
		p.connMap[connState.ConnID] = connState
	}()

	handlePacket := func(id int32, body []byte) error {
		state := m.State(connState.State.Load())
		switch state {
		case m.StateHandshake:
			packet, err := m.ReadServerboundHandshake(id, body)
			if err != nil {
				err = fmt.Errorf("%s: %s: %w", p.options.LogPrefix, cvd.Descriptor, err)
				log.Printf("%s", err.Error())
				return err
			}
			intention := packet.ClientIntention

			// update volatile data
			cvd = &ConnVolatileData{
				ClientIntention: intention,
				Descriptor: fmt.Sprintf(
					"[%d]<-%s:%d<%s>",
					connState.ConnID,
					intention.Hostname,
					intention.Port,
					conn.RemoteAddr().String(),
				),
			}
			connState.Data.Store(cvd) // atomic
			connState.State.Store(uint32(intention.Intention.NextState()))

			p.options.ClientIntention(p, connState, intention)

			if intention.Intention != m.IntentionStatus {
				err = fmt.Errorf("%s: %s: unsupported intention=%s", p.options.LogPrefix, cvd.Descriptor, intention.Intention)
				log.Printf("%s", err.Error())
				return err
			}
			return nil
		case m.StateStatus:
			packet, err := m.ReadServerboundStatus(id, body)
			if err != nil {
				err = fmt.Errorf("%s: %s: %w", p.options.LogPrefix, cvd.Descriptor, err)
				log.Printf("%s", err.Error())
				return err
			}

			if packet.StatusRequest != nil {
				p.options.StatusRequest(p, connState, packet.StatusRequest)
			} else if packet.PingRequest != nil {
				p.options.PingRequest(p, connState, packet.PingRequest)
			}
			return nil
		default:
			err := fmt.Errorf("%s: %s: unsupported state=%s", p.options.LogPrefix, cvd.Descriptor, state)
			log.Printf("%s", err.Error())
			return err
		}
	}

	reader := bufio.NewReaderSize(conn, typicalBufferLen)
	for {
		id, body, err := ReadFrame(reader)
		if err != nil {
			if p.options.LogDebug || !errors.Is(err, io.EOF) {
				log.Printf("%s: %s: failed to read frame, err=%s", p.options.LogPrefix, cvd.Descriptor, err.Error())
			}
			return
		}
		if p.options.LogDebug {
			log.Printf("%s: %s: read %s packet id=0x%02X, %d body bytes", p.options.LogPrefix, cvd.Descriptor, m.State(connState.State.Load()), id, len(body))
		}

		err = handlePacket(id, body)
		if err != nil {
			return
		}
	}
}

// invoked on ReadLoop goroutine
func (p *Server) getNextConnID() uint32 {
	return p.connIDGen.Add(1)
}
