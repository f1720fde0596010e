package message

import (
	"fmt"
	"io"
)

type OutboundKind uint8

const (
	OutboundInvalid   OutboundKind = 0
	OutboundHandshake OutboundKind = 1
	OutboundStatus    OutboundKind = 2
)

func (k OutboundKind) String() string {
	switch k {
	case OutboundInvalid:
		return "Invalid Kind"
	case OutboundHandshake:
		return "Handshake"
	case OutboundStatus:
		return "Status"
	default:
		return "Unknown Kind"
	}
}

// Outbound lets packets from different states go through one writer. It is
// write-only, Read panics.
type Outbound struct {
	Kind      OutboundKind
	Handshake *ServerboundHandshake
	Status    *ServerboundStatus
}

func NewHandshake(p *ServerboundHandshake) *Outbound {
	return &Outbound{
		Kind:      OutboundHandshake,
		Handshake: p,
	}
}

func NewStatus(p *ServerboundStatus) *Outbound {
	return &Outbound{
		Kind:   OutboundStatus,
		Status: p,
	}
}

func (o *Outbound) ID() int32 {
	switch o.Kind {
	case OutboundHandshake:
		if o.Handshake == nil {
			return InvalidID
		}
		return o.Handshake.ID()
	case OutboundStatus:
		if o.Status == nil {
			return InvalidID
		}
		return o.Status.ID()
	default:
		return InvalidID
	}
}

func (o *Outbound) State() State {
	switch o.Kind {
	case OutboundHandshake:
		return StateHandshake
	case OutboundStatus:
		return StateStatus
	default:
		return State(0xFF)
	}
}

func (o *Outbound) Write(w io.Writer) error {
	switch o.Kind {
	case OutboundHandshake:
		if o.Handshake == nil {
			return fmt.Errorf("nil %s payload", o.Kind)
		}
		return o.Handshake.Write(w)
	case OutboundStatus:
		if o.Status == nil {
			return fmt.Errorf("nil %s payload", o.Kind)
		}
		return o.Status.Write(w)
	default:
		return fmt.Errorf("invalid outbound kind=%s", o.Kind)
	}
}

func (o *Outbound) Read(id int32, _ []byte) {
	panic(fmt.Sprintf("unimplemented: Outbound is write-only, refusing to read packet id=0x%02X", id))
}
