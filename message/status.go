package message

import (
	"bytes"
	"fmt"
	"io"
)

const (
	StatusRequestID int32 = 0x00
	PingRequestID   int32 = 0x01
)

type StatusRequest struct{}

func (p *StatusRequest) ID() int32 {
	return StatusRequestID
}

func (p *StatusRequest) Write(_ io.Writer) error {
	return nil
}

type PingRequest struct {
	Time int64
}

func (p *PingRequest) ID() int32 {
	return PingRequestID
}

func (p *PingRequest) Write(w io.Writer) error {
	return writeInt64(w, p.Time)
}

// ServerboundStatus holds the packets a client may send in Status state.
// Exactly one field is set.
type ServerboundStatus struct {
	StatusRequest *StatusRequest
	PingRequest   *PingRequest
}

func (p *ServerboundStatus) ID() int32 {
	if p.StatusRequest != nil {
		return p.StatusRequest.ID()
	} else if p.PingRequest != nil {
		return p.PingRequest.ID()
	}
	return InvalidID
}

func (p *ServerboundStatus) Write(w io.Writer) error {
	if p.StatusRequest != nil {
		return p.StatusRequest.Write(w)
	} else if p.PingRequest != nil {
		return p.PingRequest.Write(w)
	}
	return fmt.Errorf("empty ServerboundStatus=%+v", *p)
}

func ReadServerboundStatus(id int32, body []byte) (*ServerboundStatus, error) {
	r := bytes.NewReader(body)

	switch id {
	case StatusRequestID:
		if err := expectDrained(r, "StatusRequest"); err != nil {
			return nil, err
		}
		return &ServerboundStatus{StatusRequest: &StatusRequest{}}, nil
	case PingRequestID:
		t, err := readInt64(r)
		if err != nil {
			return nil, fmt.Errorf("PingRequest: time: %w", err)
		}
		if err := expectDrained(r, "PingRequest"); err != nil {
			return nil, err
		}
		return &ServerboundStatus{PingRequest: &PingRequest{Time: t}}, nil
	default:
		return nil, fmt.Errorf("unknown %s packet id=0x%02X", StateStatus, id)
	}
}
