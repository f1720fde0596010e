package message

import (
	"bytes"
	"fmt"
	"io"
)

const (
	ClientIntentionID int32 = 0x00
)

type ClientIntention struct {
	ProtocolVersion uint32
	Hostname        string
	Port            uint16
	Intention       Intention
}

func (p *ClientIntention) ID() int32 {
	return ClientIntentionID
}

func (p *ClientIntention) Write(w io.Writer) error {
	if err := writeVarInt(w, int32(p.ProtocolVersion)); err != nil {
		return err
	}
	if err := writeString(w, p.Hostname); err != nil {
		return err
	}
	if err := writeUint16(w, p.Port); err != nil {
		return err
	}
	return writeVarInt(w, int32(p.Intention))
}

func ReadClientIntention(body []byte) (*ClientIntention, error) {
	r := bytes.NewReader(body)

	protocolVersion, err := ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("ClientIntention: protocol version: %w", err)
	}
	hostname, err := readString(r)
	if err != nil {
		return nil, fmt.Errorf("ClientIntention: hostname: %w", err)
	}
	port, err := readUint16(r)
	if err != nil {
		return nil, fmt.Errorf("ClientIntention: port: %w", err)
	}
	intention, err := ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("ClientIntention: intention: %w", err)
	}
	if err := expectDrained(r, "ClientIntention"); err != nil {
		return nil, err
	}

	return &ClientIntention{
		ProtocolVersion: uint32(protocolVersion),
		Hostname:        hostname,
		Port:            port,
		Intention:       Intention(intention),
	}, nil
}

// ServerboundHandshake holds the packets a client may send in Handshake state.
// Exactly one field is set.
type ServerboundHandshake struct {
	ClientIntention *ClientIntention
}

func (p *ServerboundHandshake) ID() int32 {
	if p.ClientIntention != nil {
		return p.ClientIntention.ID()
	}
	return InvalidID
}

func (p *ServerboundHandshake) Write(w io.Writer) error {
	if p.ClientIntention != nil {
		return p.ClientIntention.Write(w)
	}
	return fmt.Errorf("empty ServerboundHandshake=%+v", *p)
}

func ReadServerboundHandshake(id int32, body []byte) (*ServerboundHandshake, error) {
	switch id {
	case ClientIntentionID:
		p, err := ReadClientIntention(body)
		if err != nil {
			return nil, err
		}
		return &ServerboundHandshake{ClientIntention: p}, nil
	default:
		return nil, fmt.Errorf("unknown %s packet id=0x%02X", StateHandshake, id)
	}
}
