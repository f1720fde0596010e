package protocol

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"
	"sync/atomic"

	m "github.com/Meander-Cloud/go-probe/message"
)

const (
	typicalBufferLen int   = 512
	maxFrameLen      int32 = 1<<21 - 1 // largest length a three byte VarInt can carry
)

type ConnVolatileData struct {
	// set once the peer's handshake is decoded
	ClientIntention *m.ClientIntention
	Descriptor      string
}

type ConnState struct {
	ConnID uint32
	Conn   net.Conn
	// callers can set pointers but must not modify pointed data, to allow concurrent immutable read
	Data  atomic.Pointer[ConnVolatileData]
	State atomic.Uint32 // m.State
}

// ReadFrame reads one length-prefixed packet and returns its ID and body.
func ReadFrame(r *bufio.Reader) (int32, []byte, error) {
	frameLen, err := m.ReadVarInt(r)
	if err != nil {
		return 0, nil, err
	}
	if frameLen <= 0 || frameLen > maxFrameLen {
		return 0, nil, fmt.Errorf("invalid frame length %d", frameLen)
	}

	frame := make([]byte, frameLen)
	_, err = io.ReadFull(r, frame)
	if err != nil {
		return 0, nil, err
	}

	fr := bytes.NewReader(frame)
	id, err := m.ReadVarInt(fr)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid packet id in frame %X, err=%w", frame, err)
	}

	return id, frame[len(frame)-fr.Len():], nil
}
