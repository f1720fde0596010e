package protocol

import (
	"bytes"
	"fmt"
	"log"
	"net"
	"time"

	m "github.com/Meander-Cloud/go-probe/message"
)

type WriterOptions struct {
	WriteDeadline time.Duration
	LogPrefix     string
	LogDebug      bool
}

// Writer frames outbound packets onto one connection. It never reads.
// Not safe for concurrent use.
type Writer struct {
	options    *WriterOptions
	conn       net.Conn
	descriptor string
	body       bytes.Buffer
	frame      []byte
}

func NewWriter(options *WriterOptions, connID uint32, conn net.Conn) *Writer {
	w := &Writer{
		options: options,
		conn:    conn,
		descriptor: fmt.Sprintf(
			"[%d]-><%s>",
			connID,
			conn.RemoteAddr().String(),
		),
		frame: make([]byte, 0, typicalBufferLen),
	}
	w.body.Grow(typicalBufferLen)
	return w
}

func (w *Writer) Descriptor() string {
	return w.descriptor
}

// Write sends VarInt(len) | VarInt(id) | body in a single conn.Write.
func (w *Writer) Write(outbound *m.Outbound) error {
	id := outbound.ID()
	if id == m.InvalidID {
		err := fmt.Errorf("%s: %s: invalid outbound=%+v", w.options.LogPrefix, w.descriptor, outbound)
		log.Printf("%s", err.Error())
		return err
	}

	w.body.Reset()
	w.body.Write(m.AppendVarInt(w.frame[:0], id))

	err := outbound.Write(&w.body)
	if err != nil {
		if w.options.LogDebug {
			log.Printf("%s: %s: failed to encode %s packet id=0x%02X, err=%s", w.options.LogPrefix, w.descriptor, outbound.State(), id, err.Error())
		}
		return err
	}

	bodyLen := w.body.Len()
	if int32(bodyLen) > maxFrameLen {
		err = fmt.Errorf("%s: %s: frame length %d too large", w.options.LogPrefix, w.descriptor, bodyLen)
		log.Printf("%s", err.Error())
		return err
	}

	w.frame = m.AppendVarInt(w.frame[:0], int32(bodyLen))
	w.frame = append(w.frame, w.body.Bytes()...)

	if w.options.WriteDeadline > 0 {
		w.conn.SetWriteDeadline(time.Now().UTC().Add(w.options.WriteDeadline))
	}
	n, err := w.conn.Write(w.frame)
	if err != nil {
		if w.options.LogDebug {
			log.Printf("%s: %s: failed to write %d bytes %X, err=%s", w.options.LogPrefix, w.descriptor, len(w.frame), w.frame, err.Error())
		}
		return err
	}
	if w.options.LogDebug {
		log.Printf("%s: %s: wrote %d bytes, %s packet id=0x%02X", w.options.LogPrefix, w.descriptor, n, outbound.State(), id)
	}

	return nil
}
