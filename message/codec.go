package message

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	MaxVarIntLen int = 5
	MaxStringLen int = 32767
)

var (
	ErrVarIntTooBig = errors.New("varint is too big")
	ErrStringTooBig = errors.New("string is too big")
)

// AppendVarInt appends v in LEB128 form, negative values take five bytes.
func AppendVarInt(buf []byte, v int32) []byte {
	u := uint32(v)
	for u >= 0x80 {
		buf = append(buf, byte(u)|0x80)
		u >>= 7
	}
	return append(buf, byte(u))
}

func VarIntLen(v int32) int {
	u := uint32(v)
	n := 1
	for u >= 0x80 {
		u >>= 7
		n++
	}
	return n
}

func ReadVarInt(r io.ByteReader) (int32, error) {
	var u uint32
	for i := 0; i < MaxVarIntLen; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		u |= uint32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return int32(u), nil
		}
	}
	return 0, ErrVarIntTooBig
}

func writeVarInt(w io.Writer, v int32) error {
	var scratch [MaxVarIntLen]byte
	_, err := w.Write(AppendVarInt(scratch[:0], v))
	return err
}

func writeString(w io.Writer, s string) error {
	if len(s) > MaxStringLen {
		return fmt.Errorf("%w: len=%d", ErrStringTooBig, len(s))
	}
	if err := writeVarInt(w, int32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func writeUint16(w io.Writer, v uint16) error {
	var scratch [2]byte
	binary.BigEndian.PutUint16(scratch[:], v)
	_, err := w.Write(scratch[:])
	return err
}

func writeInt64(w io.Writer, v int64) error {
	var scratch [8]byte
	binary.BigEndian.PutUint64(scratch[:], uint64(v))
	_, err := w.Write(scratch[:])
	return err
}

func readString(r *bytes.Reader) (string, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return "", err
	}
	if n < 0 || int(n) > MaxStringLen {
		return "", fmt.Errorf("%w: len=%d", ErrStringTooBig, n)
	}
	if int(n) > r.Len() {
		return "", io.ErrUnexpectedEOF
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readUint16(r *bytes.Reader) (uint16, error) {
	var scratch [2]byte
	if _, err := io.ReadFull(r, scratch[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(scratch[:]), nil
}

func readInt64(r *bytes.Reader) (int64, error) {
	var scratch [8]byte
	if _, err := io.ReadFull(r, scratch[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(scratch[:])), nil
}

func expectDrained(r *bytes.Reader, name string) error {
	if r.Len() != 0 {
		return fmt.Errorf("%s: %d trailing bytes", name, r.Len())
	}
	return nil
}
