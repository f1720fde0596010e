package pipeline

import (
	"bytes"
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

var errBrokenPipe = errors.New("broken pipe")

type fakeAddr string

func (a fakeAddr) Network() string { return "tcp" }
func (a fakeAddr) String() string  { return string(a) }

// recorder collects the first write of every fake conn, in write order
type recorder struct {
	mutex sync.Mutex
	order []int
}

func (r *recorder) record(id int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.order = append(r.order, id)
}

func (r *recorder) snapshot() []int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]int(nil), r.order...)
}

type fakeConn struct {
	id       int
	rec      *recorder
	failOn   map[int]bool // 1-based write index -> fail
	mutex    sync.Mutex
	writes   [][]byte
	attempts int
	closed   atomic.Bool
}

func (c *fakeConn) Write(b []byte) (int, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.attempts++
	if c.attempts == 1 && c.rec != nil {
		c.rec.record(c.id)
	}
	if c.failOn[c.attempts] {
		return 0, errBrokenPipe
	}
	c.writes = append(c.writes, bytes.Clone(b))
	return len(b), nil
}

func (c *fakeConn) written() ([][]byte, int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([][]byte(nil), c.writes...), c.attempts
}

func (c *fakeConn) Read(_ []byte) (int, error)         { panic("probe must never read") }
func (c *fakeConn) Close() error                       { c.closed.Store(true); return nil }
func (c *fakeConn) LocalAddr() net.Addr                { return fakeAddr("127.0.0.1:50000") }
func (c *fakeConn) RemoteAddr() net.Addr               { return fakeAddr("127.0.0.1:25565") }
func (c *fakeConn) SetDeadline(_ time.Time) error      { return nil }
func (c *fakeConn) SetReadDeadline(_ time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(_ time.Time) error { return nil }

// fakeDialer fails the first failures dials, then hands out fake conns
type fakeDialer struct {
	failures int64
	rec      *recorder
	failOn   map[int]bool

	attempts atomic.Int64
	mutex    sync.Mutex
	conns    []*fakeConn
}

func (d *fakeDialer) DialContext(_ context.Context, _, _ string) (net.Conn, error) {
	n := d.attempts.Add(1)
	if n <= d.failures {
		return nil, &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	c := &fakeConn{
		id:     len(d.conns) + 1,
		rec:    d.rec,
		failOn: d.failOn,
	}
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *fakeDialer) dialed() []*fakeConn {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return append([]*fakeConn(nil), d.conns...)
}
