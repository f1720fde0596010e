package pipeline

import (
	"fmt"
	"sync/atomic"
)

// Stats is updated lock-free from the connect and dispatch loops.
type Stats struct {
	DialAttempts  atomic.Uint64
	DialFailures  atomic.Uint64
	Enqueued      atomic.Uint64
	Dispatched    atomic.Uint64
	WriteAttempts atomic.Uint64
	WriteFailures atomic.Uint64
}

type Snapshot struct {
	DialAttempts  uint64 `msgpack:"dial_attempts"`
	DialFailures  uint64 `msgpack:"dial_failures"`
	Enqueued      uint64 `msgpack:"enqueued"`
	Dispatched    uint64 `msgpack:"dispatched"`
	WriteAttempts uint64 `msgpack:"write_attempts"`
	WriteFailures uint64 `msgpack:"write_failures"`
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		DialAttempts:  s.DialAttempts.Load(),
		DialFailures:  s.DialFailures.Load(),
		Enqueued:      s.Enqueued.Load(),
		Dispatched:    s.Dispatched.Load(),
		WriteAttempts: s.WriteAttempts.Load(),
		WriteFailures: s.WriteFailures.Load(),
	}
}

func (s Snapshot) Sub(prev Snapshot) Snapshot {
	return Snapshot{
		DialAttempts:  s.DialAttempts - prev.DialAttempts,
		DialFailures:  s.DialFailures - prev.DialFailures,
		Enqueued:      s.Enqueued - prev.Enqueued,
		Dispatched:    s.Dispatched - prev.Dispatched,
		WriteAttempts: s.WriteAttempts - prev.WriteAttempts,
		WriteFailures: s.WriteFailures - prev.WriteFailures,
	}
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"dial=%d/%d failed, enqueued=%d, dispatched=%d, write=%d/%d failed",
		s.DialFailures,
		s.DialAttempts,
		s.Enqueued,
		s.Dispatched,
		s.WriteFailures,
		s.WriteAttempts,
	)
}
