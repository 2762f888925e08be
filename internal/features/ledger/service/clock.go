package service

import (
	"sync/atomic"
	"time"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
func SystemClock() Clock { return systemClock{} }

// stamper issues strictly increasing microsecond timestamps. When the clock
// stalls or steps back, the previous value plus one microsecond is used.
type stamper struct {
	clock Clock
	last  atomic.Int64
}

func (s *stamper) next() time.Time {
	now := s.clock.Now().UnixMicro()
	for {
		last := s.last.Load()
		candidate := now
		if candidate <= last {
			candidate = last + 1
		}
		if s.last.CompareAndSwap(last, candidate) {
			return time.UnixMicro(candidate).UTC()
		}
	}
}
