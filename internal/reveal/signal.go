// Package reveal implements the transient "cart opened" display signal. It is
// a UI concern and carries no cart state.
package reveal

import (
	"sync"
	"time"
)

const DefaultInterval = 3 * time.Second

// Signal is open for a fixed interval after each Open call. Reopening while
// open restarts the interval.
type Signal struct {
	interval time.Duration
	onChange func(open bool)

	mu    sync.Mutex
	open  bool
	timer *time.Timer
	gen   uint64
}

type Option func(*Signal)

// WithOnChange registers an observer called after every open/closed
// transition. It runs outside the signal's lock.
func WithOnChange(fn func(open bool)) Option {
	return func(s *Signal) {
		s.onChange = fn
	}
}

func New(interval time.Duration, opts ...Option) *Signal {
	if interval <= 0 {
		interval = DefaultInterval
	}

	s := &Signal{interval: interval}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Signal) Open() {
	s.mu.Lock()
	s.stopLocked()
	changed := !s.open
	s.open = true
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(s.interval, func() {
		s.expire(gen)
	})
	s.mu.Unlock()

	if changed {
		s.notify(true)
	}
}

func (s *Signal) Close() {
	s.mu.Lock()
	s.stopLocked()
	changed := s.open
	s.open = false
	s.gen++
	s.mu.Unlock()

	if changed {
		s.notify(false)
	}
}

// Stop cancels a pending automatic close and leaves the state as it is.
func (s *Signal) Stop() {
	s.mu.Lock()
	s.stopLocked()
	s.gen++
	s.mu.Unlock()
}

func (s *Signal) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.open
}

func (s *Signal) expire(gen uint64) {
	s.mu.Lock()
	// a later Open, Close or Stop superseded this timer
	if gen != s.gen || !s.open {
		s.mu.Unlock()
		return
	}
	s.open = false
	s.timer = nil
	s.mu.Unlock()

	s.notify(false)
}

func (s *Signal) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Signal) notify(open bool) {
	if s.onChange != nil {
		s.onChange(open)
	}
}
