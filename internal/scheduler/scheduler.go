// Package scheduler runs keyed one-shot callbacks on a quartz clock.
package scheduler

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// Executor runs a fired callback. The default runs it on the timer goroutine;
// callers that serialize engine access pass their loop's Post here.
type Executor func(func())

// Scheduler keeps at most one pending callback per key.
type Scheduler struct {
	clock  quartz.Clock
	exec   Executor
	logger *log.Logger

	mu     sync.Mutex
	timers map[string]*pending
	nextID uint64
}

type pending struct {
	id    uint64
	timer *quartz.Timer
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithExecutor routes fired callbacks through exec.
func WithExecutor(exec Executor) Option {
	return func(s *Scheduler) { s.exec = exec }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

// New creates a scheduler on clock.
func New(clock quartz.Clock, opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:  clock,
		exec:   func(fn func()) { fn() },
		logger: log.Default(),
		timers: make(map[string]*pending),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithPrefix("scheduler")
	return s
}

// ScheduleOnce runs fn after delay, replacing any callback pending under key.
func (s *Scheduler) ScheduleOnce(delay time.Duration, key string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked(key)
	s.nextID++
	id := s.nextID
	timer := s.clock.AfterFunc(delay, func() { s.fire(key, id, fn) }, "scheduler", key)
	s.timers[key] = &pending{id: id, timer: timer}
	s.logger.Debug("Scheduled callback", "key", key, "delay", delay)
}

// Cancel drops the callback pending under key. Cancelling a key that
// already fired or was never scheduled does nothing.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopLocked(key) {
		s.logger.Debug("Cancelled callback", "key", key)
	}
}

// Pending reports whether a callback is waiting under key.
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[key]
	return ok
}

// Stop cancels every pending callback.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.timers {
		s.stopLocked(key)
	}
}

func (s *Scheduler) stopLocked(key string) bool {
	p, ok := s.timers[key]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(s.timers, key)
	return true
}

// fire runs fn unless the entry was replaced or cancelled after the timer
// went off but before it got here.
func (s *Scheduler) fire(key string, id uint64, fn func()) {
	s.mu.Lock()
	p, ok := s.timers[key]
	if !ok || p.id != id {
		s.mu.Unlock()
		return
	}
	delete(s.timers, key)
	s.mu.Unlock()

	s.exec(fn)
}
