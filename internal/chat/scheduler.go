package chat

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending callback that can be cancelled.
type Timer interface {
	// Stop cancels the callback and reports whether it was still pending.
	Stop() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemScheduler schedules callbacks on the runtime timer.
type SystemScheduler struct{}

// AfterFunc implements Scheduler.
func (SystemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualScheduler fires callbacks only when Advance moves its clock past
// their deadline. Callbacks run on the goroutine calling Advance.
type ManualScheduler struct {
	mu      sync.Mutex
	elapsed time.Duration
	seq     int
	timers  []*manualTimer
}

type manualTimer struct {
	s    *ManualScheduler
	at   time.Duration
	seq  int
	f    func()
	done bool
}

// NewManualScheduler returns a scheduler whose clock starts at zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc implements Scheduler.
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &manualTimer{s: s, at: s.elapsed + d, seq: s.seq, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock forward by d and runs every callback that became
// due, in deadline order.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.elapsed + d
	for {
		next := s.nextDueLocked(target)
		if next == nil {
			break
		}
		next.done = true
		s.elapsed = next.at
		s.mu.Unlock()
		next.f()
		s.mu.Lock()
	}
	s.elapsed = target
	s.compactLocked()
	s.mu.Unlock()
}

// Pending reports how many callbacks are still scheduled.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.timers {
		if !t.done {
			n++
		}
	}
	return n
}

func (s *ManualScheduler) nextDueLocked(target time.Duration) *manualTimer {
	var due []*manualTimer
	for _, t := range s.timers {
		if !t.done && t.at <= target {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].at == due[j].at {
			return due[i].seq < due[j].seq
		}
		return due[i].at < due[j].at
	})
	return due[0]
}

func (s *ManualScheduler) compactLocked() {
	kept := s.timers[:0]
	for _, t := range s.timers {
		if !t.done {
			kept = append(kept, t)
		}
	}
	s.timers = kept
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	return true
}
