// Package quiztest provides helpers for driving a quiz controller in tests.
package quiztest

import (
	"sync"
	"time"
)

type task struct {
	interval time.Duration
	fn       func()
	stopped  bool
	repeat   bool
}

// ManualScheduler records scheduled work and runs it only when told to
type ManualScheduler struct {
	mu    sync.Mutex
	tasks []*task
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) Every(interval time.Duration, fn func()) func() {
	return s.add(&task{interval: interval, fn: fn, repeat: true})
}

func (s *ManualScheduler) After(delay time.Duration, fn func()) func() {
	return s.add(&task{interval: delay, fn: fn})
}

func (s *ManualScheduler) add(t *task) func() {
	s.mu.Lock()
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		t.stopped = true
		s.mu.Unlock()
	}
}

// Tick fires every live repeating task n times
func (s *ManualScheduler) Tick(n int) {
	for i := 0; i < n; i++ {
		for _, t := range s.live(true) {
			if !s.isStopped(t) {
				t.fn()
			}
		}
	}
}

// FireDelayed runs every pending one-shot task once
func (s *ManualScheduler) FireDelayed() int {
	pending := s.live(false)
	for _, t := range pending {
		s.mu.Lock()
		t.stopped = true
		s.mu.Unlock()
		t.fn()
	}
	return len(pending)
}

// Pending returns the number of one-shot tasks waiting to fire
func (s *ManualScheduler) Pending() int {
	return len(s.live(false))
}

// Running returns the number of live repeating tasks
func (s *ManualScheduler) Running() int {
	return len(s.live(true))
}

func (s *ManualScheduler) live(repeat bool) []*task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*task
	for _, t := range s.tasks {
		if !t.stopped && t.repeat == repeat {
			out = append(out, t)
		}
	}
	return out
}

func (s *ManualScheduler) isStopped(t *task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.stopped
}
