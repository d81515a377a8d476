package model

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// postMsg carries a closure to run on the bubbletea loop.
type postMsg struct{ fn func() }

// Scheduler runs presenter tasks on goroutines and posts their results back
// through the program's message queue.
type Scheduler struct {
	mu   sync.Mutex
	send func(tea.Msg)
	wg   sync.WaitGroup
}

// NewScheduler returns a scheduler with no program bound yet.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Bind connects the scheduler to a running program.
func (s *Scheduler) Bind(p *tea.Program) {
	s.mu.Lock()
	s.send = p.Send
	s.mu.Unlock()
}

func (s *Scheduler) Go(task func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		task()
	}()
}

func (s *Scheduler) Post(fn func()) {
	s.mu.Lock()
	send := s.send
	s.mu.Unlock()
	if send != nil {
		send(postMsg{fn: fn})
	}
}

// Wait blocks until every task started with Go has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
