package service

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nemanja-m/chores/internal/household/core"
)

type mockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *mockLogger) Debug(msg string, args ...any) { l.record(msg) }
func (l *mockLogger) Info(msg string, args ...any)  { l.record(msg) }
func (l *mockLogger) Warn(msg string, args ...any)  { l.record(msg) }
func (l *mockLogger) Error(msg string, args ...any) { l.record(msg) }
func (l *mockLogger) Fatal(msg string, args ...any) { l.record(msg) }

func (l *mockLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *mockLogger) has(msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Contains(l.messages, msg)
}

func (l *mockLogger) count(msg string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, m := range l.messages {
		if m == msg {
			n++
		}
	}
	return n
}

type mockPublisher struct {
	mu        sync.Mutex
	completed []core.Job
	harvested []core.Harvest
	results   []core.Result
	err       error
}

func (p *mockPublisher) PublishJobCompleted(job core.Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed = append(p.completed, job)
	return p.err
}

func (p *mockPublisher) PublishJobHarvested(h core.Harvest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.harvested = append(p.harvested, h)
	return p.err
}

func (p *mockPublisher) PublishRunResult(r core.Result) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, r)
	return p.err
}

func (p *mockPublisher) Close() error { return nil }

func (p *mockPublisher) completedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.completed)
}

type failingLedger struct{}

func (failingLedger) Append(jobs ...core.Job) error { return errors.New("ledger unavailable") }
func (failingLedger) List() ([]core.Job, error)     { return nil, errors.New("ledger unavailable") }
func (failingLedger) Len() int                      { return 0 }

func (failingLedger) GetByID(id uuid.UUID) (*core.Job, error) {
	return nil, errors.New("ledger unavailable")
}

func (failingLedger) ListByWorker(worker string) ([]core.Job, error) {
	return nil, errors.New("ledger unavailable")
}

// fixedGenerator always returns v modulo n.
type fixedGenerator struct{ v int }

func (g fixedGenerator) IntN(n int) int { return g.v % n }

func moodPtr(m core.Mood) *core.Mood { return &m }

func waitFor(cond func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}
