package storage

import (
	"sync"

	"github.com/google/uuid"

	"github.com/nemanja-m/chores/internal/household/core"
)

// InMemoryLedger keeps harvested jobs in harvest order. Only the supervisor
// appends; status readers take copies under the read lock.
type InMemoryLedger struct {
	mu   sync.RWMutex
	jobs []core.Job
	byID map[uuid.UUID]int
}

func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{
		byID: make(map[uuid.UUID]int),
	}
}

func (l *InMemoryLedger) Append(jobs ...core.Job) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, job := range jobs {
		if _, exists := l.byID[job.ID]; exists {
			continue
		}
		l.byID[job.ID] = len(l.jobs)
		l.jobs = append(l.jobs, job)
	}
	return nil
}

func (l *InMemoryLedger) List() ([]core.Job, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]core.Job(nil), l.jobs...), nil
}

func (l *InMemoryLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.jobs)
}

func (l *InMemoryLedger) GetByID(id uuid.UUID) (*core.Job, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, exists := l.byID[id]
	if !exists {
		return nil, nil
	}
	job := l.jobs[i]
	return &job, nil
}

func (l *InMemoryLedger) ListByWorker(worker string) ([]core.Job, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var jobs []core.Job
	for _, job := range l.jobs {
		if job.Worker == worker {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}
