package core

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

type ScanOrder int

const (
	ScanAscending ScanOrder = iota
	ScanDescending
)

func (o ScanOrder) String() string {
	if o == ScanDescending {
		return "descending"
	}
	return "ascending"
}

// JobPredicate filters claimable jobs. A nil predicate accepts every job.
type JobPredicate func(Job) bool

// Harvest pairs a completed job taken off the table with the job that replaced it.
type Harvest struct {
	Job         Job
	Replacement Job
}

// JobTable is a fixed set of job slots shared by the supervisor and workers.
// Every read or write of a slot happens under mu; the slots are the only owner
// of their jobs and callers only ever receive copies.
type JobTable struct {
	mu       sync.Mutex
	slots    []Job
	gen      Generator
	sequence int

	running atomic.Bool
	now     func() time.Time
}

func NewJobTable(capacity int, gen Generator) (*JobTable, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	return &JobTable{
		slots: make([]Job, capacity),
		gen:   gen,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

// Initialize fills every slot with a fresh job and opens the table.
// It returns the created jobs in slot order.
func (t *JobTable) Initialize() []Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	created := make([]Job, len(t.slots))
	for i := range t.slots {
		t.slots[i] = t.newJobLocked()
		created[i] = t.slots[i]
	}
	t.running.Store(true)
	return created
}

// TrySelect claims the first not-started job, in the given scan order, that
// satisfies pred. The scan and the claim happen under one lock acquisition.
func (t *JobTable) TrySelect(worker string, pred JobPredicate, order ScanOrder) (Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.slots)
	for k := range n {
		i := k
		if order == ScanDescending {
			i = n - 1 - k
		}
		job := &t.slots[i]
		if job.Status != JobStatusNotStarted {
			continue
		}
		if pred != nil && !pred(*job) {
			continue
		}
		if err := job.claim(worker, i, t.now()); err != nil {
			continue
		}
		return *job, true
	}
	return Job{}, false
}

// Complete advances a claimed job to COMPLETE. The slot must still hold the
// same job and it must be WORKING.
func (t *JobTable) Complete(job Job) (Job, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if job.Slot < 0 || job.Slot >= len(t.slots) || t.slots[job.Slot].ID != job.ID {
		return Job{}, fmt.Errorf("%w: job %d at slot %d", ErrJobNotFound, job.Number, job.Slot)
	}
	slot := &t.slots[job.Slot]
	if err := slot.markComplete(t.now()); err != nil {
		return Job{}, err
	}
	return *slot, nil
}

// HarvestCompleted removes every COMPLETE job, replacing each with a fresh one.
// Harvests are returned in ascending slot order.
func (t *JobTable) HarvestCompleted() []Harvest {
	t.mu.Lock()
	defer t.mu.Unlock()

	var harvested []Harvest
	for i := range t.slots {
		if t.slots[i].Status != JobStatusComplete {
			continue
		}
		done := t.slots[i]
		t.slots[i] = t.newJobLocked()
		harvested = append(harvested, Harvest{Job: done, Replacement: t.slots[i]})
	}
	return harvested
}

func (t *JobTable) Snapshot() []Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Job(nil), t.slots...)
}

func (t *JobTable) Capacity() int {
	return len(t.slots)
}

// Running reports whether the table is still open. Workers may observe a
// close one loop iteration late; the stop signal is what ends them.
func (t *JobTable) Running() bool {
	return t.running.Load()
}

func (t *JobTable) Close() {
	t.running.Store(false)
}

func (t *JobTable) newJobLocked() Job {
	job := NewJob(t.gen)
	job.Number = t.sequence
	t.sequence++
	return job
}
