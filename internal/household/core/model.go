package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusNotStarted JobStatus = "NOT_STARTED"
	JobStatusWorking    JobStatus = "WORKING"
	JobStatusComplete   JobStatus = "COMPLETE"
)

// rank orders statuses along the only legal path; unknown statuses rank -1.
func (s JobStatus) rank() int {
	switch s {
	case JobStatusNotStarted:
		return 0
	case JobStatusWorking:
		return 1
	case JobStatusComplete:
		return 2
	default:
		return -1
	}
}

var (
	ErrInvalidTransition = errors.New("invalid job status transition")
	ErrJobNotFound       = errors.New("job not found in table")
	ErrInvalidCapacity   = errors.New("table capacity must be positive")
	ErrInvalidWorkerName = errors.New("worker name must not be empty")
	ErrDuplicateWorker   = errors.New("worker name already taken")
)

const (
	minAttribute = 1
	maxAttribute = 5
)

type Job struct {
	ID     uuid.UUID
	Number int
	Slow   int
	Dirty  int
	Heavy  int
	Value  int
	Status JobStatus
	Worker string
	Slot   int

	CreatedAt   time.Time
	ClaimedAt   *time.Time
	CompletedAt *time.Time
}

// NewJob draws slow, dirty and heavy independently from [1,5].
func NewJob(gen Generator) Job {
	slow := roll(gen)
	dirty := roll(gen)
	heavy := roll(gen)
	return Job{
		ID:        uuid.New(),
		Slow:      slow,
		Dirty:     dirty,
		Heavy:     heavy,
		Value:     slow * (dirty + heavy),
		Status:    JobStatusNotStarted,
		Slot:      -1,
		CreatedAt: time.Now().UTC(),
	}
}

func (j Job) String() string {
	return fmt.Sprintf("value %d (slow %d, dirty %d, heavy %d)", j.Value, j.Slow, j.Dirty, j.Heavy)
}

func (j *Job) claim(worker string, slot int, now time.Time) error {
	if err := j.advance(JobStatusWorking); err != nil {
		return err
	}
	j.Worker = worker
	j.Slot = slot
	j.ClaimedAt = &now
	return nil
}

func (j *Job) markComplete(now time.Time) error {
	if err := j.advance(JobStatusComplete); err != nil {
		return err
	}
	j.CompletedAt = &now
	return nil
}

func (j *Job) advance(to JobStatus) error {
	if j.Status.rank() < 0 || to.rank() != j.Status.rank()+1 {
		return fmt.Errorf("%w: job %d %s -> %s", ErrInvalidTransition, j.Number, j.Status, to)
	}
	j.Status = to
	return nil
}

// WorkerTotal is the summed value a worker earned over its harvested jobs.
type WorkerTotal struct {
	Worker string
	Total  int
	Jobs   int
}

type Result struct {
	RunID       uuid.UUID
	Totals      []WorkerTotal
	Winner      string
	WinnerTotal int
	Jobs        []Job

	StartedAt  time.Time
	FinishedAt time.Time
}

// HasWinner reports whether any job was harvested during the run.
func (r Result) HasWinner() bool {
	return r.Winner != ""
}
