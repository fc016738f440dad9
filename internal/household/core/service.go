package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Ledger is the supervisor's append-only record of harvested jobs.
type Ledger interface {
	Append(jobs ...Job) error
	List() ([]Job, error)
	Len() int
	// GetByID returns nil without error when no job has the ID.
	GetByID(id uuid.UUID) (*Job, error)
	ListByWorker(worker string) ([]Job, error)
}

// EventPublisher fans simulation events out to an external bus.
type EventPublisher interface {
	PublishJobCompleted(job Job) error
	PublishJobHarvested(h Harvest) error
	PublishRunResult(r Result) error
	Close() error
}

type WorkerState string

const (
	WorkerStateAwaitingStart WorkerState = "AWAITING_START"
	WorkerStateWorking       WorkerState = "WORKING"
	WorkerStateStopped       WorkerState = "STOPPED"
)

// WorkerInfo is a point-in-time view of a worker for status surfaces.
type WorkerInfo struct {
	Name      string
	State     WorkerState
	Mood      *Mood
	Completed int
}

type RunPhase string

const (
	RunPhaseIdle     RunPhase = "IDLE"
	RunPhaseRunning  RunPhase = "RUNNING"
	RunPhaseStopping RunPhase = "STOPPING"
	RunPhaseFinished RunPhase = "FINISHED"
)

// SupervisorService is the read side of a run, consumed by the status APIs.
type SupervisorService interface {
	Run(ctx context.Context) (Result, error)
	Phase() RunPhase
	StartedAt() time.Time
	Table() []Job
	Workers() []WorkerInfo
	Completed() ([]Job, error)
	CompletedBy(worker string) ([]Job, error)
	CompletedJob(id uuid.UUID) (*Job, error)
	Result() (Result, bool)
}
