package events

import (
	"time"

	"github.com/nemanja-m/chores/internal/household/core"
)

const (
	SubjectJobCompleted = "job.completed"
	SubjectJobHarvested = "job.harvested"
	SubjectRunResult    = "run.result"
)

type JobEvent struct {
	JobID       string     `json:"job_id"`
	Number      int        `json:"number"`
	Slot        int        `json:"slot"`
	Worker      string     `json:"worker"`
	Slow        int        `json:"slow"`
	Dirty       int        `json:"dirty"`
	Heavy       int        `json:"heavy"`
	Value       int        `json:"value"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type HarvestEvent struct {
	Job         JobEvent `json:"job"`
	Replacement JobEvent `json:"replacement"`
}

type WorkerTotalEvent struct {
	Worker string `json:"worker"`
	Total  int    `json:"total"`
	Jobs   int    `json:"jobs"`
}

type RunResultEvent struct {
	RunID       string             `json:"run_id"`
	Winner      string             `json:"winner,omitempty"`
	WinnerTotal int                `json:"winner_total"`
	Totals      []WorkerTotalEvent `json:"totals"`
	JobCount    int                `json:"job_count"`
	StartedAt   time.Time          `json:"started_at"`
	FinishedAt  time.Time          `json:"finished_at"`
}

func NewJobEvent(job core.Job) JobEvent {
	return JobEvent{
		JobID:       job.ID.String(),
		Number:      job.Number,
		Slot:        job.Slot,
		Worker:      job.Worker,
		Slow:        job.Slow,
		Dirty:       job.Dirty,
		Heavy:       job.Heavy,
		Value:       job.Value,
		Status:      string(job.Status),
		CompletedAt: job.CompletedAt,
	}
}

func NewHarvestEvent(h core.Harvest) HarvestEvent {
	return HarvestEvent{
		Job:         NewJobEvent(h.Job),
		Replacement: NewJobEvent(h.Replacement),
	}
}

func NewRunResultEvent(r core.Result) RunResultEvent {
	totals := make([]WorkerTotalEvent, 0, len(r.Totals))
	for _, t := range r.Totals {
		totals = append(totals, WorkerTotalEvent{Worker: t.Worker, Total: t.Total, Jobs: t.Jobs})
	}
	return RunResultEvent{
		RunID:       r.RunID.String(),
		Winner:      r.Winner,
		WinnerTotal: r.WinnerTotal,
		Totals:      totals,
		JobCount:    len(r.Jobs),
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
	}
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event.
func NewNoopPublisher() core.EventPublisher {
	return noopPublisher{}
}

func (noopPublisher) PublishJobCompleted(core.Job) error     { return nil }
func (noopPublisher) PublishJobHarvested(core.Harvest) error { return nil }
func (noopPublisher) PublishRunResult(core.Result) error     { return nil }
func (noopPublisher) Close() error                           { return nil }
