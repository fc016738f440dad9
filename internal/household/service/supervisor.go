package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nemanja-m/chores/internal/household/core"
	"github.com/nemanja-m/chores/internal/household/events"
	"github.com/nemanja-m/chores/internal/shared/logging"
)

var ErrAlreadyRun = errors.New("supervisor has already run")

// Supervisor owns the job table for one run: it seeds the table, starts and
// stops the workers, keeps the table stocked, and tallies the result.
type Supervisor struct {
	cfg       SupervisorConfig
	table     *core.JobTable
	gen       core.Generator
	ledger    core.Ledger
	publisher core.EventPublisher
	logger    logging.Logger
	runID     uuid.UUID

	phase     atomic.Value
	startedAt atomic.Pointer[time.Time]
	workers   atomic.Pointer[[]*Worker]
	result    atomic.Pointer[core.Result]
}

func NewSupervisor(
	cfg SupervisorConfig,
	gen core.Generator,
	ledger core.Ledger,
	publisher core.EventPublisher,
	logger logging.Logger,
) (*Supervisor, error) {
	table, err := core.NewJobTable(cfg.TableCapacity, gen)
	if err != nil {
		return nil, err
	}
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}
	s := &Supervisor{
		cfg:       cfg,
		table:     table,
		gen:       gen,
		ledger:    ledger,
		publisher: publisher,
		logger:    logger,
		runID:     uuid.New(),
	}
	s.phase.Store(core.RunPhaseIdle)
	return s, nil
}

// Run executes the whole simulation once and returns the tally.
func (s *Supervisor) Run(ctx context.Context) (core.Result, error) {
	if !s.phase.CompareAndSwap(core.RunPhaseIdle, core.RunPhaseRunning) {
		return core.Result{}, ErrAlreadyRun
	}
	s.logger.Info("Hey kids, this is Mom", "run_id", s.runID.String())

	s.initializeJobTable()

	workers := s.spawnWorkers()
	s.workers.Store(&workers)

	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Go(w.Run)
	}
	for _, w := range workers {
		w.Start()
		s.logger.Info("Signal sent to start work", "worker", w.Name())
	}

	started := time.Now().UTC()
	s.startedAt.Store(&started)
	s.poll(ctx, started)

	s.phase.Store(core.RunPhaseStopping)
	for _, w := range workers {
		w.Stop()
		s.logger.Info("Signal sent to stop work", "worker", w.Name())
	}
	for _, w := range workers {
		s.reportWorker(w)
	}

	for _, w := range workers {
		<-w.Done()
		s.logger.Info("Kid joined", "worker", w.Name())
	}
	wg.Wait()

	s.table.Close()
	s.harvest()

	jobs, err := s.ledger.List()
	if err != nil {
		s.phase.Store(core.RunPhaseFinished)
		return core.Result{}, fmt.Errorf("list completed jobs: %w", err)
	}
	result := Tally(s.runID, jobs, s.cfg.WinnerBonus)
	result.StartedAt = started
	result.FinishedAt = time.Now().UTC()
	s.result.Store(&result)
	s.phase.Store(core.RunPhaseFinished)

	s.reportResult(result)
	return result, nil
}

func (s *Supervisor) initializeJobTable() {
	for slot, job := range s.table.Initialize() {
		s.logger.Info("Job created",
			"slot", slot,
			"job", job.Number,
			"value", job.Value,
			"slow", job.Slow,
			"dirty", job.Dirty,
			"heavy", job.Heavy,
		)
	}
	s.logger.Info("Job table initialized", "capacity", s.table.Capacity())
}

// spawnWorkers builds the roster. A worker that cannot be created is logged
// and left out; the run goes on with the rest.
func (s *Supervisor) spawnWorkers() []*Worker {
	workers := make([]*Worker, 0, len(s.cfg.Workers))
	seen := make(map[string]bool, len(s.cfg.Workers))
	for _, name := range s.cfg.Workers {
		w, err := s.spawnWorker(name, seen)
		if err != nil {
			s.logger.Error("Failed to create kid", "worker", name, "error", err)
			continue
		}
		seen[name] = true
		workers = append(workers, w)
		s.logger.Info("Kid created", "worker", name)
	}
	if len(workers) < len(s.cfg.Workers) {
		s.logger.Warn("Running with fewer kids", "requested", len(s.cfg.Workers), "running", len(workers))
	}
	return workers
}

func (s *Supervisor) spawnWorker(name string, seen map[string]bool) (*Worker, error) {
	if seen[name] {
		return nil, fmt.Errorf("%w: %s", core.ErrDuplicateWorker, name)
	}
	opts := s.cfg.Worker
	pinned, err := PinnedMood(s.cfg.MoodPins, name)
	if err != nil {
		return nil, err
	}
	if pinned != nil {
		opts.Mood = pinned
	}
	return NewWorker(name, s.table, core.DeriveGenerator(s.gen), opts, s.publisher, s.logger)
}

func (s *Supervisor) poll(ctx context.Context, started time.Time) {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for time.Since(started) < s.cfg.RunDuration {
		select {
		case <-ctx.Done():
			s.logger.Warn("Run cancelled", "error", ctx.Err())
			return
		case <-ticker.C:
			s.harvest()
		}
	}
}

func (s *Supervisor) harvest() []core.Harvest {
	harvested := s.table.HarvestCompleted()
	if len(harvested) == 0 {
		return nil
	}

	jobs := make([]core.Job, len(harvested))
	for i, h := range harvested {
		jobs[i] = h.Job
	}
	if err := s.ledger.Append(jobs...); err != nil {
		s.logger.Error("Failed to record harvested jobs", "count", len(jobs), "error", err)
	}

	for _, h := range harvested {
		s.logger.Info("Adding new job",
			"slot", h.Job.Slot,
			"harvested", h.Job.Number,
			"worker", h.Job.Worker,
			"job", h.Replacement.Number,
			"value", h.Replacement.Value,
		)
		if err := s.publisher.PublishJobHarvested(h); err != nil {
			s.logger.Warn("Failed to publish harvest", "job", h.Job.Number, "error", err)
		}
	}
	return harvested
}

func (s *Supervisor) reportWorker(w *Worker) {
	completed := w.Completed()
	s.logger.Info("Kid report", "worker", w.Name(), "completed", len(completed))
	for _, job := range completed {
		s.logger.Info("Job was completed",
			"worker", job.Worker,
			"job", job.Number,
			"value", job.Value,
			"slow", job.Slow,
			"dirty", job.Dirty,
			"heavy", job.Heavy,
		)
	}
}

func (s *Supervisor) reportResult(result core.Result) {
	for _, job := range result.Jobs {
		s.logger.Info("Child earned value on job", "worker", job.Worker, "value", job.Value, "job", job.Number)
	}
	for _, t := range result.Totals {
		s.logger.Info("Child total", "worker", t.Worker, "total", t.Total, "jobs", t.Jobs)
	}
	if result.HasWinner() {
		s.logger.Info("The winner for today", "worker", result.Winner, "total", result.WinnerTotal, "bonus", s.cfg.WinnerBonus)
	} else {
		s.logger.Info("No jobs were harvested, nobody wins today")
	}
	if err := s.publisher.PublishRunResult(result); err != nil {
		s.logger.Warn("Failed to publish run result", "error", err)
	}
}

func (s *Supervisor) Phase() core.RunPhase {
	return s.phase.Load().(core.RunPhase)
}

func (s *Supervisor) StartedAt() time.Time {
	if t := s.startedAt.Load(); t != nil {
		return *t
	}
	return time.Time{}
}

func (s *Supervisor) Table() []core.Job {
	return s.table.Snapshot()
}

func (s *Supervisor) Workers() []core.WorkerInfo {
	ws := s.workers.Load()
	if ws == nil {
		return nil
	}
	infos := make([]core.WorkerInfo, 0, len(*ws))
	for _, w := range *ws {
		infos = append(infos, w.Info())
	}
	return infos
}

func (s *Supervisor) Completed() ([]core.Job, error) {
	return s.ledger.List()
}

func (s *Supervisor) CompletedBy(worker string) ([]core.Job, error) {
	return s.ledger.ListByWorker(worker)
}

func (s *Supervisor) CompletedJob(id uuid.UUID) (*core.Job, error) {
	return s.ledger.GetByID(id)
}

func (s *Supervisor) Result() (core.Result, bool) {
	if r := s.result.Load(); r != nil {
		return *r, true
	}
	return core.Result{}, false
}
