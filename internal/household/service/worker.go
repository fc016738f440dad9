package service

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nemanja-m/chores/internal/household/core"
	"github.com/nemanja-m/chores/internal/shared/logging"
)

// Worker claims jobs from the shared table according to its mood. Its
// goroutine waits for Start, works until Stop or the table closes, then
// closes Done. The completed list belongs to that goroutine until Done closes.
type Worker struct {
	name      string
	table     *core.JobTable
	gen       core.Generator
	opts      WorkerOptions
	publisher core.EventPublisher
	logger    logging.Logger

	start     chan struct{}
	stop      chan struct{}
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once

	state          atomic.Value
	mood           atomic.Pointer[core.Mood]
	completedCount atomic.Int64

	completed []core.Job
}

func NewWorker(
	name string,
	table *core.JobTable,
	gen core.Generator,
	opts WorkerOptions,
	publisher core.EventPublisher,
	logger logging.Logger,
) (*Worker, error) {
	if name == "" {
		return nil, core.ErrInvalidWorkerName
	}
	if table == nil {
		return nil, fmt.Errorf("worker %s: nil job table", name)
	}
	w := &Worker{
		name:      name,
		table:     table,
		gen:       gen,
		opts:      opts,
		publisher: publisher,
		logger:    logger,
		start:     make(chan struct{}),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	w.state.Store(core.WorkerStateAwaitingStart)
	return w, nil
}

func (w *Worker) Name() string {
	return w.name
}

// Start releases the worker from AWAITING_START. Calling it again is a no-op.
func (w *Worker) Start() {
	w.startOnce.Do(func() { close(w.start) })
}

// Stop tells the worker to quit as soon as it observes the signal.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
}

func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Completed waits for the worker to stop and returns the jobs it finished.
func (w *Worker) Completed() []core.Job {
	<-w.done
	return append([]core.Job(nil), w.completed...)
}

func (w *Worker) State() core.WorkerState {
	return w.state.Load().(core.WorkerState)
}

// Mood reports the worker's mood once it has been drawn.
func (w *Worker) Mood() (core.Mood, bool) {
	m := w.mood.Load()
	if m == nil {
		return 0, false
	}
	return *m, true
}

func (w *Worker) Info() core.WorkerInfo {
	return core.WorkerInfo{
		Name:      w.name,
		State:     w.State(),
		Mood:      w.mood.Load(),
		Completed: int(w.completedCount.Load()),
	}
}

// Run is the worker's goroutine body.
func (w *Worker) Run() {
	defer close(w.done)
	defer w.state.Store(core.WorkerStateStopped)

	select {
	case <-w.stop:
		w.logger.Info("Stop received before start", "worker", w.name)
		return
	case <-w.start:
	}
	if w.stopped() {
		w.logger.Info("Stop received before start", "worker", w.name)
		return
	}

	w.state.Store(core.WorkerStateWorking)
	w.logger.Info("Start working", "worker", w.name)

	mood := w.chooseMood()
	w.mood.Store(&mood)
	w.logger.Info("Mood selected", "worker", w.name, "mood", mood.String(), "scan", mood.ScanOrder().String())

	predicate := mood.Predicate()
	order := mood.ScanOrder()
	for w.table.Running() {
		if w.stopped() {
			w.logger.Info("End work signal received", "worker", w.name)
			return
		}

		job, ok := w.table.TrySelect(w.name, predicate, order)
		if !ok {
			if !w.idle() {
				w.logger.Info("End work signal received", "worker", w.name)
				return
			}
			continue
		}

		w.logger.Debug("Job claimed",
			"worker", w.name,
			"job", job.Number,
			"slot", job.Slot,
			"value", job.Value,
		)
		if !w.work(job) {
			w.logger.Info("End work signal received", "worker", w.name)
			return
		}
	}
	w.logger.Info("Job table closed", "worker", w.name)
}

func (w *Worker) chooseMood() core.Mood {
	if w.opts.Mood != nil {
		return *w.opts.Mood
	}
	return core.RandomMood(w.gen)
}

// work serves the job's delay and completes it. It returns false if the
// worker was stopped and must exit.
func (w *Worker) work(job core.Job) bool {
	timer := time.NewTimer(time.Duration(job.Slow) * w.opts.WorkUnit)
	defer timer.Stop()

	select {
	case <-timer.C:
		w.complete(job)
		return true
	case <-w.stop:
		if w.opts.StopPolicy == StopAbandon {
			w.logger.Warn("Walked off the job",
				"worker", w.name,
				"job", job.Number,
				"slot", job.Slot,
			)
			return false
		}
		<-timer.C
		w.complete(job)
		return false
	}
}

func (w *Worker) complete(job core.Job) {
	done, err := w.table.Complete(job)
	if err != nil {
		w.logger.Error("Failed to complete job", "worker", w.name, "job", job.Number, "error", err)
		return
	}
	w.completed = append(w.completed, done)
	w.completedCount.Add(1)

	w.logger.Info("Job completed",
		"worker", w.name,
		"job", done.Number,
		"slot", done.Slot,
		"value", done.Value,
		"status", string(done.Status),
	)
	if err := w.publisher.PublishJobCompleted(done); err != nil {
		w.logger.Warn("Failed to publish job completion", "job", done.Number, "error", err)
	}
}

// idle waits out one idle interval between failed claims. It returns false
// if stop arrived meanwhile.
func (w *Worker) idle() bool {
	if w.opts.IdleInterval <= 0 {
		return !w.stopped()
	}
	timer := time.NewTimer(w.opts.IdleInterval)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-w.stop:
		return false
	}
}

func (w *Worker) stopped() bool {
	select {
	case <-w.stop:
		return true
	default:
		return false
	}
}
