package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nemanja-m/chores/internal/household/core"
	"github.com/nemanja-m/chores/internal/shared/logging"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// API serves a read-only view of a run.
type API struct {
	supervisor core.SupervisorService
	logger     logging.Logger
}

func NewAPI(supervisor core.SupervisorService, logger logging.Logger) *API {
	return &API{
		supervisor: supervisor,
		logger:     logger,
	}
}

func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/table", a.getTable)
	mux.HandleFunc("GET /api/workers", a.listWorkers)
	mux.HandleFunc("GET /api/workers/{name}", a.getWorker)
	mux.HandleFunc("GET /api/jobs/completed", a.listCompleted)
	mux.HandleFunc("GET /api/jobs/{id}", a.getCompletedJob)
	mux.HandleFunc("GET /api/result", a.getResult)
}

// getTable handles GET /api/table
func (a *API) getTable(w http.ResponseWriter, r *http.Request) {
	resp := ToTableResponse(a.supervisor.Phase(), a.supervisor.Table())
	if started := a.supervisor.StartedAt(); !started.IsZero() {
		resp.StartedAt = &started
	}
	a.respondJSON(w, http.StatusOK, resp)
}

// listWorkers handles GET /api/workers
func (a *API) listWorkers(w http.ResponseWriter, r *http.Request) {
	infos := a.supervisor.Workers()
	resp := ListWorkersResponse{
		Phase:   string(a.supervisor.Phase()),
		Workers: make([]WorkerResponse, 0, len(infos)),
	}
	for _, info := range infos {
		resp.Workers = append(resp.Workers, ToWorkerResponse(info))
	}
	a.respondJSON(w, http.StatusOK, resp)
}

// getWorker handles GET /api/workers/{name}
func (a *API) getWorker(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	for _, info := range a.supervisor.Workers() {
		if strings.EqualFold(info.Name, name) {
			a.respondJSON(w, http.StatusOK, ToWorkerResponse(info))
			return
		}
	}
	a.respondError(w, http.StatusNotFound, "worker not found", name)
}

// listCompleted handles GET /api/jobs/completed with an optional worker
// filter (exact name) and pagination.
func (a *API) listCompleted(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := parseBounded(query.Get("limit"), defaultLimit, 1, maxLimit)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid limit", err.Error())
		return
	}
	offset, err := parseBounded(query.Get("offset"), 0, 0, -1)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid offset", err.Error())
		return
	}

	var jobs []core.Job
	if worker := query.Get("worker"); worker != "" {
		jobs, err = a.supervisor.CompletedBy(worker)
	} else {
		jobs, err = a.supervisor.Completed()
	}
	if err != nil {
		a.logger.Error("Failed to list completed jobs", "error", err)
		a.respondError(w, http.StatusInternalServerError, "failed to list completed jobs", "")
		return
	}

	total := len(jobs)
	start := min(offset, total)
	end := min(start+limit, total)

	var nextOffset *int
	if end < total {
		next := end
		nextOffset = &next
	}

	a.respondJSON(w, http.StatusOK, ListCompletedResponse{
		Jobs:       ToJobResponses(jobs[start:end]),
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		NextOffset: nextOffset,
	})
}

// getCompletedJob handles GET /api/jobs/{id}. Only harvested jobs are found.
func (a *API) getCompletedJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid job ID", err.Error())
		return
	}

	job, err := a.supervisor.CompletedJob(id)
	if err != nil {
		a.logger.Error("Failed to get completed job", "job_id", id.String(), "error", err)
		a.respondError(w, http.StatusInternalServerError, "failed to get completed job", "")
		return
	}
	if job == nil {
		a.respondError(w, http.StatusNotFound, "job not found", id.String())
		return
	}

	a.respondJSON(w, http.StatusOK, ToJobResponse(*job))
}

// getResult handles GET /api/result. The result exists only once the run
// has finished.
func (a *API) getResult(w http.ResponseWriter, r *http.Request) {
	result, ok := a.supervisor.Result()
	if !ok {
		a.respondError(w, http.StatusNotFound, "result not available", fmt.Sprintf("run is %s", a.supervisor.Phase()))
		return
	}
	a.respondJSON(w, http.StatusOK, ToResultResponse(result))
}

// parseBounded parses a non-negative integer query value. A negative max
// means unbounded.
func parseBounded(raw string, def, lo, hi int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if v < lo {
		return 0, fmt.Errorf("must be at least %d", lo)
	}
	if hi >= 0 && v > hi {
		return hi, nil
	}
	return v, nil
}

func (a *API) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.logger.Warn("Failed to encode response", "error", err)
	}
}

func (a *API) respondError(w http.ResponseWriter, statusCode int, error string, message string) {
	a.respondJSON(w, statusCode, ErrorResponse{
		Error:   error,
		Message: message,
		Code:    statusCode,
	})
}

const (
	readTimeout  = 15 * time.Second
	writeTimeout = 15 * time.Second
	idleTimeout  = 60 * time.Second
)

func NewServer(addr string, supervisor core.SupervisorService, logger logging.Logger) *http.Server {
	api := NewAPI(supervisor, logger)
	mux := http.NewServeMux()
	api.RegisterRoutes(mux)

	handler := ChainMiddleware(
		mux,
		RequestIDMiddleware,
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
	)

	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}
