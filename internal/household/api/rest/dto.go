package rest

import (
	"time"
)

type JobResponse struct {
	ID          string     `json:"id"`
	Number      int        `json:"number"`
	Slot        int        `json:"slot"`
	Slow        int        `json:"slow"`
	Dirty       int        `json:"dirty"`
	Heavy       int        `json:"heavy"`
	Value       int        `json:"value"`
	Status      string     `json:"status"`
	Worker      string     `json:"worker,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type TableResponse struct {
	Phase     string        `json:"phase"`
	StartedAt *time.Time    `json:"started_at,omitempty"`
	Capacity  int           `json:"capacity"`
	Progress  TableProgress `json:"progress"`
	Jobs      []JobResponse `json:"jobs"`
}

type TableProgress struct {
	NotStarted int `json:"not_started"`
	Working    int `json:"working"`
	Complete   int `json:"complete"`
}

type WorkerResponse struct {
	Name      string `json:"name"`
	State     string `json:"state"`
	Mood      string `json:"mood,omitempty"`
	Scan      string `json:"scan,omitempty"`
	Completed int    `json:"completed"`
}

type ListWorkersResponse struct {
	Phase   string           `json:"phase"`
	Workers []WorkerResponse `json:"workers"`
}

type ListCompletedResponse struct {
	Jobs       []JobResponse `json:"jobs"`
	Total      int           `json:"total"`
	Limit      int           `json:"limit"`
	Offset     int           `json:"offset"`
	NextOffset *int          `json:"next_offset,omitempty"`
}

type WorkerTotalResponse struct {
	Worker string `json:"worker"`
	Total  int    `json:"total"`
	Jobs   int    `json:"jobs"`
}

type ResultResponse struct {
	RunID       string                `json:"run_id"`
	Winner      string                `json:"winner,omitempty"`
	WinnerTotal int                   `json:"winner_total,omitempty"`
	Totals      []WorkerTotalResponse `json:"totals"`
	Harvested   int                   `json:"harvested"`
	StartedAt   time.Time             `json:"started_at"`
	FinishedAt  time.Time             `json:"finished_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}
