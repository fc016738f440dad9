package rest

import (
	"github.com/nemanja-m/chores/internal/household/core"
)

func ToJobResponse(job core.Job) JobResponse {
	return JobResponse{
		ID:          job.ID.String(),
		Number:      job.Number,
		Slot:        job.Slot,
		Slow:        job.Slow,
		Dirty:       job.Dirty,
		Heavy:       job.Heavy,
		Value:       job.Value,
		Status:      string(job.Status),
		Worker:      job.Worker,
		CreatedAt:   job.CreatedAt,
		ClaimedAt:   job.ClaimedAt,
		CompletedAt: job.CompletedAt,
	}
}

func ToJobResponses(jobs []core.Job) []JobResponse {
	out := make([]JobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, ToJobResponse(job))
	}
	return out
}

// ToTableResponse renders table slots. Slot indexes come from the position in
// the snapshot, since a job only records its slot once claimed.
func ToTableResponse(phase core.RunPhase, jobs []core.Job) TableResponse {
	resp := TableResponse{
		Phase:    string(phase),
		Capacity: len(jobs),
		Jobs:     make([]JobResponse, 0, len(jobs)),
	}
	for i, job := range jobs {
		jr := ToJobResponse(job)
		jr.Slot = i
		resp.Jobs = append(resp.Jobs, jr)

		switch job.Status {
		case core.JobStatusWorking:
			resp.Progress.Working++
		case core.JobStatusComplete:
			resp.Progress.Complete++
		default:
			resp.Progress.NotStarted++
		}
	}
	return resp
}

func ToWorkerResponse(info core.WorkerInfo) WorkerResponse {
	resp := WorkerResponse{
		Name:      info.Name,
		State:     string(info.State),
		Completed: info.Completed,
	}
	if info.Mood != nil {
		resp.Mood = info.Mood.String()
		resp.Scan = info.Mood.ScanOrder().String()
	}
	return resp
}

func ToResultResponse(result core.Result) ResultResponse {
	totals := make([]WorkerTotalResponse, 0, len(result.Totals))
	for _, t := range result.Totals {
		totals = append(totals, WorkerTotalResponse{
			Worker: t.Worker,
			Total:  t.Total,
			Jobs:   t.Jobs,
		})
	}
	return ResultResponse{
		RunID:       result.RunID.String(),
		Winner:      result.Winner,
		WinnerTotal: result.WinnerTotal,
		Totals:      totals,
		Harvested:   len(result.Jobs),
		StartedAt:   result.StartedAt,
		FinishedAt:  result.FinishedAt,
	}
}
