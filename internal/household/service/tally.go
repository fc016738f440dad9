package service

import (
	"github.com/google/uuid"

	"github.com/nemanja-m/chores/internal/household/core"
)

// Tally sums job values per worker in order of first appearance. The winner
// is the strictly highest total, ties going to the worker seen first, and
// collects bonus on top. No jobs means no winner.
func Tally(runID uuid.UUID, jobs []core.Job, bonus int) core.Result {
	index := make(map[string]int)
	var totals []core.WorkerTotal
	for _, job := range jobs {
		i, seen := index[job.Worker]
		if !seen {
			i = len(totals)
			index[job.Worker] = i
			totals = append(totals, core.WorkerTotal{Worker: job.Worker})
		}
		totals[i].Total += job.Value
		totals[i].Jobs++
	}

	result := core.Result{
		RunID:  runID,
		Totals: totals,
		Jobs:   jobs,
	}

	best := -1
	for i, t := range totals {
		if best < 0 || t.Total > totals[best].Total {
			best = i
		}
	}
	if best >= 0 {
		result.Winner = totals[best].Worker
		result.WinnerTotal = totals[best].Total + bonus
	}
	return result
}
