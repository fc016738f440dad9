package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nemanja-m/chores/internal/household/core"
)

func jobFor(worker string, value int) core.Job {
	return core.Job{ID: uuid.New(), Worker: worker, Value: value, Status: core.JobStatusComplete}
}

func TestTally(t *testing.T) {
	runID := uuid.New()

	tests := []struct {
		name        string
		jobs        []core.Job
		bonus       int
		wantTotals  []core.WorkerTotal
		wantWinner  string
		wantWinning int
	}{
		{
			name:  "no jobs means no winner",
			bonus: 5,
		},
		{
			name:        "single worker",
			jobs:        []core.Job{jobFor("Ali", 10), jobFor("Ali", 12)},
			bonus:       5,
			wantTotals:  []core.WorkerTotal{{Worker: "Ali", Total: 22, Jobs: 2}},
			wantWinner:  "Ali",
			wantWinning: 27,
		},
		{
			name:  "strict maximum wins",
			jobs:  []core.Job{jobFor("Ali", 10), jobFor("Cory", 30), jobFor("Ali", 15), jobFor("Lee", 2)},
			bonus: 5,
			wantTotals: []core.WorkerTotal{
				{Worker: "Ali", Total: 25, Jobs: 2},
				{Worker: "Cory", Total: 30, Jobs: 1},
				{Worker: "Lee", Total: 2, Jobs: 1},
			},
			wantWinner:  "Cory",
			wantWinning: 35,
		},
		{
			name:  "tie goes to first seen",
			jobs:  []core.Job{jobFor("Pat", 20), jobFor("Lee", 20)},
			bonus: 0,
			wantTotals: []core.WorkerTotal{
				{Worker: "Pat", Total: 20, Jobs: 1},
				{Worker: "Lee", Total: 20, Jobs: 1},
			},
			wantWinner:  "Pat",
			wantWinning: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Tally(runID, tt.jobs, tt.bonus)
			require.Equal(t, runID, result.RunID)
			require.Equal(t, tt.wantTotals, result.Totals)
			require.Equal(t, tt.wantWinner, result.Winner)
			require.Equal(t, tt.wantWinning, result.WinnerTotal)
			require.Equal(t, tt.wantWinner != "", result.HasWinner())
			require.Len(t, result.Jobs, len(tt.jobs))
		})
	}
}
