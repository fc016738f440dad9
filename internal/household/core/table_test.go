package core

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T, gen Generator, capacity int) *JobTable {
	t.Helper()
	table, err := NewJobTable(capacity, gen)
	require.NoError(t, err)
	table.Initialize()
	return table
}

func TestNewJobTable_InvalidCapacity(t *testing.T) {
	for _, c := range []int{0, -1} {
		_, err := NewJobTable(c, NewGenerator(1))
		require.ErrorIs(t, err, ErrInvalidCapacity)
	}
}

func TestJobTable_Initialize(t *testing.T) {
	table, err := NewJobTable(10, NewGenerator(1))
	require.NoError(t, err)
	require.False(t, table.Running())

	created := table.Initialize()
	require.Len(t, created, 10)
	require.True(t, table.Running())

	ids := make(map[uuid.UUID]bool)
	for i, job := range table.Snapshot() {
		require.NotEqual(t, uuid.Nil, job.ID)
		require.Equal(t, JobStatusNotStarted, job.Status)
		require.Equal(t, i, job.Number)
		require.Equal(t, created[i].ID, job.ID)
		ids[job.ID] = true
	}
	require.Len(t, ids, 10)
}

func TestJobTable_TrySelect_CompetitiveTakesLowestMatch(t *testing.T) {
	gen := attrs(
		[3]int{3, 3, 3}, // 0
		[3]int{3, 3, 1}, // 1 light
		[3]int{3, 3, 3}, // 2
		[3]int{3, 3, 2}, // 3 light
	)
	table := newTestTable(t, gen, 4)

	job, ok := table.TrySelect("Ali", MoodLazy.Predicate(), ScanAscending)
	require.True(t, ok)
	require.Equal(t, 1, job.Slot)
	require.Equal(t, "Ali", job.Worker)
	require.Equal(t, JobStatusWorking, job.Status)

	job, ok = table.TrySelect("Ali", MoodLazy.Predicate(), ScanAscending)
	require.True(t, ok)
	require.Equal(t, 3, job.Slot)

	_, ok = table.TrySelect("Ali", MoodLazy.Predicate(), ScanAscending)
	require.False(t, ok)
}

func TestJobTable_TrySelect_CooperativeTakesHighestAvailable(t *testing.T) {
	table := newTestTable(t, NewGenerator(3), 5)

	for want := 4; want >= 0; want-- {
		job, ok := table.TrySelect("Pat", nil, ScanDescending)
		require.True(t, ok)
		require.Equal(t, want, job.Slot)
	}

	_, ok := table.TrySelect("Pat", nil, ScanDescending)
	require.False(t, ok)
}

func TestJobTable_TrySelect_SkipsClaimed(t *testing.T) {
	table := newTestTable(t, NewGenerator(3), 3)

	first, ok := table.TrySelect("Ali", nil, ScanAscending)
	require.True(t, ok)
	require.Equal(t, 0, first.Slot)

	second, ok := table.TrySelect("Cory", nil, ScanAscending)
	require.True(t, ok)
	require.Equal(t, 1, second.Slot)

	// Slot 0 stays with its first claimant.
	require.Equal(t, "Ali", table.Snapshot()[0].Worker)
}

func TestJobTable_TrySelect_ConcurrentNoDoubleClaim(t *testing.T) {
	for range 50 {
		table := newTestTable(t, NewGenerator(11), 1)

		var wg sync.WaitGroup
		var wins atomic.Int32
		for i := range 16 {
			wg.Go(func() {
				order := ScanAscending
				if i%2 == 1 {
					order = ScanDescending
				}
				if _, ok := table.TrySelect("worker", nil, order); ok {
					wins.Add(1)
				}
			})
		}
		wg.Wait()

		require.Equal(t, int32(1), wins.Load())
		require.Equal(t, JobStatusWorking, table.Snapshot()[0].Status)
	}
}

func TestJobTable_TrySelect_ConcurrentClaimsAreUnique(t *testing.T) {
	table := newTestTable(t, NewGenerator(5), 10)

	var mu sync.Mutex
	claimed := make(map[int]int)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Go(func() {
			order := ScanAscending
			if i%2 == 0 {
				order = ScanDescending
			}
			for {
				job, ok := table.TrySelect("w", nil, order)
				if !ok {
					return
				}
				mu.Lock()
				claimed[job.Slot]++
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	require.Len(t, claimed, 10)
	for slot, n := range claimed {
		require.Equal(t, 1, n, "slot %d claimed %d times", slot, n)
	}
}

func TestJobTable_Complete(t *testing.T) {
	table := newTestTable(t, NewGenerator(9), 3)

	job, ok := table.TrySelect("Lee", nil, ScanAscending)
	require.True(t, ok)

	done, err := table.Complete(job)
	require.NoError(t, err)
	require.Equal(t, JobStatusComplete, done.Status)
	require.Equal(t, job.ID, done.ID)
	require.NotNil(t, done.CompletedAt)

	_, err = table.Complete(job)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestJobTable_Complete_Errors(t *testing.T) {
	table := newTestTable(t, NewGenerator(9), 3)

	t.Run("unclaimed job", func(t *testing.T) {
		_, err := table.Complete(table.Snapshot()[1])
		require.ErrorIs(t, err, ErrJobNotFound)
	})

	t.Run("not started job in its slot", func(t *testing.T) {
		job := table.Snapshot()[1]
		job.Slot = 1
		_, err := table.Complete(job)
		require.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("job replaced by harvest", func(t *testing.T) {
		job, ok := table.TrySelect("Lee", nil, ScanAscending)
		require.True(t, ok)
		_, err := table.Complete(job)
		require.NoError(t, err)
		require.Len(t, table.HarvestCompleted(), 1)

		_, err = table.Complete(job)
		require.ErrorIs(t, err, ErrJobNotFound)
	})
}

func TestJobTable_HarvestCompleted(t *testing.T) {
	table := newTestTable(t, NewGenerator(21), 10)

	t.Run("fresh table yields nothing", func(t *testing.T) {
		require.Empty(t, table.HarvestCompleted())
	})

	var completed []Job
	for range 3 {
		job, ok := table.TrySelect("Cory", nil, ScanDescending)
		require.True(t, ok)
		done, err := table.Complete(job)
		require.NoError(t, err)
		completed = append(completed, done)
	}
	// A claimed but unfinished job stays put.
	working, ok := table.TrySelect("Ali", nil, ScanAscending)
	require.True(t, ok)

	harvested := table.HarvestCompleted()
	require.Len(t, harvested, 3)
	// Ascending slot order: 7, 8, 9.
	for i, h := range harvested {
		require.Equal(t, 7+i, h.Job.Slot)
		require.Equal(t, JobStatusComplete, h.Job.Status)
		require.Equal(t, JobStatusNotStarted, h.Replacement.Status)
		require.NotEqual(t, h.Job.ID, h.Replacement.ID)
	}
	require.Equal(t, completed[2].ID, harvested[0].Job.ID)

	snapshot := table.Snapshot()
	require.Len(t, snapshot, 10)
	for i, job := range snapshot {
		require.NotEqual(t, uuid.Nil, job.ID, "slot %d empty", i)
		require.NotEqual(t, JobStatusComplete, job.Status)
	}
	require.Equal(t, working.ID, snapshot[0].ID)
	require.Equal(t, JobStatusWorking, snapshot[0].Status)

	t.Run("second harvest is empty and leaves table unchanged", func(t *testing.T) {
		before := table.Snapshot()
		require.Empty(t, table.HarvestCompleted())
		require.Equal(t, before, table.Snapshot())
	})
}

func TestJobTable_HarvestNumbersReplacements(t *testing.T) {
	table := newTestTable(t, NewGenerator(2), 2)
	job, _ := table.TrySelect("Ali", nil, ScanAscending)
	_, err := table.Complete(job)
	require.NoError(t, err)

	harvested := table.HarvestCompleted()
	require.Len(t, harvested, 1)
	require.Equal(t, 2, harvested[0].Replacement.Number)
}

func TestJobTable_Close(t *testing.T) {
	table := newTestTable(t, NewGenerator(1), 1)
	require.True(t, table.Running())
	table.Close()
	require.False(t, table.Running())
	require.Equal(t, 1, table.Capacity())
}

func TestJobTable_TrySelectBeforeInitialize(t *testing.T) {
	table, err := NewJobTable(3, NewGenerator(1))
	require.NoError(t, err)
	_, ok := table.TrySelect("Ali", nil, ScanAscending)
	require.False(t, ok)
}

func TestDeriveGenerator_Independent(t *testing.T) {
	parent := NewGenerator(100)
	a := DeriveGenerator(parent)
	b := DeriveGenerator(parent)
	same := true
	for range 20 {
		if a.IntN(1000) != b.IntN(1000) {
			same = false
		}
	}
	require.False(t, same)
}
