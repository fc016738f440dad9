package core

import (
	"fmt"
	"strings"
)

// Mood is a worker's disposition for the whole run. It decides which jobs the
// worker accepts and which end of the table it scans from.
type Mood int

const (
	MoodLazy Mood = iota
	MoodPrissy
	MoodOvertired
	MoodGreedy
	MoodCooperative
)

var moodNames = [...]string{
	MoodLazy:        "lazy",
	MoodPrissy:      "prissy",
	MoodOvertired:   "overtired",
	MoodGreedy:      "greedy",
	MoodCooperative: "cooperative",
}

// AllMoods lists every mood in draw order.
var AllMoods = []Mood{MoodLazy, MoodPrissy, MoodOvertired, MoodGreedy, MoodCooperative}

func (m Mood) String() string {
	if m < 0 || int(m) >= len(moodNames) {
		return "unknown"
	}
	return moodNames[m]
}

func ParseMood(s string) (Mood, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, m := range AllMoods {
		if moodNames[m] == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mood: %q", s)
}

func RandomMood(gen Generator) Mood {
	return AllMoods[gen.IntN(len(AllMoods))]
}

// Predicate returns the job filter for the mood. Cooperative workers take
// anything, so their predicate is nil and TrySelect skips the check.
func (m Mood) Predicate() JobPredicate {
	if m == MoodCooperative {
		return nil
	}
	return m.Accepts
}

// ScanOrder is ascending for competitive moods and descending for cooperative.
func (m Mood) ScanOrder() ScanOrder {
	if m == MoodCooperative {
		return ScanDescending
	}
	return ScanAscending
}

// Accepts reports whether a worker in this mood will take job.
func (m Mood) Accepts(job Job) bool {
	switch m {
	case MoodLazy:
		return job.Heavy < 3
	case MoodPrissy:
		return job.Dirty < 3
	case MoodOvertired:
		return job.Slow < 3
	case MoodGreedy:
		return job.Value > 40
	default:
		return true
	}
}
