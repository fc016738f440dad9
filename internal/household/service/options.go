package service

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/nemanja-m/chores/internal/household/core"
	"github.com/nemanja-m/chores/internal/shared/config"
)

type StopPolicy int

const (
	// StopAbandon interrupts the work delay and leaves the claimed job WORKING.
	StopAbandon StopPolicy = iota
	// StopFinish serves the rest of the delay and completes the job before exiting.
	StopFinish
)

func (p StopPolicy) String() string {
	if p == StopFinish {
		return config.StopPolicyFinish
	}
	return config.StopPolicyAbandon
}

func ParseStopPolicy(s string) (StopPolicy, error) {
	switch strings.ToLower(s) {
	case "", config.StopPolicyAbandon:
		return StopAbandon, nil
	case config.StopPolicyFinish:
		return StopFinish, nil
	default:
		return 0, fmt.Errorf("unknown stop policy: %q", s)
	}
}

// MoodPin fixes the mood of every worker whose name matches Pattern.
type MoodPin struct {
	Pattern string
	Mood    core.Mood
}

type WorkerOptions struct {
	WorkUnit     time.Duration
	IdleInterval time.Duration
	StopPolicy   StopPolicy
	// Mood, when set, replaces the random draw at start.
	Mood *core.Mood
}

type SupervisorConfig struct {
	TableCapacity int
	Workers       []string
	RunDuration   time.Duration
	PollInterval  time.Duration
	WinnerBonus   int
	Worker        WorkerOptions
	MoodPins      []MoodPin
}

// NewSupervisorConfig translates loaded configuration into supervisor options.
func NewSupervisorConfig(cfg *config.Config) (SupervisorConfig, error) {
	policy, err := ParseStopPolicy(cfg.Worker.StopPolicy)
	if err != nil {
		return SupervisorConfig{}, err
	}

	pins := make([]MoodPin, 0, len(cfg.Worker.Moods))
	for pattern, name := range cfg.Worker.Moods {
		mood, err := core.ParseMood(name)
		if err != nil {
			return SupervisorConfig{}, fmt.Errorf("worker.moods[%s]: %w", pattern, err)
		}
		pins = append(pins, MoodPin{Pattern: pattern, Mood: mood})
	}
	slices.SortFunc(pins, func(a, b MoodPin) int { return strings.Compare(a.Pattern, b.Pattern) })

	return SupervisorConfig{
		TableCapacity: cfg.Simulation.TableCapacity,
		Workers:       slices.Clone(cfg.Simulation.Workers),
		RunDuration:   cfg.Simulation.RunDuration,
		PollInterval:  cfg.Simulation.PollInterval,
		WinnerBonus:   cfg.Simulation.WinnerBonus,
		Worker: WorkerOptions{
			WorkUnit:     cfg.Simulation.WorkUnit,
			IdleInterval: cfg.Worker.IdleInterval,
			StopPolicy:   policy,
		},
		MoodPins: pins,
	}, nil
}

// PinnedMood returns the mood of the first pin, in pattern order, matching
// name. Matching is case-insensitive because config keys are lowercased.
func PinnedMood(pins []MoodPin, name string) (*core.Mood, error) {
	lower := strings.ToLower(name)
	for _, pin := range pins {
		ok, err := doublestar.Match(strings.ToLower(pin.Pattern), lower)
		if err != nil {
			return nil, fmt.Errorf("match mood pattern %q: %w", pin.Pattern, err)
		}
		if ok {
			mood := pin.Mood
			return &mood, nil
		}
	}
	return nil, nil
}
