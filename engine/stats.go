package engine

import (
	"time"

	"github.com/plus3/blockworks/dispatch"
)

// Stats is a snapshot of the game's bookkeeping and per-phase timings.
type Stats struct {
	Ticks      uint64
	Actors     int
	Components int
	Bodies     int
	Posted     int
	Phases     []PhaseStats
	Physics    PhaseStats
	Queue      *dispatch.Stats
}

// PhaseStats provides execution statistics for a single phase.
type PhaseStats struct {
	Name          string
	Actors        int
	Executions    int64
	Invocations   int64
	MinDuration   time.Duration
	MaxDuration   time.Duration
	AvgDuration   time.Duration
	LastDuration  time.Duration
	TotalDuration time.Duration
}

type phaseTimer struct {
	name           string
	executionCount int64
	invocations    int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

func newPhaseTimer(name string) phaseTimer {
	return phaseTimer{
		name:        name,
		minDuration: time.Duration(1<<63 - 1),
	}
}

func (t *phaseTimer) record(d time.Duration, invocations int) {
	t.executionCount++
	t.invocations += int64(invocations)
	t.lastDuration = d
	t.totalDuration += d

	if d < t.minDuration {
		t.minDuration = d
	}
	if d > t.maxDuration {
		t.maxDuration = d
	}
}

func (t *phaseTimer) snapshot(actors int) PhaseStats {
	s := PhaseStats{
		Name:          t.name,
		Actors:        actors,
		Executions:    t.executionCount,
		Invocations:   t.invocations,
		MaxDuration:   t.maxDuration,
		LastDuration:  t.lastDuration,
		TotalDuration: t.totalDuration,
	}
	if t.executionCount > 0 {
		s.MinDuration = t.minDuration
		s.AvgDuration = t.totalDuration / time.Duration(t.executionCount)
	}
	return s
}
