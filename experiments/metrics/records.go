package metrics

import (
	"time"

	"github.com/google/uuid"
)

// EpisodeRecord summarizes one episode of a run.
type EpisodeRecord struct {
	Run       uuid.UUID
	Episode   int
	Steps     int
	Returns   []float64
	Solved    bool
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// StepRecord is one resolved step of one episode.
type StepRecord struct {
	Episode int
	Step    int
	Actions []int
	Rewards []float64
	Dones   []bool
}
