package tracker

import "time"

// Phase is the lifecycle phase of the most recent fetch.
type Phase string

const (
	// PhaseIdle means no fetch has been initiated this session.
	PhaseIdle Phase = "idle"
	// PhaseWaiting means a fetch is in flight.
	PhaseWaiting Phase = "waiting"
	// PhaseSucceeded means the most recent fetch completed successfully.
	PhaseSucceeded Phase = "succeeded"
	// PhaseFailed means the most recent fetch completed with an error.
	PhaseFailed Phase = "failed"
)

// Status is the tracker's externally observable summary of the most recent
// fetch. Only the fields relevant to the current phase are set: Since while
// waiting, Elapsed and Symbols after success, Message after failure. It is
// owned exclusively by the Tracker and never persisted.
type Status struct {
	Phase   Phase
	Since   time.Time
	Elapsed time.Duration
	Symbols []string
	Message string
}

func (s Status) clone() Status {
	out := s
	if s.Symbols != nil {
		out.Symbols = make([]string, len(s.Symbols))
		copy(out.Symbols, s.Symbols)
	}
	return out
}
