package models

// RunStatus is the lifecycle status of a remote run as reported by the
// assistant service: queued and in_progress are pending, the rest are
// terminal. The remote owns this vocabulary and may grow it; unknown values
// are treated as still pending by callers.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusInProgress RunStatus = "in_progress"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
	RunStatusExpired    RunStatus = "expired"
)

// Terminal reports whether the status ends a run.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusExpired:
		return true
	}
	return false
}

// RunState is the transient state of one remote run. It exists only for the
// duration of a single send operation and is never persisted.
type RunState struct {
	RunID  string
	Status RunStatus
}
