package lifecycle

type State int

const (
	NotStarted State = iota
	Started
	Stopped
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Started:
		return "started"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// phase refines State for the service's own bookkeeping. Only the three
// public states are ever reported.
type phase int

const (
	phaseIdle phase = iota
	phaseStarting
	phaseRunning
	phaseStartFailed
	phaseStopping
	phaseStopped
)

func (p phase) state() State {
	switch p {
	case phaseIdle:
		return NotStarted
	case phaseStarting, phaseRunning, phaseStartFailed:
		return Started
	default:
		return Stopped
	}
}
