package irrigation

// RefillState is either RefillNormal or RefillNotified.
type RefillState interface {
	refillState()
}

// RefillNormal means no refill notification is outstanding.
type RefillNormal struct{}

// RefillNotified holds the reading that raised the outstanding notification.
// It clears once a reading falls back to or below Baseline.
type RefillNotified struct {
	Baseline float64
}

func (RefillNormal) refillState()   {}
func (RefillNotified) refillState() {}

type refillTransition int

const (
	refillUnchanged refillTransition = iota
	refillRaised
	refillCleared
)

// nextRefillState is edge triggered: a Notified state never re-raises.
func nextRefillState(state RefillState, average, trigger float64) (RefillState, refillTransition) {
	switch s := state.(type) {
	case RefillNotified:
		if average <= s.Baseline {
			return RefillNormal{}, refillCleared
		}
		return s, refillUnchanged

	default:
		if average > trigger {
			return RefillNotified{Baseline: average}, refillRaised
		}
		return RefillNormal{}, refillUnchanged
	}
}
