package tpoint

import "github.com/charmbracelet/log"

// Phase is a termination point's state-machine phase. FT cycles through
// {Resource, Steady, Dissociation}; PT cycles through
// {Association, Steady, Dissociation}. Both roles share the Steady and
// Dissociation values since neither role distinguishes them further.
type Phase int

const (
	PhaseResource Phase = iota
	PhaseAssociation
	PhaseSteady
	PhaseDissociation
)

func (p Phase) String() string {
	switch p {
	case PhaseResource:
		return "resource"
	case PhaseAssociation:
		return "association"
	case PhaseSteady:
		return "steady"
	case PhaseDissociation:
		return "dissociation"
	default:
		return "unknown"
	}
}

// LeaveCallback is invoked whenever a termination point's phase changes,
// naming the phase it left and the phase it entered.
//
// Grounded on tpoint_state_t::leave_callback_t, which notifies an outer
// meta firmware with no arguments when a state concludes; this widens the
// signal to name both phases so one callback can drive logging or
// telemetry without a separate accessor call back into the firmware.
type LeaveCallback func(from, to Phase)

// phaseMachine is embedded by FT and PT to provide the shared phase field,
// transition logging, and leave-callback dispatch.
type phaseMachine struct {
	phase  Phase
	leave  LeaveCallback
	logger *log.Logger
}

func newPhaseMachine(initial Phase, leave LeaveCallback, logger *log.Logger) *phaseMachine {
	return &phaseMachine{phase: initial, leave: leave, logger: logger}
}

// Phase returns the current phase.
func (m *phaseMachine) Phase() Phase {
	return m.phase
}

func (m *phaseMachine) transition(to Phase) {
	if m.phase == to {
		return
	}
	from := m.phase
	m.phase = to
	if m.logger != nil {
		m.logger.Info("phase transition", "from", from.String(), "to", to.String())
	}
	if m.leave != nil {
		m.leave(from, to)
	}
}
