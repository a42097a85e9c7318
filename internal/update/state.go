package update

import (
	"log/slog"
)

// State is a step of the update state machine.
//
//	Idle -> Resolving -> StateUpToDate
//	                  -> AwaitingConfirmation -> Cancelled
//	                                          -> Installing -> InstallFailed
//	                                                        -> Verifying -> Succeeded
//	                                                                     -> Failed
type State int

const (
	Idle State = iota
	Resolving
	StateUpToDate
	AwaitingConfirmation
	Cancelled
	Installing
	InstallFailed
	Verifying
	Succeeded
	Failed
)

var stateNames = map[State]string{
	Idle:                 "idle",
	Resolving:            "resolving",
	StateUpToDate:        "upToDate",
	AwaitingConfirmation: "awaitingConfirmation",
	Cancelled:            "cancelled",
	Installing:           "installing",
	InstallFailed:        "installFailed",
	Verifying:            "verifying",
	Succeeded:            "succeeded",
	Failed:               "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

var transitions = map[State][]State{
	Idle:                 {Resolving},
	Resolving:            {StateUpToDate, AwaitingConfirmation, Failed, Cancelled},
	AwaitingConfirmation: {Cancelled, Installing},
	Installing:           {Verifying, InstallFailed, Cancelled},
	Verifying:            {Succeeded, Failed, Cancelled},
}

// CanTransition reports whether from -> to is an edge of the machine.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type machine struct {
	state  State
	logger *slog.Logger
}

func newMachine(logger *slog.Logger) *machine {
	return &machine{state: Idle, logger: logger}
}

// to moves the machine and returns the new state. Disallowed edges are
// logged and still taken so the caller's failure is reported.
func (m *machine) to(next State) State {
	if !CanTransition(m.state, next) {
		m.logger.Error("invalid update state transition", "from", m.state.String(), "to", next.String())
	} else {
		m.logger.Debug("update state", "from", m.state.String(), "to", next.String())
	}
	m.state = next
	return next
}
