package domain

import "errors"

// State enumerates the checkout orchestration state machine. Entering
// StatePaymentInitiating is itself the re-entrancy guard: a second initiation
// for the same checkout is unreachable because the transition out of it only
// leads to StatePaymentPending or StateFailed.
type State string

const (
	StateIdle              State = "idle"
	StateValidating        State = "validating"
	StateOrderCreating     State = "order_creating"
	StatePaymentInitiating State = "payment_initiating"
	StatePaymentPending    State = "payment_pending"
	StatePaymentConfirming State = "payment_confirming"
	StateCompleted         State = "completed"
	StateFailed            State = "failed"
)

var ErrInvalidTransition = errors.New("invalid checkout state transition")

var transitions = map[State][]State{
	StateIdle:              {StateValidating, StatePaymentPending},
	StateValidating:        {StateOrderCreating, StateIdle, StateFailed},
	StateOrderCreating:     {StatePaymentInitiating, StateCompleted, StateFailed},
	StatePaymentInitiating: {StatePaymentPending, StateFailed},
	StatePaymentPending:    {StatePaymentConfirming, StateIdle, StateFailed},
	StatePaymentConfirming: {StateCompleted, StatePaymentPending},
	StateCompleted:         nil,
	StateFailed:            nil,
}

// IsTerminal reports whether the checkout has reached a final state.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// CanTransition reports whether moving to the target state is allowed.
func (s State) CanTransition(to State) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition returns the target state or ErrInvalidTransition.
func (s State) Transition(to State) (State, error) {
	if !s.CanTransition(to) {
		return s, ErrInvalidTransition
	}
	return to, nil
}

func (s State) String() string { return string(s) }
