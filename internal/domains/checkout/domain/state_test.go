package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestState_HappyPathGatewayFlow(t *testing.T) {
	state := StateIdle
	for _, next := range []State{StateValidating, StateOrderCreating, StatePaymentInitiating, StatePaymentPending, StatePaymentConfirming, StateCompleted} {
		var err error
		state, err = state.Transition(next)
		require.NoError(t, err)
	}
	require.True(t, state.IsTerminal())
}

func TestState_CashOnDeliveryShortCircuits(t *testing.T) {
	state := StateOrderCreating
	state, err := state.Transition(StateCompleted)
	require.NoError(t, err)
	require.Equal(t, StateCompleted, state)
}

func TestState_ResumeEntersPendingDirectly(t *testing.T) {
	state, err := StateIdle.Transition(StatePaymentPending)
	require.NoError(t, err)
	require.Equal(t, StatePaymentPending, state)
}

func TestState_ConfirmFailureReturnsToPending(t *testing.T) {
	state, err := StatePaymentConfirming.Transition(StatePaymentPending)
	require.NoError(t, err)
	require.Equal(t, StatePaymentPending, state)
}

func TestState_NoSkippingToCompleted(t *testing.T) {
	_, err := StatePaymentPending.Transition(StateCompleted)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = StatePaymentInitiating.Transition(StateCompleted)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestState_TerminalStatesAreFinal(t *testing.T) {
	for _, terminal := range []State{StateCompleted, StateFailed} {
		require.True(t, terminal.IsTerminal())
		for _, next := range []State{StateIdle, StateValidating, StatePaymentPending} {
			require.False(t, terminal.CanTransition(next))
		}
	}
}
