package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseStateMachine_Finalization(t *testing.T) {
	tests := []struct {
		name    string
		trigger Trigger
		want    State
	}{
		{"approve", TriggerApprove, StateApproved},
		{"reject", TriggerReject, StateRejected},
		{"override approve", TriggerOverrideApprove, StateApproved},
		{"override reject", TriggerOverrideReject, StateRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := BuildExpenseStateMachine(StatePending)
			require.True(t, m.CanFire(tt.trigger))

			err := m.Fire(context.Background(), tt.trigger)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.State())
			assert.True(t, m.State().IsTerminal())
		})
	}
}

func TestExpenseStateMachine_TerminalStatesAreFinal(t *testing.T) {
	m := BuildExpenseStateMachine(StatePending)
	require.NoError(t, m.Fire(context.Background(), TriggerApprove))

	// No trigger may leave a terminal state, including another override.
	for _, trigger := range []Trigger{TriggerApprove, TriggerReject, TriggerOverrideApprove, TriggerOverrideReject} {
		assert.False(t, m.CanFire(trigger), "trigger %s must not fire from %s", trigger, m.State())
		err := m.Fire(context.Background(), trigger)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}

	assert.Empty(t, m.PermittedTriggers())
}

func TestExpenseStateMachine_NoCancel(t *testing.T) {
	// Cancellation is a request-level concept; expenses are never cancelled.
	m := BuildExpenseStateMachine(StatePending)
	assert.False(t, m.CanFire(TriggerCancel))
}

func TestRequestStateMachine_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		trigger Trigger
		want    State
	}{
		{"approve", TriggerApprove, StateApproved},
		{"reject", TriggerReject, StateRejected},
		{"cancel", TriggerCancel, StateCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := BuildRequestStateMachine(StatePending)

			err := m.Fire(context.Background(), tt.trigger)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.State())

			// All outcomes are terminal: a second decision must fail.
			err = m.Fire(context.Background(), TriggerApprove)
			assert.ErrorIs(t, err, ErrInvalidTransition)
		})
	}
}

func TestStateValidity(t *testing.T) {
	assert.True(t, StatePending.IsValid())
	assert.False(t, StatePending.IsTerminal())
	assert.True(t, StateCancelled.IsTerminal())
	assert.False(t, State("IN_REVIEW").IsValid())
}
