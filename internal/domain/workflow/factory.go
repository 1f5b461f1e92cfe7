package workflow

// BuildExpenseStateMachine creates a state machine configured for the expense
// lifecycle. An expense leaves PENDING exactly once: through a normal
// finalization or an admin override. There are no transitions out of the
// terminal states.
func BuildExpenseStateMachine(initialState State) StateMachine {
	builder := NewBuilder()

	builder.Configure(StatePending).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerReject, StateRejected).
		Permit(TriggerOverrideApprove, StateApproved).
		Permit(TriggerOverrideReject, StateRejected)

	return builder.Build(initialState)
}

// BuildRequestStateMachine creates a state machine configured for a single
// approval-request ledger row. All three outcomes are terminal; a row is
// asked once and never re-opened.
func BuildRequestStateMachine(initialState State) StateMachine {
	builder := NewBuilder()

	builder.Configure(StatePending).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerReject, StateRejected).
		Permit(TriggerCancel, StateCancelled)

	return builder.Build(initialState)
}
