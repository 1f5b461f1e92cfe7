package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	// TriggerApprove records an approver's yes, or finalizes the expense once
	// its last sequence is satisfied.
	TriggerApprove Trigger = "APPROVE"

	// TriggerReject records an approver's no, or finalizes the expense after
	// a veto or an unreachable rule threshold.
	TriggerReject Trigger = "REJECT"

	// TriggerCancel preempts a pending request: cascade after a sibling
	// rejection, or an admin override cancelling the outstanding chain.
	TriggerCancel Trigger = "CANCEL"

	// TriggerOverrideApprove and TriggerOverrideReject force a terminal
	// expense state, bypassing sequence evaluation.
	TriggerOverrideApprove Trigger = "OVERRIDE_APPROVE"
	TriggerOverrideReject  Trigger = "OVERRIDE_REJECT"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
