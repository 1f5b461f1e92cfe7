// Package service contains the application services orchestrating the
// approval workflow: expense submission, decision recording, admin override,
// rule management, notifications and reporting.
package service

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Identity is the already-verified caller: resolved by the transport layer
// from the bearer token. Services trust it and enforce role and company
// scope against it.
type Identity struct {
	UserID    int64
	Role      string
	CompanyID int64
}

// Outcome reports what one recorded decision did to the expense.
type Outcome string

const (
	// OutcomeApproved means the expense reached its last sequence and is now APPROVED.
	OutcomeApproved Outcome = "APPROVED"

	// OutcomeRejected means the expense is now REJECTED, either by direct
	// rejection or because the step's conditions became unsatisfiable.
	OutcomeRejected Outcome = "REJECTED"

	// OutcomeAdvanced means the step was satisfied and the next sequence's
	// requests are now the active ones; the expense stays PENDING.
	OutcomeAdvanced Outcome = "ADVANCED"

	// OutcomeAwaitingOthers means the decision was recorded but the step is
	// still waiting on other approvers.
	OutcomeAwaitingOthers Outcome = "AWAITING_OTHERS"
)
