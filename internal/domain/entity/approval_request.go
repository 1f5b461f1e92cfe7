package entity

import "time"

// ApprovalRequest is one ledger entry: one approver asked once at one
// sequence of one expense. Rows are never deleted; PENDING transitions to
// APPROVED, REJECTED or CANCELLED, all terminal.
//
// RuleID points at the ApprovalRule whose roster materialized this row. It is
// nil for the sequence-1 manager seed and for override audit rows, so the
// decision service reads the governing rule directly off the ledger instead
// of re-deriving a rule-to-sequence mapping per decision.
type ApprovalRequest struct {
	ID         int64     `json:"id"`
	ExpenseID  int64     `json:"expense_id"`
	ApproverID int64     `json:"approver_id"`
	RuleID     *int64    `json:"rule_id,omitempty"`
	Sequence   int       `json:"sequence"`
	Status     string    `json:"status"`
	Comments   string    `json:"comments,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsResolved returns true once the request has left PENDING.
func (r *ApprovalRequest) IsResolved() bool {
	return r.Status != RequestStatusPending
}
