package entity

import "time"

// ApprovalRule is a company-scoped rule governing one workflow step.
// Sequence is the 1-based relative position among the company's rules; the
// actual ledger sequence for an expense is assigned at submission time and
// stored on each materialized ApprovalRequest, so reordering rules never
// affects expenses already in flight.
type ApprovalRule struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"company_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	RuleType    string    `json:"rule_type"`
	Percentage  *float64  `json:"percentage,omitempty"`
	Sequence    int       `json:"sequence"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Approvers []*RuleApprover `json:"approvers,omitempty"`
}

// RuleApprover is one entry in a rule's ordered approver roster.
type RuleApprover struct {
	ID                int64 `json:"id"`
	RuleID            int64 `json:"rule_id"`
	UserID            int64 `json:"user_id"`
	IsSpecialApprover bool  `json:"is_special_approver"`
	Position          int   `json:"position"`
}

// RequiredPercentage returns the configured threshold, defaulting to 100
// (unanimous) when unset. PERCENTAGE and HYBRID rules are validated to always
// carry an explicit percentage, so the default only covers legacy rows.
func (r *ApprovalRule) RequiredPercentage() float64 {
	if r.Percentage == nil {
		return 100
	}
	return *r.Percentage
}

// SpecialApproverIDs returns the user ids of roster members flagged as
// special approvers.
func (r *ApprovalRule) SpecialApproverIDs() map[int64]bool {
	ids := make(map[int64]bool)
	for _, a := range r.Approvers {
		if a.IsSpecialApprover {
			ids[a.UserID] = true
		}
	}
	return ids
}
