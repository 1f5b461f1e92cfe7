// Package rule implements the approval rule evaluator: a pure function that
// turns the ledger rows of one workflow step into a step verdict. It holds no
// state and performs no I/O, so callers may invoke it freely with a read-only
// snapshot of the ledger.
package rule

import (
	"github.com/garyjia/expense-flow/internal/domain/entity"
)

// Verdict is the ternary outcome of evaluating one sequence.
type Verdict string

const (
	// VerdictApprove means the step's conditions are satisfied.
	VerdictApprove Verdict = "APPROVE"

	// VerdictReject means the step can no longer be satisfied, or a request
	// at the step was rejected outright.
	VerdictReject Verdict = "REJECT"

	// VerdictPending means the step is still waiting on approvers.
	VerdictPending Verdict = "PENDING"
)

// Evaluate computes the verdict for one sequence given the governing rule and
// all ledger rows at that sequence.
//
// A single rejection is a veto regardless of rule type. Otherwise:
//
//   - PERCENTAGE approves once approvedCount/total reaches the threshold, and
//     rejects as soon as even unanimous remaining approval cannot reach it.
//   - SPECIFIC_APPROVER approves the moment any special approver approves;
//     it rejects once every special approver has responded without approving.
//   - HYBRID is the OR of the two: the special-approver short-circuit first,
//     then the percentage check; it rejects only when both paths are
//     foreclosed.
//
// Percentages are computed in floating point with no rounding, so a threshold
// of exactly 100 requires unanimous approval.
//
// An empty request set returns VerdictPending: there is nothing to evaluate
// and the caller should not have invoked it. A rule whose roster cannot
// satisfy its own type (no approvers at all, or no special approver for
// SPECIFIC_APPROVER/HYBRID) returns VerdictReject together with
// entity.ErrRuleMisconfigured; rule creation validates these invariants, so
// hitting the guard means the configuration was corrupted after the fact.
func Evaluate(r *entity.ApprovalRule, requests []*entity.ApprovalRequest) (Verdict, error) {
	if len(requests) == 0 {
		return VerdictPending, nil
	}

	if len(r.Approvers) == 0 {
		return VerdictReject, entity.ErrRuleMisconfigured
	}

	total := len(requests)
	var approved, rejected, pending int
	for _, req := range requests {
		switch req.Status {
		case entity.RequestStatusApproved:
			approved++
		case entity.RequestStatusRejected:
			rejected++
		case entity.RequestStatusPending:
			pending++
		}
	}

	// A single rejection vetoes the step, independent of rule type.
	if rejected > 0 {
		return VerdictReject, nil
	}

	switch r.RuleType {
	case entity.RuleTypePercentage:
		return evaluatePercentage(r, approved, pending, total), nil

	case entity.RuleTypeSpecificApprover:
		special := r.SpecialApproverIDs()
		if len(special) == 0 {
			return VerdictReject, entity.ErrRuleMisconfigured
		}
		return evaluateSpecific(special, requests), nil

	case entity.RuleTypeHybrid:
		special := r.SpecialApproverIDs()
		if len(special) == 0 {
			return VerdictReject, entity.ErrRuleMisconfigured
		}
		if evaluateSpecific(special, requests) == VerdictApprove {
			return VerdictApprove, nil
		}
		pctVerdict := evaluatePercentage(r, approved, pending, total)
		if pctVerdict == VerdictApprove {
			return VerdictApprove, nil
		}
		// Reject only when both paths are foreclosed.
		if pctVerdict == VerdictReject && allSpecialResolved(special, requests) {
			return VerdictReject, nil
		}
		return VerdictPending, nil
	}

	return VerdictPending, nil
}

func evaluatePercentage(r *entity.ApprovalRule, approved, pending, total int) Verdict {
	required := r.RequiredPercentage()

	approvedPct := float64(approved) / float64(total) * 100
	if approvedPct >= required {
		return VerdictApprove
	}

	maxPossiblePct := float64(approved+pending) / float64(total) * 100
	if maxPossiblePct < required {
		return VerdictReject
	}

	return VerdictPending
}

func evaluateSpecific(special map[int64]bool, requests []*entity.ApprovalRequest) Verdict {
	for _, req := range requests {
		if special[req.ApproverID] && req.Status == entity.RequestStatusApproved {
			return VerdictApprove
		}
	}
	if allSpecialResolved(special, requests) {
		return VerdictReject
	}
	return VerdictPending
}

// allSpecialResolved reports whether no special approver's request at this
// sequence is still PENDING. Vacuously true when none of the special
// approvers has a request here.
func allSpecialResolved(special map[int64]bool, requests []*entity.ApprovalRequest) bool {
	for _, req := range requests {
		if special[req.ApproverID] && req.Status == entity.RequestStatusPending {
			return false
		}
	}
	return true
}
