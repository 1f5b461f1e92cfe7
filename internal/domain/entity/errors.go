package entity

import "errors"

var (
	// ErrValidation is returned for malformed input: bad decision values,
	// missing override reason, invalid rule configuration at creation time.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when the target record does not exist, including
	// "no pending approval for this approver on this expense".
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller lacks the role or company scope
	// for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyFinalized is returned when a decision or override targets an
	// expense that is already APPROVED or REJECTED.
	ErrAlreadyFinalized = errors.New("expense already finalized")

	// ErrRuleMisconfigured is returned when rule evaluation hits an impossible
	// configuration, such as a sequence with zero approvers. Non-retryable
	// until an admin fixes the rule.
	ErrRuleMisconfigured = errors.New("rule misconfigured")

	// ErrConflict is returned when a concurrent writer finalized the expense
	// first; the caller must re-fetch and retry.
	ErrConflict = errors.New("concurrent update conflict")
)
