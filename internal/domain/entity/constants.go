package entity

// Expense status constants
const (
	ExpenseStatusPending  = "PENDING"
	ExpenseStatusApproved = "APPROVED"
	ExpenseStatusRejected = "REJECTED"
)

// ApprovalRequest status constants
const (
	RequestStatusPending   = "PENDING"
	RequestStatusApproved  = "APPROVED"
	RequestStatusRejected  = "REJECTED"
	RequestStatusCancelled = "CANCELLED"
)

// Rule type constants
const (
	RuleTypePercentage       = "PERCENTAGE"
	RuleTypeSpecificApprover = "SPECIFIC_APPROVER"
	RuleTypeHybrid           = "HYBRID"
)

// User role constants
const (
	RoleEmployee = "EMPLOYEE"
	RoleManager  = "MANAGER"
	RoleAdmin    = "ADMIN"
)

// Decision constants for approval decisions
const (
	DecisionApproved = "APPROVED"
	DecisionRejected = "REJECTED"
)

// Override action constants
const (
	OverrideActionApprove = "APPROVE"
	OverrideActionReject  = "REJECT"
)

// OverrideSequence is the reserved sequence number for admin-override audit rows.
// Rows at this sequence are never transitioned and never evaluated.
const OverrideSequence = 999

// Notification kind constants
const (
	NotificationKindInfo    = "INFO"
	NotificationKindSuccess = "SUCCESS"
	NotificationKindWarning = "WARNING"
	NotificationKindError   = "ERROR"
)
