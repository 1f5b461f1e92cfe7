package port

import (
	"context"

	"github.com/garyjia/expense-flow/internal/domain/entity"
)

// ExpenseRepository defines persistence operations for Expense
type ExpenseRepository interface {
	Create(ctx context.Context, expense *entity.Expense) error
	GetByID(ctx context.Context, id int64) (*entity.Expense, error)

	// Finalize sets a terminal status and optional rejection reason.
	Finalize(ctx context.Context, id int64, status, rejectionReason string) error

	ListByCompany(ctx context.Context, companyID int64, status string) ([]*entity.Expense, error)
	ListByOwners(ctx context.Context, ownerIDs []int64, status string) ([]*entity.Expense, error)

	// HasPendingForUser reports whether the user owns any PENDING expense;
	// user deletion is blocked while this is true.
	HasPendingForUser(ctx context.Context, userID int64) (bool, error)
}

// RequestRepository defines persistence operations for the approval-request
// ledger. Rows are append/transition only and never deleted.
type RequestRepository interface {
	Create(ctx context.Context, request *entity.ApprovalRequest) error

	// GetPendingForApprover returns the single PENDING row for
	// (expense, approver), or nil when none exists.
	GetPendingForApprover(ctx context.Context, expenseID, approverID int64) (*entity.ApprovalRequest, error)

	// GetByExpense returns all rows for an expense ordered by sequence.
	GetByExpense(ctx context.Context, expenseID int64) ([]*entity.ApprovalRequest, error)

	// GetByExpenseAndSequence returns all rows at one sequence.
	GetByExpenseAndSequence(ctx context.Context, expenseID int64, sequence int) ([]*entity.ApprovalRequest, error)

	// ExistsAtSequence reports whether any row exists at the given sequence.
	ExistsAtSequence(ctx context.Context, expenseID int64, sequence int) (bool, error)

	UpdateStatus(ctx context.Context, id int64, status, comments string) error

	// CancelAllPending transitions every PENDING row of the expense to
	// CANCELLED with the given comment, returning the number of rows changed.
	CancelAllPending(ctx context.Context, expenseID int64, comments string) (int64, error)

	// ListByApprover returns the approver's inbox, PENDING rows first,
	// newest first within each status.
	ListByApprover(ctx context.Context, approverID int64) ([]*entity.ApprovalRequest, error)
}

// RuleRepository defines persistence operations for ApprovalRule and its
// approver roster.
type RuleRepository interface {
	// Create persists the rule together with its approver roster.
	Create(ctx context.Context, rule *entity.ApprovalRule) error

	// GetByID returns the rule with its roster loaded, or nil when absent.
	GetByID(ctx context.Context, id int64) (*entity.ApprovalRule, error)

	// ListByCompany returns the company's rules ordered by sequence, rosters
	// loaded. With activeOnly set, inactive rules are skipped.
	ListByCompany(ctx context.Context, companyID int64, activeOnly bool) ([]*entity.ApprovalRule, error)

	SetActive(ctx context.Context, id int64, active bool) error

	// Delete removes an inactive rule. Callers enforce the inactive precondition.
	Delete(ctx context.Context, id int64) error
}

// UserRepository defines persistence operations for User
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	ListEmployees(ctx context.Context, managerID int64) ([]*entity.User, error)
	Delete(ctx context.Context, id int64) error
}

// CompanyRepository defines persistence operations for Company
type CompanyRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Company, error)
}

// NotificationRepository defines persistence operations for Notification
type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id, userID int64) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
