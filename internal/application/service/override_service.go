package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/garyjia/expense-flow/internal/application/port"
	"github.com/garyjia/expense-flow/internal/domain/entity"
	"github.com/garyjia/expense-flow/internal/domain/workflow"
)

// OverrideAuditPrefix marks the permanent sequence-999 audit row.
const OverrideAuditPrefix = "[ADMIN OVERRIDE] "

// OverrideCancelPrefix is recorded on requests cancelled by the override.
const OverrideCancelPrefix = "Admin override: "

// OverrideService is the administrative bypass: it forces a terminal expense
// state regardless of pending approvals.
type OverrideService interface {
	// Override finalizes the expense per action, cancels every outstanding
	// request and appends the sequence-999 audit row, all atomically. It
	// returns the expense with its full approval chain. A second override of
	// the same expense fails with ErrAlreadyFinalized.
	Override(ctx context.Context, caller Identity, expenseID int64, action, reason string) (*entity.Expense, error)
}

type overrideServiceImpl struct {
	expenseRepo port.ExpenseRepository
	requestRepo port.RequestRepository
	txManager   port.TransactionManager
	notifier    NotificationService
	logger      Logger
}

// NewOverrideService creates a new OverrideService
func NewOverrideService(
	expenseRepo port.ExpenseRepository,
	requestRepo port.RequestRepository,
	txManager port.TransactionManager,
	notifier NotificationService,
	logger Logger,
) OverrideService {
	return &overrideServiceImpl{
		expenseRepo: expenseRepo,
		requestRepo: requestRepo,
		txManager:   txManager,
		notifier:    notifier,
		logger:      logger,
	}
}

func (s *overrideServiceImpl) Override(ctx context.Context, caller Identity, expenseID int64, action, reason string) (*entity.Expense, error) {
	if caller.Role != entity.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins can override approvals", entity.ErrForbidden)
	}
	if action != entity.OverrideActionApprove && action != entity.OverrideActionReject {
		return nil, fmt.Errorf("%w: action must be APPROVE or REJECT", entity.ErrValidation)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: reason is required for override", entity.ErrValidation)
	}

	var expense *entity.Expense

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		expense, err = s.expenseRepo.GetByID(txCtx, expenseID)
		if err != nil {
			return fmt.Errorf("get expense: %w", err)
		}
		if expense == nil || expense.CompanyID != caller.CompanyID {
			return fmt.Errorf("%w: expense %d", entity.ErrNotFound, expenseID)
		}
		if expense.IsFinalized() {
			return fmt.Errorf("%w: expense %d is already %s", entity.ErrAlreadyFinalized, expenseID, expense.Status)
		}

		trigger := workflow.TriggerOverrideApprove
		rejectionReason := ""
		if action == entity.OverrideActionReject {
			trigger = workflow.TriggerOverrideReject
			rejectionReason = reason
		}

		expenseMachine := workflow.BuildExpenseStateMachine(workflow.State(expense.Status))
		if err := expenseMachine.Fire(txCtx, trigger); err != nil {
			return fmt.Errorf("expense transition: %w", err)
		}
		newStatus := expenseMachine.State().String()

		if err := s.expenseRepo.Finalize(txCtx, expenseID, newStatus, rejectionReason); err != nil {
			return fmt.Errorf("finalize expense: %w", err)
		}

		cancelled, err := s.requestRepo.CancelAllPending(txCtx, expenseID, OverrideCancelPrefix+reason)
		if err != nil {
			return fmt.Errorf("cancel pending requests: %w", err)
		}

		// The audit row is the permanent record of the override; it is never
		// itself transitioned.
		audit := &entity.ApprovalRequest{
			ExpenseID:  expenseID,
			ApproverID: caller.UserID,
			Sequence:   entity.OverrideSequence,
			Status:     newStatus,
			Comments:   OverrideAuditPrefix + reason,
		}
		if err := s.requestRepo.Create(txCtx, audit); err != nil {
			return fmt.Errorf("create audit entry: %w", err)
		}

		expense.Status = newStatus
		expense.RejectionReason = rejectionReason

		s.logger.Info("Admin override applied",
			"expense_id", expenseID, "admin_id", caller.UserID,
			"action", action, "cancelled_requests", cancelled)

		chain, err := s.requestRepo.GetByExpense(txCtx, expenseID)
		if err != nil {
			return fmt.Errorf("load approval chain: %w", err)
		}
		expense.ApprovalRequests = chain
		return nil
	})

	if err != nil {
		s.logger.Error("Override failed", "error", err, "expense_id", expenseID, "admin_id", caller.UserID)
		return nil, err
	}

	var notifyErr error
	if expense.Status == entity.ExpenseStatusApproved {
		notifyErr = s.notifier.NotifyExpenseApproved(ctx, expense, caller.UserID)
	} else {
		notifyErr = s.notifier.NotifyExpenseRejected(ctx, expense, caller.UserID, reason)
	}
	if notifyErr != nil {
		s.logger.Error("Override notification failed", "error", notifyErr, "expense_id", expenseID)
	}

	return expense, nil
}
