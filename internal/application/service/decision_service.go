package service

import (
	"context"
	"fmt"

	"github.com/garyjia/expense-flow/internal/application/port"
	"github.com/garyjia/expense-flow/internal/domain/entity"
	"github.com/garyjia/expense-flow/internal/domain/rule"
	"github.com/garyjia/expense-flow/internal/domain/workflow"
)

// CascadeCancelComment is recorded on sibling requests preempted by another
// approver's rejection at the same sequence.
const CascadeCancelComment = "Cancelled due to rejection by another approver"

// ConditionsNotMetReason is recorded on the expense when a step's rule can no
// longer be satisfied.
const ConditionsNotMetReason = "Approval conditions not met"

// DecisionService is the workflow coordinator: it records one approver's
// decision and drives the expense through reject, advance, finalize or wait.
type DecisionService interface {
	// RecordDecision applies the approver's decision to their pending request
	// on the expense. The read-evaluate-write sequence runs inside one
	// transaction scoped to the expense, so a concurrent decision on the same
	// expense observes the already-finalized state and fails with
	// ErrAlreadyFinalized or ErrNotFound instead of double-applying.
	RecordDecision(ctx context.Context, caller Identity, expenseID int64, decision, comments string) (Outcome, error)

	// Inbox returns the caller's approval requests, pending first. Employees
	// have no inbox.
	Inbox(ctx context.Context, caller Identity) ([]*entity.ApprovalRequest, error)
}

type decisionServiceImpl struct {
	expenseRepo port.ExpenseRepository
	requestRepo port.RequestRepository
	ruleRepo    port.RuleRepository
	txManager   port.TransactionManager
	notifier    NotificationService
	logger      Logger
}

// NewDecisionService creates a new DecisionService
func NewDecisionService(
	expenseRepo port.ExpenseRepository,
	requestRepo port.RequestRepository,
	ruleRepo port.RuleRepository,
	txManager port.TransactionManager,
	notifier NotificationService,
	logger Logger,
) DecisionService {
	return &decisionServiceImpl{
		expenseRepo: expenseRepo,
		requestRepo: requestRepo,
		ruleRepo:    ruleRepo,
		txManager:   txManager,
		notifier:    notifier,
		logger:      logger,
	}
}

func (s *decisionServiceImpl) RecordDecision(ctx context.Context, caller Identity, expenseID int64, decision, comments string) (Outcome, error) {
	if decision != entity.DecisionApproved && decision != entity.DecisionRejected {
		return "", fmt.Errorf("%w: decision must be APPROVED or REJECTED", entity.ErrValidation)
	}
	if caller.Role == entity.RoleEmployee {
		return "", fmt.Errorf("%w: only managers and admins can decide on expenses", entity.ErrForbidden)
	}

	var (
		outcome Outcome
		expense *entity.Expense
	)

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
			return fmt.Errorf("%w: expense %d is %s", entity.ErrAlreadyFinalized, expenseID, expense.Status)
		}

		request, err := s.requestRepo.GetPendingForApprover(txCtx, expenseID, caller.UserID)
		if err != nil {
			return fmt.Errorf("get pending request: %w", err)
		}
		if request == nil {
			return fmt.Errorf("%w: no pending approval for this approver on this expense", entity.ErrNotFound)
		}

		// The chain is sequential: a step opens only once every earlier
		// sequence has resolved.
		chain, err := s.requestRepo.GetByExpense(txCtx, expenseID)
		if err != nil {
			return fmt.Errorf("load approval chain: %w", err)
		}
		for _, row := range chain {
			if row.Sequence < request.Sequence && row.Status == entity.RequestStatusPending {
				return fmt.Errorf("%w: earlier approval steps are still open", entity.ErrConflict)
			}
		}

		// Validate the row transition through the request lifecycle machine.
		requestMachine := workflow.BuildRequestStateMachine(workflow.State(request.Status))
		requestTrigger := workflow.TriggerApprove
		if decision == entity.DecisionRejected {
			requestTrigger = workflow.TriggerReject
		}
		if err := requestMachine.Fire(txCtx, requestTrigger); err != nil {
			return fmt.Errorf("request transition: %w", err)
		}
		if err := s.requestRepo.UpdateStatus(txCtx, request.ID, requestMachine.State().String(), comments); err != nil {
			return fmt.Errorf("update request: %w", err)
		}

		if decision == entity.DecisionRejected {
			outcome = OutcomeRejected
			return s.rejectExpense(txCtx, expense, comments)
		}

		verdict, err := s.evaluateSequence(txCtx, expenseID, request)
		if err != nil {
			return err
		}

		switch verdict {
		case rule.VerdictReject:
			outcome = OutcomeRejected
			return s.rejectExpense(txCtx, expense, ConditionsNotMetReason)

		case rule.VerdictApprove:
			nextExists, err := s.requestRepo.ExistsAtSequence(txCtx, expenseID, request.Sequence+1)
			if err != nil {
				return fmt.Errorf("check next sequence: %w", err)
			}
			if nextExists {
				// Next sequence's requests were materialized at submission
				// time; the expense stays PENDING.
				outcome = OutcomeAdvanced
				return nil
			}

			expenseMachine := workflow.BuildExpenseStateMachine(workflow.State(expense.Status))
			if err := expenseMachine.Fire(txCtx, workflow.TriggerApprove); err != nil {
				return fmt.Errorf("expense transition: %w", err)
			}
			if err := s.expenseRepo.Finalize(txCtx, expenseID, expenseMachine.State().String(), ""); err != nil {
				return fmt.Errorf("finalize expense: %w", err)
			}
			expense.Status = entity.ExpenseStatusApproved
			outcome = OutcomeApproved
			return nil

		default:
			outcome = OutcomeAwaitingOthers
			return nil
		}
	})

	if err != nil {
		s.logger.Error("Failed to record decision",
			"error", err, "expense_id", expenseID, "approver_id", caller.UserID, "decision", decision)
		return "", err
	}

	s.logger.Info("Decision recorded",
		"expense_id", expenseID, "approver_id", caller.UserID, "decision", decision, "outcome", outcome)

	// Notifications are fire-and-forget: a delivery failure never rolls back
	// the committed decision.
	switch outcome {
	case OutcomeApproved:
		if err := s.notifier.NotifyExpenseApproved(ctx, expense, caller.UserID); err != nil {
			s.logger.Error("Approval notification failed", "error", err, "expense_id", expenseID)
		}
	case OutcomeRejected:
		reason := expense.RejectionReason
		if err := s.notifier.NotifyExpenseRejected(ctx, expense, caller.UserID, reason); err != nil {
			s.logger.Error("Rejection notification failed", "error", err, "expense_id", expenseID)
		}
	}

	return outcome, nil
}

// Inbox returns the caller's approval requests, pending first.
func (s *decisionServiceImpl) Inbox(ctx context.Context, caller Identity) ([]*entity.ApprovalRequest, error) {
	if caller.Role == entity.RoleEmployee {
		return nil, fmt.Errorf("%w: only managers and admins have an approval inbox", entity.ErrForbidden)
	}

	requests, err := s.requestRepo.ListByApprover(ctx, caller.UserID)
	if err != nil {
		s.logger.Error("Failed to load approval inbox", "error", err, "approver_id", caller.UserID)
		return nil, err
	}
	return requests, nil
}

// evaluateSequence resolves the governing rule for the decided request's
// sequence and runs the evaluator over the sequence's full ledger snapshot.
// The manager seed at sequence 1 has no rule: that step is satisfied once
// every one of its requests is approved.
func (s *decisionServiceImpl) evaluateSequence(ctx context.Context, expenseID int64, request *entity.ApprovalRequest) (rule.Verdict, error) {
	requests, err := s.requestRepo.GetByExpenseAndSequence(ctx, expenseID, request.Sequence)
	if err != nil {
		return "", fmt.Errorf("load sequence requests: %w", err)
	}

	if request.RuleID == nil {
		return evaluateManagerStep(requests), nil
	}

	governing, err := s.ruleRepo.GetByID(ctx, *request.RuleID)
	if err != nil {
		return "", fmt.Errorf("load rule: %w", err)
	}
	if governing == nil {
		return "", fmt.Errorf("%w: rule %d no longer exists", entity.ErrRuleMisconfigured, *request.RuleID)
	}

	verdict, err := rule.Evaluate(governing, requests)
	if err != nil {
		// Impossible configuration: surface it and roll back so the approver
		// can retry after an admin repairs the rule.
		return "", fmt.Errorf("evaluate rule %d: %w", governing.ID, err)
	}
	return verdict, nil
}

// evaluateManagerStep handles the implicit sequence-1 manager approval, which
// has no configured rule: unanimous approval advances, anything unresolved
// waits. Rejection is handled by the veto path before evaluation.
func evaluateManagerStep(requests []*entity.ApprovalRequest) rule.Verdict {
	for _, req := range requests {
		switch req.Status {
		case entity.RequestStatusRejected:
			return rule.VerdictReject
		case entity.RequestStatusPending:
			return rule.VerdictPending
		}
	}
	return rule.VerdictApprove
}

// rejectExpense finalizes the expense as REJECTED and cascade-cancels every
// remaining pending request, later sequences included, so the ledger closes
// with the expense.
func (s *decisionServiceImpl) rejectExpense(ctx context.Context, expense *entity.Expense, reason string) error {
	expenseMachine := workflow.BuildExpenseStateMachine(workflow.State(expense.Status))
	if err := expenseMachine.Fire(ctx, workflow.TriggerReject); err != nil {
		return fmt.Errorf("expense transition: %w", err)
	}

	if err := s.expenseRepo.Finalize(ctx, expense.ID, expenseMachine.State().String(), reason); err != nil {
		return fmt.Errorf("finalize expense: %w", err)
	}
	expense.Status = entity.ExpenseStatusRejected
	expense.RejectionReason = reason

	cancelled, err := s.requestRepo.CancelAllPending(ctx, expense.ID, CascadeCancelComment)
	if err != nil {
		return fmt.Errorf("cascade cancel: %w", err)
	}
	if cancelled > 0 {
		s.logger.Info("Cascade-cancelled outstanding requests",
			"expense_id", expense.ID, "count", cancelled)
	}
	return nil
}
