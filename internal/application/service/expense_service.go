package service

import (
	"context"
	"fmt"
	"time"

	"github.com/garyjia/expense-flow/internal/application/port"
	"github.com/garyjia/expense-flow/internal/domain/entity"
)

// SubmitExpenseInput carries a new expense claim.
type SubmitExpenseInput struct {
	Amount           float64
	OriginalCurrency string
	Category         string
	Description      string
	ExpenseDate      time.Time
}

// ExpenseService handles expense submission and role-scoped reads. Submission
// materializes the full approval chain up front: the implicit manager seed at
// sequence 1 when the owner's manager is flagged as an approver, then one
// sequence per active company rule in configured order.
type ExpenseService interface {
	Submit(ctx context.Context, caller Identity, input SubmitExpenseInput) (*entity.Expense, error)
	List(ctx context.Context, caller Identity, status string) ([]*entity.Expense, error)
	GetWithChain(ctx context.Context, caller Identity, expenseID int64) (*entity.Expense, error)
}

type expenseServiceImpl struct {
	expenseRepo port.ExpenseRepository
	requestRepo port.RequestRepository
	ruleRepo    port.RuleRepository
	userRepo    port.UserRepository
	companyRepo port.CompanyRepository
	txManager   port.TransactionManager
	converter   port.CurrencyConverter
	logger      Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	expenseRepo port.ExpenseRepository,
	requestRepo port.RequestRepository,
	ruleRepo port.RuleRepository,
	userRepo port.UserRepository,
	companyRepo port.CompanyRepository,
	txManager port.TransactionManager,
	converter port.CurrencyConverter,
	logger Logger,
) ExpenseService {
	return &expenseServiceImpl{
		expenseRepo: expenseRepo,
		requestRepo: requestRepo,
		ruleRepo:    ruleRepo,
		userRepo:    userRepo,
		companyRepo: companyRepo,
		txManager:   txManager,
		converter:   converter,
		logger:      logger,
	}
}

func (s *expenseServiceImpl) Submit(ctx context.Context, caller Identity, input SubmitExpenseInput) (*entity.Expense, error) {
	if err := validateSubmitInput(input); err != nil {
		return nil, err
	}

	company, err := s.companyRepo.GetByID(ctx, caller.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}
	if company == nil {
		return nil, fmt.Errorf("%w: company %d", entity.ErrNotFound, caller.CompanyID)
	}

	// Conversion happens before the transaction: the rate lookup is an
	// external call and its result is stored, never recomputed.
	converted := input.Amount
	if input.OriginalCurrency != company.Currency {
		converted, err = s.converter.Convert(ctx, input.Amount, input.OriginalCurrency, company.Currency)
		if err != nil {
			return nil, fmt.Errorf("convert currency: %w", err)
		}
	}

	expense := &entity.Expense{
		UserID:           caller.UserID,
		CompanyID:        caller.CompanyID,
		Amount:           input.Amount,
		OriginalCurrency: input.OriginalCurrency,
		ConvertedAmount:  converted,
		Category:         input.Category,
		Description:      input.Description,
		ExpenseDate:      input.ExpenseDate,
		Status:           entity.ExpenseStatusPending,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.expenseRepo.Create(txCtx, expense); err != nil {
			return fmt.Errorf("create expense: %w", err)
		}
		return s.materializeChain(txCtx, expense, caller)
	})
	if err != nil {
		s.logger.Error("Failed to submit expense", "error", err, "user_id", caller.UserID)
		return nil, err
	}

	s.logger.Info("Expense submitted",
		"expense_id", expense.ID, "user_id", caller.UserID,
		"amount", expense.Amount, "currency", expense.OriginalCurrency)
	return expense, nil
}

// materializeChain seeds the entire approval chain at submission time. Each
// materialized row carries the id of the rule that produced it, so decision
// handling never has to re-derive which rule governs which sequence.
func (s *expenseServiceImpl) materializeChain(ctx context.Context, expense *entity.Expense, caller Identity) error {
	owner, err := s.userRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		return fmt.Errorf("get owner: %w", err)
	}
	if owner == nil {
		return fmt.Errorf("%w: user %d", entity.ErrNotFound, caller.UserID)
	}

	sequence := 1
	if owner.ManagerID != nil {
		manager, err := s.userRepo.GetByID(ctx, *owner.ManagerID)
		if err != nil {
			return fmt.Errorf("get manager: %w", err)
		}
		if manager != nil && manager.IsManagerApprover {
			seed := &entity.ApprovalRequest{
				ExpenseID:  expense.ID,
				ApproverID: manager.ID,
				Sequence:   sequence,
				Status:     entity.RequestStatusPending,
			}
			if err := s.requestRepo.Create(ctx, seed); err != nil {
				return fmt.Errorf("create manager request: %w", err)
			}
			sequence++
		}
	}

	rules, err := s.ruleRepo.ListByCompany(ctx, caller.CompanyID, true)
	if err != nil {
		return fmt.Errorf("list rules: %w", err)
	}

	for _, r := range rules {
		ruleID := r.ID
		for _, approver := range r.Approvers {
			request := &entity.ApprovalRequest{
				ExpenseID:  expense.ID,
				ApproverID: approver.UserID,
				RuleID:     &ruleID,
				Sequence:   sequence,
				Status:     entity.RequestStatusPending,
			}
			if err := s.requestRepo.Create(ctx, request); err != nil {
				return fmt.Errorf("create rule request: %w", err)
			}
		}
		if len(r.Approvers) > 0 {
			sequence++
		}
	}
	return nil
}

// List returns expenses scoped by role: admins see the company, managers see
// their own plus their team's, employees see only their own.
func (s *expenseServiceImpl) List(ctx context.Context, caller Identity, status string) ([]*entity.Expense, error) {
	if status != "" &&
		status != entity.ExpenseStatusPending &&
		status != entity.ExpenseStatusApproved &&
		status != entity.ExpenseStatusRejected {
		return nil, fmt.Errorf("%w: unknown status filter %q", entity.ErrValidation, status)
	}

	switch caller.Role {
	case entity.RoleAdmin:
		return s.expenseRepo.ListByCompany(ctx, caller.CompanyID, status)

	case entity.RoleManager:
		employees, err := s.userRepo.ListEmployees(ctx, caller.UserID)
		if err != nil {
			return nil, fmt.Errorf("list employees: %w", err)
		}
		owners := []int64{caller.UserID}
		for _, e := range employees {
			owners = append(owners, e.ID)
		}
		return s.expenseRepo.ListByOwners(ctx, owners, status)

	default:
		return s.expenseRepo.ListByOwners(ctx, []int64{caller.UserID}, status)
	}
}

// GetWithChain returns the expense with its approval chain. Visible to the
// owner, a company admin, or any approver on the chain.
func (s *expenseServiceImpl) GetWithChain(ctx context.Context, caller Identity, expenseID int64) (*entity.Expense, error) {
	expense, err := s.expenseRepo.GetByID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	if expense == nil || expense.CompanyID != caller.CompanyID {
		return nil, fmt.Errorf("%w: expense %d", entity.ErrNotFound, expenseID)
	}

	chain, err := s.requestRepo.GetByExpense(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("load approval chain: %w", err)
	}

	if caller.Role != entity.RoleAdmin && caller.UserID != expense.UserID {
		onChain := false
		for _, req := range chain {
			if req.ApproverID == caller.UserID {
				onChain = true
				break
			}
		}
		if !onChain {
			return nil, fmt.Errorf("%w: not a participant on this expense", entity.ErrForbidden)
		}
	}

	expense.ApprovalRequests = chain
	return expense, nil
}

func validateSubmitInput(input SubmitExpenseInput) error {
	if input.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", entity.ErrValidation)
	}
	if len(input.OriginalCurrency) != 3 {
		return fmt.Errorf("%w: currency must be a 3-letter code", entity.ErrValidation)
	}
	if input.Category == "" {
		return fmt.Errorf("%w: category is required", entity.ErrValidation)
	}
	if input.ExpenseDate.IsZero() {
		return fmt.Errorf("%w: expense date is required", entity.ErrValidation)
	}
	return nil
}
