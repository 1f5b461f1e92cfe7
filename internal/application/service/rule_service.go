package service

import (
	"context"
	"fmt"

	"github.com/garyjia/expense-flow/internal/application/port"
	"github.com/garyjia/expense-flow/internal/domain/entity"
)

// CreateRuleInput carries a new approval rule and its roster.
type CreateRuleInput struct {
	Name        string
	Description string
	RuleType    string
	Percentage  *float64
	Sequence    int
	Approvers   []RuleApproverInput
}

// RuleApproverInput is one roster entry of a new rule.
type RuleApproverInput struct {
	UserID            int64
	IsSpecialApprover bool
}

// RuleService manages approval rule configuration. All operations are
// admin-only and company-scoped. Rule-type invariants are enforced at
// creation so the evaluator never sees an impossible configuration: every
// rule needs at least one approver, PERCENTAGE and HYBRID need a percentage
// in (0, 100], SPECIFIC_APPROVER and HYBRID need at least one special
// approver. An active rule cannot be deleted, only deactivated first.
type RuleService interface {
	Create(ctx context.Context, caller Identity, input CreateRuleInput) (*entity.ApprovalRule, error)
	List(ctx context.Context, caller Identity) ([]*entity.ApprovalRule, error)
	SetActive(ctx context.Context, caller Identity, ruleID int64, active bool) (*entity.ApprovalRule, error)
	Delete(ctx context.Context, caller Identity, ruleID int64) error
}

type ruleServiceImpl struct {
	ruleRepo  port.RuleRepository
	userRepo  port.UserRepository
	txManager port.TransactionManager
	logger    Logger
}

// NewRuleService creates a new RuleService
func NewRuleService(
	ruleRepo port.RuleRepository,
	userRepo port.UserRepository,
	txManager port.TransactionManager,
	logger Logger,
) RuleService {
	return &ruleServiceImpl{
		ruleRepo:  ruleRepo,
		userRepo:  userRepo,
		txManager: txManager,
		logger:    logger,
	}
}

func (s *ruleServiceImpl) Create(ctx context.Context, caller Identity, input CreateRuleInput) (*entity.ApprovalRule, error) {
	if caller.Role != entity.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins can create approval rules", entity.ErrForbidden)
	}
	if err := validateRuleInput(input); err != nil {
		return nil, err
	}

	rule := &entity.ApprovalRule{
		CompanyID:   caller.CompanyID,
		Name:        input.Name,
		Description: input.Description,
		RuleType:    input.RuleType,
		Percentage:  input.Percentage,
		Sequence:    input.Sequence,
		IsActive:    true,
	}
	for i, a := range input.Approvers {
		rule.Approvers = append(rule.Approvers, &entity.RuleApprover{
			UserID:            a.UserID,
			IsSpecialApprover: a.IsSpecialApprover,
			Position:          i + 1,
		})
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		// Cross-company rosters are rejected at the boundary.
		for _, a := range rule.Approvers {
			user, err := s.userRepo.GetByID(txCtx, a.UserID)
			if err != nil {
				return fmt.Errorf("get approver: %w", err)
			}
			if user == nil || user.CompanyID != caller.CompanyID {
				return fmt.Errorf("%w: approver %d does not belong to this company", entity.ErrValidation, a.UserID)
			}
		}
		if err := s.ruleRepo.Create(txCtx, rule); err != nil {
			return fmt.Errorf("create rule: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to create rule", "error", err, "company_id", caller.CompanyID)
		return nil, err
	}

	s.logger.Info("Approval rule created",
		"rule_id", rule.ID, "company_id", caller.CompanyID,
		"rule_type", rule.RuleType, "sequence", rule.Sequence)
	return rule, nil
}

func (s *ruleServiceImpl) List(ctx context.Context, caller Identity) ([]*entity.ApprovalRule, error) {
	if caller.Role != entity.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins can view approval rules", entity.ErrForbidden)
	}
	return s.ruleRepo.ListByCompany(ctx, caller.CompanyID, false)
}

func (s *ruleServiceImpl) SetActive(ctx context.Context, caller Identity, ruleID int64, active bool) (*entity.ApprovalRule, error) {
	if caller.Role != entity.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins can update approval rules", entity.ErrForbidden)
	}

	rule, err := s.getCompanyRule(ctx, caller, ruleID)
	if err != nil {
		return nil, err
	}

	if err := s.ruleRepo.SetActive(ctx, ruleID, active); err != nil {
		s.logger.Error("Failed to update rule", "error", err, "rule_id", ruleID)
		return nil, fmt.Errorf("set active: %w", err)
	}
	rule.IsActive = active

	s.logger.Info("Approval rule updated", "rule_id", ruleID, "is_active", active)
	return rule, nil
}

func (s *ruleServiceImpl) Delete(ctx context.Context, caller Identity, ruleID int64) error {
	if caller.Role != entity.RoleAdmin {
		return fmt.Errorf("%w: only admins can delete approval rules", entity.ErrForbidden)
	}

	rule, err := s.getCompanyRule(ctx, caller, ruleID)
	if err != nil {
		return err
	}
	if rule.IsActive {
		return fmt.Errorf("%w: active rules cannot be deleted, deactivate first", entity.ErrValidation)
	}

	if err := s.ruleRepo.Delete(ctx, ruleID); err != nil {
		s.logger.Error("Failed to delete rule", "error", err, "rule_id", ruleID)
		return fmt.Errorf("delete rule: %w", err)
	}

	s.logger.Info("Approval rule deleted", "rule_id", ruleID)
	return nil
}

func (s *ruleServiceImpl) getCompanyRule(ctx context.Context, caller Identity, ruleID int64) (*entity.ApprovalRule, error) {
	rule, err := s.ruleRepo.GetByID(ctx, ruleID)
	if err != nil {
		return nil, fmt.Errorf("get rule: %w", err)
	}
	if rule == nil || rule.CompanyID != caller.CompanyID {
		return nil, fmt.Errorf("%w: rule %d", entity.ErrNotFound, ruleID)
	}
	return rule, nil
}

func validateRuleInput(input CreateRuleInput) error {
	if len(input.Name) < 2 {
		return fmt.Errorf("%w: rule name must be at least 2 characters", entity.ErrValidation)
	}

	switch input.RuleType {
	case entity.RuleTypePercentage, entity.RuleTypeSpecificApprover, entity.RuleTypeHybrid:
	default:
		return fmt.Errorf("%w: unknown rule type %q", entity.ErrValidation, input.RuleType)
	}

	if input.Sequence < 1 {
		return fmt.Errorf("%w: sequence must be at least 1", entity.ErrValidation)
	}
	if len(input.Approvers) == 0 {
		return fmt.Errorf("%w: at least one approver is required", entity.ErrValidation)
	}

	usesPercentage := input.RuleType == entity.RuleTypePercentage || input.RuleType == entity.RuleTypeHybrid
	if usesPercentage {
		if input.Percentage == nil {
			return fmt.Errorf("%w: percentage is required for PERCENTAGE and HYBRID rules", entity.ErrValidation)
		}
		if *input.Percentage < 1 || *input.Percentage > 100 {
			return fmt.Errorf("%w: percentage must be between 1 and 100", entity.ErrValidation)
		}
	}

	needsSpecial := input.RuleType == entity.RuleTypeSpecificApprover || input.RuleType == entity.RuleTypeHybrid
	if needsSpecial {
		hasSpecial := false
		for _, a := range input.Approvers {
			if a.IsSpecialApprover {
				hasSpecial = true
				break
			}
		}
		if !hasSpecial {
			return fmt.Errorf("%w: at least one special approver is required for SPECIFIC_APPROVER and HYBRID rules", entity.ErrValidation)
		}
	}

	seen := make(map[int64]bool)
	for _, a := range input.Approvers {
		if seen[a.UserID] {
			return fmt.Errorf("%w: duplicate approver %d", entity.ErrValidation, a.UserID)
		}
		seen[a.UserID] = true
	}
	return nil
}
