package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/expense-flow/internal/application/port"
	"github.com/garyjia/expense-flow/internal/domain/entity"
)

// RuleRepository implements port.RuleRepository
type RuleRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRuleRepository creates a new rule repository
func NewRuleRepository(db *sql.DB, logger *zap.Logger) port.RuleRepository {
	return &RuleRepository{db: db, logger: logger}
}

// Create persists the rule together with its approver roster. Callers run it
// inside a transaction so the rule never exists without its roster.
func (r *RuleRepository) Create(ctx context.Context, rule *entity.ApprovalRule) error {
	query := `
		INSERT INTO approval_rules (
			company_id, name, description, rule_type, percentage, sequence, is_active
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		rule.CompanyID,
		rule.Name,
		nullableString(rule.Description),
		rule.RuleType,
		rule.Percentage,
		rule.Sequence,
		rule.IsActive,
	)
	if err != nil {
		r.logger.Error("Failed to create rule", zap.Error(err))
		return fmt.Errorf("failed to create rule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	rule.ID = id

	for _, approver := range rule.Approvers {
		approver.RuleID = id
		if err := r.createApprover(ctx, approver); err != nil {
			return err
		}
	}
	return nil
}

func (r *RuleRepository) createApprover(ctx context.Context, approver *entity.RuleApprover) error {
	query := `
		INSERT INTO rule_approvers (rule_id, user_id, is_special_approver, position)
		VALUES (?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		approver.RuleID,
		approver.UserID,
		approver.IsSpecialApprover,
		approver.Position,
	)
	if err != nil {
		r.logger.Error("Failed to create rule approver",
			zap.Int64("rule_id", approver.RuleID), zap.Error(err))
		return fmt.Errorf("failed to create rule approver: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	approver.ID = id
	return nil
}

// GetByID returns the rule with its roster loaded, nil when absent
func (r *RuleRepository) GetByID(ctx context.Context, id int64) (*entity.ApprovalRule, error) {
	query := `
		SELECT id, company_id, name, description, rule_type, percentage,
			sequence, is_active, created_at, updated_at
		FROM approval_rules
		WHERE id = ?
	`

	rule, err := scanRule(getExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get rule", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}

	if err := r.loadApprovers(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// ListByCompany returns the company's rules ordered by sequence, rosters loaded
func (r *RuleRepository) ListByCompany(ctx context.Context, companyID int64, activeOnly bool) ([]*entity.ApprovalRule, error) {
	query := `
		SELECT id, company_id, name, description, rule_type, percentage,
			sequence, is_active, created_at, updated_at
		FROM approval_rules
		WHERE company_id = ?
	`
	args := []interface{}{companyID}
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY sequence, id`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list rules", zap.Int64("company_id", companyID), zap.Error(err))
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var rules []*entity.ApprovalRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, rule := range rules {
		if err := r.loadApprovers(ctx, rule); err != nil {
			return nil, err
		}
	}
	return rules, nil
}

// SetActive toggles a rule's active flag
func (r *RuleRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE approval_rules SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, active, id)
	if err != nil {
		r.logger.Error("Failed to set rule active flag", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to set rule active flag: %w", err)
	}
	return nil
}

// Delete removes the rule and its roster. Materialized approval requests keep
// their rule_id reference nulled by the schema's ON DELETE SET NULL.
func (r *RuleRepository) Delete(ctx context.Context, id int64) error {
	if _, err := getExecutor(ctx, r.db).ExecContext(ctx,
		`DELETE FROM rule_approvers WHERE rule_id = ?`, id); err != nil {
		r.logger.Error("Failed to delete rule approvers", zap.Int64("rule_id", id), zap.Error(err))
		return fmt.Errorf("failed to delete rule approvers: %w", err)
	}

	if _, err := getExecutor(ctx, r.db).ExecContext(ctx,
		`DELETE FROM approval_rules WHERE id = ?`, id); err != nil {
		r.logger.Error("Failed to delete rule", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	return nil
}

func (r *RuleRepository) loadApprovers(ctx context.Context, rule *entity.ApprovalRule) error {
	query := `
		SELECT id, rule_id, user_id, is_special_approver, position
		FROM rule_approvers
		WHERE rule_id = ?
		ORDER BY position
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, rule.ID)
	if err != nil {
		r.logger.Error("Failed to load rule approvers", zap.Int64("rule_id", rule.ID), zap.Error(err))
		return fmt.Errorf("failed to load rule approvers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var approver entity.RuleApprover
		err := rows.Scan(
			&approver.ID,
			&approver.RuleID,
			&approver.UserID,
			&approver.IsSpecialApprover,
			&approver.Position,
		)
		if err != nil {
			return fmt.Errorf("failed to scan rule approver: %w", err)
		}
		rule.Approvers = append(rule.Approvers, &approver)
	}
	return rows.Err()
}

func scanRule(row rowScanner) (*entity.ApprovalRule, error) {
	var rule entity.ApprovalRule
	var description sql.NullString
	var percentage sql.NullFloat64

	err := row.Scan(
		&rule.ID,
		&rule.CompanyID,
		&rule.Name,
		&description,
		&rule.RuleType,
		&percentage,
		&rule.Sequence,
		&rule.IsActive,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rule.Description = description.String
	if percentage.Valid {
		rule.Percentage = &percentage.Float64
	}
	return &rule, nil
}

// Verify interface compliance
var _ port.RuleRepository = (*RuleRepository)(nil)
