package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/expense-flow/internal/application/port"
	"github.com/garyjia/expense-flow/internal/domain/entity"
)

// RequestRepository implements port.RequestRepository. Ledger rows are only
// ever inserted or transitioned out of PENDING; there is no delete.
type RequestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRequestRepository creates a new approval request repository
func NewRequestRepository(db *sql.DB, logger *zap.Logger) port.RequestRepository {
	return &RequestRepository{db: db, logger: logger}
}

const requestColumns = `
	id, expense_id, approver_id, rule_id, sequence, status, comments,
	created_at, updated_at
`

// Create inserts a new approval request and sets its id
func (r *RequestRepository) Create(ctx context.Context, request *entity.ApprovalRequest) error {
	query := `
		INSERT INTO approval_requests (
			expense_id, approver_id, rule_id, sequence, status, comments
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		request.ExpenseID,
		request.ApproverID,
		request.RuleID,
		request.Sequence,
		request.Status,
		nullableString(request.Comments),
	)
	if err != nil {
		r.logger.Error("Failed to create approval request",
			zap.Int64("expense_id", request.ExpenseID), zap.Error(err))
		return fmt.Errorf("failed to create approval request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	request.ID = id
	return nil
}

// GetPendingForApprover returns the single PENDING row for the approver on
// the expense, nil when none exists
func (r *RequestRepository) GetPendingForApprover(ctx context.Context, expenseID, approverID int64) (*entity.ApprovalRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM approval_requests
		WHERE expense_id = ? AND approver_id = ? AND status = ?
		ORDER BY sequence
		LIMIT 1
	`

	request, err := scanRequest(getExecutor(ctx, r.db).QueryRowContext(ctx, query,
		expenseID, approverID, entity.RequestStatusPending))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get pending request",
			zap.Int64("expense_id", expenseID), zap.Int64("approver_id", approverID), zap.Error(err))
		return nil, fmt.Errorf("failed to get pending request: %w", err)
	}
	return request, nil
}

// GetByExpense returns all rows for an expense ordered by sequence
func (r *RequestRepository) GetByExpense(ctx context.Context, expenseID int64) ([]*entity.ApprovalRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM approval_requests
		WHERE expense_id = ?
		ORDER BY sequence, id
	`
	return r.list(ctx, query, expenseID)
}

// GetByExpenseAndSequence returns all rows at one sequence of an expense
func (r *RequestRepository) GetByExpenseAndSequence(ctx context.Context, expenseID int64, sequence int) ([]*entity.ApprovalRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM approval_requests
		WHERE expense_id = ? AND sequence = ?
		ORDER BY id
	`
	return r.list(ctx, query, expenseID, sequence)
}

// ExistsAtSequence reports whether any row exists at the given sequence
func (r *RequestRepository) ExistsAtSequence(ctx context.Context, expenseID int64, sequence int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM approval_requests WHERE expense_id = ? AND sequence = ?)`

	var exists bool
	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, expenseID, sequence).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check sequence",
			zap.Int64("expense_id", expenseID), zap.Int("sequence", sequence), zap.Error(err))
		return false, fmt.Errorf("failed to check sequence: %w", err)
	}
	return exists, nil
}

// UpdateStatus transitions one row out of PENDING
func (r *RequestRepository) UpdateStatus(ctx context.Context, id int64, status, comments string) error {
	query := `
		UPDATE approval_requests
		SET status = ?, comments = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		status, nullableString(comments), id, entity.RequestStatusPending)
	if err != nil {
		r.logger.Error("Failed to update request", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: request %d already resolved", entity.ErrConflict, id)
	}
	return nil
}

// CancelAllPending cancels every PENDING row of the expense
func (r *RequestRepository) CancelAllPending(ctx context.Context, expenseID int64, comments string) (int64, error) {
	query := `
		UPDATE approval_requests
		SET status = ?, comments = ?, updated_at = CURRENT_TIMESTAMP
		WHERE expense_id = ? AND status = ?
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		entity.RequestStatusCancelled, comments, expenseID, entity.RequestStatusPending)
	if err != nil {
		r.logger.Error("Failed to cancel pending requests",
			zap.Int64("expense_id", expenseID), zap.Error(err))
		return 0, fmt.Errorf("failed to cancel pending requests: %w", err)
	}
	return result.RowsAffected()
}

// ListByApprover returns the approver's inbox: PENDING rows first, newest
// first within each group
func (r *RequestRepository) ListByApprover(ctx context.Context, approverID int64) ([]*entity.ApprovalRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM approval_requests
		WHERE approver_id = ?
		ORDER BY CASE WHEN status = ? THEN 0 ELSE 1 END, created_at DESC
	`
	return r.list(ctx, query, approverID, entity.RequestStatusPending)
}

func (r *RequestRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.ApprovalRequest, error) {
	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list approval requests", zap.Error(err))
		return nil, fmt.Errorf("failed to list approval requests: %w", err)
	}
	defer rows.Close()

	var requests []*entity.ApprovalRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval request: %w", err)
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

func scanRequest(row rowScanner) (*entity.ApprovalRequest, error) {
	var request entity.ApprovalRequest
	var ruleID sql.NullInt64
	var comments sql.NullString

	err := row.Scan(
		&request.ID,
		&request.ExpenseID,
		&request.ApproverID,
		&ruleID,
		&request.Sequence,
		&request.Status,
		&comments,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if ruleID.Valid {
		request.RuleID = &ruleID.Int64
	}
	request.Comments = comments.String
	return &request, nil
}

// Verify interface compliance
var _ port.RequestRepository = (*RequestRepository)(nil)
