package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/expense-flow/internal/application/port"
	"github.com/garyjia/expense-flow/internal/domain/entity"
)

// ExpenseRepository implements port.ExpenseRepository
type ExpenseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *sql.DB, logger *zap.Logger) port.ExpenseRepository {
	return &ExpenseRepository{db: db, logger: logger}
}

const expenseColumns = `
	id, user_id, company_id, amount, original_currency, converted_amount,
	category, description, expense_date, status, rejection_reason,
	created_at, updated_at
`

// Create inserts a new expense and sets its id
func (r *ExpenseRepository) Create(ctx context.Context, expense *entity.Expense) error {
	query := `
		INSERT INTO expenses (
			user_id, company_id, amount, original_currency, converted_amount,
			category, description, expense_date, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		expense.UserID,
		expense.CompanyID,
		expense.Amount,
		expense.OriginalCurrency,
		expense.ConvertedAmount,
		expense.Category,
		expense.Description,
		expense.ExpenseDate,
		expense.Status,
	)
	if err != nil {
		r.logger.Error("Failed to create expense", zap.Error(err))
		return fmt.Errorf("failed to create expense: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	expense.ID = id
	return nil
}

// GetByID retrieves an expense by id, nil when absent
func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*entity.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`

	expense, err := scanExpense(getExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get expense", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// Finalize sets a terminal status. The WHERE clause guards against racing a
// concurrent finalization; losing the race is reported as ErrConflict.
func (r *ExpenseRepository) Finalize(ctx context.Context, id int64, status, rejectionReason string) error {
	query := `
		UPDATE expenses
		SET status = ?, rejection_reason = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		status, nullableString(rejectionReason), id, entity.ExpenseStatusPending)
	if err != nil {
		r.logger.Error("Failed to finalize expense", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to finalize expense: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: expense %d already finalized", entity.ErrConflict, id)
	}
	return nil
}

// ListByCompany returns a company's expenses, newest first, optionally
// filtered by status
func (r *ExpenseRepository) ListByCompany(ctx context.Context, companyID int64, status string) ([]*entity.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE company_id = ?`
	args := []interface{}{companyID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	return r.list(ctx, query, args...)
}

// ListByOwners returns the expenses owned by any of the given users, newest
// first, optionally filtered by status
func (r *ExpenseRepository) ListByOwners(ctx context.Context, ownerIDs []int64, status string) ([]*entity.Expense, error) {
	if len(ownerIDs) == 0 {
		return []*entity.Expense{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ownerIDs)), ",")
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE user_id IN (` + placeholders + `)`
	args := make([]interface{}, 0, len(ownerIDs)+1)
	for _, id := range ownerIDs {
		args = append(args, id)
	}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	return r.list(ctx, query, args...)
}

// HasPendingForUser reports whether the user owns any PENDING expense
func (r *ExpenseRepository) HasPendingForUser(ctx context.Context, userID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM expenses WHERE user_id = ? AND status = ?)`

	var exists bool
	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, userID, entity.ExpenseStatusPending).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check pending expenses", zap.Int64("user_id", userID), zap.Error(err))
		return false, fmt.Errorf("failed to check pending expenses: %w", err)
	}
	return exists, nil
}

func (r *ExpenseRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.Expense, error) {
	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list expenses", zap.Error(err))
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*entity.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	return expenses, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanExpense(row rowScanner) (*entity.Expense, error) {
	var expense entity.Expense
	var description, rejectionReason sql.NullString

	err := row.Scan(
		&expense.ID,
		&expense.UserID,
		&expense.CompanyID,
		&expense.Amount,
		&expense.OriginalCurrency,
		&expense.ConvertedAmount,
		&expense.Category,
		&description,
		&expense.ExpenseDate,
		&expense.Status,
		&rejectionReason,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	expense.Description = description.String
	expense.RejectionReason = rejectionReason.String
	return &expense, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Verify interface compliance
var _ port.ExpenseRepository = (*ExpenseRepository)(nil)
