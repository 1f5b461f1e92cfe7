package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/expense-flow/internal/domain/entity"
)

func TestExpenseRepository_FinalizeOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewExpenseRepository(db, zap.NewNop())
	ctx := context.Background()

	expense := &entity.Expense{
		UserID:           10,
		CompanyID:        1,
		Amount:           120,
		OriginalCurrency: "USD",
		ConvertedAmount:  120,
		Category:         "Travel",
		ExpenseDate:      time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Status:           entity.ExpenseStatusPending,
	}
	require.NoError(t, repo.Create(ctx, expense))
	require.NotZero(t, expense.ID)

	require.NoError(t, repo.Finalize(ctx, expense.ID, entity.ExpenseStatusApproved, ""))

	got, err := repo.GetByID(ctx, expense.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.ExpenseStatusApproved, got.Status)

	// A second finalization races a row that is no longer PENDING; the
	// loser must get a conflict and leave the first outcome standing.
	err = repo.Finalize(ctx, expense.ID, entity.ExpenseStatusRejected, "too late")
	assert.ErrorIs(t, err, entity.ErrConflict)

	got, err = repo.GetByID(ctx, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ExpenseStatusApproved, got.Status)
	assert.Empty(t, got.RejectionReason)
}

func TestExpenseRepository_GetByIDMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewExpenseRepository(db, zap.NewNop())

	got, err := repo.GetByID(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, got)
}
