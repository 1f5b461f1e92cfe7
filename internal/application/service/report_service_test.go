package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/expense-flow/internal/domain/entity"
)

func TestExportCompanyExpenses_AdminOnly(t *testing.T) {
	service := NewReportService(&mockExpenseRepo{}, &mockUserRepo{}, &mockCompanyRepo{}, &mockLogger{})

	_, err := service.ExportCompanyExpenses(context.Background(), manager)
	assert.ErrorIs(t, err, entity.ErrForbidden)
}

func TestExportCompanyExpenses_Workbook(t *testing.T) {
	expenseRepo := &mockExpenseRepo{
		listByCompanyFunc: func(ctx context.Context, companyID int64, status string) ([]*entity.Expense, error) {
			return []*entity.Expense{
				{
					ID: 1, UserID: 10, Amount: 99.50, OriginalCurrency: "EUR",
					ConvertedAmount: 109.45, Category: "Travel",
					ExpenseDate: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
					Status:      entity.ExpenseStatusApproved,
				},
				{
					ID: 2, UserID: 10, Amount: 40, OriginalCurrency: "USD",
					ConvertedAmount: 40, Category: "Meals",
					ExpenseDate:     time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC),
					Status:          entity.ExpenseStatusRejected,
					RejectionReason: "missing receipt",
				},
			}, nil
		},
	}
	userRepo := &mockUserRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.User, error) {
			return &entity.User{ID: id, Name: "Dana Reyes"}, nil
		},
	}
	service := NewReportService(expenseRepo, userRepo, &mockCompanyRepo{}, &mockLogger{})

	f, err := service.ExportCompanyExpenses(context.Background(), admin)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Expenses", "H1")
	require.NoError(t, err)
	assert.Equal(t, "Amount (USD)", header)

	owner, err := f.GetCellValue("Expenses", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Dana Reyes", owner)

	status, err := f.GetCellValue("Expenses", "I3")
	require.NoError(t, err)
	assert.Equal(t, entity.ExpenseStatusRejected, status)

	reason, err := f.GetCellValue("Expenses", "J3")
	require.NoError(t, err)
	assert.Equal(t, "missing receipt", reason)
}
