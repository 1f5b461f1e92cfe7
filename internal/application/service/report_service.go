package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/garyjia/expense-flow/internal/application/port"
	"github.com/garyjia/expense-flow/internal/domain/entity"
)

// ReportService produces the company expense report workbook for finance
// handoff: one row per expense with its approval outcome, amounts in both the
// original and the company currency.
type ReportService interface {
	// ExportCompanyExpenses builds the workbook. Admin only.
	ExportCompanyExpenses(ctx context.Context, caller Identity) (*excelize.File, error)
}

type reportServiceImpl struct {
	expenseRepo port.ExpenseRepository
	userRepo    port.UserRepository
	companyRepo port.CompanyRepository
	logger      Logger
}

// NewReportService creates a new ReportService
func NewReportService(
	expenseRepo port.ExpenseRepository,
	userRepo port.UserRepository,
	companyRepo port.CompanyRepository,
	logger Logger,
) ReportService {
	return &reportServiceImpl{
		expenseRepo: expenseRepo,
		userRepo:    userRepo,
		companyRepo: companyRepo,
		logger:      logger,
	}
}

const reportSheet = "Expenses"

func (s *reportServiceImpl) ExportCompanyExpenses(ctx context.Context, caller Identity) (*excelize.File, error) {
	if caller.Role != entity.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins can export reports", entity.ErrForbidden)
	}

	company, err := s.companyRepo.GetByID(ctx, caller.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}
	if company == nil {
		return nil, fmt.Errorf("%w: company %d", entity.ErrNotFound, caller.CompanyID)
	}

	expenses, err := s.expenseRepo.ListByCompany(ctx, caller.CompanyID, "")
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), reportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headers := []string{
		"ID", "Submitted By", "Category", "Description", "Expense Date",
		"Amount", "Currency", fmt.Sprintf("Amount (%s)", company.Currency),
		"Status", "Rejection Reason", "Submitted At",
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(reportSheet, cell, h); err != nil {
			return nil, fmt.Errorf("set header: %w", err)
		}
	}

	// Owner names are looked up once per distinct owner.
	names := make(map[int64]string)
	ownerName := func(id int64) string {
		if name, ok := names[id]; ok {
			return name
		}
		name := fmt.Sprintf("user %d", id)
		if u, err := s.userRepo.GetByID(ctx, id); err == nil && u != nil {
			name = u.Name
		}
		names[id] = name
		return name
	}

	for i, e := range expenses {
		row := i + 2
		values := []interface{}{
			e.ID,
			ownerName(e.UserID),
			e.Category,
			e.Description,
			e.ExpenseDate.Format("2006-01-02"),
			e.Amount,
			e.OriginalCurrency,
			e.ConvertedAmount,
			e.Status,
			e.RejectionReason,
			e.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(reportSheet, cell, v); err != nil {
				return nil, fmt.Errorf("set cell: %w", err)
			}
		}
	}

	s.logger.Info("Expense report generated",
		"company_id", caller.CompanyID, "rows", len(expenses))
	return f, nil
}
