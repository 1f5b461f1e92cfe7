package service

import (
	"context"

	"github.com/garyjia/expense-flow/internal/domain/entity"
)

// Mock repositories

type mockExpenseRepo struct {
	createFunc            func(ctx context.Context, expense *entity.Expense) error
	getByIDFunc           func(ctx context.Context, id int64) (*entity.Expense, error)
	finalizeFunc          func(ctx context.Context, id int64, status, rejectionReason string) error
	listByCompanyFunc     func(ctx context.Context, companyID int64, status string) ([]*entity.Expense, error)
	listByOwnersFunc      func(ctx context.Context, ownerIDs []int64, status string) ([]*entity.Expense, error)
	hasPendingForUserFunc func(ctx context.Context, userID int64) (bool, error)
}

func (m *mockExpenseRepo) Create(ctx context.Context, expense *entity.Expense) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, expense)
	}
	expense.ID = 1
	return nil
}

func (m *mockExpenseRepo) GetByID(ctx context.Context, id int64) (*entity.Expense, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockExpenseRepo) Finalize(ctx context.Context, id int64, status, rejectionReason string) error {
	if m.finalizeFunc != nil {
		return m.finalizeFunc(ctx, id, status, rejectionReason)
	}
	return nil
}

func (m *mockExpenseRepo) ListByCompany(ctx context.Context, companyID int64, status string) ([]*entity.Expense, error) {
	if m.listByCompanyFunc != nil {
		return m.listByCompanyFunc(ctx, companyID, status)
	}
	return []*entity.Expense{}, nil
}

func (m *mockExpenseRepo) ListByOwners(ctx context.Context, ownerIDs []int64, status string) ([]*entity.Expense, error) {
	if m.listByOwnersFunc != nil {
		return m.listByOwnersFunc(ctx, ownerIDs, status)
	}
	return []*entity.Expense{}, nil
}

func (m *mockExpenseRepo) HasPendingForUser(ctx context.Context, userID int64) (bool, error) {
	if m.hasPendingForUserFunc != nil {
		return m.hasPendingForUserFunc(ctx, userID)
	}
	return false, nil
}

type mockRequestRepo struct {
	createFunc                  func(ctx context.Context, request *entity.ApprovalRequest) error
	getPendingForApproverFunc   func(ctx context.Context, expenseID, approverID int64) (*entity.ApprovalRequest, error)
	getByExpenseFunc            func(ctx context.Context, expenseID int64) ([]*entity.ApprovalRequest, error)
	getByExpenseAndSequenceFunc func(ctx context.Context, expenseID int64, sequence int) ([]*entity.ApprovalRequest, error)
	existsAtSequenceFunc        func(ctx context.Context, expenseID int64, sequence int) (bool, error)
	updateStatusFunc            func(ctx context.Context, id int64, status, comments string) error
	cancelAllPendingFunc        func(ctx context.Context, expenseID int64, comments string) (int64, error)
	listByApproverFunc          func(ctx context.Context, approverID int64) ([]*entity.ApprovalRequest, error)
}

func (m *mockRequestRepo) Create(ctx context.Context, request *entity.ApprovalRequest) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, request)
	}
	request.ID = 1
	return nil
}

func (m *mockRequestRepo) GetPendingForApprover(ctx context.Context, expenseID, approverID int64) (*entity.ApprovalRequest, error) {
	if m.getPendingForApproverFunc != nil {
		return m.getPendingForApproverFunc(ctx, expenseID, approverID)
	}
	return nil, nil
}

func (m *mockRequestRepo) GetByExpense(ctx context.Context, expenseID int64) ([]*entity.ApprovalRequest, error) {
	if m.getByExpenseFunc != nil {
		return m.getByExpenseFunc(ctx, expenseID)
	}
	return []*entity.ApprovalRequest{}, nil
}

func (m *mockRequestRepo) GetByExpenseAndSequence(ctx context.Context, expenseID int64, sequence int) ([]*entity.ApprovalRequest, error) {
	if m.getByExpenseAndSequenceFunc != nil {
		return m.getByExpenseAndSequenceFunc(ctx, expenseID, sequence)
	}
	return []*entity.ApprovalRequest{}, nil
}

func (m *mockRequestRepo) ExistsAtSequence(ctx context.Context, expenseID int64, sequence int) (bool, error) {
	if m.existsAtSequenceFunc != nil {
		return m.existsAtSequenceFunc(ctx, expenseID, sequence)
	}
	return false, nil
}

func (m *mockRequestRepo) UpdateStatus(ctx context.Context, id int64, status, comments string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status, comments)
	}
	return nil
}

func (m *mockRequestRepo) CancelAllPending(ctx context.Context, expenseID int64, comments string) (int64, error) {
	if m.cancelAllPendingFunc != nil {
		return m.cancelAllPendingFunc(ctx, expenseID, comments)
	}
	return 0, nil
}

func (m *mockRequestRepo) ListByApprover(ctx context.Context, approverID int64) ([]*entity.ApprovalRequest, error) {
	if m.listByApproverFunc != nil {
		return m.listByApproverFunc(ctx, approverID)
	}
	return []*entity.ApprovalRequest{}, nil
}

type mockRuleRepo struct {
	createFunc        func(ctx context.Context, rule *entity.ApprovalRule) error
	getByIDFunc       func(ctx context.Context, id int64) (*entity.ApprovalRule, error)
	listByCompanyFunc func(ctx context.Context, companyID int64, activeOnly bool) ([]*entity.ApprovalRule, error)
	setActiveFunc     func(ctx context.Context, id int64, active bool) error
	deleteFunc        func(ctx context.Context, id int64) error
}

func (m *mockRuleRepo) Create(ctx context.Context, rule *entity.ApprovalRule) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, rule)
	}
	rule.ID = 1
	return nil
}

func (m *mockRuleRepo) GetByID(ctx context.Context, id int64) (*entity.ApprovalRule, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockRuleRepo) ListByCompany(ctx context.Context, companyID int64, activeOnly bool) ([]*entity.ApprovalRule, error) {
	if m.listByCompanyFunc != nil {
		return m.listByCompanyFunc(ctx, companyID, activeOnly)
	}
	return []*entity.ApprovalRule{}, nil
}

func (m *mockRuleRepo) SetActive(ctx context.Context, id int64, active bool) error {
	if m.setActiveFunc != nil {
		return m.setActiveFunc(ctx, id, active)
	}
	return nil
}

func (m *mockRuleRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockUserRepo struct {
	getByIDFunc       func(ctx context.Context, id int64) (*entity.User, error)
	listEmployeesFunc func(ctx context.Context, managerID int64) ([]*entity.User, error)
	deleteFunc        func(ctx context.Context, id int64) error
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) ListEmployees(ctx context.Context, managerID int64) ([]*entity.User, error) {
	if m.listEmployeesFunc != nil {
		return m.listEmployeesFunc(ctx, managerID)
	}
	return []*entity.User{}, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockCompanyRepo struct {
	getByIDFunc func(ctx context.Context, id int64) (*entity.Company, error)
}

func (m *mockCompanyRepo) GetByID(ctx context.Context, id int64) (*entity.Company, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.Company{ID: id, Name: "Acme", Currency: "USD"}, nil
}

type mockNotificationRepo struct {
	createFunc     func(ctx context.Context, notification *entity.Notification) error
	listByUserFunc func(ctx context.Context, userID int64, unreadOnly bool) ([]*entity.Notification, error)
	markReadFunc   func(ctx context.Context, id, userID int64) error
}

func (m *mockNotificationRepo) Create(ctx context.Context, notification *entity.Notification) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, notification)
	}
	notification.ID = 1
	return nil
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]*entity.Notification, error) {
	if m.listByUserFunc != nil {
		return m.listByUserFunc(ctx, userID, unreadOnly)
	}
	return []*entity.Notification{}, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id, userID int64) error {
	if m.markReadFunc != nil {
		return m.markReadFunc(ctx, id, userID)
	}
	return nil
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockConverter struct {
	convertFunc func(ctx context.Context, amount float64, from, to string) (float64, error)
}

func (m *mockConverter) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	if m.convertFunc != nil {
		return m.convertFunc(ctx, amount, from, to)
	}
	return amount, nil
}

type mockNotifier struct {
	approvedFunc func(ctx context.Context, expense *entity.Expense, approverID int64) error
	rejectedFunc func(ctx context.Context, expense *entity.Expense, approverID int64, reason string) error
}

func (m *mockNotifier) NotifyExpenseApproved(ctx context.Context, expense *entity.Expense, approverID int64) error {
	if m.approvedFunc != nil {
		return m.approvedFunc(ctx, expense, approverID)
	}
	return nil
}

func (m *mockNotifier) NotifyExpenseRejected(ctx context.Context, expense *entity.Expense, approverID int64, reason string) error {
	if m.rejectedFunc != nil {
		return m.rejectedFunc(ctx, expense, approverID, reason)
	}
	return nil
}

func (m *mockNotifier) List(ctx context.Context, caller Identity, unreadOnly bool) ([]*entity.Notification, error) {
	return []*entity.Notification{}, nil
}

func (m *mockNotifier) MarkRead(ctx context.Context, caller Identity, id int64) error {
	return nil
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}
